package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
	"github.com/subosito/gotenv"

	"github.com/yurifrl/greenqif/pkg/config"
	"github.com/yurifrl/greenqif/pkg/greengot"
	"github.com/yurifrl/greenqif/pkg/models"
	"github.com/yurifrl/greenqif/pkg/qif"
	"github.com/yurifrl/greenqif/pkg/service"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "greenqif",
	Short: "Export a Green-Got account history to QIF",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Show help when no subcommand is provided
		return cmd.Help()
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the full transaction history from the API and emit QIF",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := newLogger(cmd)

		cfg, err := config.Build(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}

		proc := service.NewProcessor(cfg, logger, greengot.NewStdinReader(), os.Stderr)
		txs, err := proc.Fetch(cmd.Context())
		if err != nil {
			return err
		}

		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			fmt.Fprintln(os.Stderr, pp.Sprint(txs))
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		return writeAll(txs, cfg.Output, asJSON)
	},
}

func newLogger(cmd *cobra.Command) *log.Logger {
	level := log.InfoLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "greenqif",
		Level:           level,
	})
}

// openOutput returns stdout when no path is configured.
func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func writeAll(txs []models.Transaction, path string, asJSON bool) error {
	out, closeOut, err := openOutput(path)
	if err != nil {
		return err
	}
	defer closeOut()

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(txs)
	}
	return qif.Write(out, txs)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default is config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file (default stdout)")
	rootCmd.PersistentFlags().Bool("json", false, "Emit normalized JSON instead of QIF")

	fetchCmd.Flags().String("auth-file", "", "Credential file path")
	fetchCmd.Flags().String("api-url", "", "API base URL")
	fetchCmd.Flags().Int("page-size", 50, "Transaction page size")
	fetchCmd.Flags().Int("timeout", 30, "HTTP timeout in seconds")
	fetchCmd.Flags().Int("signin-retries", 0, "Max signin attempts under rate limiting (0 = unbounded)")
	fetchCmd.Flags().Bool("debug", false, "Pretty-print fetched transactions to stderr")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(initCmd)
}

func main() {
	_ = gotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
