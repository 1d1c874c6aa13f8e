package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/yurifrl/greenqif/pkg/config"
	"github.com/yurifrl/greenqif/pkg/parser"
)

var convertCmd = &cobra.Command{
	Use:   "convert <dump_file>",
	Short: "Convert a JSON dump or CSV export to QIF without touching the network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)

		cfg, err := config.Build(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}

		inputPath := args[0]
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", inputPath, err)
		}

		txs, err := parser.New(logger).ProcessBytes(data, filepath.Base(inputPath))
		if err != nil {
			return fmt.Errorf("parsing %s: %w", inputPath, err)
		}

		if byDate, _ := cmd.Flags().GetBool("sort"); byDate {
			sort.SliceStable(txs, func(i, j int) bool {
				return txs[i].CreatedAt.Before(txs[j].CreatedAt)
			})
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		return writeAll(txs, cfg.Output, asJSON)
	},
}

var initCmd = &cobra.Command{
	Use:   "init [config_file]",
	Short: "Write a config file with the default settings",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		path := "config.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, refusing to overwrite", path)
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

func init() {
	convertCmd.Flags().Bool("sort", false, "Sort transactions by date before writing")
}
