package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration. Precedence: flags over
// environment (GREENQIF_*) over config file over defaults.
type Config struct {
	AuthFile         string `yaml:"auth_file"`
	APIURL           string `yaml:"api_url"`
	PageSize         int    `yaml:"page_size"`
	Output           string `yaml:"output"`
	TimeoutSeconds   int    `yaml:"timeout_seconds"`
	SigninMaxRetries int    `yaml:"signin_max_retries"`
}

// flagBindings maps config keys to the CLI flag carrying the override.
var flagBindings = map[string]string{
	"auth_file":          "auth-file",
	"api_url":            "api-url",
	"page_size":          "page-size",
	"output":             "output",
	"timeout_seconds":    "timeout",
	"signin_max_retries": "signin-retries",
}

// Build loads configuration from cfgFile (or the default search path when
// empty), the environment, and flag overrides.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("auth_file", DefaultAuthFile())
	v.SetDefault("api_url", "https://api.green-got.com")
	v.SetDefault("page_size", 50)
	v.SetDefault("output", "")
	v.SetDefault("timeout_seconds", 30)
	v.SetDefault("signin_max_retries", 0)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "greenqif"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix("GREENQIF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagBindings {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		AuthFile:         v.GetString("auth_file"),
		APIURL:           v.GetString("api_url"),
		PageSize:         v.GetInt("page_size"),
		Output:           v.GetString("output"),
		TimeoutSeconds:   v.GetInt("timeout_seconds"),
		SigninMaxRetries: v.GetInt("signin_max_retries"),
	}
	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("page_size must be positive, got %d", cfg.PageSize)
	}
	return cfg, nil
}

// DefaultAuthFile is where the mobile app equivalent keeps its credential.
func DefaultAuthFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "greengot", "auth.json")
	}
	return filepath.Join(home, ".config", "greengot", "auth.json")
}

// WriteDefault writes a starting config file with the built-in defaults so
// users have something to edit.
func WriteDefault(path string) error {
	cfg, err := Build("", nil)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
