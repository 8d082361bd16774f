// Package config loads application configuration from a yaml file,
// LIBRARYMAN_* environment variables, and command-line flags, in rising
// order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	DataDir string     `mapstructure:"data_dir"`
	Stores  StoreFiles `mapstructure:"stores"`
	Loan    LoanConfig `mapstructure:"loan"`
	Report  Report     `mapstructure:"report"`
}

// StoreFiles names the flat store files inside the data directory.
type StoreFiles struct {
	Users   string `mapstructure:"users"`
	Admins  string `mapstructure:"admins"`
	Catalog string `mapstructure:"catalog"`
	Ledger  string `mapstructure:"ledger"`
	Vendors string `mapstructure:"vendors"`
	Session string `mapstructure:"session"`
}

// LoanConfig controls the due-book threshold.
type LoanConfig struct {
	DueSeconds int64 `mapstructure:"due_seconds"`
}

// Report locates the SQLite export file.
type Report struct {
	Path string `mapstructure:"path"`
}

// Defaults is the baseline configuration before any file, env, or flag.
func Defaults() map[string]any {
	return map[string]any{
		"data_dir":         "./data",
		"stores.users":     "users.txt",
		"stores.admins":    "admins.txt",
		"stores.catalog":   "catalog.txt",
		"stores.ledger":    "ledger.txt",
		"stores.vendors":   "vendors.txt",
		"stores.session":   "session.txt",
		"loan.due_seconds": int64(1_296_000),
		"report.path":      "report.sqlite",
	}
}

// StorePath resolves a store file name inside the data directory.
func (c Config) StorePath(name string) string { return filepath.Join(c.DataDir, name) }

// Load builds the configuration. explicitFile, when non-empty, pins the
// config file; otherwise libraryman.yaml is searched in the user config
// directory and the current directory. A missing config file is fine.
func Load(cmd *cobra.Command, explicitFile string) (Config, error) {
	var c Config
	v := viper.New()

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetConfigName("libraryman")
	v.SetConfigType("yaml")
	if explicitFile != "" {
		v.SetConfigFile(explicitFile)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(userConfigDir, "libraryman"))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, fmt.Errorf("read config: %w", err)
		}
	}

	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetEnvPrefix("libraryman")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, err
		}
		// The flag is spelled data-dir; the config key is data_dir.
		if f := cmd.Flags().Lookup("data-dir"); f != nil && f.Changed {
			if err := v.BindPFlag("data_dir", f); err != nil {
				return c, err
			}
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}
