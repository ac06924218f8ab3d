// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the grantdata CLI. It extracts
// project summaries from portfolio PDF reports, converts between Excel and
// JSON, fetches open grant data from Vinnova, and queries stored runs.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/grantdata/internal/logging"
	"github.com/pdiddy/grantdata/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// logger is the process logger, built from --log-level before any
// subcommand runs.
var logger = slog.Default()

// rootCmd is the base command for the grantdata CLI.
var rootCmd = &cobra.Command{
	Use:   "grantdata",
	Short: "Extract and convert project and grant funding data",
	Long: `grantdata moves project and grant data between formats.

extract reads project portfolio PDF reports and turns every project summary
page into one row of a table (Excel, JSON, YAML or SQLite). convert moves
tables between Excel and JSON. fetch downloads calls for proposals and
financed activities from the Vinnova open data API. projects searches the
runs stored by extract --format sqlite.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log, err := logging.New(viper.GetString("log_level"), os.Stderr)
		if err != nil {
			return err
		}
		logger = log
		slog.SetDefault(log)

		s, err := secrets.Load(secrets.DefaultDir, log)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			log.Debug("loaded secrets", "keys", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./grantdata.yaml or ~/.config/grantdata/grantdata.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, or error")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("grantdata")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "grantdata"))
		}
	}

	viper.SetEnvPrefix("GRANTDATA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
