// Command catalog-import loads parts catalogs from spreadsheets, CSV files
// and desktop catalog databases into the PostgreSQL parts catalog.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/catalogimport/internal/config"
	"github.com/JonMunkholm/catalogimport/internal/logging"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	envFile    string
	configFile string
}

func main() {
	// SIGINT and SIGTERM cancel the command context. An import stops after
	// the current record and commits what it has.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "catalog-import",
		Short: "Parts catalog importer",
		Long: `catalog-import reconciles product records from source files against the
parts catalog: new parts are inserted, exact duplicates skipped, and parts
already carried by another manufacturer are added as alternates.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. YAML file (--config)
  3. .env file (--env-file, or .env in the current directory)
  4. Environment variables`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.PersistentFlags().StringVar(&flags.configFile, "config", "", "Path to YAML configuration file")

	cmd.AddCommand(importCmd(flags))
	cmd.AddCommand(serveCmd(flags))
	cmd.AddCommand(migrateCmd(flags))
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig reads the .env file and configuration, then sets up logging.
func loadConfig(flags *globalFlags) (*config.Config, *slog.Logger, error) {
	if flags.envFile != "" {
		if err := godotenv.Overload(flags.envFile); err != nil {
			return nil, nil, fmt.Errorf("load env file: %w", err)
		}
	} else if err := godotenv.Overload(); err == nil {
		slog.Debug("loaded .env file")
	}

	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	logger.Debug("configuration loaded", "config", cfg.String())
	return cfg, logger, nil
}
