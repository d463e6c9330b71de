// Package cli wires configuration, storage and the HTTP server behind the
// eventhub command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eleven-am/eventhub/internal/config"
	"github.com/eleven-am/eventhub/internal/logger"
)

// Global configuration variables
var (
	configFile  string
	databaseURL string
	logLevel    string
	cfg         *config.Config
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "eventhub",
		Short: "Eventhub - event catalogue API",
		Long: `Eventhub serves a JSON API for events, their categories and the users
who organise them, backed by PostgreSQL.

Commands:
- serve    run the HTTP API
- migrate  apply or roll back the embedded schema migrations
- verify   check the live schema against what the API expects`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if databaseURL != "" {
				loaded.Database.URL = databaseURL
			}
			if logLevel != "" {
				loaded.Log.Level = logLevel
			}

			logger.InitWithWriter(cmd.ErrOrStderr(), loaded.Log.Level, loaded.Log.Format)
			cfg = loaded
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: eventhub.yaml)")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "url", "", "database connection URL")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newVerifyCommand())
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

func requireDatabaseURL() error {
	if cfg == nil || cfg.Database.URL == "" {
		return fmt.Errorf("database URL is required (use --url, DATABASE_URL or database.url)")
	}
	return nil
}
