// Package cli provides the command-line interface for rosterline.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"rosterline/internal/about"
	"rosterline/internal/config"
	"rosterline/internal/logging"
)

// Loaded configuration, shared by subcommands.
var cfg *config.Config

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "rosterline",
	Short: "Roster CSV import pipeline for the member registry",
	Long: `Rosterline turns legacy roster exports into clean member records.

It parses the club's delimited export format, maps external columns to
registry fields, validates every row, and submits the whole batch to the
member registry in one all-or-nothing call. Run it as an HTTP service
with "serve" or as a one-shot import with "import".`,
	Version:       about.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		// Load .env file if it exists (Overload overwrites existing env vars)
		if err := godotenv.Overload(); err == nil {
			slog.Info("loaded .env file (overwriting existing env vars)")
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}

		logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(versionCmd)
}
