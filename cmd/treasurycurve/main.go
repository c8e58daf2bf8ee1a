// treasurycurve: U.S. Treasury yield curve and inversion dashboard.
//
// Main CLI entrypoint using cobra command framework. Running the binary
// with no subcommand starts the dashboard server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seenimoa/treasurycurve/internal/config"
	"github.com/seenimoa/treasurycurve/internal/infra"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "treasurycurve",
	Short: "US Treasury yield curve dashboard",
	Long: `treasurycurve fetches five years of daily U.S. Treasury yields and
shows the yield curve for any date with a heatmap of pairwise yield
differences, so curve inversions stand out at a glance.

With no subcommand it starts the dashboard server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		if p, _ := cmd.Flags().GetString("provider"); p != "" {
			cfg.Data.Provider = p
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		infra.SetLogLevel(cfg.Logging.Level)
		infra.SetLogFormat(cfg.Logging.Format)
		infra.HTTPClient.Timeout = cfg.RequestTimeout()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("provider", "", "yield data provider override (fred, treasury, federal_reserve)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(curveCmd)
	rootCmd.AddCommand(matrixCmd)
	rootCmd.AddCommand(datesCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("treasurycurve %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}
