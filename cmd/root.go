// =============================================================================
// Vendor Price Comparison - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every subcommand is
// attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (pricecompare)
//   ├── analyzeCmd (pricecompare analyze)
//   ├── serveCmd   (pricecompare serve)
//   └── versionCmd (pricecompare version)
//
// CONFIGURATION:
//   The root command loads the configuration (defaults, config.yaml or
//   --config, PRICECMP_* environment) and installs the global logger before
//   any subcommand runs.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/vendor-price-comparison/internal/config"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile is an explicit configuration file; empty means ./config.yaml if
// present.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// cfg is the loaded configuration, set by PersistentPreRunE.
var cfg *config.Config

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "pricecompare",
	Short: "Vendor price comparison - find the cheapest vendor for every item",
	Long: `pricecompare reads quotation spreadsheets from several vendors, works out
which columns hold the item, the unit price, the quantity and the subtotal,
matches items across vendors and reports the lowest price for each item.

Example Usage:
  pricecompare analyze a.xlsx b.xlsx c.csv   # Compare three quotations
  pricecompare analyze --input-dir ./quotes  # Compare every file in a directory
  pricecompare serve --port 8080             # Start the upload service`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile)
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		if verbose {
			c.Log.Level = "debug"
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}
		return nil
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Path to the configuration file (default ./config.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
}
