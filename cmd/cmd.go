// Package cmd defines the command-line interface for gitsize.
package cmd

import (
	"github.com/huangsam/gitsize/internal/contract"
	"github.com/huangsam/gitsize/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("ref", contract.DefaultRef, "Git reference to start the history walk from")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("store-backend", string(schema.NoneBackend), "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("emoji", "yes", "Enable emojis in output headers (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("progress", "yes", "Show a progress bar while measuring (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Bool("debug", false, "Print debug diagnostics to stderr")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of historyCmd to Viper
	historyCmd.Flags().String("sampling", string(schema.AutoSampling), "Sampling mode: auto or yearly or monthly")
	historyCmd.Flags().Bool("yearly", false, "Shorthand for --sampling yearly")
	historyCmd.Flags().Bool("monthly", false, "Shorthand for --sampling monthly")
	historyCmd.Flags().Bool("uncompressed", false, "Also compute the uncompressed size of reachable objects (slow)")
	historyCmd.Flags().String("policy", string(schema.FailFast), "Measurement failure policy: fail-fast or continue")
	historyCmd.Flags().String("plot", "", "Write an HTML line chart of the history to this file")
	if err := viper.BindPFlags(historyCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history flags", err)
	}

	// Bind all flags of checkCmd to Viper
	checkCmd.Flags().String("max-size", "", "Maximum packed size of the target ref (e.g., 500MB)")
	checkCmd.Flags().String("max-uncompressed", "", "Maximum uncompressed size of the target ref (e.g., 2GB)")
	checkCmd.Flags().String("base", "", "Base Git reference for the growth gate")
	checkCmd.Flags().Float64("max-growth", 0, "Maximum packed growth in percent from --base to --ref")
	if err := viper.BindPFlags(checkCmd.Flags()); err != nil {
		contract.LogFatal("Error binding check flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
