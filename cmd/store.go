package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/gitsize/internal/contract"
	"github.com/huangsam/gitsize/internal/runstore"
	"github.com/huangsam/gitsize/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeConfig loads only the settings needed to reach the run store.
func storeConfig() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("store-backend"))
	connStr := viper.GetString("store-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	contract.SetDebug(viper.GetBool("debug"))
	return nil
}

// storeSetup opens the run store without validating a repository.
func storeSetup() error {
	if err := storeConfig(); err != nil {
		return err
	}
	store, err := runstore.Open(cfg.StoreBackend, cfg.StoreDBConnect)
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}
	runStore = store
	return nil
}

// storeSetupWrapper wraps storeSetup to provide PreRunE for store commands.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup()
}

// storeMigrateSetupWrapper only loads config, since Migrate opens its own connection.
func storeMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeConfig()
}

// requireStore rejects commands that need a store when tracking is off.
func requireStore() {
	if runStore == nil {
		contract.LogFatal("Run tracking is disabled", errors.New("set --store-backend to sqlite, mysql or postgresql"))
	}
}

// storeCmd focused on run tracking data management.
//
// Note: Store subcommands use minimal initialization (storeSetup) instead of
// the full sharedSetup used by history commands. This avoids Git repo validation
// and complex config processing for simple store operations.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage tracked size history runs and exports",
	Long: `Manage the runs recorded by 'gitsize history'.

When a store backend is set, every history run is tracked, storing:
- Run metadata (ref, head commit, sampling, duration, configuration)
- Every sample with its commit, sizes and failure details

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show run tracking statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  # Track runs in the default SQLite file
  gitsize history --store-backend sqlite

  # Check tracking status
  gitsize store status --store-backend sqlite`,
}

// storeStatusCmd shows run store status.
var storeStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display run tracking statistics and connection details",
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if runStore == nil {
			runstore.PrintStoreStatus(os.Stdout, runstore.DisabledStatus())
			return
		}
		status, err := runStore.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		runstore.PrintStoreStatus(os.Stdout, status)
	},
}

// storeClearCmd clears the tracked runs.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all tracked runs and samples",
	Long: `Delete all stored runs and their samples. The tables are kept.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  gitsize store export --store-backend sqlite --output-file backup
  gitsize store clear --store-backend sqlite`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		requireStore()
		if err := runStore.Clear(); err != nil {
			contract.LogFatal("Failed to clear run data", err)
		}
		fmt.Println("Run data cleared successfully.")
	},
}

// storeExportCmd exports tracked runs to Parquet files.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tracked runs to Parquet for BI tools and analytics",
	Long: `Export all stored runs and samples to Parquet.

Writes two files next to the --output-file prefix:
- <prefix>.runs.parquet    - one row per history run
- <prefix>.samples.parquet - one row per sample

Requires: --output-file parameter

Examples:
  gitsize store export --store-backend sqlite --output-file gitsize-data
  duckdb -c "SELECT sample_date, packed_bytes FROM read_parquet('gitsize-data.samples.parquet')"`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		requireStore()
		if err := runstore.Export(runStore, cfg.OutputFile, os.Stdout); err != nil {
			contract.LogFatal("Failed to export run data", err)
		}
	},
}

// storeMigrateCmd runs database migrations for the run store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  gitsize store migrate --store-backend postgresql --store-db-connect "host=localhost user=postgres dbname=gitsize"

  # Rollback to the initial state
  gitsize store migrate --store-backend sqlite --target-version 0`,
	PreRunE: storeMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		version, err := runstore.Migrate(cfg.StoreBackend, cfg.StoreDBConnect, targetVersion)
		if err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		fmt.Printf("Run store is at schema version %d.\n", version)
	},
}
