package contract

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/gitsize/schema"
)

// Default values for configuration.
const (
	DefaultRef       = "HEAD"
	DefaultPrecision = 1
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	RepoPath         string
	Ref              string
	Sampling         schema.SamplingMode
	WantUncompressed bool
	Workers          int
	Policy           schema.FailurePolicy
	Precision        int
	Output           schema.OutputMode
	OutputFile       string
	PlotFile         string
	Debug            bool
	Progress         bool
	Width            int // Terminal width override for table output

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output

	// --- Check thresholds (0 disables a threshold) ---
	MaxPackedBytes       uint64
	MaxUncompressedBytes uint64
	BaseRef              string
	MaxGrowthPct         float64
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	OutputFile     string `mapstructure:"output-file"`
	Workers        int    `mapstructure:"workers"`
	Precision      int    `mapstructure:"precision"`
	Output         string `mapstructure:"output"`
	Debug          bool   `mapstructure:"debug"`
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`
	Emoji          string `mapstructure:"emoji"`
	Color          string `mapstructure:"color"`
	Progress       string `mapstructure:"progress"`
	Width          int    `mapstructure:"width"`

	// --- Fields from historyCmd.Flags() ---
	Ref          string `mapstructure:"ref"`
	Sampling     string `mapstructure:"sampling"`
	Yearly       bool   `mapstructure:"yearly"`
	Monthly      bool   `mapstructure:"monthly"`
	Uncompressed bool   `mapstructure:"uncompressed"`
	Policy       string `mapstructure:"policy"`
	Plot         string `mapstructure:"plot"`

	// --- Fields from checkCmd.Flags() ---
	MaxSize         string  `mapstructure:"max-size"`
	MaxUncompressed string  `mapstructure:"max-uncompressed"`
	Base            string  `mapstructure:"base"`
	MaxGrowth       float64 `mapstructure:"max-growth"`
}

// ConfigParams returns the settings that shape a run, for storing alongside it.
func (c *Config) ConfigParams() map[string]any {
	return map[string]any{
		"ref":          c.Ref,
		"sampling":     string(c.Sampling),
		"uncompressed": c.WantUncompressed,
		"workers":      c.Workers,
		"policy":       string(c.Policy),
	}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processSampling(cfg, input); err != nil {
		return err
	}
	if err := processCheckThresholds(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return resolveRepoPath(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates the run store backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	backend := strings.ToLower(strings.TrimSpace(input.StoreBackend))
	if backend == "" {
		backend = string(schema.NoneBackend)
	}
	cfg.StoreBackend = schema.DatabaseBackend(backend)
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	return ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect)
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.PlotFile = strings.TrimSpace(input.Plot)
	cfg.WantUncompressed = input.Uncompressed
	cfg.Debug = input.Debug

	cfg.Ref = strings.TrimSpace(input.Ref)
	if cfg.Ref == "" {
		cfg.Ref = DefaultRef
	}

	// Parse emoji flag
	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// Parse progress flag
	progress, err := ParseBoolString(input.Progress)
	if err != nil {
		return fmt.Errorf("invalid --progress value: %w", err)
	}
	cfg.Progress = progress

	if input.Width < 0 {
		return fmt.Errorf("width must not be negative (received %d)", input.Width)
	}
	cfg.Width = input.Width

	// --- 1. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 2. Policy Validation ---
	policy := strings.ToLower(strings.TrimSpace(input.Policy))
	if policy == "" {
		policy = string(schema.FailFast)
	}
	cfg.Policy = schema.FailurePolicy(policy)
	if _, ok := schema.ValidFailurePolicies[cfg.Policy]; !ok {
		return fmt.Errorf("invalid policy '%s'. must be fail-fast, continue", input.Policy)
	}

	// --- 3. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	return nil
}

// processSampling merges the --sampling value with the --yearly/--monthly shortcuts.
func processSampling(cfg *Config, input *ConfigRawInput) error {
	if input.Yearly && input.Monthly {
		return fmt.Errorf("--yearly and --monthly are mutually exclusive")
	}

	mode := strings.ToLower(strings.TrimSpace(input.Sampling))
	if mode == "" {
		mode = string(schema.AutoSampling)
	}
	cfg.Sampling = schema.SamplingMode(mode)
	if _, ok := schema.ValidSamplingModes[cfg.Sampling]; !ok {
		return fmt.Errorf("invalid sampling '%s'. must be auto, yearly, monthly", input.Sampling)
	}

	forced := schema.AutoSampling
	switch {
	case input.Yearly:
		forced = schema.YearlySampling
	case input.Monthly:
		forced = schema.MonthlySampling
	}
	if forced != schema.AutoSampling {
		if cfg.Sampling != schema.AutoSampling && cfg.Sampling != forced {
			return fmt.Errorf("--sampling %s conflicts with --%s", cfg.Sampling, forced)
		}
		cfg.Sampling = forced
	}
	return nil
}

// processCheckThresholds parses the size gates used by the check command.
func processCheckThresholds(cfg *Config, input *ConfigRawInput) error {
	if s := strings.TrimSpace(input.MaxSize); s != "" {
		n, err := humanize.ParseBytes(s)
		if err != nil {
			return fmt.Errorf("invalid --max-size '%s': %w", input.MaxSize, err)
		}
		cfg.MaxPackedBytes = n
	}
	if s := strings.TrimSpace(input.MaxUncompressed); s != "" {
		n, err := humanize.ParseBytes(s)
		if err != nil {
			return fmt.Errorf("invalid --max-uncompressed '%s': %w", input.MaxUncompressed, err)
		}
		cfg.MaxUncompressedBytes = n
		cfg.WantUncompressed = true
	}

	if input.MaxGrowth < 0 {
		return fmt.Errorf("max-growth must not be negative (received %.1f)", input.MaxGrowth)
	}
	cfg.BaseRef = strings.TrimSpace(input.Base)
	if input.MaxGrowth > 0 && cfg.BaseRef == "" {
		return fmt.Errorf("--max-growth requires --base")
	}
	cfg.MaxGrowthPct = input.MaxGrowth
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// resolveRepoPath turns the positional argument into a validated absolute directory.
func resolveRepoPath(cfg *Config, input *ConfigRawInput) error {
	searchPath := input.RepoPathStr
	if searchPath == "" {
		searchPath = "."
	}
	if strings.ContainsRune(searchPath, 0) {
		return fmt.Errorf("%w: path contains a NUL byte", ErrInvalidPath)
	}
	absPath, err := filepath.Abs(searchPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPath, err)
	}
	absPath = filepath.Clean(absPath)
	if err := ValidateRepoPath(absPath); err != nil {
		return err
	}
	cfg.RepoPath = absPath
	return nil
}

// Clone returns a copy of the config that callers may change freely.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// RevalidateHistory re-checks the history settings after a caller outside the
// CLI (e.g. an MCP tool) has overridden them.
func RevalidateHistory(cfg *Config) error {
	if strings.TrimSpace(cfg.Ref) == "" {
		cfg.Ref = DefaultRef
	}
	if cfg.Sampling == "" {
		cfg.Sampling = schema.AutoSampling
	}
	if _, ok := schema.ValidSamplingModes[cfg.Sampling]; !ok {
		return fmt.Errorf("invalid sampling '%s'. must be auto, yearly, monthly", cfg.Sampling)
	}
	if cfg.Policy == "" {
		cfg.Policy = schema.FailFast
	}
	if _, ok := schema.ValidFailurePolicies[cfg.Policy]; !ok {
		return fmt.Errorf("invalid policy '%s'. must be fail-fast, continue", cfg.Policy)
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", cfg.Workers)
	}
	absPath, err := filepath.Abs(cfg.RepoPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPath, err)
	}
	if err := ValidateRepoPath(absPath); err != nil {
		return err
	}
	cfg.RepoPath = absPath
	return nil
}
