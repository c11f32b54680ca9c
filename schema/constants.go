package schema

// Custom string types for type safety.
type (
	// SamplingMode represents the user's sampling override.
	SamplingMode string

	// Interval represents the sampling interval actually used.
	Interval string

	// OutputMode represents the format of the output.
	OutputMode string

	// FailurePolicy represents what the scheduler does when one sample fails.
	FailurePolicy string

	// DatabaseBackend represents the database backend for run tracking.
	DatabaseBackend string
)

// All sampling modes supported.
const (
	AutoSampling    SamplingMode = "auto" // default
	YearlySampling  SamplingMode = "yearly"
	MonthlySampling SamplingMode = "monthly"
)

// All intervals.
const (
	YearlyInterval  Interval = "yearly"
	MonthlyInterval Interval = "monthly"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All failure policies supported.
const (
	FailFast        FailurePolicy = "fail-fast" // default
	ContinueOnError FailurePolicy = "continue"
)

// All store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// ValidSamplingModes lists all valid sampling modes.
var ValidSamplingModes = map[SamplingMode]struct{}{
	AutoSampling:    {},
	YearlySampling:  {},
	MonthlySampling: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidFailurePolicies lists all valid failure policies.
var ValidFailurePolicies = map[FailurePolicy]struct{}{
	FailFast:        {},
	ContinueOnError: {},
}

// ValidDatabaseBackends lists all valid store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
