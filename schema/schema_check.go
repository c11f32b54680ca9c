package schema

// CheckResult holds the results of a size policy check.
type CheckResult struct {
	Passed     bool
	Violations []CheckViolation
	TargetRef  string
	TargetID   string
	BaseRef    string // Empty when no growth gate was requested
	BaseID     string

	Packed       uint64
	Uncompressed *uint64
	BasePacked   uint64
	GrowthPct    float64 // Packed growth relative to the base, 0 without a base
}

// CheckViolation represents a single threshold that was exceeded.
type CheckViolation struct {
	Metric    string // e.g. "packed", "uncompressed", "growth"
	Observed  float64
	Threshold float64
}
