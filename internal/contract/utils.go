package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

// Growth label constants.
const (
	SurgeValue  = "Surge"  // Growth of 25% or more between samples
	GrowthValue = "Growth" // Any other increase
	FlatValue   = "Flat"   // No change
	ShrinkValue = "Shrink" // Repository got smaller
	FailedValue = "Failed" // Sample could not be measured
	OKValue     = "OK"     // Sample measured
)

// SurgeThreshold is the growth percentage labelled as a surge.
const SurgeThreshold = 25.0

// Color variables for console output.
var (
	SurgeColor  = color.New(color.FgRed, color.Bold) // SurgeColor represents a bloat event.
	GrowthColor = color.New(color.FgYellow)          // GrowthColor represents ordinary growth.
	FlatColor   = color.New(color.FgCyan)            // FlatColor represents no change.
	ShrinkColor = color.New(color.FgGreen)           // ShrinkColor represents a size reduction.
	FailedColor = color.New(color.FgMagenta, color.Bold)
)

// debugEnabled gates LogDebug output.
var debugEnabled atomic.Bool

// GetPlainLabel returns a plain text label for the growth percentage between
// two consecutive samples. This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(growthPct float64) string {
	switch {
	case growthPct >= SurgeThreshold:
		return SurgeValue
	case growthPct > 0:
		return GrowthValue
	case growthPct == 0:
		return FlatValue
	default:
		return ShrinkValue
	}
}

// GrowthPercent returns the relative change from prev to curr in percent.
// Growth from zero is reported as 100%, no change from zero as 0%.
func GrowthPercent(prev, curr uint64) float64 {
	if prev == 0 {
		if curr == 0 {
			return 0
		}
		return 100
	}
	return (float64(curr) - float64(prev)) / float64(prev) * 100
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(growthPct float64) string {
	text := GetPlainLabel(growthPct)

	switch text {
	case SurgeValue:
		return SurgeColor.Sprint(text)
	case GrowthValue:
		return GrowthColor.Sprint(text)
	case FlatValue:
		return FlatColor.Sprint(text)
	default: // "Shrink"
		return ShrinkColor.Sprint(text)
	}
}

// FormatSize renders a byte count with decimal (SI) units, e.g. "83 MB".
func FormatSize(bytes uint64) string {
	return humanize.Bytes(bytes)
}

// FormatCount renders an integer with thousands separators.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}

// ShortID returns the abbreviated form of a commit id used in tables.
func ShortID(id string) string {
	if len(id) > 10 {
		return id[:10]
	}
	return id
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// SetDebug toggles LogDebug output.
func SetDebug(enabled bool) {
	debugEnabled.Store(enabled)
}

// DebugEnabled reports whether debug output is on.
func DebugEnabled() bool {
	return debugEnabled.Load()
}

// LogDebug logs a formatted diagnostic line to stderr when debug output is on.
func LogDebug(format string, args ...any) {
	if !debugEnabled.Load() {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "Debug "+format+"\n", args...)
}

// GetRunStoreDBFilePath returns the path to the SQLite DB file for run tracking.
func GetRunStoreDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".gitsize_runs.db"
	}
	return filepath.Join(homeDir, ".gitsize_runs.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
