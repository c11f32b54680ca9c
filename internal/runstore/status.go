package runstore

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/huangsam/gitsize/schema"
)

// PrintStoreStatus prints run store status information.
func PrintStoreStatus(w io.Writer, status schema.StoreStatus) {
	_, _ = fmt.Fprintf(w, "Store Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		_, _ = fmt.Fprintf(w, "Last Run ID: %d\n", status.LastRunID)
		_, _ = fmt.Fprintf(w, "Last Run: %s\n", status.LastRunTime.Format("2006-01-02 15:04:05"))
		_, _ = fmt.Fprintf(w, "Oldest Run: %s\n", status.OldestRun.Format("2006-01-02 15:04:05"))
	}
	_, _ = fmt.Fprintf(w, "Total Samples: %d\n", status.TotalSamples)
	_, _ = fmt.Fprintln(w, "Table Sizes:")
	for _, table := range slices.Sorted(maps.Keys(status.TableSizes)) {
		_, _ = fmt.Fprintf(w, "  %s: %d rows\n", table, status.TableSizes[table])
	}
}

// DisabledStatus is reported when run tracking is turned off.
func DisabledStatus() schema.StoreStatus {
	return schema.StoreStatus{Backend: string(schema.NoneBackend)}
}
