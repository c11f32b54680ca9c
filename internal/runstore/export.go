package runstore

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/gitsize/internal/contract"
	"github.com/huangsam/gitsize/internal/parquet"
)

// ExportFiles lists the files written by Export for a given prefix.
func ExportFiles(prefix string) (runsFile, samplesFile string) {
	return prefix + ".runs.parquet", prefix + ".samples.parquet"
}

// Export writes every stored run and sample to two Parquet files named after prefix.
func Export(store contract.RunStore, prefix string, out io.Writer) error {
	if prefix == "" {
		return errors.New("--output-file is required for export command")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	_, _ = fmt.Fprintf(out, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(out, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(out, "Total samples: %d\n", status.TotalSamples)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	samples, err := store.GetAllSamples()
	if err != nil {
		return fmt.Errorf("failed to retrieve samples: %w", err)
	}

	runsFile, samplesFile := ExportFiles(prefix)
	if err := parquet.WriteRunsParquet(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Exported %d runs to: %s\n", len(runs), runsFile)

	if err := parquet.WriteSamplesParquet(parquet.ConvertSampleRecords(samples), samplesFile); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Exported %d samples to: %s\n", len(samples), samplesFile)
	return nil
}
