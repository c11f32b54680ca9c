package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/gitsize/internal/contract"
	"github.com/huangsam/gitsize/internal/parquet"
	"github.com/huangsam/gitsize/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteSizeHistory outputs a size history, dispatching based on the output format configured.
func WriteSizeHistory(history *schema.SizeHistory, cfg *contract.Config, duration time.Duration) error {
	_, fmtPct := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, history)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHistoryCSV(w, history)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteSamples(w, parquet.ConvertSampleOutputs(0, history.Samples))
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHistoryTable(w, history, cfg, fmtPct, duration)
		}, "Wrote table")
	}
	return nil
}

// writeHistoryCSV writes one row per sample. The uncompressed column only
// exists when it was requested and stays empty for failed samples.
func writeHistoryCSV(w io.Writer, history *schema.SizeHistory) error {
	header := []string{"date", "commit", "cumulative-size"}
	if history.WantUncompressed {
		header = append(header, "uncompressed-size")
	}
	header = append(header, "error")

	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, s := range history.Samples {
			row := []string{s.Date, s.CommitID, strconv.FormatUint(s.PackedBytes, 10)}
			if history.WantUncompressed {
				uncompressed := ""
				if s.UncompressedBytes != nil {
					uncompressed = strconv.FormatUint(*s.UncompressedBytes, 10)
				}
				row = append(row, uncompressed)
			}
			row = append(row, s.Error)
			if err := csvWriter.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// growthCells returns the growth and status cells for every sample.
// Growth is relative to the previous successfully measured sample.
func growthCells(samples []schema.SampleOutput, cfg *contract.Config, fmtPct func(float64) string) (growth, status []string) {
	growth = make([]string, len(samples))
	status = make([]string, len(samples))
	var prev *schema.SampleOutput
	for i := range samples {
		s := &samples[i]
		if s.ErrorKind != "" {
			growth[i] = "-"
			status[i] = contract.FailedValue
			if cfg.UseColors {
				status[i] = contract.FailedColor.Sprint(contract.FailedValue)
			}
			continue
		}
		if prev == nil {
			growth[i] = "-"
			status[i] = contract.OKValue
		} else {
			pct := contract.GrowthPercent(prev.PackedBytes, s.PackedBytes)
			growth[i] = fmtPct(pct)
			status[i] = contract.GetPlainLabel(pct)
			if cfg.UseColors {
				status[i] = contract.GetColorLabel(pct)
			}
		}
		prev = s
	}
	return growth, status
}

// writeHistoryTable generates and writes the human-readable table and summary.
func writeHistoryTable(writer io.Writer, history *schema.SizeHistory, cfg *contract.Config, fmtPct func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(writer)

	// 1. Define Headers
	table.Header([]string{"Date", "Commit", "Packed", "Uncompressed", "Growth", "Status"})

	// 2. Configure Separators/Borders to match a minimal look
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	commitWidth := GetCommitColumnWidth(cfg)
	growth, status := growthCells(history.Samples, cfg, fmtPct)
	data := make([][]string, 0, len(history.Samples))
	for i, s := range history.Samples {
		packed, uncompressed := "-", "-"
		if s.ErrorKind == "" {
			packed = contract.FormatSize(s.PackedBytes)
		}
		if s.UncompressedBytes != nil {
			uncompressed = contract.FormatSize(*s.UncompressedBytes)
		}
		data = append(data, []string{
			s.Date,
			truncateID(s.CommitID, commitWidth),
			packed,
			uncompressed,
			growth[i],
			status[i],
		})
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if err := writeSummary(writer, history, cfg); err != nil {
		return err
	}
	_, err := fmt.Fprintf(writer, "Analysis completed in %v with %d workers\n", duration, cfg.Workers)
	return err
}

// successfulSamples returns the samples that were measured.
func successfulSamples(samples []schema.SampleOutput) []schema.SampleOutput {
	var ok []schema.SampleOutput
	for _, s := range samples {
		if s.ErrorKind == "" {
			ok = append(ok, s)
		}
	}
	return ok
}

// writeSummary prints the summary block that follows the table.
func writeSummary(w io.Writer, history *schema.SizeHistory, cfg *contract.Config) error {
	lines := []string{
		"",
		"=== Summary ===",
		fmt.Sprintf("Repository: %s", history.RepoPath),
		fmt.Sprintf("Total commits analyzed: %s", contract.FormatCount(int64(history.TotalCommits))),
		fmt.Sprintf("Time span: %s to %s (%.*f years)",
			history.FirstCommit.Time().Format(schema.DateFormat),
			history.LastCommit.Time().Format(schema.DateFormat),
			cfg.Precision, history.SpanYears),
		fmt.Sprintf("Sample points: %d", len(history.Samples)),
		fmt.Sprintf("Sampling method: %s", history.Interval),
	}

	measured := successfulSamples(history.Samples)
	if len(measured) > 0 {
		first, last := measured[0], measured[len(measured)-1]
		lines = append(lines,
			fmt.Sprintf("Initial size: %s (%s)", contract.FormatSize(first.PackedBytes), first.Date),
			fmt.Sprintf("Final size: %s (%s)", contract.FormatSize(last.PackedBytes), last.Date))
		if len(measured) >= 2 {
			var grown uint64
			if last.PackedBytes > first.PackedBytes {
				grown = last.PackedBytes - first.PackedBytes
			}
			lines = append(lines, fmt.Sprintf("Total growth: %s", contract.FormatSize(grown)))
		}
		if last.UncompressedBytes != nil {
			lines = append(lines, fmt.Sprintf("Final uncompressed size: %s", contract.FormatSize(*last.UncompressedBytes)))
		}
	}
	if failed := len(history.Samples) - len(measured); failed > 0 {
		lines = append(lines, fmt.Sprintf("Failed samples: %d", failed))
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
