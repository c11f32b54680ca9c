package outwriter

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/huangsam/gitsize/schema"
)

const (
	plotTitle   = "Git Repository Size Over Time"
	plotHeight  = "600px"
	bytesPerMB  = 1_000_000.0
	packedName  = "Cumulative Size"
	blobsName   = "Uncompressed Size"
	sizeAxisFmt = "Size (MB)"
)

// WriteSizePlot renders the history as a standalone HTML line chart.
func WriteSizePlot(history *schema.SizeHistory, plotFile string) error {
	file, err := os.Create(plotFile)
	if err != nil {
		return fmt.Errorf("failed to create plot file: %w", err)
	}
	if err := RenderSizePlot(file, history); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote plot to %s\n", plotFile)
	return nil
}

// RenderSizePlot writes the chart page to w. Failed samples become gaps in the line.
func RenderSizePlot(w io.Writer, history *schema.SizeHistory) error {
	line := buildSizeChart(history)
	if err := line.Render(w); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}

// buildSizeChart builds the packed series and, when measured, the uncompressed series.
func buildSizeChart(history *schema.SizeHistory) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: plotTitle, Width: "100%", Height: plotHeight}),
		charts.WithTitleOpts(opts.Title{Title: plotTitle, Subtitle: history.RepoPath, Left: "center"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "8%"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}, opts.DataZoom{Type: "inside"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date"}),
		charts.WithYAxisOpts(opts.YAxis{Name: sizeAxisFmt}),
	)

	labels := make([]string, len(history.Samples))
	packed := make([]opts.LineData, len(history.Samples))
	blobs := make([]opts.LineData, len(history.Samples))
	for i, s := range history.Samples {
		labels[i] = s.Date
		packed[i] = opts.LineData{Value: "-"}
		blobs[i] = opts.LineData{Value: "-"}
		if s.ErrorKind != "" {
			continue
		}
		packed[i] = opts.LineData{Value: float64(s.PackedBytes) / bytesPerMB}
		if s.UncompressedBytes != nil {
			blobs[i] = opts.LineData{Value: float64(*s.UncompressedBytes) / bytesPerMB}
		}
	}

	line.SetXAxis(labels)
	line.AddSeries(packedName, packed,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		charts.WithLineStyleOpts(opts.LineStyle{Width: 2}),
	)
	if history.WantUncompressed {
		line.AddSeries(blobsName, blobs,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
			charts.WithLineStyleOpts(opts.LineStyle{Width: 1, Type: "dashed"}),
		)
	}
	return line
}
