package outwriter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSizePlot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSizePlot(&buf, sampleHistory(true)))

	html := buf.String()
	assert.Contains(t, html, plotTitle)
	assert.Contains(t, html, packedName)
	assert.Contains(t, html, blobsName)
	assert.Contains(t, html, "2021-06-01")
}

func TestRenderSizePlot_PackedOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSizePlot(&buf, sampleHistory(false)))
	assert.Contains(t, buf.String(), packedName)
	assert.NotContains(t, buf.String(), blobsName)
}

func TestWriteSizePlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plot.html")
	require.NoError(t, WriteSizePlot(sampleHistory(false), path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "echarts")

	assert.Error(t, WriteSizePlot(sampleHistory(false), filepath.Join(t.TempDir(), "missing", "plot.html")))
}
