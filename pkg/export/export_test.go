package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Report",
		GroupBy: "Section",
		Headers: []string{"Section", "Metric", "Value"},
		Rows: []map[string]string{
			{"Section": "Scores", "Metric": "Average", "Value": "2.50"},
			{"Section": "Scores", "Metric": "Rows"},
			{"Section": "Weekly", "Metric": "Week 0 completed", "Value": "2"},
		},
	}
}

func TestCSVExporterKeepsEveryColumn(t *testing.T) {
	body, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"Section", "Metric", "Value"}, records[0])
	assert.Equal(t, []string{"Scores", "Rows", ""}, records[2])
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRendersGroupedDataset(t *testing.T) {
	body, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestColumnsDropGroupHeader(t *testing.T) {
	data := sampleDataset()
	assert.Equal(t, []string{"Metric", "Value"}, data.columns())

	data.GroupBy = "Missing"
	assert.Equal(t, data.Headers, data.columns())

	widths := columnWidths(2)
	assert.InDelta(t, pageWidth, widths[0]+widths[1], 0.001)
	assert.Greater(t, widths[0], widths[1])
}
