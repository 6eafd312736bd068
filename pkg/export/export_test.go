package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Matricula", "Alumno", "Final"},
		Rows: []map[string]string{
			{"Matricula": "A001", "Alumno": "Ana Lopez", "Final": "9"},
			{"Matricula": "A002", "Alumno": "Luis Perez"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Matricula,Alumno,Final", lines[0])
	assert.Equal(t, "A002,Luis Perez,", lines[2])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), "Boletas 1A")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestXLSXExporterRender(t *testing.T) {
	out, err := NewXLSXExporter().Render(sampleDataset(), "Boletas 1A")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(xlsxSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Boletas 1A", title)

	header, err := f.GetCellValue(xlsxSheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "Alumno", header)

	final, err := f.GetCellValue(xlsxSheet, "C4")
	require.NoError(t, err)
	assert.Equal(t, "9", final)
}

func TestCSVExporterWritesBOM(t *testing.T) {
	out, err := (&CSVExporter{BOM: true}).Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("\xEF\xBB\xBF")))
}

func TestPDFExporterWidensNamedColumns(t *testing.T) {
	widths := NewPDFExporter("Alumno").widths([]string{"Matricula", "Alumno", "Final"})
	require.Len(t, widths, 3)
	assert.InDelta(t, pdfPageWidth, widths[0]+widths[1]+widths[2], 0.001)
	assert.InDelta(t, widths[0]*3, widths[1], 0.001)
}
