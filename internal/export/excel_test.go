package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/innovadoor/sitemeasure/internal/importer"
	"github.com/innovadoor/sitemeasure/internal/model"
)

func TestExportExcel_Layout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "measurement.xlsx")
	require.NoError(t, ExportExcel(path, buildTestMeasurement()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(0)
	assert.Equal(t, "Regular Shutter", sheet)

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus two filled rows")

	assert.Equal(t, "Sr No", rows[0][0])
	assert.Equal(t, "Location", rows[0][1])
	assert.Equal(t, "A00001", rows[1][0])
	assert.Equal(t, "Balcony", rows[2][4])

	typ, err := f.GetCellType(sheet, "F2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ, "widths are numeric")
}

func TestExportExcel_ReimportsInputs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roundtrip.xlsx")
	require.NoError(t, ExportExcel(path, buildTestMeasurement()))

	result := importer.ImportFile(path, model.KindRegularShutter)
	require.Empty(t, result.Errors)
	require.Len(t, result.Lines, 2)

	first := result.Lines[0]
	assert.Equal(t, "A", first.Value(model.FieldBldg))
	assert.Equal(t, "959", first.Value(model.FieldWidth))
	assert.Equal(t, model.CustomAreaCode, result.Lines[1].Value(model.FieldArea))
	assert.Equal(t, "Balcony", result.Lines[1].Value(model.FieldCustomArea))
}

func TestExportExcel_Empty(t *testing.T) {
	m := model.NewMeasurement(model.KindRegularShutter, model.Header{}, model.Party{}, nil)
	assert.ErrorIs(t, ExportExcel(filepath.Join(t.TempDir(), "x.xlsx"), m), ErrNoRows)
}
