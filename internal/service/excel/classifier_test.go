package excel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/zohrehrezaei-dev/PPMI-curated-data-dashboard/internal/model"
	"github.com/zohrehrezaei-dev/PPMI-curated-data-dashboard/internal/service/excel"
)

// testSheet is one worksheet of a built workbook: a header row plus rows.
type testSheet struct {
	name string
	grid [][]string
}

// buildWorkbook creates an in-memory workbook with the sheets in order.
func buildWorkbook(t *testing.T, sheets []testSheet) *excelize.File {
	t.Helper()

	wb := excelize.NewFile()
	defaultSheet := wb.GetSheetName(wb.GetActiveSheetIndex())

	for _, sheet := range sheets {
		_, err := wb.NewSheet(sheet.name)
		require.NoError(t, err)
		for r, rec := range sheet.grid {
			row := make([]interface{}, 0, len(rec))
			for _, cell := range rec {
				row = append(row, cell)
			}
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, wb.SetSheetRow(sheet.name, cell, &row))
		}
	}

	if len(sheets) > 0 {
		require.NoError(t, wb.DeleteSheet(defaultSheet))
	}

	return wb
}

func patientGrid() [][]string {
	return [][]string{
		{"PatientID", "Age", "UPDRS_Total", "Gender", "Visit"},
		{"1001", "61", "32", "1", "BL"},
		{"1002", "55", "18", "2", "BL"},
		{"1003", "70", "41", "1", "BL"},
		{"1004", "63", "27", "2", "BL"},
		{"1005", "58", "", "1", "BL"},
		{"1006", "66", "35", "2", "BL"},
	}
}

func dictionaryGrid() [][]string {
	return [][]string{
		{"Variable", "Description"},
		{"Age", "Patient age in years"},
		{"UPDRS_Total", "Unified PD Rating Scale score"},
	}
}

func TestClassifySingleDataSheet(t *testing.T) {
	wb := buildWorkbook(t, []testSheet{
		{name: "PatientData", grid: patientGrid()},
	})

	cl := excel.NewClassifier(excel.DefaultClassifierConfig())
	recs, mainSheet, dictSheet := cl.Classify(wb)

	assert.Equal(t, "PatientData", mainSheet)
	assert.Empty(t, dictSheet)
	require.Len(t, recs, 1)
	assert.Equal(t, model.RoleMainData, recs[0].Role)
}

func TestClassifyDataAndDictionary(t *testing.T) {
	wb := buildWorkbook(t, []testSheet{
		{name: "PatientData", grid: patientGrid()},
		{name: "Data Dictionary", grid: dictionaryGrid()},
	})

	cl := excel.NewClassifier(excel.DefaultClassifierConfig())
	recs, mainSheet, dictSheet := cl.Classify(wb)

	assert.Equal(t, "PatientData", mainSheet)
	assert.Equal(t, "Data Dictionary", dictSheet)

	roles := map[string]model.SheetRole{}
	for _, rec := range recs {
		roles[rec.SheetName] = rec.Role
	}
	assert.Equal(t, model.RoleMainData, roles["PatientData"])
	assert.Equal(t, model.RoleDictionary, roles["Data Dictionary"])
}

// The dictionary sheet name contains "data" too; the shape heuristic must
// keep it from being picked as main data.
func TestClassifyDictionaryNameContainingData(t *testing.T) {
	wb := buildWorkbook(t, []testSheet{
		{name: "20250609", grid: patientGrid()},
		{name: "Data dictionary", grid: dictionaryGrid()},
	})

	cl := excel.NewClassifier(excel.DefaultClassifierConfig())
	_, mainSheet, dictSheet := cl.Classify(wb)

	assert.Equal(t, "20250609", mainSheet)
	assert.Equal(t, "Data dictionary", dictSheet)
}

func TestClassifyFallbackFirstNonEmpty(t *testing.T) {
	wb := buildWorkbook(t, []testSheet{
		{name: "Notes", grid: [][]string{{"a", "b"}, {"1", "2"}}},
		{name: "More", grid: [][]string{{"x"}, {"y"}}},
	})

	cl := excel.NewClassifier(excel.DefaultClassifierConfig())
	recs, mainSheet, dictSheet := cl.Classify(wb)

	// Nothing clears the data threshold: first non-empty sheet wins, the
	// best-effort choice is never an error.
	assert.Equal(t, "Notes", mainSheet)
	assert.Empty(t, dictSheet)
	assert.Equal(t, model.RoleMainData, recs[0].Role)
	assert.Equal(t, model.RoleUnknown, recs[1].Role)
}

func TestClassifyTieBreaksBySheetOrder(t *testing.T) {
	wb := buildWorkbook(t, []testSheet{
		{name: "Cohort A", grid: patientGrid()},
		{name: "Cohort B", grid: patientGrid()},
	})

	cl := excel.NewClassifier(excel.DefaultClassifierConfig())
	_, mainSheet, _ := cl.Classify(wb)

	assert.Equal(t, "Cohort A", mainSheet)
}

func TestClassifyEmptyWorkbookHasNoMain(t *testing.T) {
	wb := buildWorkbook(t, []testSheet{
		{name: "Blank", grid: nil},
	})

	cl := excel.NewClassifier(excel.DefaultClassifierConfig())
	_, mainSheet, _ := cl.Classify(wb)

	assert.Empty(t, mainSheet)
}
