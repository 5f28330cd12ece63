package dictionary_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zohrehrezaei-dev/PPMI-curated-data-dashboard/internal/model"
	"github.com/zohrehrezaei-dev/PPMI-curated-data-dashboard/internal/service/dictionary"
)

// makeTable builds a text-only table from a header and rows.
func makeTable(columns []string, rows ...[]string) *model.Table {
	table := &model.Table{Columns: columns}
	for _, rec := range rows {
		row := make(model.Row, len(columns))
		for i, col := range columns {
			raw := ""
			if i < len(rec) {
				raw = rec[i]
			}
			if raw == "" {
				row[col] = model.Cell{Kind: model.CellMissing}
			} else {
				row[col] = model.Cell{Kind: model.CellText, Raw: raw}
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func mainTable() *model.Table {
	return makeTable(
		[]string{"PatientID", "Age", "UPDRS_Total"},
		[]string{"1001", "61", "32"},
	)
}

func newMerger() *dictionary.Merger {
	return dictionary.NewMerger(dictionary.DefaultColumnPatterns())
}

func TestMergeMatchesByNormalizedName(t *testing.T) {
	dict := makeTable(
		[]string{"Variable", "Description"},
		[]string{"  age ", "Patient age in years"},
		[]string{"UPDRS_TOTAL", "Unified PD Rating Scale score"},
		[]string{"NHY", "Hoehn and Yahr stage"},
	)

	result := newMerger().Merge(mainTable(), dict)

	// Normalized (trimmed, case-folded) names attach to columns; keys keep
	// the table's original column names.
	require.Contains(t, result.Entries, "Age")
	assert.Equal(t, "Patient age in years", result.Entries["Age"].Description)
	require.Contains(t, result.Entries, "UPDRS_Total")
	assert.NotContains(t, result.Entries, "PatientID")

	// NHY matches no column and lands in the unused list.
	require.Len(t, result.Unused, 1)
	assert.Equal(t, "NHY", result.Unused[0].Variable)
}

func TestMergeWithoutDictionary(t *testing.T) {
	result := newMerger().Merge(mainTable(), nil)

	assert.Empty(t, result.Entries)
	assert.Empty(t, result.Unused)
	assert.Zero(t, result.SkippedCodes)
}

func TestMergeParsesValueCodes(t *testing.T) {
	dict := makeTable(
		[]string{"Variable", "Description", "Value Codes"},
		[]string{"Age", "Patient age in years", ""},
		[]string{"UPDRS_Total", "Total score", "0 = Normal | 1 = Slight | broken | 2 = Mild"},
	)

	result := newMerger().Merge(mainTable(), dict)

	entry := result.Entries["UPDRS_Total"]
	assert.Equal(t, map[string]string{
		"0": "Normal",
		"1": "Slight",
		"2": "Mild",
	}, entry.ValueCodes)

	// The malformed unit is skipped alone; the rest of the cell survives.
	assert.Equal(t, 1, result.SkippedCodes)
}

func TestMergeForwardFillsMergedCells(t *testing.T) {
	// PPMI export style: variable name and description only on the first
	// row, continuation rows carry further code/decode pairs.
	dict := makeTable(
		[]string{"Variable", "Category", "Description", "Code", "Decode"},
		[]string{"Age", "Demographics", "Patient age in years", "", ""},
		[]string{"UPDRS_Total", "Motor Assessment", "Total score", "0", "Normal"},
		[]string{"", "", "", "1", "Slight"},
		[]string{"", "", "", "2", "Mild"},
	)

	result := newMerger().Merge(mainTable(), dict)

	entry := result.Entries["UPDRS_Total"]
	assert.Equal(t, "Motor Assessment", entry.Category)
	assert.Equal(t, map[string]string{
		"0": "Normal",
		"1": "Slight",
		"2": "Mild",
	}, entry.ValueCodes)
	assert.Equal(t, []string{"0", "1", "2"}, entry.CodeOrder)

	assert.Empty(t, result.Entries["Age"].ValueCodes)
}

func TestMergeSkipsHalfCodePairs(t *testing.T) {
	dict := makeTable(
		[]string{"Variable", "Description", "Code", "Decode"},
		[]string{"Age", "Patient age", "1", ""},
	)

	result := newMerger().Merge(mainTable(), dict)

	assert.Empty(t, result.Entries["Age"].ValueCodes)
	assert.Equal(t, 1, result.SkippedCodes)
}

func TestMergeLastSeenWins(t *testing.T) {
	dict := makeTable(
		[]string{"Variable", "Description"},
		[]string{"Age", "first description"},
		[]string{"Age", "second description"},
	)

	result := newMerger().Merge(mainTable(), dict)

	assert.Equal(t, "second description", result.Entries["Age"].Description)
}

func TestMergeIsIdempotent(t *testing.T) {
	dict := makeTable(
		[]string{"Variable", "Description", "Value Codes"},
		[]string{"Age", "Patient age in years", ""},
		[]string{"UPDRS_Total", "Total score", "0 = Normal; 1 = Slight"},
		[]string{"NHY", "Hoehn and Yahr stage", ""},
	)

	merger := newMerger()
	first := merger.Merge(mainTable(), dict)
	second := merger.Merge(mainTable(), dict)

	assert.Equal(t, first, second)
}

func TestMergePositionalFallback(t *testing.T) {
	// Unlabelled dictionary columns fall back to position: first column is
	// the variable, second the description.
	dict := makeTable(
		[]string{"A", "B"},
		[]string{"Age", "Patient age in years"},
	)

	result := newMerger().Merge(mainTable(), dict)

	assert.Equal(t, "Patient age in years", result.Entries["Age"].Description)
}
