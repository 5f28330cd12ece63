package analysis_test

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zohrehrezaei-dev/PPMI-curated-data-dashboard/internal/model"
	"github.com/zohrehrezaei-dev/PPMI-curated-data-dashboard/internal/service/analysis"
)

// column is a test fixture column: a type plus raw values, "" meaning missing.
type column struct {
	varType model.VarType
	values  []string
}

func numeric(values ...string) column { return column{model.TypeNumeric, values} }
func text(values ...string) column    { return column{model.TypeText, values} }

func buildDataset(order []string, cols map[string]column) *model.Dataset {
	table := &model.Table{Columns: order}
	rows := 0
	for _, c := range cols {
		if len(c.values) > rows {
			rows = len(c.values)
		}
	}
	for i := 0; i < rows; i++ {
		row := make(model.Row, len(order))
		for _, name := range order {
			c := cols[name]
			raw := ""
			if i < len(c.values) {
				raw = c.values[i]
			}
			switch {
			case raw == "":
				row[name] = model.Cell{Kind: model.CellMissing}
			case c.varType == model.TypeNumeric:
				f, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					panic(err)
				}
				row[name] = model.Cell{Kind: model.CellNumber, Raw: raw, Number: f}
			default:
				row[name] = model.Cell{Kind: model.CellText, Raw: raw}
			}
		}
		table.Rows = append(table.Rows, row)
	}

	vars := make(map[string]model.VariableMetadata, len(order))
	for _, name := range order {
		vars[name] = model.VariableMetadata{
			Name:         name,
			Tags:         []string{},
			InferredType: cols[name].varType,
		}
	}

	return &model.Dataset{
		Table:      table,
		Variables:  vars,
		Dictionary: model.MergeResult{Entries: map[string]model.DictionaryEntry{}},
	}
}

func TestBuildOverview(t *testing.T) {
	ds := buildDataset(
		[]string{"PatientID", "Age", "Site"},
		map[string]column{
			"PatientID": text("PD-1", "PD-2", "PD-3", "PD-4"),
			"Age":       numeric("61", "", "70", "58"),
			"Site":      text("A", "B", "", "A"),
		},
	)

	cfg := analysis.DefaultConfig()
	cfg.PreviewRows = 2
	ov := analysis.NewAnalyzer(cfg).BuildOverview(ds)

	assert.Equal(t, 4, ov.Records)
	assert.Equal(t, 3, ov.Variables)
	assert.Equal(t, 2, ov.MissingValues)
	assert.InDelta(t, 83.33, ov.CompletenessPct, 0.001)
	assert.Equal(t, 1, ov.TypeCounts[model.TypeNumeric])
	assert.Equal(t, 2, ov.TypeCounts[model.TypeText])
	assert.Len(t, ov.Preview, 2)
	assert.Equal(t, []string{"PD-1", "61", "A"}, ov.Preview[0])
}

func TestBuildMissingReportSortsWorstFirst(t *testing.T) {
	ds := buildDataset(
		[]string{"A", "B", "C"},
		map[string]column{
			"A": numeric("1", "2", "3", "4"),
			"B": numeric("1", "", "3", ""),
			"C": numeric("1", "", "", ""),
		},
	)

	report := analysis.NewAnalyzer(analysis.DefaultConfig()).BuildMissingReport(ds)

	names := make([]string, 0, len(report.Variables))
	for _, v := range report.Variables {
		names = append(names, v.Name)
	}
	assert.Equal(t, []string{"C", "B", "A"}, names)

	assert.InDelta(t, 75, report.Variables[0].MissingPercent, 0.001)
	assert.Equal(t, 3, report.Variables[0].MissingCount)

	// Only C crosses the 50% threshold; B sits exactly on it.
	require.Len(t, report.HighMissing, 1)
	assert.Equal(t, "C", report.HighMissing[0].Name)
}

func TestBuildVariableReportNumericSummary(t *testing.T) {
	ds := buildDataset(
		[]string{"Age"},
		map[string]column{
			"Age": numeric("48", "70", "55", "62", "60", ""),
		},
	)

	report, err := analysis.NewAnalyzer(analysis.DefaultConfig()).BuildVariableReport(ds, "Age")
	require.NoError(t, err)

	assert.Equal(t, 1, report.MissingCount)
	assert.InDelta(t, 16.67, report.MissingPercent, 0.001)
	assert.Equal(t, 5, report.UniqueValues)
	assert.False(t, report.LooksLikeScale)

	require.NotNil(t, report.Numeric)
	assert.Equal(t, 5, report.Numeric.Count)
	assert.InDelta(t, 59, report.Numeric.Mean, 0.001)
	assert.InDelta(t, 8.1854, report.Numeric.Std, 0.001)
	assert.InDelta(t, 48, report.Numeric.Min, 0.001)
	assert.InDelta(t, 55, report.Numeric.Q1, 0.001)
	assert.InDelta(t, 60, report.Numeric.Median, 0.001)
	assert.InDelta(t, 62, report.Numeric.Q3, 0.001)
	assert.InDelta(t, 70, report.Numeric.Max, 0.001)
}

func TestBuildVariableReportDecodesValueCounts(t *testing.T) {
	ds := buildDataset(
		[]string{"Gender"},
		map[string]column{
			"Gender": numeric("1", "1", "2"),
		},
	)
	entry := model.DictionaryEntry{
		Variable:   "Gender",
		ValueCodes: map[string]string{"1": "Male", "2.0": "Female"},
	}
	ds.Dictionary.Entries["Gender"] = entry
	meta := ds.Variables["Gender"]
	meta.Entry = &entry
	ds.Variables["Gender"] = meta

	report, err := analysis.NewAnalyzer(analysis.DefaultConfig()).BuildVariableReport(ds, "Gender")
	require.NoError(t, err)

	require.Len(t, report.ValueCounts, 2)
	assert.Equal(t, "1", report.ValueCounts[0].Value)
	assert.Equal(t, "Male", report.ValueCounts[0].Label)
	assert.Equal(t, 2, report.ValueCounts[0].Count)
	assert.InDelta(t, 66.67, report.ValueCounts[0].Percent, 0.001)

	// "2.0" in the dictionary still labels the data value "2".
	assert.Equal(t, "Female", report.ValueCounts[1].Label)
}

func TestBuildVariableReportFlagsOutliers(t *testing.T) {
	ds := buildDataset(
		[]string{"ReactionTime"},
		map[string]column{
			"ReactionTime": numeric("10", "12", "11", "13", "12", "100"),
		},
	)

	report, err := analysis.NewAnalyzer(analysis.DefaultConfig()).BuildVariableReport(ds, "ReactionTime")
	require.NoError(t, err)

	require.NotNil(t, report.Outliers)
	assert.Equal(t, 1, report.Outliers.Count)
	assert.InDelta(t, 16.67, report.Outliers.Percent, 0.001)
	assert.InDelta(t, 9, report.Outliers.LowerFence, 0.001)
	assert.InDelta(t, 15, report.Outliers.UpperFence, 0.001)
}

func TestBuildQualityReport(t *testing.T) {
	ds := buildDataset(
		[]string{"Age", "Site", "ReactionTime"},
		map[string]column{
			"Age":          numeric("61", "58", "70", "", "66", "54"),
			"Site":         text("A", "B", "A", "B", "A", "B"),
			"ReactionTime": numeric("10", "12", "11", "13", "12", "100"),
		},
	)

	report := analysis.NewAnalyzer(analysis.DefaultConfig()).BuildQualityReport(ds)

	assert.Equal(t, 6, report.Overview.Records)
	assert.Equal(t, 1, report.Overview.MissingValues)
	assert.Len(t, report.Missing.Variables, 3)

	// Only numeric variables get an outlier row.
	require.Len(t, report.Outliers, 2)
	assert.Equal(t, "Age", report.Outliers[0].Name)
	assert.Zero(t, report.Outliers[0].Count)
	assert.Equal(t, "ReactionTime", report.Outliers[1].Name)
	assert.Equal(t, 1, report.Outliers[1].Count)
	assert.InDelta(t, 16.67, report.Outliers[1].Percent, 0.001)
}

func TestBuildVariableReportScaleDetection(t *testing.T) {
	ds := buildDataset(
		[]string{"NHY", "Weight"},
		map[string]column{
			"NHY":    numeric("0", "1", "2", "3", "4", "2", "1"),
			"Weight": numeric("72.5", "81", "64.2", "90", "77.1", "68", "83"),
		},
	)

	analyzer := analysis.NewAnalyzer(analysis.DefaultConfig())

	nhy, err := analyzer.BuildVariableReport(ds, "NHY")
	require.NoError(t, err)
	assert.True(t, nhy.LooksLikeScale)

	weight, err := analyzer.BuildVariableReport(ds, "Weight")
	require.NoError(t, err)
	assert.False(t, weight.LooksLikeScale)
}

func TestBuildVariableReportUnknownName(t *testing.T) {
	ds := buildDataset([]string{"Age"}, map[string]column{"Age": numeric("61")})

	_, err := analysis.NewAnalyzer(analysis.DefaultConfig()).BuildVariableReport(ds, "nope")
	assert.Error(t, err)
}

func TestBuildCorrelations(t *testing.T) {
	ds := buildDataset(
		[]string{"X", "Y", "Z", "Site"},
		map[string]column{
			"X":    numeric("1", "2", "3", "4"),
			"Y":    numeric("2", "4", "6", "8"),
			"Z":    numeric("4", "3", "2", "1"),
			"Site": text("A", "B", "A", "B"),
		},
	)

	report := analysis.NewAnalyzer(analysis.DefaultConfig()).BuildCorrelations(ds)

	assert.Equal(t, []string{"X", "Y", "Z"}, report.Columns)
	assert.False(t, report.Truncated)

	require.Len(t, report.Matrix, 3)
	assert.InDelta(t, 1, report.Matrix[0][0], 0.001)
	assert.InDelta(t, 1, report.Matrix[0][1], 0.001)
	assert.InDelta(t, -1, report.Matrix[0][2], 0.001)
	assert.InDelta(t, report.Matrix[2][0], report.Matrix[0][2], 0.001)

	require.Len(t, report.TopPairs, 3)
	for _, p := range report.TopPairs {
		assert.InDelta(t, 1, math.Abs(p.R), 0.001)
	}
}

func TestBuildCorrelationsUndefinedIsZero(t *testing.T) {
	// A constant column has zero variance; its correlations come back 0.
	ds := buildDataset(
		[]string{"X", "Const"},
		map[string]column{
			"X":     numeric("1", "2", "3"),
			"Const": numeric("5", "5", "5"),
		},
	)

	report := analysis.NewAnalyzer(analysis.DefaultConfig()).BuildCorrelations(ds)
	assert.Equal(t, 0.0, report.Matrix[0][1])
}

func TestBuildCorrelationsTruncates(t *testing.T) {
	cols := map[string]column{}
	order := []string{}
	for _, name := range []string{"A", "B", "C"} {
		cols[name] = numeric("1", "2", "3")
		order = append(order, name)
	}
	ds := buildDataset(order, cols)

	cfg := analysis.DefaultConfig()
	cfg.CorrelationMaxCols = 2
	report := analysis.NewAnalyzer(cfg).BuildCorrelations(ds)

	assert.True(t, report.Truncated)
	assert.Equal(t, []string{"A", "B"}, report.Columns)
}

func TestSearchVariables(t *testing.T) {
	ds := buildDataset(
		[]string{"PatientID", "Age", "UPDRS_Total"},
		map[string]column{
			"PatientID":   text("PD-1"),
			"Age":         numeric("61"),
			"UPDRS_Total": numeric("32"),
		},
	)
	entry := model.DictionaryEntry{Variable: "Age", Description: "Patient age in years"}
	meta := ds.Variables["Age"]
	meta.Entry = &entry
	ds.Variables["Age"] = meta

	all := analysis.SearchVariables(ds, "")
	require.Len(t, all, 3)
	assert.Equal(t, "PatientID", all[0].Name)

	byName := analysis.SearchVariables(ds, "updrs")
	require.Len(t, byName, 1)
	assert.Equal(t, "UPDRS_Total", byName[0].Name)

	// Description text matches too.
	byDesc := analysis.SearchVariables(ds, "years")
	require.Len(t, byDesc, 1)
	assert.Equal(t, "Age", byDesc[0].Name)
}

func TestBuildDictionaryView(t *testing.T) {
	ds := buildDataset(
		[]string{"Age", "Gender"},
		map[string]column{
			"Age":    numeric("61"),
			"Gender": numeric("1"),
		},
	)
	gender := model.DictionaryEntry{
		Variable:    "Gender",
		Description: "Patient sex",
		ValueCodes:  map[string]string{"1": "Male", "2": "Female"},
		CodeOrder:   []string{"1", "2"},
	}
	ds.Dictionary.Entries["Age"] = model.DictionaryEntry{Variable: "Age", Description: "Patient age in years"}
	ds.Dictionary.Entries["Gender"] = gender
	ds.Dictionary.Unused = []model.DictionaryEntry{{Variable: "NHY", Description: "Hoehn and Yahr stage"}}

	view := analysis.BuildDictionaryView(ds, "")
	require.Len(t, view.Rows, 3)
	assert.Equal(t, 1, view.UnusedCount)

	// Matched entries come first in column order, unused after.
	assert.Equal(t, "Age", view.Rows[0].Variable)
	assert.True(t, view.Rows[0].Matched)
	assert.Equal(t, "No codes", view.Rows[0].AllCodes)
	assert.Equal(t, "1: Male | 2: Female", view.Rows[1].AllCodes)
	assert.False(t, view.Rows[2].Matched)

	filtered := analysis.BuildDictionaryView(ds, "yahr")
	require.Len(t, filtered.Rows, 1)
	assert.Equal(t, "NHY", filtered.Rows[0].Variable)
}
