// Package analysis computes the dataset views served by the dashboard:
// overview figures, per-variable statistics, missing-data patterns and
// numeric correlations.
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/zohrehrezaei-dev/PPMI-curated-data-dashboard/internal/model"
)

// Config holds the analysis thresholds.
type Config struct {
	HighMissingPercent float64
	CorrelationMaxCols int
	TopCorrelations    int
	PreviewRows        int
	MaxValueCounts     int
}

// DefaultConfig returns the built-in analysis thresholds.
func DefaultConfig() Config {
	return Config{
		HighMissingPercent: 50,
		CorrelationMaxCols: 50,
		TopCorrelations:    10,
		PreviewRows:        10,
		MaxValueCounts:     20,
	}
}

// Analyzer computes reports over a session's dataset.
type Analyzer struct {
	cfg Config
}

// NewAnalyzer creates an analyzer with the given thresholds.
func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Overview is the dataset-level summary.
type Overview struct {
	Records           int                   `json:"records"`
	Variables         int                   `json:"variables"`
	MissingValues     int                   `json:"missingValues"`
	CompletenessPct   float64               `json:"completenessPct"`
	TypeCounts        map[model.VarType]int `json:"typeCounts"`
	DictionaryEntries int                   `json:"dictionaryEntries"`
	UnusedEntries     int                   `json:"unusedEntries"`
	SkippedCodes      int                   `json:"skippedCodes"`
	PreviewColumns    []string              `json:"previewColumns"`
	Preview           [][]string            `json:"preview"`
}

// BuildOverview summarizes the dataset shape, completeness and type mix.
func (a *Analyzer) BuildOverview(ds *model.Dataset) Overview {
	table := ds.Table
	missing := 0
	for _, row := range table.Rows {
		for _, col := range table.Columns {
			if row[col].IsMissing() {
				missing++
			}
		}
	}

	total := table.RowCount() * table.ColumnCount()
	completeness := 100.0
	if total > 0 {
		completeness = round2(100 * float64(total-missing) / float64(total))
	}

	typeCounts := make(map[model.VarType]int)
	for _, meta := range ds.Variables {
		typeCounts[meta.InferredType]++
	}

	previewN := a.cfg.PreviewRows
	if previewN > table.RowCount() {
		previewN = table.RowCount()
	}
	preview := make([][]string, 0, previewN)
	for _, row := range table.Rows[:previewN] {
		rec := make([]string, 0, len(table.Columns))
		for _, col := range table.Columns {
			rec = append(rec, row[col].Raw)
		}
		preview = append(preview, rec)
	}

	return Overview{
		Records:           table.RowCount(),
		Variables:         table.ColumnCount(),
		MissingValues:     missing,
		CompletenessPct:   completeness,
		TypeCounts:        typeCounts,
		DictionaryEntries: len(ds.Dictionary.Entries),
		UnusedEntries:     len(ds.Dictionary.Unused),
		SkippedCodes:      ds.Dictionary.SkippedCodes,
		PreviewColumns:    table.Columns,
		Preview:           preview,
	}
}

// VariableMissing is one row of the missing-data report.
type VariableMissing struct {
	Name           string        `json:"name"`
	MissingCount   int           `json:"missingCount"`
	MissingPercent float64       `json:"missingPercent"`
	UniqueValues   int           `json:"uniqueValues"`
	InferredType   model.VarType `json:"inferredType"`
}

// MissingReport lists per-variable missingness, worst first.
type MissingReport struct {
	Threshold   float64           `json:"threshold"`
	Variables   []VariableMissing `json:"variables"`
	HighMissing []VariableMissing `json:"highMissing"`
}

// BuildMissingReport analyzes missing-data patterns per variable.
func (a *Analyzer) BuildMissingReport(ds *model.Dataset) MissingReport {
	table := ds.Table
	rows := table.RowCount()

	vars := make([]VariableMissing, 0, len(table.Columns))
	for _, col := range table.Columns {
		missing := 0
		distinct := make(map[string]struct{})
		for _, c := range table.Column(col) {
			if c.IsMissing() {
				missing++
				continue
			}
			distinct[c.Raw] = struct{}{}
		}

		pct := 0.0
		if rows > 0 {
			pct = round2(100 * float64(missing) / float64(rows))
		}
		vars = append(vars, VariableMissing{
			Name:           col,
			MissingCount:   missing,
			MissingPercent: pct,
			UniqueValues:   len(distinct),
			InferredType:   ds.Variables[col].InferredType,
		})
	}

	sort.SliceStable(vars, func(i, j int) bool {
		return vars[i].MissingPercent > vars[j].MissingPercent
	})

	high := []VariableMissing{}
	for _, v := range vars {
		if v.MissingPercent > a.cfg.HighMissingPercent {
			high = append(high, v)
		}
	}

	return MissingReport{
		Threshold:   a.cfg.HighMissingPercent,
		Variables:   vars,
		HighMissing: high,
	}
}

// NumericSummary is the describe() block of a numeric variable.
type NumericSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// ValueCount is one distinct value with its decoded label and frequency.
type ValueCount struct {
	Value   string  `json:"value"`
	Label   string  `json:"label,omitempty"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// OutlierSummary reports the values outside the IQR fences of a numeric
// variable: below Q1 - 1.5*IQR or above Q3 + 1.5*IQR.
type OutlierSummary struct {
	Count      int     `json:"count"`
	Percent    float64 `json:"percent"`
	LowerFence float64 `json:"lowerFence"`
	UpperFence float64 `json:"upperFence"`
}

// VariableReport is the detailed analysis of a single variable.
type VariableReport struct {
	Name           string                 `json:"name"`
	Entry          *model.DictionaryEntry `json:"entry,omitempty"`
	Tags           []string               `json:"tags"`
	InferredType   model.VarType          `json:"inferredType"`
	MissingCount   int                    `json:"missingCount"`
	MissingPercent float64                `json:"missingPercent"`
	UniqueValues   int                    `json:"uniqueValues"`
	Numeric        *NumericSummary        `json:"numeric,omitempty"`
	Outliers       *OutlierSummary        `json:"outliers,omitempty"`
	ValueCounts    []ValueCount           `json:"valueCounts,omitempty"`
	LooksLikeScale bool                   `json:"looksLikeScale"`
}

// BuildVariableReport analyzes one variable in detail.
func (a *Analyzer) BuildVariableReport(ds *model.Dataset, name string) (VariableReport, error) {
	meta, ok := ds.Variables[name]
	if !ok {
		return VariableReport{}, fmt.Errorf("variable %q not found", name)
	}

	cells := ds.Table.Column(name)
	rows := len(cells)

	report := VariableReport{
		Name:         name,
		Entry:        meta.Entry,
		Tags:         meta.Tags,
		InferredType: meta.InferredType,
	}

	values := []float64{}
	distinct := make(map[string]struct{})
	for _, c := range cells {
		if c.IsMissing() {
			report.MissingCount++
			continue
		}
		distinct[c.Raw] = struct{}{}
		if c.Kind == model.CellNumber {
			values = append(values, c.Number)
		}
	}
	report.UniqueValues = len(distinct)
	if rows > 0 {
		report.MissingPercent = round2(100 * float64(report.MissingCount) / float64(rows))
	}

	if meta.InferredType == model.TypeNumeric && len(values) > 0 {
		report.Numeric = summarize(values)
		report.Outliers = iqrOutliers(values)
		report.LooksLikeScale = looksLikeClinicalScale(values)
	}
	if meta.InferredType != model.TypeNumeric || report.UniqueValues <= a.cfg.MaxValueCounts {
		report.ValueCounts = a.valueCounts(cells, meta.Entry)
	}

	return report, nil
}

// valueCounts tallies distinct raw values, decoding labels through the
// dictionary value codes when present.
func (a *Analyzer) valueCounts(cells []model.Cell, entry *model.DictionaryEntry) []ValueCount {
	counts := make(map[string]int)
	order := []string{}
	nonMissing := 0
	for _, c := range cells {
		if c.IsMissing() {
			continue
		}
		nonMissing++
		if _, ok := counts[c.Raw]; !ok {
			order = append(order, c.Raw)
		}
		counts[c.Raw]++
	}

	labels := map[string]string{}
	if entry != nil {
		for code, label := range entry.ValueCodes {
			labels[normalizeCode(code)] = label
		}
	}

	out := make([]ValueCount, 0, len(order))
	for _, value := range order {
		vc := ValueCount{
			Value: value,
			Label: labels[normalizeCode(value)],
			Count: counts[value],
		}
		if nonMissing > 0 {
			vc.Percent = round2(100 * float64(vc.Count) / float64(nonMissing))
		}
		out = append(out, vc)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > a.cfg.MaxValueCounts {
		out = out[:a.cfg.MaxValueCounts]
	}
	return out
}

// CorrPair is one correlated variable pair.
type CorrPair struct {
	A string  `json:"a"`
	B string  `json:"b"`
	R float64 `json:"r"`
}

// CorrelationReport holds the Pearson matrix over numeric variables.
type CorrelationReport struct {
	Columns   []string    `json:"columns"`
	Matrix    [][]float64 `json:"matrix"`
	TopPairs  []CorrPair  `json:"topPairs"`
	Truncated bool        `json:"truncated"`
}

// BuildCorrelations computes pairwise Pearson correlations over the numeric
// columns, pairwise-complete. Column count is capped for responsiveness;
// Truncated reports when the cap applied. Undefined correlations (fewer than
// two complete pairs, or zero variance) are reported as 0.
func (a *Analyzer) BuildCorrelations(ds *model.Dataset) CorrelationReport {
	numeric := []string{}
	for _, col := range ds.Table.Columns {
		if ds.Variables[col].InferredType == model.TypeNumeric {
			numeric = append(numeric, col)
		}
	}

	report := CorrelationReport{TopPairs: []CorrPair{}}
	if len(numeric) > a.cfg.CorrelationMaxCols {
		numeric = numeric[:a.cfg.CorrelationMaxCols]
		report.Truncated = true
	}
	report.Columns = numeric

	series := make(map[string][]model.Cell, len(numeric))
	for _, col := range numeric {
		series[col] = ds.Table.Column(col)
	}

	matrix := make([][]float64, len(numeric))
	pairs := []CorrPair{}
	for i, x := range numeric {
		matrix[i] = make([]float64, len(numeric))
		for j, y := range numeric {
			if i == j {
				matrix[i][j] = 1
				continue
			}
			if j < i {
				matrix[i][j] = matrix[j][i]
				continue
			}
			r := pearson(series[x], series[y])
			matrix[i][j] = r
			pairs = append(pairs, CorrPair{A: x, B: y, R: r})
		}
	}
	report.Matrix = matrix

	sort.SliceStable(pairs, func(i, j int) bool {
		return math.Abs(pairs[i].R) > math.Abs(pairs[j].R)
	})
	if len(pairs) > a.cfg.TopCorrelations {
		pairs = pairs[:a.cfg.TopCorrelations]
	}
	report.TopPairs = pairs

	return report
}

// VariableOutliers is one numeric variable's row of the quality report.
type VariableOutliers struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// QualityReport is the composite data-quality view: dataset shape and
// completeness, per-variable missingness and IQR outlier counts over the
// numeric variables.
type QualityReport struct {
	Overview Overview           `json:"overview"`
	Missing  MissingReport      `json:"missing"`
	Outliers []VariableOutliers `json:"outliers"`
}

// BuildQualityReport assembles the data-quality view for a dataset.
func (a *Analyzer) BuildQualityReport(ds *model.Dataset) QualityReport {
	outliers := []VariableOutliers{}
	for _, col := range ds.Table.Columns {
		if ds.Variables[col].InferredType != model.TypeNumeric {
			continue
		}
		values := []float64{}
		for _, c := range ds.Table.Column(col) {
			if c.Kind == model.CellNumber {
				values = append(values, c.Number)
			}
		}
		if len(values) == 0 {
			continue
		}
		sum := iqrOutliers(values)
		outliers = append(outliers, VariableOutliers{
			Name:    col,
			Count:   sum.Count,
			Percent: sum.Percent,
		})
	}

	return QualityReport{
		Overview: a.BuildOverview(ds),
		Missing:  a.BuildMissingReport(ds),
		Outliers: outliers,
	}
}

// iqrOutliers counts values outside the 1.5*IQR fences.
func iqrOutliers(values []float64) *OutlierSummary {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	count := 0
	for _, v := range sorted {
		if v < lower || v > upper {
			count++
		}
	}

	return &OutlierSummary{
		Count:      count,
		Percent:    round2(100 * float64(count) / float64(len(sorted))),
		LowerFence: round4(lower),
		UpperFence: round4(upper),
	}
}

// pearson computes the correlation over rows where both cells are numeric.
func pearson(xs, ys []model.Cell) float64 {
	var xv, yv []float64
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	for i := 0; i < n; i++ {
		if xs[i].Kind != model.CellNumber || ys[i].Kind != model.CellNumber {
			continue
		}
		xv = append(xv, xs[i].Number)
		yv = append(yv, ys[i].Number)
	}
	if len(xv) < 2 {
		return 0
	}

	mx := mean(xv)
	my := mean(yv)
	var sxy, sxx, syy float64
	for i := range xv {
		dx := xv[i] - mx
		dy := yv[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0
	}
	return round4(sxy / math.Sqrt(sxx*syy))
}

// looksLikeClinicalScale reports whether a numeric column has the shape of a
// clinical rating scale: small non-negative integers topping out at a common
// scale maximum.
func looksLikeClinicalScale(values []float64) bool {
	distinct := make(map[float64]struct{})
	max := math.Inf(-1)
	for _, v := range values {
		if v < 0 || v != math.Trunc(v) {
			return false
		}
		distinct[v] = struct{}{}
		if v > max {
			max = v
		}
	}
	if len(distinct) == 0 || len(distinct) > 10 {
		return false
	}
	switch max {
	case 3, 4, 5, 7, 10:
		return true
	}
	return false
}

func summarize(values []float64) *NumericSummary {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	m := mean(sorted)
	variance := 0.0
	for _, v := range sorted {
		variance += (v - m) * (v - m)
	}
	std := 0.0
	if len(sorted) > 1 {
		std = math.Sqrt(variance / float64(len(sorted)-1))
	}

	return &NumericSummary{
		Count:  len(sorted),
		Mean:   round4(m),
		Std:    round4(std),
		Min:    sorted[0],
		Q1:     round4(quantile(sorted, 0.25)),
		Median: round4(quantile(sorted, 0.5)),
		Q3:     round4(quantile(sorted, 0.75)),
		Max:    sorted[len(sorted)-1],
	}
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// quantile interpolates linearly over a sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// normalizeCode folds a value code for lookup: "2.0" and "2" are the same
// code whether they come from the dictionary or the data.
func normalizeCode(code string) string {
	code = strings.TrimSpace(code)
	if f, err := strconv.ParseFloat(code, 64); err == nil && f == math.Trunc(f) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strings.ToLower(code)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
