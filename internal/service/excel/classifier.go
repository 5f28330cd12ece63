package excel

import (
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/zohrehrezaei-dev/PPMI-curated-data-dashboard/internal/model"
)

// ClassifierConfig holds the keyword lists and thresholds of the sheet
// classification heuristic. Kept as data so the lists can be tuned and
// tested apart from the matching code.
type ClassifierConfig struct {
	DataNameKeywords []string
	DictNameKeywords []string

	VariableHeaderKeywords    []string
	DescriptionHeaderKeywords []string

	MinDataRows    int
	MinDataColumns int
	MaxDictColumns int

	MinDataScore float64
	MinDictScore float64
}

// DefaultClassifierConfig returns the built-in keyword lists and thresholds.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		DataNameKeywords: []string{"data", "main", "records", "cohort", "curated"},
		DictNameKeywords: []string{
			"dictionary", "dict", "metadata", "variables", "codebook", "legend",
		},
		VariableHeaderKeywords:    []string{"variable", "var", "name", "column", "field"},
		DescriptionHeaderKeywords: []string{"description", "desc", "meaning", "definition", "label"},
		MinDataRows:               5,
		MinDataColumns:            4,
		MaxDictColumns:            8,
		MinDataScore:              0.5,
		MinDictScore:              0.4,
	}
}

// Classifier assigns a role to each worksheet of an uploaded workbook.
type Classifier struct {
	cfg ClassifierConfig
}

// NewClassifier creates a classifier with the given configuration.
func NewClassifier(cfg ClassifierConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

// sheetShape is the measured scoring input for one worksheet.
type sheetShape struct {
	name      string
	rows      int
	cols      int
	dataScore float64
	dictScore float64
}

// Classify scores every worksheet and assigns roles. The highest data-like
// score wins main_data, the highest dictionary-like score above threshold
// (on a different sheet) wins dictionary, everything else is unknown. Ties
// break by sheet order. When no sheet clears the data threshold the first
// non-empty sheet is used as main data; that is a best-effort choice, never
// an error.
func (cl *Classifier) Classify(wb *excelize.File) (recs []model.SheetRecognition, mainSheet, dictSheet string) {
	if wb == nil {
		return nil, "", ""
	}

	shapes := make([]sheetShape, 0, len(wb.GetSheetList()))
	for _, name := range wb.GetSheetList() {
		shapes = append(shapes, cl.scoreSheet(wb, name))
	}

	mainIdx := -1
	bestData := cl.cfg.MinDataScore
	for i, s := range shapes {
		if s.dataScore >= bestData && (mainIdx < 0 || s.dataScore > shapes[mainIdx].dataScore) {
			mainIdx = i
		}
	}
	if mainIdx < 0 {
		// Fallback: first sheet that has any content at all.
		for i, s := range shapes {
			if s.rows > 0 || s.cols > 0 {
				mainIdx = i
				break
			}
		}
	}

	dictIdx := -1
	for i, s := range shapes {
		if i == mainIdx || s.dictScore < cl.cfg.MinDictScore {
			continue
		}
		if dictIdx < 0 || s.dictScore > shapes[dictIdx].dictScore {
			dictIdx = i
		}
	}

	recs = make([]model.SheetRecognition, 0, len(shapes))
	for i, s := range shapes {
		rec := model.SheetRecognition{
			SheetName: s.name,
			Role:      model.RoleUnknown,
			RowCount:  s.rows,
			ColCount:  s.cols,
			Score:     maxFloat(s.dataScore, s.dictScore),
		}
		switch i {
		case mainIdx:
			rec.Role = model.RoleMainData
			rec.Score = s.dataScore
			mainSheet = s.name
		case dictIdx:
			rec.Role = model.RoleDictionary
			rec.Score = s.dictScore
			dictSheet = s.name
		}
		recs = append(recs, rec)
	}

	return recs, mainSheet, dictSheet
}

// scoreSheet computes the data-like and dictionary-like scores from the
// sheet name and the header/row shape.
func (cl *Classifier) scoreSheet(wb *excelize.File, name string) sheetShape {
	grid, err := wb.GetRows(name)
	if err != nil {
		grid = nil
	}

	headers := []string{}
	if len(grid) > 0 {
		for _, h := range grid[0] {
			if v := strings.ToLower(strings.TrimSpace(h)); v != "" {
				headers = append(headers, v)
			}
		}
	}

	s := sheetShape{
		name: name,
		cols: len(headers),
	}
	if len(grid) > 1 {
		s.rows = len(grid) - 1
	}

	lowerName := strings.ToLower(name)

	if s.cols >= cl.cfg.MinDataColumns && s.rows >= cl.cfg.MinDataRows {
		s.dataScore += 0.6
	}
	if containsAny(lowerName, cl.cfg.DataNameKeywords) {
		s.dataScore += 0.4
	}

	if headerMatches(headers, cl.cfg.VariableHeaderKeywords) &&
		headerMatches(headers, cl.cfg.DescriptionHeaderKeywords) {
		s.dictScore += 0.5
	}
	if s.cols > 0 && s.cols <= cl.cfg.MaxDictColumns {
		s.dictScore += 0.1
	}
	if containsAny(lowerName, cl.cfg.DictNameKeywords) {
		s.dictScore += 0.4
	}

	return s
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func headerMatches(headers, keywords []string) bool {
	for _, h := range headers {
		if containsAny(h, keywords) {
			return true
		}
	}
	return false
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
