package analysis

import (
	"sort"
	"strings"

	"github.com/zohrehrezaei-dev/PPMI-curated-data-dashboard/internal/model"
)

// SearchVariables filters the dataset's variables by a case-insensitive
// substring over names and dictionary descriptions. An empty query returns
// every variable in column order.
func SearchVariables(ds *model.Dataset, query string) []model.VariableMetadata {
	metas := ds.Metadata()
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return metas
	}

	out := []model.VariableMetadata{}
	for _, meta := range metas {
		if strings.Contains(strings.ToLower(meta.Name), query) ||
			strings.Contains(strings.ToLower(meta.Description()), query) {
			out = append(out, meta)
		}
	}
	return out
}

// DictionaryRow is one dictionary entry prepared for browsing: codes folded
// into a "code: label | ..." summary string.
type DictionaryRow struct {
	Variable    string `json:"variable"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	CodesCount  int    `json:"codesCount"`
	AllCodes    string `json:"allCodes"`
	Matched     bool   `json:"matched"`
}

// DictionaryView is the browsable form of the merged dictionary.
type DictionaryView struct {
	Rows         []DictionaryRow `json:"rows"`
	UnusedCount  int             `json:"unusedCount"`
	SkippedCodes int             `json:"skippedCodes"`
}

// BuildDictionaryView lists matched entries (in main-table column order)
// followed by unused ones, optionally filtered by a search query.
func BuildDictionaryView(ds *model.Dataset, query string) DictionaryView {
	view := DictionaryView{
		Rows:         []DictionaryRow{},
		UnusedCount:  len(ds.Dictionary.Unused),
		SkippedCodes: ds.Dictionary.SkippedCodes,
	}
	query = strings.ToLower(strings.TrimSpace(query))

	appendRow := func(entry model.DictionaryEntry, matched bool) {
		if query != "" &&
			!strings.Contains(strings.ToLower(entry.Variable), query) &&
			!strings.Contains(strings.ToLower(entry.Description), query) {
			return
		}
		view.Rows = append(view.Rows, DictionaryRow{
			Variable:    entry.Variable,
			Category:    entry.Category,
			Description: entry.Description,
			CodesCount:  len(entry.ValueCodes),
			AllCodes:    foldCodes(entry),
			Matched:     matched,
		})
	}

	for _, col := range ds.Table.Columns {
		if entry, ok := ds.Dictionary.Entries[col]; ok {
			appendRow(entry, true)
		}
	}
	for _, entry := range ds.Dictionary.Unused {
		appendRow(entry, false)
	}

	return view
}

func foldCodes(entry model.DictionaryEntry) string {
	if len(entry.ValueCodes) == 0 {
		return "No codes"
	}

	order := entry.CodeOrder
	if len(order) == 0 {
		for code := range entry.ValueCodes {
			order = append(order, code)
		}
		sort.Strings(order)
	}

	parts := make([]string, 0, len(order))
	for _, code := range order {
		parts = append(parts, code+": "+entry.ValueCodes[code])
	}
	return strings.Join(parts, " | ")
}
