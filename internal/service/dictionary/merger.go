// Package dictionary joins data-dictionary rows onto the columns of a main
// data table, producing the per-variable metadata mapping.
package dictionary

import (
	"strings"

	"github.com/zohrehrezaei-dev/PPMI-curated-data-dashboard/internal/model"
)

// ColumnPatterns are the header keywords used to locate the dictionary
// sheet's columns. Position falls back to first/second/third column when no
// header matches.
type ColumnPatterns struct {
	Variable    []string
	Description []string
	Category    []string
	Code        []string
	Decode      []string
	ValueCodes  []string
}

// DefaultColumnPatterns returns the built-in header keywords.
func DefaultColumnPatterns() ColumnPatterns {
	return ColumnPatterns{
		Variable:    []string{"variable", "var", "name", "column", "field"},
		Description: []string{"description", "desc", "meaning", "definition", "label"},
		Category:    []string{"category", "domain", "group"},
		Code:        []string{"code"},
		Decode:      []string{"decode"},
		ValueCodes:  []string{"value", "code", "level", "encoding", "values"},
	}
}

// Merger joins a dictionary table onto a main table by normalized name.
type Merger struct {
	patterns ColumnPatterns
}

// NewMerger creates a merger with the given column patterns.
func NewMerger(patterns ColumnPatterns) *Merger {
	return &Merger{patterns: patterns}
}

// Merge builds the column -> DictionaryEntry mapping. dict may be nil when
// the classifier found no dictionary sheet; the result is then empty but
// valid. Merging is a pure function: running it twice on the same inputs
// yields the same result.
//
// Two dictionary layouts are handled. With separate code/decode columns
// (the PPMI export style) a variable's name, category and description appear
// only on its first row and continuation rows add further code/decode pairs,
// so the current variable is carried forward down the sheet. With a single
// value-codes column, the cell text is parsed as "code = label" units split
// on "|" or ";". Malformed units are skipped one by one and counted, never
// aborting the rest of the variable.
func (m *Merger) Merge(table *model.Table, dict *model.Table) model.MergeResult {
	result := model.MergeResult{
		Entries: make(map[string]model.DictionaryEntry),
	}
	if dict == nil || len(dict.Rows) == 0 {
		return result
	}

	cols := m.detectColumns(dict.Columns)
	entries, order, skipped := collectEntries(dict, cols)
	result.SkippedCodes = skipped

	// Normalized column name -> original column name of the main table.
	byNorm := make(map[string]string, len(table.Columns))
	for _, c := range table.Columns {
		byNorm[normalizeName(c)] = c
	}

	for _, name := range order {
		entry := entries[name]
		if col, ok := byNorm[normalizeName(name)]; ok {
			// Last-seen entry wins; collectEntries already folded duplicates.
			result.Entries[col] = *entry
		} else {
			result.Unused = append(result.Unused, *entry)
		}
	}

	return result
}

// dictColumns is the resolved column layout of a dictionary sheet.
type dictColumns struct {
	variable    string
	description string
	category    string
	code        string
	decode      string
	valueCodes  string
}

func (m *Merger) detectColumns(headers []string) dictColumns {
	find := func(keywords []string) string {
		// Exact header match outranks a substring hit, so a "Code" column
		// is not shadowed by "Decode".
		for _, kw := range keywords {
			for _, h := range headers {
				if normalizeName(h) == kw {
					return h
				}
			}
		}
		for _, h := range headers {
			if containsAny(normalizeName(h), keywords) {
				return h
			}
		}
		return ""
	}

	cols := dictColumns{
		variable:    find(m.patterns.Variable),
		description: find(m.patterns.Description),
		category:    find(m.patterns.Category),
		code:        find(m.patterns.Code),
		decode:      find(m.patterns.Decode),
	}

	// A decode column needs a code column next to it; otherwise treat any
	// code-ish column as the combined value-codes text column.
	if cols.code == "" || cols.decode == "" {
		cols.code = ""
		cols.decode = ""
		cols.valueCodes = find(m.patterns.ValueCodes)
	}

	// Positional fallback, as the source exports are not always labelled.
	if cols.variable == "" && len(headers) > 0 {
		cols.variable = headers[0]
	}
	if cols.description == "" && len(headers) > 1 && headers[1] != cols.variable {
		cols.description = headers[1]
	}
	if cols.valueCodes == "" && cols.code == "" && len(headers) > 2 {
		cols.valueCodes = headers[2]
	}

	return cols
}

// collectEntries walks the dictionary rows in order, forward-filling the
// current variable across merged-cell continuation rows. Returns the entry
// per variable name, the first-seen name order and the skipped-code count.
func collectEntries(dict *model.Table, cols dictColumns) (map[string]*model.DictionaryEntry, []string, int) {
	entries := make(map[string]*model.DictionaryEntry)
	order := []string{}
	skipped := 0

	var current *model.DictionaryEntry

	for _, row := range dict.Rows {
		name := cellText(row, cols.variable)
		if name != "" {
			if existing, ok := entries[name]; ok {
				// Duplicate variable row: last seen wins for the scalar
				// fields, codes keep accumulating.
				existing.Category = firstNonEmpty(cellText(row, cols.category), existing.Category)
				existing.Description = firstNonEmpty(cellText(row, cols.description), existing.Description)
				current = existing
			} else {
				current = &model.DictionaryEntry{
					Variable:    name,
					Category:    cellText(row, cols.category),
					Description: cellText(row, cols.description),
				}
				entries[name] = current
				order = append(order, name)
			}
		}
		if current == nil {
			continue
		}

		if cols.code != "" {
			code := cellText(row, cols.code)
			label := cellText(row, cols.decode)
			if code != "" && label != "" {
				current.AddCode(code, label)
			} else if code != "" || label != "" {
				skipped++
			}
		} else if cols.valueCodes != "" && name != "" {
			skipped += parseValueCodes(current, cellText(row, cols.valueCodes))
		}
	}

	return entries, order, skipped
}

// parseValueCodes splits a "1 = Control | 2 = PD" style cell into code/label
// pairs, returning the number of malformed units skipped.
func parseValueCodes(entry *model.DictionaryEntry, text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	skipped := 0
	for _, unit := range splitUnits(text) {
		code, label, ok := splitPair(unit)
		if !ok {
			skipped++
			continue
		}
		entry.AddCode(code, label)
	}
	return skipped
}

func splitUnits(text string) []string {
	sep := "|"
	if !strings.Contains(text, "|") {
		sep = ";"
	}
	parts := strings.Split(text, sep)
	units := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			units = append(units, p)
		}
	}
	return units
}

func splitPair(unit string) (code, label string, ok bool) {
	idx := strings.IndexAny(unit, "=:")
	if idx < 0 {
		return "", "", false
	}
	code = strings.TrimSpace(unit[:idx])
	label = strings.TrimSpace(unit[idx+1:])
	if code == "" || label == "" {
		return "", "", false
	}
	return code, label, true
}

// normalizeName folds a variable or column name for matching: trimmed and
// case-folded. A dictionary row attaches only on exact normalized match.
func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func cellText(row model.Row, col string) string {
	if col == "" {
		return ""
	}
	return strings.TrimSpace(row[col].Raw)
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
