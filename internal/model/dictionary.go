package model

// DictionaryEntry describes one variable from the data-dictionary sheet.
type DictionaryEntry struct {
	Variable    string            `json:"variable"`
	Category    string            `json:"category,omitempty"`
	Description string            `json:"description,omitempty"`
	ValueCodes  map[string]string `json:"valueCodes,omitempty"`
	CodeOrder   []string          `json:"-"`
}

// AddCode records one code -> label pair, preserving first-seen order.
func (e *DictionaryEntry) AddCode(code, label string) {
	if e.ValueCodes == nil {
		e.ValueCodes = make(map[string]string)
	}
	if _, ok := e.ValueCodes[code]; !ok {
		e.CodeOrder = append(e.CodeOrder, code)
	}
	e.ValueCodes[code] = label
}

// MergeResult is the output of joining a dictionary sheet onto a main table.
type MergeResult struct {
	// Entries maps each main-table column name to its dictionary entry.
	// Columns without a matching dictionary row are absent.
	Entries map[string]DictionaryEntry `json:"entries"`
	// Unused holds dictionary rows whose variable name matched no column.
	Unused []DictionaryEntry `json:"unused"`
	// SkippedCodes counts malformed value-code units dropped during parsing.
	SkippedCodes int `json:"skippedCodes"`
}
