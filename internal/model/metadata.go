package model

// VarType is the inferred type of a table column.
type VarType string

const (
	TypeNumeric     VarType = "numeric"
	TypeCategorical VarType = "categorical"
	TypeDate        VarType = "date"
	TypeText        VarType = "text"
)

// VariableMetadata is the enriched description of one main-table column:
// the dictionary entry (if any), relevance tags and the inferred type.
// Every column has exactly one entry, built once per upload.
type VariableMetadata struct {
	Name         string           `json:"name"`
	Entry        *DictionaryEntry `json:"entry,omitempty"`
	Tags         []string         `json:"tags"`
	InferredType VarType          `json:"inferredType"`
}

// Description returns the dictionary description, or "" without an entry.
func (v VariableMetadata) Description() string {
	if v.Entry == nil {
		return ""
	}
	return v.Entry.Description
}

// HasTag reports whether the variable carries the given relevance tag.
func (v VariableMetadata) HasTag(tag string) bool {
	for _, t := range v.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
