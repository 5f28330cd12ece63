package model

import "time"

// Dataset bundles everything produced from one uploaded workbook. It is the
// session object handed to every downstream consumer; a re-upload replaces
// the whole dataset rather than mutating it.
type Dataset struct {
	ID         string    `json:"id"`
	FileID     string    `json:"fileId"`
	FileName   string    `json:"fileName"`
	UploadedAt time.Time `json:"uploadedAt"`

	Table        *Table             `json:"-"`
	Recognitions []SheetRecognition `json:"recognitions"`
	MainSheet    string             `json:"mainSheet"`
	DictSheet    string             `json:"dictSheet,omitempty"`

	Dictionary MergeResult                 `json:"-"`
	Variables  map[string]VariableMetadata `json:"-"`
}

// Metadata returns the metadata entries in column order.
func (d *Dataset) Metadata() []VariableMetadata {
	out := make([]VariableMetadata, 0, len(d.Table.Columns))
	for _, col := range d.Table.Columns {
		out = append(out, d.Variables[col])
	}
	return out
}
