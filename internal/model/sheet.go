package model

// SheetRole is the role assigned to a worksheet during classification.
type SheetRole string

const (
	RoleUnknown    SheetRole = "unknown"
	RoleMainData   SheetRole = "main_data"
	RoleDictionary SheetRole = "dictionary"
)

// SheetRecognition is the classification result for a single worksheet.
type SheetRecognition struct {
	SheetName string    `json:"sheetName"`
	Role      SheetRole `json:"role"`
	Score     float64   `json:"score"`
	RowCount  int       `json:"rowCount"`
	ColCount  int       `json:"colCount"`
}
