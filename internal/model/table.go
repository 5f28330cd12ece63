package model

import "time"

// CellKind is the scalar type of a single cell value.
type CellKind int

const (
	CellMissing CellKind = iota
	CellText
	CellNumber
	CellDate
)

// Cell is one typed scalar value. Raw always holds the original cell text;
// Number and Date are only meaningful for their respective kinds.
type Cell struct {
	Kind   CellKind
	Raw    string
	Number float64
	Date   time.Time
}

// IsMissing reports whether the cell carries no value.
func (c Cell) IsMissing() bool {
	return c.Kind == CellMissing
}

// Row maps column name to the cell value for one record.
type Row map[string]Cell

// Table is a rectangular dataset: an ordered list of unique column names and
// one Row per record. Tables are built once per upload and not mutated after.
type Table struct {
	Columns []string
	Rows    []Row
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// Column collects the cells of one column in row order. Rows that lack the
// column yield a missing cell so the result always has RowCount entries.
func (t *Table) Column(name string) []Cell {
	cells := make([]Cell, 0, len(t.Rows))
	for _, row := range t.Rows {
		cells = append(cells, row[name])
	}
	return cells
}
