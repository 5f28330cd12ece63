package excel

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/zohrehrezaei-dev/PPMI-curated-data-dashboard/internal/model"
)

// dateLayouts are the accepted textual date formats, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02.01.2006",
}

// Parser loads a workbook and extracts worksheets as typed tables.
type Parser struct {
	file   *excelize.File
	fileID string
}

// NewParser creates a parser with a fresh file ID.
func NewParser() *Parser {
	return &Parser{
		fileID: uuid.New().String(),
	}
}

// LoadFile opens a workbook from the reader.
func (p *Parser) LoadFile(reader io.Reader) error {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	p.file = file
	return nil
}

// FileID returns the ID assigned to the loaded file.
func (p *Parser) FileID() string {
	return p.fileID
}

// Workbook returns the loaded workbook for read-only use.
func (p *Parser) Workbook() *excelize.File {
	return p.file
}

// SheetGrid returns the raw cell grid of one worksheet.
func (p *Parser) SheetGrid(sheet string) ([][]string, error) {
	if p.file == nil {
		return nil, errors.New("no file loaded")
	}
	return p.file.GetRows(sheet)
}

// BuildTable converts a worksheet into a Table: the first row becomes the
// column names, fully empty rows and columns are dropped, and each surviving
// column is typed from its values. coerceRatio is the share of parseable
// values needed before a mixed column is read as numeric or date.
func (p *Parser) BuildTable(sheet string, coerceRatio float64) (*model.Table, error) {
	grid, err := p.SheetGrid(sheet)
	if err != nil {
		return nil, err
	}
	if len(grid) == 0 {
		return nil, errors.New("empty sheet")
	}

	header := grid[0]
	body := dropEmptyRows(grid[1:])

	columns := make([]string, 0, len(header))
	colIdx := make([]int, 0, len(header))
	seen := make(map[string]int)

	for i, raw := range header {
		name := strings.TrimSpace(raw)
		if name == "" {
			if columnIsEmpty(body, i) {
				continue
			}
			name = fmt.Sprintf("Column_%d", i+1)
		}
		// Uniqueness: later duplicates get a numeric suffix, advancing past
		// suffixes already taken by literal headers.
		if n, ok := seen[name]; ok {
			base := name
			for {
				n++
				name = fmt.Sprintf("%s_%d", base, n)
				if _, taken := seen[name]; !taken {
					break
				}
			}
			seen[base] = n
		}
		seen[name] = 1
		columns = append(columns, name)
		colIdx = append(colIdx, i)
	}

	if len(columns) == 0 {
		return nil, errors.New("sheet has no columns")
	}

	kinds := make([]model.CellKind, len(columns))
	for c, idx := range colIdx {
		kinds[c] = columnKind(body, idx, coerceRatio)
	}

	rows := make([]model.Row, 0, len(body))
	for _, rec := range body {
		row := make(model.Row, len(columns))
		for c, idx := range colIdx {
			raw := ""
			if idx < len(rec) {
				raw = strings.TrimSpace(rec[idx])
			}
			row[columns[c]] = makeCell(raw, kinds[c])
		}
		rows = append(rows, row)
	}

	return &model.Table{Columns: columns, Rows: rows}, nil
}

func dropEmptyRows(body [][]string) [][]string {
	out := make([][]string, 0, len(body))
	for _, rec := range body {
		empty := true
		for _, cell := range rec {
			if strings.TrimSpace(cell) != "" {
				empty = false
				break
			}
		}
		if !empty {
			out = append(out, rec)
		}
	}
	return out
}

func columnIsEmpty(body [][]string, idx int) bool {
	for _, rec := range body {
		if idx < len(rec) && strings.TrimSpace(rec[idx]) != "" {
			return false
		}
	}
	return true
}

// columnKind decides how a column's raw strings should be read. A column is
// numeric (or date) when at least coerceRatio of its non-empty values parse.
func columnKind(body [][]string, idx int, coerceRatio float64) model.CellKind {
	nonEmpty := 0
	numeric := 0
	dates := 0

	for _, rec := range body {
		if idx >= len(rec) {
			continue
		}
		raw := strings.TrimSpace(rec[idx])
		if raw == "" {
			continue
		}
		nonEmpty++
		if _, ok := parseNumber(raw); ok {
			numeric++
		} else if _, ok := parseDate(raw); ok {
			dates++
		}
	}

	if nonEmpty == 0 {
		return model.CellText
	}

	threshold := coerceRatio * float64(nonEmpty)
	if float64(numeric) >= threshold && numeric >= dates {
		return model.CellNumber
	}
	if float64(dates) >= threshold {
		return model.CellDate
	}
	return model.CellText
}

func makeCell(raw string, kind model.CellKind) model.Cell {
	if raw == "" {
		return model.Cell{Kind: model.CellMissing}
	}

	switch kind {
	case model.CellNumber:
		if n, ok := parseNumber(raw); ok {
			return model.Cell{Kind: model.CellNumber, Raw: raw, Number: n}
		}
	case model.CellDate:
		if d, ok := parseDate(raw); ok {
			return model.Cell{Kind: model.CellDate, Raw: raw, Date: d}
		}
	}
	return model.Cell{Kind: model.CellText, Raw: raw}
}

// parseNumber parses a numeric cell, tolerating thousands separators.
func parseNumber(raw string) (float64, bool) {
	raw = strings.ReplaceAll(raw, ",", "")
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, raw); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}
