// =============================================================================
// Vendor Price Comparison - Table Adapter
// =============================================================================
//
// This package wraps a raw 2-D grid of spreadsheet cells with column-name
// access. Every quotation source (CSV file, XLSX sheet, HTTP upload) is turned
// into a Table before any schema inference happens.
//
// TABLE LAYOUT:
//   Row 0 of the raw grid is the header row (the same convention spreadsheet
//   readers use by default). All remaining rows are data rows. Blank header
//   cells become placeholder labels ("Column_N") so every column is always
//   addressable by label.
//
// HEADER RELIABILITY:
//   Quotation sheets frequently start with a title block ("采购报价单",
//   "供应商：XXX") instead of a header row. The adapter exposes
//   HeadersUnreliable and PromoteHeader so the classifier can detect this and
//   re-read the table with the real header row.
//
// =============================================================================

package table

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholderPattern matches labels that carry no information about the column.
// "Unnamed: 3" is what pandas-exported sheets contain, "Column_3" is what
// cleanHeaders generates for blank cells.
var placeholderPattern = regexp.MustCompile(`^(?i)(unnamed:?\s*\d+|column_\d+)$`)

// =============================================================================
// TABLE STRUCTURE
// =============================================================================

// Table is a header row plus data rows of mixed scalar cells.
type Table struct {
	// Name identifies the table in logs and errors (file name, sheet name).
	Name string

	// Headers contains one label per column. Blank labels are replaced with
	// placeholders so Headers never contains an empty string.
	Headers []string

	// Rows contains the data rows. Rows may be shorter than Headers; missing
	// cells read as empty.
	Rows [][]Cell

	// raw keeps the complete grid, including the original header row, so the
	// header can be re-detected later.
	raw [][]Cell
}

// New builds a Table from a raw grid, using the first row as the header row.
// Data rows that are entirely empty are skipped.
func New(name string, grid [][]Cell) *Table {
	t := &Table{Name: name, raw: grid}
	if len(grid) == 0 {
		return t
	}

	width := 0
	for _, row := range grid {
		if len(row) > width {
			width = len(row)
		}
	}

	t.Headers = cleanHeaders(grid[0], width)
	for _, row := range grid[1:] {
		if isRowEmpty(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// FromStrings builds a Table from string cells. Numbers stay text until read
// with Cell.Float, so serials like "001" keep their leading zeros.
func FromStrings(name string, grid [][]string) *Table {
	cells := make([][]Cell, len(grid))
	for i, row := range grid {
		cells[i] = make([]Cell, len(row))
		for j, v := range row {
			cells[i][j] = Text(v)
		}
	}
	return New(name, cells)
}

// cleanHeaders trims header labels and replaces blank ones with placeholders.
func cleanHeaders(row []Cell, width int) []string {
	headers := make([]string, width)
	for i := 0; i < width; i++ {
		label := ""
		if i < len(row) {
			label = strings.TrimSpace(row[i].String())
		}
		if label == "" {
			label = fmt.Sprintf("Column_%d", i+1)
		}
		headers[i] = label
	}
	return headers
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []Cell) bool {
	for _, c := range row {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// =============================================================================
// ACCESSORS
// =============================================================================

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int {
	return len(t.Headers)
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// Cell returns the cell at (row, col) of the data rows, or an empty cell when
// the position is out of range.
func (t *Table) Cell(row, col int) Cell {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return Cell{}
	}
	r := t.Rows[row]
	if col >= len(r) {
		return Cell{}
	}
	return r[col]
}

// ColumnIndex returns the index of the first column with the given label.
func (t *Table) ColumnIndex(label string) (int, bool) {
	for i, h := range t.Headers {
		if h == label {
			return i, true
		}
	}
	return -1, false
}

// Column returns all data values of one column.
func (t *Table) Column(col int) []Cell {
	values := make([]Cell, len(t.Rows))
	for i := range t.Rows {
		values[i] = t.Cell(i, col)
	}
	return values
}

// RawRows returns the complete grid including the original header row.
func (t *Table) RawRows() [][]Cell {
	return t.raw
}

// =============================================================================
// HEADER DETECTION
// =============================================================================

// IsPlaceholder reports whether a header label carries no information.
func IsPlaceholder(label string) bool {
	label = strings.TrimSpace(label)
	return label == "" || placeholderPattern.MatchString(label)
}

// HeadersUnreliable reports whether the header row is useless for label
// matching: every label is a placeholder, or the table has a single column
// (a title cell spanning the sheet).
func (t *Table) HeadersUnreliable() bool {
	if len(t.Headers) <= 1 {
		return true
	}
	for _, h := range t.Headers {
		if !IsPlaceholder(h) {
			return false
		}
	}
	return true
}

// PromoteHeader re-reads the table with a header row found below a title
// block.
//
// DETECTION:
//   1. Find the first raw row holding a plausible numeric value.
//   2. The nearest non-empty row above it becomes the header row.
//   3. Every row above the new header row is discarded as title block.
//
// It returns false when no better header row exists (the first numeric row is
// directly under the current header, or the grid holds no numbers at all).
func (t *Table) PromoteHeader() (*Table, bool) {
	firstNumeric := -1
	for i, row := range t.raw {
		if rowHasNumber(row) {
			firstNumeric = i
			break
		}
	}
	if firstNumeric <= 0 {
		return nil, false
	}

	headerRow := -1
	for i := firstNumeric - 1; i >= 0; i-- {
		if !isRowEmpty(t.raw[i]) {
			headerRow = i
			break
		}
	}
	if headerRow <= 0 {
		return nil, false
	}

	promoted := New(t.Name, t.raw[headerRow:])
	return promoted, true
}

// rowHasNumber reports whether any cell of the row parses as a number.
func rowHasNumber(row []Cell) bool {
	for _, c := range row {
		if _, ok := c.Float(); ok {
			return true
		}
	}
	return false
}
