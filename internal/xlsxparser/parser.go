// =============================================================================
// Vendor Price Comparison - XLSX Parser Module
// =============================================================================
//
// This module reads XLSX quotations into tables, one table per visible sheet,
// in workbook order. Choosing the sheet that actually holds the quotation is
// left to the vendor builder.
//
// WORKBOOK STRUCTURE:
//   Quotation workbooks usually carry a title block ("采购报价单",
//   "供应商：XXX") above the item table and sometimes a cover sheet in front
//   of it. Cells are read with their raw values so prices keep full
//   precision regardless of the cell's number format.
//
// LEGACY FORMAT:
//   Binary .xls workbooks (OLE2) are not supported by excelize. They are
//   detected by signature and rejected with ErrLegacyFormat so the caller can
//   report a useful message.
//
// =============================================================================

package xlsxparser

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/vendor-price-comparison/internal/table"
)

// ErrLegacyFormat is returned for binary .xls workbooks.
var ErrLegacyFormat = eris.New("xlsxparser: legacy .xls workbooks are not supported, save the file as .xlsx")

// ole2Signature starts every binary Office document.
var ole2Signature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads every visible sheet of an XLSX file.
//
// PARAMETERS:
//   - path: The path to the workbook.
//
// RETURNS:
//   - One table per visible sheet, in workbook order. Tables are named
//     "<file>/<sheet>".
//   - An error if the file cannot be opened or holds no sheets.
func Parse(path string) ([]*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsxparser: open %s", path)
	}
	defer f.Close()

	return ParseReader(filepath.Base(path), f)
}

// ParseReader reads every visible sheet of a workbook from r.
func ParseReader(name string, r io.Reader) ([]*table.Table, error) {
	br := bufio.NewReader(r)
	if head, _ := br.Peek(len(ole2Signature)); bytes.Equal(head, ole2Signature) {
		return nil, eris.Wrap(ErrLegacyFormat, name)
	}

	f, err := excelize.OpenReader(br)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsxparser: open %s", name)
	}
	defer f.Close()

	var tables []*table.Table
	for _, sheetName := range f.GetSheetList() {
		// Hidden sheets hold lookup lists, not quotations.
		if visible, err := f.GetSheetVisible(sheetName); err == nil && !visible {
			continue
		}

		t, err := parseSheet(f, name, sheetName)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}

	if len(tables) == 0 {
		return nil, eris.Errorf("xlsxparser: %s has no visible sheets", name)
	}
	return tables, nil
}

// parseSheet reads one sheet into a table.
func parseSheet(f *excelize.File, fileName, sheetName string) (*table.Table, error) {
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, eris.Wrapf(err, "xlsxparser: read sheet %q of %s", sheetName, fileName)
	}

	grid := make([][]table.Cell, len(rows))
	for i, row := range rows {
		cells := make([]table.Cell, len(row))
		for j, v := range row {
			cells[j] = table.Text(v)
		}
		grid[i] = cells
	}
	return table.New(fileName+"/"+sheetName, grid), nil
}
