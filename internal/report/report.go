// =============================================================================
// Vendor Price Comparison - Report Writer Module
// =============================================================================
//
// This module writes an analysis result to an XLSX workbook.
//
// WORKBOOK LAYOUT:
//   1. "最低价分析"  - one row per item: serial, item, lowest price, winning
//                     vendor, quantity, subtotal, then one "报价_<vendor>"
//                     column per vendor (blank when the vendor did not quote)
//   2. "供应商汇总"  - one row per vendor: items won and total of subtotals
//   3. one sheet per vendor with the items it won: 对应序号, 中标品名,
//      单项报价, 数量, 分项小计
//
// SHEET NAMES:
//   Excel limits sheet names to 31 characters and forbids : \ / ? * [ ].
//   Vendor names are sanitized, truncated and made unique.
//
// The writer only formats; every number comes from the result unchanged.
//
// =============================================================================

package report

import (
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/vendor-price-comparison/internal/analysis"
)

// Sheet and column names of the workbook.
const (
	SummarySheet = "最低价分析"
	VendorsSheet = "供应商汇总"

	maxSheetName = 31
)

var (
	summaryHeaders = []string{"序号", "物料名称", "最低价", "供应商", "数量", "分项小计"}
	vendorsHeaders = []string{"供应商", "中标数量", "中标总额"}
	winHeaders     = []string{"对应序号", "中标品名", "单项报价", "数量", "分项小计"}
)

// PriceColumn returns the header of a vendor's price column.
func PriceColumn(vendor string) string {
	return "报价_" + vendor
}

// =============================================================================
// WRITER FUNCTIONS
// =============================================================================

// Write renders the result as an XLSX workbook to w.
func Write(w io.Writer, res *analysis.Result) error {
	f, err := Build(res)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "report: write workbook")
	}
	return nil
}

// WriteFile renders the result to a file.
func WriteFile(path string, res *analysis.Result) error {
	out, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	if err := Write(out, res); err != nil {
		out.Close()
		return err
	}
	return eris.Wrapf(out.Close(), "report: close %s", path)
}

// Build creates the workbook in memory. The caller closes it.
func Build(res *analysis.Result) (*excelize.File, error) {
	if res == nil {
		return nil, eris.New("report: no analysis result")
	}

	f := excelize.NewFile()
	b := &builder{f: f, names: newSheetNames(SummarySheet, VendorsSheet)}

	if err := b.init(); err != nil {
		f.Close()
		return nil, err
	}
	steps := []func(*analysis.Result) error{b.summary, b.vendors, b.winSheets}
	for _, step := range steps {
		if err := step(res); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// =============================================================================
// SHEETS
// =============================================================================

type builder struct {
	f           *excelize.File
	names       *sheetNames
	headerStyle int
}

func (b *builder) init() error {
	// The default sheet becomes the summary sheet.
	if err := b.f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return eris.Wrap(err, "report: rename default sheet")
	}
	style, err := b.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return eris.Wrap(err, "report: header style")
	}
	b.headerStyle = style
	return nil
}

func (b *builder) summary(res *analysis.Result) error {
	headers := append([]string(nil), summaryHeaders...)
	for _, v := range res.Vendors {
		headers = append(headers, PriceColumn(v))
	}

	rows := make([][]interface{}, 0, len(res.Items))
	for _, it := range res.Items {
		row := []interface{}{it.Serial, it.DisplayItem, it.MinPrice, it.WinningVendor, it.Quantity, it.Subtotal}
		for _, v := range res.Vendors {
			if p, ok := it.PriceFor(v); ok {
				row = append(row, p)
			} else {
				row = append(row, nil)
			}
		}
		rows = append(rows, row)
	}
	return b.writeTable(SummarySheet, headers, rows)
}

func (b *builder) vendors(res *analysis.Result) error {
	if _, err := b.f.NewSheet(VendorsSheet); err != nil {
		return eris.Wrap(err, "report: add vendor sheet")
	}
	rows := make([][]interface{}, 0, len(res.Wins))
	for _, w := range res.Wins {
		rows = append(rows, []interface{}{w.Vendor, len(w.Items), w.Total()})
	}
	return b.writeTable(VendorsSheet, vendorsHeaders, rows)
}

func (b *builder) winSheets(res *analysis.Result) error {
	for _, w := range res.Wins {
		name := b.names.claim(w.Vendor)
		if _, err := b.f.NewSheet(name); err != nil {
			return eris.Wrapf(err, "report: add sheet for %s", w.Vendor)
		}
		rows := make([][]interface{}, 0, len(w.Items))
		for _, it := range w.Items {
			rows = append(rows, []interface{}{it.Serial, it.DisplayItem, it.MinPrice, it.Quantity, it.Subtotal})
		}
		if err := b.writeTable(name, winHeaders, rows); err != nil {
			return err
		}
	}
	return nil
}

// writeTable writes a header row and data rows starting at A1.
func (b *builder) writeTable(sheet string, headers []string, rows [][]interface{}) error {
	head := make([]interface{}, len(headers))
	for i, h := range headers {
		head[i] = h
	}
	if err := b.f.SetSheetRow(sheet, "A1", &head); err != nil {
		return eris.Wrapf(err, "report: write header of %s", sheet)
	}

	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return eris.Wrap(err, "report: header range")
	}
	if err := b.f.SetCellStyle(sheet, "A1", last, b.headerStyle); err != nil {
		return eris.Wrapf(err, "report: style header of %s", sheet)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return eris.Wrap(err, "report: row coordinates")
		}
		if err := b.f.SetSheetRow(sheet, cell, &row); err != nil {
			return eris.Wrapf(err, "report: write row %d of %s", i+2, sheet)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	return eris.Wrapf(b.f.SetColWidth(sheet, "A", lastCol, 14), "report: column width of %s", sheet)
}

// =============================================================================
// SHEET NAMES
// =============================================================================

// sheetNames hands out valid, unique sheet names. Excel compares sheet names
// case-insensitively.
type sheetNames struct {
	used map[string]struct{}
}

func newSheetNames(reserved ...string) *sheetNames {
	s := &sheetNames{used: make(map[string]struct{})}
	for _, r := range reserved {
		s.used[strings.ToLower(r)] = struct{}{}
	}
	return s
}

var sheetNameReplacer = strings.NewReplacer(
	":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "(", "]", ")",
)

func (s *sheetNames) claim(vendor string) string {
	base := strings.Trim(sheetNameReplacer.Replace(strings.TrimSpace(vendor)), "'")
	if base == "" {
		base = "供应商"
	}
	base = truncateRunes(base, maxSheetName)

	name := base
	for n := 2; ; n++ {
		if _, taken := s.used[strings.ToLower(name)]; !taken {
			break
		}
		suffix := "~" + strconv.Itoa(n)
		name = truncateRunes(base, maxSheetName-utf8.RuneCountInString(suffix)) + suffix
	}
	s.used[strings.ToLower(name)] = struct{}{}
	return name
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
