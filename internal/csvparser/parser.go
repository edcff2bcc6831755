// =============================================================================
// Vendor Price Comparison - CSV Parser Module
// =============================================================================
//
// This module reads CSV quotations into a table.Table. Quotations exported
// from Chinese spreadsheet tools are frequently GBK/GB18030 encoded, so the
// parser decodes the byte stream before the CSV reader sees it.
//
// FEATURES:
//   - Configurable delimiter (comma, tab, pipe, semicolon)
//   - Configurable encoding by WHATWG name ("gbk", "gb18030", "big5", ...)
//   - Encoding auto-detection: valid UTF-8 (with or without BOM) is read as
//     is, anything else is decoded as GB18030
//   - Ragged rows and lazy quotes are accepted
//
// Every cell is kept as text. Numbers are parsed later, so serials such as
// "001" keep their leading zeros.
//
// =============================================================================

package csvparser

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/vendor-price-comparison/internal/config"
	"github.com/ginjaninja78/vendor-price-comparison/internal/table"
)

// utf8BOM is stripped from the start of UTF-8 input.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file into a table named after the file.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: Delimiter and encoding settings.
//
// RETURNS:
//   - The parsed table (first row is the header row).
//   - An error if the file cannot be read, decoded or parsed.
func Parse(filePath string, settings config.CSVSettings) (*table.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, eris.Wrapf(err, "csvparser: open %s", filePath)
	}
	defer file.Close()

	return ParseReader(filepath.Base(filePath), file, settings)
}

// ParseReader reads CSV content from r into a table with the given name.
//
// PARSING PROCESS:
//   1. Read the whole input (quotations are small; uploads are size-capped)
//   2. Pick the decoder (configured or detected) and decode to UTF-8
//   3. Configure the CSV reader with the delimiter
//   4. Read all records and wrap them in a table
func ParseReader(name string, r io.Reader, settings config.CSVSettings) (*table.Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrapf(err, "csvparser: read %s", name)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, eris.Errorf("csvparser: %s is empty", name)
	}

	decoded, err := decode(raw, settings.Encoding)
	if err != nil {
		return nil, eris.Wrapf(err, "csvparser: decode %s", name)
	}

	reader := csv.NewReader(strings.NewReader(decoded))
	configureReader(reader, settings)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "csvparser: parse %s", name)
	}
	if len(records) == 0 {
		return nil, eris.Errorf("csvparser: %s has no rows", name)
	}

	return table.FromStrings(name, records), nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if r, _ := utf8.DecodeRuneInString(settings.Delimiter); r != utf8.RuneError && settings.Delimiter != "" {
			reader.Comma = r
		} else {
			reader.Comma = ','
		}
	}

	// Vendors hand-edit their sheets; rows of different widths are normal.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// =============================================================================
// ENCODING
// =============================================================================

// decode converts raw bytes to a UTF-8 string.
//
// An empty name or "auto" selects detection: UTF-8 input is kept (minus its
// BOM), everything else is decoded as GB18030, a superset of GBK and GB2312.
func decode(raw []byte, name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	var enc encoding.Encoding
	switch name {
	case "", "auto":
		if utf8.Valid(raw) {
			return string(bytes.TrimPrefix(raw, utf8BOM)), nil
		}
		enc = simplifiedchinese.GB18030
	case "utf-8", "utf8":
		return string(bytes.TrimPrefix(raw, utf8BOM)), nil
	default:
		var err error
		enc, err = htmlindex.Get(name)
		if err != nil {
			return "", eris.Wrapf(err, "unsupported encoding %q", name)
		}
	}

	out, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
