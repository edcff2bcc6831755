package supplier

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ginjaninja78/vendor-price-comparison/internal/table"
)

// NameSource tells where a vendor name came from.
type NameSource string

const (
	NameFromContent  NameSource = "content"
	NameFromFilename NameSource = "filename"
)

// NameStrategy derives a vendor name from a quotation.
type NameStrategy interface {
	Source() NameSource
	Resolve(q Quotation, sheet *table.Table) (string, bool)
}

// NameResolver tries its strategies in order; the first one that yields a
// non-empty name wins.
type NameResolver struct {
	strategies []NameStrategy
}

// NewNameResolver composes strategies with explicit precedence.
func NewNameResolver(strategies ...NameStrategy) *NameResolver {
	return &NameResolver{strategies: strategies}
}

// DefaultNameResolver reads the name from the sheet content first and falls
// back to the file name.
func DefaultNameResolver(scanRows int) *NameResolver {
	return NewNameResolver(
		ContentNameStrategy{ScanRows: scanRows},
		FilenameNameStrategy{},
	)
}

// Resolve returns the vendor name and its source. When no strategy yields a
// name the source string itself is returned.
func (r *NameResolver) Resolve(q Quotation, sheet *table.Table) (string, NameSource) {
	for _, s := range r.strategies {
		if name, ok := s.Resolve(q, sheet); ok {
			return name, s.Source()
		}
	}
	return q.Source, NameFromFilename
}

// =============================================================================
// CONTENT STRATEGY
// =============================================================================

var (
	defaultMarkers    = []string{"供应商", "供货", "vendor", "supplier"}
	defaultQualifiers = []string{"采购时间", "报价日期", "日期"}
)

// ContentNameStrategy looks for a "供应商：XXX" style cell in the title block.
//
// EXTRACTION:
//  1. Scan the first ScanRows raw rows for a cell containing a marker.
//  2. Take the text between the first and the next colon (either "：" or ":").
//  3. Cut it at the first qualifier ("采购时间", ...).
//  4. Keep letters, digits, spaces, "." and "-".
type ContentNameStrategy struct {
	ScanRows   int
	Markers    []string
	Qualifiers []string
}

func (ContentNameStrategy) Source() NameSource { return NameFromContent }

func (s ContentNameStrategy) Resolve(_ Quotation, sheet *table.Table) (string, bool) {
	if sheet == nil {
		return "", false
	}
	markers := s.Markers
	if markers == nil {
		markers = defaultMarkers
	}
	scan := s.ScanRows
	if scan <= 0 {
		scan = 10
	}

	rows := sheet.RawRows()
	if len(rows) > scan {
		rows = rows[:scan]
	}
	for _, row := range rows {
		for _, cell := range row {
			text := cell.String()
			if !containsAny(strings.ToLower(text), markers) {
				continue
			}
			if name := s.extract(text); name != "" {
				return name, true
			}
		}
	}
	return "", false
}

func (s ContentNameStrategy) extract(text string) string {
	_, rest, found := cutColon(text)
	if !found {
		return ""
	}
	if segment, _, more := cutColon(rest); more {
		rest = segment
	}

	qualifiers := s.Qualifiers
	if qualifiers == nil {
		qualifiers = defaultQualifiers
	}
	for _, q := range qualifiers {
		if i := strings.Index(rest, q); i >= 0 {
			rest = rest[:i]
		}
	}
	return CleanName(rest)
}

// cutColon splits around the first full-width or ASCII colon.
func cutColon(s string) (before, after string, found bool) {
	i := strings.IndexAny(s, ":：")
	if i < 0 {
		return s, "", false
	}
	_, size := utf8.DecodeRuneInString(s[i:])
	return s[:i], s[i+size:], true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

// CleanName keeps letters, numerals, spaces, "." and "-" and trims the result.
func CleanName(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == ' ' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// =============================================================================
// FILENAME STRATEGY
// =============================================================================

// FilenameNameStrategy uses the file's base name up to the first dot, so
// "acme.2024.xlsx" becomes "acme".
type FilenameNameStrategy struct{}

func (FilenameNameStrategy) Source() NameSource { return NameFromFilename }

func (FilenameNameStrategy) Resolve(q Quotation, _ *table.Table) (string, bool) {
	base := filepath.Base(strings.TrimSpace(q.Source))
	if base == "." || base == string(filepath.Separator) {
		return "", false
	}
	name, _, _ := strings.Cut(base, ".")
	name = strings.TrimSpace(name)
	if name == "" {
		name = base
	}
	return name, name != ""
}
