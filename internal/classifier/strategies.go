package classifier

import (
	"strings"

	"github.com/ginjaninja78/vendor-price-comparison/internal/normalize"
	"github.com/ginjaninja78/vendor-price-comparison/internal/table"
)

// Strategy is one step of the classification chain. Apply fills roles that
// are still open in the assignment; it never overwrites a placed role.
type Strategy interface {
	Name() string
	Apply(t *table.Table, a *Assignment)
}

// =============================================================================
// LABEL MATCH
// =============================================================================

// LabelMatch places every role whose synonym appears in the header row. For
// each role the first matching header, in header order, wins.
type LabelMatch struct {
	Synonyms *SynonymTable
}

func (LabelMatch) Name() string { return "label" }

func (s LabelMatch) Apply(t *table.Table, a *Assignment) {
	for _, r := range Roles {
		if a.Has(r) {
			continue
		}
		for col, h := range t.Headers {
			if a.Taken(col) || table.IsPlaceholder(h) {
				continue
			}
			if s.Synonyms.Matches(r, h) {
				a.Assign(r, col)
				break
			}
		}
	}
}

// =============================================================================
// KEYWORD MATCH
// =============================================================================

// KeywordMatch places the quantity role on the first free header that
// contains a quantity keyword ("采购数量(个)", "Order Qty").
type KeywordMatch struct {
	Keywords []string
}

func (KeywordMatch) Name() string { return "keyword" }

func (s KeywordMatch) Apply(t *table.Table, a *Assignment) {
	if a.Has(RoleQuantity) {
		return
	}
	keywords := s.Keywords
	if keywords == nil {
		keywords = quantityKeywords
	}
	for col, h := range t.Headers {
		if a.Taken(col) || table.IsPlaceholder(h) {
			continue
		}
		label := normalize.Label(h)
		for _, kw := range keywords {
			if strings.Contains(label, kw) {
				a.Assign(RoleQuantity, col)
				return
			}
		}
	}
}

// =============================================================================
// POSITIONAL FALLBACK
// =============================================================================

// PositionalFallback assumes the usual quotation layout when the table has no
// usable header at all: serial, item, price in the first three columns and a
// quantity in the fifth. The fifth column is only kept when its sampled cells
// are numeric.
type PositionalFallback struct {
	Sampler Sampler
}

func (PositionalFallback) Name() string { return "positional" }

func (s PositionalFallback) Apply(t *table.Table, a *Assignment) {
	if !allPlaceholders(t) {
		return
	}
	layout := []Role{RoleSerial, RoleItem, RolePrice}
	for col, r := range layout {
		if col < t.ColumnCount() {
			a.Assign(r, col)
		}
	}
	const quantityCol = 4
	if t.ColumnCount() > quantityCol && !a.Has(RoleQuantity) && !a.Taken(quantityCol) {
		if s.Sampler.IsNumeric(t, quantityCol) {
			a.Assign(RoleQuantity, quantityCol)
		}
	}
}

func allPlaceholders(t *table.Table) bool {
	if t.ColumnCount() == 0 {
		return false
	}
	for _, h := range t.Headers {
		if !table.IsPlaceholder(h) {
			return false
		}
	}
	return true
}

// =============================================================================
// CONTENT HEURISTIC
// =============================================================================

// ContentHeuristic looks for an unlabeled numeric column to use as quantity.
//
// SELECTION:
//  1. Candidates are free columns with placeholder headers whose sampled
//     cells are numeric.
//  2. A candidate right of the price column wins, then one left of it.
//  3. Otherwise the candidate with the highest numeric ratio wins; the
//     leftmost one on ties.
//
// When nothing qualifies quantity stays absent and defaults to 1 downstream.
type ContentHeuristic struct {
	Sampler Sampler
}

func (ContentHeuristic) Name() string { return "content" }

func (s ContentHeuristic) Apply(t *table.Table, a *Assignment) {
	if a.Has(RoleQuantity) {
		return
	}

	ratios := make(map[int]float64)
	for col, h := range t.Headers {
		if a.Taken(col) || !table.IsPlaceholder(h) {
			continue
		}
		if ratio, ok := s.Sampler.Ratio(t, col); ok && ratio >= s.Sampler.threshold() {
			ratios[col] = ratio
		}
	}
	if len(ratios) == 0 {
		return
	}

	if price, ok := a.Column(RolePrice); ok {
		for _, col := range []int{price + 1, price - 1} {
			if _, candidate := ratios[col]; candidate {
				a.Assign(RoleQuantity, col)
				return
			}
		}
	}

	best, bestRatio := -1, -1.0
	for col := 0; col < t.ColumnCount(); col++ {
		ratio, ok := ratios[col]
		if ok && ratio > bestRatio {
			best, bestRatio = col, ratio
		}
	}
	a.Assign(RoleQuantity, best)
}

// =============================================================================
// NUMERIC SAMPLING
// =============================================================================

// Sampler decides whether a column holds numbers by looking at its first
// Rows data cells.
type Sampler struct {
	// Rows is the number of leading data rows inspected (default 5).
	Rows int

	// Threshold is the minimum share of numeric cells (default 0.5).
	Threshold float64
}

func (s Sampler) rows() int {
	if s.Rows <= 0 {
		return 5
	}
	return s.Rows
}

func (s Sampler) threshold() float64 {
	if s.Threshold <= 0 || s.Threshold > 1 {
		return 0.5
	}
	return s.Threshold
}

// Ratio returns the share of sampled cells that parse as numbers. It returns
// false when the table has no data rows to sample.
func (s Sampler) Ratio(t *table.Table, col int) (float64, bool) {
	n := t.RowCount()
	if n > s.rows() {
		n = s.rows()
	}
	if n == 0 {
		return 0, false
	}
	numeric := 0
	for row := 0; row < n; row++ {
		if _, ok := t.Cell(row, col).Float(); ok {
			numeric++
		}
	}
	return float64(numeric) / float64(n), true
}

// IsNumeric reports whether the column passes the numeric sample test.
func (s Sampler) IsNumeric(t *table.Table, col int) bool {
	ratio, ok := s.Ratio(t, col)
	return ok && ratio >= s.threshold()
}
