// =============================================================================
// Vendor Price Comparison - Column Classifier
// =============================================================================
//
// This package decides which column of a quotation table plays each canonical
// role: serial, item, price, subtotal and quantity.
//
// STRATEGY CHAIN:
//   Classification runs an ordered list of strategies over a shared
//   assignment. Each strategy only fills roles that are still open:
//     1. LabelMatch         - header synonyms, all roles
//     2. KeywordMatch       - quantity keywords inside longer headers
//     3. PositionalFallback - fixed layout, only when no header is usable
//     4. ContentHeuristic   - numeric unlabeled column as quantity
//
// TITLE BLOCKS:
//   When the header row is unusable, or the chain cannot place item and
//   price, the table is re-read with the header row promoted from below the
//   title block (see table.PromoteHeader) and the chain runs again.
//
// Classification never fails. Callers check Classification.Missing.
//
// =============================================================================

package classifier

import (
	"go.uber.org/zap"

	"github.com/ginjaninja78/vendor-price-comparison/internal/table"
)

// Options tunes the classifier.
type Options struct {
	// SampleRows is how many leading data rows the numeric test inspects.
	SampleRows int

	// NumericRatio is the share of sampled cells that must parse as numbers.
	NumericRatio float64

	// ExtraSynonyms adds header labels per role name.
	ExtraSynonyms map[string][]string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{SampleRows: 5, NumericRatio: 0.5}
}

// Classification is the outcome of classifying one table.
type Classification struct {
	// Table is the table the roles refer to. It differs from the input when
	// the header row was promoted.
	Table *table.Table

	Roles RoleMap

	// Promoted is true when a title block was skipped.
	Promoted bool
}

// Missing returns the names of required roles that could not be placed.
func (c Classification) Missing() []string {
	var names []string
	for _, r := range c.Roles.Missing() {
		names = append(names, r.String())
	}
	return names
}

// OK reports whether item and price were placed.
func (c Classification) OK() bool {
	return c.Roles.Complete()
}

// Classifier runs the strategy chain.
type Classifier struct {
	strategies []Strategy
}

// New creates a Classifier with the default chain.
func New(opts Options) *Classifier {
	synonyms, unknown := NewSynonymTable(opts.ExtraSynonyms)
	if len(unknown) > 0 {
		zap.L().Warn("classifier: ignoring synonyms for unknown roles", zap.Strings("roles", unknown))
	}
	sampler := Sampler{Rows: opts.SampleRows, Threshold: opts.NumericRatio}
	return NewWithStrategies(
		LabelMatch{Synonyms: synonyms},
		KeywordMatch{},
		PositionalFallback{Sampler: sampler},
		ContentHeuristic{Sampler: sampler},
	)
}

// NewWithStrategies creates a Classifier with a custom chain.
func NewWithStrategies(strategies ...Strategy) *Classifier {
	return &Classifier{strategies: strategies}
}

// Classify assigns column roles to a table.
func (c *Classifier) Classify(t *table.Table) Classification {
	promoted := false
	if t.HeadersUnreliable() {
		if p, ok := t.PromoteHeader(); ok {
			t, promoted = p, true
		}
	}

	roles := c.run(t)
	if !roles.Complete() && !promoted {
		if p, ok := t.PromoteHeader(); ok {
			retry := c.run(p)
			if retry.Complete() {
				t, roles, promoted = p, retry, true
			}
		}
	}

	zap.L().Debug("classifier: roles assigned",
		zap.String("table", t.Name),
		zap.Strings("headers", t.Headers),
		zap.Stringer("roles", roles),
		zap.Bool("promoted", promoted),
	)
	return Classification{Table: t, Roles: roles, Promoted: promoted}
}

func (c *Classifier) run(t *table.Table) RoleMap {
	a := newAssignment()
	for _, s := range c.strategies {
		if a.Done() {
			break
		}
		s.Apply(t, a)
	}
	return a.RoleMap()
}

// Classify runs the default classifier.
func Classify(t *table.Table) Classification {
	return New(DefaultOptions()).Classify(t)
}
