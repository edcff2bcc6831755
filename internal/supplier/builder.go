// =============================================================================
// Vendor Price Comparison - Vendor Table Builder
// =============================================================================
//
// This package turns one vendor's quotation (one or more sheets) into a
// VendorRecordSet keyed by normalized item name.
//
// BUILD PIPELINE:
//   1. Classify every sheet; the first sheet with item and price wins
//   2. Resolve the vendor name (sheet content, then file name)
//   3. Read each data row, rejecting lines without item or a positive price
//   4. Derive quantity and subtotal where the vendor left them out
//   5. Store the record, applying the duplicate policy on item collisions
//
// ROW RULES:
//   - quantity:  quantity column, invalid or <= 0 becomes 1; without a
//                quantity column, explicit subtotal / price; else 1
//   - subtotal:  subtotal column as quoted; invalid or missing becomes
//                price * quantity
//   - serial:    serial column verbatim; else the 1-based sequence number of
//                the accepted row
//
// =============================================================================

package supplier

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ginjaninja78/vendor-price-comparison/internal/classifier"
	"github.com/ginjaninja78/vendor-price-comparison/internal/normalize"
	"github.com/ginjaninja78/vendor-price-comparison/internal/table"
	"github.com/ginjaninja78/vendor-price-comparison/internal/types"
)

// Quotation is one vendor's input: the file it came from and its sheets in
// workbook order. CSV quotations have exactly one sheet.
type Quotation struct {
	Source string
	Sheets []*table.Table
}

// =============================================================================
// DUPLICATE POLICY
// =============================================================================

// DuplicatePolicy decides which row survives when two rows of one vendor
// normalize to the same item.
type DuplicatePolicy string

const (
	KeepFirst DuplicatePolicy = "keep_first"
	KeepLast  DuplicatePolicy = "keep_last"
)

// ParseDuplicatePolicy validates a policy name. An empty name selects
// KeepFirst.
func ParseDuplicatePolicy(name string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(strings.ToLower(strings.TrimSpace(name))); p {
	case "":
		return KeepFirst, nil
	case KeepLast, KeepFirst:
		return p, nil
	default:
		return "", eris.Errorf("supplier: unknown duplicate policy %q (want %s or %s)", name, KeepFirst, KeepLast)
	}
}

// =============================================================================
// BUILDER
// =============================================================================

// Options configures a Builder.
type Options struct {
	DuplicatePolicy DuplicatePolicy

	// Classifier defaults to classifier.New(classifier.DefaultOptions()).
	Classifier *classifier.Classifier

	// Names defaults to DefaultNameResolver(10).
	Names *NameResolver
}

// Stats describes what happened to one quotation.
type Stats struct {
	Sheet        string     `json:"sheet" yaml:"sheet"`
	NameSource   NameSource `json:"name_source" yaml:"name_source"`
	Promoted     bool       `json:"header_promoted" yaml:"header_promoted"`
	RowsRead     int        `json:"rows_read" yaml:"rows_read"`
	RowsAccepted int        `json:"rows_accepted" yaml:"rows_accepted"`
	RowsRejected int        `json:"rows_rejected" yaml:"rows_rejected"`
	Duplicates   int        `json:"duplicates" yaml:"duplicates"`
}

// Outcome is a built vendor.
type Outcome struct {
	Vendor   string
	Records  *types.VendorRecordSet
	Roles    classifier.RoleMap
	Stats    Stats
	Warnings []types.Warning
}

// Builder builds vendor record sets.
type Builder struct {
	policy     DuplicatePolicy
	classifier *classifier.Classifier
	names      *NameResolver
}

// NewBuilder creates a Builder, filling unset options with defaults.
func NewBuilder(opts Options) *Builder {
	b := &Builder{
		policy:     opts.DuplicatePolicy,
		classifier: opts.Classifier,
		names:      opts.Names,
	}
	if b.policy == "" {
		b.policy = KeepFirst
	}
	if b.classifier == nil {
		b.classifier = classifier.New(classifier.DefaultOptions())
	}
	if b.names == nil {
		b.names = DefaultNameResolver(10)
	}
	return b
}

// Build reads one quotation. It returns a *types.ClassificationError when no
// sheet has item and price columns.
func (b *Builder) Build(q Quotation) (*Outcome, error) {
	sheet, cls, err := b.pickSheet(q)
	if err != nil {
		return nil, err
	}

	name, source := b.names.Resolve(q, sheet)
	out := &Outcome{
		Vendor:  name,
		Records: types.NewVendorRecordSet(name),
		Roles:   cls.Roles,
		Stats: Stats{
			Sheet:      sheet.Name,
			NameSource: source,
			Promoted:   cls.Promoted,
		},
	}

	b.readRows(cls, q, out)

	zap.L().Debug("supplier: quotation built",
		zap.String("vendor", name),
		zap.String("source", q.Source),
		zap.String("sheet", sheet.Name),
		zap.Int("accepted", out.Stats.RowsAccepted),
		zap.Int("rejected", out.Stats.RowsRejected),
		zap.Int("duplicates", out.Stats.Duplicates),
	)
	return out, nil
}

// pickSheet returns the first sheet that classifies.
func (b *Builder) pickSheet(q Quotation) (*table.Table, classifier.Classification, error) {
	var first *classifier.Classification
	for _, sheet := range q.Sheets {
		if sheet == nil {
			continue
		}
		cls := b.classifier.Classify(sheet)
		if cls.OK() {
			return sheet, cls, nil
		}
		if first == nil {
			first = &cls
		}
	}

	cerr := &types.ClassificationError{Source: q.Source, Missing: []string{"item", "price"}}
	if first != nil {
		cerr.Sheet = first.Table.Name
		cerr.Headers = append([]string(nil), first.Table.Headers...)
		cerr.Missing = first.Missing()
	}
	return nil, classifier.Classification{}, cerr
}

func (b *Builder) readRows(cls classifier.Classification, q Quotation, out *Outcome) {
	t := cls.Table
	roles := cls.Roles
	itemCol, _ := roles.Column(classifier.RoleItem)
	priceCol, _ := roles.Column(classifier.RolePrice)
	serialCol, hasSerial := roles.Column(classifier.RoleSerial)
	qtyCol, hasQty := roles.Column(classifier.RoleQuantity)
	subCol, hasSub := roles.Column(classifier.RoleSubtotal)

	for row := 0; row < t.RowCount(); row++ {
		out.Stats.RowsRead++

		display := normalize.Display(t.Cell(row, itemCol).String())
		key := normalize.Key(display)
		price, ok := t.Cell(row, priceCol).Float()
		if key == "" || !ok || price <= 0 {
			out.Stats.RowsRejected++
			continue
		}

		rec := types.VendorRecord{
			NormalizedItem: key,
			DisplayItem:    display,
			Price:          price,
			Quantity:       1,
			SourceRow:      row + 1,
		}

		if hasQty {
			if v, ok := t.Cell(row, qtyCol).Float(); ok && v > 0 {
				rec.Quantity = v
			}
		}
		if hasSub {
			if v, ok := t.Cell(row, subCol).Float(); ok {
				rec.Subtotal = v
				rec.SubtotalExplicit = true
				if !hasQty && v/price > 0 {
					rec.Quantity = v / price
				}
			}
		}
		if !rec.SubtotalExplicit {
			rec.Subtotal = rec.Price * rec.Quantity
		}

		out.Stats.RowsAccepted++
		rec.Serial = strconv.Itoa(out.Stats.RowsAccepted)
		if hasSerial {
			if s := strings.TrimSpace(t.Cell(row, serialCol).String()); s != "" {
				rec.Serial = s
			}
		}

		b.store(out, q, rec)
	}
}

func (b *Builder) store(out *Outcome, q Quotation, rec types.VendorRecord) {
	prev, dup := out.Records.Put(rec)
	if !dup {
		return
	}

	out.Stats.Duplicates++
	kept := prev
	if b.policy == KeepLast {
		out.Records.Replace(rec)
		kept = rec
	}
	out.Warnings = append(out.Warnings, types.Warning{
		Kind:   types.WarnDuplicateItem,
		Vendor: out.Vendor,
		Source: q.Source,
		Message: fmt.Sprintf("item %q appears on rows %d and %d; kept row %d (%s)",
			rec.DisplayItem, prev.SourceRow, rec.SourceRow, kept.SourceRow, b.policy),
	})
}

// Build builds one quotation with the given options.
func Build(q Quotation, opts Options) (*types.VendorRecordSet, []types.Warning, error) {
	out, err := NewBuilder(opts).Build(q)
	if err != nil {
		return nil, nil, err
	}
	return out.Records, out.Warnings, nil
}
