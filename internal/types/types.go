// =============================================================================
// Vendor Price Comparison - Shared Types
// =============================================================================
//
// This package contains the data model shared by the vendor builder, the
// reconciler, the analysis run and the reporting collaborators. Keeping the
// types here avoids import cycles between those packages.
//
// LIFECYCLE:
//   Every value in this package is built fresh for one analysis run and is
//   read-only once built. Nothing here is shared between runs.
//
// =============================================================================

package types

import (
	"math"
)

// SubtotalEpsilon is the tolerance used when checking subtotal == price*quantity.
const SubtotalEpsilon = 1e-9

// =============================================================================
// VENDOR RECORDS
// =============================================================================

// VendorRecord is one reconciled item line of one vendor's quotation.
type VendorRecord struct {
	// Serial is the vendor's line number, verbatim, or a synthesized 1-based
	// sequence when the table had no serial column.
	Serial string

	// NormalizedItem is the join key across vendors (see normalize.Key).
	NormalizedItem string

	// DisplayItem is the vendor's own spelling of the item, trimmed.
	DisplayItem string

	// Price is the unit price. Always > 0; lines quoting 0 are abstentions and
	// never become records.
	Price float64

	// Quantity is always > 0.
	Quantity float64

	// Subtotal equals Price*Quantity unless SubtotalExplicit is set.
	Subtotal float64

	// SubtotalExplicit is true when Subtotal was read from the vendor's own
	// subtotal column. Such a subtotal is kept as quoted, even if it disagrees
	// with Price*Quantity.
	SubtotalExplicit bool

	// SourceRow is the 1-based data row the record came from.
	SourceRow int
}

// Consistent reports whether the subtotal invariant holds for the record.
func (r VendorRecord) Consistent() bool {
	if r.SubtotalExplicit {
		return true
	}
	return math.Abs(r.Subtotal-r.Price*r.Quantity) < SubtotalEpsilon*math.Max(1, math.Abs(r.Subtotal))
}

// VendorRecordSet holds one vendor's records keyed by normalized item name.
// Iteration order is the order in which keys were first inserted.
type VendorRecordSet struct {
	// Vendor is the resolved vendor name.
	Vendor string

	keys    []string
	records map[string]VendorRecord
}

// NewVendorRecordSet creates an empty record set for a vendor.
func NewVendorRecordSet(vendor string) *VendorRecordSet {
	return &VendorRecordSet{
		Vendor:  vendor,
		records: make(map[string]VendorRecord),
	}
}

// Put stores a record. It returns the record previously stored under the same
// key, if any; the caller decides which one to keep via Replace.
func (s *VendorRecordSet) Put(r VendorRecord) (VendorRecord, bool) {
	prev, exists := s.records[r.NormalizedItem]
	if exists {
		return prev, true
	}
	s.keys = append(s.keys, r.NormalizedItem)
	s.records[r.NormalizedItem] = r
	return VendorRecord{}, false
}

// Replace overwrites the record stored under r.NormalizedItem without changing
// its position in the iteration order.
func (s *VendorRecordSet) Replace(r VendorRecord) {
	if _, exists := s.records[r.NormalizedItem]; !exists {
		s.keys = append(s.keys, r.NormalizedItem)
	}
	s.records[r.NormalizedItem] = r
}

// Get returns the record for a normalized item.
func (s *VendorRecordSet) Get(key string) (VendorRecord, bool) {
	r, ok := s.records[key]
	return r, ok
}

// Len returns the number of distinct items.
func (s *VendorRecordSet) Len() int {
	return len(s.keys)
}

// Keys returns the normalized items in insertion order.
func (s *VendorRecordSet) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Records returns the records in insertion order.
func (s *VendorRecordSet) Records() []VendorRecord {
	out := make([]VendorRecord, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, s.records[k])
	}
	return out
}

// =============================================================================
// RECONCILED ITEMS
// =============================================================================

// Quote is one vendor's price for a reconciled item.
type Quote struct {
	Vendor string `json:"vendor" yaml:"vendor"`

	// Present is false when the vendor did not quote the item.
	Present bool    `json:"present" yaml:"present"`
	Price   float64 `json:"price,omitempty" yaml:"price,omitempty"`
}

// ReconciledItem is the cross-vendor view of one distinct item.
type ReconciledItem struct {
	// Serial, DisplayItem, Quantity and Subtotal come from the winning
	// vendor's record.
	Serial         string  `json:"serial" yaml:"serial"`
	NormalizedItem string  `json:"normalized_item" yaml:"normalized_item"`
	DisplayItem    string  `json:"item" yaml:"item"`
	MinPrice       float64 `json:"min_price" yaml:"min_price"`
	WinningVendor  string  `json:"vendor" yaml:"vendor"`
	Quantity       float64 `json:"quantity" yaml:"quantity"`
	Subtotal       float64 `json:"subtotal" yaml:"subtotal"`

	// Quotes lists every participating vendor in input order.
	Quotes []Quote `json:"quotes" yaml:"quotes"`
}

// PriceFor returns the price a vendor quoted for this item.
func (it *ReconciledItem) PriceFor(vendor string) (float64, bool) {
	for _, q := range it.Quotes {
		if q.Vendor == vendor {
			return q.Price, q.Present
		}
	}
	return 0, false
}

// VendorWins is the list of items one vendor won.
type VendorWins struct {
	Vendor string            `json:"vendor" yaml:"vendor"`
	Items  []*ReconciledItem `json:"items" yaml:"items"`
}

// Total returns the sum of the subtotals of the items won.
func (w VendorWins) Total() float64 {
	total := 0.0
	for _, it := range w.Items {
		total += it.Subtotal
	}
	return total
}

// VendorWinSummary groups reconciled items by winning vendor. Vendors appear
// in input order, including vendors that won nothing.
type VendorWinSummary []VendorWins

// For returns the wins of one vendor.
func (s VendorWinSummary) For(vendor string) (VendorWins, bool) {
	for _, w := range s {
		if w.Vendor == vendor {
			return w, true
		}
	}
	return VendorWins{}, false
}
