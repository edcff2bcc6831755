// =============================================================================
// Vendor Price Comparison - Cross-Vendor Reconciler
// =============================================================================
//
// This package merges the record sets of several vendors into one
// lowest-price view.
//
// RECONCILIATION RULES:
//   - Items are the union of every vendor's normalized items, in order of
//     first appearance (vendor input order, then row order)
//   - The minimum price is found with a strict "<" scan in vendor input
//     order, so on a tie the earliest vendor wins
//   - Serial, display name, quantity and subtotal of a reconciled item are
//     the winning vendor's
//   - Every participating vendor gets a quote entry per item, marked absent
//     when it did not quote the item
//   - Vendors with an empty record set are dropped with a warning
//
// The minimum-vendor business rule is not checked here; callers enforce it
// before reconciling.
//
// =============================================================================

package reconcile

import (
	"go.uber.org/zap"

	"github.com/ginjaninja78/vendor-price-comparison/internal/types"
)

// Result is the output of one reconciliation pass.
type Result struct {
	// Items is ordered by the winning serial (see SortItems).
	Items []*types.ReconciledItem

	// Wins lists every participating vendor in input order.
	Wins types.VendorWinSummary

	// Vendors are the participating vendors in input order.
	Vendors []string

	Warnings []types.Warning
}

// Reconcile computes the lowest price and winning vendor of every item.
func Reconcile(sets []*types.VendorRecordSet) *Result {
	res := &Result{}

	var active []*types.VendorRecordSet
	for _, s := range sets {
		if s == nil {
			continue
		}
		if s.Len() == 0 {
			res.Warnings = append(res.Warnings, types.Warning{
				Kind:    types.WarnEmptyVendor,
				Vendor:  s.Vendor,
				Message: "no usable quotation rows; vendor skipped",
			})
			continue
		}
		active = append(active, s)
		res.Vendors = append(res.Vendors, s.Vendor)
	}

	// Union of items in first-appearance order.
	seen := make(map[string]struct{})
	var keys []string
	for _, s := range active {
		for _, k := range s.Keys() {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}

	won := make([][]*types.ReconciledItem, len(active))
	for _, k := range keys {
		item, winner := reconcileItem(k, active)
		res.Items = append(res.Items, item)
		won[winner] = append(won[winner], item)
	}

	SortItems(res.Items)
	for i, s := range active {
		res.Wins = append(res.Wins, types.VendorWins{Vendor: s.Vendor, Items: won[i]})
	}
	SortWins(res.Wins)

	zap.L().Debug("reconcile: items reconciled",
		zap.Int("vendors", len(active)),
		zap.Int("items", len(res.Items)),
	)
	return res
}

// reconcileItem builds the cross-vendor view of one item and returns the
// index of the winning set.
func reconcileItem(key string, sets []*types.VendorRecordSet) (*types.ReconciledItem, int) {
	item := &types.ReconciledItem{
		NormalizedItem: key,
		Quotes:         make([]types.Quote, 0, len(sets)),
	}

	var best *types.VendorRecord
	winner := -1
	for i, s := range sets {
		rec, ok := s.Get(key)
		if !ok {
			item.Quotes = append(item.Quotes, types.Quote{Vendor: s.Vendor})
			continue
		}
		item.Quotes = append(item.Quotes, types.Quote{Vendor: s.Vendor, Present: true, Price: rec.Price})
		if best == nil || rec.Price < best.Price {
			r := rec
			best = &r
			winner = i
			item.WinningVendor = s.Vendor
		}
	}

	// key comes from the union of these sets, so best is never nil.
	item.Serial = best.Serial
	item.DisplayItem = best.DisplayItem
	item.MinPrice = best.Price
	item.Quantity = best.Quantity
	item.Subtotal = best.Subtotal
	return item, winner
}
