package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/vendor-price-comparison/internal/normalize"
	"github.com/ginjaninja78/vendor-price-comparison/internal/types"
)

type line struct {
	serial string
	item   string
	price  float64
	qty    float64
}

func recordSet(vendor string, lines ...line) *types.VendorRecordSet {
	s := types.NewVendorRecordSet(vendor)
	for i, l := range lines {
		qty := l.qty
		if qty == 0 {
			qty = 1
		}
		serial := l.serial
		if serial == "" {
			serial = string(rune('1' + i))
		}
		s.Put(types.VendorRecord{
			Serial:         serial,
			NormalizedItem: normalize.Key(l.item),
			DisplayItem:    normalize.Display(l.item),
			Price:          l.price,
			Quantity:       qty,
			Subtotal:       l.price * qty,
			SourceRow:      i + 1,
		})
	}
	return s
}

func itemNames(items []*types.ReconciledItem) []string {
	var names []string
	for _, it := range items {
		names = append(names, it.NormalizedItem)
	}
	return names
}

func TestReconcileThreeVendorScenario(t *testing.T) {
	a := recordSet("A", line{item: "Widget", price: 10, qty: 2})
	b := recordSet("B", line{item: "Widget", price: 9, qty: 1})
	c := recordSet("C", line{item: "Gadget", price: 5, qty: 1})

	res := Reconcile([]*types.VendorRecordSet{a, b, c})

	require.Len(t, res.Items, 2)
	widget, gadget := res.Items[0], res.Items[1]

	assert.Equal(t, "widget", widget.NormalizedItem)
	assert.Equal(t, 9.0, widget.MinPrice)
	assert.Equal(t, "B", widget.WinningVendor)
	assert.Equal(t, 9.0, widget.Subtotal)
	assert.Equal(t, 1.0, widget.Quantity)

	assert.Equal(t, "gadget", gadget.NormalizedItem)
	assert.Equal(t, 5.0, gadget.MinPrice)
	assert.Equal(t, "C", gadget.WinningVendor)
	assert.Equal(t, 5.0, gadget.Subtotal)

	require.Len(t, res.Wins, 3)
	assert.Equal(t, "A", res.Wins[0].Vendor)
	assert.Empty(t, res.Wins[0].Items)
	assert.Equal(t, []string{"widget"}, itemNames(res.Wins[1].Items))
	assert.Equal(t, []string{"gadget"}, itemNames(res.Wins[2].Items))
	assert.Equal(t, 9.0, res.Wins[1].Total())
	assert.Empty(t, res.Warnings)
}

func TestReconcileQuotesPerVendor(t *testing.T) {
	a := recordSet("A", line{item: "Widget", price: 10})
	b := recordSet("B", line{item: "Widget", price: 9})
	c := recordSet("C", line{item: "Gadget", price: 5})

	res := Reconcile([]*types.VendorRecordSet{a, b, c})
	widget := res.Items[0]

	assert.Equal(t, []types.Quote{
		{Vendor: "A", Present: true, Price: 10},
		{Vendor: "B", Present: true, Price: 9},
		{Vendor: "C"},
	}, widget.Quotes)

	p, ok := widget.PriceFor("C")
	assert.False(t, ok)
	assert.Zero(t, p)
}

func TestReconcileMinimumIsTrueMinimum(t *testing.T) {
	sets := []*types.VendorRecordSet{
		recordSet("A", line{item: "x", price: 7}, line{item: "y", price: 3}),
		recordSet("B", line{item: "x", price: 4}, line{item: "z", price: 8}),
		recordSet("C", line{item: "x", price: 6}, line{item: "y", price: 2.5}),
	}

	res := Reconcile(sets)

	for _, it := range res.Items {
		want := 0.0
		first := true
		for _, q := range it.Quotes {
			if q.Present && (first || q.Price < want) {
				want, first = q.Price, false
			}
		}
		assert.Equal(t, want, it.MinPrice, it.NormalizedItem)
	}
}

func TestReconcileTieGoesToEarliestVendor(t *testing.T) {
	for i := 0; i < 20; i++ {
		res := Reconcile([]*types.VendorRecordSet{
			recordSet("A", line{item: "bolt", price: 5}),
			recordSet("B", line{item: "bolt", price: 3, serial: "9"}),
			recordSet("C", line{item: "bolt", price: 3, serial: "4"}),
		})
		require.Len(t, res.Items, 1)
		assert.Equal(t, "B", res.Items[0].WinningVendor)
		assert.Equal(t, "9", res.Items[0].Serial)
	}
}

func TestReconcileDisplayFromWinner(t *testing.T) {
	res := Reconcile([]*types.VendorRecordSet{
		recordSet("A", line{item: "  Widget-A ", price: 5}),
		recordSet("B", line{item: "widget-a", price: 4}),
	})

	require.Len(t, res.Items, 1)
	assert.Equal(t, "widget-a", res.Items[0].DisplayItem)
	assert.Equal(t, "B", res.Items[0].WinningVendor)
}

func TestReconcileDropsEmptyVendors(t *testing.T) {
	res := Reconcile([]*types.VendorRecordSet{
		recordSet("A", line{item: "x", price: 1}),
		types.NewVendorRecordSet("Empty"),
		nil,
		recordSet("B", line{item: "x", price: 2}),
	})

	assert.Equal(t, []string{"A", "B"}, res.Vendors)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, types.WarnEmptyVendor, res.Warnings[0].Kind)
	assert.Equal(t, "Empty", res.Warnings[0].Vendor)
	assert.Len(t, res.Items[0].Quotes, 2)
	assert.Len(t, res.Wins, 2)
}

func TestReconcileOrdersBySerial(t *testing.T) {
	res := Reconcile([]*types.VendorRecordSet{
		recordSet("A",
			line{serial: "3", item: "c", price: 1},
			line{serial: "1", item: "a", price: 1},
			line{serial: "2a", item: "d", price: 1},
			line{serial: "2", item: "b", price: 1},
		),
		recordSet("B", line{serial: "10", item: "e", price: 1}),
	})

	assert.Equal(t, []string{"a", "b", "c", "e", "d"}, itemNames(res.Items))
	assert.Equal(t, []string{"a", "b", "c", "d"}, itemNames(res.Wins[0].Items))
	assert.Equal(t, []string{"e"}, itemNames(res.Wins[1].Items))
}

func TestReconcileUnionOrder(t *testing.T) {
	res := Reconcile([]*types.VendorRecordSet{
		recordSet("A", line{serial: "1", item: "p", price: 1}, line{serial: "1", item: "q", price: 1}),
		recordSet("B", line{serial: "1", item: "r", price: 1}, line{serial: "1", item: "p", price: 1}),
	})

	assert.Equal(t, []string{"p", "q", "r"}, itemNames(res.Items))
}
