package reconcile

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ginjaninja78/vendor-price-comparison/internal/types"
)

// serialKey is the sort key of a serial: numeric serials first, ascending by
// value, then everything else in lexicographic order.
type serialKey struct {
	numeric bool
	isInt   bool
	i       int64
	f       float64
	s       string
}

func parseSerialKey(serial string) serialKey {
	s := strings.TrimSpace(serial)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return serialKey{numeric: true, isInt: true, i: i, f: float64(i)}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return serialKey{numeric: true, f: f}
	}
	return serialKey{s: serial}
}

func (a serialKey) less(b serialKey) bool {
	switch {
	case a.numeric && !b.numeric:
		return true
	case !a.numeric && b.numeric:
		return false
	case !a.numeric:
		return a.s < b.s
	case a.isInt && b.isInt:
		return a.i < b.i
	default:
		return a.f < b.f
	}
}

// LessSerial reports whether serial a sorts before serial b.
func LessSerial(a, b string) bool {
	return parseSerialKey(a).less(parseSerialKey(b))
}

// SortSerials returns the serials in output order. Equal keys keep their
// relative order.
func SortSerials(serials []string) []string {
	out := make([]string, len(serials))
	copy(out, serials)
	keys := make(map[string]serialKey, len(out))
	for _, s := range out {
		keys[s] = parseSerialKey(s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return keys[out[i]].less(keys[out[j]])
	})
	return out
}

// SortItems orders reconciled items by the winning record's serial, in place.
// The sort is stable.
func SortItems(items []*types.ReconciledItem) {
	keys := make([]serialKey, len(items))
	for i, it := range items {
		keys[i] = parseSerialKey(it.Serial)
	}
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return keys[idx[a]].less(keys[idx[b]])
	})
	sorted := make([]*types.ReconciledItem, len(items))
	for i, j := range idx {
		sorted[i] = items[j]
	}
	copy(items, sorted)
}

// SortWins orders every vendor's win list by serial, in place. Vendor order
// is left untouched.
func SortWins(wins types.VendorWinSummary) {
	for i := range wins {
		SortItems(wins[i].Items)
	}
}
