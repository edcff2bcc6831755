package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ginjaninja78/vendor-price-comparison/internal/types"
)

func TestSortSerials(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"numeric first", []string{"3", "1", "2a", "2"}, []string{"1", "2", "3", "2a"}},
		{"numeric not lexicographic", []string{"10", "9", "100"}, []string{"9", "10", "100"}},
		{"floats mix with ints", []string{"2", "1.5", "1"}, []string{"1", "1.5", "2"}},
		{"strings lexicographic", []string{"b", "A", "a"}, []string{"A", "a", "b"}},
		{"nan is a string", []string{"NaN", "5"}, []string{"5", "NaN"}},
		{"leading zeros", []string{"010", "002"}, []string{"002", "010"}},
		{"empty", nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SortSerials(tt.in))
		})
	}
}

func TestSortItemsStable(t *testing.T) {
	items := []*types.ReconciledItem{
		{Serial: "x", NormalizedItem: "first-x"},
		{Serial: "2", NormalizedItem: "first-2"},
		{Serial: "2.0", NormalizedItem: "second-2"},
		{Serial: "x", NormalizedItem: "second-x"},
		{Serial: " 1 ", NormalizedItem: "one"},
	}

	SortItems(items)

	assert.Equal(t, []string{"one", "first-2", "second-2", "first-x", "second-x"}, itemNames(items))
}

func TestLessSerial(t *testing.T) {
	assert.True(t, LessSerial("2", "10"))
	assert.True(t, LessSerial("99", "1a"))
	assert.False(t, LessSerial("1a", "99"))
	assert.False(t, LessSerial("2", "2.0"))
	assert.False(t, LessSerial("2.0", "2"))
}
