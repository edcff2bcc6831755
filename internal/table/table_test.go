package table

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCleansHeadersAndSkipsEmptyRows(t *testing.T) {
	tbl := FromStrings("q.csv", [][]string{
		{" 品名 ", "", "单价"},
		{"A", "x", "1"},
		{"", " ", ""},
		{"B", "y", "2", "extra"},
	})

	assert.Equal(t, []string{"品名", "Column_2", "单价", "Column_4"}, tbl.Headers)
	assert.Equal(t, 4, tbl.ColumnCount())
	assert.Equal(t, 2, tbl.RowCount())
	assert.Equal(t, "B", tbl.Cell(1, 0).String())
	assert.True(t, tbl.Cell(0, 3).IsEmpty(), "short rows read as empty")
	assert.True(t, tbl.Cell(5, 0).IsEmpty())
	assert.Len(t, tbl.RawRows(), 4)

	idx, ok := tbl.ColumnIndex("单价")
	require.True(t, ok)
	assert.Equal(t, 2, idx)
	_, ok = tbl.ColumnIndex("数量")
	assert.False(t, ok)

	col := tbl.Column(2)
	assert.Equal(t, "1", col[0].String())
	assert.Equal(t, "2", col[1].String())
}

func TestNewEmptyGrid(t *testing.T) {
	tbl := New("empty", nil)
	assert.Equal(t, 0, tbl.ColumnCount())
	assert.Equal(t, 0, tbl.RowCount())
	assert.True(t, tbl.HeadersUnreliable())
}

func TestIsPlaceholder(t *testing.T) {
	for _, label := range []string{"", "  ", "Unnamed: 3", "unnamed:0", "Column_12", "COLUMN_1"} {
		assert.True(t, IsPlaceholder(label), label)
	}
	for _, label := range []string{"品名", "Column", "Unnamed", "column_a"} {
		assert.False(t, IsPlaceholder(label), label)
	}
}

func TestHeadersUnreliable(t *testing.T) {
	assert.True(t, FromStrings("t", [][]string{{"采购报价单"}, {"x"}}).HeadersUnreliable())
	assert.True(t, FromStrings("t", [][]string{{"Unnamed: 0", ""}, {"a", "1"}}).HeadersUnreliable())
	assert.False(t, FromStrings("t", [][]string{{"品名", ""}, {"a", "1"}}).HeadersUnreliable())
}

func TestPromoteHeader(t *testing.T) {
	tbl := FromStrings("q.xlsx", [][]string{
		{"采购报价单"},
		{"供应商：Acme"},
		{},
		{"序号", "品名", "单价"},
		{"1", "Bolt", "2.5"},
	})

	promoted, ok := tbl.PromoteHeader()
	require.True(t, ok)
	assert.Equal(t, []string{"序号", "品名", "单价"}, promoted.Headers)
	assert.Equal(t, 1, promoted.RowCount())
	assert.Equal(t, "q.xlsx", promoted.Name)
}

func TestPromoteHeaderNotNeeded(t *testing.T) {
	_, ok := FromStrings("t", [][]string{{"品名", "单价"}, {"a", "1"}}).PromoteHeader()
	assert.False(t, ok, "numbers directly below the header")

	_, ok = FromStrings("t", [][]string{{"a", "b"}, {"c", "d"}}).PromoteHeader()
	assert.False(t, ok, "no numbers at all")
}

func TestCellConstructors(t *testing.T) {
	assert.True(t, Text("  ").IsEmpty())
	assert.Equal(t, KindString, Text("x").Kind)
	assert.True(t, Number(math.NaN()).IsEmpty())
	assert.Equal(t, "3", Number(3).String())
	assert.Equal(t, "2.5", Number(2.5).String())
	assert.Equal(t, "", Empty().String())

	_, ok := Number(math.Inf(1)).Float()
	assert.False(t, ok)
	_, ok = Empty().Float()
	assert.False(t, ok)

	f, ok := Text("12元").Float()
	require.True(t, ok)
	assert.Equal(t, 12.0, f)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"3.5", 3.5, true},
		{" ¥1,200 ", 1200, true},
		{"１２", 12, true},
		{"RMB 8", 8, true},
		{"-2", -2, true},
		{"N/A", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"", 0, false},
		{"元", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}
