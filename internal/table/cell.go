package table

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// Kind is the scalar type held by a Cell.
type Kind int

const (
	KindEmpty Kind = iota
	KindString
	KindNumber
)

// Cell is one spreadsheet cell: a string, a number, or nothing.
type Cell struct {
	Kind Kind
	Str  string
	Num  float64
}

// Empty returns an empty cell.
func Empty() Cell {
	return Cell{}
}

// Text returns a string cell, or an empty cell for blank input.
func Text(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{}
	}
	return Cell{Kind: KindString, Str: s}
}

// Number returns a numeric cell. NaN is treated as empty, matching how
// spreadsheet readers represent missing values.
func Number(f float64) Cell {
	if math.IsNaN(f) {
		return Cell{}
	}
	return Cell{Kind: KindNumber, Num: f}
}

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool {
	switch c.Kind {
	case KindString:
		return strings.TrimSpace(c.Str) == ""
	case KindNumber:
		return false
	default:
		return true
	}
}

// String renders the cell as text. Integral numbers render without a
// fractional part so a serial stored as 3.0 reads "3".
func (c Cell) String() string {
	switch c.Kind {
	case KindString:
		return c.Str
	case KindNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	default:
		return ""
	}
}

// Float returns the numeric value of the cell. String cells are parsed
// leniently (see ParseNumber).
func (c Cell) Float() (float64, bool) {
	switch c.Kind {
	case KindNumber:
		if math.IsInf(c.Num, 0) {
			return 0, false
		}
		return c.Num, true
	case KindString:
		return ParseNumber(c.Str)
	default:
		return 0, false
	}
}

// currencyMarks are stripped from both ends of a numeric string.
var currencyMarks = []string{"RMB", "CNY", "R$", "¥", "$", "元", "€", "£"}

// ParseNumber parses a quoted amount such as "3.5", " ¥1,200 ", "12元" or
// full-width "１２". Non-finite values ("NaN", "Inf") and text like "N/A"
// do not parse.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(width.Narrow.String(s))
	if s == "" {
		return 0, false
	}

	for _, mark := range currencyMarks {
		s = strings.TrimPrefix(s, mark)
		s = strings.TrimSuffix(s, mark)
	}
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
