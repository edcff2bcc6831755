// Package normalize turns item names and column labels into comparison keys.
//
// Two quotation lines describe the same item iff their keys are equal, so Key
// is the join key across vendors. Display keeps the vendor's own spelling for
// presentation.
package normalize

import (
	"strings"
	"unicode"
)

const ideographicSpace = '\u3000'

// Key canonicalizes an item name: trim, keep letters, numerals, spaces and
// hyphens, collapse runs of spaces to one, case-fold. Numerals include the
// non-decimal ones (Ⅱ, ①, ½). Only U+0020 and the ideographic space count as
// spaces; line breaks and tabs inside a cell are dropped.
//
//	"  Widget-A "   -> "widget-a"
//	"M8 螺栓（镀锌）" -> "m8 螺栓镀锌"
//	"螺栓\nM8"      -> "螺栓m8"
//
// Key is total and idempotent: Key(Key(x)) == Key(x).
func Key(raw string) string {
	// Case-fold first: lowering can emit combining marks, which the filter
	// below must see or the key would not be a fixed point.
	lowered := strings.ToLower(strings.TrimSpace(raw))

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case unicode.IsLetter(r), unicode.IsNumber(r), r == '-':
			b.WriteRune(r)
		case r == ' ', r == ideographicSpace:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Display returns the presentation form of an item name: the original text,
// trimmed and otherwise untouched.
func Display(raw string) string {
	return strings.TrimSpace(raw)
}

// Label canonicalizes a column header for synonym matching: everything that
// is not a letter or a numeral is dropped and the result is case-folded, so
// "报价(元)", "报价 元" and "报价元" compare equal, as do "Unit Price" and
// "unitprice".
func Label(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
