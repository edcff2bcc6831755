package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "   \t ", ""},
		{"trim and fold", "  Widget-A ", "widget-a"},
		{"collapse spaces", "Steel   Bolt  M8", "steel bolt m8"},
		{"drops line breaks", "螺栓\nM8", "螺栓m8"},
		{"drops tabs", "Steel\tBolt", "steelbolt"},
		{"strip punctuation", "Bolt (M8), zinc.", "bolt m8 zinc"},
		{"keeps hyphen", "A-4 paper", "a-4 paper"},
		{"cjk", " 螺栓（镀锌） ", "螺栓镀锌"},
		{"full width space", "办公　椅", "办公 椅"},
		{"digits", "No.5 Cable 2.5mm", "no5 cable 25mm"},
		{"roman numeral", "离心泵Ⅱ型", "离心泵ⅱ型"},
		{"circled numeral", "滤芯①", "滤芯①"},
		{"vulgar fraction", "½ inch", "½ inch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.in))
		})
	}
}

func TestKeyJoinsRenderings(t *testing.T) {
	assert.Equal(t, Key("  Widget-A "), Key("widget-a"))
	assert.Equal(t, Key("WIDGET-A"), Key("widget-a "))
	assert.NotEqual(t, Key("widget a"), Key("widget-a"))
	assert.Equal(t, Key("螺栓\nM8"), Key("螺栓M8"))
	assert.Equal(t, Key("螺栓\r\nM8"), Key("螺栓m8"))
}

func TestKeyKeepsNumeralsDistinct(t *testing.T) {
	assert.NotEqual(t, Key("泵Ⅰ型"), Key("泵Ⅱ型"))
	assert.NotEqual(t, Key("离心泵Ⅰ型"), Key("离心泵Ⅱ型"))
	assert.NotEqual(t, Key("滤芯①"), Key("滤芯②"))
	assert.NotEqual(t, Key("½ inch"), Key("¼ inch"))
}

func TestKeyIdempotent(t *testing.T) {
	inputs := []string{
		"", " ", "Widget-A", "  Mixed   CASE--name ", "螺栓 (M8)", "İstanbul",
		"ǅungla", "a b", "x́y", "--", "Ⅻ roman", "½ inch",
	}
	for _, in := range inputs {
		once := Key(in)
		assert.Equal(t, once, Key(once), "input %q", in)
	}
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "Widget-A (blue)", Display("  Widget-A (blue) \n"))
	assert.Equal(t, "", Display(""))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "报价元", Label("报价(元)"))
	assert.Equal(t, "unitprice", Label(" Unit Price "))
	assert.Equal(t, "no", Label("No."))
	assert.Equal(t, "需求量", Label("需 求量"))
	assert.Equal(t, "", Label("  "))
	assert.Equal(t, "型号ⅱ", Label("型号 Ⅱ"))
}
