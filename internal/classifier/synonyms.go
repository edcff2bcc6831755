package classifier

import (
	"sort"

	"github.com/ginjaninja78/vendor-price-comparison/internal/normalize"
)

// defaultSynonyms lists, per role, the header labels recognized by label
// matching. Labels are compared after normalize.Label, so "单价(元)" and
// "单价 元" are the same synonym.
var defaultSynonyms = map[Role][]string{
	RoleSerial: {"序号", "编号", "id", "no", "number"},
	RoleItem: {
		"品名", "名称", "物料", "货品", "商品", "品目", "项目", "货物",
		"物料名称", "商品名称", "item", "name", "product",
	},
	RolePrice: {
		"单项报价", "报价", "价格", "单价", "单位价格", "单价(元)", "价格(元)",
		"报价(元)", "单位报价", "price", "cost", "unitprice",
	},
	RoleSubtotal: {"分项小计", "小计", "金额", "total", "amount"},
	RoleQuantity: {
		"需求量", "数量", "qty", "num", "count", "采购数量", "订购数量",
		"数量单位", "需 求量", "quantity",
	},
}

// quantityKeywords are matched as substrings of normalized quantity headers
// when no synonym matched exactly. Short words that occur inside unrelated
// headers ("num" in "partnumber", "count" in "discount") are left to the
// exact synonyms.
var quantityKeywords = []string{
	"qty", "quantity", "demand", "需求", "数量", "用量", "订购",
}

// SynonymTable is the per-role set of normalized header labels.
type SynonymTable struct {
	labels [numRoles][]string
	index  [numRoles]map[string]struct{}
}

// NewSynonymTable builds the default synonym table plus extra synonyms keyed
// by role name ("item", "price", ...). Unknown role names are ignored and
// reported back to the caller.
func NewSynonymTable(extra map[string][]string) (*SynonymTable, []string) {
	st := &SynonymTable{}
	for _, r := range Roles {
		st.index[r] = make(map[string]struct{})
		for _, s := range defaultSynonyms[r] {
			st.add(r, s)
		}
	}

	var unknown []string
	for name, labels := range extra {
		r, ok := ParseRole(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		for _, s := range labels {
			st.add(r, s)
		}
	}
	sort.Strings(unknown)
	return st, unknown
}

func (st *SynonymTable) add(r Role, synonym string) {
	key := normalize.Label(synonym)
	if key == "" {
		return
	}
	if _, dup := st.index[r][key]; dup {
		return
	}
	st.index[r][key] = struct{}{}
	st.labels[r] = append(st.labels[r], key)
}

// Matches reports whether a header label is a synonym of the role.
func (st *SynonymTable) Matches(r Role, header string) bool {
	_, ok := st.index[r][normalize.Label(header)]
	return ok
}

// Labels returns the normalized synonyms of a role in declaration order.
func (st *SynonymTable) Labels(r Role) []string {
	out := make([]string, len(st.labels[r]))
	copy(out, st.labels[r])
	return out
}
