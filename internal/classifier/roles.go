package classifier

import (
	"strconv"
	"strings"
)

// Role is a canonical column role of a quotation table.
type Role int

const (
	RoleSerial Role = iota
	RoleItem
	RolePrice
	RoleSubtotal
	RoleQuantity

	numRoles
)

// Roles lists every role in assignment order. Label matching assigns roles in
// this order, so a header claimed by an earlier role is never reused.
var Roles = []Role{RoleSerial, RoleItem, RolePrice, RoleSubtotal, RoleQuantity}

// RequiredRoles must be placed for a table to be usable.
var RequiredRoles = []Role{RoleItem, RolePrice}

var roleNames = [numRoles]string{
	RoleSerial:   "serial",
	RoleItem:     "item",
	RolePrice:    "price",
	RoleSubtotal: "subtotal",
	RoleQuantity: "quantity",
}

func (r Role) String() string {
	if r < 0 || r >= numRoles {
		return "unknown"
	}
	return roleNames[r]
}

// ParseRole converts a role name ("item", "Price", ...) to a Role.
func ParseRole(name string) (Role, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for r, n := range roleNames {
		if n == name {
			return Role(r), true
		}
	}
	return 0, false
}

// =============================================================================
// ROLE MAP
// =============================================================================

// absent marks a role without a column.
const absent = -1

// RoleMap maps each role to a column index, or to nothing. The zero value is
// not useful; RoleMaps are produced by the classifier and never change after
// that.
type RoleMap struct {
	cols [numRoles]int
}

func emptyRoleMap() RoleMap {
	var m RoleMap
	for i := range m.cols {
		m.cols[i] = absent
	}
	return m
}

// Column returns the column index of a role.
func (m RoleMap) Column(r Role) (int, bool) {
	c := m.cols[r]
	return c, c != absent
}

// Has reports whether a role was placed.
func (m RoleMap) Has(r Role) bool {
	return m.cols[r] != absent
}

// Missing returns the required roles that were not placed.
func (m RoleMap) Missing() []Role {
	var missing []Role
	for _, r := range RequiredRoles {
		if !m.Has(r) {
			missing = append(missing, r)
		}
	}
	return missing
}

// Complete reports whether every required role was placed.
func (m RoleMap) Complete() bool {
	return len(m.Missing()) == 0
}

// String renders the map as "serial=0 item=1 price=2 subtotal=- quantity=-".
func (m RoleMap) String() string {
	var b strings.Builder
	for i, r := range Roles {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(r.String())
		b.WriteByte('=')
		if c, ok := m.Column(r); ok {
			b.WriteString(strconv.Itoa(c))
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

// =============================================================================
// ASSIGNMENT (mutable view used while the chain runs)
// =============================================================================

// Assignment is the work-in-progress role map handed to each strategy.
// Strategies only fill roles that are still open and only use columns that
// are still free.
type Assignment struct {
	m    RoleMap
	used map[int]Role
}

func newAssignment() *Assignment {
	return &Assignment{m: emptyRoleMap(), used: make(map[int]Role)}
}

// Has reports whether a role is already placed.
func (a *Assignment) Has(r Role) bool {
	return a.m.Has(r)
}

// Column returns the column of a placed role.
func (a *Assignment) Column(r Role) (int, bool) {
	return a.m.Column(r)
}

// Taken reports whether a column already plays some role.
func (a *Assignment) Taken(col int) bool {
	_, ok := a.used[col]
	return ok
}

// Assign places a role on a column. It returns false, and changes nothing,
// when the role is already placed or the column is taken.
func (a *Assignment) Assign(r Role, col int) bool {
	if col < 0 || a.Has(r) || a.Taken(col) {
		return false
	}
	a.m.cols[r] = col
	a.used[col] = r
	return true
}

// Done reports whether every role is placed.
func (a *Assignment) Done() bool {
	for _, r := range Roles {
		if !a.Has(r) {
			return false
		}
	}
	return true
}

// RoleMap freezes the assignment.
func (a *Assignment) RoleMap() RoleMap {
	return a.m
}
