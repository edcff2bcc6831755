package analysis

import (
	"fmt"
)

// nameRegistry hands out unique vendor names within one run.
type nameRegistry struct {
	used map[string]struct{}
}

func newNameRegistry() *nameRegistry {
	return &nameRegistry{used: make(map[string]struct{})}
}

// claim registers a name. A name already taken gets the first free " (n)"
// suffix, starting at 2; renamed reports whether that happened.
func (r *nameRegistry) claim(name string) (unique string, renamed bool) {
	if _, taken := r.used[name]; !taken {
		r.used[name] = struct{}{}
		return name, false
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", name, n)
		if _, taken := r.used[candidate]; !taken {
			r.used[candidate] = struct{}{}
			return candidate, true
		}
	}
}
