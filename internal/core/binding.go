package core

import (
	"sort"
	"strings"
)

// BindingTable maps short codes to display names. Several codes may share a
// name; they are then treated as the same party.
type BindingTable map[string]string

// Resolve returns the name bound to code, or code itself when unbound.
func (t BindingTable) Resolve(code string) string {
	if name, ok := t[code]; ok {
		return name
	}
	return code
}

// SameIdentity reports whether two codes resolve to the same name.
func (t BindingTable) SameIdentity(a, b string) bool {
	return t.Resolve(a) == t.Resolve(b)
}

// Set binds code to name, overwriting any previous binding.
func (t BindingTable) Set(code, name string) error {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" {
		return ErrEmptyCode
	}
	if name == "" {
		return ErrEmptyName
	}
	t[code] = name
	return nil
}

// Delete removes the binding for code. Missing codes are ignored.
func (t BindingTable) Delete(code string) {
	delete(t, code)
}

func (t BindingTable) Clone() BindingTable {
	out := make(BindingTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Codes returns the bound codes in sorted order.
func (t BindingTable) Codes() []string {
	codes := make([]string, 0, len(t))
	for k := range t {
		codes = append(codes, k)
	}
	sort.Strings(codes)
	return codes
}

// Participants lists every resolved owner and user found in the ledgers
// together with all bound names, sorted and without duplicates.
func Participants(people BindingTable, ledgers ...Ledger) []string {
	seen := map[string]struct{}{}
	add := func(code string) {
		if strings.TrimSpace(code) == "" {
			return
		}
		seen[people.Resolve(code)] = struct{}{}
	}
	for _, l := range ledgers {
		for _, entries := range l {
			for _, e := range entries {
				add(e.Owner)
				add(e.User)
			}
		}
	}
	for _, name := range people {
		if strings.TrimSpace(name) != "" {
			seen[name] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
