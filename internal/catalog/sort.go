package catalog

import (
	"slices"
	"strings"

	"github.com/abhisek/easypractice/internal/store"
)

// SortByName orders sets by their display name in lang, case-insensitive,
// falling back to the key for equal names.
func SortByName(sets []store.ItemSet, lang string) {
	slices.SortStableFunc(sets, func(a, b store.ItemSet) int {
		na := strings.ToLower(a.Name.Resolve(lang))
		nb := strings.ToLower(b.Name.Resolve(lang))
		if c := strings.Compare(na, nb); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})
}

// EnabledSets returns the enabled sets, keeping the first set seen for
// each key.
func EnabledSets(sets []store.ItemSet) []store.ItemSet {
	seen := make(map[string]bool)
	var out []store.ItemSet
	for _, s := range sets {
		if !s.Enabled || seen[s.Key] {
			continue
		}
		seen[s.Key] = true
		out = append(out, s)
	}
	return out
}
