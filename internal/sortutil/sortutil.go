// Package sortutil provides common sorting helpers shared by the lint
// engine and its reporters.
package sortutil

import (
	"cmp"
	"slices"
)

// ByName sorts a slice of elements using a function that extracts the name.
func ByName[S ~[]E, E any](s S, getName func(E) string) {
	slices.SortFunc(s, func(a, b E) int {
		return cmp.Compare(getName(a), getName(b))
	})
}
