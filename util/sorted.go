package util

import (
	"slices"
	"sort"

	"github.com/xtgo/set"
)

// SortedUnique sorts xs in place and returns the prefix holding its distinct elements.
func SortedUnique(xs []int) []int {
	sort.Ints(xs)
	n := set.Uniq(sort.IntSlice(xs))
	return xs[:n]
}

// SortedUnion returns the sorted distinct union of a and b, which must both be sorted and unique.
// Neither input is modified.
func SortedUnion(a, b []int) []int {
	data := make([]int, 0, len(a)+len(b))
	data = append(data, a...)
	data = append(data, b...)
	n := set.Union(sort.IntSlice(data), len(a))
	return slices.Clip(data[:n])
}
