package term

import (
	"fmt"
	"slices"

	"github.com/cottand/motifsat/util"
)

// Pi builds a normalised provenance tag: indices sorted ascending without repeats.
func Pi(indices ...int) *Term {
	norm := util.SortedUnique(slices.Clone(indices))
	args := make([]*Term, len(norm))
	for i, idx := range norm {
		args[i] = Num(int64(idx))
	}
	return New(OpPi, args...)
}

// NormalizePi rebuilds a Pi term in normal form.
func NormalizePi(t *Term) (*Term, error) {
	indices, err := t.Indices()
	if err != nil {
		return nil, err
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("empty provenance")
	}
	for _, i := range indices {
		if i < 0 {
			return nil, fmt.Errorf("negative provenance index %d", i)
		}
	}
	return Pi(indices...), nil
}

// MergePi is the sorted union of two provenance tags.
func MergePi(a, b *Term) (*Term, error) {
	ia, err := a.Indices()
	if err != nil {
		return nil, err
	}
	ib, err := b.Indices()
	if err != nil {
		return nil, err
	}
	return Pi(util.SortedUnion(ia, ib)...), nil
}
