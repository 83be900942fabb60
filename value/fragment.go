package value

import (
	"fmt"
	"slices"

	"github.com/signadot/itemscript/locator"
)

// Path returns the keys leading from v's Item root (or, when v is
// detached, from the top of its tree) down to v.
func (v *Value) Path() []string {
	var segs []string
	for cur := v; cur.parent != nil && !cur.IsRoot(); cur = cur.parent {
		segs = append(segs, cur.key)
	}
	slices.Reverse(segs)
	return segs
}

// Fragment returns the '#'-prefixed fragment locating v within its Item.
// It is "#" for an Item root.
func (v *Value) Fragment() string {
	return fragmentOf(v.Path())
}

// ParseFragment decodes a fragment such as "#a/b/0" or "a.b" into its
// components.
func ParseFragment(s string) ([]string, error) {
	segs, err := locator.SplitFragment(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadFragment, s)
	}
	return segs, nil
}

// FormatFragment is the inverse of ParseFragment.
func FormatFragment(segs []string) string {
	return locator.JoinFragment(segs)
}

func fragmentOf(segs []string) string {
	return locator.JoinFragment(segs)
}
