package value

import (
	"cmp"
	"slices"
	"strings"
)

// Compare orders values by type (null < boolean < number < string <
// array < object < native) and then by content. Objects compare as
// their entries sorted by key.
func Compare(a, b *Value) int {
	if a == b {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	if a.typ != b.typ {
		return cmp.Compare(a.typ, b.typ)
	}
	switch a.typ {
	case BooleanType:
		if a.b == b.b {
			return 0
		}
		if !a.b {
			return -1
		}
		return 1
	case NumberType:
		return cmp.Compare(a.n, b.n)
	case StringType:
		return strings.Compare(a.s, b.s)
	case ArrayType:
		return compareArrays(a, b)
	case ObjectType:
		return compareObjects(a, b)
	case NativeType:
		if nativeEqual(a.native, b.native) {
			return 0
		}
		return -1
	}
	return 0
}

func compareArrays(a, b *Value) int {
	n := min(len(a.elems), len(b.elems))
	for i := 0; i < n; i++ {
		if c := Compare(a.elems[i], b.elems[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a.elems), len(b.elems))
}

func compareObjects(a, b *Value) int {
	ka := slices.Sorted(slices.Values(a.keys))
	kb := slices.Sorted(slices.Values(b.keys))
	n := min(len(ka), len(kb))
	for i := 0; i < n; i++ {
		if c := strings.Compare(ka[i], kb[i]); c != 0 {
			return c
		}
		if c := Compare(a.fields[ka[i]], b.fields[kb[i]]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(ka), len(kb))
}

// Equal reports whether a and b hold the same data, ignoring object key
// order and tree position.
func Equal(a, b *Value) bool {
	return Compare(a, b) == 0
}

func (v *Value) Equal(o *Value) bool {
	return Equal(v, o)
}
