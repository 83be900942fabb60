package value

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func keysOf(v *Value) []string {
	var res []string
	for _, c := range v.children() {
		k, _ := c.Key()
		res = append(res, k)
	}
	return res
}

func TestOwnership(t *testing.T) {
	x := FromString("x")
	c1 := NewArray()
	if err := c1.Append(x); err != nil {
		t.Fatal(err)
	}
	c2 := NewObject()
	if err := c2.Set("k", x); !errors.Is(err, ErrAlreadyContained) {
		t.Fatalf("expected ErrAlreadyContained, got %v", err)
	}
	if c2.Len() != 0 {
		t.Errorf("failed insert left %d entries", c2.Len())
	}
	removed, err := c1.RemoveAt(0)
	if err != nil {
		t.Fatal(err)
	}
	if removed != x {
		t.Fatalf("RemoveAt returned %v", removed)
	}
	if err := c2.Set("k", x); err != nil {
		t.Fatal(err)
	}
	if x.Parent() != c2 {
		t.Errorf("parent not updated")
	}
	if k, ok := x.Key(); !ok || k != "k" {
		t.Errorf("key = %q, %t", k, ok)
	}
}

func TestNoCycles(t *testing.T) {
	o := NewObject()
	inner := NewObject()
	if err := o.Set("i", inner); err != nil {
		t.Fatal(err)
	}
	if err := inner.Set("o", o); !errors.Is(err, ErrAlreadyContained) {
		t.Errorf("expected ErrAlreadyContained, got %v", err)
	}
	if err := o.Set("self", o); !errors.Is(err, ErrAlreadyContained) {
		t.Errorf("expected ErrAlreadyContained, got %v", err)
	}
}

func TestArrayMutation(t *testing.T) {
	a, b, c := FromString("a"), FromString("b"), FromString("c")
	arr := FromSlice([]*Value{a, b, c})
	x := FromString("x")
	if err := arr.Insert(0, x); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"0", "1", "2", "3"}, keysOf(arr)); diff != "" {
		t.Errorf("keys after insert (-want +got):\n%s", diff)
	}
	if i, _ := c.Index(); i != 3 {
		t.Errorf("c index %d", i)
	}
	if _, err := arr.RemoveAt(1); err != nil {
		t.Fatal(err)
	}
	if i, _ := c.Index(); i != 2 {
		t.Errorf("c index after remove %d", i)
	}
	if _, ok := a.Key(); ok {
		t.Errorf("removed element kept its key")
	}
	if err := arr.SetAt(5, FromInt(5)); err != nil {
		t.Fatal(err)
	}
	if arr.Len() != 6 {
		t.Fatalf("len %d", arr.Len())
	}
	if !arr.At(4).IsNull() || !arr.At(3).IsNull() {
		t.Errorf("padding not null: %s", arr)
	}
	if err := arr.SetChild("nope", FromInt(1)); !errors.Is(err, ErrBadIndex) {
		t.Errorf("expected ErrBadIndex, got %v", err)
	}
	if got, err := arr.RemoveAt(10); got != nil || err != nil {
		t.Errorf("out of range remove: %v %v", got, err)
	}
	if err := arr.Insert(9, Null()); !errors.Is(err, ErrBadIndex) {
		t.Errorf("expected ErrBadIndex, got %v", err)
	}
}

func TestObjectOrder(t *testing.T) {
	o := NewObject()
	for _, k := range []string{"z", "a", "m"} {
		if err := o.Set(k, FromString(k)); err != nil {
			t.Fatal(err)
		}
	}
	old := o.Get("a")
	if err := o.Set("a", FromInt(1)); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"z", "a", "m"}, o.Keys()); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}
	if old.Parent() != nil {
		t.Errorf("replaced value still linked")
	}
	if got := o.Delete("z"); got == nil {
		t.Fatal("delete returned nil")
	}
	if o.Delete("z") != nil {
		t.Errorf("second delete returned a value")
	}
	if diff := cmp.Diff([]string{"a", "m"}, o.Keys()); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}
	if err := FromInt(1).SetChild("a", Null()); !errors.Is(err, ErrNotAContainer) {
		t.Errorf("expected ErrNotAContainer, got %v", err)
	}
}

func TestAccessors(t *testing.T) {
	s := FromString("s")
	if _, err := s.AsNumber(); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
	if _, ok := s.Number(); ok {
		t.Errorf("optional accessor matched")
	}
	if _, err := FromFloat(1.5).AsInt(); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch for 1.5, got %v", err)
	}
	if i, err := FromInt(42).AsInt(); err != nil || i != 42 {
		t.Errorf("AsInt = %d, %v", i, err)
	}
	bin := FromBinary([]byte{0, 1, 2, 255})
	d, err := bin.AsBinary()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0, 1, 2, 255}, d); diff != "" {
		t.Errorf("binary (-want +got):\n%s", diff)
	}
	if _, err := FromString("%%").AsBinary(); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestCopy(t *testing.T) {
	h := &struct{ n int }{1}
	src := FromKeyVals([]KeyVal{
		{Key: "b", Val: FromSlice([]*Value{FromFloat(0.1), FromNative(h)})},
		{Key: "a", Val: FromNative(h)},
	})
	it, err := NewItem("mem:/src", src)
	if err != nil {
		t.Fatal(err)
	}
	cp := src.Copy()
	if cp.Item() != nil || cp.Parent() != nil {
		t.Errorf("copy is linked")
	}
	if cp.Get("b").At(0).Item() != nil {
		t.Errorf("copied descendant kept item %v", it.Source())
	}
	if !Equal(src, cp) {
		t.Errorf("copy differs: %s vs %s", src, cp)
	}
	if n, _ := cp.Get("a").Native(); n != h {
		t.Errorf("native handle not shared")
	}
	stripped := src.StripNative()
	if diff := cmp.Diff([]string{"b"}, stripped.Keys()); diff != "" {
		t.Errorf("stripped keys (-want +got):\n%s", diff)
	}
	if !stripped.Get("b").At(1).IsNull() {
		t.Errorf("native array element not nulled")
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b *Value
		want int
	}{
		{"null < bool", Null(), FromBool(false), -1},
		{"bool < number", FromBool(true), FromInt(0), -1},
		{"number < string", FromInt(9), FromString(""), -1},
		{"string < array", FromString("z"), NewArray(), -1},
		{"array < object", NewArray(), NewObject(), -1},
		{"false < true", FromBool(false), FromBool(true), -1},
		{"numbers", FromFloat(2.5), FromInt(2), 1},
		{"short array", FromSlice([]*Value{FromInt(1)}), FromSlice([]*Value{FromInt(1), FromInt(2)}), -1},
		{"object key order ignored",
			FromKeyVals([]KeyVal{{Key: "a", Val: FromInt(1)}, {Key: "b", Val: FromInt(2)}}),
			FromKeyVals([]KeyVal{{Key: "b", Val: FromInt(2)}, {Key: "a", Val: FromInt(1)}}),
			0},
		{"object values",
			FromKeyVals([]KeyVal{{Key: "a", Val: FromInt(1)}}),
			FromKeyVals([]KeyVal{{Key: "a", Val: FromInt(2)}}),
			-1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestFromAny(t *testing.T) {
	v, err := FromAny(map[string]any{
		"b": []any{1, "two", nil, true},
		"a": 1.5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := v.String(), `{"a":1.5,"b":[1,"two",null,true]}`; got != want {
		t.Errorf("got %s want %s", got, want)
	}
	if v.Get("b").At(1).Parent() != v.Get("b") {
		t.Errorf("converted elements not linked")
	}
	if _, err := FromAny(struct{}{}); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestVisit(t *testing.T) {
	v, err := Parse([]byte(`{"a":{"b":1},"c":[2,3]}`))
	if err != nil {
		t.Fatal(err)
	}
	var frags []string
	err = v.Visit(func(v *Value, isPost bool) (bool, error) {
		if isPost {
			return true, nil
		}
		frags = append(frags, v.Fragment())
		return v.Type() != ArrayType, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"#", "#a", "#a/b", "#c"}, frags); diff != "" {
		t.Errorf("visit order (-want +got):\n%s", diff)
	}
}
