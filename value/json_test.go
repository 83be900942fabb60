package value

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseKeepsOrder(t *testing.T) {
	tests := []string{
		`{"b":1,"a":[true,null,"s"],"c":{"z":{},"y":[]}}`,
		`[1.5,-2,1e+21,"<tag> & \"q\""]`,
		`"plain"`,
		`null`,
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			v, err := Parse([]byte(in))
			if err != nil {
				t.Fatal(err)
			}
			d, err := v.MarshalJSON()
			if err != nil {
				t.Fatal(err)
			}
			if string(d) != in {
				t.Errorf("got %s want %s", d, in)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{`{`, `1 2`, `{"a":1,}`, ``, `[1,]`} {
		t.Run(in, func(t *testing.T) {
			if _, err := Parse([]byte(in)); !errors.Is(err, ErrParse) {
				t.Errorf("expected ErrParse, got %v", err)
			}
		})
	}
}

func TestParseDuplicateKeys(t *testing.T) {
	v, err := Parse([]byte(`{"a":1,"b":2,"a":3}`))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := v.String(), `{"a":3,"b":2}`; got != want {
		t.Errorf("got %s want %s", got, want)
	}
}

func TestNativeNotSerializable(t *testing.T) {
	v := FromKeyVals([]KeyVal{{Key: "n", Val: FromNative(struct{}{})}})
	if _, err := v.MarshalJSON(); !errors.Is(err, ErrNotSerializable) {
		t.Errorf("expected ErrNotSerializable, got %v", err)
	}
	if _, err := v.Any(); !errors.Is(err, ErrNotSerializable) {
		t.Errorf("expected ErrNotSerializable, got %v", err)
	}
	if got := v.String(); got != `{}` {
		t.Errorf("String() = %s", got)
	}
}

func TestUnmarshalJSON(t *testing.T) {
	var doc struct {
		V *Value `json:"v"`
	}
	if err := json.Unmarshal([]byte(`{"v":{"x":[1,2]}}`), &doc); err != nil {
		t.Fatal(err)
	}
	x := doc.V.Get("x")
	if x == nil || x.Parent() != doc.V {
		t.Fatalf("children not linked to receiver")
	}
	if x.At(1).Fragment() != "#x/1" {
		t.Errorf("fragment %s", x.At(1).Fragment())
	}
}

func TestIndent(t *testing.T) {
	v, _ := Parse([]byte(`{"a":[1]}`))
	d, err := v.Indent("", "  ")
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"a\": [\n    1\n  ]\n}"
	if string(d) != want {
		t.Errorf("got %q want %q", d, want)
	}
}
