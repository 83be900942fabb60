package idgen

import (
	"slices"
	"strings"
	"testing"
)

func TestUUID(t *testing.T) {
	for _, gen := range []Generator{UUID(), UUIDv7(), Default} {
		id := gen()
		if len(id) != 36 {
			t.Fatalf("expected length 36, got %d in %q", len(id), id)
		}
		if len(strings.Split(id, "-")) != 5 {
			t.Errorf("malformed %q", id)
		}
		if !IsUUID(id) {
			t.Errorf("IsUUID(%q) = false", id)
		}
	}
	if IsUUID("not-a-uuid") {
		t.Errorf("IsUUID accepted garbage")
	}
}

func TestNanoID(t *testing.T) {
	gen := NanoID(12)
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := gen()
		if len(id) != 12 {
			t.Fatalf("length %d", len(id))
		}
		if strings.Trim(id, "0123456789abcdefghijklmnopqrstuvwxyz") != "" {
			t.Fatalf("unexpected character in %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate at %d: %q", i, id)
		}
		seen[id] = true
	}
}

func TestFormatLex(t *testing.T) {
	tests := []struct {
		n    uint64
		want string
	}{
		{0, "a0"},
		{1, "a1"},
		{15, "af"},
		{16, "b10"},
		{255, "bff"},
		{256, "c100"},
		{1000000, "ef4240"},
	}
	for _, tt := range tests {
		if got := FormatLex(tt.n); got != tt.want {
			t.Errorf("FormatLex(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestLexSorts(t *testing.T) {
	gen := Lex(10)
	var ids []string
	for i := 0; i < 300; i++ {
		ids = append(ids, gen())
	}
	if ids[0] != "aa" {
		t.Errorf("first id %q", ids[0])
	}
	if !slices.IsSorted(ids) {
		t.Errorf("ids not in lexicographic order")
	}
}

func TestPrefixed(t *testing.T) {
	gen := Prefixed("item_", Lex(0))
	if got := gen(); got != "item_a0" {
		t.Errorf("got %q", got)
	}
}
