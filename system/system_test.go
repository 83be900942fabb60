package system

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/itemscript/connector"
	"github.com/signadot/itemscript/connector/file"
	"github.com/signadot/itemscript/connector/mem"
	"github.com/signadot/itemscript/idgen"
	"github.com/signadot/itemscript/value"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newSystem(t *testing.T, opts ...Option) *System {
	t.Helper()
	s, err := New(append([]Option{WithLogger(quiet)}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func mustParse(t *testing.T, s string) *value.Value {
	t.Helper()
	v, err := value.Parse([]byte(s))
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestReservedNode(t *testing.T) {
	s := newSystem(t)
	ctx := context.Background()
	v, err := s.Get(ctx, "mem:/itemscript#version")
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := v.Str(); got != Version {
		t.Errorf("version %q", got)
	}
	c, err := s.Get(ctx, "mem:/itemscript#connectors/mem")
	if err != nil {
		t.Fatal(err)
	}
	h, ok := c.Native()
	if !ok || h != any(s.Mem()) {
		t.Errorf("connectors/mem is %v", c)
	}
	if diff := cmp.Diff([]string{"mem"}, s.Schemes()); diff != "" {
		t.Errorf("schemes (-want +got):\n%s", diff)
	}
	keys, err := s.Get(ctx, "mem:/?keys")
	if err != nil {
		t.Fatal(err)
	}
	if keys.String() != `["itemscript"]` {
		t.Errorf("root keys %s", keys)
	}
}

func TestDefaultScheme(t *testing.T) {
	s := newSystem(t)
	ctx := context.Background()
	if _, err := s.Put(ctx, "/a/b", mustParse(t, `{"x":1}`)); err != nil {
		t.Fatal(err)
	}
	v, err := s.Get(ctx, "mem:/a/b#x")
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "1" {
		t.Errorf("got %s", v)
	}
	u, err := s.Locate("a/b")
	if err != nil {
		t.Fatal(err)
	}
	if u.String() != "mem:/a/b" {
		t.Errorf("located %s", u)
	}
	r, err := s.Resolve("mem:/a/b", "../c#d")
	if err != nil {
		t.Fatal(err)
	}
	if r != "mem:/c#d" {
		t.Errorf("resolved %s", r)
	}
}

func TestFileScheme(t *testing.T) {
	cfg := DefaultConfig()
	cfg.File.Root = t.TempDir()
	s := newSystem(t, WithConfig(cfg))
	ctx := context.Background()
	if _, err := s.Put(ctx, "file:/doc.json#k", value.FromInt(1)); err != nil {
		t.Fatal(err)
	}
	v, err := s.Get(ctx, "file:/doc.json")
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != `{"k":1}` {
		t.Errorf("got %s", v)
	}
	c, _ := s.Connector(file.Scheme)
	if fc, ok := c.(*file.Connector); !ok || fc.Root() != cfg.File.Root {
		t.Errorf("file connector %T", c)
	}
	if _, err := s.Dump(ctx, "file:/doc.json"); !errors.Is(err, connector.ErrNotSupported) {
		t.Errorf("file dump: %v", err)
	}
}

func TestNoConnector(t *testing.T) {
	s := newSystem(t)
	if _, err := s.Get(context.Background(), "http://example.com/x"); !errors.Is(err, ErrNoConnector) {
		t.Errorf("expected ErrNoConnector, got %v", err)
	}
	cfg := DefaultConfig()
	cfg.DefaultScheme = "other"
	if _, err := New(WithLogger(quiet), WithConfig(cfg)); !errors.Is(err, ErrNoConnector) {
		t.Errorf("expected ErrNoConnector for the default scheme, got %v", err)
	}
	extra := mem.New()
	s = newSystem(t, WithConfig(cfg), WithConnector("other", extra))
	if _, err := s.Put(context.Background(), "/z", value.FromInt(1)); err != nil {
		t.Fatal(err)
	}
	if extra.Len() != 2 {
		t.Errorf("default scheme did not reach the extra connector")
	}
}

func TestDereference(t *testing.T) {
	s := newSystem(t)
	ctx := context.Background()
	if _, err := s.Put(ctx, "mem:/data/target", mustParse(t, `{"n":1}`)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Put(ctx, "mem:/data/ref", mustParse(t, `{"to":"target","abs":"mem:/data/target#n"}`)); err != nil {
		t.Fatal(err)
	}
	ref, err := s.Get(ctx, "mem:/data/ref")
	if err != nil {
		t.Fatal(err)
	}
	got, err := ref.DereferenceKey(ctx, "to")
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != `{"n":1}` {
		t.Errorf("to: %s", got)
	}
	got, err = ref.DereferenceKey(ctx, "abs")
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "1" {
		t.Errorf("abs: %s", got)
	}
}

func TestPost(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mem.IDs = "lex"
	s := newSystem(t, WithConfig(cfg))
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := s.Post(ctx, "mem:/log", value.FromInt(int64(i))); err != nil {
			t.Fatal(err)
		}
	}
	keys, err := s.Get(ctx, "mem:/log?keys")
	if err != nil {
		t.Fatal(err)
	}
	want := `["` + idgen.FormatLex(0) + `","` + idgen.FormatLex(1) + `"]`
	if keys.String() != want {
		t.Errorf("keys %s, want %s", keys, want)
	}
	if _, err := s.Post(ctx, "mem:/log?sequence", value.Null()); !errors.Is(err, connector.ErrUnknownQueryType) {
		t.Errorf("expected ErrUnknownQueryType, got %v", err)
	}
}

func TestPatch(t *testing.T) {
	s := newSystem(t)
	ctx := context.Background()
	if _, err := s.Put(ctx, "mem:/p", mustParse(t, `{"a":1,"b":[1,2]}`)); err != nil {
		t.Fatal(err)
	}
	v, err := s.Patch(ctx, "mem:/p", []byte(`[{"op":"replace","path":"/a","value":2},{"op":"add","path":"/b/-","value":3}]`))
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != `{"a":2,"b":[1,2,3]}` {
		t.Errorf("patched %s", v)
	}
	if _, err := s.Patch(ctx, "mem:/p", []byte(`[{"op":"remove","path":"/zz"}]`)); !errors.Is(err, ErrPatch) {
		t.Errorf("expected ErrPatch, got %v", err)
	}
	if _, err := s.Patch(ctx, "mem:/missing", []byte(`[]`)); !errors.Is(err, connector.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	v, err = s.MergePatch(ctx, "mem:/p", []byte(`{"a":null,"c":{"d":true}}`))
	if err != nil {
		t.Fatal(err)
	}
	got, _ := s.Get(ctx, "mem:/p")
	if !value.Equal(got, mustParse(t, `{"b":[1,2,3],"c":{"d":true}}`)) {
		t.Errorf("merge patched %s (returned %s)", got, v)
	}
	if _, err := s.MergePatch(ctx, "mem:/fresh", []byte(`{"x":1}`)); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Get(ctx, "mem:/fresh#x")
	if got.String() != "1" {
		t.Errorf("fresh merge %s", got)
	}
}

func TestDumpLoadKeepsConnectors(t *testing.T) {
	s := newSystem(t)
	ctx := context.Background()
	if _, err := s.Put(ctx, "mem:/a/b", value.FromString("x")); err != nil {
		t.Fatal(err)
	}
	d, err := s.Dump(ctx, "mem:/")
	if err != nil {
		t.Fatal(err)
	}
	s2 := newSystem(t)
	if err := s2.Load(ctx, "mem:/", d); err != nil {
		t.Fatal(err)
	}
	v, _ := s2.Get(ctx, "mem:/a/b")
	if v.String() != `"x"` {
		t.Errorf("loaded %s", v)
	}
	c, _ := s2.Get(ctx, "mem:/itemscript#connectors/mem")
	if h, ok := c.Native(); !ok || h != any(s2.Mem()) {
		t.Errorf("load replaced the reserved connectors: %v", c)
	}
}

func TestObserve(t *testing.T) {
	s := newSystem(t)
	ctx := context.Background()
	if _, err := s.Put(ctx, "mem:/o", value.NewObject()); err != nil {
		t.Fatal(err)
	}
	var frags []string
	remove, err := s.Observe("mem:/o", func(ev value.Event) {
		frags = append(frags, ev.Kind.String()+" "+ev.Fragment)
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Put(ctx, "mem:/o#k", value.FromInt(1)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Put(ctx, "mem:/o/child", value.FromInt(2)); err != nil {
		t.Fatal(err)
	}
	remove()
	if _, err := s.Remove(ctx, "mem:/o#k"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"PUT #k", "PUT #child"}, frags); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
	if _, err := s.Observe("mem:/none", func(value.Event) {}); !errors.Is(err, connector.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAsync(t *testing.T) {
	s := newSystem(t)
	ctx := context.Background()
	var got []string
	record := func(v *value.Value, err error) {
		switch {
		case err != nil:
			got = append(got, "error")
		case v == nil:
			got = append(got, "nil")
		default:
			got = append(got, v.String())
		}
	}
	s.PutAsync(ctx, "mem:/q", value.FromInt(1), record)
	s.GetAsync(ctx, "mem:/q", record)
	s.RemoveAsync(ctx, "mem:/q", record)
	s.GetAsync(ctx, "mem:/q", record)
	s.GetAsync(ctx, "nope:/q", record)
	s.PostAsync(ctx, "mem:/q", value.FromBool(true), record)
	want := []string{"1", "1", "1", "nil", "error", "true"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("callbacks (-want +got):\n%s", diff)
	}
	n, err := s.Get(ctx, "mem:/q?countItems")
	if err != nil {
		t.Fatal(err)
	}
	if n.String() != `{"count":1}` {
		t.Errorf("count %s", n)
	}
}
