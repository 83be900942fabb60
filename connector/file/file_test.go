package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/itemscript/connector"
	"github.com/signadot/itemscript/locator"
	"github.com/signadot/itemscript/value"
)

func TestPutGetRemove(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	ctx := context.Background()
	u := locator.MustParse("file:/docs/a.json")

	if v, err := c.Get(ctx, u); v != nil || err != nil {
		t.Fatalf("missing file: %v %v", v, err)
	}
	if _, err := c.Put(ctx, u.WithFragment("x", "y"), value.FromInt(1)); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Put(ctx, u.WithFragment("z"), value.FromString("s")); err != nil {
		t.Fatal(err)
	}
	d, err := os.ReadFile(filepath.Join(dir, "docs", "a.json"))
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"x\": {\n    \"y\": 1\n  },\n  \"z\": \"s\"\n}\n"
	if diff := cmp.Diff(want, string(d)); diff != "" {
		t.Errorf("file content (-want +got):\n%s", diff)
	}
	got, err := c.Get(ctx, u.WithFragment("x", "y"))
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := got.Int(); n != 1 {
		t.Errorf("#x/y = %v", got)
	}
	if src := got.Item().Source(); src != "file:/docs/a.json" {
		t.Errorf("source %s", src)
	}

	old, err := c.Remove(ctx, u.WithFragment("x"))
	if err != nil {
		t.Fatal(err)
	}
	if old.String() != `{"y":1}` {
		t.Errorf("removed %v", old)
	}
	whole, _ := c.Get(ctx, u)
	if whole.String() != `{"z":"s"}` {
		t.Errorf("after fragment remove %s", whole)
	}

	listing, err := c.Get(ctx, locator.MustParse("file:/docs"))
	if err != nil {
		t.Fatal(err)
	}
	if listing.String() != `["a.json"]` {
		t.Errorf("listing %s", listing)
	}

	if _, err := c.Remove(ctx, u); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "docs", "a.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("file still there: %v", err)
	}
	entries, _ := os.ReadDir(filepath.Join(dir, "docs"))
	if len(entries) != 0 {
		t.Errorf("temp files left: %v", entries)
	}
}

func TestJSONCAndYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "c.json"), []byte("{\n // note\n \"a\": [1, 2,],\n}"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "y.yaml"), []byte("b: 2\na: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	c := New(dir)
	ctx := context.Background()
	v, err := c.Get(ctx, locator.MustParse("file:/c.json#a/1"))
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := v.Int(); n != 2 {
		t.Errorf("jsonc #a/1 = %v", v)
	}
	y, err := c.Get(ctx, locator.MustParse("file:/y.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if y.String() != `{"b":2,"a":1}` {
		t.Errorf("yaml %s", y)
	}
	if _, err := c.Put(ctx, locator.MustParse("file:/y.yaml#c"), value.FromBool(true)); err != nil {
		t.Fatal(err)
	}
	y, _ = c.Get(ctx, locator.MustParse("file:/y.yaml"))
	if y.String() != `{"b":2,"a":1,"c":true}` {
		t.Errorf("yaml after put %s", y)
	}
}

func TestErrors(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	c := New(dir)
	ro := New(dir, WithReadOnly(true))
	tests := []struct {
		name string
		op   func() error
		want error
	}{
		{"dot dot", func() error {
			_, err := c.Get(ctx, &locator.URL{Scheme: Scheme, Path: []string{"..", "etc"}, Absolute: true})
			return err
		}, connector.ErrInvalidPath},
		{"put root", func() error {
			_, err := c.Put(ctx, locator.MustParse("file:/"), value.Null())
			return err
		}, connector.ErrInvalidPath},
		{"read only put", func() error {
			_, err := ro.Put(ctx, locator.MustParse("file:/a.json"), value.Null())
			return err
		}, connector.ErrNotSupported},
		{"read only remove", func() error {
			_, err := ro.Remove(ctx, locator.MustParse("file:/a.json"))
			return err
		}, connector.ErrNotSupported},
		{"query", func() error {
			_, err := c.Put(ctx, locator.MustParse("file:/a.json?uuid"), value.Null())
			return err
		}, connector.ErrUnknownQueryType},
		{"native", func() error {
			_, err := c.Put(ctx, locator.MustParse("file:/n.json"), value.FromNative(c))
			return err
		}, value.ErrNotSerializable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.op(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
	if _, err := os.Stat(filepath.Join(dir, "n.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("failed write left a file")
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	u := locator.MustParse("file:/w.json")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evs := make(chan value.Event, 64)
	done := make(chan error)
	go func() {
		done <- c.Watch(ctx, u, func(ev value.Event) {
			select {
			case evs <- ev:
			case <-ctx.Done():
			}
		})
	}()

	deadline := time.After(10 * time.Second)
	var put value.Event
	for i := 0; put.Value == nil; i++ {
		if _, err := c.Put(context.Background(), u, value.FromInt(int64(i))); err != nil {
			t.Fatal(err)
		}
		select {
		case ev := <-evs:
			put = ev
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatal("no PUT event")
		}
	}
	if put.Kind != value.PutEvent || put.Fragment != "#" || !put.Value.IsNumber() {
		t.Errorf("unexpected event %v %s %v", put.Kind, put.Fragment, put.Value)
	}

	if _, err := c.Remove(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	for {
		select {
		case ev := <-evs:
			if ev.Kind != value.RemoveEvent {
				continue
			}
			if ev.Fragment != "#" {
				t.Errorf("remove fragment %s", ev.Fragment)
			}
			cancel()
			if err := <-done; err != nil {
				t.Errorf("watch returned %v", err)
			}
			return
		case <-deadline:
			t.Fatal("no REMOVE event")
		}
	}
}
