package system

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *Config
		err  error
	}{
		{
			name: "empty",
			in:   "",
			want: DefaultConfig(),
		},
		{
			name: "overrides",
			in: `
defaultScheme: file
mem:
  defaultNumRows: 3
  ids: lex
file:
  root: /tmp/x
  readOnly: true
log:
  level: debug
`,
			want: &Config{
				DefaultScheme: "file",
				Mem:           MemConfig{DefaultNumRows: 3, IDs: "lex"},
				File:          FileConfig{Root: "/tmp/x", ReadOnly: true},
				Log:           LogConfig{Level: "debug"},
			},
		},
		{
			name: "partial section keeps defaults",
			in:   "mem:\n  ids: nanoid\n",
			want: &Config{
				DefaultScheme: "mem",
				Mem:           MemConfig{DefaultNumRows: 10, IDs: "nanoid"},
				Log:           LogConfig{Level: "info"},
			},
		},
		{name: "unknown field", in: "nope: 1\n", err: ErrConfig},
		{name: "file without root", in: "defaultScheme: file\n", err: ErrConfig},
		{name: "bad scheme", in: "defaultScheme: '1x'\n", err: ErrConfig},
		{name: "bad ids", in: "mem:\n  ids: serial\n", err: ErrConfig},
		{name: "negative rows", in: "mem:\n  defaultNumRows: -1\n", err: ErrConfig},
		{name: "bad level", in: "log:\n  level: loud\n", err: ErrConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConfig([]byte(tt.in))
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("expected %v, got %v", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	p := filepath.Join(t.TempDir(), "itemscript.yaml")
	if err := os.WriteFile(p, []byte("log:\n  level: warn\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatal(err)
	}
	lvl, err := cfg.LogLevel()
	if err != nil {
		t.Fatal(err)
	}
	if lvl != slog.LevelWarn {
		t.Errorf("level %v", lvl)
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
