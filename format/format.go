// Package format names the text formats itemscript reads and writes.
package format

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// Format is a document syntax. Both formats carry the same data model;
// YAML is read and written with ordered maps.
type Format int

const (
	JSONFormat Format = iota
	YAMLFormat
)

var ErrBadFormat = errors.New("bad format")

// names, short flags and file extensions per format; the first
// extension is the one written.
var table = [...]struct {
	name, short string
	exts        []string
}{
	JSONFormat: {"json", "j", []string{".json", ".jsonc"}},
	YAMLFormat: {"yaml", "y", []string{".yaml", ".yml"}},
}

func (f Format) known() bool { return f >= 0 && int(f) < len(table) }

// ParseFormat accepts a format name or its one letter short form.
func ParseFormat(v string) (Format, error) {
	for i, e := range table {
		if v == e.name || v == e.short {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrBadFormat, v)
}

func (f Format) String() string {
	if !f.known() {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return table[f].name
}

func (f Format) MarshalText() ([]byte, error) {
	if !f.known() {
		return nil, fmt.Errorf("%w: %d", ErrBadFormat, int(f))
	}
	return []byte(table[f].name), nil
}

func (f *Format) UnmarshalText(d []byte) error {
	pf, err := ParseFormat(string(d))
	if err != nil {
		return err
	}
	*f = pf
	return nil
}

func (f Format) IsJSON() bool { return f == JSONFormat }
func (f Format) IsYAML() bool { return f == YAMLFormat }

// Suffix is the extension, dot included, used when writing f.
func (f Format) Suffix() string {
	if !f.known() {
		return ""
	}
	return table[f].exts[0]
}

// FromPath picks the format whose extensions include p's, ignoring case.
// Unknown extensions are read as JSON.
func FromPath(p string) Format {
	ext := strings.ToLower(filepath.Ext(p))
	for i, e := range table {
		if slices.Contains(e.exts, ext) {
			return Format(i)
		}
	}
	return JSONFormat
}

func AllFormats() []Format {
	res := make([]Format, len(table))
	for i := range table {
		res[i] = Format(i)
	}
	return res
}
