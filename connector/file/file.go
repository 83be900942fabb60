// Package file implements the file: scheme over a directory tree.
//
// The locator file:/a/b.json#x/y addresses the value at x/y in the
// document <root>/a/b.json. Documents are JSON (read as JSONC) or YAML,
// chosen by file extension. Directories read as the sorted array of
// their entry names.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/signadot/itemscript/connector"
	"github.com/signadot/itemscript/debug"
	"github.com/signadot/itemscript/encode"
	"github.com/signadot/itemscript/format"
	"github.com/signadot/itemscript/locator"
	"github.com/signadot/itemscript/parse"
	"github.com/signadot/itemscript/value"
)

const Scheme = "file"

var (
	_ connector.Connector = (*Connector)(nil)
	_ connector.Watcher   = (*Connector)(nil)
)

type Connector struct {
	root     string
	readOnly bool
	log      *slog.Logger
	resolver value.Resolver
}

type Option func(*Connector)

// WithReadOnly makes Put and Remove fail with connector.ErrNotSupported.
func WithReadOnly(v bool) Option {
	return func(c *Connector) { c.readOnly = v }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Connector) { c.log = l }
}

func WithResolver(r value.Resolver) Option {
	return func(c *Connector) { c.resolver = r }
}

// New returns a connector serving the files below root.
func New(root string, opts ...Option) *Connector {
	c := &Connector{root: filepath.Clean(root), log: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Connector) Root() string { return c.root }

// PathToFilesystem maps the path of u below the root directory.
func (c *Connector) PathToFilesystem(u *locator.URL) (string, error) {
	parts := make([]string, 0, len(u.Path)+1)
	parts = append(parts, c.root)
	for _, seg := range u.Path {
		if seg == "." || seg == ".." || strings.ContainsAny(seg, `/\`) || strings.ContainsRune(seg, 0) {
			return "", fmt.Errorf("%w: segment %q in %s", connector.ErrInvalidPath, seg, u)
		}
		parts = append(parts, seg)
	}
	return filepath.Join(parts...), nil
}

func (c *Connector) source(u *locator.URL) string {
	return u.WithoutQuery().WithoutFragment().String()
}

func (c *Connector) itemOpts() []value.ItemOption {
	if c.resolver == nil {
		return nil
	}
	return []value.ItemOption{value.WithResolver(c.resolver)}
}

// read returns the Item of the document at u, or nil when it does not
// exist.
func (c *Connector) read(u *locator.URL) (*value.Item, error) {
	p, err := c.PathToFilesystem(u)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var v *value.Value
	if fi.IsDir() {
		v, err = readDir(p)
	} else {
		v, err = readFile(p)
	}
	if err != nil {
		return nil, err
	}
	if debug.File() {
		debug.Logf("file read %s (%s)\n", p, v.Type())
	}
	return value.NewItem(c.source(u), v, c.itemOpts()...)
}

func readDir(p string) (*value.Value, error) {
	ents, err := os.ReadDir(p)
	if err != nil {
		return nil, err
	}
	res := value.NewArray()
	for _, ent := range ents {
		if err := res.Append(value.FromString(ent.Name())); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func readFile(p string) (*value.Value, error) {
	d, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	v, err := parse.Parse(d, parse.ParseFormat(format.FromPath(p)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return v, nil
}

// write replaces the document at p atomically.
func (c *Connector) write(p string, v *value.Value) error {
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(p)+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())
	if err := encode.Encode(v, f, encode.EncodeFormat(format.FromPath(p))); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if debug.File() {
		debug.Logf("file write %s\n", p)
	}
	return os.Rename(f.Name(), p)
}

func (c *Connector) Get(ctx context.Context, u *locator.URL) (*value.Value, error) {
	it, err := c.read(u)
	if err != nil || it == nil {
		return nil, err
	}
	return it.GetPath(u.Fragment)
}

// Put writes v as the document at u or, with a fragment, into the
// document, creating it when missing.
func (c *Connector) Put(ctx context.Context, u *locator.URL, v *value.Value) (*value.Value, error) {
	if c.readOnly {
		return nil, connector.NotSupported(c, "put")
	}
	if len(u.Query) != 0 {
		return nil, fmt.Errorf("%w: %s", connector.ErrUnknownQueryType, u.QueryString())
	}
	if len(u.Path) == 0 {
		return nil, fmt.Errorf("%w: cannot put to the root %s", connector.ErrInvalidPath, u)
	}
	if v == nil {
		v = value.Null()
	}
	p, err := c.PathToFilesystem(u)
	if err != nil {
		return nil, err
	}
	if fi, err := os.Stat(p); err == nil && fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", connector.ErrInvalidPath, u)
	}
	it, err := c.read(u)
	if err != nil {
		return nil, err
	}
	if it == nil {
		if it, err = value.NewItem(c.source(u), nil, c.itemOpts()...); err != nil {
			return nil, err
		}
	}
	if err := it.PutPath(u.Fragment, v); err != nil {
		return nil, err
	}
	if err := c.write(p, it.Value()); err != nil {
		return nil, err
	}
	c.log.Debug("put", "locator", u.String(), "file", p)
	return v, nil
}

// Remove deletes the document at u or, with a fragment, the value within
// it. Directories are removed only when empty.
func (c *Connector) Remove(ctx context.Context, u *locator.URL) (*value.Value, error) {
	if c.readOnly {
		return nil, connector.NotSupported(c, "remove")
	}
	if len(u.Path) == 0 {
		return nil, fmt.Errorf("%w: cannot remove the root %s", connector.ErrInvalidPath, u)
	}
	it, err := c.read(u)
	if err != nil || it == nil {
		return nil, err
	}
	p, _ := c.PathToFilesystem(u)
	if u.HasFragment && len(u.Fragment) > 0 {
		old, err := it.RemovePath(u.Fragment)
		if err != nil || old == nil {
			return old, err
		}
		if err := c.write(p, it.Value()); err != nil {
			return nil, err
		}
		c.log.Debug("remove", "locator", u.String(), "file", p)
		return old, nil
	}
	if err := os.Remove(p); err != nil {
		return nil, err
	}
	c.log.Debug("remove", "locator", u.String(), "file", p)
	return it.DetachValue(), nil
}
