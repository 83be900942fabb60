// Package system dispatches locator strings to the connector serving
// their scheme.
//
// A System always serves mem: and serves file: when configured. It
// describes itself at mem:/itemscript, where connectors/<scheme> holds
// each registered connector as a native value. A System is the Resolver
// of the values it stores, so strings held in them dereference through
// it.
package system

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"slices"

	"github.com/signadot/itemscript/connector"
	"github.com/signadot/itemscript/connector/file"
	"github.com/signadot/itemscript/connector/mem"
	"github.com/signadot/itemscript/idgen"
	"github.com/signadot/itemscript/locator"
	"github.com/signadot/itemscript/value"
)

const (
	Version = "0.3.0"

	// Reserved is the memory node describing the system.
	Reserved = "itemscript"
)

var (
	ErrNoConnector = errors.New("no connector")
	ErrConfig      = errors.New("bad config")
	ErrPatch       = errors.New("patch failed")
)

var _ value.Resolver = (*System)(nil)

type System struct {
	cfg   *Config
	log   *slog.Logger
	mem   *mem.Connector
	conns map[string]connector.Connector
	extra []registration
}

type registration struct {
	scheme string
	conn   connector.Connector
}

type Option func(*System)

func WithConfig(cfg *Config) Option {
	return func(s *System) { s.cfg = cfg }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *System) { s.log = l }
}

// WithConnector registers c for scheme after the built in connectors.
func WithConnector(scheme string, c connector.Connector) Option {
	return func(s *System) { s.extra = append(s.extra, registration{scheme, c}) }
}

// New builds a System from its configuration.
func New(opts ...Option) (*System, error) {
	s := &System{
		cfg:   DefaultConfig(),
		conns: map[string]connector.Connector{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	if s.log == nil {
		lvl, _ := s.cfg.LogLevel()
		s.log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	}
	ids, _ := idGenerator(s.cfg.Mem.IDs)
	memOpts := []mem.Option{
		mem.WithLogger(s.log),
		mem.WithIDGenerator(ids),
		mem.WithResolver(s),
	}
	if n := s.cfg.Mem.DefaultNumRows; n > 0 {
		memOpts = append(memOpts, mem.WithDefaultNumRows(n))
	}
	s.mem = mem.New(memOpts...)

	about := value.FromKeyVals([]value.KeyVal{
		{Key: "version", Val: value.FromString(Version)},
		{Key: "connectors", Val: value.NewObject()},
	})
	if _, err := s.mem.Put(context.Background(), reservedURL(), about); err != nil {
		return nil, err
	}
	if err := s.Register(mem.Scheme, s.mem); err != nil {
		return nil, err
	}
	if root := s.cfg.File.Root; root != "" {
		fc := file.New(root,
			file.WithReadOnly(s.cfg.File.ReadOnly),
			file.WithLogger(s.log),
			file.WithResolver(s))
		if err := s.Register(file.Scheme, fc); err != nil {
			return nil, err
		}
	}
	for _, r := range s.extra {
		if err := s.Register(r.scheme, r.conn); err != nil {
			return nil, err
		}
	}
	if _, ok := s.conns[s.cfg.DefaultScheme]; !ok {
		return nil, fmt.Errorf("%w for default scheme %q", ErrNoConnector, s.cfg.DefaultScheme)
	}
	return s, nil
}

func reservedURL() *locator.URL {
	return &locator.URL{Scheme: mem.Scheme, Path: []string{Reserved}, Absolute: true}
}

func idGenerator(name string) (idgen.Generator, error) {
	switch name {
	case "", "uuid":
		return idgen.UUID(), nil
	case "uuidv7":
		return idgen.UUIDv7(), nil
	case "nanoid":
		return idgen.NanoID(21), nil
	case "lex":
		return idgen.Lex(0), nil
	}
	return nil, fmt.Errorf("%w: unknown mem.ids %q", ErrConfig, name)
}

// Register makes c serve scheme, replacing any previous connector.
func (s *System) Register(scheme string, c connector.Connector) error {
	if !schemeRE.MatchString(scheme) {
		return fmt.Errorf("%w: bad scheme %q", ErrConfig, scheme)
	}
	s.conns[scheme] = c
	u := reservedURL().WithFragment("connectors", scheme)
	if _, err := s.mem.Put(context.Background(), u, value.FromNative(c)); err != nil {
		return err
	}
	s.log.Info("registered connector", "scheme", scheme, "type", fmt.Sprintf("%T", c))
	return nil
}

func (s *System) Config() *Config { return s.cfg }

func (s *System) Mem() *mem.Connector { return s.mem }

// Connector returns the connector serving scheme.
func (s *System) Connector(scheme string) (connector.Connector, bool) {
	c, ok := s.conns[scheme]
	return c, ok
}

// Schemes returns the registered schemes, sorted.
func (s *System) Schemes() []string {
	res := make([]string, 0, len(s.conns))
	for k := range s.conns {
		res = append(res, k)
	}
	slices.Sort(res)
	return res
}

// Locate parses loc, supplying the default scheme when it has none.
func (s *System) Locate(loc string) (*locator.URL, error) {
	u, _, err := s.locate(loc)
	return u, err
}

// Resolve resolves ref against base and returns the canonical locator.
func (s *System) Resolve(base, ref string) (string, error) {
	b, err := s.Locate(base)
	if err != nil {
		return "", err
	}
	u, err := b.Resolve(ref)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (s *System) locate(loc string) (*locator.URL, connector.Connector, error) {
	u, err := locator.Parse(loc)
	if err != nil {
		return nil, nil, err
	}
	if u.Scheme == "" {
		u = u.WithScheme(s.cfg.DefaultScheme)
	}
	c, ok := s.conns[u.Scheme]
	if !ok {
		return nil, nil, fmt.Errorf("%w for scheme %q in %s", ErrNoConnector, u.Scheme, loc)
	}
	return u, c, nil
}

// Get returns the value at loc, or nil when there is none.
func (s *System) Get(ctx context.Context, loc string) (*value.Value, error) {
	u, c, err := s.locate(loc)
	if err != nil {
		return nil, err
	}
	return c.Get(ctx, u)
}

func (s *System) Put(ctx context.Context, loc string, v *value.Value) (*value.Value, error) {
	u, c, err := s.locate(loc)
	if err != nil {
		return nil, err
	}
	return c.Put(ctx, u, v)
}

func (s *System) Remove(ctx context.Context, loc string) (*value.Value, error) {
	u, c, err := s.locate(loc)
	if err != nil {
		return nil, err
	}
	return c.Remove(ctx, u)
}

// Post stores v below loc under a generated segment. A locator without
// a query posts with ?uuid.
func (s *System) Post(ctx context.Context, loc string, v *value.Value) (*value.Value, error) {
	u, c, err := s.locate(loc)
	if err != nil {
		return nil, err
	}
	p, ok := c.(connector.Poster)
	if !ok {
		return nil, connector.NotSupported(c, "post")
	}
	return p.Post(ctx, postURL(u), v)
}

func postURL(u *locator.URL) *locator.URL {
	if len(u.Query) != 0 {
		return u
	}
	return u.WithQuery(url.Values{"uuid": {""}})
}

func (s *System) dumper(loc string) (*locator.URL, connector.Dumper, error) {
	u, c, err := s.locate(loc)
	if err != nil {
		return nil, nil, err
	}
	d, ok := c.(connector.Dumper)
	if !ok {
		return nil, nil, connector.NotSupported(c, "dump")
	}
	return u, d, nil
}

func (s *System) Dump(ctx context.Context, loc string) (*value.Value, error) {
	u, d, err := s.dumper(loc)
	if err != nil {
		return nil, err
	}
	return d.Dump(ctx, u)
}

func (s *System) Load(ctx context.Context, loc string, dump *value.Value) error {
	u, d, err := s.dumper(loc)
	if err != nil {
		return err
	}
	return d.Load(ctx, u, dump)
}

// Watch delivers the changes at loc to h until ctx is done.
func (s *System) Watch(ctx context.Context, loc string, h value.Handler) error {
	u, c, err := s.locate(loc)
	if err != nil {
		return err
	}
	w, ok := c.(connector.Watcher)
	if !ok {
		return connector.NotSupported(c, "watch")
	}
	return w.Watch(ctx, u, h)
}

// Observe adds h to the Item of the memory node at loc.
func (s *System) Observe(loc string, h value.Handler) (remove func(), err error) {
	u, c, err := s.locate(loc)
	if err != nil {
		return nil, err
	}
	if c != connector.Connector(s.mem) {
		return nil, connector.NotSupported(c, "observe")
	}
	it := s.mem.Item(u)
	if it == nil {
		return nil, fmt.Errorf("%w: %s", connector.ErrNotFound, u)
	}
	return it.AddHandler(h), nil
}
