// Package mem implements the in-memory tree store behind the mem:
// scheme.
//
// The store is a tree of nodes keyed by path segment. Each node owns an
// Item, and a node's Item is mounted inside its parent's Item, so that
// getting mem:/a returns an object holding the values of mem:/a/b,
// mem:/a/c and so on. Fragments address values within one node's Item.
//
// The store is not safe for concurrent use.
package mem

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/signadot/itemscript/connector"
	"github.com/signadot/itemscript/debug"
	"github.com/signadot/itemscript/idgen"
	"github.com/signadot/itemscript/locator"
	"github.com/signadot/itemscript/value"
)

const (
	Scheme = "mem"

	// DefaultNumRows is the page size of paged queries without numRows.
	DefaultNumRows = 10
)

var (
	_ connector.Connector = (*Connector)(nil)
	_ connector.Poster    = (*Connector)(nil)
	_ connector.Dumper    = (*Connector)(nil)
)

type Connector struct {
	root     *node
	log      *slog.Logger
	ids      idgen.Generator
	numRows  int
	resolver value.Resolver
}

type Option func(*Connector)

func WithLogger(l *slog.Logger) Option {
	return func(c *Connector) { c.log = l }
}

// WithIDGenerator sets the generator behind ?uuid posts.
func WithIDGenerator(g idgen.Generator) Option {
	return func(c *Connector) { c.ids = g }
}

func WithDefaultNumRows(n int) Option {
	return func(c *Connector) { c.numRows = n }
}

// WithResolver sets the resolver used to dereference values stored in
// the tree.
func WithResolver(r value.Resolver) Option {
	return func(c *Connector) { c.resolver = r }
}

func New(opts ...Option) *Connector {
	c := &Connector{
		log:     slog.Default(),
		ids:     idgen.Default,
		numRows: DefaultNumRows,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.root = newNode(nil, "", c.itemOpts()...)
	return c
}

func (c *Connector) itemOpts() []value.ItemOption {
	if c.resolver == nil {
		return nil
	}
	return []value.ItemOption{value.WithResolver(c.resolver)}
}

// Len returns the number of nodes in the tree, the root included.
func (c *Connector) Len() int {
	return c.root.count()
}

func (c *Connector) find(path []string) *node {
	n := c.root
	for _, seg := range path {
		n = n.child(seg)
		if n == nil {
			return nil
		}
	}
	return n
}

// Item returns the Item of the node at u, or nil.
func (c *Connector) Item(u *locator.URL) *value.Item {
	n := c.find(u.Path)
	if n == nil {
		return nil
	}
	return n.item
}

// Get returns the value at u, running the query when u carries one of
// countItems, keys, pagedKeys or pagedItems.
func (c *Connector) Get(ctx context.Context, u *locator.URL) (*value.Value, error) {
	if q, ok := u.FirstQuery(queries...); ok {
		return c.query(u, q)
	}
	n := c.find(u.Path)
	if n == nil {
		return nil, nil
	}
	return n.item.GetPath(u.Fragment)
}

// Put stores v at u, creating missing nodes and intermediate objects. A
// ?uuid query makes Put a Post.
func (c *Connector) Put(ctx context.Context, u *locator.URL, v *value.Value) (*value.Value, error) {
	if u.HasQuery(queryUUID) {
		return c.Post(ctx, u, v)
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
	n, created := c.vivify(u.Path)
	if err := c.store(n, u.Fragment, v); err != nil {
		c.prune(created)
		return nil, err
	}
	if err := c.adopt(n); err != nil {
		return nil, err
	}
	c.log.Debug("put", "locator", u.String(), "type", v.Type())
	return v, nil
}

func (c *Connector) store(n *node, frag []string, v *value.Value) error {
	var initial *value.Value
	if len(frag) == 0 {
		initial = v
	}
	if err := c.bind(n, initial); err != nil {
		return err
	}
	if n.item.Value() == v {
		return nil
	}
	return n.item.PutPath(frag, v)
}

// vivify returns the node at path, creating the missing ones.
func (c *Connector) vivify(path []string) (*node, []*node) {
	var created []*node
	n := c.root
	for _, seg := range path {
		next := n.child(seg)
		if next == nil {
			next = newNode(n, seg, c.itemOpts()...)
			n.addChild(next)
			created = append(created, next)
		}
		n = next
	}
	return n, created
}

func (c *Connector) prune(created []*node) {
	for i := len(created) - 1; i >= 0; i-- {
		n := created[i]
		if v := n.item.Value(); v != nil {
			_, _ = n.item.RemovePath(nil)
		}
		n.parent.removeChild(n.seg)
	}
}

// bind roots n's item in its parent's value, binding ancestors first.
// initial is inserted when the parent has nothing at n's key. When the
// parent's value cannot hold n's key, n's item gets a standalone root.
func (c *Connector) bind(n *node, initial *value.Value) error {
	if n.parent == nil {
		return nil
	}
	cur := n.item.Value()
	if cur != nil && cur.Parent() != nil {
		return nil
	}
	if err := c.bind(n.parent, nil); err != nil {
		return err
	}
	if !canHold(n.parent.item.Value(), n.seg) {
		if cur != nil {
			return nil
		}
		if initial == nil {
			initial = value.NewObject()
		}
		return n.item.PutPath(nil, initial)
	}
	return n.parent.item.Mount(n.seg, n.item, initial)
}

// canHold reports whether pv can take a child item at seg. Arrays only
// take them at existing indexes.
func canHold(pv *value.Value, seg string) bool {
	switch {
	case pv == nil, pv.IsObject():
		return true
	case pv.IsArray():
		return pv.Child(seg) != nil
	}
	return false
}

// adopt mounts the standalone children of n that n's value can now hold.
// A value n already has at the child's key wins over the child's own.
func (c *Connector) adopt(n *node) error {
	for _, seg := range n.order {
		ch := n.children[seg]
		v := ch.item.Value()
		if v == nil || v.Parent() != nil || !canHold(n.item.Value(), seg) {
			continue
		}
		if err := c.bind(ch, nil); err != nil {
			return err
		}
		c.log.Debug("adopt", "parent", n.seg, "child", seg)
	}
	return nil
}

// Post stores v below u under a generated path segment. Only the uuid
// strategy is recognized.
func (c *Connector) Post(ctx context.Context, u *locator.URL, v *value.Value) (*value.Value, error) {
	if !u.HasQuery(queryUUID) {
		return nil, fmt.Errorf("%w: post %s", connector.ErrUnknownQueryType, u)
	}
	id := c.ids()
	target := u.WithoutQuery()
	target.Path = append(target.Path, id)
	target.Absolute = true
	c.log.Debug("post", "locator", u.String(), "id", id)
	return c.Put(ctx, target, v)
}

// Remove removes the fragment of u within its node or, without a
// fragment, the node and everything below it.
func (c *Connector) Remove(ctx context.Context, u *locator.URL) (*value.Value, error) {
	if len(u.Path) == 0 {
		return nil, fmt.Errorf("%w: cannot remove the root %s", connector.ErrInvalidPath, u)
	}
	parent := c.find(u.Path[:len(u.Path)-1])
	if parent == nil {
		return nil, nil
	}
	n := parent.child(u.Last())
	if n == nil {
		return nil, nil
	}
	if u.HasFragment {
		c.log.Debug("remove", "locator", u.String())
		return n.item.RemovePath(u.Fragment)
	}
	old, err := n.item.RemovePath(nil)
	if err != nil {
		return nil, err
	}
	parent.removeChild(n.seg)
	c.log.Debug("remove", "locator", u.String(), "nodes", n.count())
	return old, nil
}

// Dump returns the subtree at u as nested {"value", "subItems"} objects.
// Native values are left out.
func (c *Connector) Dump(ctx context.Context, u *locator.URL) (*value.Value, error) {
	n := c.find(u.Path)
	if n == nil {
		return nil, nil
	}
	return dump(n), nil
}

func dump(n *node) *value.Value {
	res := value.NewObject()
	if v := n.item.Value(); v != nil {
		_ = res.Set("value", v.CopyOwned())
	}
	if len(n.order) == 0 {
		return res
	}
	subs := value.NewObject()
	for _, seg := range n.order {
		_ = subs.Set(seg, dump(n.children[seg]))
	}
	_ = res.Set("subItems", subs)
	return res
}

// Load rebuilds a dump below u. Object values are merged deeply into
// the objects of existing nodes; anything else replaces the node's value.
func (c *Connector) Load(ctx context.Context, u *locator.URL, d *value.Value) error {
	if d == nil || (d.IsObject() && d.Len() == 0) {
		return nil
	}
	if !d.IsObject() {
		return fmt.Errorf("%w: dump is %s", value.ErrTypeMismatch, d.Type())
	}
	return c.load(ctx, u.WithoutQuery().WithoutFragment(), d)
}

func (c *Connector) load(ctx context.Context, u *locator.URL, d *value.Value) error {
	if debug.Load() {
		debug.Logf("load %s\n", u)
	}
	if v := d.Get("value"); v != nil {
		if err := c.loadValue(ctx, u, v.Copy()); err != nil {
			return err
		}
	} else if len(u.Path) > 0 {
		c.vivify(u.Path)
	}
	subs := d.Get("subItems")
	if subs == nil {
		return nil
	}
	if !subs.IsObject() {
		return fmt.Errorf("%w: subItems of %s is %s", value.ErrTypeMismatch, u, subs.Type())
	}
	base := u.String()
	if len(u.Path) == 0 {
		base = base[:len(base)-1]
	}
	for _, k := range subs.Keys() {
		cu, err := locator.Parse(base + "/" + locator.EncodeSegment(k))
		if err != nil {
			return err
		}
		if err := c.load(ctx, cu, subs.Get(k)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Connector) loadValue(ctx context.Context, u *locator.URL, v *value.Value) error {
	n := c.find(u.Path)
	var cur *value.Value
	if n != nil {
		cur = n.item.Value()
	}
	if cur == nil || !cur.IsObject() || !v.IsObject() {
		if len(u.Path) == 0 {
			return c.root.item.PutPath(nil, v)
		}
		_, err := c.Put(ctx, u, v)
		return err
	}
	return merge(n.item, nil, cur, v)
}

// merge puts the entries of v into cur, descending into objects that
// both sides have and that belong to it.
func merge(it *value.Item, path []string, cur, v *value.Value) error {
	for _, k := range v.Keys() {
		e := v.Delete(k)
		p := append(path[:len(path):len(path)], k)
		if ce := cur.Get(k); ce != nil && ce.IsObject() && e.IsObject() && ce.Item() == it {
			if err := merge(it, p, ce, e); err != nil {
				return err
			}
			continue
		}
		if err := it.PutPath(p, e); err != nil {
			return err
		}
	}
	return nil
}
