package value

import "fmt"

// Item is an addressable root owning one value tree. An Item may be
// mounted inside another Item's tree; values below the mount point then
// belong to the inner Item.
type Item struct {
	source   string
	value    *Value
	meta     *Value
	resolver Resolver
	handlers []*handlerEntry
}

type ItemOption func(*Item)

// WithResolver sets the Resolver used to dereference string values in
// the Item. Items without one use the resolver of the enclosing Item.
func WithResolver(r Resolver) ItemOption {
	return func(it *Item) { it.resolver = r }
}

// WithMeta sets the Item's metadata object.
func WithMeta(m *Value) ItemOption {
	return func(it *Item) { it.meta = m }
}

// NewItem returns an Item at source owning v. A nil v gives an empty
// Item.
func NewItem(source string, v *Value, opts ...ItemOption) (*Item, error) {
	it := &Item{source: source}
	for _, opt := range opts {
		opt(it)
	}
	if it.meta == nil {
		it.meta = NewObject()
	}
	if v == nil {
		return it, nil
	}
	if v.contained() {
		return nil, fmt.Errorf("%w: root of %s", ErrAlreadyContained, source)
	}
	it.bind(v)
	return it, nil
}

func (it *Item) bind(v *Value) {
	it.value = v
	v.setItem(it)
}

func (it *Item) Source() string { return it.source }

func (it *Item) SetSource(s string) { it.source = s }

// Value returns the root value, or nil for an empty Item.
func (it *Item) Value() *Value { return it.value }

func (it *Item) Meta() *Value { return it.meta }

func (it *Item) SetResolver(r Resolver) { it.resolver = r }

// Resolver returns the Item's resolver or the nearest enclosing Item's.
func (it *Item) Resolver() Resolver {
	for cur := it; cur != nil; cur = cur.Parent() {
		if cur.resolver != nil {
			return cur.resolver
		}
	}
	return nil
}

// Parent returns the Item this Item is mounted in, or nil.
func (it *Item) Parent() *Item {
	if it.value == nil || it.value.parent == nil {
		return nil
	}
	return it.value.parent.item
}

// DetachValue severs the link between it and its root value and returns
// the value. A mounted value stays in place and passes to the enclosing
// Item.
func (it *Item) DetachValue() *Value {
	v := it.value
	if v == nil {
		return nil
	}
	it.value = nil
	if v.parent != nil {
		v.setItem(v.parent.item)
	} else {
		v.setItem(nil)
	}
	return v
}

// Get returns the value at fragment, or nil when absent.
func (it *Item) Get(fragment string) (*Value, error) {
	segs, err := ParseFragment(fragment)
	if err != nil {
		return nil, err
	}
	return it.GetPath(segs)
}

func (it *Item) GetPath(segs []string) (*Value, error) {
	cur := it.value
	for _, seg := range segs {
		if cur == nil {
			return nil, nil
		}
		if !cur.IsContainer() {
			return nil, notAContainer(cur)
		}
		cur = cur.Child(seg)
	}
	return cur, nil
}

// Put stores v at fragment, creating missing intermediate objects. A nil
// v stores null.
func (it *Item) Put(fragment string, v *Value) error {
	segs, err := ParseFragment(fragment)
	if err != nil {
		return err
	}
	return it.PutPath(segs, v)
}

func (it *Item) PutPath(segs []string, v *Value) error {
	v = orNull(v)
	if v.contained() {
		return fmt.Errorf("%w: %s held at %s", ErrAlreadyContained, v.typ, v.Fragment())
	}
	if len(segs) == 0 {
		return it.setRoot(v)
	}
	if it.value == nil {
		it.bind(NewObject())
	}
	cur := it.value
	last := len(segs) - 1
	i := 0
	for ; i < last; i++ {
		if !cur.IsContainer() {
			return notAContainer(cur)
		}
		next := cur.Child(segs[i])
		if next == nil {
			break
		}
		cur = next
	}
	if !cur.IsContainer() {
		return notAContainer(cur)
	}
	// the missing tail is built detached so a single event reports the
	// full fragment
	top := v
	for j := last; j > i; j-- {
		o := NewObject()
		if _, err := o.set(segs[j], top); err != nil {
			return err
		}
		top = o
	}
	ns, err := cur.setChild(segs[i], top)
	if err != nil {
		return err
	}
	dispatch(v.parent.bubble(ns, PutEvent, segs[last], v))
	return nil
}

func (it *Item) setRoot(v *Value) error {
	old := it.value
	if old != nil && old.parent != nil {
		return old.parent.SetChild(old.key, v)
	}
	if old == nil {
		it.bind(v)
		it.dispatch(Event{Kind: PutEvent, Fragment: "#", Value: v})
		return nil
	}
	dispatch(displace(old, v))
	return nil
}

// Remove removes and returns the value at fragment. Removing "#" empties
// the Item.
func (it *Item) Remove(fragment string) (*Value, error) {
	segs, err := ParseFragment(fragment)
	if err != nil {
		return nil, err
	}
	return it.RemovePath(segs)
}

func (it *Item) RemovePath(segs []string) (*Value, error) {
	if len(segs) == 0 {
		return it.removeRoot()
	}
	parent, err := it.GetPath(segs[:len(segs)-1])
	if err != nil || parent == nil {
		return nil, err
	}
	if !parent.IsContainer() {
		return nil, notAContainer(parent)
	}
	return parent.RemoveChild(segs[len(segs)-1])
}

func (it *Item) removeRoot() (*Value, error) {
	old := it.value
	if old == nil {
		return nil, nil
	}
	if old.parent != nil {
		return old.parent.RemoveChild(old.key)
	}
	dispatch(displace(old, nil))
	return old, nil
}

// Mount makes child's root the value at key in it's root container. An
// existing value at key is adopted: without events when child is empty,
// and displacing child's standalone root otherwise. With no value at key
// a standalone root moves in as is; an empty child gets initial, or an
// empty object when initial is nil. An empty it gets an empty object root
// first.
func (it *Item) Mount(key string, child *Item, initial *Value) error {
	own := child.value
	if own != nil && own.parent != nil {
		return fmt.Errorf("%w: item %s is mounted", ErrAlreadyContained, child.source)
	}
	if it.value == nil {
		it.bind(NewObject())
	}
	root := it.value
	if !root.IsContainer() {
		return notAContainer(root)
	}
	if existing := root.Child(key); existing != nil {
		if existing.IsRoot() {
			return fmt.Errorf("%w: %s%s is mounted", ErrAlreadyContained, it.source, existing.Fragment())
		}
		if own != nil {
			dispatch(displace(own, existing))
			return nil
		}
		child.bind(existing)
		return nil
	}
	if own != nil {
		child.value = nil
		initial = own
	}
	if initial == nil {
		initial = NewObject()
	}
	if initial.contained() {
		return fmt.Errorf("%w: %s held at %s", ErrAlreadyContained, initial.typ, initial.Fragment())
	}
	ns, err := root.setChild(key, initial)
	if err != nil {
		child.value = own
		return err
	}
	child.bind(initial)
	dispatch(root.bubble(ns, PutEvent, key, initial))
	return nil
}
