package value

import (
	"fmt"
	"slices"
	"strconv"
)

// Len returns the number of elements of an array or entries of an
// object, and 0 otherwise.
func (v *Value) Len() int {
	switch v.typ {
	case ArrayType:
		return len(v.elems)
	case ObjectType:
		return len(v.keys)
	}
	return 0
}

// At returns the i'th array element, or nil.
func (v *Value) At(i int) *Value {
	if v.typ != ArrayType || i < 0 || i >= len(v.elems) {
		return nil
	}
	return v.elems[i]
}

func (v *Value) Elements() []*Value {
	return slices.Clone(v.elems)
}

// Keys returns the object keys in insertion order.
func (v *Value) Keys() []string {
	return slices.Clone(v.keys)
}

// Get returns the object entry for key, or nil.
func (v *Value) Get(key string) *Value {
	if v.typ != ObjectType {
		return nil
	}
	return v.fields[key]
}

func (v *Value) Has(key string) bool {
	return v.Child(key) != nil
}

// Child returns the entry for key in an object, or the element at the
// decimal index key in an array. It returns nil when absent.
func (v *Value) Child(key string) *Value {
	switch v.typ {
	case ObjectType:
		return v.fields[key]
	case ArrayType:
		i, err := strconv.Atoi(key)
		if err != nil {
			return nil
		}
		return v.At(i)
	}
	return nil
}

func (v *Value) at(path []string) *Value {
	cur := v
	for _, seg := range path {
		if cur == nil {
			return nil
		}
		cur = cur.Child(seg)
	}
	return cur
}

func orNull(c *Value) *Value {
	if c == nil {
		return Null()
	}
	return c
}

func parseIndex(key string) (int, error) {
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadIndex, key)
	}
	return i, nil
}

// checkInsert verifies c may be linked below v: it must not be owned and
// must not be v or one of its ancestors.
func (v *Value) checkInsert(c *Value) error {
	if c.contained() {
		return fmt.Errorf("%w: %s held at %s", ErrAlreadyContained, c.typ, c.Fragment())
	}
	for p := v; p != nil; p = p.parent {
		if p == c {
			return fmt.Errorf("%w: value would contain itself", ErrAlreadyContained)
		}
	}
	return nil
}

func (v *Value) link(key string, c *Value) {
	c.parent = v
	c.key = key
	c.setItem(v.item)
}

// setItem assigns it to v and its descendants, stopping at the roots of
// mounted items.
func (v *Value) setItem(it *Item) {
	v.item = it
	for _, c := range v.children() {
		if c.IsRoot() {
			continue
		}
		c.setItem(it)
	}
}

func (v *Value) clearItems() {
	v.item = nil
	for _, c := range v.children() {
		c.clearItems()
	}
}

type mount struct {
	path []string
	item *Item
	root *Value
}

// mounts lists the item roots within v, v included, shallowest first.
func (v *Value) mounts(path []string, dst []mount) []mount {
	if v.IsRoot() {
		dst = append(dst, mount{path: slices.Clone(path), item: v.item, root: v})
	}
	switch v.typ {
	case ArrayType:
		for i, c := range v.elems {
			dst = c.mounts(append(path, strconv.Itoa(i)), dst)
		}
	case ObjectType:
		for _, k := range v.keys {
			dst = v.fields[k].mounts(append(path, k), dst)
		}
	}
	return dst
}

// displace retires old once nv (possibly nil) has taken its place. Items
// whose root lay within old rebind to the value at the same relative
// path under nv, or are left empty when there is none.
func displace(old, nv *Value) []notice {
	ms := old.mounts(nil, nil)
	old.parent, old.key = nil, ""
	var ns []notice
	for _, m := range ms {
		var target *Value
		if nv != nil {
			target = nv.at(m.path)
		}
		if target != nil {
			m.item.bind(target)
			ns = append(ns, notice{item: m.item, ev: Event{Kind: PutEvent, Fragment: "#", Value: target}})
			continue
		}
		m.item.value = nil
		ns = append(ns, notice{item: m.item, ev: Event{Kind: RemoveEvent, Fragment: "#", Value: m.root}})
	}
	old.clearItems()
	return ns
}

func (v *Value) Append(c *Value) error {
	return v.Insert(len(v.elems), c)
}

// Insert places c at index i, shifting later elements up.
func (v *Value) Insert(i int, c *Value) error {
	if v.typ != ArrayType {
		return typeMismatch(v, ArrayType)
	}
	if i < 0 || i > len(v.elems) {
		return fmt.Errorf("%w: %d (len %d)", ErrBadIndex, i, len(v.elems))
	}
	c = orNull(c)
	if err := v.checkInsert(c); err != nil {
		return err
	}
	v.elems = slices.Insert(v.elems, i, c)
	v.link(strconv.Itoa(i), c)
	v.renumber(i + 1)
	dispatch(v.bubble(nil, PutEvent, strconv.Itoa(i), c))
	return nil
}

func (v *Value) renumber(from int) {
	for j := from; j < len(v.elems); j++ {
		v.elems[j].key = strconv.Itoa(j)
	}
}

// SetAt replaces the element at i. Setting past the end pads the array
// with nulls.
func (v *Value) SetAt(i int, c *Value) error {
	c = orNull(c)
	ns, err := v.setAt(i, c)
	if err != nil {
		return err
	}
	dispatch(v.bubble(ns, PutEvent, strconv.Itoa(i), c))
	return nil
}

func (v *Value) setAt(i int, c *Value) ([]notice, error) {
	if v.typ != ArrayType {
		return nil, typeMismatch(v, ArrayType)
	}
	if i < 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadIndex, i)
	}
	if err := v.checkInsert(c); err != nil {
		return nil, err
	}
	for len(v.elems) < i {
		pad := Null()
		v.elems = append(v.elems, pad)
		v.link(strconv.Itoa(len(v.elems)-1), pad)
	}
	if i == len(v.elems) {
		v.elems = append(v.elems, c)
		v.link(strconv.Itoa(i), c)
		return nil, nil
	}
	old := v.elems[i]
	v.elems[i] = c
	v.link(strconv.Itoa(i), c)
	return displace(old, c), nil
}

// RemoveAt removes and returns the element at i, shifting later elements
// down. It returns nil when i is out of range.
func (v *Value) RemoveAt(i int) (*Value, error) {
	if v.typ != ArrayType {
		return nil, typeMismatch(v, ArrayType)
	}
	if i < 0 || i >= len(v.elems) {
		return nil, nil
	}
	old := v.elems[i]
	v.elems = slices.Delete(v.elems, i, i+1)
	v.renumber(i)
	ns := displace(old, nil)
	dispatch(v.bubble(ns, RemoveEvent, strconv.Itoa(i), old))
	return old, nil
}

// Set stores c under key. An existing entry keeps its position.
func (v *Value) Set(key string, c *Value) error {
	c = orNull(c)
	ns, err := v.set(key, c)
	if err != nil {
		return err
	}
	dispatch(v.bubble(ns, PutEvent, key, c))
	return nil
}

func (v *Value) set(key string, c *Value) ([]notice, error) {
	if v.typ != ObjectType {
		return nil, typeMismatch(v, ObjectType)
	}
	if err := v.checkInsert(c); err != nil {
		return nil, err
	}
	old := v.fields[key]
	if old == nil {
		v.keys = append(v.keys, key)
	}
	v.fields[key] = c
	v.link(key, c)
	if old == nil {
		return nil, nil
	}
	return displace(old, c), nil
}

// Delete removes and returns the entry for key, or nil.
func (v *Value) Delete(key string) *Value {
	if v.typ != ObjectType {
		return nil
	}
	old := v.fields[key]
	if old == nil {
		return nil
	}
	delete(v.fields, key)
	v.keys = slices.DeleteFunc(v.keys, func(k string) bool { return k == key })
	ns := displace(old, nil)
	dispatch(v.bubble(ns, RemoveEvent, key, old))
	return old
}

// SetChild is Set for objects and SetAt (with a decimal index) for
// arrays.
func (v *Value) SetChild(key string, c *Value) error {
	c = orNull(c)
	ns, err := v.setChild(key, c)
	if err != nil {
		return err
	}
	dispatch(v.bubble(ns, PutEvent, key, c))
	return nil
}

func (v *Value) setChild(key string, c *Value) ([]notice, error) {
	switch v.typ {
	case ObjectType:
		return v.set(key, c)
	case ArrayType:
		i, err := parseIndex(key)
		if err != nil {
			return nil, err
		}
		return v.setAt(i, c)
	}
	return nil, notAContainer(v)
}

// RemoveChild is Delete for objects and RemoveAt for arrays. Absent keys
// yield nil.
func (v *Value) RemoveChild(key string) (*Value, error) {
	switch v.typ {
	case ObjectType:
		return v.Delete(key), nil
	case ArrayType:
		i, err := strconv.Atoi(key)
		if err != nil {
			return nil, nil
		}
		return v.RemoveAt(i)
	}
	return nil, notAContainer(v)
}
