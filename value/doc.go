// Package value provides the JSON value model of itemscript.
//
// # Values
//
// A Value is a tagged union over null, boolean, number, string, array and
// object, plus a native variant holding an opaque Go handle that never
// serializes. Every Value also records where it lives: the container
// holding it (Parent), the key or index it is held under (Key, Index) and
// the Item owning it (Item).
//
//	obj := value.NewObject()
//	_ = obj.Set("name", value.FromString("x"))
//	obj.Get("name").Fragment() // "#name"
//
// A value has at most one owner. Inserting a value that is already held by
// a container or an Item fails with ErrAlreadyContained; remove it first,
// or insert a Copy.
//
// # Items
//
// An Item is an addressable root: a source locator, a root value, a
// metadata object and a list of handlers. Get, Put and Remove navigate the
// root by fragment ("#a/b/0"); Put creates missing intermediate objects.
//
// Items may be mounted inside the tree of another Item, which is how the
// in-memory store arranges its nodes. A value belongs to the nearest
// enclosing Item, and its Fragment is relative to that Item.
//
// # Events
//
// Every mutation of a container fires a PUT or REMOVE Event to the owning
// Item and to every Item enclosing it, each with a fragment relative to
// itself. When the subtree holding a mounted Item is replaced, the Item
// follows its location: it receives PUT "#" with the value now found at
// the same path, or REMOVE "#" when nothing is there.
//
// Handlers run synchronously. They must not remove the Item they are
// registered on while an event is being delivered.
package value
