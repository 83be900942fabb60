package value

import (
	"slices"

	"github.com/signadot/itemscript/debug"
)

type EventKind int

const (
	PutEvent EventKind = iota
	RemoveEvent
)

func (k EventKind) String() string {
	switch k {
	case PutEvent:
		return "PUT"
	case RemoveEvent:
		return "REMOVE"
	default:
		return "<unknown event>"
	}
}

// Event describes a mutation inside an Item. Fragment locates the
// mutation relative to the receiving Item's root. Value is the value put,
// or the value removed.
type Event struct {
	Kind     EventKind
	Item     *Item
	Fragment string
	Value    *Value
}

// Handler receives events synchronously. A handler must not remove the
// Item it is attached to while handling an event.
type Handler func(Event)

type notice struct {
	item *Item
	ev   Event
}

func dispatch(ns []notice) {
	for i := range ns {
		ns[i].item.dispatch(ns[i].ev)
	}
}

type handlerEntry struct {
	h Handler
}

// AddHandler registers h and returns a func that unregisters it.
// Handlers run in registration order.
func (it *Item) AddHandler(h Handler) (remove func()) {
	e := &handlerEntry{h: h}
	it.handlers = append(it.handlers, e)
	return func() {
		it.handlers = slices.DeleteFunc(slices.Clone(it.handlers), func(x *handlerEntry) bool {
			return x == e
		})
	}
}

func (it *Item) HandlerCount() int {
	return len(it.handlers)
}

func (it *Item) dispatch(ev Event) {
	ev.Item = it
	if debug.Events() {
		debug.Logf("event %s %s%s (%d handlers)\n", ev.Kind, it.source, ev.Fragment, len(it.handlers))
	}
	if len(it.handlers) == 0 {
		return
	}
	// handlers may register or unregister during dispatch
	hs := slices.Clone(it.handlers)
	for _, e := range hs {
		e.h(ev)
	}
}

// bubble appends, for every Item enclosing the location key in v, an
// event whose fragment is relative to that Item.
func (v *Value) bubble(dst []notice, kind EventKind, key string, val *Value) []notice {
	path := []string{key}
	for cur := v; cur != nil; cur = cur.parent {
		if cur.IsRoot() {
			segs := slices.Clone(path)
			slices.Reverse(segs)
			dst = append(dst, notice{
				item: cur.item,
				ev:   Event{Kind: kind, Fragment: fragmentOf(segs), Value: val},
			})
		}
		if cur.parent != nil {
			path = append(path, cur.key)
		}
	}
	return dst
}
