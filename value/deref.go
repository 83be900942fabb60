package value

import (
	"context"
	"fmt"

	"github.com/signadot/itemscript/locator"
)

// Resolver looks up the value at a locator.
type Resolver interface {
	Get(ctx context.Context, loc string) (*Value, error)
}

// Dereference treats a string value as a locator, relative to the
// source of v's Item, and resolves it. Containers dereference to
// themselves.
func (v *Value) Dereference(ctx context.Context) (*Value, error) {
	switch v.typ {
	case ArrayType, ObjectType:
		return v, nil
	case StringType:
	default:
		return nil, typeMismatch(v, StringType)
	}
	if v.item == nil {
		return nil, fmt.Errorf("%w: %q is detached", ErrNoResolver, v.s)
	}
	r := v.item.Resolver()
	if r == nil {
		return nil, fmt.Errorf("%w: item %s", ErrNoResolver, v.item.source)
	}
	loc := v.s
	if v.item.source != "" {
		base, err := locator.Parse(v.item.source)
		if err != nil {
			return nil, err
		}
		u, err := base.Resolve(loc)
		if err != nil {
			return nil, err
		}
		loc = u.String()
	}
	return r.Get(ctx, loc)
}

// DereferenceKey dereferences the child of v at key. An absent child
// yields nil.
func (v *Value) DereferenceKey(ctx context.Context, key string) (*Value, error) {
	if !v.IsContainer() {
		return nil, notAContainer(v)
	}
	c := v.Child(key)
	if c == nil {
		return nil, nil
	}
	return c.Dereference(ctx)
}
