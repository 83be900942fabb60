package system

import (
	"context"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/signadot/itemscript/connector"
	"github.com/signadot/itemscript/value"
)

// Patch applies an RFC 6902 JSON patch to the value at loc and stores
// the result.
func (s *System) Patch(ctx context.Context, loc string, patch []byte) (*value.Value, error) {
	ops, err := jsonpatch.DecodePatch(patch)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPatch, err)
	}
	return s.patch(ctx, loc, false, ops.Apply)
}

// MergePatch applies an RFC 7386 merge patch to the value at loc. A
// missing value is patched as an empty object.
func (s *System) MergePatch(ctx context.Context, loc string, patch []byte) (*value.Value, error) {
	return s.patch(ctx, loc, true, func(doc []byte) ([]byte, error) {
		return jsonpatch.MergePatch(doc, patch)
	})
}

func (s *System) patch(ctx context.Context, loc string, vivify bool, apply func([]byte) ([]byte, error)) (*value.Value, error) {
	u, c, err := s.locate(loc)
	if err != nil {
		return nil, err
	}
	cur, err := c.Get(ctx, u)
	if err != nil {
		return nil, err
	}
	var doc []byte
	switch {
	case cur != nil:
		if doc, err = cur.MarshalJSON(); err != nil {
			return nil, err
		}
	case vivify:
		doc = []byte("{}")
	default:
		return nil, fmt.Errorf("%w: %s", connector.ErrNotFound, u)
	}
	out, err := apply(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrPatch, u, err)
	}
	nv, err := value.Parse(out)
	if err != nil {
		return nil, err
	}
	s.log.Debug("patch", "locator", u.String())
	return c.Put(ctx, u, nv)
}
