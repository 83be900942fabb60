package system

import (
	"context"

	"github.com/signadot/itemscript/connector"
	"github.com/signadot/itemscript/value"
)

// GetAsync resolves loc and calls cb with the outcome of the get. A
// locator that cannot be resolved reaches cb as an error.
func (s *System) GetAsync(ctx context.Context, loc string, cb connector.Callback) {
	u, c, err := s.locate(loc)
	if err != nil {
		cb(nil, err)
		return
	}
	connector.GetAsync(ctx, c, u, cb)
}

func (s *System) PutAsync(ctx context.Context, loc string, v *value.Value, cb connector.Callback) {
	u, c, err := s.locate(loc)
	if err != nil {
		cb(nil, err)
		return
	}
	connector.PutAsync(ctx, c, u, v, cb)
}

func (s *System) RemoveAsync(ctx context.Context, loc string, cb connector.Callback) {
	u, c, err := s.locate(loc)
	if err != nil {
		cb(nil, err)
		return
	}
	connector.RemoveAsync(ctx, c, u, cb)
}

func (s *System) PostAsync(ctx context.Context, loc string, v *value.Value, cb connector.Callback) {
	u, c, err := s.locate(loc)
	if err != nil {
		cb(nil, err)
		return
	}
	connector.PostAsync(ctx, c, postURL(u), v, cb)
}
