package connector

import (
	"context"

	"github.com/signadot/itemscript/locator"
	"github.com/signadot/itemscript/value"
)

// Callback receives the outcome of an asynchronous operation.
type Callback func(*value.Value, error)

// AsyncConnector is implemented by connectors whose operations complete
// after the call returns.
type AsyncConnector interface {
	GetAsync(ctx context.Context, u *locator.URL, cb Callback)
	PutAsync(ctx context.Context, u *locator.URL, v *value.Value, cb Callback)
	RemoveAsync(ctx context.Context, u *locator.URL, cb Callback)
}

// GetAsync calls cb with the result of c.Get. Synchronous connectors
// call cb before GetAsync returns.
func GetAsync(ctx context.Context, c Connector, u *locator.URL, cb Callback) {
	if ac, ok := c.(AsyncConnector); ok {
		ac.GetAsync(ctx, u, cb)
		return
	}
	cb(c.Get(ctx, u))
}

func PutAsync(ctx context.Context, c Connector, u *locator.URL, v *value.Value, cb Callback) {
	if ac, ok := c.(AsyncConnector); ok {
		ac.PutAsync(ctx, u, v, cb)
		return
	}
	cb(c.Put(ctx, u, v))
}

func RemoveAsync(ctx context.Context, c Connector, u *locator.URL, cb Callback) {
	if ac, ok := c.(AsyncConnector); ok {
		ac.RemoveAsync(ctx, u, cb)
		return
	}
	cb(c.Remove(ctx, u))
}

// PostAsync calls cb with the result of posting v. Connectors that do not
// post fail with ErrNotSupported.
func PostAsync(ctx context.Context, c Connector, u *locator.URL, v *value.Value, cb Callback) {
	p, ok := c.(Poster)
	if !ok {
		cb(nil, NotSupported(c, "post"))
		return
	}
	cb(p.Post(ctx, u, v))
}
