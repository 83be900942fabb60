package connector

import "fmt"

// NotSupported returns an ErrNotSupported error for op on c.
func NotSupported(c Connector, op string) error {
	return fmt.Errorf("%w: %T does not %s", ErrNotSupported, c, op)
}
