package value

import (
	"errors"
	"fmt"
)

var (
	ErrNotAContainer    = errors.New("not a container")
	ErrAlreadyContained = errors.New("already contained")
	ErrTypeMismatch     = errors.New("type mismatch")
	ErrNotSerializable  = errors.New("not serializable")
	ErrNoResolver       = errors.New("no resolver")
	ErrBadIndex         = errors.New("bad index")
	ErrBadFragment      = errors.New("bad fragment")
	ErrParse            = errors.New("parse error")
)

func typeMismatch(v *Value, want Type) error {
	return fmt.Errorf("%w: want %s, got %s", ErrTypeMismatch, want, v.typ)
}

func notAContainer(v *Value) error {
	return fmt.Errorf("%w: %s at %s", ErrNotAContainer, v.typ, v.Fragment())
}
