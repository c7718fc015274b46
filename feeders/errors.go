package feeders

import (
	"errors"
	"fmt"
)

// Static error definitions for feeders
var (
	ErrInvalidArg        = errors.New("invalid override argument")
	ErrMissingUnit       = errors.New("override names no unit")
	ErrUnsupportedValue  = errors.New("unsupported override value")
	ErrUnsupportedFormat = errors.New("unsupported override file format")
)

func wrapArgError(arg, reason string) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidArg, arg, reason)
}

func wrapValueError(unit, param string, got any) error {
	return fmt.Errorf("%w for %s.%s: got %T", ErrUnsupportedValue, unit, param, got)
}
