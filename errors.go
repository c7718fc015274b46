package unitmod

import (
	"errors"
	"fmt"
)

// Host and unit errors
var (
	// Registration errors
	ErrInvalidName    = errors.New("unit name is empty")
	ErrUnknownLicense = errors.New("unknown license")
	ErrDuplicateName  = errors.New("unit name already registered")

	// Init errors
	ErrInitFailed = errors.New("unit init failed")
	ErrInitPanic  = errors.New("unit init panicked")

	// Parameter errors
	ErrParamNotFound    = errors.New("parameter not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrTypeMismatch     = errors.New("parameter type mismatch")
	ErrEncoding         = errors.New("invalid UTF-8 in string parameter")
	ErrInvalidValue     = errors.New("invalid parameter value")
	ErrDuplicateParam   = errors.New("duplicate parameter name")
	ErrInvalidParamName = errors.New("parameter name is empty")

	// Host errors
	ErrUnitNotLoaded = errors.New("unit not loaded")
	ErrNilUnit       = errors.New("unit is nil")
	ErrHostClosed    = errors.New("host is closed")
)

// RegistrationError reports why a unit could not be registered with the host.
// Kind is one of ErrInvalidName, ErrUnknownLicense or ErrDuplicateName.
type RegistrationError struct {
	Unit   string
	Kind   error
	Detail string
}

func (e *RegistrationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("register unit %q: %v %q", e.Unit, e.Kind, e.Detail)
	}
	return fmt.Sprintf("register unit %q: %v", e.Unit, e.Kind)
}

func (e *RegistrationError) Unwrap() error {
	return e.Kind
}

// InitError is returned when a unit's Init fails. The load is aborted and the
// unit never becomes active.
type InitError struct {
	Unit  string
	Cause error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("init unit %q: %v", e.Unit, e.Cause)
}

// Unwrap exposes both the generic ErrInitFailed and the specific cause.
func (e *InitError) Unwrap() []error {
	return []error{ErrInitFailed, e.Cause}
}

// ParamError reports a failed parameter operation. Err is one of the
// parameter sentinels above.
type ParamError struct {
	Param string
	Op    string
	Err   error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("parameter %q: %s: %v", e.Param, e.Op, e.Err)
}

func (e *ParamError) Unwrap() error {
	return e.Err
}

func paramErr(name, op string, err error) error {
	return &ParamError{Param: name, Op: op, Err: err}
}
