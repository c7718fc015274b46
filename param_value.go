package unitmod

import (
	"bytes"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/golobby/cast"
)

// ParamType is the type of a parameter. It never changes after the store is
// built.
type ParamType int

const (
	ParamInt ParamType = iota + 1
	ParamString
)

func (t ParamType) String() string {
	switch t {
	case ParamInt:
		return "int"
	case ParamString:
		return "string"
	default:
		return "invalid"
	}
}

// Permission is a filesystem-style permission bitmask, e.g. 0644 means the
// owner may write and everyone may read.
type Permission uint32

const (
	PermOwnerRead  Permission = 0o400
	PermOwnerWrite Permission = 0o200
	PermGroupRead  Permission = 0o040
	PermGroupWrite Permission = 0o020
	PermOtherRead  Permission = 0o004
	PermOtherWrite Permission = 0o002

	readBits  Permission = PermOwnerRead | PermGroupRead | PermOtherRead
	writeBits Permission = PermOwnerWrite | PermGroupWrite | PermOtherWrite
)

// Readable reports whether any read bit is set. A parameter without read bits
// is not exposed to operators.
func (p Permission) Readable() bool {
	return p&readBits != 0
}

// Writable reports whether any write bit is set.
func (p Permission) Writable() bool {
	return p&writeBits != 0
}

// String formats the permission in octal, e.g. "0644".
func (p Permission) String() string {
	return fmt.Sprintf("%04o", uint32(p))
}

// ParsePermission parses an octal permission string such as "0644" or "644".
func ParsePermission(s string) (Permission, error) {
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "0o"), 8, 32)
	if err != nil || n > 0o777 {
		return 0, fmt.Errorf("%w: permission %q", ErrInvalidValue, s)
	}
	return Permission(n), nil
}

// Value is a typed parameter value. Values are immutable; string bytes are
// copied whenever they cross the store boundary.
type Value struct {
	typ ParamType
	num int64
	raw []byte
}

// IntValue returns an integer value.
func IntValue(n int64) Value {
	return Value{typ: ParamInt, num: n}
}

// StringValue returns a string value.
func StringValue(s string) Value {
	return Value{typ: ParamString, raw: []byte(s)}
}

// BytesValue returns a string value holding raw bytes, which need not be
// valid UTF-8. Text reads of such a value fail with ErrEncoding.
func BytesValue(b []byte) Value {
	return Value{typ: ParamString, raw: bytes.Clone(b)}
}

// Type returns the value's type.
func (v Value) Type() ParamType {
	return v.typ
}

// Int returns the integer, or ErrTypeMismatch for a string value.
func (v Value) Int() (int64, error) {
	if v.typ != ParamInt {
		return 0, ErrTypeMismatch
	}
	return v.num, nil
}

// Text interprets the value as printable text. Integer values fail with
// ErrTypeMismatch; bytes that are not valid UTF-8 fail with ErrEncoding.
func (v Value) Text() (string, error) {
	if v.typ != ParamString {
		return "", ErrTypeMismatch
	}
	if !utf8.Valid(v.raw) {
		return "", ErrEncoding
	}
	return string(v.raw), nil
}

// Bytes returns a copy of the raw bytes of a string value, nil otherwise.
func (v Value) Bytes() []byte {
	if v.typ != ParamString {
		return nil
	}
	return bytes.Clone(v.raw)
}

// Equal reports whether two values have the same type and contents.
func (v Value) Equal(o Value) bool {
	return v.typ == o.typ && v.num == o.num && bytes.Equal(v.raw, o.raw)
}

// String renders the value for display. Invalid text is quoted.
func (v Value) String() string {
	switch v.typ {
	case ParamInt:
		return strconv.FormatInt(v.num, 10)
	case ParamString:
		if utf8.Valid(v.raw) {
			return string(v.raw)
		}
		return strconv.Quote(string(v.raw))
	default:
		return "<invalid>"
	}
}

func (v Value) clone() Value {
	v.raw = bytes.Clone(v.raw)
	return v
}

var int64Type = reflect.TypeOf(int64(0))

// ParseValue coerces operator text into a value of type t. A single trailing
// newline is dropped, as written by `echo value > param`.
func ParseValue(t ParamType, text string) (Value, error) {
	text = strings.TrimSuffix(text, "\n")
	switch t {
	case ParamInt:
		converted, err := cast.FromType(strings.TrimSpace(text), int64Type)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, text)
		}
		rv := reflect.ValueOf(converted)
		if !rv.IsValid() || !rv.CanInt() {
			return Value{}, fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, text)
		}
		return IntValue(rv.Int()), nil
	case ParamString:
		return StringValue(text), nil
	default:
		return Value{}, ErrTypeMismatch
	}
}
