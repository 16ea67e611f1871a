// Package resolver turns one raw argument plus an expected type into a
// typed runtime value.
//
// A raw argument is either a string from the host's parameter table or a
// call result produced by an earlier invocation. Strings are resolved in
// order: variable reference, then literal according to the expected type
// (exact boolean spellings, integers with sign and base prefixes, single
// characters, locale-invariant decimals, enveloped encoded objects, the
// bare token "null", quote-delimited strings, and finally registered static
// value paths). Call results pass through verbatim and are never re-parsed.
package resolver

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/wessbas/reflectcall/core/codec"
	"github.com/wessbas/reflectcall/core/registry"
	"github.com/wessbas/reflectcall/core/vars"
)

// maxReferenceHops bounds reference-chain recursion. A chain deeper than
// this is treated as a loop.
const maxReferenceHops = 32

var (
	// ErrUndefinedReference is returned when a reference names a variable
	// absent from the calling thread's partition.
	ErrUndefinedReference = errors.New("reference to undefined variable")

	// ErrReferenceLoop is returned when a reference chain exceeds the
	// recursion bound.
	ErrReferenceLoop = errors.New("reference chain too deep, possible loop")

	// ErrTypeMismatch is returned when a resolved value does not
	// structurally match the expected type.
	ErrTypeMismatch = errors.New("resolved type does not match the expected type")

	// ErrInvalidBoolean is returned when a boolean literal is not one of
	// the two canonical spellings.
	ErrInvalidBoolean = errors.New("invalid boolean value")

	// ErrInvalidChar is returned when a character literal is not exactly
	// one character.
	ErrInvalidChar = errors.New("invalid character value")

	// ErrInvalidNumber is returned when a numeric literal cannot be parsed.
	ErrInvalidNumber = errors.New("invalid number value")

	// ErrImproperQuoting is returned when a string literal starts or ends
	// with a quote but is not properly quote-delimited.
	ErrImproperQuoting = errors.New("improperly quoted string")

	// ErrStaticFieldNotFound is returned when a dotted path does not name
	// a registered static value.
	ErrStaticFieldNotFound = errors.New("static value not found")
)

// ValueError wraps a resolution failure with the offending argument text
// and the expected type.
type ValueError struct {
	internal error
	external error
	arg      string
	t        string
}

func newValueError(internal error, arg string, t reflect.Type, cause error) error {
	return ValueError{internal: internal, external: cause, arg: arg, t: t.String()}
}

// Error returns a formatted message naming the argument and expected type.
func (e ValueError) Error() string {
	if e.external == nil {
		return fmt.Sprintf("%v: %q: for type '%s'", e.internal, e.arg, e.t)
	}

	return fmt.Sprintf("%v: %q: for type '%s': '%v'", e.internal, e.arg, e.t, e.external)
}

// Is matches the internal sentinel error.
func (e ValueError) Is(target error) bool {
	return errors.Is(e.internal, target)
}

// Unwrap returns the underlying cause, if any.
func (e ValueError) Unwrap() error {
	return e.external
}

// Resolver resolves raw arguments against expected types using the variable
// pool, the object codec and the static value registry.
type Resolver struct {
	pool *vars.Pool
	conv *codec.Converter
	reg  *registry.Registry
}

// New creates a resolver.
func New(pool *vars.Pool, conv *codec.Converter, reg *registry.Registry) *Resolver {
	return &Resolver{pool: pool, conv: conv, reg: reg}
}

// Resolve resolves raw into a value of the expected type. raw is either a
// string or a *vars.CallResult; call results are unwrapped verbatim and
// only type-checked.
func (r *Resolver) Resolve(threadID string, expected reflect.Type, raw any) (reflect.Value, error) {
	return r.resolve(threadID, expected, raw, 0)
}

func (r *Resolver) resolve(threadID string, expected reflect.Type, raw any, hops int) (reflect.Value, error) {
	if hops > maxReferenceHops {
		return reflect.Value{}, newValueError(ErrReferenceLoop, fmt.Sprintf("%v", raw), expected, nil)
	}

	switch v := raw.(type) {
	case *vars.CallResult:
		return adapt(expected, v.Value)
	case vars.CallResult:
		return adapt(expected, v.Value)
	case string:
		trimmed := strings.TrimSpace(v)
		if name, ok := vars.ReferenceName(trimmed); ok {
			stored, found := r.pool.Get(threadID, name)
			if !found {
				return reflect.Value{}, newValueError(ErrUndefinedReference, trimmed, expected, nil)
			}
			return r.resolve(threadID, expected, stored, hops+1)
		}
		return r.literal(expected, trimmed)
	default:
		return adapt(expected, raw)
	}
}

// literal resolves a trimmed non-reference string against the expected
// type.
func (r *Resolver) literal(expected reflect.Type, s string) (reflect.Value, error) {
	switch expected.Kind() {
	case reflect.Bool:
		switch s {
		case "true":
			return reflect.ValueOf(true), nil
		case "false":
			return reflect.ValueOf(false), nil
		}
		return reflect.Value{}, newValueError(ErrInvalidBoolean, s, expected, nil)

	case reflect.Int32:
		// Int32 slots carry characters; a literal is exactly one rune.
		if utf8.RuneCountInString(s) != 1 {
			return reflect.Value{}, newValueError(ErrInvalidChar, s, expected, nil)
		}
		ch, _ := utf8.DecodeRuneInString(s)
		return reflect.ValueOf(ch).Convert(expected), nil

	case reflect.Int8, reflect.Int16, reflect.Int, reflect.Int64:
		// Base 0 accepts the standard sign and base prefixes (0x, 0o, 0b).
		n, err := strconv.ParseInt(s, 0, expected.Bits())
		if err != nil {
			return reflect.Value{}, newValueError(ErrInvalidNumber, s, expected, err)
		}
		return reflect.ValueOf(n).Convert(expected), nil

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, expected.Bits())
		if err != nil {
			return reflect.Value{}, newValueError(ErrInvalidNumber, s, expected, err)
		}
		return reflect.ValueOf(f).Convert(expected), nil

	default:
		return r.object(expected, s)
	}
}

// object resolves a literal against a non-primitive expected type.
func (r *Resolver) object(expected reflect.Type, s string) (reflect.Value, error) {
	if codec.IsEncoded(s) {
		value, err := r.conv.Decode(s)
		if err != nil {
			return reflect.Value{}, newValueError(err, s, expected, nil)
		}
		return adapt(expected, value)
	}

	if s == "null" {
		return reflect.Zero(expected), nil
	}

	if strings.HasPrefix(s, `"`) || strings.HasSuffix(s, `"`) {
		unquoted, err := unquote(s)
		if err != nil {
			return reflect.Value{}, newValueError(err, s, expected, nil)
		}
		return adapt(expected, unquoted)
	}

	value, ok := r.reg.Static(s)
	if !ok {
		return reflect.Value{}, newValueError(ErrStaticFieldNotFound, s, expected, nil)
	}

	return adapt(expected, value)
}

func unquote(s string) (string, error) {
	if len(s) < 2 || !strings.HasPrefix(s, `"`) || !strings.HasSuffix(s, `"`) {
		return "", ErrImproperQuoting
	}

	return s[1 : len(s)-1], nil
}

// adapt checks that value structurally matches the expected type and
// returns it as a reflect.Value. Values whose kind matches the expected
// kind are converted, so a call result of a named type still satisfies a
// slot declared with the underlying type.
func adapt(expected reflect.Type, value any) (reflect.Value, error) {
	if value == nil {
		switch expected.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface, reflect.Chan, reflect.Func:
			return reflect.Zero(expected), nil
		}
		return reflect.Value{}, newValueError(ErrTypeMismatch, "null", expected, nil)
	}

	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(expected) {
		return rv, nil
	}

	if rv.Kind() == expected.Kind() && rv.Type().ConvertibleTo(expected) {
		return rv.Convert(expected), nil
	}

	return reflect.Value{}, newValueError(
		ErrTypeMismatch,
		fmt.Sprintf("%v", value),
		expected,
		fmt.Errorf("resolved type is %s", rv.Type()),
	)
}
