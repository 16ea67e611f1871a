// Package codec moves typed values through string-only channels. An encoded
// value is wrapped in a fixed envelope so that the value resolver can tell
// encoded objects apart from plain literals with a cheap syntactic test.
//
// The payload is the CBOR encoding of the value's registered type name and
// canonical bytes, rendered text-safe with standard base64.
package codec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/wessbas/reflectcall/core/registry"
)

const (
	markPrefix = `\obj{`
	markSuffix = `}`
)

var (
	// ErrNotEncodable is returned when a value cannot be encoded, either
	// because its type is not registered or because it has no CBOR form.
	ErrNotEncodable = errors.New("value is not encodable")

	// ErrCorruptPayload is returned when an enveloped string cannot be
	// decoded back into a value.
	ErrCorruptPayload = errors.New("corrupt encoded payload")
)

// envelope is the CBOR body of an encoded value.
type envelope struct {
	Type string          `cbor:"type"`
	Data cbor.RawMessage `cbor:"data"`
}

// Converter encodes values to enveloped strings and back. Decoding rebuilds
// the concrete type through the registry, so only registered types can pass
// through the codec.
type Converter struct {
	reg *registry.Registry
}

// NewConverter creates a converter backed by the given type registry.
func NewConverter(reg *registry.Registry) *Converter {
	return &Converter{reg: reg}
}

// Encode encodes value into an enveloped string.
func (c *Converter) Encode(value any) (string, error) {
	if value == nil {
		return "", fmt.Errorf("%w: nil value", ErrNotEncodable)
	}

	name, ok := c.reg.NameFor(reflect.TypeOf(value))
	if !ok {
		return "", fmt.Errorf("%w: unregistered type %T", ErrNotEncodable, value)
	}

	data, err := cbor.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotEncodable, err)
	}

	payload, err := cbor.Marshal(envelope{Type: name, Data: data})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotEncodable, err)
	}

	return markPrefix + base64.StdEncoding.EncodeToString(payload) + markSuffix, nil
}

// Decode decodes an enveloped string back into a typed value.
func (c *Converter) Decode(s string) (any, error) {
	if !IsEncoded(s) {
		return nil, fmt.Errorf("%w: string %q is not enveloped", ErrCorruptPayload, s)
	}

	payload, err := base64.StdEncoding.DecodeString(s[len(markPrefix) : len(s)-len(markSuffix)])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}

	var env envelope
	if err := cbor.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}

	t, ok := c.reg.Type(env.Type)
	if !ok {
		return nil, fmt.Errorf("%w: unregistered type %q", ErrCorruptPayload, env.Type)
	}

	pointer := t.Kind() == reflect.Pointer
	if pointer {
		t = t.Elem()
	}

	out := reflect.New(t)
	if err := cbor.Unmarshal(env.Data, out.Interface()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}

	if pointer {
		return out.Interface(), nil
	}

	return out.Elem().Interface(), nil
}

// IsEncoded reports whether s carries the codec envelope. This is a pure
// prefix/suffix test; strings that merely start or end with one marker are
// not considered enveloped.
func IsEncoded(s string) bool {
	return len(s) >= len(markPrefix)+len(markSuffix) &&
		strings.HasPrefix(s, markPrefix) &&
		strings.HasSuffix(s, markSuffix)
}
