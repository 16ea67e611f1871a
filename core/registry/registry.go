// Package registry provides the type-loading capability of the invocation
// engine. Go has no runtime class path, so the host registers every type
// that signatures, encoded objects and static value paths may refer to.
package registry

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sync"
)

var (
	// ErrInvalidTypeName is returned when a type name does not match the
	// dotted identifier format.
	ErrInvalidTypeName = errors.New("invalid type name")

	// ErrInvalidStaticPath is returned when a static value path does not
	// match the dotted identifier format.
	ErrInvalidStaticPath = errors.New("invalid static value path")

	// ErrNilSpecimen is returned when a type is registered from a nil
	// specimen.
	ErrNilSpecimen = errors.New("nil specimen")
)

var dottedNameRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// Registry maps dotted names to runtime types and static value paths to
// registered values. All methods are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	types   map[string]reflect.Type
	names   map[reflect.Type]string
	statics map[string]any
}

// New creates a registry preloaded with the built-in scalar types, so that
// plain values can pass through the object codec without prior host setup.
func New() *Registry {
	r := &Registry{
		types:   make(map[string]reflect.Type),
		names:   make(map[reflect.Type]string),
		statics: make(map[string]any),
	}

	builtins := map[string]any{
		"bool":    false,
		"int8":    int8(0),
		"int16":   int16(0),
		"int":     int(0),
		"int64":   int64(0),
		"rune":    rune(0),
		"float32": float32(0),
		"float64": float64(0),
		"string":  "",
	}
	for name, specimen := range builtins {
		r.register(name, reflect.TypeOf(specimen))
	}

	return r
}

// RegisterType registers the dynamic type of specimen under the given dotted
// name. Registering a pointer specimen exposes both the value and pointer
// method sets to the method locator.
func (r *Registry) RegisterType(name string, specimen any) error {
	if !dottedNameRegexp.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidTypeName, name)
	}
	if specimen == nil {
		return fmt.Errorf("%w: type %q", ErrNilSpecimen, name)
	}

	r.register(name, reflect.TypeOf(specimen))

	return nil
}

func (r *Registry) register(name string, t reflect.Type) {
	r.mu.Lock()
	r.types[name] = t
	r.names[t] = name
	r.mu.Unlock()
}

// Type returns the runtime type registered under name.
func (r *Registry) Type(name string) (reflect.Type, bool) {
	r.mu.RLock()
	t, ok := r.types[name]
	r.mu.RUnlock()

	return t, ok
}

// NameFor returns the registered name of t, used by the object codec to tag
// encoded payloads.
func (r *Registry) NameFor(t reflect.Type) (string, bool) {
	r.mu.RLock()
	name, ok := r.names[t]
	r.mu.RUnlock()

	return name, ok
}

// RegisterStatic registers a value under a dotted path, making it available
// to argument strings of the form "pkg.Type.FIELD".
func (r *Registry) RegisterStatic(path string, value any) error {
	if !dottedNameRegexp.MatchString(path) {
		return fmt.Errorf("%w: %q", ErrInvalidStaticPath, path)
	}

	r.mu.Lock()
	r.statics[path] = value
	r.mu.Unlock()

	return nil
}

// Static returns the value registered under the given dotted path.
func (r *Registry) Static(path string) (any, bool) {
	r.mu.RLock()
	value, ok := r.statics[path]
	r.mu.RUnlock()

	return value, ok
}
