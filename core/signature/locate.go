package signature

import (
	"fmt"
	"reflect"
	"unicode"
	"unicode/utf8"
)

// TypeResolver resolves a registered dotted type name to a runtime type. It
// is the host-supplied type-loading capability.
type TypeResolver interface {
	Type(name string) (reflect.Type, bool)
}

var primitiveTypes = map[Kind]reflect.Type{
	KindBool:    reflect.TypeOf(false),
	KindInt8:    reflect.TypeOf(int8(0)),
	KindRune:    reflect.TypeOf(rune(0)),
	KindFloat64: reflect.TypeOf(float64(0)),
	KindFloat32: reflect.TypeOf(float32(0)),
	KindInt:     reflect.TypeOf(int(0)),
	KindInt64:   reflect.TypeOf(int64(0)),
	KindInt16:   reflect.TypeOf(int16(0)),
}

// ResolveType resolves the descriptor to a concrete runtime type. Slice
// descriptors resolve recursively; named descriptors resolve through the
// given resolver. An unresolvable name fails with ErrMethodNotFound, the
// same error an absent method produces.
func (d TypeDescriptor) ResolveType(resolver TypeResolver) (reflect.Type, error) {
	switch {
	case d.IsPrimitive():
		return primitiveTypes[d.Primitive], nil
	case d.IsArray():
		elem, err := d.Elem.ResolveType(resolver)
		if err != nil {
			return nil, err
		}
		for i := 0; i < d.Dim; i++ {
			elem = reflect.SliceOf(elem)
		}
		return elem, nil
	default:
		t, ok := resolver.Type(d.Name)
		if !ok {
			return nil, fmt.Errorf("%w: cannot resolve type %q", ErrMethodNotFound, d.Name)
		}
		return t, nil
	}
}

// Locate finds the method of target matching the signature's name and exact
// ordered parameter-type list. There is no overload resolution by
// assignability and no varargs handling; only an exact structural match is
// accepted. The optional return type of the signature is not part of the
// lookup key.
//
// With strictVisibility unset, a signature name written in wire form
// ("concat") also matches its exported Go method ("Concat"). Go reflection
// cannot call unexported methods, so strict visibility restricts lookup to
// the verbatim name instead of widening it.
func Locate(target reflect.Type, sig Signature, resolver TypeResolver, strictVisibility bool) (reflect.Method, error) {
	params := make([]reflect.Type, len(sig.ParameterTypes))
	for i, desc := range sig.ParameterTypes {
		t, err := desc.ResolveType(resolver)
		if err != nil {
			return reflect.Method{}, err
		}
		params[i] = t
	}

	names := []string{sig.Name}
	if !strictVisibility {
		if exported := exportedName(sig.Name); exported != sig.Name {
			names = append(names, exported)
		}
	}

	for _, name := range names {
		method, ok := target.MethodByName(name)
		if ok && parametersMatch(method, params) {
			return method, nil
		}
	}

	return reflect.Method{}, fmt.Errorf("%w: %q on type %s", ErrMethodNotFound, sig.String(), target)
}

// parametersMatch reports whether the method's declared inputs, excluding
// the receiver, equal the resolved parameter types exactly.
func parametersMatch(method reflect.Method, params []reflect.Type) bool {
	mt := method.Func.Type()
	if mt.NumIn()-1 != len(params) {
		return false
	}

	for i, param := range params {
		if mt.In(i+1) != param {
			return false
		}
	}

	return true
}

func exportedName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return name
	}

	return string(unicode.ToUpper(r)) + name[size:]
}
