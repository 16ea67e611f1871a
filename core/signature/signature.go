// Package signature parses textual method signatures and locates matching
// callables on runtime types.
//
// A signature is formatted as
//
//	methodName(parameterType1,parameterType2,...):returnType
//
// with the return type being optional. Each type is written in field-type
// notation: base types use their single-character codes (Z B C D F I J S
// for bool, int8, rune, float64, float32, int, int64 and int16), named
// types use their registered dotted name, optionally wrapped as
// "Lpkg.Type;", and slice types prepend one '[' per dimension, for example
// "[[I" or "[Lpkg.Type;". Whitespace around tokens is permitted.
package signature

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrMalformedSignature is returned when a signature string fails
	// format validation.
	ErrMalformedSignature = errors.New("invalid method signature")

	// ErrMethodNotFound is returned when no method matches a signature.
	// Unresolvable parameter types surface as the same error; the lookup
	// deliberately does not distinguish the two cases.
	ErrMethodNotFound = errors.New("method not found")
)

// Validation regexes, composed the same way the signature grammar reads.
const (
	regexName      = `(\p{L}|_)[\p{L}\p{N}_]*`
	regexClassName = regexName + `(\.` + regexName + `)*`
	regexArrayType = `\[+([ZBCDFIJS]|L` + regexClassName + `;)`
	regexType      = `((` + regexClassName + `)|(L` + regexClassName + `;)|(` + regexArrayType + `))`
)

var signatureRegexp = regexp.MustCompile(
	`^\s*` + regexName +
		`\s*\(\s*(` + regexType + `\s*(\s*,\s*` + regexType + `\s*)*)?\s*\)` +
		`(\s*:\s*` + regexType + `)?\s*$`)

// Kind identifies a base type by its signature character.
type Kind byte

const (
	KindBool    Kind = 'Z'
	KindInt8    Kind = 'B'
	KindRune    Kind = 'C'
	KindFloat64 Kind = 'D'
	KindFloat32 Kind = 'F'
	KindInt     Kind = 'I'
	KindInt64   Kind = 'J'
	KindInt16   Kind = 'S'
)

// TypeDescriptor describes one parameter or return type. Exactly one of the
// three forms is populated: a base type (Primitive != 0), a named type
// (Name != ""), or a slice type (Elem != nil with Dim >= 1).
type TypeDescriptor struct {
	Primitive Kind
	Name      string
	Elem      *TypeDescriptor
	Dim       int
}

// IsPrimitive reports whether the descriptor denotes a base type.
func (d TypeDescriptor) IsPrimitive() bool { return d.Primitive != 0 }

// IsArray reports whether the descriptor denotes a slice type.
func (d TypeDescriptor) IsArray() bool { return d.Elem != nil }

// String renders the descriptor in canonical field-type notation. Named
// types are always wrapped as "Lname;".
func (d TypeDescriptor) String() string {
	switch {
	case d.IsPrimitive():
		return string(d.Primitive)
	case d.IsArray():
		return strings.Repeat("[", d.Dim) + d.Elem.String()
	default:
		return "L" + d.Name + ";"
	}
}

// Signature is the parsed form of a method signature string. It is
// immutable once produced by Parser.Parse.
type Signature struct {
	Name           string
	ParameterTypes []TypeDescriptor
	ReturnType     *TypeDescriptor
}

// String renders an equivalent signature string in canonical notation.
func (s Signature) String() string {
	params := make([]string, len(s.ParameterTypes))
	for i, p := range s.ParameterTypes {
		params[i] = p.String()
	}

	text := s.Name + "(" + strings.Join(params, ",") + ")"
	if s.ReturnType != nil {
		text += ":" + s.ReturnType.String()
	}

	return text
}

// Parser parses method signature strings. When Validate is set, input is
// checked against the signature grammar before token extraction and
// malformed input fails with ErrMalformedSignature; when unset, extraction
// failures surface as ErrMethodNotFound so that lookup reports them.
type Parser struct {
	Validate bool
}

// Parse parses a method signature string.
func (p Parser) Parse(text string) (Signature, error) {
	if p.Validate && !signatureRegexp.MatchString(text) {
		return Signature{}, fmt.Errorf("%w: %q", ErrMalformedSignature, text)
	}

	sig, err := parseTokens(text)
	if err != nil {
		if p.Validate {
			return Signature{}, fmt.Errorf("%w: %q", ErrMalformedSignature, text)
		}
		return Signature{}, fmt.Errorf("%w: cannot parse signature %q", ErrMethodNotFound, text)
	}

	return sig, nil
}

func parseTokens(text string) (Signature, error) {
	open := strings.IndexByte(text, '(')
	closing := strings.LastIndexByte(text, ')')
	if open < 0 || closing < open {
		return Signature{}, fmt.Errorf("unbalanced parentheses in %q", text)
	}

	name := strings.TrimSpace(text[:open])
	if name == "" {
		return Signature{}, fmt.Errorf("missing method name in %q", text)
	}

	sig := Signature{Name: name}

	if params := strings.TrimSpace(text[open+1 : closing]); params != "" {
		for _, token := range strings.Split(params, ",") {
			desc, err := parseType(strings.TrimSpace(token))
			if err != nil {
				return Signature{}, err
			}
			sig.ParameterTypes = append(sig.ParameterTypes, desc)
		}
	}

	// The return type is optional; a colon after the parameter list
	// introduces it.
	if colon := strings.LastIndexByte(text, ':'); colon > closing {
		desc, err := parseType(strings.TrimSpace(text[colon+1:]))
		if err != nil {
			return Signature{}, err
		}
		sig.ReturnType = &desc
	} else if tail := strings.TrimSpace(text[closing+1:]); tail != "" {
		return Signature{}, fmt.Errorf("trailing input %q", tail)
	}

	return sig, nil
}

func parseType(token string) (TypeDescriptor, error) {
	if token == "" {
		return TypeDescriptor{}, errors.New("empty type token")
	}

	if dim := strings.IndexFunc(token, func(r rune) bool { return r != '[' }); dim > 0 {
		elem, err := parseScalarType(token[dim:])
		if err != nil {
			return TypeDescriptor{}, err
		}
		return TypeDescriptor{Elem: &elem, Dim: dim}, nil
	}

	return parseScalarType(token)
}

func parseScalarType(token string) (TypeDescriptor, error) {
	if len(token) == 1 {
		switch Kind(token[0]) {
		case KindBool, KindInt8, KindRune, KindFloat64, KindFloat32, KindInt, KindInt64, KindInt16:
			return TypeDescriptor{Primitive: Kind(token[0])}, nil
		}
	}

	name := token
	if strings.HasPrefix(token, "L") && strings.HasSuffix(token, ";") {
		name = token[1 : len(token)-1]
	}
	if name == "" || strings.ContainsAny(name, "[;()") {
		return TypeDescriptor{}, fmt.Errorf("invalid type token %q", token)
	}

	return TypeDescriptor{Name: name}, nil
}
