package signature

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

type calculator struct{}

func (calculator) Add(a, b int) int       { return a + b }
func (calculator) Add64(a, b int64) int64 { return a + b }

func (calculator) Join(parts []string) string {
	out := ""
	for _, p := range parts {
		out += p
	}
	return out
}

type counter struct{ n int }

func (c *counter) Inc() int { c.n++; return c.n }

type mapResolver map[string]reflect.Type

func (m mapResolver) Type(name string) (reflect.Type, bool) {
	t, ok := m[name]
	return t, ok
}

func mustParse(t *testing.T, text string) Signature {
	t.Helper()

	sig, err := Parser{Validate: true}.Parse(text)
	require.NoError(t, err)

	return sig
}

func TestLocateExactMatch(t *testing.T) {
	resolver := mapResolver{"string": reflect.TypeOf("")}
	target := reflect.TypeOf(calculator{})

	method, err := Locate(target, mustParse(t, "Add(I,I):I"), resolver, false)
	require.NoError(t, err)
	require.Equal(t, "Add", method.Name)

	method, err = Locate(target, mustParse(t, "Join([Lstring;):Lstring;"), resolver, false)
	require.NoError(t, err)
	require.Equal(t, "Join", method.Name)
}

func TestLocateParameterTypesMustMatchExactly(t *testing.T) {
	resolver := mapResolver{}
	target := reflect.TypeOf(calculator{})

	// Add takes int, not int64; no widening is attempted.
	_, err := Locate(target, mustParse(t, "Add(J,J):J"), resolver, false)
	require.ErrorIs(t, err, ErrMethodNotFound)

	_, err = Locate(target, mustParse(t, "Add(I)"), resolver, false)
	require.ErrorIs(t, err, ErrMethodNotFound)

	method, err := Locate(target, mustParse(t, "Add64(J,J)"), resolver, false)
	require.NoError(t, err)
	require.Equal(t, "Add64", method.Name)
}

func TestLocateReturnTypeNotPartOfLookup(t *testing.T) {
	target := reflect.TypeOf(calculator{})

	// A mismatched declared return type still locates the method.
	method, err := Locate(target, mustParse(t, "Add(I,I):Z"), mapResolver{}, false)
	require.NoError(t, err)
	require.Equal(t, "Add", method.Name)
}

func TestLocateWireNameMapping(t *testing.T) {
	target := reflect.TypeOf(calculator{})

	method, err := Locate(target, mustParse(t, "add(I,I)"), mapResolver{}, false)
	require.NoError(t, err)
	require.Equal(t, "Add", method.Name)

	// Strict visibility restricts lookup to the verbatim name.
	_, err = Locate(target, mustParse(t, "add(I,I)"), mapResolver{}, true)
	require.ErrorIs(t, err, ErrMethodNotFound)

	method, err = Locate(target, mustParse(t, "Add(I,I)"), mapResolver{}, true)
	require.NoError(t, err)
	require.Equal(t, "Add", method.Name)
}

func TestLocatePointerReceiver(t *testing.T) {
	method, err := Locate(reflect.TypeOf(&counter{}), mustParse(t, "inc():I"), mapResolver{}, false)
	require.NoError(t, err)
	require.Equal(t, "Inc", method.Name)

	// The value type does not carry pointer-receiver methods.
	_, err = Locate(reflect.TypeOf(counter{}), mustParse(t, "inc():I"), mapResolver{}, false)
	require.ErrorIs(t, err, ErrMethodNotFound)
}

func TestLocateUnresolvableParameterType(t *testing.T) {
	_, err := Locate(reflect.TypeOf(calculator{}), mustParse(t, "Add(no.Such.Type)"), mapResolver{}, false)
	require.ErrorIs(t, err, ErrMethodNotFound)
}

func TestResolveTypeArrays(t *testing.T) {
	desc := TypeDescriptor{Elem: &TypeDescriptor{Primitive: KindInt}, Dim: 2}

	resolved, err := desc.ResolveType(mapResolver{})
	require.NoError(t, err)
	require.Equal(t, reflect.TypeOf([][]int{}), resolved)
}
