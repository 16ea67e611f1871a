package registry

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct {
	Name string
}

func TestRegisterAndResolveType(t *testing.T) {
	reg := New()

	require.NoError(t, reg.RegisterType("pkg.Sample", sample{}))

	resolved, ok := reg.Type("pkg.Sample")
	require.True(t, ok)
	require.Equal(t, reflect.TypeOf(sample{}), resolved)

	name, ok := reg.NameFor(reflect.TypeOf(sample{}))
	require.True(t, ok)
	require.Equal(t, "pkg.Sample", name)
}

func TestBuiltinTypes(t *testing.T) {
	reg := New()

	for name, specimen := range map[string]any{
		"bool":    false,
		"int":     int(0),
		"int64":   int64(0),
		"float64": float64(0),
		"string":  "",
	} {
		resolved, ok := reg.Type(name)
		require.True(t, ok, "builtin %q missing", name)
		require.Equal(t, reflect.TypeOf(specimen), resolved)
	}
}

func TestRegisterTypeErrors(t *testing.T) {
	reg := New()

	require.ErrorIs(t, reg.RegisterType("1bad", sample{}), ErrInvalidTypeName)
	require.ErrorIs(t, reg.RegisterType("pkg..Sample", sample{}), ErrInvalidTypeName)
	require.ErrorIs(t, reg.RegisterType("pkg.Sample", nil), ErrNilSpecimen)
}

func TestUnknownType(t *testing.T) {
	reg := New()

	_, ok := reg.Type("no.Such.Type")
	require.False(t, ok)
}

func TestStatics(t *testing.T) {
	reg := New()

	require.NoError(t, reg.RegisterStatic("pkg.Limits.MAX", 100))

	value, ok := reg.Static("pkg.Limits.MAX")
	require.True(t, ok)
	require.Equal(t, 100, value)

	_, ok = reg.Static("pkg.Limits.MIN")
	require.False(t, ok)

	require.ErrorIs(t, reg.RegisterStatic("not a path", 1), ErrInvalidStaticPath)
}
