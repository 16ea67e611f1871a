package resolver

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wessbas/reflectcall/core/codec"
	"github.com/wessbas/reflectcall/core/registry"
	"github.com/wessbas/reflectcall/core/vars"
)

type point struct {
	X int `cbor:"x"`
	Y int `cbor:"y"`
}

func newTestResolver(t *testing.T) (*Resolver, *vars.Pool, *registry.Registry, *codec.Converter) {
	t.Helper()

	reg := registry.New()
	require.NoError(t, reg.RegisterType("geo.Point", point{}))

	pool := vars.NewPool()
	conv := codec.NewConverter(reg)

	return New(pool, conv, reg), pool, reg, conv
}

func TestResolvePrimitiveLiterals(t *testing.T) {
	res, _, _, _ := newTestResolver(t)

	testCases := []struct {
		name     string
		expected reflect.Type
		input    string
		want     any
	}{
		{name: "bool true", expected: reflect.TypeOf(false), input: "true", want: true},
		{name: "bool false", expected: reflect.TypeOf(false), input: "false", want: false},
		{name: "char", expected: reflect.TypeOf(rune(0)), input: "A", want: 'A'},
		{name: "char multibyte", expected: reflect.TypeOf(rune(0)), input: "é", want: 'é'},
		{name: "int decimal", expected: reflect.TypeOf(int(0)), input: "42", want: 42},
		{name: "int negative", expected: reflect.TypeOf(int(0)), input: "-7", want: -7},
		{name: "int hex", expected: reflect.TypeOf(int(0)), input: "0x1F", want: 31},
		{name: "int binary", expected: reflect.TypeOf(int(0)), input: "0b101", want: 5},
		{name: "int whitespace", expected: reflect.TypeOf(int(0)), input: "  42  ", want: 42},
		{name: "int8", expected: reflect.TypeOf(int8(0)), input: "-128", want: int8(-128)},
		{name: "int16", expected: reflect.TypeOf(int16(0)), input: "32767", want: int16(32767)},
		{name: "int64", expected: reflect.TypeOf(int64(0)), input: "9223372036854775807", want: int64(9223372036854775807)},
		{name: "float32", expected: reflect.TypeOf(float32(0)), input: "3.5", want: float32(3.5)},
		{name: "float64", expected: reflect.TypeOf(float64(0)), input: "2.5e3", want: float64(2500)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			value, err := res.Resolve("t", tc.expected, tc.input)
			require.NoError(t, err)
			require.Equal(t, tc.want, value.Interface())
		})
	}
}

func TestResolvePrimitiveLiteralErrors(t *testing.T) {
	res, _, _, _ := newTestResolver(t)

	testCases := []struct {
		name     string
		expected reflect.Type
		input    string
		sentinel error
	}{
		{name: "bool case sensitive", expected: reflect.TypeOf(false), input: "True", sentinel: ErrInvalidBoolean},
		{name: "bool numeric", expected: reflect.TypeOf(false), input: "1", sentinel: ErrInvalidBoolean},
		{name: "char too long", expected: reflect.TypeOf(rune(0)), input: "ab", sentinel: ErrInvalidChar},
		{name: "char empty", expected: reflect.TypeOf(rune(0)), input: "", sentinel: ErrInvalidChar},
		{name: "int not a number", expected: reflect.TypeOf(int(0)), input: "abc", sentinel: ErrInvalidNumber},
		{name: "int fractional", expected: reflect.TypeOf(int(0)), input: "4.2", sentinel: ErrInvalidNumber},
		{name: "int8 overflow", expected: reflect.TypeOf(int8(0)), input: "128", sentinel: ErrInvalidNumber},
		{name: "float malformed", expected: reflect.TypeOf(float64(0)), input: "1.2.3", sentinel: ErrInvalidNumber},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := res.Resolve("t", tc.expected, tc.input)
			require.ErrorIs(t, err, tc.sentinel)
		})
	}
}

func TestResolveStringLiterals(t *testing.T) {
	res, _, _, _ := newTestResolver(t)
	stringType := reflect.TypeOf("")

	value, err := res.Resolve("t", stringType, `"hello"`)
	require.NoError(t, err)
	require.Equal(t, "hello", value.Interface())

	value, err = res.Resolve("t", stringType, `""`)
	require.NoError(t, err)
	require.Equal(t, "", value.Interface())

	for _, input := range []string{`"unbalanced`, `unbalanced"`, `"`} {
		_, err = res.Resolve("t", stringType, input)
		require.ErrorIs(t, err, ErrImproperQuoting, "input %q", input)
	}
}

func TestResolveNull(t *testing.T) {
	res, _, _, _ := newTestResolver(t)

	value, err := res.Resolve("t", reflect.TypeOf(&point{}), "null")
	require.NoError(t, err)
	require.True(t, value.IsNil())

	value, err = res.Resolve("t", reflect.TypeOf([]int{}), "null")
	require.NoError(t, err)
	require.True(t, value.IsNil())

	value, err = res.Resolve("t", reflect.TypeOf(""), "null")
	require.NoError(t, err)
	require.Equal(t, "", value.Interface())
}

func TestResolveEncodedObject(t *testing.T) {
	res, _, _, conv := newTestResolver(t)

	encoded, err := conv.Encode(point{X: 1, Y: 2})
	require.NoError(t, err)

	value, err := res.Resolve("t", reflect.TypeOf(point{}), encoded)
	require.NoError(t, err)
	require.Equal(t, point{X: 1, Y: 2}, value.Interface())

	_, err = res.Resolve("t", reflect.TypeOf(point{}), `\obj{broken}`)
	require.ErrorIs(t, err, codec.ErrCorruptPayload)
}

func TestResolveStaticValues(t *testing.T) {
	res, _, reg, _ := newTestResolver(t)
	require.NoError(t, reg.RegisterStatic("geo.Origin.NAME", "origin"))

	value, err := res.Resolve("t", reflect.TypeOf(""), "geo.Origin.NAME")
	require.NoError(t, err)
	require.Equal(t, "origin", value.Interface())

	_, err = res.Resolve("t", reflect.TypeOf(""), "geo.Origin.MISSING")
	require.ErrorIs(t, err, ErrStaticFieldNotFound)
}

func TestResolveReferences(t *testing.T) {
	res, pool, _, _ := newTestResolver(t)

	require.NoError(t, pool.Set("t", "n", "42"))

	value, err := res.Resolve("t", reflect.TypeOf(int(0)), "${n}")
	require.NoError(t, err)
	require.Equal(t, 42, value.Interface())

	// Stored strings resolve recursively, so a variable may hold another
	// reference.
	require.NoError(t, pool.Set("t", "a", `"done"`))
	require.NoError(t, pool.Set("t", "b", "${a}"))

	value, err = res.Resolve("t", reflect.TypeOf(""), "${b}")
	require.NoError(t, err)
	require.Equal(t, "done", value.Interface())
}

func TestResolveUndefinedReference(t *testing.T) {
	res, pool, _, _ := newTestResolver(t)

	_, err := res.Resolve("t", reflect.TypeOf(""), "${missing}")
	require.ErrorIs(t, err, ErrUndefinedReference)

	// Partitions are thread scoped; another thread's variable is invisible.
	require.NoError(t, pool.Set("other", "v", `"x"`))

	_, err = res.Resolve("t", reflect.TypeOf(""), "${v}")
	require.ErrorIs(t, err, ErrUndefinedReference)
}

func TestResolveReferenceLoop(t *testing.T) {
	res, pool, _, _ := newTestResolver(t)

	require.NoError(t, pool.Set("t", "loop", "${loop}"))

	_, err := res.Resolve("t", reflect.TypeOf(""), "${loop}")
	require.ErrorIs(t, err, ErrReferenceLoop)
}

func TestResolveCallResultPassThrough(t *testing.T) {
	res, pool, _, _ := newTestResolver(t)

	// A call result is never re-parsed; reference syntax inside it stays
	// literal.
	require.NoError(t, pool.Set("t", "r", &vars.CallResult{Value: "${a}"}))

	value, err := res.Resolve("t", reflect.TypeOf(""), "${r}")
	require.NoError(t, err)
	require.Equal(t, "${a}", value.Interface())
}

func TestResolveCallResultTypeMismatch(t *testing.T) {
	res, pool, _, _ := newTestResolver(t)

	require.NoError(t, pool.Set("t", "r", &vars.CallResult{Value: "text"}))

	_, err := res.Resolve("t", reflect.TypeOf(int(0)), "${r}")
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestResolveCallResultConversion(t *testing.T) {
	type quantity int

	res, pool, _, _ := newTestResolver(t)

	require.NoError(t, pool.Set("t", "q", &vars.CallResult{Value: quantity(5)}))

	value, err := res.Resolve("t", reflect.TypeOf(int(0)), "${q}")
	require.NoError(t, err)
	require.Equal(t, 5, value.Interface())
}

func TestValueErrorMessage(t *testing.T) {
	res, _, _, _ := newTestResolver(t)

	_, err := res.Resolve("t", reflect.TypeOf(false), "maybe")
	require.Error(t, err)
	require.Contains(t, err.Error(), `"maybe"`)
	require.Contains(t, err.Error(), "bool")
}
