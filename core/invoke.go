package core

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wessbas/reflectcall/core/logger"
	"github.com/wessbas/reflectcall/core/signature"
	"github.com/wessbas/reflectcall/core/telemetry"
	"github.com/wessbas/reflectcall/core/vars"
)

// argNamePrefix is the prefix of generated positional parameter names:
// arg0, arg1, arg2, ...
const argNamePrefix = "arg"

var (
	// ErrAmbiguousTarget is returned when both a class name and an object
	// string are supplied.
	ErrAmbiguousTarget = errors.New("ambiguous class/object definition")

	// ErrUndefinedTarget is returned when neither a class name nor an
	// object string is supplied.
	ErrUndefinedTarget = errors.New("no class/object information available")

	// ErrClassNotFound is returned when a class name does not resolve to a
	// registered type.
	ErrClassNotFound = errors.New("could not associate class name with any registered type")

	// ErrInvalidTarget is returned when an object string cannot be
	// resolved to a target instance.
	ErrInvalidTarget = errors.New("class/object information invalid")

	// ErrUndefinedParameter is returned when a declared parameter slot has
	// no supplied value.
	ErrUndefinedParameter = errors.New("undefined parameter value")

	// ErrInvocationFailed is returned when the located method itself fails.
	ErrInvocationFailed = errors.New("method invocation failed")
)

// Request describes one invocation. Exactly one of ClassName and
// ObjectString must be set: a class name selects a registered type and the
// method is called on a fresh zero value of it, an object string is
// resolved through the value resolver (reference, encoded object) to an
// instance. Arguments are keyed by positional names arg0..argN.
type Request struct {
	ThreadID        string
	ClassName       string
	ObjectString    string
	MethodSignature string
	Arguments       map[string]string
	ReturnVariable  string

	// EncodeReturn stores the return value in encoded string form instead
	// of a call-result wrapper, so it survives string-only variable
	// channels.
	EncodeReturn bool
}

// Outcome carries the return value of a successful invocation, both raw
// and in string form for reporting.
type Outcome struct {
	Value  any
	String string
}

// Invoke performs one synchronous invocation. A failed invocation is
// reported once and never retried.
func (e *Engine) Invoke(ctx context.Context, req Request) (Outcome, error) {
	if e.tracing == nil {
		return e.invoke(ctx, req)
	}

	ctx, span := e.tracing.StartNewSpan(ctx, "engine.Invoke", trace.WithAttributes(
		telemetry.MethodAttribute(req.MethodSignature),
		telemetry.TargetAttribute(targetDescription(req)),
	))
	defer span.End()

	outcome, err := e.invoke(ctx, req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	return outcome, err
}

func targetDescription(req Request) string {
	if req.ClassName != "" {
		return req.ClassName
	}

	return "object"
}

func (e *Engine) invoke(ctx context.Context, req Request) (Outcome, error) {
	target, err := e.resolveTarget(req)
	if err != nil {
		return Outcome{}, err
	}

	return e.invokeOn(ctx, target, req)
}

// InvokeOn performs an invocation on a live target instance, bypassing
// class-name and object-string resolution. It serves programmatic chained
// calls where the host already holds the receiver.
func (e *Engine) InvokeOn(ctx context.Context, target any, req Request) (Outcome, error) {
	if target == nil {
		return Outcome{}, ErrUndefinedTarget
	}

	return e.invokeOn(ctx, reflect.ValueOf(target), req)
}

func (e *Engine) invokeOn(_ context.Context, target reflect.Value, req Request) (Outcome, error) {
	sig, err := e.parser.Parse(req.MethodSignature)
	if err != nil {
		return Outcome{}, err
	}

	method, err := signature.Locate(target.Type(), sig, e.reg, e.strictVisibility)
	if err != nil {
		return Outcome{}, err
	}

	args, err := e.resolveArguments(req, method, target)
	if err != nil {
		return Outcome{}, err
	}

	result, err := e.call(method, args)
	if err != nil {
		return Outcome{}, err
	}

	if req.ReturnVariable != "" && result != nil {
		if err := e.storeResult(req, result); err != nil {
			return Outcome{}, err
		}
	}

	logger.Logger().WithField("method", sig.Name).Debug("invocation completed")

	return Outcome{Value: result, String: fmt.Sprintf("%v", result)}, nil
}

// resolveTarget resolves the request's class name or object string to a
// receiver value. The two paths are mutually exclusive.
func (e *Engine) resolveTarget(req Request) (reflect.Value, error) {
	hasClass := req.ClassName != ""
	hasObject := req.ObjectString != ""

	switch {
	case hasClass && hasObject:
		return reflect.Value{}, ErrAmbiguousTarget
	case hasClass:
		t, ok := e.reg.Type(req.ClassName)
		if !ok {
			return reflect.Value{}, fmt.Errorf("%w: %q", ErrClassNotFound, req.ClassName)
		}
		return instantiate(t), nil
	case hasObject:
		anyType := reflect.TypeOf((*any)(nil)).Elem()
		v, err := e.res.Resolve(req.ThreadID, anyType, req.ObjectString)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %v", ErrInvalidTarget, err)
		}
		return v, nil
	default:
		return reflect.Value{}, ErrUndefinedTarget
	}
}

// instantiate produces a fresh receiver for a class-name target. Pointer
// registrations receive a new pointee so that pointer-receiver methods are
// callable.
func instantiate(t reflect.Type) reflect.Value {
	if t.Kind() == reflect.Pointer {
		return reflect.New(t.Elem())
	}

	return reflect.New(t).Elem()
}

// resolveArguments fetches each positional argument by its generated name
// and resolves it against the method's declared parameter type. Any single
// failure aborts the whole call with the parameter's name and type in the
// error.
func (e *Engine) resolveArguments(req Request, method reflect.Method, target reflect.Value) ([]reflect.Value, error) {
	mt := method.Func.Type()
	n := mt.NumIn() - 1 // excluding the receiver

	args := make([]reflect.Value, 0, n+1)
	args = append(args, target)

	for i := 0; i < n; i++ {
		name := fmt.Sprintf("%s%d", argNamePrefix, i)
		paramType := mt.In(i + 1)

		raw, ok := req.Arguments[name]
		if !ok {
			return nil, fmt.Errorf("%w for argument %q", ErrUndefinedParameter, name)
		}

		value, err := e.res.Resolve(req.ThreadID, paramType, raw)
		if err != nil {
			logger.Logger().WithField("argument", name).Warnf("argument resolution failed: %v", err)
			return nil, fmt.Errorf("invalid parameter value for argument %q (type %s): %w", name, paramType, err)
		}

		args = append(args, value)
	}

	return args, nil
}

// call performs the reflective invocation. A panic in the callee is
// recovered and reported as an invocation failure; a non-nil trailing
// error return is treated the same way. Multiple non-error return values
// are collected into a slice.
func (e *Engine) call(method reflect.Method, args []reflect.Value) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %q: %v", ErrInvocationFailed, method.Name, r)
		}
	}()

	mt := method.Func.Type()
	out := method.Func.Call(args)

	if n := len(out); n > 0 && isErrorType(mt.Out(n-1)) {
		if callErr, _ := out[n-1].Interface().(error); callErr != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvocationFailed, method.Name, callErr)
		}
		out = out[:n-1]
	}

	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	default:
		values := make([]any, 0, len(out))
		for _, v := range out {
			values = append(values, v.Interface())
		}
		return values, nil
	}
}

func isErrorType(t reflect.Type) bool {
	return t == reflect.TypeOf((*error)(nil)).Elem()
}

// storeResult publishes the return value to the calling thread's partition,
// wrapped as a call-result so later resolutions never re-parse it, or in
// encoded string form when the request asks for it.
func (e *Engine) storeResult(req Request, result any) error {
	if req.EncodeReturn {
		encoded, err := e.conv.Encode(result)
		if err != nil {
			return fmt.Errorf("could not store variable %q: %w", req.ReturnVariable, err)
		}
		return e.pool.Set(req.ThreadID, req.ReturnVariable, encoded)
	}

	return e.pool.Set(req.ThreadID, req.ReturnVariable, &vars.CallResult{Value: result})
}
