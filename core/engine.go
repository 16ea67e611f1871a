package core

import (
	"github.com/wessbas/reflectcall/core/codec"
	"github.com/wessbas/reflectcall/core/registry"
	"github.com/wessbas/reflectcall/core/resolver"
	"github.com/wessbas/reflectcall/core/signature"
	"github.com/wessbas/reflectcall/core/telemetry"
	"github.com/wessbas/reflectcall/core/vars"
)

// EngineOption applies a configuration option to an engine under
// construction.
type EngineOption func(opts *engineOptions) error

// engineOptions holds advanced options for configuring an Engine instance.
type engineOptions struct {
	registry           *registry.Registry
	pool               *vars.Pool
	validateSignatures bool
	strictVisibility   bool
	tracing            *telemetry.TracingHandler
}

// Engine is the dynamic invocation engine. It resolves a textual target and
// method signature, converts string-encoded arguments into typed values and
// invokes the located method, publishing the result to the variable pool
// when a return variable is named.
type Engine struct {
	reg              *registry.Registry
	pool             *vars.Pool
	conv             *codec.Converter
	res              *resolver.Resolver
	parser           signature.Parser
	strictVisibility bool
	tracing          *telemetry.TracingHandler
}

// New creates an engine. By default signature validation is enabled, name
// visibility is relaxed (wire-form method names match their exported Go
// methods) and a fresh registry and variable pool are used.
func New(options ...EngineOption) (*Engine, error) {
	opts := engineOptions{
		validateSignatures: true,
	}
	for _, option := range options {
		if err := option(&opts); err != nil {
			return nil, err
		}
	}

	if opts.registry == nil {
		opts.registry = registry.New()
	}
	if opts.pool == nil {
		opts.pool = vars.NewPool()
	}

	conv := codec.NewConverter(opts.registry)

	return &Engine{
		reg:              opts.registry,
		pool:             opts.pool,
		conv:             conv,
		res:              resolver.New(opts.pool, conv, opts.registry),
		parser:           signature.Parser{Validate: opts.validateSignatures},
		strictVisibility: opts.strictVisibility,
		tracing:          opts.tracing,
	}, nil
}

// WithTypeRegistry sets the type registry shared by the locator, the value
// resolver and the object codec.
func WithTypeRegistry(reg *registry.Registry) EngineOption {
	return func(o *engineOptions) error {
		o.registry = reg
		return nil
	}
}

// WithPool sets the variable pool. Sharing a pool between engines lets
// their invocations exchange results within a thread.
func WithPool(pool *vars.Pool) EngineOption {
	return func(o *engineOptions) error {
		o.pool = pool
		return nil
	}
}

// WithSignatureValidation toggles grammar validation of signature strings
// before parsing. With validation disabled, malformed signatures surface
// later as method-not-found errors.
func WithSignatureValidation(validate bool) EngineOption {
	return func(o *engineOptions) error {
		o.validateSignatures = validate
		return nil
	}
}

// WithStrictVisibility restricts method lookup to verbatim signature
// names, disabling the wire-form to exported-name mapping.
func WithStrictVisibility(strict bool) EngineOption {
	return func(o *engineOptions) error {
		o.strictVisibility = strict
		return nil
	}
}

// WithTracing enables span creation around invocations.
func WithTracing(th *telemetry.TracingHandler) EngineOption {
	return func(o *engineOptions) error {
		o.tracing = th
		return nil
	}
}

// Registry returns the engine's type registry.
func (e *Engine) Registry() *registry.Registry {
	return e.reg
}

// Pool returns the engine's variable pool.
func (e *Engine) Pool() *vars.Pool {
	return e.pool
}

// Converter returns the engine's object codec.
func (e *Engine) Converter() *codec.Converter {
	return e.conv
}
