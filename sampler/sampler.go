// Package sampler adapts the invocation engine to a load-test host that
// delivers configuration as a flat parameter table and consumes a
// success/failure result per sample.
package sampler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wessbas/reflectcall/core"
)

// Parameter names of the reflective sampler's table.
const (
	ParamClassName       = "class"
	ParamObjectString    = "object"
	ParamMethodSignature = "method"
	ParamReturnVariable  = "rvariable"
	ParamEncodeReturn    = "rvencoded"

	// ArgNamePrefix prefixes positional argument parameters: arg0, arg1...
	ArgNamePrefix = "arg"

	// defaultParameterSlots is the number of empty argument rows offered
	// in the default parameter table.
	defaultParameterSlots = 20
)

const (
	messageSuccess      = "Operation successful."
	messageFailure      = "An exception occurred: %s"
	responseCodeOK      = "200"
	responseCodeFailure = "500"
)

// Params is one sampler parameter table.
type Params map[string]string

// Result is the outcome of one sample.
type Result struct {
	ID              uuid.UUID
	Label           string
	Success         bool
	ResponseCode    string
	ResponseMessage string
	ResponseData    string
	Start           time.Time
	Elapsed         time.Duration
}

// Client runs reflective samples against an engine.
type Client struct {
	engine *core.Engine
}

// NewClient creates a sampler client.
func NewClient(engine *core.Engine) *Client {
	return &Client{engine: engine}
}

// DefaultParameters returns the parameter table offered to the operator:
// the target, signature and return-variable rows plus a fixed number of
// empty argument slots.
func (c *Client) DefaultParameters() Params {
	params := Params{
		ParamClassName:       "",
		ParamObjectString:    "",
		ParamMethodSignature: "",
		ParamReturnVariable:  "",
	}
	for i := 0; i < defaultParameterSlots; i++ {
		params[fmt.Sprintf("%s%d", ArgNamePrefix, i)] = ""
	}

	return params
}

// Run executes one sample on behalf of the given logical thread. The
// invocation error message, if any, is reported verbatim in the result's
// response message.
func (c *Client) Run(ctx context.Context, threadID string, params Params) Result {
	result := Result{
		ID:    uuid.New(),
		Label: params[ParamMethodSignature],
		Start: time.Now(),
	}

	outcome, err := c.engine.Invoke(ctx, requestFromParams(threadID, params))
	result.Elapsed = time.Since(result.Start)

	if err != nil {
		result.Success = false
		result.ResponseCode = responseCodeFailure
		result.ResponseMessage = fmt.Sprintf(messageFailure, err)
		return result
	}

	result.Success = true
	result.ResponseCode = responseCodeOK
	result.ResponseMessage = messageSuccess
	result.ResponseData = outcome.String

	return result
}

// requestFromParams maps a parameter table to an invocation request. Rows
// other than the well-known ones are passed through as arguments, so the
// engine sees exactly the argN slots the operator filled in.
func requestFromParams(threadID string, params Params) core.Request {
	req := core.Request{
		ThreadID:        threadID,
		ClassName:       params[ParamClassName],
		ObjectString:    params[ParamObjectString],
		MethodSignature: params[ParamMethodSignature],
		ReturnVariable:  params[ParamReturnVariable],
		EncodeReturn:    params[ParamEncodeReturn] == "true",
		Arguments:       make(map[string]string),
	}

	for name, value := range params {
		switch name {
		case ParamClassName, ParamObjectString, ParamMethodSignature, ParamReturnVariable, ParamEncodeReturn:
			continue
		}
		if value != "" {
			req.Arguments[name] = value
		}
	}

	return req
}
