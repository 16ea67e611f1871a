package sampler

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidRequest is returned when a JSON request document fails schema
// validation.
var ErrInvalidRequest = errors.New("invalid sampler request")

// requestSchema validates the JSON request form before any field is
// interpreted, so malformed documents are rejected with a field-level
// message instead of a downstream resolution error.
const requestSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"class":     {"type": "string"},
		"object":    {"type": "string"},
		"method":    {"type": "string", "minLength": 1},
		"rvariable": {"type": "string", "pattern": "^([A-Za-z_][A-Za-z0-9_]*)?$"},
		"rvencoded": {"type": "boolean"},
		"args": {
			"type": "object",
			"additionalProperties": {"type": "string"}
		}
	},
	"required": ["method"],
	"additionalProperties": false
}`

var requestSchemaLoader = gojsonschema.NewStringLoader(requestSchema)

// jsonRequest is the JSON request form delivered by hosts that transport
// parameter tables as documents rather than flat tables.
type jsonRequest struct {
	Class     string            `json:"class"`
	Object    string            `json:"object"`
	Method    string            `json:"method"`
	RVariable string            `json:"rvariable"`
	REncoded  bool              `json:"rvencoded"`
	Args      map[string]string `json:"args"`
}

// ParseRequest validates and converts a JSON request document into a
// sampler parameter table.
func ParseRequest(data []byte) (Params, error) {
	validation, err := gojsonschema.Validate(requestSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	if !validation.Valid() {
		details := make([]string, 0, len(validation.Errors()))
		for _, desc := range validation.Errors() {
			details = append(details, desc.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(details, "; "))
	}

	var req jsonRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	params := Params{
		ParamClassName:       req.Class,
		ParamObjectString:    req.Object,
		ParamMethodSignature: req.Method,
		ParamReturnVariable:  req.RVariable,
	}
	if req.REncoded {
		params[ParamEncodeReturn] = "true"
	}
	for name, value := range req.Args {
		params[name] = value
	}

	return params, nil
}
