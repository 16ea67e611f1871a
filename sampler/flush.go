package sampler

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wessbas/reflectcall/core/vars"
)

// ParamFlushVariables names the parameter carrying the comma-separated
// list of variables to flush.
const ParamFlushVariables = "variables"

const messageFlushFailure = "could not complete flush operation; removed variables: %s; failed removals: %s"

// FlushClient removes variables from a thread's partition of the variable
// pool. It backs the cleanup sampler that test plans schedule at the end
// of a thread's session.
type FlushClient struct {
	pool *vars.Pool
}

// NewFlushClient creates a flush client for the given pool.
func NewFlushClient(pool *vars.Pool) *FlushClient {
	return &FlushClient{pool: pool}
}

// DefaultParameters returns the flush sampler's parameter table.
func (c *FlushClient) DefaultParameters() Params {
	return Params{ParamFlushVariables: ""}
}

// Run removes the listed variables from the thread's partition. An empty
// list or the wildcard "*" removes the whole partition. Removal of an
// unknown or malformed name fails the sample but does not stop the
// remaining removals.
func (c *FlushClient) Run(threadID string, params Params) (result Result) {
	result = Result{
		ID:    uuid.New(),
		Label: "flush",
		Start: time.Now(),
	}
	defer func() { result.Elapsed = time.Since(result.Start) }()

	names := splitVariableNames(params[ParamFlushVariables])
	if len(names) == 0 {
		c.pool.RemoveAll(threadID)
		result.Success = true
		result.ResponseCode = responseCodeOK
		result.ResponseMessage = messageSuccess
		return result
	}

	var removed, failed []string
	for _, name := range names {
		if _, ok := c.pool.Remove(threadID, name); ok {
			removed = append(removed, name)
		} else {
			failed = append(failed, name)
		}
	}

	if len(failed) > 0 {
		result.Success = false
		result.ResponseCode = responseCodeFailure
		result.ResponseMessage = fmt.Sprintf(
			messageFlushFailure,
			joinOrNone(removed),
			strings.Join(failed, ", "),
		)
		return result
	}

	result.Success = true
	result.ResponseCode = responseCodeOK
	result.ResponseMessage = messageSuccess
	result.ResponseData = joinOrNone(removed)

	return result
}

func splitVariableNames(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return nil
	}

	parts := strings.Split(s, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		names = append(names, strings.TrimSpace(part))
	}

	return names
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "none"
	}

	return strings.Join(names, ", ")
}
