package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoSigner is returned when a transaction is requested from a client that
// was constructed without a signer.
var ErrNoSigner = errors.New("gateway: no signer bound")

// ArgumentError reports arguments that do not match the declared parameter
// list of a function. It is raised locally before any request is sent.
type ArgumentError struct {
	Function string
	Index    int
	Reason   string
}

func (e *ArgumentError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("gateway: %s: %s", e.Function, e.Reason)
	}
	return fmt.Sprintf("gateway: %s: argument %d: %s", e.Function, e.Index, e.Reason)
}

// APIError is a non-2xx response from the fullnode.
type APIError struct {
	StatusCode  int     `json:"-"`
	Message     string  `json:"message"`
	ErrorCode   string  `json:"error_code"`
	VMErrorCode *uint64 `json:"vm_error_code"`
}

func (e *APIError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("node returned %d %s: %s", e.StatusCode, e.ErrorCode, e.Message)
	}
	return fmt.Sprintf("node returned %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports a 404 from the node (unknown account, resource or
// transaction hash).
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// vmStatusAborted is the Move VM status of an explicit abort.
const vmStatusAborted = 4016

// IsMoveAbort reports whether the remote Move code aborted while serving the
// request. View functions use aborts to signal missing entities. Other VM
// failures, such as a function that cannot be resolved at the configured
// package address, are not aborts.
func (e *APIError) IsMoveAbort() bool {
	if e.VMErrorCode != nil {
		return *e.VMErrorCode == vmStatusAborted
	}
	return strings.Contains(strings.ToLower(e.Message), "move abort")
}

// SubmissionError means the transaction never reached the mempool: building,
// signing or broadcasting it failed.
type SubmissionError struct {
	Function string
	Stage    string
	Err      error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submit %s: %s: %v", e.Function, e.Stage, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// ExecutionError means the transaction was committed but the Move call
// aborted. VMStatus carries the node's abort reason verbatim.
type ExecutionError struct {
	Function string
	Hash     string
	VMStatus string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("transaction %s (%s) failed: %s", e.Hash, e.Function, e.VMStatus)
}

// DecodingError means a response did not have the expected shape, which
// indicates a mismatch between this client and the deployed contract.
type DecodingError struct {
	Function string
	Index    int
	Err      error
}

func (e *DecodingError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("decode %s: %v", e.Function, e.Err)
	}
	return fmt.Sprintf("decode %s: return value %d: %v", e.Function, e.Index, e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var (
		argErr  *ArgumentError
		apiErr  *APIError
		execErr *ExecutionError
		decErr  *DecodingError
	)
	switch {
	case errors.As(err, &argErr):
		return "argument_error"
	case errors.As(err, &execErr):
		return "aborted"
	case errors.As(err, &apiErr):
		if apiErr.IsMoveAbort() {
			return "aborted"
		}
		return "api_error"
	case errors.As(err, &decErr):
		return "decode_error"
	default:
		return "transport_error"
	}
}
