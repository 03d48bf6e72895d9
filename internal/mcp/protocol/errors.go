package protocol

import (
	"errors"
	"fmt"
)

// ProtocolError is a fault that surfaces as a JSON-RPC error object on the
// wire while still travelling through ordinary Go error returns.
type ProtocolError struct {
	Code    int
	Message string
}

// Error implements the error interface
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error %d: %s", e.Code, e.Message)
}

// ToError converts a ProtocolError to its wire representation
func (e *ProtocolError) ToError() *Error {
	return &Error{Code: e.Code, Message: e.Message}
}

// NewMethodNotFoundError creates the fault for an unrecognized method. The
// raw method string is carried verbatim, including the empty string.
func NewMethodNotFoundError(method string) *ProtocolError {
	return &ProtocolError{
		Code:    MethodNotFound,
		Message: "Method not found: " + method,
	}
}

// NewToolNotFoundError creates the fault for a tools/call naming an
// unregistered tool.
func NewToolNotFoundError(toolName string) *ProtocolError {
	return &ProtocolError{
		Code:    MethodNotFound,
		Message: "Tool not found: " + toolName,
	}
}

// NewInvalidParamsError creates an argument-validation fault
func NewInvalidParamsError(message string) *ProtocolError {
	return &ProtocolError{
		Code:    InvalidParams,
		Message: message,
	}
}

// AsProtocolError unwraps err into a ProtocolError if one is in its chain
func AsProtocolError(err error) (*ProtocolError, bool) {
	var perr *ProtocolError
	if errors.As(err, &perr) {
		return perr, true
	}
	return nil, false
}
