package protocol

import (
	"encoding/json"
	"fmt"
)

// DecodeRequest parses one line of input into a Request. A line that is not
// a valid JSON object yields a zero-method Request together with the parse
// error; the caller keeps the session alive and the zero method falls through
// to the unknown-method fault. Blank lines never reach the codec.
func DecodeRequest(line []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return Request{}, fmt.Errorf("decode request: %w", err)
	}
	return req, nil
}

// NewSuccess builds a success response envelope
func NewSuccess(id int64, result interface{}) *Response {
	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Result:  result,
	}
}

// NewError builds a failure response envelope
func NewError(id int64, code int, message string) *Response {
	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error:   &Error{Code: code, Message: message},
	}
}

// EncodeResponse marshals a response as a single protocol line, trailing
// newline included. String escaping is the encoder's job; nothing here is
// built by hand.
func EncodeResponse(resp *Response) ([]byte, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return append(data, '\n'), nil
}
