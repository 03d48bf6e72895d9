package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestDecodeRequest(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantErr    bool
		wantMethod string
		wantID     *int64
		wantParams string
	}{
		{
			name:       "initialize request with id",
			line:       `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05"}}`,
			wantMethod: MethodInitialize,
			wantID:     int64Ptr(1),
			wantParams: `{"protocolVersion":"2024-11-05"}`,
		},
		{
			name:       "notification without id",
			line:       `{"jsonrpc":"2.0","method":"notifications/initialized"}`,
			wantMethod: MethodInitialized,
		},
		{
			name:       "missing method degrades to empty string",
			line:       `{"jsonrpc":"2.0","id":7}`,
			wantMethod: "",
			wantID:     int64Ptr(7),
		},
		{
			name:    "malformed JSON degrades to zero request",
			line:    `{"jsonrpc":"2.0","method":`,
			wantErr: true,
		},
		{
			name:    "valid JSON but not an object",
			line:    `[1,2,3]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := DecodeRequest([]byte(tt.line))
			if tt.wantErr {
				require.Error(t, err)
				// Degraded request must still be dispatchable.
				assert.Equal(t, "", req.Method)
				assert.Nil(t, req.ID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMethod, req.Method)
			if tt.wantID == nil {
				assert.Nil(t, req.ID)
			} else {
				require.NotNil(t, req.ID)
				assert.Equal(t, *tt.wantID, *req.ID)
			}
			if tt.wantParams != "" {
				assert.JSONEq(t, tt.wantParams, string(req.Params))
			}
		})
	}
}

func TestEncodeResponse(t *testing.T) {
	tests := []struct {
		name     string
		response *Response
		want     string
	}{
		{
			name:     "success with empty result",
			response: NewSuccess(3, struct{}{}),
			want:     `{"jsonrpc":"2.0","id":3,"result":{}}`,
		},
		{
			name:     "success with tool result",
			response: NewSuccess(1, TextResult("olleh")),
			want:     `{"jsonrpc":"2.0","id":1,"result":{"content":[{"type":"text","text":"olleh"}]}}`,
		},
		{
			name:     "error response",
			response: NewError(4, MethodNotFound, "Method not found: bogus"),
			want:     `{"jsonrpc":"2.0","id":4,"error":{"code":-32601,"message":"Method not found: bogus"}}`,
		},
		{
			name:     "text needing escaping survives the encoder",
			response: NewSuccess(2, TextResult(`say "hi" \ bye`)),
			want:     `{"jsonrpc":"2.0","id":2,"result":{"content":[{"type":"text","text":"say \"hi\" \\ bye"}]}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeResponse(tt.response)
			require.NoError(t, err)
			require.True(t, strings.HasSuffix(string(data), "\n"), "response must be newline terminated")
			line := strings.TrimSuffix(string(data), "\n")
			assert.False(t, strings.Contains(line, "\n"), "response must be a single line")
			assert.JSONEq(t, tt.want, line)
		})
	}
}

func TestEncodeResponse_NeverBothResultAndError(t *testing.T) {
	data, err := EncodeResponse(NewError(1, InternalError, "boom"))
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "error")
	assert.NotContains(t, decoded, "result")
}

func TestProtocolError(t *testing.T) {
	perr := NewToolNotFoundError("bogus")
	assert.Equal(t, MethodNotFound, perr.Code)
	assert.Equal(t, "Tool not found: bogus", perr.Message)
	assert.Contains(t, perr.Error(), "-32601")

	wire := perr.ToError()
	assert.Equal(t, perr.Code, wire.Code)
	assert.Equal(t, perr.Message, wire.Message)
}

func TestAsProtocolError(t *testing.T) {
	perr := NewInvalidParamsError("random: max must be a positive number")
	wrapped := fmt.Errorf("executing tool: %w", perr)

	got, ok := AsProtocolError(wrapped)
	require.True(t, ok)
	assert.Equal(t, InvalidParams, got.Code)

	_, ok = AsProtocolError(errors.New("plain failure"))
	assert.False(t, ok)
}

func TestNewMethodNotFoundError_EmptyMethod(t *testing.T) {
	perr := NewMethodNotFoundError("")
	assert.Equal(t, "Method not found: ", perr.Message)
}
