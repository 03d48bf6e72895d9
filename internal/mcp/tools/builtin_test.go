package tools

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-testbed/internal/mcp/protocol"
)

func callTool(t *testing.T, r *Registry, name string, args map[string]interface{}) string {
	t.Helper()
	result, err := r.Execute(context.Background(), name, args)
	require.NoError(t, err)
	require.Len(t, result.Content, 1, "builtin tools yield exactly one content item")
	assert.Equal(t, "text", result.Content[0].Type)
	return result.Content[0].Text
}

func TestEcho(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"echoes text", map[string]interface{}{"text": "hello world"}, "hello world"},
		{"defaults to empty literal", map[string]interface{}{}, "empty"},
		{"preserves quotes and backslashes", map[string]interface{}{"text": `a "quoted" \ path`}, `a "quoted" \ path`},
		{"empty string is returned as-is", map[string]interface{}{"text": ""}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, callTool(t, r, "echo", tt.args))
		})
	}
}

func TestAdd(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"two plus three", map[string]interface{}{"a": 2.0, "b": 3.0}, "5"},
		{"negative operands", map[string]interface{}{"a": -7.0, "b": 3.0}, "-4"},
		{"fractional input truncates", map[string]interface{}{"a": 2.9, "b": 0.0}, "2"},
		{"missing operands default to zero", map[string]interface{}{}, "0"},
		{"non-numeric operand defaults to zero", map[string]interface{}{"a": "two", "b": 3.0}, "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, callTool(t, r, "add", tt.args))
		})
	}
}

func TestGetTime(t *testing.T) {
	r := newTestRegistry(t)

	before := time.Now().Unix()
	text := callTool(t, r, "get_time", nil)
	after := time.Now().Unix()

	got, err := strconv.ParseInt(text, 10, 64)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got, before)
	assert.LessOrEqual(t, got, after)
}

func TestRandom_Range(t *testing.T) {
	r := newTestRegistry(t)

	// Property: always in [0, max), never equal to max.
	for i := 0; i < 200; i++ {
		text := callTool(t, r, "random", map[string]interface{}{"max": 10.0})
		got, err := strconv.ParseInt(text, 10, 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, int64(0))
		assert.Less(t, got, int64(10))
	}
}

func TestRandom_DefaultMax(t *testing.T) {
	r := newTestRegistry(t)

	for i := 0; i < 50; i++ {
		text := callTool(t, r, "random", nil)
		got, err := strconv.ParseInt(text, 10, 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, int64(0))
		assert.Less(t, got, int64(100))
	}
}

func TestRandom_NonPositiveMax(t *testing.T) {
	r := newTestRegistry(t)

	for _, max := range []float64{0, -1, -100} {
		_, err := r.Execute(context.Background(), "random", map[string]interface{}{"max": max})
		require.Error(t, err)
		perr, ok := protocol.AsProtocolError(err)
		require.True(t, ok)
		assert.Equal(t, protocol.InvalidParams, perr.Code)
		assert.Contains(t, perr.Message, "positive")
	}
}

func TestRandom_NonNumericMax(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Execute(context.Background(), "random", map[string]interface{}{"max": "ten"})
	require.Error(t, err)
	perr, ok := protocol.AsProtocolError(err)
	require.True(t, ok)
	assert.Equal(t, protocol.InvalidParams, perr.Code)
}

func TestReverse(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"hello", map[string]interface{}{"text": "hello"}, "olleh"},
		{"missing text defaults to empty string", map[string]interface{}{}, ""},
		{"single rune", map[string]interface{}{"text": "x"}, "x"},
		{"multibyte runes reverse by character", map[string]interface{}{"text": "日本語"}, "語本日"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, callTool(t, r, "reverse", tt.args))
		})
	}
}
