package tools

import (
	"context"
	"math/rand"
	"slices"
	"strconv"
	"time"

	"mcp-testbed/internal/mcp/protocol"
)

// Definition pairs a tool descriptor with its handler
type Definition struct {
	Tool    protocol.Tool
	Handler Handler
}

// defaultRandomMax is the bound random draws from when max is absent
const defaultRandomMax = 100

// Builtin returns the fixed conformance tool catalog in listing order.
func Builtin() []Definition {
	return []Definition{
		{
			Tool: protocol.Tool{
				Name:        "echo",
				Description: "Echo back the provided text",
				InputSchema: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"text": map[string]interface{}{
							"type":        "string",
							"description": "Text to echo back",
						},
					},
					"required": []interface{}{"text"},
				},
			},
			Handler: echoHandler,
		},
		{
			Tool: protocol.Tool{
				Name:        "add",
				Description: "Add two numbers and return the integer sum",
				InputSchema: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"a": map[string]interface{}{"type": "number"},
						"b": map[string]interface{}{"type": "number"},
					},
					"required": []interface{}{"a", "b"},
				},
			},
			Handler: addHandler,
		},
		{
			Tool: protocol.Tool{
				Name:        "get_time",
				Description: "Get the current Unix time in seconds",
				InputSchema: map[string]interface{}{
					"type":       "object",
					"properties": map[string]interface{}{},
				},
			},
			Handler: getTimeHandler,
		},
		{
			Tool: protocol.Tool{
				Name:        "random",
				Description: "Generate a random integer in [0, max)",
				InputSchema: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"max": map[string]interface{}{
							"type":        "number",
							"description": "Exclusive upper bound",
							"default":     defaultRandomMax,
						},
					},
				},
			},
			Handler: randomHandler,
		},
		{
			Tool: protocol.Tool{
				Name:        "reverse",
				Description: "Reverse the characters of the provided text",
				InputSchema: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"text": map[string]interface{}{
							"type":        "string",
							"description": "Text to reverse",
						},
					},
					"required": []interface{}{"text"},
				},
			},
			Handler: reverseHandler,
		},
	}
}

// RegisterBuiltin registers the builtin catalog on r, skipping any names in
// disabled. Catalog order is preserved for the names that remain.
func RegisterBuiltin(r *Registry, disabled []string) error {
	for _, def := range Builtin() {
		if slices.Contains(disabled, def.Tool.Name) {
			continue
		}
		if err := r.Register(def.Tool, def.Handler); err != nil {
			return err
		}
	}
	return nil
}

func echoHandler(_ context.Context, arguments map[string]interface{}) (*protocol.ToolCallResult, error) {
	text := "empty"
	if s, ok := arguments["text"].(string); ok {
		text = s
	}
	return protocol.TextResult(text), nil
}

func addHandler(_ context.Context, arguments map[string]interface{}) (*protocol.ToolCallResult, error) {
	sum := intArg(arguments, "a") + intArg(arguments, "b")
	return protocol.TextResult(strconv.FormatInt(sum, 10)), nil
}

func getTimeHandler(_ context.Context, _ map[string]interface{}) (*protocol.ToolCallResult, error) {
	return protocol.TextResult(strconv.FormatInt(time.Now().Unix(), 10)), nil
}

func randomHandler(_ context.Context, arguments map[string]interface{}) (*protocol.ToolCallResult, error) {
	max := int64(defaultRandomMax)
	if v, ok := arguments["max"]; ok {
		f, isNum := v.(float64)
		if !isNum {
			return nil, protocol.NewInvalidParamsError("random: max must be a number")
		}
		max = int64(f)
	}
	if max <= 0 {
		return nil, protocol.NewInvalidParamsError("random: max must be a positive number")
	}
	return protocol.TextResult(strconv.FormatInt(rand.Int63n(max), 10)), nil
}

func reverseHandler(_ context.Context, arguments map[string]interface{}) (*protocol.ToolCallResult, error) {
	var text string
	if s, ok := arguments["text"].(string); ok {
		text = s
	}
	runes := []rune(text)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return protocol.TextResult(string(runes)), nil
}

// intArg coerces a JSON number to integer semantics, defaulting to 0 when
// the argument is absent or not numeric. Fractional input truncates; that
// precision loss is part of the add tool's contract.
func intArg(arguments map[string]interface{}, key string) int64 {
	if f, ok := arguments[key].(float64); ok {
		return int64(f)
	}
	return 0
}
