package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"mcp-testbed/internal/mcp/protocol"
)

// Handler is a function that executes a tool against its decoded arguments.
type Handler func(ctx context.Context, arguments map[string]interface{}) (*protocol.ToolCallResult, error)

// Registry is a fixed, ordered catalog of tools. Registration order is the
// order tools/list reports and is stable across runs.
type Registry struct {
	order   []string
	entries map[string]*entry
	strict  bool
}

type entry struct {
	tool    protocol.Tool
	handler Handler
	schema  *jsonschema.Schema
}

// NewRegistry creates an empty tool registry
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*entry),
	}
}

// SetStrict toggles argument validation against each tool's input schema.
// Off by default: the builtin tools tolerate missing arguments by
// substituting defaults, and strict mode would reject those calls instead.
func (r *Registry) SetStrict(strict bool) {
	r.strict = strict
}

// Register adds a tool and its handler to the catalog. The tool's input
// schema is compiled immediately so a malformed schema fails at startup, not
// on the first call.
func (r *Registry) Register(tool protocol.Tool, handler Handler) error {
	if _, exists := r.entries[tool.Name]; exists {
		return fmt.Errorf("tool %s already registered", tool.Name)
	}
	if handler == nil {
		return fmt.Errorf("tool %s has no handler", tool.Name)
	}

	schema, err := compileSchema(tool.Name, tool.InputSchema)
	if err != nil {
		return fmt.Errorf("compile input schema for %s: %w", tool.Name, err)
	}

	r.order = append(r.order, tool.Name)
	r.entries[tool.Name] = &entry{
		tool:    tool,
		handler: handler,
		schema:  schema,
	}
	return nil
}

// Descriptors returns the full catalog in registration order, every time.
// There is no pagination and no per-session state.
func (r *Registry) Descriptors() []protocol.Tool {
	tools := make([]protocol.Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.entries[name].tool)
	}
	return tools
}

// Get returns the descriptor for a tool by name
func (r *Registry) Get(name string) (*protocol.Tool, bool) {
	e, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	return &e.tool, true
}

// Count returns the number of registered tools
func (r *Registry) Count() int {
	return len(r.order)
}

// Execute looks up a tool by name, optionally validates its arguments, runs
// it and returns its result. An unknown name yields a tool-not-found fault
// (code -32601) carrying the name verbatim.
func (r *Registry) Execute(ctx context.Context, name string, arguments map[string]interface{}) (*protocol.ToolCallResult, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, protocol.NewToolNotFoundError(name)
	}

	if arguments == nil {
		arguments = map[string]interface{}{}
	}

	if r.strict {
		doc, err := toJSONValue(arguments)
		if err != nil {
			return nil, protocol.NewInvalidParamsError(fmt.Sprintf("%s: invalid arguments: %v", name, err))
		}
		if err := e.schema.Validate(doc); err != nil {
			return nil, protocol.NewInvalidParamsError(fmt.Sprintf("%s: arguments do not match input schema: %v", name, err))
		}
	}

	return e.handler(ctx, arguments)
}

// compileSchema round-trips the schema document through JSON before handing
// it to the compiler, so map literals and decoded documents behave the same.
func compileSchema(name string, inputSchema map[string]interface{}) (*jsonschema.Schema, error) {
	doc, err := toJSONValue(inputSchema)
	if err != nil {
		return nil, err
	}

	c := jsonschema.NewCompiler()
	url := name + ".schema.json"
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	return c.Compile(url)
}

func toJSONValue(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
