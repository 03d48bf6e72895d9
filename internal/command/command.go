// Package command parses and executes interactive console commands against
// an in-process dispatcher.
package command

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"mcp-testbed/internal/jsonutil"
	"mcp-testbed/internal/mcp/protocol"
	"mcp-testbed/internal/mcp/server"
	"mcp-testbed/internal/mcp/tools"
)

const helpText = `Available commands:
    list                      List the tool catalog (tools/list)
    describe <tool>           Show one tool's descriptor
    call <tool> [json-args]   Invoke a tool (tools/call)
    raw <json-rpc-line>       Send a raw protocol line
    help                      Show this help
    exit/quit                 Leave the console`

// Handler executes console commands. Responses are printed the same way the
// protocol would emit them, pretty-printed.
type Handler struct {
	Dispatcher *server.Dispatcher
	Registry   *tools.Registry
	Out        io.Writer
}

// Execute runs one console line. It returns false when the console should
// exit.
func (h *Handler) Execute(input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return true
	}

	cmd, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "exit", "quit":
		return false
	case "help":
		fmt.Fprintln(h.Out, helpText)
	case "list":
		h.dispatch(protocol.MethodListTools, nil)
	case "describe":
		h.describe(rest)
	case "call":
		h.call(rest)
	case "raw":
		h.raw(rest)
	default:
		fmt.Fprintf(h.Out, "Unknown command: %s (type 'help' for usage)\n", cmd)
	}
	return true
}

func (h *Handler) describe(name string) {
	if name == "" {
		fmt.Fprintln(h.Out, "Usage: describe <tool>")
		return
	}
	tool, ok := h.Registry.Get(name)
	if !ok {
		fmt.Fprintf(h.Out, "Tool not found: %s\n", name)
		return
	}
	data, err := json.Marshal(tool)
	if err != nil {
		fmt.Fprintf(h.Out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(h.Out, jsonutil.PrettyBytes(data))
}

func (h *Handler) call(rest string) {
	if rest == "" {
		fmt.Fprintln(h.Out, "Usage: call <tool> [json-args]")
		return
	}

	name, argsText, _ := strings.Cut(rest, " ")
	arguments := map[string]interface{}{}
	if argsText = strings.TrimSpace(argsText); argsText != "" {
		if err := json.Unmarshal([]byte(argsText), &arguments); err != nil {
			fmt.Fprintf(h.Out, "Invalid arguments JSON: %v\n", err)
			return
		}
	}

	h.dispatch(protocol.MethodCallTool, protocol.CallToolParams{
		Name:      name,
		Arguments: arguments,
	})
}

func (h *Handler) raw(line string) {
	if line == "" {
		fmt.Fprintln(h.Out, "Usage: raw <json-rpc-line>")
		return
	}

	req, err := protocol.DecodeRequest([]byte(line))
	if err != nil {
		fmt.Fprintf(h.Out, "(malformed line, degrading: %v)\n", err)
	}
	h.print(h.Dispatcher.Dispatch(context.Background(), req))
}

// dispatch builds a structured request for the given method and prints the
// response.
func (h *Handler) dispatch(method string, params interface{}) {
	req := protocol.Request{JSONRPC: protocol.JSONRPCVersion, Method: method}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			fmt.Fprintf(h.Out, "Error: %v\n", err)
			return
		}
		req.Params = data
	}
	h.print(h.Dispatcher.Dispatch(context.Background(), req))
}

func (h *Handler) print(resp *protocol.Response) {
	if resp == nil {
		fmt.Fprintln(h.Out, "(no response)")
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		fmt.Fprintf(h.Out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(h.Out, jsonutil.PrettyBytes(data))
}
