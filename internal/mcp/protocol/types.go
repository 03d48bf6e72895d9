package protocol

import "encoding/json"

// JSON-RPC 2.0 Protocol Types

// JSONRPCVersion is the JSON-RPC version
const JSONRPCVersion = "2.0"

// MCPProtocolVersion is the MCP protocol version this endpoint advertises
const MCPProtocolVersion = "2024-11-05"

// Request represents a decoded JSON-RPC 2.0 request. ID is nil for
// notifications.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int64          `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response represents a JSON-RPC 2.0 response. Exactly one of Result and
// Error is set.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int64       `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents a JSON-RPC 2.0 error object
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// JSON-RPC 2.0 Standard Error Codes
const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603
)

// MCP-specific Types

// ServerInfo holds information about the server
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Capabilities defines what features are supported
type Capabilities struct {
	Tools *ToolsCapability `json:"tools,omitempty"`
}

// ToolsCapability indicates tools support
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// Tool represents an MCP tool descriptor: the advertised name, description
// and input schema, independent of the tool's implementation.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// ToolCallResult represents the result of calling a tool
type ToolCallResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Content represents one content item in a tool result
type Content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// TextResult wraps a string as a single-item text tool result. Every builtin
// tool yields exactly one text content item.
func TextResult(text string) *ToolCallResult {
	return &ToolCallResult{
		Content: []Content{{Type: "text", Text: text}},
	}
}
