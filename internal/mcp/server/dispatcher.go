package server

import (
	"context"
	"encoding/json"
	"io"
	"log"

	"mcp-testbed/internal/mcp/protocol"
	"mcp-testbed/internal/mcp/tools"
)

// Dispatcher classifies decoded requests by method, routes them to the
// matching handler and owns the response-id counter for one session. It is
// not safe for concurrent use; every stream gets its own dispatcher.
type Dispatcher struct {
	cfg      *Config
	registry *tools.Registry
	logger   *log.Logger

	// nextID is the id the next emitted response will carry. Initialized
	// to 1, advanced by exactly one per response, never for notifications,
	// never reset.
	nextID int64
}

// NewDispatcher creates a dispatcher for a single ordered stream
func NewDispatcher(cfg *Config, registry *tools.Registry, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Dispatcher{
		cfg:      cfg,
		registry: registry,
		logger:   logger,
		nextID:   1,
	}
}

// takeID returns the id for the response being built and advances the
// counter. Every emitted response consumes exactly one id.
func (d *Dispatcher) takeID() int64 {
	id := d.nextID
	d.nextID++
	return id
}

// Dispatch handles one decoded request. A nil return means the message was a
// notification and nothing must be written to the stream.
func (d *Dispatcher) Dispatch(ctx context.Context, req protocol.Request) *protocol.Response {
	switch req.Method {
	case protocol.MethodInitialize:
		return d.handleInitialize()
	case protocol.MethodListTools:
		return d.handleListTools()
	case protocol.MethodCallTool:
		return d.handleCallTool(ctx, req)
	case protocol.MethodPing:
		return protocol.NewSuccess(d.takeID(), struct{}{})
	case protocol.MethodInitialized:
		// True one-way notification: acknowledged on the diagnostic
		// stream only, never answered, counter untouched.
		d.logger.Printf("client reported initialized")
		return nil
	default:
		perr := protocol.NewMethodNotFoundError(req.Method)
		return protocol.NewError(d.takeID(), perr.Code, perr.Message)
	}
}

func (d *Dispatcher) handleInitialize() *protocol.Response {
	id := d.takeID()
	if d.cfg.LegacyIDs {
		id = 1
	}
	return protocol.NewSuccess(id, protocol.InitializeResult{
		ProtocolVersion: d.cfg.ProtocolVersion,
		Capabilities: protocol.Capabilities{
			Tools: &protocol.ToolsCapability{},
		},
		ServerInfo: protocol.ServerInfo{
			Name:    d.cfg.Name,
			Version: d.cfg.Version,
		},
	})
}

func (d *Dispatcher) handleListTools() *protocol.Response {
	id := d.takeID()
	if d.cfg.LegacyIDs {
		id = 2
	}
	return protocol.NewSuccess(id, protocol.ListToolsResult{
		Tools: d.registry.Descriptors(),
	})
}

func (d *Dispatcher) handleCallTool(ctx context.Context, req protocol.Request) *protocol.Response {
	id := d.takeID()

	var params protocol.CallToolParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return protocol.NewError(id, protocol.InvalidParams, "invalid tools/call params: "+err.Error())
		}
	}

	result, err := d.registry.Execute(ctx, params.Name, params.Arguments)
	if err != nil {
		if perr, ok := protocol.AsProtocolError(err); ok {
			return protocol.NewError(id, perr.Code, perr.Message)
		}
		return protocol.NewError(id, protocol.InternalError, err.Error())
	}
	return protocol.NewSuccess(id, result)
}
