package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"mcp-testbed/internal/mcp/tools"
)

// TransportManager starts the configured transport and hands every stream a
// session with its own dispatcher, so concurrent TCP connections each keep an
// independent response-id sequence while per-stream ordering stays strict.
type TransportManager struct {
	cfg      *Config
	registry *tools.Registry
	logger   *log.Logger
}

// NewTransportManager creates a new transport manager
func NewTransportManager(cfg *Config, registry *tools.Registry, logger *log.Logger) *TransportManager {
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &TransportManager{
		cfg:      cfg,
		registry: registry,
		logger:   logger,
	}
}

// Start runs the configured transport type until the context is cancelled or
// the stream ends. Unsupported types are rejected before any serving starts.
func (tm *TransportManager) Start(ctx context.Context) error {
	switch tm.cfg.Transport.Type {
	case "stdio":
		return tm.serveStdio(ctx)
	case "tcp":
		return tm.serveTCP(ctx)
	default:
		return fmt.Errorf("unsupported transport type: %s", tm.cfg.Transport.Type)
	}
}

// serveStdio serves a single ordered stream over standard input/output
func (tm *TransportManager) serveStdio(ctx context.Context) error {
	tm.logger.Printf("%s %s serving MCP over stdio (%d tools)", tm.cfg.Name, tm.cfg.Version, tm.registry.Count())

	session := NewSession(NewDispatcher(tm.cfg, tm.registry, tm.logger), os.Stdin, os.Stdout, tm.logger)
	if err := session.Run(ctx); err != nil {
		return fmt.Errorf("stdio transport failed: %w", err)
	}
	return nil
}

// serveTCP listens on the configured address and serves each connection
func (tm *TransportManager) serveTCP(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", tm.cfg.Transport.Host, tm.cfg.Transport.Port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start TCP listener on %s: %w", addr, err)
	}

	return tm.ServeListener(ctx, listener)
}

// ServeListener accepts connections from an already-bound listener. Each
// connection gets its own session and id counter.
func (tm *TransportManager) ServeListener(ctx context.Context, listener net.Listener) error {
	defer listener.Close()

	tm.logger.Printf("%s %s serving MCP on TCP %s (%d tools)", tm.cfg.Name, tm.cfg.Version, listener.Addr(), tm.registry.Count())

	// Close the listener to unblock Accept when the context ends.
	shutdown := make(chan struct{})
	go func() {
		<-ctx.Done()
		listener.Close()
		close(shutdown)
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-shutdown:
				return ctx.Err()
			default:
				if ctx.Err() == nil {
					tm.logger.Printf("error accepting connection: %v", err)
				}
				continue
			}
		}

		go tm.handleConn(ctx, conn)
	}
}

// handleConn serves one TCP connection as an independent ordered stream
func (tm *TransportManager) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	if tm.cfg.Transport.Timeout > 0 {
		conn.SetDeadline(time.Now().Add(tm.cfg.Transport.Timeout))
	}

	tm.logger.Printf("handling connection from %s", conn.RemoteAddr())

	session := NewSession(NewDispatcher(tm.cfg, tm.registry, tm.logger), conn, conn, tm.logger)
	if err := session.Run(ctx); err != nil && ctx.Err() == nil {
		tm.logger.Printf("error serving connection from %s: %v", conn.RemoteAddr(), err)
	}
}
