package server

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log"

	"mcp-testbed/internal/mcp/protocol"
)

// maxLineBytes bounds a single protocol line
const maxLineBytes = 1024 * 1024

// Session runs the blocking read-dispatch-write loop for one ordered stream.
// One message is fully decoded, dispatched and written before the next line
// is read; the blocking read is the only suspension point.
type Session struct {
	dispatcher *Dispatcher
	in         io.Reader
	out        io.Writer
	logger     *log.Logger
}

// NewSession wires a dispatcher to an input and output stream
func NewSession(dispatcher *Dispatcher, in io.Reader, out io.Writer, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Session{
		dispatcher: dispatcher,
		in:         in,
		out:        out,
		logger:     logger,
	}
}

// Run processes messages until the input stream ends. End-of-stream is the
// graceful termination: every prior message was already answered, so there is
// nothing to drain. Context cancellation is checked between messages.
func (s *Session) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	writer := bufio.NewWriter(s.out)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		req, err := protocol.DecodeRequest(line)
		if err != nil {
			// Malformed input degrades to an unknown-method fault
			// instead of ending the session.
			s.logger.Printf("malformed request line: %v", err)
		}

		resp := s.dispatcher.Dispatch(ctx, req)
		if resp == nil {
			continue
		}

		data, err := protocol.EncodeResponse(resp)
		if err != nil {
			return fmt.Errorf("encode response: %w", err)
		}
		if _, err := writer.Write(data); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
		if err := writer.Flush(); err != nil {
			return fmt.Errorf("flush response: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read request stream: %w", err)
	}
	return nil
}
