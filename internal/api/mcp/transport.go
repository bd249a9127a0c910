package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
)

// maxLineBytes bounds a single request line. Whole-graph payloads can get
// large, so this is well above the bufio default.
const maxLineBytes = 4 * 1024 * 1024

// StdioTransport frames line-delimited JSON-RPC 2.0 between an MCP client and
// the Server: one request per line on stdin, one response per line on stdout.
// Diagnostics go to stderr only; any stray byte on stdout corrupts the
// protocol framing.
type StdioTransport struct {
	server *Server
	in     io.Reader
	out    io.Writer
	logger *log.Logger
}

// NewStdioTransport constructs a transport reading from in and writing to
// out. Pass os.Stdin and os.Stdout for real MCP clients.
func NewStdioTransport(srv *Server, in io.Reader, out io.Writer) *StdioTransport {
	return &StdioTransport{
		server: srv,
		in:     in,
		out:    out,
		logger: log.New(os.Stderr, "qualgraph-mcp: ", log.LstdFlags),
	}
}

// Serve handles requests one at a time, in arrival order, until stdin closes
// or ctx is cancelled.
func (t *StdioTransport) Serve(ctx context.Context) error {
	scanner := bufio.NewScanner(t.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for {
		select {
		case <-ctx.Done():
			t.logger.Println("shutting down")
			return ctx.Err()
		default:
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				t.logger.Printf("stdin scanner error: %v", err)
				return fmt.Errorf("stdin scanner: %w", err)
			}
			t.logger.Println("stdin closed")
			return nil
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		resp, err := t.server.HandleRequest(ctx, line)
		if err != nil {
			// HandleRequest packages most failures as JSON-RPC errors
			// itself; anything that still escapes gets a synthesised
			// frame so the client is never left waiting.
			t.logger.Printf("handler error: %v", err)
			resp = t.internalErrorResponse(line, err)
		}

		if _, err := fmt.Fprintf(t.out, "%s\n", resp); err != nil {
			t.logger.Printf("write error: %v", err)
			return fmt.Errorf("write response: %w", err)
		}
	}
}

// internalErrorResponse builds a best-effort error frame, recovering the
// request ID from the raw bytes when possible.
func (t *StdioTransport) internalErrorResponse(rawRequest []byte, handlerErr error) []byte {
	var partial struct {
		ID interface{} `json:"id"`
	}
	_ = json.Unmarshal(rawRequest, &partial)

	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      partial.ID,
		Error: &JSONRPCError{
			Code:    ErrCodeInternalError,
			Message: handlerErr.Error(),
		},
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return []byte(`{"jsonrpc":"2.0","id":null,"error":{"code":-32603,"message":"internal error"}}`)
	}
	return data
}
