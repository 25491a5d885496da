package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/houseplan-cli/internal/logger"
)

// Version is reported to clients in the initialize handshake.
const Version = "0.1.0"

// Server exposes the proposal workflow as MCP tools and session resources.
type Server struct {
	ports  *Ports
	server *mcp.Server

	// opened tracks sessions created by submit_request so they can be
	// discarded when the server stops.
	mu     sync.Mutex
	opened []string
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	impl := &mcp.Implementation{
		Name:    "houseplan",
		Version: Version,
	}

	s := &Server{
		ports:  ports,
		server: mcp.NewServer(impl, nil),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run serves stdio until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	defer s.closeSessions()
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// shutdownTimeout bounds how long RunHTTP waits for in-flight requests.
const shutdownTimeout = 5 * time.Second

// RunHTTP serves the streamable HTTP transport on addr until ctx is done.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	defer s.closeSessions()

	srv := &http.Server{
		Addr: addr,
		Handler: mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
			return s.server
		}, nil),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info("MCP server listening on %s", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) newSession() string {
	id := s.ports.Session.NewSession()
	s.mu.Lock()
	s.opened = append(s.opened, id)
	s.mu.Unlock()
	return id
}

// closeSessions discards every session this server opened. Sessions
// already closed through close_session are skipped.
func (s *Server) closeSessions() {
	s.mu.Lock()
	opened := s.opened
	s.opened = nil
	s.mu.Unlock()

	for _, id := range opened {
		if err := s.ports.Session.CloseSession(id); err == nil {
			logger.Debug("MCP: closed session %s", id)
		}
	}
}
