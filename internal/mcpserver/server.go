// Package mcpserver drives wizard runs over MCP so agents and scripts can
// complete a wizard without a terminal.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/mark3labs/mcp-go/server"
	"github.com/mark3labs/stepwise/internal/logger"
	"github.com/mark3labs/stepwise/internal/wizard"
)

var log = logger.Named("mcp")

// Builder creates and starts a fresh wizard run.
type Builder func(ctx context.Context) (*wizard.Wizard, error)

// Server exposes the current wizard run as MCP tools over streamable HTTP.
type Server struct {
	build    Builder
	onFinish func(*wizard.Wizard)
	addr     string

	mu  sync.Mutex // serializes tool calls and guards run
	run *wizard.Wizard

	mcpServer  *server.MCPServer
	stdServer  *http.Server
	port       int
	serverLock sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address. The default picks a free local port.
func WithAddr(addr string) Option {
	return func(s *Server) {
		s.addr = addr
	}
}

// WithTerminalHook registers fn to run once whenever a run finishes or is
// cancelled.
func WithTerminalHook(fn func(*wizard.Wizard)) Option {
	return func(s *Server) {
		s.onFinish = fn
	}
}

// New creates a server. No run exists until Start or the first restart.
func New(build Builder, opts ...Option) *Server {
	s := &Server{
		build: build,
		addr:  "127.0.0.1:0",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer = server.NewMCPServer(
		"stepwise",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server, e.g. for stdio transports.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Run returns the current wizard run.
func (s *Server) Run() *wizard.Wizard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run
}

// Restart discards the current run and starts a new one.
func (s *Server) Restart(ctx context.Context) (*wizard.Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restartLocked(ctx)
}

func (s *Server) restartLocked(ctx context.Context) (*wizard.Wizard, error) {
	w, err := s.build(ctx)
	if err != nil {
		return nil, err
	}
	if s.run != nil && !s.run.State().Terminal() {
		log.Info("abandoning run %s", s.run.RunID())
	}
	s.run = w
	log.Info("run %s started", w.RunID())
	return w, nil
}

// Start starts the first run and serves MCP on the configured address.
// It returns the bound port.
func (s *Server) Start(ctx context.Context) (int, error) {
	s.serverLock.Lock()
	defer s.serverLock.Unlock()

	if s.stdServer != nil {
		return 0, errors.New("server already started")
	}

	if _, err := s.Restart(ctx); err != nil {
		return 0, fmt.Errorf("starting run: %w", err)
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return 0, fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	s.port = listener.Addr().(*net.TCPAddr).Port

	mux := http.NewServeMux()
	mux.Handle("/mcp", server.NewStreamableHTTPServer(
		s.mcpServer,
		server.WithStateLess(true),
	))
	s.stdServer = &http.Server{Handler: mux}

	stdServer := s.stdServer
	go func() {
		if err := stdServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error: %v", err)
		}
	}()

	log.Info("serving on port %d", s.port)
	return s.port, nil
}

// Stop shuts the HTTP server down.
func (s *Server) Stop() error {
	s.serverLock.Lock()
	defer s.serverLock.Unlock()

	if s.stdServer == nil {
		return nil
	}
	if err := s.stdServer.Shutdown(context.Background()); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	s.stdServer = nil
	log.Debug("stopped")
	return nil
}

// URL returns the MCP endpoint.
func (s *Server) URL() string {
	s.serverLock.Lock()
	defer s.serverLock.Unlock()
	return fmt.Sprintf("http://localhost:%d/mcp", s.port)
}
