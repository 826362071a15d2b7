// Copyright © 2024 The Fuus Army Knife authors

// Package lsp implements a Language Server Protocol server for Fusion.
// It publishes syntax errors and formats documents.
package lsp

import (
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tliron/glsp"
	glspserver "github.com/tliron/glsp/server"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/ion-fusion/fuus-army-knife/config"
	"github.com/ion-fusion/fuus-army-knife/logging"
)

const serverName = "fuusak-lsp"

// Server is the Fusion language server.
type Server struct {
	handler  protocol.Handler
	glspSrv  *glspserver.Server
	docs     *DocumentStore
	cfg      *config.Config
	log      *log.Logger
	rootPath string

	// Context for sending notifications (captured from latest request).
	notifyMu sync.Mutex
	notify   glsp.NotifyFunc

	// exitFn is called on the LSP exit notification. Defaults to os.Exit.
	exitFn func(int)
}

// Option configures the LSP server.
type Option func(*Server)

// WithConfig sets the configuration used to format documents.
func WithConfig(cfg *config.Config) Option {
	return func(s *Server) { s.cfg = cfg }
}

// WithLogger sets the logger for server events.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) { s.log = logger }
}

// New creates a new Fusion language server.
func New(opts ...Option) *Server {
	s := &Server{
		docs:   NewDocumentStore(),
		cfg:    config.Default(),
		log:    logging.Default(),
		exitFn: os.Exit,
	}
	for _, o := range opts {
		o(s)
	}

	s.handler = protocol.Handler{
		Initialize: s.initialize,
		Shutdown:   s.shutdown,
		Exit:       s.exit,
		SetTrace:   s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentFormatting: s.textDocumentFormatting,
	}

	s.glspSrv = glspserver.NewServer(&s.handler, serverName, false)
	return s
}

// RunStdio starts the server using stdio transport.
func (s *Server) RunStdio() error {
	return s.glspSrv.RunStdio()
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.captureNotify(ctx)

	if params.RootURI != nil {
		s.rootPath = uriToPath(*params.RootURI)
	} else if params.RootPath != nil {
		s.rootPath = *params.RootPath
	}
	s.log.Debug("initialize", logging.FieldWorkingDir, s.rootPath)

	capabilities := s.handler.CreateServerCapabilities()
	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}
	capabilities.DocumentFormattingProvider = true

	version := "0.1.0"
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

func (s *Server) shutdown(_ *glsp.Context) error {
	return nil
}

// exit handles the LSP exit notification by terminating the process.
func (s *Server) exit(_ *glsp.Context) error {
	s.exitFn(0)
	return nil
}

// setTrace handles the $/setTrace notification (required by some clients).
func (s *Server) setTrace(_ *glsp.Context, _ *protocol.SetTraceParams) error {
	return nil
}

// captureNotify stores the notification function from the context for
// later use.
func (s *Server) captureNotify(ctx *glsp.Context) {
	s.notifyMu.Lock()
	s.notify = ctx.Notify
	s.notifyMu.Unlock()
}

// sendNotification sends a notification to the client.
func (s *Server) sendNotification(method string, params any) {
	s.notifyMu.Lock()
	fn := s.notify
	s.notifyMu.Unlock()
	if fn != nil {
		fn(method, params)
	}
}

func boolPtr(b bool) *bool {
	return &b
}
