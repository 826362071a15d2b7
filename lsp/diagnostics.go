// Copyright © 2024 The Fuus Army Knife authors

package lsp

import (
	"errors"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/ion-fusion/fuus-army-knife/logging"
	"github.com/ion-fusion/fuus-army-knife/parser/token"
)

const diagnosticSource = "fuusak"

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.captureNotify(ctx)
	doc := s.docs.Open(
		params.TextDocument.URI,
		int32(params.TextDocument.Version),
		params.TextDocument.Text,
	)
	s.publish(doc)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.captureNotify(ctx)
	// With full sync, the last content change is the complete document.
	var content string
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = c.Text
		case protocol.TextDocumentContentChangeEvent:
			content = c.Text
		}
	}
	doc := s.docs.Change(params.TextDocument.URI, int32(params.TextDocument.Version), content)
	s.publish(doc)
	return nil
}

func (s *Server) textDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	s.docs.Close(params.TextDocument.URI)
	return nil
}

// publish sends the syntax error of doc, if any, to the client.  An empty
// list clears diagnostics published for an earlier version.
func (s *Server) publish(doc *Document) {
	doc.mu.Lock()
	uri := doc.URI
	parseErr := doc.parseErr
	doc.mu.Unlock()

	diags := []protocol.Diagnostic{}
	if parseErr != nil {
		s.log.Debug("syntax error", logging.FieldPath, uriToPath(uri), logging.FieldError, parseErr)
		diags = append(diags, protocol.Diagnostic{
			Range:    parseErrorRange(parseErr),
			Severity: severity(protocol.DiagnosticSeverityError),
			Source:   strPtr(diagnosticSource),
			Message:  errorMessage(parseErr),
		})
	}
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diags,
	})
}

// parseErrorRange returns the one character range an error is located at,
// or the start of the document when the error carries no location.
func parseErrorRange(err error) protocol.Range {
	var locErr *token.LocationError
	if errors.As(err, &locErr) && locErr.Source != nil && locErr.Source.Line > 0 {
		return toLSPRange(locErr.Source, 1)
	}
	return protocol.Range{}
}

// errorMessage strips the location prefix an editor already shows.
func errorMessage(err error) string {
	var locErr *token.LocationError
	if errors.As(err, &locErr) {
		return locErr.Err.Error()
	}
	return err.Error()
}

func severity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func strPtr(s string) *string {
	return &s
}
