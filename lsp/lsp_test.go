// Copyright © 2024 The Fuus Army Knife authors

package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/ion-fusion/fuus-army-knife/config"
	"github.com/ion-fusion/fuus-army-knife/fusiontest"
	"github.com/ion-fusion/fuus-army-knife/parser/token"
)

const testURI = "file:///pkg/fusion/src/test.fusion"

func testServer(t *testing.T) *Server {
	return New(WithLogger(fusiontest.DebugLogger(t)))
}

// capturingContext returns a context that captures published diagnostics.
func capturingContext() (*glsp.Context, *[]*protocol.PublishDiagnosticsParams) {
	var captured []*protocol.PublishDiagnosticsParams
	ctx := &glsp.Context{
		Notify: func(method string, params any) {
			if method == protocol.ServerTextDocumentPublishDiagnostics {
				captured = append(captured, params.(*protocol.PublishDiagnosticsParams))
			}
		},
	}
	return ctx, &captured
}

func openParams(text string) *protocol.DidOpenTextDocumentParams {
	return &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        testURI,
			LanguageID: "fusion",
			Version:    1,
			Text:       text,
		},
	}
}

func formattingParams() *protocol.DocumentFormattingParams {
	return &protocol.DocumentFormattingParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	}
}

func TestInitialize(t *testing.T) {
	s := testServer(t)
	ctx, _ := capturingContext()
	root := "file:///pkg"
	result, err := s.initialize(ctx, &protocol.InitializeParams{RootURI: &root})
	require.NoError(t, err)

	init, ok := result.(protocol.InitializeResult)
	require.True(t, ok)
	assert.Equal(t, serverName, init.ServerInfo.Name)
	assert.Equal(t, true, init.Capabilities.DocumentFormattingProvider)
	sync, ok := init.Capabilities.TextDocumentSync.(*protocol.TextDocumentSyncOptions)
	require.True(t, ok)
	assert.Equal(t, protocol.TextDocumentSyncKindFull, *sync.Change)
	assert.Equal(t, "/pkg", s.rootPath)
}

func TestDidOpenValid(t *testing.T) {
	s := testServer(t)
	ctx, captured := capturingContext()
	require.NoError(t, s.textDocumentDidOpen(ctx, openParams("(define x 1)\n")))

	require.Len(t, *captured, 1)
	assert.Equal(t, testURI, (*captured)[0].URI)
	assert.Empty(t, (*captured)[0].Diagnostics)
}

func TestDidOpenSyntaxError(t *testing.T) {
	s := testServer(t)
	ctx, captured := capturingContext()
	require.NoError(t, s.textDocumentDidOpen(ctx, openParams("(a\n  \"b\n)")))

	require.Len(t, *captured, 1)
	diags := (*captured)[0].Diagnostics
	require.Len(t, diags, 1)
	assert.Equal(t, "unterminated string literal", diags[0].Message)
	assert.Equal(t, protocol.DiagnosticSeverityError, *diags[0].Severity)
	assert.Equal(t, protocol.Position{Line: 1, Character: 2}, diags[0].Range.Start)
	assert.Equal(t, protocol.Position{Line: 1, Character: 3}, diags[0].Range.End)
}

func TestDidChangeClearsDiagnostics(t *testing.T) {
	s := testServer(t)
	ctx, captured := capturingContext()
	require.NoError(t, s.textDocumentDidOpen(ctx, openParams("(")))
	require.Len(t, (*captured)[0].Diagnostics, 1)

	err := s.textDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: testURI},
			Version:                2,
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEventWhole{Text: "()"},
		},
	})
	require.NoError(t, err)
	require.Len(t, *captured, 2)
	assert.Empty(t, (*captured)[1].Diagnostics)
	assert.Equal(t, int32(2), s.docs.Get(testURI).Version)
}

func TestDidClose(t *testing.T) {
	s := testServer(t)
	ctx, captured := capturingContext()
	require.NoError(t, s.textDocumentDidOpen(ctx, openParams("(")))
	err := s.textDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	})
	require.NoError(t, err)
	require.Len(t, *captured, 2)
	assert.Empty(t, (*captured)[1].Diagnostics)
	assert.Nil(t, s.docs.Get(testURI))
}

func TestFormatting(t *testing.T) {
	s := testServer(t)
	ctx, _ := capturingContext()
	require.NoError(t, s.textDocumentDidOpen(ctx, openParams("(+   1\n2)\n(a)")))

	edits, err := s.textDocumentFormatting(ctx, formattingParams())
	require.NoError(t, err)
	require.Len(t, edits, 1)
	assert.Equal(t, "(+ 1\n   2)\n(a)\n", edits[0].NewText)
	assert.Equal(t, protocol.Position{Line: 0, Character: 0}, edits[0].Range.Start)
	assert.Equal(t, protocol.Position{Line: 2, Character: 0}, edits[0].Range.End)
}

func TestFormattingNoChange(t *testing.T) {
	s := testServer(t)
	ctx, _ := capturingContext()
	require.NoError(t, s.textDocumentDidOpen(ctx, openParams("(+ 1 2)\n")))
	edits, err := s.textDocumentFormatting(ctx, formattingParams())
	require.NoError(t, err)
	assert.Nil(t, edits)
}

func TestFormattingSyntaxError(t *testing.T) {
	s := testServer(t)
	ctx, _ := capturingContext()
	require.NoError(t, s.textDocumentDidOpen(ctx, openParams("(+ 1")))
	edits, err := s.textDocumentFormatting(ctx, formattingParams())
	require.NoError(t, err)
	assert.Nil(t, edits)
}

func TestFormattingUnknownDocument(t *testing.T) {
	s := testServer(t)
	edits, err := s.textDocumentFormatting(nil, formattingParams())
	require.NoError(t, err)
	assert.Nil(t, edits)
}

func TestFormattingUsesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.NewlineMode = config.NewlineNoChange
	s := New(WithConfig(cfg), WithLogger(fusiontest.DebugLogger(t)))
	ctx, _ := capturingContext()
	require.NoError(t, s.textDocumentDidOpen(ctx, openParams("[\n1]")))
	edits, err := s.textDocumentFormatting(ctx, formattingParams())
	require.NoError(t, err)
	require.Len(t, edits, 1)
	assert.Equal(t, "[\n 1]\n", edits[0].NewText)
}

func TestPositionConversion(t *testing.T) {
	loc := &token.Location{File: "a", Line: 3, Col: 5}
	assert.Equal(t, protocol.Position{Line: 2, Character: 4}, toLSPPosition(loc))
	r := toLSPRange(loc, 3)
	assert.Equal(t, protocol.UInteger(7), r.End.Character)
	assert.Equal(t, protocol.UInteger(0), safeUint(-1))
	assert.Equal(t, "/a/b.fusion", uriToPath("file:///a/b.fusion"))
	assert.Equal(t, "untitled:1", uriToPath("untitled:1"))
}
