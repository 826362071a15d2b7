// Copyright © 2024 The Fuus Army Knife authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/ion-fusion/fuus-army-knife/formatter"
)

// textDocumentFormatting formats the document and returns a single
// whole-document text edit, or nil if no changes are needed.
func (s *Server) textDocumentFormatting(_ *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}

	doc.mu.Lock()
	content := doc.Content
	uri := doc.URI
	doc.mu.Unlock()

	if content == "" {
		return nil, nil
	}

	formatted, err := formatter.FormatFile([]byte(content), uriToPath(uri), s.cfg)
	if err != nil {
		// Syntax errors are already published as diagnostics.  Returning no
		// edits keeps editors from showing an error dialog.
		return nil, nil
	}
	if string(formatted) == content {
		return nil, nil
	}

	return []protocol.TextEdit{
		{
			Range: protocol.Range{
				Start: protocol.Position{Line: 0, Character: 0},
				End:   protocol.Position{Line: safeUint(countLines(content)), Character: 0},
			},
			NewText: string(formatted),
		},
	}, nil
}

// countLines returns the number of lines in s (0-indexed end line for LSP).
func countLines(s string) int {
	n := 0
	for _, c := range s {
		if c == '\n' {
			n++
		}
	}
	return n
}
