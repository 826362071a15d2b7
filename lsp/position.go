// Copyright © 2024 The Fuus Army Knife authors

package lsp

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/ion-fusion/fuus-army-knife/parser/token"
)

// toLSPPosition converts a 1-based location to a 0-based LSP position.
func toLSPPosition(loc *token.Location) protocol.Position {
	line := loc.Line
	col := loc.Col
	if line > 0 {
		line--
	}
	if col > 0 {
		col--
	}
	return protocol.Position{
		Line:      safeUint(line),
		Character: safeUint(col),
	}
}

// safeUint converts a non-negative int to protocol.UInteger, clamping
// negative values to zero.
func safeUint(n int) protocol.UInteger {
	if n < 0 {
		return 0
	}
	return protocol.UInteger(n) // #nosec G115 -- line/col are always small positive ints
}

// toLSPRange returns the range of width characters starting at loc.
func toLSPRange(loc *token.Location, width int) protocol.Range {
	start := toLSPPosition(loc)
	end := protocol.Position{
		Line:      start.Line,
		Character: start.Character + safeUint(width),
	}
	return protocol.Range{Start: start, End: end}
}

// uriToPath converts a file:// URI to a filesystem path.
func uriToPath(uri string) string {
	if path, ok := strings.CutPrefix(uri, "file://"); ok {
		return path
	}
	return uri
}
