// Copyright © 2024 The Fuus Army Knife authors

package cmd

import (
	"io"
	"os"

	"github.com/ion-fusion/fuus-army-knife/check"
	"github.com/ion-fusion/fuus-army-knife/diagnostic"
)

// renderer returns a diagnostic renderer honoring --color.
func (a *app) renderer() *diagnostic.Renderer {
	return &diagnostic.Renderer{Color: a.colorMode}
}

// colorEnabled reports whether output written to w should be styled.
func (a *app) colorEnabled(w io.Writer) bool {
	f, _ := w.(*os.File)
	if f == nil {
		return a.colorMode == diagnostic.ColorAlways
	}
	return a.colorMode.Enabled(f)
}

// problemToDiagnostic converts a checker problem to a diagnostic for display.
func problemToDiagnostic(p check.Problem) diagnostic.Diagnostic {
	d := diagnostic.FromOffsets(p.File.Name, p.File.Source, p.Span, p.Message)
	if p.File.Path != "" {
		d.Notes = append(d.Notes, "in "+p.File.Path)
	}
	return d
}

// renderProblems renders checker problems to w.
func (a *app) renderProblems(w io.Writer, problems []check.Problem) error {
	diags := make([]diagnostic.Diagnostic, 0, len(problems))
	for _, p := range problems {
		diags = append(diags, problemToDiagnostic(p))
	}
	return a.renderer().RenderAll(w, diags)
}
