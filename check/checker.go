// Copyright © 2024 The Fuus Army Knife authors

// Package check reports identifiers that are used without being bound.
//
// Every module and script of an index is checked against an initial scope
// made of the names provided by its language chain (or, for scripts, its
// top-level modules and global bindings).  A resource is walked twice
// sharing one scope: the first walk only collects top-level definitions so
// that forward references are not reported.
//
// Forms whose head is not a known binding form are treated as calls: the
// head and every argument are checked, so an unbound name nested in an
// ordinary call such as (+ 1 (frob 2)) is reported too.
package check

import (
	"fmt"
	"sort"

	"github.com/ion-fusion/fuus-army-knife/ast"
	"github.com/ion-fusion/fuus-army-knife/index"
	"github.com/ion-fusion/fuus-army-knife/parser/token"
)

// Problem is an unbound identifier or a malformed binding form.
type Problem struct {
	File    *index.File
	Span    token.Span
	Message string
}

// Location returns the file:line:col position of the problem.
func (p Problem) Location() *token.Location {
	return token.Locate(p.File.Name, p.File.Source, p.Span.Start)
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.Location(), p.Message)
}

// Checker checks the modules and scripts of an index.
type Checker struct {
	Index *index.Index
}

// New returns a checker for idx.
func New(idx *index.Index) *Checker {
	return &Checker{Index: idx}
}

// CheckAll checks every module and script in the index.  Problems are
// ordered by file and position.
func (c *Checker) CheckAll() []Problem {
	var problems []Problem
	for _, m := range c.Index.Modules() {
		if m.Name == index.KernelModuleName {
			continue
		}
		problems = append(problems, c.CheckModule(m.ID)...)
	}
	for _, s := range c.Index.Scripts() {
		problems = append(problems, c.CheckScript(s.ID)...)
	}
	sortProblems(problems)
	return problems
}

// CheckModule checks a single module.
func (c *Checker) CheckModule(id index.ModuleID) []Problem {
	m := c.Index.Module(id)
	scope := NewRootScope(c.resolveAllProvides(m))
	return c.checkFiles(scope, []*index.File{m.File})
}

// CheckScript checks every file of a script in one shared scope.
func (c *Checker) CheckScript(id index.ScriptID) []Problem {
	s := c.Index.Script(id)
	var names []string
	for _, name := range s.TopLevelModules {
		if m, ok := c.Index.ModuleByName(name); ok {
			names = append(names, c.resolveAllProvides(m)...)
		}
	}
	names = append(names, s.GlobalBindings...)
	return c.checkFiles(NewRootScope(names), s.Files)
}

func (c *Checker) checkFiles(scope *Scope, files []*index.File) []Problem {
	for _, f := range files {
		w := &walker{idx: c.Index, file: f}
		w.checkAll(scope, f.CST, false)
	}
	var problems []Problem
	for _, f := range files {
		w := &walker{idx: c.Index, file: f}
		w.checkAll(scope, f.CST, false)
		problems = append(problems, w.problems...)
	}
	sortProblems(problems)
	return problems
}

// resolveAllProvides returns the names provided by m and by every module of
// its language chain.  The chain ends at the kernel, at a language that is
// not loaded or at a module already visited.
func (c *Checker) resolveAllProvides(m *index.Module) []string {
	var names []string
	seen := make(map[string]bool)
	for m != nil && !seen[m.Name] {
		seen[m.Name] = true
		names = append(names, m.ProvidedNames()...)
		if m.Name == index.KernelModuleName || m.Language == "" {
			break
		}
		next, ok := c.Index.ModuleByName(m.Language)
		if !ok {
			break
		}
		m = next
	}
	return names
}

func sortProblems(problems []Problem) {
	sort.SliceStable(problems, func(i, j int) bool {
		if problems[i].File.Name != problems[j].File.Name {
			return problems[i].File.Name < problems[j].File.Name
		}
		return problems[i].Span.Start < problems[j].Span.Start
	})
}

type walker struct {
	idx      *index.Index
	file     *index.File
	problems []Problem
}

func (w *walker) report(span token.Span, format string, v ...interface{}) {
	w.problems = append(w.problems, Problem{
		File:    w.file,
		Span:    span,
		Message: fmt.Sprintf(format, v...),
	})
}

func (w *walker) checkAll(scope *Scope, exprs []*ast.Expr, quoted bool) {
	for _, expr := range exprs {
		w.check(scope, expr, quoted)
	}
}

func (w *walker) check(scope *Scope, expr *ast.Expr, quoted bool) {
	switch expr.Kind {
	case ast.Symbol:
		if quoted {
			return
		}
		if name, _ := expr.StrippedSymbolValue(); !scope.Contains(name) {
			w.report(expr.Span, "Unbound identifier %s", expr.Value)
		}
	case ast.List, ast.Struct:
		w.checkAll(scope, expr.ValueItems(), quoted)
	case ast.SExpr:
		w.checkSExpr(scope, expr, quoted)
	}
}

func (w *walker) checkSExpr(scope *Scope, sexpr *ast.Expr, quoted bool) {
	items := sexpr.ValueItems()
	if len(items) == 0 {
		return
	}
	head, ok := items[0].StrippedSymbolValue()
	if !ok {
		w.checkAll(scope, items, quoted)
		return
	}
	rest := items[1:]
	if quoted {
		if head == "unquote" {
			w.checkAll(scope, rest, false)
		} else {
			w.checkAll(scope, items, true)
		}
		return
	}
	switch head {
	case "define", "define_syntax", "defpub", "defpub_j", "defpub_syntax":
		w.checkDefine(scope, rest)
	case "lambda":
		w.checkLambda(scope, rest)
	case "let", "lets", "letrec":
		w.checkLet(scope, head, rest)
	case "module":
		if len(rest) > 2 {
			w.checkAll(scope, rest[2:], false)
		}
	case "provide", "quote":
	case "quasiquote":
		w.checkAll(scope, rest, true)
	case "require":
		w.checkRequire(scope, rest)
	case "|":
		w.checkPipeLambda(scope, rest)
	default:
		w.checkAll(scope, items, false)
	}
}

func (w *walker) checkDefine(scope *Scope, rest []*ast.Expr) {
	if len(rest) == 0 {
		return
	}
	inner := scope.Child()
	target := rest[0]
	if name, ok := target.StrippedSymbolValue(); ok {
		scope.BindTopLevel(name)
	} else if target.IsSExpr() {
		for i, arg := range target.ValueItems() {
			name, ok := arg.StrippedSymbolValue()
			if !ok {
				continue
			}
			if i == 0 {
				scope.BindTopLevel(name)
			} else {
				inner.Bind(name)
			}
		}
	}
	w.checkAll(inner, rest[1:], false)
}

func (w *walker) checkLambda(scope *Scope, rest []*ast.Expr) {
	if len(rest) == 0 {
		return
	}
	inner := scope.Child()
	bindSymbols(inner, rest[0])
	w.checkAll(inner, rest[1:], false)
}

// bindSymbols binds a single symbol or every symbol of an argument list.
func bindSymbols(scope *Scope, args *ast.Expr) {
	if name, ok := args.StrippedSymbolValue(); ok {
		scope.Bind(name)
		return
	}
	if !args.IsSExpr() {
		return
	}
	for _, arg := range args.ValueItems() {
		if name, ok := arg.StrippedSymbolValue(); ok {
			scope.Bind(name)
		}
	}
}

// checkLet handles let, lets and letrec.  let evaluates its binding values
// in the enclosing scope, lets sees each earlier binding and letrec sees all
// of them.
func (w *walker) checkLet(scope *Scope, form string, rest []*ast.Expr) {
	if len(rest) == 0 {
		return
	}
	inner := scope.Child()
	bindings := rest[0]
	if bindings.Kind != ast.List && !bindings.IsSExpr() {
		w.checkAll(inner, rest, false)
		return
	}
	pairs := bindings.ValueItems()
	if form == "letrec" {
		for _, pair := range pairs {
			if pair.IsSExpr() {
				bindFirst(inner, pair)
			}
		}
	}
	for _, pair := range pairs {
		if !pair.IsSExpr() {
			continue
		}
		values := pair.ValueItems()
		if len(values) > 0 {
			values = values[1:]
		}
		switch form {
		case "let":
			w.checkAll(scope, values, false)
		default:
			w.checkAll(inner, values, false)
		}
		bindFirst(inner, pair)
	}
	w.checkAll(inner, rest[1:], false)
}

func bindFirst(scope *Scope, pair *ast.Expr) {
	items := pair.ValueItems()
	if len(items) == 0 {
		return
	}
	if name, ok := items[0].StrippedSymbolValue(); ok {
		scope.Bind(name)
	}
}

func (w *walker) checkPipeLambda(scope *Scope, rest []*ast.Expr) {
	inner := scope.Child()
	i := 0
	for ; i < len(rest); i++ {
		name, ok := rest[i].StrippedSymbolValue()
		if ok && name == "|" {
			i++
			break
		}
		if ok {
			inner.Bind(name)
		}
	}
	if i <= len(rest) {
		w.checkAll(inner, rest[i:], false)
	}
}

func (w *walker) checkRequire(scope *Scope, rest []*ast.Expr) {
	for _, arg := range rest {
		switch {
		case arg.Kind == ast.QuotedString:
			m, ok := w.idx.ModuleByName(arg.Value)
			if !ok {
				w.report(arg.Span, "cannot find module named %s", arg.Value)
				continue
			}
			for _, name := range m.ProvidedNames() {
				scope.Bind(name)
			}
		case arg.IsSExpr():
			w.checkRequireSExpr(scope, arg)
		default:
			w.report(arg.Span, "arguments to require must be string or s-expr")
		}
	}
}

func (w *walker) checkRequireSExpr(scope *Scope, sexpr *ast.Expr) {
	items := sexpr.ValueItems()
	if len(items) == 0 {
		w.report(sexpr.Span, "invalid argument to require")
		return
	}
	head, _ := items[0].SymbolValue()
	switch head {
	case "only_in":
		if len(items) < 2 || items[1].Kind != ast.QuotedString {
			w.report(sexpr.Span, "expected module name in only_in")
			return
		}
		for _, item := range items[2:] {
			name, ok := item.StrippedSymbolValue()
			if !ok {
				w.report(item.Span, "expected symbol")
				continue
			}
			scope.BindTopLevel(name)
		}
	case "rename_in":
		if len(items) < 2 || items[1].Kind != ast.QuotedString {
			w.report(sexpr.Span, "expected module name in rename_in")
			return
		}
		for _, pair := range items[2:] {
			if !pair.IsSExpr() {
				w.report(pair.Span, "expected s-expression after module name")
				continue
			}
			names := pair.ValueItems()
			if len(names) != 2 || !names[0].IsSymbol() || !names[1].IsSymbol() {
				w.report(pair.Span, "expected two symbols in rename_in pair")
				continue
			}
			to, _ := names[1].StrippedSymbolValue()
			scope.Bind(to)
		}
	case "prefix_in":
		w.report(items[0].Span, "support for `(require (prefix_in ...))` is not implemented")
	default:
		w.report(items[0].Span, "invalid argument to require")
	}
}
