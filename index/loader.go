// Copyright © 2024 The Fuus Army Knife authors

package index

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ion-fusion/fuus-army-knife/ast"
	"github.com/ion-fusion/fuus-army-knife/config"
	"github.com/ion-fusion/fuus-army-knife/logging"
	"github.com/ion-fusion/fuus-army-knife/parser/token"
)

// Loader reads modules and scripts into an Index, following module
// languages and requires.
type Loader struct {
	cfg     *config.Config
	idx     *Index
	log     *log.Logger
	loading map[string]bool
}

// NewLoader returns a loader adding to idx.  Progress is logged to the
// logger carried by ctx.
func NewLoader(ctx context.Context, cfg *config.Config, idx *Index) *Loader {
	return &Loader{
		cfg:     cfg,
		idx:     idx,
		log:     logging.FromContext(ctx),
		loading: make(map[string]bool),
	}
}

// Index returns the index the loader adds to.
func (l *Loader) Index() *Index {
	return l.idx
}

// LoadIndex builds the index of the package at packagePath.  Configured
// module directories and cfg.ModulePaths are searched for modules, then
// every configured path is loaded.
func LoadIndex(ctx context.Context, cfg *config.Config, packagePath string) (*Index, error) {
	var modulePaths []string
	for _, p := range cfg.Paths {
		if p.Mode == config.PathModules {
			modulePaths = append(modulePaths, filepath.FromSlash(p.Path))
		}
	}
	modulePaths = append(modulePaths, cfg.ModulePaths...)
	idx, err := New(packagePath, modulePaths)
	if err != nil {
		return nil, err
	}
	logger := logging.FromContext(ctx)
	logger.Debug("module repository initialized", logging.FieldPaths, idx.ModulePaths())
	if err := NewLoader(ctx, cfg, idx).LoadConfiguredPaths(); err != nil {
		return nil, err
	}
	return idx, nil
}

// LoadConfiguredPaths loads every file under the configured paths.  Files
// under a modules path become modules.  Each file under a tests path becomes
// a script named by its package relative path.
func (l *Loader) LoadConfiguredPaths() error {
	for _, p := range l.cfg.Paths {
		dir := filepath.Join(l.idx.packagePath, filepath.FromSlash(p.Path))
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			l.log.Debug("skipping missing path", logging.FieldPath, p.Path)
			continue
		}
		files, err := FindFiles(dir, ".fusion")
		if err != nil {
			return err
		}
		for _, path := range files {
			switch p.Mode {
			case config.PathModules:
				if _, err := l.LoadModuleFile(path); err != nil {
					return err
				}
			case config.PathTests:
				rel := l.relativeName(path)
				if _, err := l.LoadScript(rel, p.TopLevelModules, p.GlobalBindings, []string{rel}); err != nil {
					return err
				}
				l.log.Info("loaded test", logging.FieldScript, rel)
			}
		}
	}
	return nil
}

// FindFiles returns the files below dir whose names end in suffix, in
// lexical order.  Hidden directories are skipped.
func FindFiles(dir, suffix string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), suffix) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files in %s: %w", dir, err)
	}
	return files, nil
}

// LoadModuleFile loads the module in the file at path unless a module of
// the same name is already loaded.
func (l *Loader) LoadModuleFile(path string) (ModuleID, error) {
	path = l.resolve(path)
	name, err := l.DetermineModuleName(path)
	if err != nil {
		return 0, err
	}
	if m, ok := l.idx.ModuleByName(name); ok {
		return m.ID, nil
	}
	return l.ReloadModuleFile(name, path)
}

// ReloadModuleFile loads the file at path as the module name, replacing a
// module already loaded under that name.
func (l *Loader) ReloadModuleFile(name, path string) (ModuleID, error) {
	path = l.resolve(path)
	if l.loading[name] {
		return 0, fmt.Errorf("module %s depends on itself", name)
	}
	l.loading[name] = true
	defer delete(l.loading, name)

	file, err := LoadFile(path, l.relativeName(path))
	if err != nil {
		return 0, err
	}
	p := newProcessedFile()
	if err := l.visitFile(p, file); err != nil {
		return 0, err
	}
	if p.allDefinedOut {
		for name, span := range p.defined {
			p.provides[name] = span
		}
	}
	id := l.idx.PutModule(&Module{
		Name:     name,
		Language: p.language,
		File:     file,
		Requires: p.requires,
		Provides: p.provides,
	})
	l.log.Info("loaded module", logging.FieldModule, name)
	return id, nil
}

// LoadModule returns the named module, loading it from the module paths if
// needed.
func (l *Loader) LoadModule(name string) (ModuleID, error) {
	if name == KernelModuleName {
		return l.idx.RootModule(), nil
	}
	if m, ok := l.idx.ModuleByName(name); ok {
		return m.ID, nil
	}
	path, ok := l.idx.FindModuleFile(name)
	if !ok {
		return 0, fmt.Errorf("cannot load module named %s: %w", name, ErrModuleNotFound)
	}
	return l.LoadModuleFile(path)
}

// LoadScript loads the files of a script and the modules it depends on.
// File names are relative to the package.  An existing script with the same
// name is replaced.
func (l *Loader) LoadScript(name string, topLevelModules, globalBindings, fileNames []string) (ScriptID, error) {
	for _, m := range topLevelModules {
		if _, err := l.LoadModule(m); err != nil {
			return 0, err
		}
	}
	files := make([]*File, 0, len(fileNames))
	for _, fileName := range fileNames {
		file, err := LoadFile(l.resolve(fileName), fileName)
		if err != nil {
			return 0, err
		}
		if err := l.visitFile(newProcessedFile(), file); err != nil {
			return 0, err
		}
		files = append(files, file)
	}
	return l.idx.PutScript(&Script{
		Name:            name,
		TopLevelModules: topLevelModules,
		GlobalBindings:  globalBindings,
		Files:           files,
	}), nil
}

// DetermineModuleName returns the name of the module stored at path, the
// path relative to its module directory without the .fusion extension.
func (l *Loader) DetermineModuleName(path string) (string, error) {
	path = l.resolve(path)
	parent, ok := l.idx.FindParentPath(path)
	if !ok {
		return "", fmt.Errorf("failed to find parent path of %s", path)
	}
	rel, err := filepath.Rel(parent, path)
	if err != nil {
		return "", fmt.Errorf("failed to find parent path of %s: %w", path, err)
	}
	rel = filepath.ToSlash(rel)
	i := strings.Index(rel, ".fusion")
	if i < 0 {
		return "", fmt.Errorf("%s is not a .fusion file", path)
	}
	return "/" + rel[:i], nil
}

func (l *Loader) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(l.idx.packagePath, filepath.FromSlash(path))
}

// relativeName returns path relative to the package when it lies inside it.
func (l *Loader) relativeName(path string) string {
	if within(l.idx.packagePath, path) {
		if rel, err := filepath.Rel(l.idx.packagePath, path); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return path
}

type processedFile struct {
	language      string
	allDefinedOut bool
	defined       map[string]token.Span
	requires      []RequireForm
	provides      map[string]token.Span
}

func newProcessedFile() *processedFile {
	return &processedFile{
		defined:  make(map[string]token.Span),
		provides: make(map[string]token.Span),
	}
}

func (l *Loader) visitFile(p *processedFile, file *File) error {
	for _, expr := range file.CST {
		if err := l.visitExpr(p, expr, false); err != nil {
			if serr, ok := err.(*SpanError); ok {
				return serr.Resolve(file)
			}
			return err
		}
	}
	return nil
}

func (l *Loader) visitExpr(p *processedFile, expr *ast.Expr, quoted bool) error {
	switch expr.Kind {
	case ast.SExpr:
		return l.visitSExpr(p, expr, quoted)
	case ast.List, ast.Struct:
		for _, item := range expr.ValueItems() {
			if err := l.visitExpr(p, item, quoted); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *Loader) visitAll(p *processedFile, items []*ast.Expr, quoted bool) error {
	for _, item := range items {
		if err := l.visitExpr(p, item, quoted); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) visitSExpr(p *processedFile, sexpr *ast.Expr, quoted bool) error {
	items := sexpr.ValueItems()
	if len(items) == 0 {
		return nil
	}
	head, ok := items[0].SymbolValue()
	if !ok {
		return nil
	}
	rest := items[1:]
	if quoted {
		if head == "unquote" {
			return l.visitAll(p, rest, false)
		}
		return l.visitAll(p, items, true)
	}
	switch head {
	case "define":
		visitDefinition(p.defined, rest)
	case "define_syntax", "defpub", "defpub_j", "defpub_syntax":
		visitDefinition(p.provides, rest)
	case "module":
		return l.visitModule(p, sexpr, rest)
	case "provide":
		return l.visitProvide(p, rest)
	case "quasiquote":
		return l.visitAll(p, rest, true)
	case "quote":
	case "require":
		return l.visitRequire(p, rest)
	default:
		return l.visitAll(p, items, false)
	}
	return nil
}

// visitDefinition records the name introduced by (define name ...) or
// (define (name args...) ...).
func visitDefinition(names map[string]token.Span, rest []*ast.Expr) {
	if len(rest) == 0 {
		return
	}
	target := rest[0]
	if name, ok := target.SymbolValue(); ok {
		names[name] = target.Span
		return
	}
	if !target.IsSExpr() {
		return
	}
	if args := target.ValueItems(); len(args) > 0 {
		if name, ok := args[0].SymbolValue(); ok {
			names[name] = args[0].Span
		}
	}
}

func (l *Loader) visitModule(p *processedFile, sexpr *ast.Expr, rest []*ast.Expr) error {
	if len(rest) == 0 {
		return spanErrorf(sexpr.Span, "missing module name")
	}
	var language string
	if len(rest) > 1 {
		if s, ok := rest[1].StringValue(); ok {
			language = s
		} else if s, ok := rest[1].StrippedSymbolValue(); ok {
			language = s
		}
	}
	if language == "" {
		return spanErrorf(sexpr.Span, "missing module language")
	}
	p.language = language
	if _, err := l.LoadModule(language); err != nil {
		return err
	}
	return l.visitAll(p, rest[2:], false)
}

func (l *Loader) visitRequire(p *processedFile, rest []*ast.Expr) error {
	for _, expr := range rest {
		switch {
		case expr.Kind == ast.QuotedString:
			id, err := l.LoadModule(expr.Value)
			if err != nil {
				return err
			}
			p.requires = append(p.requires, RequireForm{Module: id, Type: RequireAll})
		case expr.IsSExpr():
			if err := l.visitRequireSExpr(p, expr); err != nil {
				return err
			}
		default:
			return spanErrorf(expr.Span, "argument 0 to require must be string or s-expr")
		}
	}
	return nil
}

func (l *Loader) visitRequireSExpr(p *processedFile, sexpr *ast.Expr) error {
	items := sexpr.ValueItems()
	if len(items) == 0 {
		return nil
	}
	head, ok := items[0].SymbolValue()
	if !ok {
		return nil
	}
	switch head {
	case "only_in":
		return l.visitRequireOnlyIn(p, sexpr.Span, items[1:])
	case "prefix_in":
		return spanErrorf(items[0].Span, "support for `(require (prefix_in ...))` is not implemented")
	case "rename_in":
		return l.visitRequireRenameIn(p, sexpr.Span, items[1:])
	}
	return spanErrorf(items[0].Span, "invalid argument to require")
}

func (l *Loader) requiredModule(span token.Span, rest []*ast.Expr) (ModuleID, error) {
	if len(rest) == 0 {
		return 0, spanErrorf(span, "missing module name")
	}
	name, ok := rest[0].StringValue()
	if !ok {
		return 0, spanErrorf(span, "missing module name")
	}
	return l.LoadModule(name)
}

func (l *Loader) visitRequireOnlyIn(p *processedFile, span token.Span, rest []*ast.Expr) error {
	id, err := l.requiredModule(span, rest)
	if err != nil {
		return err
	}
	form := RequireForm{Module: id, Type: RequireNames}
	for _, expr := range rest[1:] {
		name, ok := expr.StrippedSymbolValue()
		if !ok {
			return spanErrorf(expr.Span, "non-symbol found in require only_in list")
		}
		form.Names = append(form.Names, Origin{Name: name, Span: expr.Span})
	}
	p.requires = append(p.requires, form)
	return nil
}

func (l *Loader) visitRequireRenameIn(p *processedFile, span token.Span, rest []*ast.Expr) error {
	id, err := l.requiredModule(span, rest)
	if err != nil {
		return err
	}
	form := RequireForm{Module: id, Type: RequireMapped, Mapped: make(map[string]Origin)}
	for _, expr := range rest[1:] {
		if !expr.IsSExpr() {
			return spanErrorf(expr.Span, "expected s-expression")
		}
		var pair []string
		for _, item := range expr.ValueItems() {
			name, ok := item.StrippedSymbolValue()
			if !ok {
				return spanErrorf(item.Span, "expected symbol")
			}
			pair = append(pair, name)
		}
		if len(pair) != 2 {
			return spanErrorf(expr.Span, "invalid rename_in mapping")
		}
		form.Mapped[pair[0]] = Origin{Name: pair[1], Span: expr.Span}
	}
	p.requires = append(p.requires, form)
	return nil
}

func (l *Loader) visitProvide(p *processedFile, rest []*ast.Expr) error {
	for _, provided := range rest {
		if name, ok := provided.StrippedSymbolValue(); ok {
			p.provides[name] = provided.Span
			continue
		}
		if !provided.IsSExpr() {
			continue
		}
		items := provided.ValueItems()
		if len(items) == 0 {
			return spanErrorf(provided.Span, "unexpected s-expression")
		}
		head, ok := items[0].SymbolValue()
		switch {
		case ok && head == "all_defined_out":
			p.allDefinedOut = true
		case ok && head == "rename_out":
			if err := l.visitRenameOut(p, items[0].Span, items[1:]); err != nil {
				return err
			}
		default:
			return spanErrorf(provided.Span, "expected all_defined_out or rename_out")
		}
	}
	return nil
}

func (l *Loader) visitRenameOut(p *processedFile, span token.Span, rest []*ast.Expr) error {
	if len(rest) == 0 || !rest[0].IsSExpr() {
		return spanErrorf(span, "rename_out expected s-expression")
	}
	pair := rest[0].ValueItems()
	var local, provided string
	var ok bool
	if len(pair) > 0 {
		local, ok = pair[0].SymbolValue()
	}
	if !ok {
		return spanErrorf(span, "rename_out requires a local name")
	}
	ok = false
	if len(pair) > 1 {
		provided, ok = pair[1].SymbolValue()
	}
	if !ok {
		return spanErrorf(span, "rename_out requires a provided name")
	}
	if origin, ok := p.defined[local]; ok {
		p.provides[provided] = origin
		return nil
	}
	for i := range p.requires {
		if origin, ok := p.requires[i].FindOrigin(l.idx, local); ok {
			p.provides[provided] = origin
			return nil
		}
	}
	return spanErrorf(span, "rename_out of %s, which is neither defined nor required", local)
}
