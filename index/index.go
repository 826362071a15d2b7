// Copyright © 2024 The Fuus Army Knife authors

// Package index builds a graph of the modules and test scripts of a Fusion
// package.  Modules and scripts live in an arena owned by Index and refer
// to each other through ModuleID and ScriptID handles.
package index

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ion-fusion/fuus-army-knife/parser/token"
)

// KernelModuleName is the root of every language chain.  The kernel module
// has no file and provides nothing.
const KernelModuleName = "/fusion/private/kernel"

// ErrModuleNotFound is returned when no module path contains a module file.
var ErrModuleNotFound = errors.New("no module file found in module paths")

// ModuleID addresses a module within its Index.
type ModuleID int

// ScriptID addresses a script within its Index.
type ScriptID int

// Origin is a name together with the span it was introduced by.
type Origin struct {
	Name string
	Span token.Span
}

// RequireType distinguishes the forms of require.
type RequireType int

const (
	// RequireAll imports every binding of a module: (require "m").
	RequireAll RequireType = iota
	// RequireNames imports selected bindings: (require (only_in "m" a b)).
	RequireNames
	// RequireMapped imports renamed bindings: (require (rename_in "m" (a b))).
	RequireMapped
)

func (t RequireType) String() string {
	switch t {
	case RequireAll:
		return "all"
	case RequireNames:
		return "names"
	case RequireMapped:
		return "mapped"
	}
	return "unknown"
}

// RequireForm is one module import of a module.
type RequireForm struct {
	Module ModuleID
	Type   RequireType
	// Names holds the imported names of a RequireNames form.
	Names []Origin
	// Mapped maps the module's name of a binding to its local Origin for a
	// RequireMapped form.
	Mapped map[string]Origin
}

// FindOrigin returns the span that introduced name through r.
func (r *RequireForm) FindOrigin(idx *Index, name string) (token.Span, bool) {
	switch r.Type {
	case RequireAll:
		span, ok := idx.Module(r.Module).Provides[name]
		return span, ok
	case RequireNames:
		for _, o := range r.Names {
			if o.Name == name {
				return o.Span, true
			}
		}
	case RequireMapped:
		for _, from := range sortedKeys(r.Mapped) {
			if o := r.Mapped[from]; o.Name == name {
				return o.Span, true
			}
		}
	}
	return token.Span{}, false
}

// Module is a loaded module file.
type Module struct {
	ID       ModuleID
	Name     string
	Language string
	File     *File
	Requires []RequireForm
	Provides map[string]token.Span
}

// ProvidedNames returns the names m provides in sorted order.
func (m *Module) ProvidedNames() []string {
	return sortedKeys(m.Provides)
}

// Script is a test script.  Its files are evaluated in a top-level
// environment made of the provides of its top-level modules and its global
// bindings.
type Script struct {
	ID              ScriptID
	Name            string
	TopLevelModules []string
	GlobalBindings  []string
	Files           []*File
}

// Index holds every module and script known for a package.
type Index struct {
	packagePath string
	modulePaths []string

	modules   []*Module
	moduleIDs map[string]ModuleID
	scripts   []*Script
	scriptIDs map[string]ScriptID
}

// New returns an empty index for the package at packagePath.  Module files
// are searched for in modulePaths, in order.  Relative module paths are
// relative to packagePath.
func New(packagePath string, modulePaths []string) (*Index, error) {
	abs, err := filepath.Abs(packagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve package path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve package path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("package path %s is not a directory", abs)
	}
	idx := &Index{
		packagePath: abs,
		moduleIDs:   make(map[string]ModuleID),
		scriptIDs:   make(map[string]ScriptID),
	}
	for _, p := range modulePaths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(abs, p)
		}
		idx.modulePaths = append(idx.modulePaths, filepath.Clean(p))
	}
	return idx, nil
}

// PackagePath returns the absolute path of the package.
func (idx *Index) PackagePath() string {
	return idx.packagePath
}

// ModulePaths returns the absolute module search paths.
func (idx *Index) ModulePaths() []string {
	return idx.modulePaths
}

// Module returns the module with the given id.
func (idx *Index) Module(id ModuleID) *Module {
	return idx.modules[id]
}

// Script returns the script with the given id.
func (idx *Index) Script(id ScriptID) *Script {
	return idx.scripts[id]
}

// ModuleByName looks up a module by name.
func (idx *Index) ModuleByName(name string) (*Module, bool) {
	id, ok := idx.moduleIDs[name]
	if !ok {
		return nil, false
	}
	return idx.modules[id], true
}

// ScriptByName looks up a script by name.
func (idx *Index) ScriptByName(name string) (*Script, bool) {
	id, ok := idx.scriptIDs[name]
	if !ok {
		return nil, false
	}
	return idx.scripts[id], true
}

// Modules returns all modules ordered by name.
func (idx *Index) Modules() []*Module {
	mods := make([]*Module, 0, len(idx.modules))
	for _, name := range sortedKeys(idx.moduleIDs) {
		mods = append(mods, idx.modules[idx.moduleIDs[name]])
	}
	return mods
}

// Scripts returns all scripts ordered by name.
func (idx *Index) Scripts() []*Script {
	scripts := make([]*Script, 0, len(idx.scripts))
	for _, name := range sortedKeys(idx.scriptIDs) {
		scripts = append(scripts, idx.scripts[idx.scriptIDs[name]])
	}
	return scripts
}

// PutModule stores m.  A module with the same name is replaced in place so
// that requires referring to it see the new module.
func (idx *Index) PutModule(m *Module) ModuleID {
	if id, ok := idx.moduleIDs[m.Name]; ok {
		m.ID = id
		idx.modules[id] = m
		return id
	}
	m.ID = ModuleID(len(idx.modules))
	idx.modules = append(idx.modules, m)
	idx.moduleIDs[m.Name] = m.ID
	return m.ID
}

// PutScript stores s, replacing a script with the same name.
func (idx *Index) PutScript(s *Script) ScriptID {
	if id, ok := idx.scriptIDs[s.Name]; ok {
		s.ID = id
		idx.scripts[id] = s
		return id
	}
	s.ID = ScriptID(len(idx.scripts))
	idx.scripts = append(idx.scripts, s)
	idx.scriptIDs[s.Name] = s.ID
	return s.ID
}

// RootModule returns the kernel module, creating it on first use.
func (idx *Index) RootModule() ModuleID {
	if id, ok := idx.moduleIDs[KernelModuleName]; ok {
		return id
	}
	return idx.PutModule(&Module{
		Name:     KernelModuleName,
		Language: KernelModuleName,
		File:     EmptyFile(),
		Provides: map[string]token.Span{},
	})
}

// FindModuleFile returns the first file in the module paths that holds the
// named module.
func (idx *Index) FindModuleFile(name string) (string, bool) {
	rel := filepath.FromSlash(strings.TrimPrefix(name, "/") + ".fusion")
	for _, dir := range idx.modulePaths {
		path := filepath.Join(dir, rel)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// FindParentPath returns the first module path containing file.
func (idx *Index) FindParentPath(file string) (string, bool) {
	for _, dir := range idx.modulePaths {
		if within(dir, file) {
			return dir, true
		}
	}
	return "", false
}

// within reports whether path is dir or lies below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
