// Copyright © 2024 The Fuus Army Knife authors

package check

// Scope is a lexical scope.  Names bound at the top level of a module or
// script are recorded in the environment shared by the whole scope chain so
// that they stay visible after the scope that bound them is left.
type Scope struct {
	Parent   *Scope
	Bindings map[string]bool
	env      *environment
}

type environment struct {
	topLevel map[string]bool
}

// NewRootScope returns a scope binding names.
func NewRootScope(names []string) *Scope {
	s := &Scope{
		Bindings: make(map[string]bool, len(names)),
		env:      &environment{topLevel: make(map[string]bool)},
	}
	for _, name := range names {
		s.Bindings[name] = true
	}
	return s
}

// Child returns a new scope nested in s.
func (s *Scope) Child() *Scope {
	return &Scope{
		Parent:   s,
		Bindings: make(map[string]bool),
		env:      s.env,
	}
}

// Bind binds name in s.
func (s *Scope) Bind(name string) {
	s.Bindings[name] = true
}

// BindTopLevel binds name for the whole resource being checked.
func (s *Scope) BindTopLevel(name string) {
	s.env.topLevel[name] = true
}

// Contains reports whether name is bound in s, one of its parents or the
// top level.
func (s *Scope) Contains(name string) bool {
	for scope := s; scope != nil; scope = scope.Parent {
		if scope.Bindings[name] {
			return true
		}
	}
	return s.env.topLevel[name]
}
