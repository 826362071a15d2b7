// Copyright © 2024 The Fuus Army Knife authors

package index

import (
	"fmt"
	"os"

	"github.com/ion-fusion/fuus-army-knife/ast"
	"github.com/ion-fusion/fuus-army-knife/parser/rdparser"
)

// File is a parsed source file.
type File struct {
	// Name is the path used in messages.  It is relative to the package when
	// the file lies inside it.
	Name string
	// Path is the absolute path of the file, empty for synthesized files.
	Path   string
	Source []byte
	CST    []*ast.Expr
}

// EmptyFile returns a file with no content.
func EmptyFile() *File {
	return &File{}
}

// LoadFile reads and parses the file at path.  name is used in messages.
func LoadFile(path, name string) (*File, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	f, err := ParseFile(name, source)
	if err != nil {
		return nil, err
	}
	f.Path = path
	return f, nil
}

// ParseFile parses source held in memory.
func ParseFile(name string, source []byte) (*File, error) {
	cst, err := rdparser.Parse(name, source)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	return &File{Name: name, Source: source, CST: cst}, nil
}
