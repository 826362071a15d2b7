// Copyright © 2024 The Fuus Army Knife authors

// Package parser reads Fusion source into concrete syntax trees.  The
// lexer, token and rdparser subpackages hold the implementation.
package parser

import (
	"fmt"
	"io"
	"os"

	"github.com/ion-fusion/fuus-army-knife/ast"
	"github.com/ion-fusion/fuus-army-knife/parser/rdparser"
)

// Read parses everything r yields.  name is used in error locations.  The
// source is returned with the trees since spans refer to it.
func Read(name string, r io.Reader) ([]byte, []*ast.Expr, error) {
	source, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	exprs, err := rdparser.Parse(name, source)
	if err != nil {
		return source, nil, err
	}
	return source, exprs, nil
}

// ReadFile parses the file at path.
func ReadFile(path string) ([]byte, []*ast.Expr, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer f.Close()
	return Read(path, f)
}
