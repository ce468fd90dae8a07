// Package lang defines the parser contract the linter depends on.
package lang

import "github.com/odvcencio/gts-modlint/pkg/ast"

// Parser lowers source files of one language into Program nodes.
type Parser interface {
	// Language returns the name of the grammar the parser was built for.
	Language() string
	// Parse converts src into its Program node.
	Parse(src []byte) (*ast.Node, error)
}

// Factory returns a Parser for path, or an error when the file type is not
// supported.
type Factory func(path string) (Parser, error)
