// Package treesitter parses JavaScript and TypeScript sources with gotreesitter
// and lowers the concrete parse tree into the ast package's node model.
package treesitter

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/odvcencio/gotreesitter"
	"github.com/odvcencio/gotreesitter/grammars"

	"github.com/odvcencio/gts-modlint/pkg/ast"
	"github.com/odvcencio/gts-modlint/pkg/lang"
)

// probeNames maps a source extension to the file name used to pick a grammar.
var probeNames = map[string]string{
	".js":  "source.js",
	".mjs": "source.js",
	".cjs": "source.js",
	".jsx": "source.js",
	".ts":  "source.ts",
	".mts": "source.ts",
	".cts": "source.ts",
	".tsx": "source.tsx",
}

// Supports reports whether path has an extension this package can parse.
func Supports(path string) bool {
	_, ok := probeNames[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Parser is not safe for concurrent use; create one per goroutine.
type Parser struct {
	entry  *grammars.LangEntry
	lang   *gotreesitter.Language
	parser *gotreesitter.Parser
}

func NewParser(path string) (*Parser, error) {
	probe, ok := probeNames[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("unsupported source file %q", path)
	}

	entry := grammars.DetectLanguage(probe)
	if entry == nil {
		return nil, fmt.Errorf("no grammar registered for %q", probe)
	}
	if entry.Language == nil {
		return nil, fmt.Errorf("language loader is required for %q", entry.Name)
	}

	lang := entry.Language()
	if lang == nil {
		return nil, fmt.Errorf("language loader returned nil for %q", entry.Name)
	}

	return &Parser{
		entry:  entry,
		lang:   lang,
		parser: gotreesitter.NewParser(lang),
	}, nil
}

// Open is a lang.Factory backed by NewParser.
func Open(path string) (lang.Parser, error) {
	p, err := NewParser(path)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) Language() string {
	return p.entry.Name
}

// Parse parses src and returns the lowered Program node.
func (p *Parser) Parse(src []byte) (*ast.Node, error) {
	if len(src) == 0 {
		return &ast.Node{Kind: ast.KindProgram, Type: "program", Line: 1, Column: 1, EndLine: 1, EndColumn: 1}, nil
	}

	tree, err := p.parseTree(src)
	if err != nil {
		return nil, fmt.Errorf("parse %s source: %w", p.entry.Name, err)
	}
	if tree == nil {
		return nil, errors.New("parser returned no tree")
	}
	defer tree.Release()

	root := tree.RootNode()
	if root == nil {
		return nil, errors.New("parse tree has no root node")
	}

	program := newLowerer(p.lang, src).lower(root)
	program.Kind = ast.KindProgram
	return program, nil
}

func (p *Parser) parseTree(src []byte) (*gotreesitter.Tree, error) {
	if p.entry.TokenSourceFactory != nil {
		if ts := p.entry.TokenSourceFactory(src, p.lang); ts != nil {
			return p.parser.ParseWithTokenSource(src, ts)
		}
	}
	return p.parser.Parse(src)
}
