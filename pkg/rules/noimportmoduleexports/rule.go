// Package noimportmoduleexports reports import declarations in files that
// also export through CommonJS module.exports or exports.
package noimportmoduleexports

import (
	"github.com/odvcencio/gts-modlint/pkg/ast"
	"github.com/odvcencio/gts-modlint/pkg/entrypoint"
	"github.com/odvcencio/gts-modlint/pkg/ignore"
	"github.com/odvcencio/gts-modlint/pkg/lint"
)

// Name is the rule identifier.
const Name = "no-import-module-exports"

// MessageNotAllowed is the only message this rule reports.
const MessageNotAllowed = "notAllowed"

// Options is the first options slot.
type Options struct {
	Exceptions []string `json:"exceptions"`
}

// exportHandles are the CommonJS objects an assignment exports through.
var exportHandles = map[string]bool{
	"module":  true,
	"exports": true,
}

// Rule is the no-import-module-exports rule.
type Rule struct {
	locator *entrypoint.Locator
}

// New creates the rule. locator may be shared across files; nil disables the
// entry-point exemption.
func New(locator *entrypoint.Locator) *Rule {
	return &Rule{locator: locator}
}

func (r *Rule) Meta() lint.Meta {
	return lint.Meta{
		Name:        Name,
		Type:        lint.TypeProblem,
		Category:    "Module systems",
		Description: "Forbid import statements with CommonJS module.exports.",
		Recommended: true,
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"exceptions": map[string]any{"type": "array"},
			},
			"additionalProperties": false,
		},
		Messages: map[string]string{
			MessageNotAllowed: "Cannot use import declarations in modules that export using CommonJS (module.exports = 'foo' or exports.bar = 'hi')",
		},
	}
}

func (r *Rule) Create(ctx *lint.Context) (ast.Handlers, error) {
	var opts Options
	if err := ctx.DecodeOptions(&opts); err != nil {
		return nil, err
	}
	if err := ignore.ValidatePatterns(opts.Exceptions); err != nil {
		return nil, err
	}
	isException, err := ignore.MatchAny(ctx.PhysicalFilename, opts.Exceptions)
	if err != nil {
		return nil, err
	}

	s := &session{
		rule:        r,
		ctx:         ctx,
		isException: isException,
	}
	return ast.Handlers{
		ast.KindImportDeclaration: s.importDeclaration,
		ast.KindMemberExpression:  s.memberExpression,
	}, nil
}

// session is the per-file state.
type session struct {
	rule        *Rule
	ctx         *lint.Context
	isException bool

	imports  []*ast.Node
	reported bool

	entryChecked bool
	isEntryPoint bool
}

func (s *session) importDeclaration(node *ast.Node) {
	s.imports = append(s.imports, node)
}

func (s *session) memberExpression(node *ast.Node) {
	if s.reported {
		return
	}
	object := node.Object
	if object == nil || object.Kind != ast.KindIdentifier {
		return
	}
	if !exportHandles[object.Name] {
		return
	}

	binding := s.ctx.Scope.Lookup(object.Name)
	if binding.IsImportBinding() || !binding.TopLevel() {
		return
	}
	if s.isException || s.entryPoint() {
		return
	}

	for _, decl := range s.imports {
		s.ctx.Report(decl, MessageNotAllowed, nil)
	}
	s.reported = true
}

// entryPoint resolves lazily so files without CommonJS exports never touch
// the filesystem.
func (s *session) entryPoint() bool {
	if !s.entryChecked {
		s.entryChecked = true
		if s.rule.locator != nil {
			s.isEntryPoint = s.rule.locator.IsEntryPoint(s.ctx.PhysicalFilename)
		}
	}
	return s.isEntryPoint
}

var _ lint.Rule = (*Rule)(nil)

