// Package noabsolutepath reports module specifiers that are absolute
// filesystem paths and rewrites them relative to the importing file.
package noabsolutepath

import (
	"path/filepath"
	"strings"

	"github.com/odvcencio/gts-modlint/pkg/ast"
	"github.com/odvcencio/gts-modlint/pkg/lint"
)

// Name is the rule identifier.
const Name = "no-absolute-path"

// MessageAbsolute is the only message this rule reports.
const MessageAbsolute = "absolute"

// Rule is the no-absolute-path rule.
type Rule struct{}

// New creates the rule.
func New() *Rule {
	return &Rule{}
}

func (r *Rule) Meta() lint.Meta {
	return lint.Meta{
		Name:        Name,
		Type:        lint.TypeSuggestion,
		Category:    "Static analysis",
		Description: "Forbid import of modules using absolute paths.",
		Recommended: true,
		Fixable:     true,
		Schema:      lint.VisitorSchema,
		Messages: map[string]string{
			MessageAbsolute: "Do not import modules using an absolute path",
		},
	}
}

func (r *Rule) Create(ctx *lint.Context) (ast.Handlers, error) {
	opts, err := lint.ParseVisitorOptions(ctx.Options)
	if err != nil {
		return nil, err
	}

	dir := filepath.ToSlash(filepath.Dir(ctx.PhysicalFilename))
	check := func(source, _ *ast.Node) {
		if !IsAbsolute(source.Value) {
			return
		}
		rewritten := Relativize(dir, source.Value)
		ctx.Report(source, MessageAbsolute, lint.ReplaceNode(source, Quote(rewritten, source.Quote)))
	}
	return lint.ModuleVisitor(check, opts), nil
}

// IsAbsolute reports whether a specifier is an absolute POSIX path.
func IsAbsolute(specifier string) bool {
	return strings.HasPrefix(specifier, "/")
}

// Relativize rewrites target relative to dir with POSIX semantics. The result
// always starts with "." so it can never be read as a package name; identical
// directories give ".".
func Relativize(dir, target string) string {
	rel, err := relativePOSIX(dir, target)
	if err != nil {
		return target
	}
	if !strings.HasPrefix(rel, ".") {
		rel = "./" + rel
	}
	return rel
}

func relativePOSIX(dir, target string) (string, error) {
	rel, err := filepath.Rel(filepath.FromSlash(dir), filepath.FromSlash(target))
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// Quote renders value as a string literal using quote, escaping as needed.
func Quote(value string, quote byte) string {
	if quote != '\'' {
		quote = '"'
	}
	var b strings.Builder
	b.Grow(len(value) + 2)
	b.WriteByte(quote)
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch c {
		case '\\', quote:
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(quote)
	return b.String()
}

var _ lint.Rule = (*Rule)(nil)
