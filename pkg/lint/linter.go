package lint

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/odvcencio/gts-modlint/pkg/ast"
	"github.com/odvcencio/gts-modlint/pkg/cache"
	"github.com/odvcencio/gts-modlint/pkg/ignore"
	"github.com/odvcencio/gts-modlint/pkg/lang"
	"github.com/odvcencio/gts-modlint/pkg/lang/treesitter"
	"github.com/odvcencio/gts-modlint/pkg/model"
	"github.com/odvcencio/gts-modlint/pkg/scope"
)

// MaxFixPasses bounds how often FixSource re-lints a file.
const MaxFixPasses = 10

// Enabled is a rule together with its options for one run.
type Enabled struct {
	Rule    Rule
	Options map[string]any
}

// Options configures a Linter.
type Options struct {
	Rules   []Enabled
	Ignore  *ignore.Matcher
	Workers int
	Fix     bool
	// Cache may be nil to disable result caching.
	Cache *cache.Cache
	// Fingerprint identifies the effective configuration for cache keys.
	Fingerprint string
	Logger      *slog.Logger
	// Parsers defaults to the tree-sitter parsers.
	Parsers lang.Factory
}

// Linter runs a fixed set of rules over JavaScript sources.
type Linter struct {
	rules       []Enabled
	ignore      *ignore.Matcher
	workers     int
	fix         bool
	cache       *cache.Cache
	fingerprint string
	logger      *slog.Logger
	parsers     lang.Factory
}

// New creates a Linter.
func New(opts Options) *Linter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	parsers := opts.Parsers
	if parsers == nil {
		parsers = treesitter.Open
	}
	return &Linter{
		rules:       opts.Rules,
		ignore:      opts.Ignore,
		workers:     opts.Workers,
		fix:         opts.Fix,
		cache:       opts.Cache,
		fingerprint: opts.Fingerprint,
		logger:      logger,
		parsers:     parsers,
	}
}

// Rules returns the enabled rules.
func (l *Linter) Rules() []Enabled {
	return l.rules
}

// RuleError reports that a rule could not be created for a file.
type RuleError struct {
	Rule string
	Path string
	Err  error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s on %s: %v", e.Rule, e.Path, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

// LintSource lints src as the contents of path. Rules that fail to start are
// joined into the returned error while the remaining rules still report; a
// parse failure returns no diagnostics.
func (l *Linter) LintSource(path string, src []byte) ([]model.Diagnostic, error) {
	parser, err := l.parsers(path)
	if err != nil {
		return nil, err
	}
	program, err := parser.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return l.lintProgram(path, src, program)
}

func (l *Linter) lintProgram(path string, src []byte, program *ast.Node) ([]model.Diagnostic, error) {
	manager := scope.Analyze(program)
	physical := PhysicalPath(path)

	contexts := make([]*Context, 0, len(l.rules))
	tables := make([]ast.Handlers, 0, len(l.rules))
	var errs []error
	for _, enabled := range l.rules {
		ctx := &Context{
			Filename:         path,
			PhysicalFilename: physical,
			Options:          enabled.Options,
			Source:           src,
			Scope:            manager,
			meta:             enabled.Rule.Meta(),
		}
		handlers, err := enabled.Rule.Create(ctx)
		if err != nil {
			errs = append(errs, &RuleError{Rule: ctx.meta.Name, Path: path, Err: err})
			continue
		}
		contexts = append(contexts, ctx)
		tables = append(tables, handlers)
	}

	ast.Dispatch(program, tables...)

	var diagnostics []model.Diagnostic
	for _, ctx := range contexts {
		diagnostics = append(diagnostics, ctx.diagnostics...)
	}
	SortDiagnostics(diagnostics)
	return diagnostics, errors.Join(errs...)
}

// PhysicalPath returns the absolute, symlink-resolved form of path, or the
// cleanest form available when it does not exist.
func PhysicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

// SortDiagnostics orders diagnostics by position, then rule. The sort is
// stable so diagnostics a rule reports at one node keep their order.
func SortDiagnostics(diagnostics []model.Diagnostic) {
	sort.SliceStable(diagnostics, func(i, j int) bool {
		if diagnostics[i].Line == diagnostics[j].Line {
			if diagnostics[i].Column == diagnostics[j].Column {
				return diagnostics[i].RuleID < diagnostics[j].RuleID
			}
			return diagnostics[i].Column < diagnostics[j].Column
		}
		return diagnostics[i].Line < diagnostics[j].Line
	})
}
