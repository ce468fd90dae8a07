package lint

import (
	"fmt"
	"regexp"

	"github.com/odvcencio/gts-modlint/pkg/ast"
)

// VisitorOptions selects which module systems ModuleVisitor inspects.
type VisitorOptions struct {
	ESModule bool
	CommonJS bool
	AMD      bool
	Ignore   []*regexp.Regexp
}

// visitorOptionsConfig is the JSON shape of the options; nil fields keep the
// defaults.
type visitorOptionsConfig struct {
	ESModule *bool    `json:"esmodule"`
	CommonJS *bool    `json:"commonjs"`
	AMD      *bool    `json:"amd"`
	Ignore   []string `json:"ignore"`
}

// VisitorSchema is the JSON schema shared by rules built on ModuleVisitor.
var VisitorSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"commonjs": map[string]any{"type": "boolean"},
		"amd":      map[string]any{"type": "boolean"},
		"esmodule": map[string]any{"type": "boolean"},
		"ignore": map[string]any{
			"type":        "array",
			"minItems":    1,
			"items":       map[string]any{"type": "string"},
			"uniqueItems": true,
		},
	},
	"additionalProperties": false,
}

// ParseVisitorOptions decodes module visitor options. ES modules and CommonJS
// are inspected unless disabled; AMD only when enabled.
func ParseVisitorOptions(raw map[string]any) (VisitorOptions, error) {
	var cfg visitorOptionsConfig
	if err := DecodeOptions(raw, &cfg); err != nil {
		return VisitorOptions{}, err
	}

	opts := VisitorOptions{ESModule: true, CommonJS: true}
	if cfg.ESModule != nil {
		opts.ESModule = *cfg.ESModule
	}
	if cfg.CommonJS != nil {
		opts.CommonJS = *cfg.CommonJS
	}
	if cfg.AMD != nil {
		opts.AMD = *cfg.AMD
	}
	for _, expr := range cfg.Ignore {
		re, err := regexp.Compile(expr)
		if err != nil {
			return VisitorOptions{}, fmt.Errorf("ignore pattern %q: %w", expr, err)
		}
		opts.Ignore = append(opts.Ignore, re)
	}
	return opts, nil
}

// SourceCheck is called for every module specifier literal. importer is the
// declaration or call that names it.
type SourceCheck func(source, importer *ast.Node)

// amdMagicModules are AMD dependency names that never refer to files.
var amdMagicModules = map[string]bool{
	"require": true,
	"exports": true,
}

// ModuleVisitor returns handlers that find module specifier string literals
// and pass them to check.
func ModuleVisitor(check SourceCheck, opts VisitorOptions) ast.Handlers {
	checkSource := func(source, importer *ast.Node) {
		if source == nil || !source.IsStringLiteral() {
			return
		}
		for _, re := range opts.Ignore {
			if re.MatchString(source.Value) {
				return
			}
		}
		check(source, importer)
	}

	handlers := ast.Handlers{}
	if opts.ESModule {
		declaration := func(node *ast.Node) {
			checkSource(node.Source, node)
		}
		handlers[ast.KindImportDeclaration] = declaration
		handlers[ast.KindExportNamedDeclaration] = declaration
		handlers[ast.KindExportAllDeclaration] = declaration
		handlers[ast.KindImportExpression] = declaration
	}

	if opts.CommonJS || opts.AMD {
		handlers[ast.KindCallExpression] = func(call *ast.Node) {
			if opts.CommonJS {
				checkCommon(call, checkSource)
			}
			if opts.AMD {
				checkAMD(call, checkSource)
			}
		}
	}
	return handlers
}

func checkCommon(call *ast.Node, checkSource SourceCheck) {
	if !call.Callee.IsIdentifier("require") || len(call.Arguments) != 1 {
		return
	}
	checkSource(call.Arguments[0], call)
}

func checkAMD(call *ast.Node, checkSource SourceCheck) {
	if !call.Callee.IsIdentifier("require") && !call.Callee.IsIdentifier("define") {
		return
	}
	if len(call.Arguments) != 2 {
		return
	}
	modules := call.Arguments[0]
	if modules.Kind != ast.KindArrayExpression {
		return
	}
	for _, element := range modules.Elements {
		if !element.IsStringLiteral() || amdMagicModules[element.Value] {
			continue
		}
		checkSource(element, element)
	}
}
