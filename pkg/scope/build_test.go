package scope

import (
	"testing"

	"github.com/odvcencio/gts-modlint/pkg/ast"
	"github.com/odvcencio/gts-modlint/pkg/lang/treesitter"
)

func analyzeJS(t *testing.T, source string) *Manager {
	t.Helper()
	parser, err := treesitter.NewParser("index.js")
	if err != nil {
		t.Fatalf("NewParser returned error: %v", err)
	}
	program, err := parser.Parse([]byte(source))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	return Analyze(program)
}

func TestAnalyzeRootScopes(t *testing.T) {
	m := analyzeJS(t, "const a = 1\n")

	if m.Global == nil || m.Module == nil {
		t.Fatal("Analyze: expected global and module scopes")
	}
	if m.Module.Parent != m.Global {
		t.Fatal("Analyze: module scope should be a child of global")
	}
	if m.Module.Variable("a") == nil {
		t.Fatal("Analyze: top-level const should live in module scope")
	}
	if m.Global.Variable("a") != nil {
		t.Fatal("Analyze: module code must not declare into global scope")
	}
}

func TestAnalyzeImportBindings(t *testing.T) {
	m := analyzeJS(t, `import def, { module, b as c } from "qux"
import * as ns from "ns"
`)

	for _, name := range []string{"def", "module", "c", "ns"} {
		v := m.Module.Variable(name)
		if v == nil {
			t.Fatalf("expected import binding %q in module scope", name)
		}
		if v.Defs[0].Kind != DefImportBinding {
			t.Fatalf("expected %q to be an import binding, got %s", name, v.Defs[0].Kind)
		}
	}
	if m.Module.Variable("b") != nil {
		t.Fatal("imported name b is renamed and must not be bound")
	}
}

func TestAnalyzeFunctionParameters(t *testing.T) {
	m := analyzeJS(t, `function a(module) {
	module.exports = 1
}
`)

	if v := m.Module.Variable("a"); v == nil || v.Defs[0].Kind != DefFunctionName {
		t.Fatal("function name should be declared in module scope")
	}

	var fn *Scope
	for _, s := range m.Scopes {
		if s.Kind == ScopeFunction {
			fn = s
		}
	}
	if fn == nil {
		t.Fatal("expected a function scope")
	}
	v := fn.Variable("module")
	if v == nil || v.Defs[0].Kind != DefParameter {
		t.Fatalf("expected parameter module in function scope, got %+v", v)
	}
	for _, s := range m.Scopes {
		if s.Kind == ScopeBlock {
			t.Fatal("function body must not open a separate block scope")
		}
	}
}

func TestAnalyzeVarHoisting(t *testing.T) {
	m := analyzeJS(t, `function f() {
	if (x) {
		var hoisted = 1
		let scoped = 2
	}
}
`)

	var fn, block *Scope
	for _, s := range m.Scopes {
		switch s.Kind {
		case ScopeFunction:
			fn = s
		case ScopeBlock:
			block = s
		}
	}
	if fn == nil || block == nil {
		t.Fatalf("expected function and block scopes, got %d scopes", len(m.Scopes))
	}
	if fn.Variable("hoisted") == nil {
		t.Fatal("var should hoist to the function scope")
	}
	if block.Variable("hoisted") != nil {
		t.Fatal("var must not stay in the block scope")
	}
	if block.Variable("scoped") == nil {
		t.Fatal("let should stay in the block scope")
	}
}

func TestAnalyzeLoopsCatchAndClasses(t *testing.T) {
	m := analyzeJS(t, `for (let i = 0; i < 1; i++) {}
for (const k of list) {}
try {} catch (err) {}
class Widget {}
const named = function inner() {}
`)

	kinds := map[ScopeKind]int{}
	for _, s := range m.Scopes {
		kinds[s.Kind]++
	}
	if kinds[ScopeFor] != 2 {
		t.Fatalf("expected 2 for scopes, got %d", kinds[ScopeFor])
	}
	if kinds[ScopeCatch] != 1 || kinds[ScopeClass] != 1 || kinds[ScopeFunctionExpressionName] != 1 {
		t.Fatalf("unexpected scope kinds %v", kinds)
	}

	for _, s := range m.Scopes {
		switch s.Kind {
		case ScopeFor:
			if s.Variable("i") == nil && s.Variable("k") == nil {
				t.Fatal("loop binding missing from for scope")
			}
		case ScopeCatch:
			if v := s.Variable("err"); v == nil || v.Defs[0].Kind != DefCatchClause {
				t.Fatal("catch parameter missing from catch scope")
			}
		case ScopeFunctionExpressionName:
			if s.Variable("inner") == nil {
				t.Fatal("function expression name missing")
			}
		}
	}
	if m.Module.Variable("Widget") == nil {
		t.Fatal("class declaration name should be in module scope")
	}
	if m.Module.Variable("inner") != nil {
		t.Fatal("function expression name must not leak into module scope")
	}
}

func TestAcquire(t *testing.T) {
	parser, err := treesitter.NewParser("index.js")
	if err != nil {
		t.Fatalf("NewParser returned error: %v", err)
	}
	program, err := parser.Parse([]byte("function f() {}\n"))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	m := Analyze(program)

	if got := m.Acquire(program); got != m.Global {
		t.Fatalf("Acquire(program) should return global scope, got %v", got)
	}
	fn := ast.Find(program, func(n *ast.Node) bool { return n.Kind == ast.KindFunctionDeclaration })
	if s := m.Acquire(fn); s == nil || s.Kind != ScopeFunction {
		t.Fatalf("Acquire(function) returned %v", s)
	}
}

func TestAnalyzeNil(t *testing.T) {
	m := Analyze(nil)
	if m.Module != nil || len(m.Scopes) != 0 {
		t.Fatal("Analyze(nil) should return an empty manager")
	}
	if m.FindScope("x") != nil {
		t.Fatal("FindScope on empty manager should be nil")
	}
}
