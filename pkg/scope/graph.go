// Package scope provides the scope tree for one JavaScript module: the
// declaration contexts it contains, the variables each one introduces, and
// the definitions behind those variables.
package scope

import "github.com/odvcencio/gts-modlint/pkg/ast"

// ScopeKind classifies the type of lexical scope.
type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota
	ScopeModule
	ScopeFunction
	ScopeFunctionExpressionName
	ScopeBlock
	ScopeCatch
	ScopeClass
	ScopeFor
	ScopeSwitch
)

var scopeKindNames = [...]string{
	ScopeGlobal:                 "global",
	ScopeModule:                 "module",
	ScopeFunction:               "function",
	ScopeFunctionExpressionName: "function-expression-name",
	ScopeBlock:                  "block",
	ScopeCatch:                  "catch",
	ScopeClass:                  "class",
	ScopeFor:                    "for",
	ScopeSwitch:                 "switch",
}

func (k ScopeKind) String() string {
	if int(k) >= 0 && int(k) < len(scopeKindNames) {
		return scopeKindNames[k]
	}
	return "unknown"
}

// DefKind constants classify the type of a definition.
const (
	DefImportBinding = "ImportBinding"
	DefVariable      = "Variable"
	DefParameter     = "Parameter"
	DefFunctionName  = "FunctionName"
	DefClassName     = "ClassName"
	DefCatchClause   = "CatchClause"
)

// Definition is one place a variable is declared.
type Definition struct {
	Kind string    // one of the Def* constants
	Name *ast.Node // the binding identifier
	Node *ast.Node // the declaring node (specifier, declarator, function, ...)
}

// Variable is a name declared in a scope together with every identifier and
// definition that declares it there.
type Variable struct {
	Name        string
	Identifiers []*ast.Node
	Defs        []Definition
	Scope       *Scope
}

// Scope is one declaration context.
type Scope struct {
	Kind      ScopeKind
	Block     *ast.Node
	Parent    *Scope
	Children  []*Scope
	Variables []*Variable

	set map[string]*Variable
}

// NewScope creates a new scope of the given kind and attaches it as a child
// of the parent scope. If parent is nil, the scope is a root.
func NewScope(kind ScopeKind, block *ast.Node, parent *Scope) *Scope {
	s := &Scope{
		Kind:   kind,
		Block:  block,
		Parent: parent,
		set:    make(map[string]*Variable),
	}
	if parent != nil {
		parent.Children = append(parent.Children, s)
	}
	return s
}

// Define records def for the identifier name in this scope, creating the
// variable on first use.
func (s *Scope) Define(name *ast.Node, def Definition) *Variable {
	if name == nil || name.Name == "" {
		return nil
	}
	v, ok := s.set[name.Name]
	if !ok {
		v = &Variable{Name: name.Name, Scope: s}
		s.set[name.Name] = v
		s.Variables = append(s.Variables, v)
	}
	v.Identifiers = append(v.Identifiers, name)
	v.Defs = append(v.Defs, def)
	return v
}

// Variable returns the variable named name declared directly in s.
func (s *Scope) Variable(name string) *Variable {
	if s == nil {
		return nil
	}
	return s.set[name]
}

// VariableScope returns the nearest scope that receives var declarations.
func (s *Scope) VariableScope() *Scope {
	for cur := s; cur != nil; cur = cur.Parent {
		switch cur.Kind {
		case ScopeFunction, ScopeModule, ScopeGlobal:
			return cur
		}
	}
	return s
}

// Manager holds every scope of one module in creation order.
type Manager struct {
	Scopes []*Scope
	Global *Scope
	Module *Scope

	byBlock map[*ast.Node]*Scope
}

func newManager() *Manager {
	return &Manager{byBlock: make(map[*ast.Node]*Scope)}
}

func (m *Manager) push(kind ScopeKind, block *ast.Node, parent *Scope) *Scope {
	s := NewScope(kind, block, parent)
	m.Scopes = append(m.Scopes, s)
	if _, exists := m.byBlock[block]; !exists {
		m.byBlock[block] = s
	}
	return s
}

// Acquire returns the first scope created for node, or nil.
func (m *Manager) Acquire(node *ast.Node) *Scope {
	if m == nil {
		return nil
	}
	return m.byBlock[node]
}
