package scope

import "github.com/odvcencio/gts-modlint/pkg/ast"

// Analyze builds the scope tree for a module program. Module code is always
// strict: top-level declarations live in the module scope, block-level
// function declarations are block scoped and var declarations hoist to the
// nearest function or module scope.
func Analyze(program *ast.Node) *Manager {
	m := newManager()
	if program == nil {
		return m
	}

	m.Global = m.push(ScopeGlobal, program, nil)
	m.Module = m.push(ScopeModule, program, m.Global)

	b := &builder{m: m}
	b.visitChildren(program, m.Module)
	return m
}

type builder struct {
	m *Manager
}

func (b *builder) visitChildren(node *ast.Node, s *Scope) {
	for _, child := range node.Children {
		b.visit(child, s)
	}
}

func (b *builder) visit(node *ast.Node, s *Scope) {
	if node == nil {
		return
	}

	switch node.Kind {
	case ast.KindImportDeclaration:
		for _, spec := range node.Specifiers {
			if spec.Local == nil {
				continue
			}
			s.Define(spec.Local, Definition{Kind: DefImportBinding, Name: spec.Local, Node: spec})
		}
		b.visitChildren(node, s)

	case ast.KindFunctionDeclaration:
		if node.ID != nil {
			s.Define(node.ID, Definition{Kind: DefFunctionName, Name: node.ID, Node: node})
		}
		b.visitFunction(node, s)

	case ast.KindFunctionExpression:
		parent := s
		if node.ID != nil {
			parent = b.m.push(ScopeFunctionExpressionName, node, s)
			parent.Define(node.ID, Definition{Kind: DefFunctionName, Name: node.ID, Node: node})
		}
		b.visitFunction(node, parent)

	case ast.KindArrowFunctionExpression:
		b.visitFunction(node, s)

	case ast.KindClassDeclaration:
		if node.ID != nil {
			s.Define(node.ID, Definition{Kind: DefClassName, Name: node.ID, Node: node})
		}
		inner := b.m.push(ScopeClass, node, s)
		if node.ID != nil {
			inner.Define(node.ID, Definition{Kind: DefClassName, Name: node.ID, Node: node})
		}
		b.visitChildren(node, inner)

	case ast.KindClassExpression:
		inner := b.m.push(ScopeClass, node, s)
		if node.ID != nil {
			inner.Define(node.ID, Definition{Kind: DefClassName, Name: node.ID, Node: node})
		}
		b.visitChildren(node, inner)

	case ast.KindBlockStatement:
		b.visitChildren(node, b.m.push(ScopeBlock, node, s))

	case ast.KindVariableDeclaration:
		defineDeclaration(node, s)
		b.visitChildren(node, s)

	case ast.KindCatchClause:
		inner := b.m.push(ScopeCatch, node, s)
		for _, id := range ast.BindingIdentifiers(node.Target) {
			inner.Define(id, Definition{Kind: DefCatchClause, Name: id, Node: node})
		}
		b.visitChildren(node, inner)

	case ast.KindForStatement:
		inner := s
		if node.Init != nil && node.Init.DeclKind != "var" && node.Init.DeclKind != "" {
			inner = b.m.push(ScopeFor, node, s)
		}
		if node.Init != nil && node.Init.Parent == nil {
			// synthesized for-in/for-of declaration, not reachable as a child
			defineDeclaration(node.Init, inner)
		}
		b.visitChildren(node, inner)

	case ast.KindSwitchStatement:
		b.visitChildren(node, b.m.push(ScopeSwitch, node, s))

	default:
		b.visitChildren(node, s)
	}
}

// visitFunction opens the function scope, binds parameters and visits the
// body without a separate block scope.
func (b *builder) visitFunction(node *ast.Node, parent *Scope) {
	fn := b.m.push(ScopeFunction, node, parent)
	for _, param := range node.Params {
		for _, id := range ast.BindingIdentifiers(param) {
			fn.Define(id, Definition{Kind: DefParameter, Name: id, Node: node})
		}
	}

	for _, child := range node.Children {
		if child == node.Body && child.Kind == ast.KindBlockStatement {
			b.visitChildren(child, fn)
			continue
		}
		b.visit(child, fn)
	}
}

func defineDeclaration(decl *ast.Node, s *Scope) {
	target := s
	if decl.DeclKind == "var" {
		target = s.VariableScope()
	}
	for _, declarator := range decl.Declarations {
		for _, id := range ast.BindingIdentifiers(declarator.ID) {
			target.Define(id, Definition{Kind: DefVariable, Name: id, Node: declarator})
		}
	}
}
