// Package ast defines the ESTree-shaped syntax tree that lint rules traverse.
// Front ends lower concrete parse trees into this form so rules never depend on
// a particular grammar's node names.
package ast

// Kind classifies a syntax tree node.
type Kind uint8

const (
	KindOther Kind = iota
	KindProgram
	KindImportDeclaration
	KindImportSpecifier
	KindImportDefaultSpecifier
	KindImportNamespaceSpecifier
	KindExportNamedDeclaration
	KindExportAllDeclaration
	KindImportExpression
	KindMemberExpression
	KindCallExpression
	KindIdentifier
	KindLiteral
	KindArrayExpression
	KindFunctionDeclaration
	KindFunctionExpression
	KindArrowFunctionExpression
	KindClassDeclaration
	KindClassExpression
	KindBlockStatement
	KindVariableDeclaration
	KindVariableDeclarator
	KindCatchClause
	KindForStatement
	KindSwitchStatement
	KindObjectPattern
	KindArrayPattern
	KindAssignmentPattern
	KindRestElement
	KindPropertyPattern
)

var kindNames = [...]string{
	KindOther:                    "Other",
	KindProgram:                  "Program",
	KindImportDeclaration:        "ImportDeclaration",
	KindImportSpecifier:          "ImportSpecifier",
	KindImportDefaultSpecifier:   "ImportDefaultSpecifier",
	KindImportNamespaceSpecifier: "ImportNamespaceSpecifier",
	KindExportNamedDeclaration:   "ExportNamedDeclaration",
	KindExportAllDeclaration:     "ExportAllDeclaration",
	KindImportExpression:         "ImportExpression",
	KindMemberExpression:         "MemberExpression",
	KindCallExpression:           "CallExpression",
	KindIdentifier:               "Identifier",
	KindLiteral:                  "Literal",
	KindArrayExpression:          "ArrayExpression",
	KindFunctionDeclaration:      "FunctionDeclaration",
	KindFunctionExpression:       "FunctionExpression",
	KindArrowFunctionExpression:  "ArrowFunctionExpression",
	KindClassDeclaration:         "ClassDeclaration",
	KindClassExpression:          "ClassExpression",
	KindBlockStatement:           "BlockStatement",
	KindVariableDeclaration:      "VariableDeclaration",
	KindVariableDeclarator:       "VariableDeclarator",
	KindCatchClause:              "CatchClause",
	KindForStatement:             "ForStatement",
	KindSwitchStatement:          "SwitchStatement",
	KindObjectPattern:            "ObjectPattern",
	KindArrayPattern:             "ArrayPattern",
	KindAssignmentPattern:        "AssignmentPattern",
	KindRestElement:              "RestElement",
	KindPropertyPattern:          "Property",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Node is one syntax tree node. Only the fields relevant to its Kind are set.
type Node struct {
	Kind Kind
	// Type is the node type reported by the grammar the tree was lowered from.
	Type string

	Start     int // byte offset, inclusive
	End       int // byte offset, exclusive
	Line      int // 1-based
	Column    int // 1-based, UTF-16 code units
	EndLine   int
	EndColumn int

	Parent   *Node
	Children []*Node

	// Identifier
	Name string

	// Literal (strings only)
	Value string
	Raw   string
	Quote byte

	// MemberExpression
	Object   *Node
	Property *Node
	Computed bool

	// CallExpression
	Callee    *Node
	Arguments []*Node

	// Import/export declarations, ImportExpression
	Source     *Node
	Specifiers []*Node
	Local      *Node

	// ArrayExpression, ArrayPattern, ObjectPattern
	Elements []*Node

	// Functions, classes, declarators
	ID     *Node
	Params []*Node
	Body   *Node
	Init   *Node

	// VariableDeclaration
	Declarations []*Node
	DeclKind     string

	// CatchClause parameter, AssignmentPattern left, RestElement argument,
	// Property value.
	Target *Node
}

// IsIdentifier reports whether n is an identifier with the given name.
func (n *Node) IsIdentifier(name string) bool {
	return n != nil && n.Kind == KindIdentifier && n.Name == name
}

// IsStringLiteral reports whether n is a string literal.
func (n *Node) IsStringLiteral() bool {
	return n != nil && n.Kind == KindLiteral && n.Quote != 0
}

// IsFunction reports whether n introduces a function scope.
func (n *Node) IsFunction() bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case KindFunctionDeclaration, KindFunctionExpression, KindArrowFunctionExpression:
		return true
	default:
		return false
	}
}

// Text returns the source text covered by n.
func (n *Node) Text(src []byte) string {
	if n == nil || n.Start < 0 || n.End > len(src) || n.End < n.Start {
		return ""
	}
	return string(src[n.Start:n.End])
}

// Append adds child to n.Children and sets its parent link.
func (n *Node) Append(child *Node) {
	if child == nil {
		return
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

// BindingIdentifiers returns the identifiers bound by a declaration target,
// descending through destructuring patterns and default values.
func BindingIdentifiers(target *Node) []*Node {
	var out []*Node
	var collect func(node *Node)
	collect = func(node *Node) {
		if node == nil {
			return
		}
		switch node.Kind {
		case KindIdentifier:
			out = append(out, node)
		case KindObjectPattern, KindArrayPattern:
			for _, element := range node.Elements {
				collect(element)
			}
		case KindAssignmentPattern, KindRestElement, KindPropertyPattern:
			collect(node.Target)
		}
	}
	collect(target)
	return out
}
