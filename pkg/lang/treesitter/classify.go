// Node type classification maps for tree-sitter-javascript and
// tree-sitter-typescript parse trees.

package treesitter

import "github.com/odvcencio/gts-modlint/pkg/ast"

// directKinds maps grammar node types whose lowering needs no field wiring
// beyond the generic pass.
var directKinds = map[string]ast.Kind{
	"program":          ast.KindProgram,
	"statement_block":  ast.KindBlockStatement,
	"switch_statement": ast.KindSwitchStatement,
	"object_pattern":   ast.KindObjectPattern,
	"array_pattern":    ast.KindArrayPattern,
	"rest_pattern":     ast.KindRestElement,
}

// IdentifierNodeTypes lists node types lowered to ast.KindIdentifier.
var IdentifierNodeTypes = map[string]bool{
	"identifier":                           true,
	"property_identifier":                  true,
	"shorthand_property_identifier":        true,
	"shorthand_property_identifier_pattern": true,
	"private_property_identifier":          true,
}

// FunctionDeclarationTypes lists node types for hoisted function declarations.
var FunctionDeclarationTypes = map[string]bool{
	"function_declaration":           true,
	"generator_function_declaration": true,
}

// FunctionExpressionTypes lists node types for function expressions. Older
// grammar revisions name plain function expressions "function".
var FunctionExpressionTypes = map[string]bool{
	"function_expression": true,
	"function":            true,
	"generator_function":  true,
	"method_definition":   true,
}

// ParameterWrapperTypes lists TypeScript parameter nodes that wrap the bound
// pattern together with modifiers and type annotations.
var ParameterWrapperTypes = map[string]bool{
	"required_parameter": true,
	"optional_parameter": true,
}

// PatternNodeTypes lists node types that can appear as a binding target.
var PatternNodeTypes = map[string]bool{
	"identifier":                           true,
	"shorthand_property_identifier_pattern": true,
	"object_pattern":                       true,
	"array_pattern":                        true,
	"assignment_pattern":                   true,
	"object_assignment_pattern":            true,
	"rest_pattern":                         true,
	"pair_pattern":                         true,
}

// ClassNameTypes lists node types used for class names. TypeScript names
// classes with type_identifier.
var ClassNameTypes = map[string]bool{
	"identifier":      true,
	"type_identifier": true,
}
