package treesitter

import (
	"bytes"
	"sort"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"fortio.org/safecast"
	"github.com/odvcencio/gotreesitter"

	"github.com/odvcencio/gts-modlint/pkg/ast"
)

type lowerer struct {
	lang       *gotreesitter.Language
	src        []byte
	lineStarts []int
}

func newLowerer(lang *gotreesitter.Language, src []byte) *lowerer {
	lineStarts := []int{0}
	for i, b := range src {
		if b == '\n' {
			lineStarts = append(lineStarts, i+1)
		}
	}
	return &lowerer{lang: lang, src: src, lineStarts: lineStarts}
}

func (l *lowerer) lower(node *gotreesitter.Node) *ast.Node {
	out := &ast.Node{Type: node.Type(l.lang)}
	l.locate(out, node)
	for _, child := range node.Children() {
		if child == nil {
			continue
		}
		out.Append(l.lower(child))
	}
	l.classify(out)
	return out
}

func (l *lowerer) locate(out *ast.Node, node *gotreesitter.Node) {
	text := node.Text(l.src)
	point := node.StartPoint()

	row, err := safecast.Conv[int](point.Row)
	if err != nil || row >= len(l.lineStarts) {
		row = len(l.lineStarts) - 1
	}
	column, err := safecast.Conv[int](point.Column)
	if err != nil {
		column = 0
	}

	out.Start = l.resolveOffset(row, column, text)
	out.End = out.Start + len(text)
	if out.End > len(l.src) {
		out.End = len(l.src)
	}
	out.Line, out.Column = l.lineColumn(out.Start)
	out.EndLine, out.EndColumn = l.lineColumn(out.End)
}

// resolveOffset converts a row/column point into a byte offset. Columns are
// expected in bytes; rune columns are accepted when the byte reading does not
// line up with the node text.
func (l *lowerer) resolveOffset(row, column int, text string) int {
	lineStart := l.lineStarts[row]
	if offset := lineStart + column; l.textAt(offset, text) {
		return offset
	}

	offset := lineStart
	for i := 0; i < column && offset < len(l.src); i++ {
		_, size := utf8.DecodeRune(l.src[offset:])
		offset += size
	}
	if l.textAt(offset, text) {
		return offset
	}

	if text != "" {
		if idx := bytes.Index(l.src[lineStart:], []byte(text)); idx >= 0 {
			return lineStart + idx
		}
	}
	return min(lineStart+column, len(l.src))
}

func (l *lowerer) textAt(offset int, text string) bool {
	if offset < 0 || offset+len(text) > len(l.src) {
		return false
	}
	return string(l.src[offset:offset+len(text)]) == text
}

func (l *lowerer) lineColumn(offset int) (int, int) {
	row := sort.Search(len(l.lineStarts), func(i int) bool {
		return l.lineStarts[i] > offset
	}) - 1
	if row < 0 {
		row = 0
	}
	return row + 1, utf16Len(l.src[l.lineStarts[row]:offset]) + 1
}

// utf16Len counts UTF-16 code units, the column unit JavaScript tools report.
// Invalid bytes count as one unit each.
func utf16Len(b []byte) int {
	n := 0
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if units := utf16.RuneLen(r); units > 0 {
			n += units
		} else {
			n++
		}
		b = b[size:]
	}
	return n
}

// isToken reports whether n is an anonymous keyword or punctuation leaf.
func (l *lowerer) isToken(n *ast.Node) bool {
	if len(n.Children) > 0 || IdentifierNodeTypes[n.Type] {
		return false
	}
	return n.Type == n.Text(l.src)
}

func (l *lowerer) significant(n *ast.Node) []*ast.Node {
	out := make([]*ast.Node, 0, len(n.Children))
	for _, child := range n.Children {
		if child.Type == "comment" || l.isToken(child) {
			continue
		}
		out = append(out, child)
	}
	return out
}

func childOfType(n *ast.Node, types ...string) *ast.Node {
	for _, child := range n.Children {
		for _, typ := range types {
			if child.Type == typ {
				return child
			}
		}
	}
	return nil
}

func unwrapParens(n *ast.Node) *ast.Node {
	for n != nil && n.Type == "parenthesized_expression" {
		var inner *ast.Node
		for _, child := range n.Children {
			if child.Type != "(" && child.Type != ")" && child.Type != "comment" {
				inner = child
				break
			}
		}
		if inner == nil {
			return n
		}
		n = inner
	}
	return n
}

func (l *lowerer) classify(out *ast.Node) {
	typ := out.Type
	if kind, ok := directKinds[typ]; ok {
		out.Kind = kind
		switch kind {
		case ast.KindObjectPattern, ast.KindArrayPattern:
			out.Elements = l.significant(out)
		case ast.KindRestElement:
			if parts := l.significant(out); len(parts) > 0 {
				out.Target = parts[0]
			}
		case ast.KindSwitchStatement:
			out.Body = childOfType(out, "switch_body")
		}
		return
	}

	switch {
	case IdentifierNodeTypes[typ]:
		out.Kind = ast.KindIdentifier
		out.Name = out.Text(l.src)
	case typ == "string":
		l.lowerString(out)
	case FunctionDeclarationTypes[typ]:
		out.Kind = ast.KindFunctionDeclaration
		l.lowerFunction(out)
	case FunctionExpressionTypes[typ]:
		out.Kind = ast.KindFunctionExpression
		l.lowerFunction(out)
	case typ == "arrow_function":
		out.Kind = ast.KindArrowFunctionExpression
		l.lowerFunction(out)
	case typ == "class_declaration" || typ == "abstract_class_declaration":
		out.Kind = ast.KindClassDeclaration
		l.lowerClass(out)
	case typ == "class":
		out.Kind = ast.KindClassExpression
		l.lowerClass(out)
	case typ == "import_statement":
		l.lowerImport(out)
	case typ == "export_statement":
		l.lowerExport(out)
	case typ == "call_expression":
		l.lowerCall(out)
	case typ == "member_expression":
		l.lowerMember(out, false)
	case typ == "subscript_expression":
		l.lowerMember(out, true)
	case typ == "array":
		out.Kind = ast.KindArrayExpression
		out.Elements = l.significant(out)
	case typ == "variable_declaration":
		out.Kind = ast.KindVariableDeclaration
		out.DeclKind = "var"
		out.Declarations = declarators(out)
	case typ == "lexical_declaration":
		out.Kind = ast.KindVariableDeclaration
		if len(out.Children) > 0 {
			out.DeclKind = out.Children[0].Type
		}
		out.Declarations = declarators(out)
	case typ == "variable_declarator":
		l.lowerDeclarator(out)
	case typ == "catch_clause":
		out.Kind = ast.KindCatchClause
		for _, child := range out.Children {
			if PatternNodeTypes[child.Type] {
				out.Target = child
				break
			}
		}
		out.Body = childOfType(out, "statement_block")
	case typ == "for_statement":
		out.Kind = ast.KindForStatement
		out.Init = childOfType(out, "lexical_declaration", "variable_declaration")
	case typ == "for_in_statement":
		l.lowerForIn(out)
	case typ == "assignment_pattern" || typ == "object_assignment_pattern":
		out.Kind = ast.KindAssignmentPattern
		if parts := l.significant(out); len(parts) > 0 {
			out.Target = parts[0]
		}
	case typ == "pair_pattern":
		out.Kind = ast.KindPropertyPattern
		if parts := l.significant(out); len(parts) > 0 {
			out.Target = parts[len(parts)-1]
		}
	case ParameterWrapperTypes[typ]:
		out.Kind = ast.KindAssignmentPattern
		for _, child := range out.Children {
			if PatternNodeTypes[child.Type] {
				out.Target = child
				break
			}
		}
	}
}

func (l *lowerer) lowerString(out *ast.Node) {
	raw := out.Text(l.src)
	if len(raw) < 2 || (raw[0] != '"' && raw[0] != '\'') || raw[len(raw)-1] != raw[0] {
		return
	}
	out.Kind = ast.KindLiteral
	out.Raw = raw
	out.Quote = raw[0]
	out.Value = unescape(raw[1 : len(raw)-1])
	out.Children = nil
}

func unescape(body string) string {
	if !strings.Contains(body, `\`) {
		return body
	}

	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			b.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\n':
			// line continuation
		default:
			b.WriteByte(body[i])
		}
	}
	return b.String()
}

func (l *lowerer) lowerFunction(out *ast.Node) {
	if out.Kind != ast.KindArrowFunctionExpression && out.Type != "method_definition" {
		for _, child := range out.Children {
			if child.Type == "formal_parameters" {
				break
			}
			if child.Type == "identifier" {
				out.ID = child
				break
			}
		}
	}

	if params := childOfType(out, "formal_parameters"); params != nil {
		out.Params = l.significant(params)
	} else if out.Kind == ast.KindArrowFunctionExpression {
		for _, child := range out.Children {
			if child.Type == "=>" {
				break
			}
			if child.Type == "identifier" {
				out.Params = []*ast.Node{child}
				break
			}
		}
	}

	if body := childOfType(out, "statement_block"); body != nil {
		out.Body = body
	} else if parts := l.significant(out); len(parts) > 0 && out.Kind == ast.KindArrowFunctionExpression {
		out.Body = parts[len(parts)-1]
	}
}

func (l *lowerer) lowerClass(out *ast.Node) {
	for _, child := range out.Children {
		if child.Type == "class_body" {
			break
		}
		if ClassNameTypes[child.Type] {
			child.Kind = ast.KindIdentifier
			child.Name = child.Text(l.src)
			out.ID = child
			break
		}
	}
	out.Body = childOfType(out, "class_body")
}

func (l *lowerer) lowerImport(out *ast.Node) {
	if childOfType(out, "import_require_clause") != nil {
		return
	}
	out.Kind = ast.KindImportDeclaration
	if source := childOfType(out, "string"); source != nil && source.Kind == ast.KindLiteral {
		out.Source = source
	}

	clause := childOfType(out, "import_clause")
	if clause == nil {
		return
	}
	for _, child := range clause.Children {
		switch child.Type {
		case "identifier":
			out.Specifiers = append(out.Specifiers, &ast.Node{
				Kind:      ast.KindImportDefaultSpecifier,
				Type:      "import_default_specifier",
				Start:     child.Start,
				End:       child.End,
				Line:      child.Line,
				Column:    child.Column,
				EndLine:   child.EndLine,
				EndColumn: child.EndColumn,
				Parent:    out,
				Local:     child,
			})
		case "namespace_import":
			child.Kind = ast.KindImportNamespaceSpecifier
			child.Local = lastIdentifier(child)
			out.Specifiers = append(out.Specifiers, child)
		case "named_imports":
			for _, named := range child.Children {
				if named.Type != "import_specifier" {
					continue
				}
				named.Kind = ast.KindImportSpecifier
				named.Local = lastIdentifier(named)
				out.Specifiers = append(out.Specifiers, named)
			}
		}
	}
}

func lastIdentifier(n *ast.Node) *ast.Node {
	for i := len(n.Children) - 1; i >= 0; i-- {
		if n.Children[i].Kind == ast.KindIdentifier {
			return n.Children[i]
		}
	}
	return nil
}

// lowerExport only takes a source from the string after `from`; the value of
// `export default "..."` or `export = "..."` is not a module specifier.
func (l *lowerer) lowerExport(out *ast.Node) {
	if childOfType(out, "default", "=") != nil {
		return
	}

	var source *ast.Node
	seenFrom := false
	for _, child := range out.Children {
		if child.Type == "from" {
			seenFrom = true
			continue
		}
		if seenFrom && child.Kind == ast.KindLiteral {
			source = child
			break
		}
	}
	if source == nil {
		out.Kind = ast.KindExportNamedDeclaration
		return
	}

	out.Source = source
	if childOfType(out, "export_clause") == nil && childOfType(out, "*", "namespace_export") != nil {
		out.Kind = ast.KindExportAllDeclaration
		return
	}
	out.Kind = ast.KindExportNamedDeclaration
}

func (l *lowerer) lowerCall(out *ast.Node) {
	out.Kind = ast.KindCallExpression
	if len(out.Children) > 0 {
		out.Callee = unwrapParens(out.Children[0])
	}
	if args := childOfType(out, "arguments"); args != nil {
		out.Arguments = l.significant(args)
	}
	if out.Callee != nil && out.Callee.Type == "import" {
		out.Kind = ast.KindImportExpression
		if len(out.Arguments) > 0 {
			out.Source = out.Arguments[0]
		}
	}
}

func (l *lowerer) lowerMember(out *ast.Node, computed bool) {
	parts := l.significant(out)
	if len(parts) < 2 {
		return
	}
	out.Kind = ast.KindMemberExpression
	out.Computed = computed
	out.Object = unwrapParens(parts[0])
	out.Property = parts[len(parts)-1]
}

func declarators(out *ast.Node) []*ast.Node {
	var decls []*ast.Node
	for _, child := range out.Children {
		if child.Type == "variable_declarator" {
			decls = append(decls, child)
		}
	}
	return decls
}

func (l *lowerer) lowerDeclarator(out *ast.Node) {
	out.Kind = ast.KindVariableDeclarator
	afterAssign := false
	for _, child := range out.Children {
		switch {
		case out.ID == nil && PatternNodeTypes[child.Type]:
			out.ID = child
		case child.Type == "=":
			afterAssign = true
		case afterAssign && out.Init == nil && !l.isToken(child):
			out.Init = child
		}
	}
}

// lowerForIn handles for-in and for-of loops. A declaration keyword before the
// loop target is lowered into a synthetic VariableDeclaration stored in Init.
func (l *lowerer) lowerForIn(out *ast.Node) {
	out.Kind = ast.KindForStatement

	declKind := ""
	for _, child := range out.Children {
		if declKind == "" {
			switch child.Type {
			case "var", "let", "const":
				declKind = child.Type
			}
			continue
		}
		if !PatternNodeTypes[child.Type] {
			continue
		}
		declarator := &ast.Node{
			Kind:   ast.KindVariableDeclarator,
			Type:   "variable_declarator",
			Start:  child.Start,
			End:    child.End,
			Line:   child.Line,
			Column: child.Column,
			ID:     child,
		}
		out.Init = &ast.Node{
			Kind:         ast.KindVariableDeclaration,
			Type:         "variable_declaration",
			Start:        child.Start,
			End:          child.End,
			Line:         child.Line,
			Column:       child.Column,
			DeclKind:     declKind,
			Declarations: []*ast.Node{declarator},
		}
		return
	}
}
