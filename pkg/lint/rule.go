// Package lint hosts rules over a lowered JavaScript syntax tree: it builds the
// scope table, dispatches one pre-order traversal to every rule, collects
// diagnostics and applies fixes.
package lint

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/odvcencio/gts-modlint/pkg/ast"
	"github.com/odvcencio/gts-modlint/pkg/model"
	"github.com/odvcencio/gts-modlint/pkg/scope"
)

// Rule types mirror the categories used by JavaScript linters.
const (
	TypeProblem    = "problem"
	TypeSuggestion = "suggestion"
	TypeLayout     = "layout"
)

// Meta describes a rule.
type Meta struct {
	Name        string
	Type        string
	Category    string
	Description string
	Recommended bool
	Fixable     bool
	// Schema is the JSON schema of the first options slot.
	Schema   map[string]any
	Messages map[string]string
}

// Info converts the metadata into its report form.
func (m Meta) Info() model.RuleInfo {
	return model.RuleInfo{
		Name:        m.Name,
		Type:        m.Type,
		Category:    m.Category,
		Description: m.Description,
		Recommended: m.Recommended,
		Fixable:     m.Fixable,
		Messages:    m.Messages,
		Schema:      m.Schema,
	}
}

// Rule is a per-file analyzer. Create is called once per file and returns the
// node handlers for that file's traversal; any state the handlers share lives
// in the closure and never outlives the file.
type Rule interface {
	Meta() Meta
	Create(ctx *Context) (ast.Handlers, error)
}

// Context is what a rule sees of the file being linted.
type Context struct {
	Filename         string
	PhysicalFilename string
	Options          map[string]any
	Source           []byte
	Scope            *scope.Manager

	meta        Meta
	diagnostics []model.Diagnostic
}

// Report records a diagnostic at node. fix may be nil.
func (c *Context) Report(node *ast.Node, messageID string, fix *model.Fix) {
	if node == nil {
		return
	}
	message, ok := c.meta.Messages[messageID]
	if !ok {
		message = messageID
	}
	c.diagnostics = append(c.diagnostics, model.Diagnostic{
		RuleID:    c.meta.Name,
		MessageID: messageID,
		Message:   message,
		Line:      node.Line,
		Column:    node.Column,
		EndLine:   node.EndLine,
		EndColumn: node.EndColumn,
		Fix:       fix,
	})
}

// Diagnostics returns what has been reported so far.
func (c *Context) Diagnostics() []model.Diagnostic {
	return c.diagnostics
}

// DecodeOptions decodes this file's options into dst.
func (c *Context) DecodeOptions(dst any) error {
	return DecodeOptions(c.Options, dst)
}

// ReplaceNode builds a fix replacing the source range of node with text.
func ReplaceNode(node *ast.Node, text string) *model.Fix {
	return &model.Fix{Range: [2]int{node.Start, node.End}, Text: text}
}

// DecodeOptions strictly decodes a rule options object into dst. Unknown keys
// and mistyped values are errors.
func DecodeOptions(raw map[string]any, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}
