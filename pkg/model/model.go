// Package model defines the report data types shared by the lint engine, the
// results cache and the CLI: Diagnostic, Fix, FileResult, Report and RuleInfo.
package model

import "time"

// Fix replaces the byte range [Range[0], Range[1]) of a file with Text.
type Fix struct {
	Range [2]int `json:"range" msgpack:"range"`
	Text  string `json:"text" msgpack:"text"`
}

// Diagnostic is one problem reported by a rule at a source location.
// Lines and columns are 1-based.
type Diagnostic struct {
	RuleID    string `json:"rule_id" msgpack:"rule_id"`
	MessageID string `json:"message_id" msgpack:"message_id"`
	Message   string `json:"message" msgpack:"message"`
	Line      int    `json:"line" msgpack:"line"`
	Column    int    `json:"column" msgpack:"column"`
	EndLine   int    `json:"end_line" msgpack:"end_line"`
	EndColumn int    `json:"end_column" msgpack:"end_column"`
	Fix       *Fix   `json:"fix,omitempty" msgpack:"fix,omitempty"`
}

// FileResult holds the diagnostics of one linted file. Error is set when the
// file could not be read or parsed, or when a rule failed to start for it.
type FileResult struct {
	Path        string       `json:"path"`
	Diagnostics []Diagnostic `json:"diagnostics"`
	Error       string       `json:"error,omitempty"`
	Fixed       int          `json:"fixed,omitempty"`
	Cached      bool         `json:"-"`
}

// Report is the outcome of linting a set of paths.
type Report struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Files       []FileResult `json:"files"`
	Count       int          `json:"count"`
	Fixed       int          `json:"fixed"`
}

// RuleInfo describes a registered rule.
type RuleInfo struct {
	Name        string            `json:"name"`
	Type        string            `json:"type"`
	Category    string            `json:"category,omitempty"`
	Description string            `json:"description"`
	Recommended bool              `json:"recommended"`
	Fixable     bool              `json:"fixable"`
	Messages    map[string]string `json:"messages"`
	Schema      any               `json:"schema,omitempty"`
}

// Tally recomputes Count and Fixed from the file results.
func (r *Report) Tally() {
	if r == nil {
		return
	}
	r.Count, r.Fixed = 0, 0
	for _, file := range r.Files {
		r.Count += len(file.Diagnostics)
		r.Fixed += file.Fixed
	}
}

// ErrorCount returns the number of files that carry an error.
func (r *Report) ErrorCount() int {
	if r == nil {
		return 0
	}

	total := 0
	for _, file := range r.Files {
		if file.Error != "" {
			total++
		}
	}
	return total
}

// FileCount returns the number of files in the report.
func (r *Report) FileCount() int {
	if r == nil {
		return 0
	}
	return len(r.Files)
}

// Fixable reports whether the diagnostic carries a fix.
func (d Diagnostic) Fixable() bool {
	return d.Fix != nil
}
