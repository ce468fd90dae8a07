package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/odvcencio/gts-modlint/pkg/model"
)

type printer struct {
	out      io.Writer
	location *color.Color
	rule     *color.Color
	failure  *color.Color
	summary  *color.Color
	fixable  *color.Color
}

func newPrinter(out io.Writer) *printer {
	return &printer{
		out:      out,
		location: color.New(color.Bold),
		rule:     color.New(color.FgHiBlack),
		failure:  color.New(color.FgRed, color.Bold),
		summary:  color.New(color.FgYellow, color.Bold),
		fixable:  color.New(color.FgCyan),
	}
}

// file writes one line per diagnostic: file:line:col rule message.
func (p *printer) file(result model.FileResult) {
	for _, d := range result.Diagnostics {
		fmt.Fprintf(p.out, "%s %s %s\n",
			p.location.Sprintf("%s:%d:%d", result.Path, d.Line, d.Column),
			p.rule.Sprint(d.RuleID),
			d.Message,
		)
	}
	if result.Error != "" {
		fmt.Fprintf(p.out, "%s %s\n", p.failure.Sprintf("%s:", result.Path), result.Error)
	}
}

func (p *printer) report(report *model.Report) {
	for _, result := range report.Files {
		p.file(result)
	}

	fixable := 0
	for _, result := range report.Files {
		for _, d := range result.Diagnostics {
			if d.Fixable() {
				fixable++
			}
		}
	}

	line := fmt.Sprintf("%d problems in %d files", report.Count, report.FileCount())
	if errs := report.ErrorCount(); errs > 0 {
		line += fmt.Sprintf(", %d files failed", errs)
	}
	if report.Fixed > 0 {
		line += fmt.Sprintf(", %d fixed", report.Fixed)
	}
	if report.Count == 0 && report.ErrorCount() == 0 {
		fmt.Fprintln(p.out, line)
		return
	}
	fmt.Fprintln(p.out, p.summary.Sprint(line))
	if fixable > 0 {
		fmt.Fprintln(p.out, p.fixable.Sprintf("%d fixable with --fix", fixable))
	}
}
