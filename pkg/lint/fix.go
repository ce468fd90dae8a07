package lint

import (
	"sort"

	"github.com/odvcencio/gts-modlint/pkg/model"
)

// ApplyFixes applies the fixes carried by diagnostics to src. Fixes are applied
// in offset order; a fix that overlaps one already applied, or whose range is
// out of bounds, is skipped. It returns the new source and the number of fixes
// applied.
func ApplyFixes(src []byte, diagnostics []model.Diagnostic) ([]byte, int) {
	fixes := make([]model.Fix, 0, len(diagnostics))
	for _, d := range diagnostics {
		if d.Fix == nil {
			continue
		}
		start, end := d.Fix.Range[0], d.Fix.Range[1]
		if start < 0 || end < start || end > len(src) {
			continue
		}
		fixes = append(fixes, *d.Fix)
	}
	if len(fixes) == 0 {
		return src, 0
	}

	sort.SliceStable(fixes, func(i, j int) bool {
		return fixes[i].Range[0] < fixes[j].Range[0]
	})

	out := make([]byte, 0, len(src))
	last := 0
	applied := 0
	for _, fix := range fixes {
		if fix.Range[0] < last {
			continue
		}
		out = append(out, src[last:fix.Range[0]]...)
		out = append(out, fix.Text...)
		last = fix.Range[1]
		applied++
	}
	out = append(out, src[last:]...)
	return out, applied
}

// FixSource lints and fixes src repeatedly until no fix applies or
// MaxFixPasses is reached. It returns the fixed source, the diagnostics that
// remain, and the number of fixes applied.
func (l *Linter) FixSource(path string, src []byte) ([]byte, []model.Diagnostic, int, error) {
	total := 0
	for pass := 0; pass < MaxFixPasses; pass++ {
		diagnostics, err := l.LintSource(path, src)
		if err != nil && diagnostics == nil {
			return src, nil, total, err
		}
		fixed, applied := ApplyFixes(src, diagnostics)
		if applied == 0 {
			return src, diagnostics, total, err
		}
		src = fixed
		total += applied
	}
	diagnostics, err := l.LintSource(path, src)
	return src, diagnostics, total, err
}
