package noimportmoduleexports

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/gts-modlint/pkg/entrypoint"
	"github.com/odvcencio/gts-modlint/pkg/lint"
	"github.com/odvcencio/gts-modlint/pkg/model"
	"github.com/odvcencio/gts-modlint/pkg/rules/noabsolutepath"
)

func newLinter(t *testing.T, options map[string]any, extra ...lint.Rule) *lint.Linter {
	t.Helper()
	locator, err := entrypoint.NewLocator(16)
	require.NoError(t, err)

	rules := []lint.Enabled{{Rule: New(locator), Options: options}}
	for _, rule := range extra {
		rules = append(rules, lint.Enabled{Rule: rule})
	}
	return lint.New(lint.Options{Rules: rules})
}

func lines(diagnostics []model.Diagnostic) []int {
	out := make([]int, 0, len(diagnostics))
	for _, d := range diagnostics {
		out = append(out, d.Line)
	}
	return out
}

func TestValid(t *testing.T) {
	cases := map[string]string{
		"require with module.exports":  "const thing = require('thing')\nmodule.exports = thing\n",
		"require with exports":         "const thing = require('thing')\nexports.foo = bar\n",
		"import with default export":   "import thing from 'other-thing'\nexport default thing\n",
		"nested member object":         "import thing from 'otherthing'\nconsole.log(thing.module.exports)\n",
		"imported module binding":      "import { module } from 'qux'\nmodule.exports = 'foo'\n",
		"imported exports binding":     "import exports from 'qux'\nexports.bar = 'baz'\n",
		"parameter shadows module":     "import foo from 'path'\nfunction a(module) {\n\tmodule.exports = foo\n}\n",
		"local shadows exports":        "import foo from 'path'\nfunction b() {\n\tconst exports = {}\n\texports.a = foo\n}\n",
		"arrow parameter shadows":      "import foo from 'path'\nconst c = (module) => { module.exports = foo }\n",
		"computed non-identifier base": "import foo from 'path'\nthis.module.exports = foo\n",
		"exports before imports":       "module.exports = 1\nimport a from 'a'\n",
		"no imports":                   "module.exports = 1\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			diagnostics, err := newLinter(t, nil).LintSource("/repo/src/file.js", []byte(src))
			require.NoError(t, err)
			assert.Empty(t, diagnostics)
		})
	}
}

func TestInvalid(t *testing.T) {
	cases := []struct {
		name  string
		src   string
		lines []int
	}{
		{"named import with module.exports", "import { stuff } from 'starwars'\nmodule.exports = thing\n", []int{1}},
		{"chained assignment", "import thing from 'starwars'\nconst baz = module.exports = thing\nconsole.log(baz)\n", []int{1}},
		{"namespace import with exports", "import * as allThings from 'starwars'\nexports.bar = thing\n", []int{1}},
		{"default import with exports", "import thing from 'other-thing'\nexports.foo = bar\n", []int{1}},
		{"every import reported", "import foo from 'path'\nimport bar from 'path2'\nmodule.exports = foo\n", []int{1, 2}},
		{"reported once", "import foo from 'path'\nmodule.exports = foo\nexports.a = 1\nmodule.exports.b = 2\n", []int{1}},
		{"nested property", "import foo from 'path'\nmodule.exports.foo = foo\n", []int{1}},
		{"module-level variable", "import foo from 'path'\nvar exports = {}\nexports.a = foo\n", []int{1}},
		{"inside function without shadowing", "import foo from 'path'\nfunction f() {\n\tmodule.exports = foo\n}\n", []int{1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			diagnostics, err := newLinter(t, nil).LintSource("/repo/src/file.js", []byte(tc.src))
			require.NoError(t, err)
			assert.Equal(t, tc.lines, lines(diagnostics))
			for _, d := range diagnostics {
				assert.Equal(t, Name, d.RuleID)
				assert.Equal(t, MessageNotAllowed, d.MessageID)
				assert.Equal(t, "Cannot use import declarations in modules that export using CommonJS (module.exports = 'foo' or exports.bar = 'hi')", d.Message)
				assert.Equal(t, 1, d.Column)
				assert.Nil(t, d.Fix)
			}
		})
	}
}

func TestExceptions(t *testing.T) {
	src := "import foo from 'path'\nmodule.exports = foo\n"
	options := map[string]any{"exceptions": []any{"**/scripts/*.js", "/opt/tools/**"}}

	for _, filename := range []string{"/repo/scripts/build.js", "/opt/tools/a/b.js"} {
		diagnostics, err := newLinter(t, options).LintSource(filename, []byte(src))
		require.NoError(t, err)
		assert.Empty(t, diagnostics, filename)
	}

	diagnostics, err := newLinter(t, options).LintSource("/repo/src/build.js", []byte(src))
	require.NoError(t, err)
	assert.Len(t, diagnostics, 1)
}

func TestInvalidException(t *testing.T) {
	src := "import foo from '/abs'\nmodule.exports = foo\n"
	l := newLinter(t, map[string]any{"exceptions": []any{"[bad"}}, noabsolutepath.New())

	diagnostics, err := l.LintSource("/repo/src/file.js", []byte(src))
	require.Error(t, err)
	assert.ErrorIs(t, err, doublestar.ErrBadPattern)

	require.Len(t, diagnostics, 1, "other rules still run")
	assert.Equal(t, noabsolutepath.Name, diagnostics[0].RuleID)
}

func TestUnknownOption(t *testing.T) {
	_, err := newLinter(t, map[string]any{"exception": []any{"a"}}).LintSource("/repo/a.js", []byte("module.exports = 1\n"))
	assert.Error(t, err)
}

func TestEntryPointExempt(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"main": "lib/index"}`), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0o755))

	src := "import foo from 'path'\nmodule.exports = foo\n"
	entry := filepath.Join(dir, "lib", "index.js")
	other := filepath.Join(dir, "lib", "other.js")
	require.NoError(t, os.WriteFile(entry, []byte(src), 0o644))
	require.NoError(t, os.WriteFile(other, []byte(src), 0o644))

	l := newLinter(t, nil)

	diagnostics, err := l.LintSource(entry, []byte(src))
	require.NoError(t, err)
	assert.Empty(t, diagnostics, "entry point is exempt")

	diagnostics, err = l.LintSource(other, []byte(src))
	require.NoError(t, err)
	assert.Len(t, diagnostics, 1)
}

func TestNilLocator(t *testing.T) {
	l := lint.New(lint.Options{Rules: []lint.Enabled{{Rule: New(nil)}}})
	diagnostics, err := l.LintSource("/repo/a.js", []byte("import a from 'a'\nmodule.exports = a\n"))
	require.NoError(t, err)
	assert.Len(t, diagnostics, 1)
}

func TestMeta(t *testing.T) {
	meta := New(nil).Meta()
	assert.Equal(t, Name, meta.Name)
	assert.Equal(t, lint.TypeProblem, meta.Type)
	assert.False(t, meta.Fixable)
	assert.True(t, meta.Recommended)
}
