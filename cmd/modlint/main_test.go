package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/odvcencio/gts-modlint/pkg/ignore"
	"github.com/odvcencio/gts-modlint/pkg/model"
)

func init() {
	color.NoColor = true
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeProject lays out files under a fresh root with a cache-less config.
func writeProject(t *testing.T, files map[string]string) (root string, configPath string) {
	t.Helper()
	root = t.TempDir()
	if _, ok := files["modlint.toml"]; !ok {
		files["modlint.toml"] = "cache = false\n"
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("MkdirAll failed: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}
	return root, filepath.Join(root, "modlint.toml")
}

func exitCode(err error) int {
	var withCode interface{ ExitCode() int }
	if errors.As(err, &withCode) {
		return withCode.ExitCode()
	}
	if err != nil {
		return 1
	}
	return 0
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"lint", "rules", "watch"} {
		found, _, err := cmd.Find([]string{name})
		if err != nil || found.Name() != name {
			t.Fatalf("missing subcommand %q (err=%v)", name, err)
		}
	}
}

func TestRootCmd_UnknownCommand(t *testing.T) {
	if _, err := runCLI(t, "unknown-command"); err == nil {
		t.Fatal("expected unknown command to return error")
	}
}

func TestRootCmd_BadLogLevel(t *testing.T) {
	if _, err := runCLI(t, "--log-level", "loud", "rules"); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}

func TestLintCmd_ReportsViolations(t *testing.T) {
	root, configPath := writeProject(t, map[string]string{
		"src/a.js": "import f from \"/foo\"\n",
		"src/b.js": "import g from \"./g\"\n",
	})

	out, err := runCLI(t, "lint", "--config", configPath, root)
	if got := exitCode(err); got != exitViolations {
		t.Fatalf("exit code = %d, want %d (err=%v)", got, exitViolations, err)
	}
	want := filepath.Join(root, "src", "a.js") + ":1:15 no-absolute-path Do not import modules using an absolute path"
	if !strings.Contains(out, want) {
		t.Fatalf("expected %q in output, got %q", want, out)
	}
	if !strings.Contains(out, "1 problems in 2 files") {
		t.Fatalf("expected summary in output, got %q", out)
	}
	if !strings.Contains(out, "1 fixable with --fix") {
		t.Fatalf("expected fixable hint in output, got %q", out)
	}
}

func TestLintCmd_NoFailOnViolations(t *testing.T) {
	root, configPath := writeProject(t, map[string]string{"a.js": "import f from \"/foo\"\n"})

	if _, err := runCLI(t, "lint", "--config", configPath, "--fail-on-violations=false", root); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestLintCmd_JSON(t *testing.T) {
	root, configPath := writeProject(t, map[string]string{
		"a.js": "import x from 'x'\nmodule.exports = x\n",
	})

	out, err := runCLI(t, "lint", "--config", configPath, "--json", root)
	if got := exitCode(err); got != exitViolations {
		t.Fatalf("exit code = %d, want %d (err=%v)", got, exitViolations, err)
	}

	var report model.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not a JSON report: %v\n%s", err, out)
	}
	if report.Count != 1 || len(report.Files) != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if got := report.Files[0].Diagnostics[0].RuleID; got != "no-import-module-exports" {
		t.Fatalf("rule = %q, want no-import-module-exports", got)
	}
}

func TestLintCmd_RuleFilter(t *testing.T) {
	root, configPath := writeProject(t, map[string]string{
		"a.js": "import x from '/x'\nmodule.exports = x\n",
	})

	out, err := runCLI(t, "lint", "--config", configPath, "--rule", "no-absolute-path", root)
	if got := exitCode(err); got != exitViolations {
		t.Fatalf("exit code = %d, want %d", got, exitViolations)
	}
	if strings.Contains(out, "no-import-module-exports") {
		t.Fatalf("filtered rule still reported: %q", out)
	}

	if _, err := runCLI(t, "lint", "--config", configPath, "--rule", "no-such-rule", root); err == nil {
		t.Fatal("expected unknown rule to fail")
	}
}

func TestLintCmd_Fix(t *testing.T) {
	root, configPath := writeProject(t, map[string]string{"src/a.js": "import f from \"/foo\"\n"})

	if _, err := runCLI(t, "lint", "--config", configPath, "--fix", root); err != nil {
		t.Fatalf("expected fix run to succeed, got %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "src", "a.js"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.HasPrefix(string(data), "import f from \"../") || strings.Contains(string(data), "\"/foo\"") {
		t.Fatalf("file not fixed: %q", data)
	}
}

func TestLintCmd_FileErrors(t *testing.T) {
	root, configPath := writeProject(t, map[string]string{
		"modlint.toml": "cache = false\n\n[rules.no-import-module-exports]\nexceptions = [\"[bad\"]\n",
		"a.js":         "const a = 1\n",
	})

	out, err := runCLI(t, "lint", "--config", configPath, root)
	if got := exitCode(err); got != exitFileErrors {
		t.Fatalf("exit code = %d, want %d (err=%v)", got, exitFileErrors, err)
	}
	if !strings.Contains(out, "1 files failed") {
		t.Fatalf("expected failure summary, got %q", out)
	}
}

func TestLintCmd_IgnoreFile(t *testing.T) {
	root, configPath := writeProject(t, map[string]string{
		"modlint.toml":  "cache = false\nignore = [\"generated/\"]\n",
		".modlintignore": "vendor/\n",
		"generated/a.js": "import f from \"/foo\"\n",
		"vendor/b.js":    "import f from \"/foo\"\n",
		"src/c.js":       "const c = 1\n",
	})

	out, err := runCLI(t, "lint", "--config", configPath, root)
	if err != nil {
		t.Fatalf("expected clean run, got %v\n%s", err, out)
	}
	if !strings.Contains(out, "0 problems in 1 files") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRulesCmd(t *testing.T) {
	out, err := runCLI(t, "rules", "--json")
	if err != nil {
		t.Fatalf("rules failed: %v", err)
	}
	var infos []model.RuleInfo
	if err := json.Unmarshal([]byte(out), &infos); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(infos) != 2 || infos[0].Name != "no-absolute-path" || !infos[0].Fixable {
		t.Fatalf("unexpected rules %+v", infos)
	}

	out, err = runCLI(t, "rules", "--verbose")
	if err != nil {
		t.Fatalf("rules failed: %v", err)
	}
	if !strings.Contains(out, "no-import-module-exports") || !strings.Contains(out, "no-absolute-path/") {
		t.Fatalf("unexpected table %q", out)
	}
}

func TestExitCodeError(t *testing.T) {
	base := errors.New("boom")
	err := exitCodeError{code: 3, err: base}
	if err.ExitCode() != 3 || err.Error() != "boom" || !errors.Is(err, base) {
		t.Fatalf("unexpected exitCodeError behavior: %v", err)
	}
	if (exitCodeError{}).ExitCode() != 1 || (exitCodeError{}).Error() != "command failed" {
		t.Fatal("expected defaults for empty exitCodeError")
	}
}

func TestShouldSkipWatchDir(t *testing.T) {
	root := "/repo"
	matcher := ignore.ParsePatterns([]string{"dist/"})
	cases := map[string]bool{
		"/repo":              false,
		"/repo/src":          false,
		"/repo/node_modules": true,
		"/repo/.git":         true,
		"/repo/.cache":       true,
		"/repo/dist":         true,
	}
	for path, want := range cases {
		if got := shouldSkipWatchDir(root, path, filepath.Base(path), matcher); got != want {
			t.Fatalf("shouldSkipWatchDir(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestShouldIgnoreWatchPath(t *testing.T) {
	matcher := ignore.ParsePatterns([]string{"*.min.js"})
	cases := map[string]bool{
		"/repo/src/a.js":         false,
		"/repo/src/a.js.swp":     true,
		"/repo/.DS_Store":        true,
		"/repo/src/.modlint-123": true,
		"/repo/src/app.min.js":   true,
	}
	for path, want := range cases {
		if got := shouldIgnoreWatchPath(path, "/repo", matcher); got != want {
			t.Fatalf("shouldIgnoreWatchPath(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestWatchRoots(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.js")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	roots, err := watchRoots(file)
	if err != nil || len(roots) != 1 || roots[0] != dir {
		t.Fatalf("watchRoots(file) = %v, %v; want [%s]", roots, err, dir)
	}
	if _, err := watchRoots(filepath.Join(dir, "missing")); err == nil {
		t.Fatal("expected error for missing target")
	}
}

func TestSessionRelint(t *testing.T) {
	root, configPath := writeProject(t, map[string]string{
		"a.js":      "import f from \"/foo\"\n",
		"b.js":      "const b = 1\n",
		"notes.txt": "import f from \"/foo\"\n",
	})

	s, err := newSession(lintFlags{configPath: configPath}, []string{root})
	if err != nil {
		t.Fatalf("newSession failed: %v", err)
	}

	var out bytes.Buffer
	changed := []string{
		filepath.Join(root, "a.js"),
		filepath.Join(root, "b.js"),
		filepath.Join(root, "notes.txt"),
		filepath.Join(root, "deleted.js"),
		filepath.Join(root, "package.json"),
	}
	s.relint(&out, newPrinter(&out), changed)

	text := out.String()
	if !strings.Contains(text, "a.js:1:15 no-absolute-path") {
		t.Fatalf("expected a.js diagnostic, got %q", text)
	}
	if !strings.Contains(text, "rechecked 2 files: 1 problems") {
		t.Fatalf("expected recheck summary, got %q", text)
	}
}

func TestSessionRelint_ManifestChange(t *testing.T) {
	root, configPath := writeProject(t, map[string]string{
		"package.json": `{"main": "index.js"}`,
		"index.js":     "import x from 'x'\nmodule.exports = x\n",
		"lib/other.js": "import y from 'y'\nmodule.exports = y\n",
	})

	s, err := newSession(lintFlags{configPath: configPath}, []string{root})
	if err != nil {
		t.Fatalf("newSession failed: %v", err)
	}

	var out bytes.Buffer
	s.relint(&out, newPrinter(&out), []string{filepath.Join(root, "package.json")})

	text := out.String()
	if !strings.Contains(text, "rechecked 2 files: 1 problems") {
		t.Fatalf("expected the whole package to be rechecked, got %q", text)
	}
	if !strings.Contains(text, filepath.Join("lib", "other.js")+":1:1 no-import-module-exports") {
		t.Fatalf("expected other.js diagnostic, got %q", text)
	}
}
