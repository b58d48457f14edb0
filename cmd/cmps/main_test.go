package main

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lepinkainen/cmps/pkg/testutil"
	"github.com/lepinkainen/cmps/templates"
)

type fakePlatform struct {
	root string
}

func (f fakePlatform) ConfigDir() (string, error)  { return filepath.Join(f.root, "config"), nil }
func (f fakePlatform) DataDir() (string, error)    { return filepath.Join(f.root, "data"), nil }
func (f fakePlatform) InstallDir() (string, error) { return filepath.Join(f.root, "install"), nil }

// workspace is an isolated cmps environment: fake platform dirs and a
// project directory that is the working directory for the test
type workspace struct {
	platform fakePlatform
	project  string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	root := t.TempDir()
	project := filepath.Join(root, "project")
	if err := os.MkdirAll(project, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(project)
	return workspace{platform: fakePlatform{root: root}, project: project}
}

func (w workspace) localTemplate(t *testing.T, ext, content string) {
	testutil.WriteFile(t, filepath.Join(w.project, ".cmps", "templates", ext), content)
}

func (w workspace) userTemplate(t *testing.T, ext, content string) {
	testutil.WriteFile(t, filepath.Join(w.platform.root, "config", "cmps", "templates", ext), content)
}

func (w workspace) run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr, w.platform)
	return code, stdout.String(), stderr.String()
}

func TestDeriveExtension(t *testing.T) {
	tests := []struct {
		filename string
		expected string
	}{
		{"notes.md", "md"},
		{"dir/script.py", "py"},
		{"archive.tar.gz", "gz"},
		{"Makefile", ""},
		{".bashrc", ""},
		{"dir.d/README", ""},
		{"trailing.", ""},
	}

	for _, tt := range tests {
		if got := deriveExtension(tt.filename); got != tt.expected {
			t.Errorf("deriveExtension(%q) = %q, want %q", tt.filename, got, tt.expected)
		}
	}
}

func TestCLI_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cli     CLI
		wantErr bool
	}{
		{"filename", CLI{Filename: "a.md"}, false},
		{"filename and extension", CLI{Filename: "a", Extension: "md"}, false},
		{"force", CLI{Filename: "a.md", Force: true, Parents: true}, false},
		{"stdout", CLI{Filename: "a.md", Stdout: true}, false},
		{"show", CLI{Show: "md"}, false},
		{"list", CLI{List: true}, false},
		{"nothing", CLI{}, true},
		{"show with filename", CLI{Show: "md", Filename: "a.md"}, true},
		{"show with extension", CLI{Show: "md", Extension: "md"}, true},
		{"show and list", CLI{Show: "md", List: true}, true},
		{"init with force", CLI{Init: true, Force: true}, true},
		{"stdout with force and parents", CLI{Filename: "a.md", Stdout: true, Force: true, Parents: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cli.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRun_ComposeUsesLocalTemplate(t *testing.T) {
	w := newWorkspace(t)
	w.localTemplate(t, "md", "# local\n")
	w.userTemplate(t, "md", "# user\n")

	code, _, stderr := w.run("notes.md")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}

	content, err := os.ReadFile("notes.md")
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "# local\n" {
		t.Errorf("notes.md = %q, want the local template", content)
	}
}

func TestRun_LocalTemplateFromParentDirectory(t *testing.T) {
	w := newWorkspace(t)
	w.localTemplate(t, "py", "# project python\n")
	sub := filepath.Join(w.project, "src", "pkg")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(sub)

	if code, _, stderr := w.run("mod.py"); code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}

	content, _ := os.ReadFile("mod.py")
	if string(content) != "# project python\n" {
		t.Errorf("mod.py = %q", content)
	}
}

func TestRun_ExplicitExtension(t *testing.T) {
	w := newWorkspace(t)
	w.userTemplate(t, "sh", "#!/bin/sh\n")

	if code, _, stderr := w.run("deploy", "sh"); code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}

	content, _ := os.ReadFile("deploy")
	if string(content) != "#!/bin/sh\n" {
		t.Errorf("deploy = %q", content)
	}
}

func TestRun_FallsBackToBuiltin(t *testing.T) {
	w := newWorkspace(t)

	if code, _, stderr := w.run("main.go"); code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}

	want, err := fs.ReadFile(templates.Builtin(), "go")
	if err != nil {
		t.Fatal(err)
	}
	got, _ := os.ReadFile("main.go")
	if string(got) != string(want) {
		t.Errorf("main.go = %q, want built-in %q", got, want)
	}
}

func TestRun_NoTemplateCreatesEmptyFile(t *testing.T) {
	w := newWorkspace(t)

	code, _, stderr := w.run("new.txt")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}

	info, err := os.Stat("new.txt")
	if err != nil || info.Size() != 0 {
		t.Errorf("new.txt should exist and be empty: %v, %v", info, err)
	}
	if !strings.Contains(stderr, "creating an empty file") {
		t.Errorf("expected a warning about the empty file, stderr:\n%s", stderr)
	}
}

func TestRun_RefusesNonEmptyFile(t *testing.T) {
	w := newWorkspace(t)
	if err := os.WriteFile("existing.txt", []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}

	code, _, stderr := w.run("existing.txt")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "already exists") {
		t.Errorf("stderr should explain the refusal:\n%s", stderr)
	}

	content, _ := os.ReadFile("existing.txt")
	if string(content) != "abc" {
		t.Errorf("existing.txt changed to %q", content)
	}
}

func TestRun_ForceOverwrites(t *testing.T) {
	w := newWorkspace(t)
	w.localTemplate(t, "md", "# fresh\n")
	if err := os.WriteFile("old.md", []byte("stale content"), 0o644); err != nil {
		t.Fatal(err)
	}

	if code, _, stderr := w.run("--force", "old.md"); code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}

	content, _ := os.ReadFile("old.md")
	if string(content) != "# fresh\n" {
		t.Errorf("old.md = %q", content)
	}
}

func TestRun_Parents(t *testing.T) {
	w := newWorkspace(t)

	if code, _, _ := w.run("a/b/c.txt"); code != 1 {
		t.Errorf("missing parent without -p: exit code = %d, want 1", code)
	}

	if code, _, stderr := w.run("-p", "a/b/c.txt"); code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}
	if _, err := os.Stat(filepath.Join("a", "b", "c.txt")); err != nil {
		t.Errorf("c.txt not created: %v", err)
	}
}

func TestRun_Stdout(t *testing.T) {
	w := newWorkspace(t)
	w.userTemplate(t, "md", "# TODO\n")

	code, stdout, stderr := w.run("--stdout", "notes.md")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}
	if stdout != "# TODO\n" {
		t.Errorf("stdout = %q, want the template", stdout)
	}
	if _, err := os.Stat("notes.md"); !os.IsNotExist(err) {
		t.Errorf("stdout mode must not create the target, stat err = %v", err)
	}

	code, stdout, _ = w.run("-o", "x.nothing")
	if code != 0 || stdout != "" {
		t.Errorf("no template: exit %d, stdout %q; want 0 and empty", code, stdout)
	}
}

func TestRun_Show(t *testing.T) {
	w := newWorkspace(t)
	w.localTemplate(t, "md", "# TODO\n")
	w.userTemplate(t, "md", "# other\n")

	code, stdout, stderr := w.run("--show", "md", "--format", "json")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}

	var report struct {
		Effective struct {
			Path    string `json:"path"`
			Content string `json:"content"`
		} `json:"effective"`
		Shadowed []string `json:"shadowed"`
	}
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, stdout)
	}

	if report.Effective.Content != "# TODO\n" {
		t.Errorf("effective content = %q", report.Effective.Content)
	}
	if report.Effective.Path != filepath.Join(w.project, ".cmps", "templates", "md") {
		t.Errorf("effective path = %q", report.Effective.Path)
	}
	// The user template and the built-in md are both shadowed
	if len(report.Shadowed) != 2 {
		t.Errorf("shadowed = %v, want 2 entries", report.Shadowed)
	}

	// Same answer twice
	_, again, _ := w.run("--show", "md", "--format", "json")
	if again != stdout {
		t.Errorf("describe output changed between runs")
	}
}

func TestRun_ShowMissing(t *testing.T) {
	w := newWorkspace(t)

	code, stdout, _ := w.run("-s", "nothing")
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if !strings.Contains(stdout, `No template found for extension "nothing"`) {
		t.Errorf("stdout:\n%s", stdout)
	}
	if !strings.Contains(stdout, filepath.Join(w.platform.root, "install", "templates", "nothing")) {
		t.Errorf("attempted paths should include the install dir:\n%s", stdout)
	}
}

func TestRun_List(t *testing.T) {
	w := newWorkspace(t)
	w.localTemplate(t, "zz", "z\n")

	code, stdout, stderr := w.run("--list")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}
	if !strings.Contains(stdout, "zz") || !strings.Contains(stdout, "builtin:templates/md") {
		t.Errorf("list output missing entries:\n%s", stdout)
	}
}

func TestRun_ConfigDisablesBuiltin(t *testing.T) {
	w := newWorkspace(t)
	testutil.WriteFile(t, filepath.Join(w.platform.root, "config", "cmps", "config.yaml"), "builtin: false\n")

	if code, _, stderr := w.run("main.go"); code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}

	content, _ := os.ReadFile("main.go")
	if len(content) != 0 {
		t.Errorf("main.go = %q, want empty with built-ins disabled", content)
	}
}

func TestRun_MissingExplicitConfig(t *testing.T) {
	w := newWorkspace(t)

	code, _, stderr := w.run("--config", filepath.Join(w.platform.root, "nope.yaml"), "a.md")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "Failed to load configuration") {
		t.Errorf("stderr:\n%s", stderr)
	}
	if _, err := os.Stat("a.md"); !os.IsNotExist(err) {
		t.Errorf("a.md created despite the config error, stat err = %v", err)
	}
}

func TestRun_StdoutIgnoresForceAndParents(t *testing.T) {
	w := newWorkspace(t)
	w.userTemplate(t, "md", "# TODO\n")

	code, stdout, stderr := w.run("-o", "-f", "-p", "a/b/notes.md")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}
	if stdout != "# TODO\n" {
		t.Errorf("stdout = %q", stdout)
	}
	if _, err := os.Stat("a"); !os.IsNotExist(err) {
		t.Errorf("stdout mode created parent directories, stat err = %v", err)
	}
}

func TestRun_ConfigTemplateDirs(t *testing.T) {
	w := newWorkspace(t)
	extra := filepath.Join(w.platform.root, "shared")
	testutil.WriteFile(t, filepath.Join(extra, "templates", "md"), "# shared\n")
	w.userTemplate(t, "md", "# user\n")
	cfgPath := filepath.Join(w.platform.root, "custom.yaml")
	testutil.WriteFile(t, cfgPath, "template_dirs:\n  - "+extra+"\n")

	if code, _, stderr := w.run("--config", cfgPath, "doc.md"); code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}

	content, _ := os.ReadFile("doc.md")
	if string(content) != "# shared\n" {
		t.Errorf("doc.md = %q, want the configured directory to outrank the user config", content)
	}
}

func TestRun_Init(t *testing.T) {
	w := newWorkspace(t)

	code, stdout, stderr := w.run("--init")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}
	if !strings.HasPrefix(stdout, "Copied ") {
		t.Errorf("stdout = %q", stdout)
	}

	target := filepath.Join(w.platform.root, "config", "cmps", "templates")
	for _, ext := range templates.Extensions() {
		if _, err := os.Stat(filepath.Join(target, ext)); err != nil {
			t.Errorf("template %s not copied: %v", ext, err)
		}
	}
}

func TestRun_Verbosity(t *testing.T) {
	w := newWorkspace(t)

	_, _, quiet := w.run("a.md")
	if strings.Contains(quiet, "Using template file") {
		t.Errorf("info messages shown without -v:\n%s", quiet)
	}

	_, _, verbose := w.run("-v", "b.md")
	if !strings.Contains(verbose, "level=INFO msg=\"Using template file\"") {
		t.Errorf("-v should show info messages:\n%s", verbose)
	}

	_, _, trace := w.run("-v", "-v", "-v", "c.md")
	if !strings.Contains(trace, "level=TRACE") {
		t.Errorf("-vvv should show trace messages:\n%s", trace)
	}
}

func TestRun_InvalidArguments(t *testing.T) {
	w := newWorkspace(t)

	tests := [][]string{
		{},
		{"--show", "md", "file.md"},
		{"--list", "--browse"},
		{"--format", "xml", "--list"},
		{"--no-such-flag"},
	}

	for _, args := range tests {
		if code, _, _ := w.run(args...); code != 1 {
			t.Errorf("run(%q) exit code = %d, want 1", args, code)
		}
	}
}
