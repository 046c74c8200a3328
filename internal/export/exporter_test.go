package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lecturecast/internal/opresult"
)

// fakeEditorClient records the command handed to the editing tool.
type fakeEditorClient struct {
	editorRunning bool
	execRes       opresult.Result
	lastCommand   string
	lastAllowable int
	execCalls     int
}

func newFakeEditorClient() *fakeEditorClient {
	return &fakeEditorClient{execRes: opresult.Successf("command completed")}
}

func (c *fakeEditorClient) ExecuteSync(command string, allowableCode int) opresult.Result {
	c.execCalls++
	c.lastCommand = command
	c.lastAllowable = allowableCode
	return c.execRes
}

func (c *fakeEditorClient) ProcessWithNameExists(name string) bool {
	return c.editorRunning
}

type staticTarget struct {
	name string
	dir  string
}

func (t staticTarget) DisplayName() string { return t.name }
func (t staticTarget) DirPath() string     { return t.dir }

// exportEnv lays out the filesystem the exporter expects: the editor
// binary next to the sentinel file, plus template and preset files.
func exportEnv(t *testing.T) ExporterConfig {
	t.Helper()
	root := t.TempDir()

	editorDir := filepath.Join(root, "editor")
	templatesDir := filepath.Join(root, "templates")
	scriptsDir := filepath.Join(root, "scripts")
	for _, dir := range []string{editorDir, templatesDir, scriptsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}

	for _, file := range []string{
		filepath.Join(editorDir, requiredSentinel),
		filepath.Join(templatesDir, projectTemplate),
		filepath.Join(templatesDir, sequencePreset),
	} {
		if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	return ExporterConfig{
		EditorPath:    filepath.Join(editorDir, "editor.exe"),
		EditorFlags:   "--es",
		TemplatesPath: templatesDir,
		ScriptsPath:   scriptsDir,
	}
}

func someFiles() Files {
	return Files{
		Screen:      []string{"take1_screen.mp4"},
		Professor:   []string{"take1_professor.mp4"},
		MarkerTimes: map[string][]float64{"take1_screen.mp4": {2.5}},
		SyncOffsets: map[string]float64{"take1_screen.mp4": 120},
	}
}

func extractor(files Files, err error) FilesExtractor {
	return func(ctx context.Context, target Target) (Files, error) { return files, err }
}

func TestExportHappyPath(t *testing.T) {
	client := newFakeEditorClient()
	e := NewExporter(client, exportEnv(t))
	target := staticTarget{name: "Lesson 1", dir: "/recordings/Course/Lesson1"}

	res := e.Export(context.Background(), target, extractor(someFiles(), nil))
	if !res.Ok() {
		t.Fatalf("export failed: %s", res.Message)
	}

	if client.lastAllowable != editorAllowableExitCode {
		t.Errorf("allowable exit code = %d, want %d", client.lastAllowable, editorAllowableExitCode)
	}

	cmd := client.lastCommand
	for _, fragment := range []string{
		"const outputName = 'Lesson_1';",
		"const basePath = '/recordings/Course/Lesson1';",
		"const screenVideos = ['take1_screen.mp4'];",
		"const professorVideos = ['take1_professor.mp4'];",
		"var needSync = Boolean(true);",
		"var markerTimes = {'take1_screen.mp4': [2.5]};",
		"var syncOffsets = {'take1_screen.mp4': 120};",
	} {
		if !strings.Contains(cmd, fragment) {
			t.Errorf("command missing %q\ncommand: %s", fragment, cmd)
		}
	}

	include := "//@include '" + filepath.Join(e.cfg.ScriptsPath, assemblyScript) + "'"
	if !strings.HasSuffix(cmd, include+`"`) {
		t.Errorf("include directive must close the command, got: %s", cmd)
	}
}

func TestExportMissingSentinelAborts(t *testing.T) {
	client := newFakeEditorClient()
	cfg := exportEnv(t)
	if err := os.Remove(filepath.Join(filepath.Dir(cfg.EditorPath), requiredSentinel)); err != nil {
		t.Fatal(err)
	}

	res := NewExporter(client, cfg).Export(context.Background(), staticTarget{}, extractor(someFiles(), nil))
	if res.Ok() {
		t.Fatal("export should abort when the sentinel file is missing")
	}
	if client.execCalls != 0 {
		t.Error("the editor must not be spawned after a precondition failure")
	}
}

func TestExportEditorAlreadyRunningAborts(t *testing.T) {
	client := newFakeEditorClient()
	client.editorRunning = true

	extracted := false
	extract := func(ctx context.Context, target Target) (Files, error) {
		extracted = true
		return someFiles(), nil
	}

	res := NewExporter(client, exportEnv(t)).Export(context.Background(), staticTarget{}, extract)
	if res.Ok() {
		t.Fatal("export should abort while another editor instance is running")
	}
	if extracted {
		t.Error("aggregation must not run when the editor check fails")
	}
	if client.execCalls != 0 {
		t.Error("the editor must not be spawned after a precondition failure")
	}
}

func TestExportEmptyFileSetsAbort(t *testing.T) {
	client := newFakeEditorClient()

	res := NewExporter(client, exportEnv(t)).Export(context.Background(), staticTarget{}, extractor(newFiles(), nil))
	if res.Ok() {
		t.Fatal("export of an empty target should abort")
	}
	if res.Message != "object is empty or subitems are broken" {
		t.Errorf("unexpected message: %q", res.Message)
	}
	if client.execCalls != 0 {
		t.Error("the editor must not be spawned for an empty target")
	}
}

func TestExportExtractionErrorPropagates(t *testing.T) {
	client := newFakeEditorClient()

	res := NewExporter(client, exportEnv(t)).Export(context.Background(), staticTarget{},
		extractor(Files{}, errors.New("analyzer crashed")))
	if res.Ok() {
		t.Fatal("extraction errors should fail the export")
	}
	if res.Message != "analyzer crashed" {
		t.Errorf("unexpected message: %q", res.Message)
	}
}

func TestExportMissingTemplateAborts(t *testing.T) {
	client := newFakeEditorClient()
	cfg := exportEnv(t)
	if err := os.Remove(filepath.Join(cfg.TemplatesPath, projectTemplate)); err != nil {
		t.Fatal(err)
	}

	res := NewExporter(client, cfg).Export(context.Background(), staticTarget{}, extractor(someFiles(), nil))
	if res.Ok() {
		t.Fatal("export should abort when the project template is missing")
	}
	if client.execCalls != 0 {
		t.Error("the editor must not be spawned without a template")
	}
}

func TestExportEditorFailureDegradesToFatal(t *testing.T) {
	client := newFakeEditorClient()
	client.execRes = opresult.Fatalf("command failed")

	res := NewExporter(client, exportEnv(t)).Export(context.Background(), staticTarget{}, extractor(someFiles(), nil))
	if res.Ok() {
		t.Fatal("editor failure should fail the export")
	}
}

func TestTranslateNonAlphanumerics(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Lesson 1", "Lesson_1"},
		{"C++ basics!", "C___basics_"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := translateNonAlphanumerics(tt.in); got != tt.want {
			t.Errorf("translateNonAlphanumerics(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
