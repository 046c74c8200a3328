package export

import (
	"context"
	"log"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"lecturecast/internal/opresult"
)

const (
	projectTemplate   = "template.prproj"
	requiredSentinel  = "extendscriptprqe.txt" // required for editor scripts executing
	sequencePreset    = "ppro.sqpreset"
	assemblyScript    = "create_deep_structured_project.jsx"
	editorProcessName = "Adobe Premiere Pro.exe"

	// The editor is known to return 1 on normal completion in some
	// configurations.
	editorAllowableExitCode = 1
)

// EditorClient is the surface the exporter needs from the external
// process client.
type EditorClient interface {
	ExecuteSync(command string, allowableCode int) opresult.Result
	ProcessWithNameExists(name string) bool
}

// Target is a hierarchy object whose recordings get assembled into one
// project.
type Target interface {
	DisplayName() string
	DirPath() string
}

// FilesExtractor produces the aggregate file sets for a target, usually
// by delegating to the Aggregator method matching its hierarchy level.
type FilesExtractor func(ctx context.Context, target Target) (Files, error)

// ExporterConfig carries the filesystem layout the exporter depends on.
type ExporterConfig struct {
	EditorPath    string // editing tool executable
	EditorFlags   string // its CLI invocation flags
	TemplatesPath string // directory holding the project template and sequence preset
	ScriptsPath   string // directory holding the assembly script
}

// Exporter drives the external editing tool to assemble a structured
// multi-track project from a target's recordings.
type Exporter struct {
	cfg    ExporterConfig
	client EditorClient
}

func NewExporter(client EditorClient, cfg ExporterConfig) *Exporter {
	return &Exporter{cfg: cfg, client: client}
}

// Export validates the environment, aggregates the target's file sets,
// builds the editor command and hands it to the process client. Every
// precondition violation aborts before the editor is spawned.
func (e *Exporter) Export(ctx context.Context, target Target, extract FilesExtractor) opresult.Result {
	editorDir := filepath.Dir(e.cfg.EditorPath)
	if !fileExists(filepath.Join(editorDir, requiredSentinel)) {
		return opresult.Fatalf("%q is missing. Please, place %q empty file to %q.",
			requiredSentinel, requiredSentinel, editorDir)
	}

	if e.client.ProcessWithNameExists(editorProcessName) {
		return opresult.Fatalf("only one instance of the editing tool may exist; please close it and try again")
	}

	files, err := extract(ctx, target)
	if err != nil {
		return opresult.FromError(err)
	}

	if len(files.Screen) == 0 || len(files.Professor) == 0 {
		return opresult.Fatalf("object is empty or subitems are broken")
	}

	command, err := e.buildCommand(target, files)
	if err != nil {
		return opresult.FromError(err)
	}

	res := e.client.ExecuteSync(command, editorAllowableExitCode)
	if !res.Ok() {
		log.Printf("Exporter: cannot execute editor command: %s; editor command: %s", res.Message, command)
		return opresult.Fatalf("cannot execute editor command, check editor configuration")
	}

	// The editor keeps assembling the project after this returns.
	log.Printf("Exporter: execution of editor command started; editor command: %s", command)
	return opresult.Successf("export of %q started", target.DisplayName())
}

func (e *Exporter) buildCommand(target Target, files Files) (string, error) {
	if e.cfg.EditorPath == "" {
		return "", errors.New("editing tool configuration is missing: specify the editor path in config")
	}

	templatePath := filepath.Join(e.cfg.TemplatesPath, projectTemplate)
	presetPath := filepath.Join(e.cfg.TemplatesPath, sequencePreset)
	scriptPath := filepath.Join(e.cfg.ScriptsPath, assemblyScript)

	if !fileExists(templatePath) {
		return "", errors.Errorf("project template is missing; please create an empty project at %s", templatePath)
	}
	if !fileExists(presetPath) {
		return "", errors.Errorf("sequence preset file is missing; please put the preset at %s", presetPath)
	}

	base := "\"" + e.cfg.EditorPath + "\" " + e.cfg.EditorFlags
	return NewCommandBuilder(base).
		OpenDocument(templatePath).
		StringConst("outputName", translateNonAlphanumerics(target.DisplayName())).
		StringConst("basePath", target.DirPath()).
		StringConst("presetPath", presetPath).
		ConstArray("screenVideos", files.Screen).
		ConstArray("professorVideos", files.Professor).
		BoolValue("needSync", true).
		ListDict("markerTimes", files.MarkerTimes).
		Dict("syncOffsets", files.SyncOffsets).
		IncludeScript(scriptPath).
		Build()
}

// translateNonAlphanumerics makes a display name safe for use as the
// output project name.
func translateNonAlphanumerics(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
