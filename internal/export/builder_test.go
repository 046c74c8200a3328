package export

import (
	"strings"
	"testing"
)

func TestBuildWrapsScriptInQuotes(t *testing.T) {
	cmd, err := NewCommandBuilder(`"C:\editor.exe" --es`).
		OpenDocument("/templates/template.prproj").
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	want := `"C:\editor.exe" --es "app.openDocument('/templates/template.prproj');"`
	if cmd != want {
		t.Errorf("command = %q, want %q", cmd, want)
	}
}

func TestStatementSerialization(t *testing.T) {
	tests := []struct {
		name  string
		build func(*CommandBuilder) *CommandBuilder
		want  string
	}{
		{
			name:  "string const",
			build: func(b *CommandBuilder) *CommandBuilder { return b.StringConst("outputName", "Lesson1") },
			want:  "const outputName = 'Lesson1';",
		},
		{
			name:  "array const",
			build: func(b *CommandBuilder) *CommandBuilder { return b.ConstArray("screenVideos", []string{"a.mp4", "b.mp4"}) },
			want:  "const screenVideos = ['a.mp4', 'b.mp4'];",
		},
		{
			name:  "empty array stays explicit",
			build: func(b *CommandBuilder) *CommandBuilder { return b.ConstArray("screenVideos", nil) },
			want:  "const screenVideos = [];",
		},
		{
			name:  "bool true",
			build: func(b *CommandBuilder) *CommandBuilder { return b.BoolValue("needSync", true) },
			want:  "var needSync = Boolean(true);",
		},
		{
			name:  "bool false",
			build: func(b *CommandBuilder) *CommandBuilder { return b.BoolValue("needSync", false) },
			want:  "var needSync = Boolean(false);",
		},
		{
			name:  "eval file",
			build: func(b *CommandBuilder) *CommandBuilder { return b.EvalFile("/scripts/prep.jsx") },
			want:  "$.evalFile('/scripts/prep.jsx');",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := tt.build(NewCommandBuilder("editor")).Build()
			if err != nil {
				t.Fatalf("build failed: %v", err)
			}
			want := `editor "` + tt.want + `"`
			if cmd != want {
				t.Errorf("command = %q, want %q", cmd, want)
			}
		})
	}
}

func TestDictSerializesSortedKeys(t *testing.T) {
	cmd, err := NewCommandBuilder("editor").
		Dict("syncOffsets", map[string]float64{
			"b_screen.mp4":    120,
			"a_professor.mp4": 50.5,
		}).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	want := `editor "var syncOffsets = {'a_professor.mp4': 50.5, 'b_screen.mp4': 120};"`
	if cmd != want {
		t.Errorf("command = %q, want %q", cmd, want)
	}
}

func TestListDictSerializesArrayValues(t *testing.T) {
	cmd, err := NewCommandBuilder("editor").
		ListDict("markerTimes", map[string][]float64{
			"b.mp4": {1.5, 2},
			"a.mp4": {},
		}).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	want := `editor "var markerTimes = {'a.mp4': [], 'b.mp4': [1.5, 2]};"`
	if cmd != want {
		t.Errorf("command = %q, want %q", cmd, want)
	}
}

func TestIncludeDirectiveAlwaysLast(t *testing.T) {
	// The include is recorded in the middle of the chain but must still
	// land after every other statement.
	cmd, err := NewCommandBuilder("editor").
		OpenDocument("/t/template.prproj").
		IncludeScript("/s/assemble.jsx").
		StringConst("outputName", "Step1").
		BoolValue("needSync", true).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	idx := strings.Index(cmd, "//@include")
	if idx == -1 {
		t.Fatal("include directive missing from command")
	}
	tail := cmd[idx:]
	if tail != `//@include '/s/assemble.jsx'"` {
		t.Errorf("include directive is not the final statement: %q", tail)
	}
	if !strings.Contains(cmd[:idx], "const outputName") {
		t.Error("statements appended after IncludeScript must still precede the directive")
	}
}

func TestDoubleIncludeIsAnError(t *testing.T) {
	_, err := NewCommandBuilder("editor").
		IncludeScript("/s/one.jsx").
		IncludeScript("/s/two.jsx").
		Build()
	if err == nil {
		t.Fatal("a second IncludeScript call must fail the build")
	}
}

func TestEscapingInStringValues(t *testing.T) {
	cmd, err := NewCommandBuilder("editor").
		StringConst("basePath", `C:\videos\it's here`).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	want := `editor "const basePath = 'C:\\videos\\it\'s here';"`
	if cmd != want {
		t.Errorf("command = %q, want %q", cmd, want)
	}
}

func TestStatementsJoinedWithSingleSpace(t *testing.T) {
	cmd, err := NewCommandBuilder("editor").
		StringConst("a", "1").
		StringConst("b", "2").
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	want := `editor "const a = '1'; const b = '2';"`
	if cmd != want {
		t.Errorf("command = %q, want %q", cmd, want)
	}
}
