package export

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"lecturecast/internal/content"
)

// SyncCalculator computes the signed millisecond offset between the two
// feeds of a substep and the scene-change timestamps of a screencast.
// The detection algorithms themselves live in an external analyzer; this
// core only consumes their numeric results.
type SyncCalculator interface {
	SyncOffset(ctx context.Context, substep content.SubStep) (float64, error)
	MarkerTimes(ctx context.Context, screencastPath string) ([]float64, error)
}

// AnalyzerCalculator shells out to the configured analyzer commands and
// parses their numeric output.
type AnalyzerCalculator struct {
	syncCommand   string // invocation; professor and screen paths are appended
	markerCommand string // invocation; screencast path is appended
}

func NewAnalyzerCalculator(syncCommand, markerCommand string) *AnalyzerCalculator {
	return &AnalyzerCalculator{
		syncCommand:   syncCommand,
		markerCommand: markerCommand,
	}
}

func runAnalyzer(ctx context.Context, command string) (string, error) {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", command)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", command)
	}

	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("analyzer command failed: %w", err)
	}
	return string(output), nil
}

// SyncOffset returns the signed offset in milliseconds between the
// professor and screen feeds of one substep.
func (c *AnalyzerCalculator) SyncOffset(ctx context.Context, substep content.SubStep) (float64, error) {
	command := fmt.Sprintf("%s %q %q", c.syncCommand, substep.CameraRecordingPath(), substep.ScreencastPath())
	output, err := runAnalyzer(ctx, command)
	if err != nil {
		return 0, err
	}

	offset, err := strconv.ParseFloat(strings.TrimSpace(output), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse sync offset for %s: %w", substep.Name, err)
	}
	return offset, nil
}

// MarkerTimes returns the scene-change timestamps of a screencast file,
// one per output line of the analyzer.
func (c *AnalyzerCalculator) MarkerTimes(ctx context.Context, screencastPath string) ([]float64, error) {
	command := fmt.Sprintf("%s %q", c.markerCommand, screencastPath)
	output, err := runAnalyzer(ctx, command)
	if err != nil {
		return nil, err
	}

	var times []float64
	for _, field := range strings.Fields(output) {
		t, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse marker time %q: %w", field, err)
		}
		times = append(times, t)
	}
	return times, nil
}
