package capture

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
)

// PipeOperation is one post-processing step applied to a finished
// recording.
type PipeOperation func(path, filename string) error

// Pipeline applies an ordered list of named operations to a recording
// after a capture stops.
type Pipeline struct {
	name string
	ops  []PipeOperation
}

// NewPipeline resolves operation names from the configured descriptor.
// Unknown names are rejected at construction time so a bad config fails
// at startup, not after the first recording.
func NewPipeline(name string, opNames []string) (*Pipeline, error) {
	ops := make([]PipeOperation, 0, len(opNames))
	for _, opName := range opNames {
		op, ok := pipeOperations[opName]
		if !ok {
			return nil, fmt.Errorf("unknown post-processing operation %q", opName)
		}
		ops = append(ops, op)
	}
	return &Pipeline{name: name, ops: ops}, nil
}

// Apply runs the pipe over one recording. Failures are logged and stop
// the pipe; they never propagate to the recorder.
func (p *Pipeline) Apply(path, filename string) {
	for _, op := range p.ops {
		if err := op(path, filename); err != nil {
			log.Printf("Pipeline[%s]: post-processing of %s stopped: %v", p.name, filepath.Join(path, filename), err)
			return
		}
	}
	log.Printf("Pipeline[%s]: post-processing of %s completed", p.name, filepath.Join(path, filename))
}

var pipeOperations = map[string]PipeOperation{
	"verify":    verifyRecording,
	"thumbnail": generateThumbnail,
}

// verifyRecording checks the capture tool actually produced a non-empty
// file.
func verifyRecording(path, filename string) error {
	info, err := os.Stat(filepath.Join(path, filename))
	if err != nil {
		return fmt.Errorf("recording missing on disk: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("recording %s is empty", filename)
	}
	return nil
}

// generateThumbnail extracts a preview frame a few seconds into the
// recording.
func generateThumbnail(path, filename string) error {
	videoPath := filepath.Join(path, filename)
	thumbnailPath := videoPath + ".jpg"

	cmd := exec.Command("ffmpeg",
		"-i", videoPath,
		"-ss", "00:00:05",
		"-vframes", "1",
		"-vf", "scale=320:240",
		"-y",
		thumbnailPath)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to generate thumbnail: %w", err)
	}
	return nil
}
