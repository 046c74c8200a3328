package export

import (
	"context"
	"log"
	"os"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lecturecast/internal/content"
)

// Files holds the four parallel aggregates produced by one walk over the
// content hierarchy, keyed by traversal order of the valid substeps.
type Files struct {
	Screen      []string
	Professor   []string
	MarkerTimes map[string][]float64
	SyncOffsets map[string]float64
}

func newFiles() Files {
	return Files{
		MarkerTimes: make(map[string][]float64),
		SyncOffsets: make(map[string]float64),
	}
}

func (f *Files) merge(other Files) {
	f.Screen = append(f.Screen, other.Screen...)
	f.Professor = append(f.Professor, other.Professor...)
	for name, times := range other.MarkerTimes {
		f.MarkerTimes[name] = times
	}
	for name, offset := range other.SyncOffsets {
		f.SyncOffsets[name] = offset
	}
}

// ContentSource supplies ordered children of hierarchy nodes. It is
// satisfied by content.Service.
type ContentSource interface {
	LessonsByCourse(ctx context.Context, courseID primitive.ObjectID) ([]content.Lesson, error)
	StepsByLesson(ctx context.Context, lessonID primitive.ObjectID) ([]content.Step, error)
	SubStepsByStep(ctx context.Context, stepID primitive.ObjectID) ([]content.SubStep, error)
}

// Aggregator walks the hierarchy and collects the file sets consumed by
// the export command. Each call re-walks the full subtree; nothing is
// cached between exports.
type Aggregator struct {
	source ContentSource
	calc   SyncCalculator
}

func NewAggregator(source ContentSource, calc SyncCalculator) *Aggregator {
	return &Aggregator{source: source, calc: calc}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// foldChildren aggregates child contributions in order, short-circuiting
// to empty aggregates when the node's backing directory is absent.
func foldChildren[T any](dirPath string, children func() ([]T, error), contribute func(T) (Files, error)) (Files, error) {
	files := newFiles()
	if !dirExists(dirPath) {
		return files, nil
	}

	items, err := children()
	if err != nil {
		return files, err
	}
	for _, item := range items {
		part, err := contribute(item)
		if err != nil {
			return files, err
		}
		files.merge(part)
	}
	return files, nil
}

// AggregateStep collects the file sets of one step's valid substeps in
// recording order. Substeps whose recordings are broken or missing on
// disk are skipped.
func (a *Aggregator) AggregateStep(ctx context.Context, step content.Step) (Files, error) {
	files := newFiles()

	substeps, err := a.source.SubStepsByStep(ctx, step.ID)
	if err != nil {
		return files, err
	}

	for _, substep := range substeps {
		if !substep.IsVideosOK || !fileExists(substep.ScreencastPath()) || !fileExists(substep.CameraRecordingPath()) {
			log.Printf("Aggregator: skipping substep %s: recordings broken or missing", substep.Name)
			continue
		}

		files.Screen = append(files.Screen, substep.ScreencastName())
		files.Professor = append(files.Professor, substep.CameraRecordingName())

		times, err := a.calc.MarkerTimes(ctx, substep.ScreencastPath())
		if err != nil {
			return files, err
		}
		files.MarkerTimes[substep.ScreencastName()] = times

		offset, err := a.calc.SyncOffset(ctx, substep)
		if err != nil {
			return files, err
		}
		// A positive offset means the screen feed lags; attribute the
		// absolute value to whichever feed has to be shifted.
		if offset > 0 {
			files.SyncOffsets[substep.ScreencastName()] = offset
		} else {
			files.SyncOffsets[substep.CameraRecordingName()] = -offset
		}
	}

	return files, nil
}

// AggregateLesson folds AggregateStep over the lesson's steps in order.
func (a *Aggregator) AggregateLesson(ctx context.Context, lesson content.Lesson) (Files, error) {
	return foldChildren(lesson.Path,
		func() ([]content.Step, error) { return a.source.StepsByLesson(ctx, lesson.ID) },
		func(step content.Step) (Files, error) { return a.AggregateStep(ctx, step) })
}

// AggregateCourse folds AggregateLesson over the course's lessons in
// order.
func (a *Aggregator) AggregateCourse(ctx context.Context, course content.Course) (Files, error) {
	return foldChildren(course.Path,
		func() ([]content.Lesson, error) { return a.source.LessonsByCourse(ctx, course.ID) },
		func(lesson content.Lesson) (Files, error) { return a.AggregateLesson(ctx, lesson) })
}
