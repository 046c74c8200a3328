package export

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lecturecast/internal/content"
)

// fakeSource serves a fixed in-memory hierarchy.
type fakeSource struct {
	lessons  map[primitive.ObjectID][]content.Lesson
	steps    map[primitive.ObjectID][]content.Step
	substeps map[primitive.ObjectID][]content.SubStep
}

func (s *fakeSource) LessonsByCourse(ctx context.Context, courseID primitive.ObjectID) ([]content.Lesson, error) {
	return s.lessons[courseID], nil
}

func (s *fakeSource) StepsByLesson(ctx context.Context, lessonID primitive.ObjectID) ([]content.Step, error) {
	return s.steps[lessonID], nil
}

func (s *fakeSource) SubStepsByStep(ctx context.Context, stepID primitive.ObjectID) ([]content.SubStep, error) {
	return s.substeps[stepID], nil
}

// fakeCalc answers offsets and markers from fixed tables keyed by substep
// name and screencast path.
type fakeCalc struct {
	offsets map[string]float64
	markers map[string][]float64
}

func (c *fakeCalc) SyncOffset(ctx context.Context, substep content.SubStep) (float64, error) {
	return c.offsets[substep.Name], nil
}

func (c *fakeCalc) MarkerTimes(ctx context.Context, screencastPath string) ([]float64, error) {
	return c.markers[filepath.Base(screencastPath)], nil
}

// writeSubStepFiles creates the two recording files a valid substep owns.
func writeSubStepFiles(t *testing.T, s content.SubStep) {
	t.Helper()
	for _, p := range []string{s.CameraRecordingPath(), s.ScreencastPath()} {
		if err := os.WriteFile(p, []byte("frames"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestAggregateStepCollectsValidSubSteps(t *testing.T) {
	dir := t.TempDir()
	stepID := primitive.NewObjectID()

	subA := content.SubStep{Name: "Step1fromLesson1", StepID: stepID, IsVideosOK: true, Path: dir}
	subB := content.SubStep{Name: "Step1fromLesson1v2", StepID: stepID, IsVideosOK: true, Path: dir}
	writeSubStepFiles(t, subA)
	writeSubStepFiles(t, subB)

	source := &fakeSource{substeps: map[primitive.ObjectID][]content.SubStep{stepID: {subA, subB}}}
	calc := &fakeCalc{
		offsets: map[string]float64{subA.Name: 120, subB.Name: -50},
		markers: map[string][]float64{
			subA.ScreencastName(): {1.5, 3},
			subB.ScreencastName(): {},
		},
	}

	files, err := NewAggregator(source, calc).AggregateStep(context.Background(), content.Step{ID: stepID, Path: dir})
	if err != nil {
		t.Fatalf("aggregation failed: %v", err)
	}

	wantScreen := []string{subA.ScreencastName(), subB.ScreencastName()}
	if !reflect.DeepEqual(files.Screen, wantScreen) {
		t.Errorf("Screen = %v, want %v", files.Screen, wantScreen)
	}
	wantProfessor := []string{subA.CameraRecordingName(), subB.CameraRecordingName()}
	if !reflect.DeepEqual(files.Professor, wantProfessor) {
		t.Errorf("Professor = %v, want %v", files.Professor, wantProfessor)
	}

	// A positive offset is attributed to the screen feed; a negative one
	// to the professor feed, with the sign dropped.
	wantOffsets := map[string]float64{
		subA.ScreencastName():      120,
		subB.CameraRecordingName(): 50,
	}
	if !reflect.DeepEqual(files.SyncOffsets, wantOffsets) {
		t.Errorf("SyncOffsets = %v, want %v", files.SyncOffsets, wantOffsets)
	}

	if !reflect.DeepEqual(files.MarkerTimes[subA.ScreencastName()], []float64{1.5, 3}) {
		t.Errorf("MarkerTimes[%s] = %v", subA.ScreencastName(), files.MarkerTimes[subA.ScreencastName()])
	}
}

func TestAggregateStepSkipsBrokenSubSteps(t *testing.T) {
	dir := t.TempDir()
	stepID := primitive.NewObjectID()

	broken := content.SubStep{Name: "broken", StepID: stepID, IsVideosOK: false, Path: dir}
	writeSubStepFiles(t, broken)

	// Marked OK but the files were never written.
	missing := content.SubStep{Name: "missing", StepID: stepID, IsVideosOK: true, Path: dir}

	valid := content.SubStep{Name: "valid", StepID: stepID, IsVideosOK: true, Path: dir}
	writeSubStepFiles(t, valid)

	source := &fakeSource{substeps: map[primitive.ObjectID][]content.SubStep{stepID: {broken, missing, valid}}}
	calc := &fakeCalc{offsets: map[string]float64{valid.Name: 10}, markers: map[string][]float64{}}

	files, err := NewAggregator(source, calc).AggregateStep(context.Background(), content.Step{ID: stepID, Path: dir})
	if err != nil {
		t.Fatalf("aggregation failed: %v", err)
	}

	if len(files.Screen) != 1 || files.Screen[0] != valid.ScreencastName() {
		t.Errorf("only the valid substep should be collected, got %v", files.Screen)
	}
}

func TestAggregateLessonMissingDirectoryIsEmpty(t *testing.T) {
	source := &fakeSource{}
	calc := &fakeCalc{}
	lesson := content.Lesson{ID: primitive.NewObjectID(), Path: "/no/such/dir"}

	files, err := NewAggregator(source, calc).AggregateLesson(context.Background(), lesson)
	if err != nil {
		t.Fatalf("aggregation failed: %v", err)
	}
	if len(files.Screen) != 0 || len(files.Professor) != 0 {
		t.Errorf("absent lesson directory should aggregate to empty sets, got %v / %v", files.Screen, files.Professor)
	}
}

func TestAggregateCourseWalksWholeHierarchy(t *testing.T) {
	root := t.TempDir()
	courseID := primitive.NewObjectID()
	lessonID := primitive.NewObjectID()
	stepID := primitive.NewObjectID()

	lessonDir := filepath.Join(root, "Lesson1")
	if err := os.MkdirAll(lessonDir, 0755); err != nil {
		t.Fatal(err)
	}

	sub := content.SubStep{Name: "take1", StepID: stepID, IsVideosOK: true, Path: lessonDir}
	writeSubStepFiles(t, sub)

	source := &fakeSource{
		lessons:  map[primitive.ObjectID][]content.Lesson{courseID: {{ID: lessonID, CourseID: courseID, Path: lessonDir}}},
		steps:    map[primitive.ObjectID][]content.Step{lessonID: {{ID: stepID, LessonID: lessonID, Path: lessonDir}}},
		substeps: map[primitive.ObjectID][]content.SubStep{stepID: {sub}},
	}
	calc := &fakeCalc{offsets: map[string]float64{sub.Name: -25}, markers: map[string][]float64{}}

	course := content.Course{ID: courseID, Path: root}
	files, err := NewAggregator(source, calc).AggregateCourse(context.Background(), course)
	if err != nil {
		t.Fatalf("aggregation failed: %v", err)
	}

	if len(files.Professor) != 1 || files.Professor[0] != sub.CameraRecordingName() {
		t.Errorf("course walk missed the substep, got %v", files.Professor)
	}
	if got := files.SyncOffsets[sub.CameraRecordingName()]; got != 25 {
		t.Errorf("negative offset should land on the professor feed as %v, got %v", 25, got)
	}
}
