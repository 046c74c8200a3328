package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Service owns the content hierarchy collections. The recording and
// export pipeline only reads the hierarchy through it.
type Service struct {
	courses  *mongo.Collection
	lessons  *mongo.Collection
	steps    *mongo.Collection
	substeps *mongo.Collection
	rootPath string
}

func NewService(db *mongo.Database, rootPath string) *Service {
	return &Service{
		courses:  db.Collection("courses"),
		lessons:  db.Collection("lessons"),
		steps:    db.Collection("steps"),
		substeps: db.Collection("substeps"),
		rootPath: rootPath,
	}
}

// sanitizeName keeps directory names shell- and script-safe.
func sanitizeName(name string) string {
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

func (s *Service) CreateCourse(ctx context.Context, name string, editorID primitive.ObjectID) (*Course, error) {
	now := time.Now()
	course := &Course{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Editors:   []primitive.ObjectID{editorID},
		Path:      filepath.Join(s.rootPath, sanitizeName(name)),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := os.MkdirAll(course.Path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create course directory: %w", err)
	}

	if _, err := s.courses.InsertOne(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *Service) CoursesByEditor(ctx context.Context, editorID primitive.ObjectID) ([]Course, error) {
	cursor, err := s.courses.Find(ctx, bson.M{"editors": editorID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var courses []Course
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (s *Service) GetCourse(ctx context.Context, id primitive.ObjectID) (*Course, error) {
	var course Course
	if err := s.courses.FindOne(ctx, bson.M{"_id": id}).Decode(&course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (s *Service) CreateLesson(ctx context.Context, courseID primitive.ObjectID, name string) (*Lesson, error) {
	course, err := s.GetCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("course not found: %w", err)
	}

	position, err := s.lessons.CountDocuments(ctx, bson.M{"from_course": courseID})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	lesson := &Lesson{
		ID:        primitive.NewObjectID(),
		CourseID:  courseID,
		Name:      name,
		Position:  int(position),
		Path:      filepath.Join(course.Path, sanitizeName(name)),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := os.MkdirAll(lesson.Path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lesson directory: %w", err)
	}

	if _, err := s.lessons.InsertOne(ctx, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

// LessonsByCourse returns a course's lessons in presentation order.
func (s *Service) LessonsByCourse(ctx context.Context, courseID primitive.ObjectID) ([]Lesson, error) {
	cursor, err := s.lessons.Find(ctx, bson.M{"from_course": courseID},
		options.Find().SetSort(bson.D{{Key: "position", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var lessons []Lesson
	if err := cursor.All(ctx, &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

func (s *Service) GetLesson(ctx context.Context, id primitive.ObjectID) (*Lesson, error) {
	var lesson Lesson
	if err := s.lessons.FindOne(ctx, bson.M{"_id": id}).Decode(&lesson); err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (s *Service) CreateStep(ctx context.Context, lessonID primitive.ObjectID, name string) (*Step, error) {
	lesson, err := s.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("lesson not found: %w", err)
	}

	position, err := s.steps.CountDocuments(ctx, bson.M{"from_lesson": lessonID})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	step := &Step{
		ID:        primitive.NewObjectID(),
		LessonID:  lessonID,
		Name:      name,
		Position:  int(position),
		Path:      filepath.Join(lesson.Path, sanitizeName(name)),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := os.MkdirAll(step.Path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create step directory: %w", err)
	}

	if _, err := s.steps.InsertOne(ctx, step); err != nil {
		return nil, err
	}
	return step, nil
}

// StepsByLesson returns a lesson's steps in presentation order.
func (s *Service) StepsByLesson(ctx context.Context, lessonID primitive.ObjectID) ([]Step, error) {
	cursor, err := s.steps.Find(ctx, bson.M{"from_lesson": lessonID},
		options.Find().SetSort(bson.D{{Key: "position", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var steps []Step
	if err := cursor.All(ctx, &steps); err != nil {
		return nil, err
	}
	return steps, nil
}

func (s *Service) GetStep(ctx context.Context, id primitive.ObjectID) (*Step, error) {
	var step Step
	if err := s.steps.FindOne(ctx, bson.M{"_id": id}).Decode(&step); err != nil {
		return nil, err
	}
	return &step, nil
}

// NextSubStep creates the substep for the next recording take of a step,
// with a name that is unique across all substeps.
func (s *Service) NextSubStep(ctx context.Context, step *Step) (*SubStep, error) {
	index, err := s.substeps.CountDocuments(ctx, bson.M{"from_step": step.ID})
	if err != nil {
		return nil, err
	}
	index++

	name := fmt.Sprintf("Step%dfrom%s", index, step.ID.Hex())
	for {
		count, err := s.substeps.CountDocuments(ctx, bson.M{"name": name})
		if err != nil {
			return nil, err
		}
		if count == 0 {
			break
		}
		index++
		name = fmt.Sprintf("Step%dfrom%s", index, step.ID.Hex())
	}

	now := time.Now()
	substep := &SubStep{
		ID:        primitive.NewObjectID(),
		StepID:    step.ID,
		Name:      name,
		StartTime: now.UnixMilli(),
		Path:      step.Path,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.substeps.InsertOne(ctx, substep); err != nil {
		return nil, err
	}
	return substep, nil
}

// SubStepsByStep returns a step's substeps ordered by recording start
// time.
func (s *Service) SubStepsByStep(ctx context.Context, stepID primitive.ObjectID) ([]SubStep, error) {
	cursor, err := s.substeps.Find(ctx, bson.M{"from_step": stepID},
		options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var substeps []SubStep
	if err := cursor.All(ctx, &substeps); err != nil {
		return nil, err
	}
	return substeps, nil
}

func (s *Service) GetSubStep(ctx context.Context, id primitive.ObjectID) (*SubStep, error) {
	var substep SubStep
	if err := s.substeps.FindOne(ctx, bson.M{"_id": id}).Decode(&substep); err != nil {
		return nil, err
	}
	return &substep, nil
}

// FinishSubStep marks a completed take and rolls the step duration up
// from all of its substeps.
func (s *Service) FinishSubStep(ctx context.Context, id primitive.ObjectID, duration int64, videosOK bool) error {
	var substep SubStep
	err := s.substeps.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"duration":     duration,
			"is_videos_ok": videosOK,
			"updated_at":   time.Now(),
		}}).Decode(&substep)
	if err != nil {
		return err
	}

	return s.updateStepDuration(ctx, substep.StepID)
}

func (s *Service) updateStepDuration(ctx context.Context, stepID primitive.ObjectID) error {
	substeps, err := s.SubStepsByStep(ctx, stepID)
	if err != nil {
		return err
	}

	var total int64
	for _, sub := range substeps {
		total += sub.Duration
	}

	_, err = s.steps.UpdateOne(ctx,
		bson.M{"_id": stepID},
		bson.M{"$set": bson.M{"duration": total, "updated_at": time.Now()}})
	return err
}

// DeleteSubStep removes the substep document and its recordings on disk.
func (s *Service) DeleteSubStep(ctx context.Context, id primitive.ObjectID) error {
	substep, err := s.GetSubStep(ctx, id)
	if err != nil {
		return err
	}

	for _, path := range []string{substep.CameraRecordingPath(), substep.ScreencastPath()} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove recording %s: %w", path, err)
		}
	}

	_, err = s.substeps.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// DeleteStep removes a step together with its substeps and directory.
func (s *Service) DeleteStep(ctx context.Context, id primitive.ObjectID) error {
	step, err := s.GetStep(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.substeps.DeleteMany(ctx, bson.M{"from_step": id}); err != nil {
		return err
	}
	if err := os.RemoveAll(step.Path); err != nil {
		return fmt.Errorf("failed to remove step directory: %w", err)
	}

	_, err = s.steps.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// DeleteLesson removes a lesson with all nested steps and substeps.
func (s *Service) DeleteLesson(ctx context.Context, id primitive.ObjectID) error {
	lesson, err := s.GetLesson(ctx, id)
	if err != nil {
		return err
	}

	steps, err := s.StepsByLesson(ctx, id)
	if err != nil {
		return err
	}
	for _, step := range steps {
		if _, err := s.substeps.DeleteMany(ctx, bson.M{"from_step": step.ID}); err != nil {
			return err
		}
	}
	if _, err := s.steps.DeleteMany(ctx, bson.M{"from_lesson": id}); err != nil {
		return err
	}

	if err := os.RemoveAll(lesson.Path); err != nil {
		return fmt.Errorf("failed to remove lesson directory: %w", err)
	}

	_, err = s.lessons.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
