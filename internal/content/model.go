package content

import (
	"path/filepath"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// File name suffixes for the two feeds backing a substep.
const (
	ProfessorSuffix = "_professor.mp4"
	ScreenSuffix    = "_screen.mp4"
)

// Course is the root of the content hierarchy. Path points at the course
// directory under the recording root.
type Course struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"ID"`
	Name      string               `bson:"name" json:"Name"`
	Editors   []primitive.ObjectID `bson:"editors" json:"Editors"`
	Path      string               `bson:"path" json:"Path"`
	CreatedAt time.Time            `bson:"created_at" json:"CreatedAt"`
	UpdatedAt time.Time            `bson:"updated_at" json:"UpdatedAt"`
}

type Lesson struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"ID"`
	CourseID  primitive.ObjectID `bson:"from_course" json:"CourseID"`
	Name      string             `bson:"name" json:"Name"`
	Position  int                `bson:"position" json:"Position"`
	Path      string             `bson:"path" json:"Path"`
	CreatedAt time.Time          `bson:"created_at" json:"CreatedAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"UpdatedAt"`
}

type Step struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"ID"`
	LessonID  primitive.ObjectID `bson:"from_lesson" json:"LessonID"`
	Name      string             `bson:"name" json:"Name"`
	Position  int                `bson:"position" json:"Position"`
	Duration  int64              `bson:"duration" json:"Duration"` // milliseconds, rolled up from substeps
	TextData  string             `bson:"text_data" json:"TextData"`
	Path      string             `bson:"path" json:"Path"`
	CreatedAt time.Time          `bson:"created_at" json:"CreatedAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"UpdatedAt"`
}

// SubStep corresponds to one recording take: a professor-camera file and
// a screen-capture file side by side in the step directory.
type SubStep struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"ID"`
	StepID     primitive.ObjectID `bson:"from_step" json:"StepID"`
	Name       string             `bson:"name" json:"Name"`
	StartTime  int64              `bson:"start_time" json:"StartTime"` // unix milliseconds, ordering key
	Duration   int64              `bson:"duration" json:"Duration"`    // milliseconds
	IsVideosOK bool               `bson:"is_videos_ok" json:"IsVideosOK"`
	Path       string             `bson:"path" json:"Path"` // step directory holding both files
	CreatedAt  time.Time          `bson:"created_at" json:"CreatedAt"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"UpdatedAt"`
}

func (s SubStep) CameraRecordingName() string {
	return s.Name + ProfessorSuffix
}

func (s SubStep) ScreencastName() string {
	return s.Name + ScreenSuffix
}

func (s SubStep) CameraRecordingPath() string {
	return filepath.Join(s.Path, s.CameraRecordingName())
}

func (s SubStep) ScreencastPath() string {
	return filepath.Join(s.Path, s.ScreencastName())
}

// DisplayName / DirPath let hierarchy objects act as export targets.

func (c Course) DisplayName() string { return c.Name }
func (c Course) DirPath() string     { return c.Path }

func (l Lesson) DisplayName() string { return l.Name }
func (l Lesson) DirPath() string     { return l.Path }

func (s Step) DisplayName() string { return s.Name }
func (s Step) DirPath() string     { return s.Path }

type CreateCourseRequest struct {
	Name string `json:"name" validate:"required,min=1,max=128"`
}

type CreateLessonRequest struct {
	CourseID string `json:"course_id" validate:"required"`
	Name     string `json:"name" validate:"required,min=1,max=128"`
}

type CreateStepRequest struct {
	LessonID string `json:"lesson_id" validate:"required"`
	Name     string `json:"name" validate:"required,min=1,max=128"`
}
