package content

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func paramID(c *fiber.Ctx, name string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.Params(name))
}

func (h *Handler) CreateCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(primitive.ObjectID)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req CreateCourseRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	course, err := h.service.CreateCourse(c.Context(), req.Name, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create course",
		})
	}
	return c.JSON(course)
}

func (h *Handler) ListCourses(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(primitive.ObjectID)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	courses, err := h.service.CoursesByEditor(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list courses",
		})
	}
	return c.JSON(courses)
}

func (h *Handler) CreateLesson(c *fiber.Ctx) error {
	var req CreateLessonRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	courseID, err := primitive.ObjectIDFromHex(req.CourseID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	lesson, err := h.service.CreateLesson(c.Context(), courseID, req.Name)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create lesson",
		})
	}
	return c.JSON(lesson)
}

func (h *Handler) ListLessons(c *fiber.Ctx) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	lessons, err := h.service.LessonsByCourse(c.Context(), courseID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list lessons",
		})
	}
	return c.JSON(lessons)
}

func (h *Handler) DeleteLesson(c *fiber.Ctx) error {
	lessonID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid lesson ID",
		})
	}

	if err := h.service.DeleteLesson(c.Context(), lessonID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete lesson",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) CreateStep(c *fiber.Ctx) error {
	var req CreateStepRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	lessonID, err := primitive.ObjectIDFromHex(req.LessonID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid lesson ID",
		})
	}

	step, err := h.service.CreateStep(c.Context(), lessonID, req.Name)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create step",
		})
	}
	return c.JSON(step)
}

func (h *Handler) ListSteps(c *fiber.Ctx) error {
	lessonID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid lesson ID",
		})
	}

	steps, err := h.service.StepsByLesson(c.Context(), lessonID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list steps",
		})
	}
	return c.JSON(steps)
}

func (h *Handler) GetStep(c *fiber.Ctx) error {
	stepID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid step ID",
		})
	}

	step, err := h.service.GetStep(c.Context(), stepID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Step not found",
		})
	}
	return c.JSON(step)
}

func (h *Handler) DeleteStep(c *fiber.Ctx) error {
	stepID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid step ID",
		})
	}

	if err := h.service.DeleteStep(c.Context(), stepID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete step",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) ListSubSteps(c *fiber.Ctx) error {
	stepID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid step ID",
		})
	}

	substeps, err := h.service.SubStepsByStep(c.Context(), stepID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list substeps",
		})
	}
	return c.JSON(substeps)
}

func (h *Handler) DeleteSubStep(c *fiber.Ctx) error {
	substepID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid substep ID",
		})
	}

	if err := h.service.DeleteSubStep(c.Context(), substepID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete substep",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ServeProfessorVideo streams the camera recording of a substep for
// inline playback.
func (h *Handler) ServeProfessorVideo(c *fiber.Ctx) error {
	return h.serveRecording(c, func(s *SubStep) (string, string) {
		return s.CameraRecordingPath(), s.CameraRecordingName()
	})
}

// ServeScreenVideo streams the screencast recording of a substep.
func (h *Handler) ServeScreenVideo(c *fiber.Ctx) error {
	return h.serveRecording(c, func(s *SubStep) (string, string) {
		return s.ScreencastPath(), s.ScreencastName()
	})
}

func (h *Handler) serveRecording(c *fiber.Ctx, pick func(*SubStep) (string, string)) error {
	substepID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid substep ID",
		})
	}

	substep, err := h.service.GetSubStep(c.Context(), substepID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Substep not found",
		})
	}

	path, name := pick(substep)
	c.Set("Content-Disposition", fmt.Sprintf("inline; filename=%s", name))
	return c.SendFile(path)
}
