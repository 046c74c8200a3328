package export

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"lecturecast/internal/content"
)

type Handler struct {
	exporter       *Exporter
	aggregator     *Aggregator
	contentService *content.Service
}

func NewHandler(exporter *Exporter, aggregator *Aggregator, contentService *content.Service) *Handler {
	return &Handler{
		exporter:       exporter,
		aggregator:     aggregator,
		contentService: contentService,
	}
}

func (h *Handler) respond(c *fiber.Ctx, target Target, extract FilesExtractor) error {
	res := h.exporter.Export(c.Context(), target, extract)
	if !res.Ok() {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": res.Message,
		})
	}
	return c.JSON(res)
}

func (h *Handler) ExportStep(c *fiber.Ctx) error {
	stepID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid step ID",
		})
	}

	step, err := h.contentService.GetStep(c.Context(), stepID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Step not found",
		})
	}

	return h.respond(c, *step, func(ctx context.Context, _ Target) (Files, error) {
		return h.aggregator.AggregateStep(ctx, *step)
	})
}

func (h *Handler) ExportLesson(c *fiber.Ctx) error {
	lessonID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid lesson ID",
		})
	}

	lesson, err := h.contentService.GetLesson(c.Context(), lessonID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Lesson not found",
		})
	}

	return h.respond(c, *lesson, func(ctx context.Context, _ Target) (Files, error) {
		return h.aggregator.AggregateLesson(ctx, *lesson)
	})
}

func (h *Handler) ExportCourse(c *fiber.Ctx) error {
	courseID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	course, err := h.contentService.GetCourse(c.Context(), courseID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Course not found",
		})
	}

	return h.respond(c, *course, func(ctx context.Context, _ Target) (Files, error) {
		return h.aggregator.AggregateCourse(ctx, *course)
	})
}
