package capture

import (
	"log"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"lecturecast/internal/content"
)

type StartRecordingRequest struct {
	StepID string `json:"step_id" validate:"required"`
}

// Handler exposes recording control over HTTP. It remembers the substep
// backing the current take so Stop can close it out.
type Handler struct {
	manager        *Manager
	contentService *content.Service

	mu          sync.Mutex
	current     *content.SubStep
	currentFrom time.Time
}

func NewHandler(manager *Manager, contentService *content.Service) *Handler {
	return &Handler{manager: manager, contentService: contentService}
}

func (h *Handler) StartRecording(c *fiber.Ctx) error {
	var req StartRecordingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	stepID, err := primitive.ObjectIDFromHex(req.StepID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid step ID",
		})
	}

	if h.manager.IsRecording() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "A recording is already in progress",
		})
	}

	step, err := h.contentService.GetStep(c.Context(), stepID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Step not found",
		})
	}

	substep, err := h.contentService.NextSubStep(c.Context(), step)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create substep",
		})
	}

	res := h.manager.Start(substep.Path, substep.CameraRecordingName(), substep.ScreencastName())
	if !res.Ok() {
		log.Printf("CaptureHandler: failed to start recording for substep %s: %s", substep.Name, res.Message)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": res.Message,
		})
	}

	h.mu.Lock()
	h.current = substep
	h.currentFrom = time.Now()
	h.mu.Unlock()

	return c.JSON(fiber.Map{
		"message": res.Message,
		"substep": substep,
	})
}

func (h *Handler) StopRecording(c *fiber.Ctx) error {
	res := h.manager.Stop()

	h.mu.Lock()
	current := h.current
	startedAt := h.currentFrom
	h.current = nil
	h.mu.Unlock()

	if current != nil {
		duration := time.Since(startedAt).Milliseconds()
		if err := h.contentService.FinishSubStep(c.Context(), current.ID, duration, res.Ok()); err != nil {
			log.Printf("CaptureHandler: failed to finish substep %s: %v", current.Name, err)
		}
	}

	if !res.Ok() {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": res.Message,
		})
	}

	return c.JSON(fiber.Map{
		"message": res.Message,
	})
}

func (h *Handler) RecordingStatus(c *fiber.Ctx) error {
	return c.JSON(h.manager.Status())
}
