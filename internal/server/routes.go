package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"lecturecast/internal/capture"
	"lecturecast/internal/content"
	"lecturecast/internal/export"
	"lecturecast/internal/users"
)

func (s *FiberServer) RegisterFiberRoutes() {
	userHandler := users.NewUserHandler(s.userService, s.jwtService)
	contentHandler := content.NewHandler(s.contentService)
	captureHandler := capture.NewHandler(s.captureManager, s.contentService)
	exportHandler := export.NewHandler(s.exporter, s.aggregator, s.contentService)

	s.App.Get("/", s.HelloWorldHandler)
	s.App.Get("/health", s.healthHandler)

	s.App.Post("/user/register", userHandler.CreateUser)
	s.App.Post("/user/login", userHandler.LoginUser)

	// Playback stays public so recordings can be reviewed from the
	// classroom machines without a token.
	s.App.Get("/substep/:id/professor", contentHandler.ServeProfessorVideo)
	s.App.Get("/substep/:id/screen", contentHandler.ServeScreenVideo)

	api := s.App.Group("/api", users.AuthMiddleware(s.jwtService))

	api.Get("/user/me", userHandler.GetUser)

	api.Post("/course", contentHandler.CreateCourse)
	api.Get("/courses", contentHandler.ListCourses)
	api.Post("/lesson", contentHandler.CreateLesson)
	api.Get("/course/:id/lessons", contentHandler.ListLessons)
	api.Delete("/lesson/:id", contentHandler.DeleteLesson)
	api.Post("/step", contentHandler.CreateStep)
	api.Get("/lesson/:id/steps", contentHandler.ListSteps)
	api.Get("/step/:id", contentHandler.GetStep)
	api.Delete("/step/:id", contentHandler.DeleteStep)
	api.Get("/step/:id/substeps", contentHandler.ListSubSteps)
	api.Delete("/substep/:id", contentHandler.DeleteSubStep)

	api.Post("/recording/start", captureHandler.StartRecording)
	api.Post("/recording/stop", captureHandler.StopRecording)
	api.Get("/recording/status", captureHandler.RecordingStatus)

	api.Post("/export/step/:id", exportHandler.ExportStep)
	api.Post("/export/lesson/:id", exportHandler.ExportLesson)
	api.Post("/export/course/:id", exportHandler.ExportCourse)

	go s.statusHub.Run()

	s.App.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.App.Get("/ws/status", websocket.New(s.statusHub.ServeWS))
}

func (s *FiberServer) HelloWorldHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "lecturecast"})
}

func (s *FiberServer) healthHandler(c *fiber.Ctx) error {
	return c.JSON(s.db.Health())
}
