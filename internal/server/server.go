package server

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"lecturecast/internal/capture"
	"lecturecast/internal/config"
	"lecturecast/internal/content"
	"lecturecast/internal/database"
	"lecturecast/internal/export"
	"lecturecast/internal/fsclient"
	"lecturecast/internal/scheduler"
	"lecturecast/internal/users"
)

// FiberServer is the composition root: it constructs every service once
// with process lifetime and injects them into the handlers. The capture
// manager in particular is built exactly once here instead of living as
// ambient global state.
type FiberServer struct {
	*fiber.App
	cfg *config.Config
	db  database.Service

	userService    *users.UserService
	jwtService     *users.JWTService
	contentService *content.Service
	captureManager *capture.Manager
	statusHub      *capture.StatusHub
	aggregator     *export.Aggregator
	exporter       *export.Exporter
}

func New(cfg *config.Config) *FiberServer {
	app := fiber.New(fiber.Config{
		ServerHeader: "lecturecast",
		AppName:      "lecturecast",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	})

	db := database.New()

	fs := fsclient.New()
	processClient := capture.NewClient(fs)
	sched := scheduler.New()

	pipe, err := capture.NewPipeline("recording", cfg.Recording.PostprocessingPipe)
	if err != nil {
		log.Fatalf("Invalid recording pipe configuration: %v", err)
	}

	hub := capture.NewStatusHub()
	camera := capture.NewRecorder("camera", cfg.Recording.CameraCommand, processClient, sched, pipe)
	screen := capture.NewRecorder("screen", cfg.Recording.ScreenCommand, processClient, sched, pipe)
	manager := capture.NewManager(camera, screen, hub)

	contentService := content.NewService(db.GetDatabase(), cfg.Recording.RootPath)
	calculator := export.NewAnalyzerCalculator(cfg.Export.SyncCommand, cfg.Export.MarkerCommand)
	aggregator := export.NewAggregator(contentService, calculator)
	exporter := export.NewExporter(fs, export.ExporterConfig{
		EditorPath:    cfg.Export.EditorPath,
		EditorFlags:   cfg.Export.EditorFlags,
		TemplatesPath: cfg.Export.TemplatesPath,
		ScriptsPath:   cfg.Export.ScriptsPath,
	})

	server := &FiberServer{
		App:            app,
		cfg:            cfg,
		db:             db,
		userService:    users.NewUserService(db.GetDatabase()),
		jwtService:     users.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.Expiration),
		contentService: contentService,
		captureManager: manager,
		statusHub:      hub,
		aggregator:     aggregator,
		exporter:       exporter,
	}
	server.applyMiddleware()

	return server
}

// CaptureManager exposes the recording manager so the shutdown path can
// stop live captures before the process exits.
func (s *FiberServer) CaptureManager() *capture.Manager {
	return s.captureManager
}

func (s *FiberServer) Close() error {
	return s.db.Close()
}

func (s *FiberServer) applyMiddleware() {
	s.App.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(s.cfg.Security.CORSOrigins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Accept,Authorization,Content-Type",
		AllowCredentials: false, // credentials require explicit origins
		MaxAge:           300,
	}))

	s.App.Use(limiter.New(limiter.Config{
		Max:        s.cfg.Security.RateLimit,
		Expiration: s.cfg.Security.RateWindow,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() // limit by IP address
		},
	}))
}
