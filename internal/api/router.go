package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/presenca/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/presenca/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/presenca/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/presenca/internal/attendance"
	"github.com/saturnino-fabrica-de-software/presenca/internal/camera"
	"github.com/saturnino-fabrica-de-software/presenca/internal/config"
	"github.com/saturnino-fabrica-de-software/presenca/internal/gallery"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
	"github.com/saturnino-fabrica-de-software/presenca/internal/recognition"
	"github.com/saturnino-fabrica-de-software/presenca/internal/repository"
	"github.com/saturnino-fabrica-de-software/presenca/internal/service"
	"github.com/saturnino-fabrica-de-software/presenca/internal/unknown"
	"github.com/saturnino-fabrica-de-software/presenca/internal/ws"
)

type Dependencies struct {
	IdentityRepo   repository.IdentityRepositoryInterface
	AttendanceRepo repository.AttendanceRepositoryInterface
	SightingRepo   repository.SightingRepositoryInterface
	Provider       provider.EmbeddingProvider
	Config         *config.Config
	DB             *pgxpool.Pool
}

type Router struct {
	app       *fiber.App
	logger    *slog.Logger
	deps      *Dependencies
	settings  *config.Settings
	broker    *camera.Broker
	wsHub     *ws.Hub
	cancelHub context.CancelFunc
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Presença API",
		BodyLimit:    16 * 1024 * 1024,
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

// Setup monta middlewares, rotas e o pipeline de reconhecimento. Carrega a
// galeria e reidrata o ledger, então precisa do banco acessível.
func (r *Router) Setup(ctx context.Context) error {
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	var pool *pgxpool.Pool
	if r.deps != nil {
		pool = r.deps.DB
	}
	healthHandler := handler.NewHealthHandler(pool)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	if r.deps == nil {
		return nil
	}

	v1 := r.app.Group("/v1")

	r.settings = config.NewSettings(r.deps.Config)

	// pipeline de reconhecimento
	g := gallery.New(r.deps.IdentityRepo, r.logger)
	if err := g.Load(ctx); err != nil {
		return fmt.Errorf("load gallery: %w", err)
	}

	ledger := attendance.NewLedger(r.deps.AttendanceRepo, r.settings, r.logger)
	if err := ledger.Rehydrate(ctx); err != nil {
		return fmt.Errorf("rehydrate ledger: %w", err)
	}

	engine := recognition.NewEngine(r.deps.Provider, g, r.settings, r.logger)
	registry := unknown.NewRegistry(r.deps.SightingRepo, r.deps.IdentityRepo, g, r.settings, r.logger)
	processor := service.NewProcessor(engine, ledger, registry, r.settings, r.logger)
	enrollment := service.NewEnrollmentService(r.deps.IdentityRepo, g, r.deps.Provider, ledger)

	// hub de WebSocket e broker de câmeras
	r.wsHub = ws.NewHub()
	hubCtx, hubCancel := context.WithCancel(context.Background())
	r.cancelHub = hubCancel
	go r.wsHub.Run(hubCtx)

	r.broker = camera.NewBroker(r.settings, processor, r.wsHub, r.deps.Config.ProbeTimeout, r.logger)

	// handlers
	peopleHandler := handler.NewPeopleHandler(enrollment, r.logger)
	attendanceHandler := handler.NewAttendanceHandler(ledger, enrollment, r.logger)
	unknownHandler := handler.NewUnknownHandler(registry, r.logger)
	cameraHandler := handler.NewCameraHandler(r.broker, r.logger)
	processHandler := handler.NewProcessHandler(processor, r.logger)
	settingsHandler := handler.NewSettingsHandler(r.settings, r.logger)

	// people
	v1.Post("/people", peopleHandler.Enroll)
	v1.Get("/people", peopleHandler.List)
	v1.Get("/people/:id", peopleHandler.Get)
	v1.Get("/people/:id/image", peopleHandler.GetImage)
	v1.Patch("/people/:id", peopleHandler.Rename)
	v1.Delete("/people/:id", peopleHandler.Delete)

	// recognition
	v1.Post("/process-frame", processHandler.ProcessFrame)

	// attendance
	v1.Get("/attendance", attendanceHandler.List)
	v1.Post("/attendance", attendanceHandler.Create)
	v1.Post("/attendance/:id/departure", attendanceHandler.Depart)

	// sightings
	v1.Get("/unknown-faces", unknownHandler.List)
	v1.Get("/unknown-faces/:id/image", unknownHandler.GetImage)
	v1.Post("/unknown-faces/:id/migrate", unknownHandler.Migrate)
	v1.Delete("/unknown-faces/:id", unknownHandler.Discard)

	// cameras
	v1.Get("/cameras/discover", cameraHandler.Discover)
	v1.Post("/cameras", cameraHandler.Add)
	v1.Get("/cameras", cameraHandler.List)
	v1.Get("/cameras/:id", cameraHandler.Status)
	v1.Delete("/cameras/:id", cameraHandler.Remove)
	v1.Get("/cameras/:id/frame", cameraHandler.Frame)
	v1.Post("/cameras/:id/mode", cameraHandler.SetMode)
	v1.Get("/cameras/:id/ws", ws.UpgradeMiddleware(), ws.Handler(r.wsHub))

	// settings
	v1.Get("/settings", settingsHandler.Get)
	v1.Put("/settings", settingsHandler.Update)

	return nil
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	if r.broker != nil {
		r.broker.Shutdown()
	}

	if r.cancelHub != nil {
		r.cancelHub()
	}

	return r.app.Shutdown()
}
