// Package server exposes one takeoff workspace over a JSON HTTP API for the
// browser front-end.
package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/piwi3910/metre/internal/project"
	"github.com/piwi3910/metre/internal/workspace"
)

// Options configures a Server. Zero timeouts mean no limit.
type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Logger       *slog.Logger
	Metrics      *Metrics
}

// Server serializes every request on the workspace, which is single-user.
type Server struct {
	mu      sync.Mutex
	ws      *workspace.Workspace
	store   project.Store // optional
	metrics *Metrics
	log     *slog.Logger
	app     *fiber.App
}

// New builds the fiber app around ws. store may be nil, in which case the
// project routes answer 503.
func New(ws *workspace.Workspace, store project.Store, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}
	s := &Server{
		ws:      ws,
		store:   store,
		metrics: opts.Metrics,
		log:     opts.Logger.With(slog.String("component", "server")),
	}
	ws.AddObserver(s.metrics)

	// Params and bodies end up in workspace state, which outlives the request.
	s.app = fiber.New(fiber.Config{
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		AppName:      "Métré",
		Immutable:    true,
	})
	s.app.Use(recover.New())
	s.app.Use(s.requestLogger())
	s.routes()
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.log.Info("listening", slog.String("addr", addr))
	return s.app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) routes() {
	app := s.app

	// ============================================================
	// Health and metrics
	// ============================================================

	app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})
	app.Get("/health/ready", s.ready)
	app.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))

	api := app.Group("/api/v1")

	// ============================================================
	// Plan and selection
	// ============================================================

	api.Post("/plan", s.loadPlan)
	api.Get("/plan", s.getPlan)
	api.Get("/plan/scene", s.getScene)
	api.Get("/state", s.getState)
	api.Post("/selection/click", s.click)
	api.Post("/selection/right-click", s.rightClick)
	api.Post("/selection/similar/extend", s.extendSimilar)
	api.Post("/selection/similar/exclude", s.excludeSimilar)
	api.Put("/selection/isolation", s.setIsolation)
	api.Put("/location", s.setLocation)

	// ============================================================
	// Calibration
	// ============================================================

	api.Get("/calibration", s.getCalibration)
	api.Post("/calibration/:action", s.calibrationAction)
	api.Put("/calibration/points/:index/dimensions", s.setDimension)
	api.Put("/calibration/picks/:kind", s.setPick)

	// ============================================================
	// Measurement tools
	// ============================================================

	api.Post("/tools/select", s.selectTool)
	api.Post("/tools/confirm", s.toolDecision)
	api.Post("/tools/decline", s.toolDecision)
	api.Post("/tools/cancel", s.toolDecision)
	api.Post("/tools/escape", s.toolDecision)
	api.Put("/tools/counter-mode", s.setCounterMode)
	api.Put("/tools/shape", s.setShape)
	api.Post("/tools/drag/:phase", s.drag)
	api.Post("/tools/validate", s.validateTool)

	// ============================================================
	// Work items, surfaces and views
	// ============================================================

	api.Get("/catalogue", s.getCatalogue)
	api.Get("/work-items", s.listWorkItems)
	api.Post("/work-items", s.addWorkItem)
	api.Delete("/work-items/:id", s.deleteWorkItem)
	api.Put("/work-items/:id", s.updateWorkItem)
	api.Put("/work-items/:id/coefficient", s.setCoefficient)
	api.Post("/work-items/:id/surfaces/:surface", s.linkSurface)
	api.Delete("/work-items/:id/surfaces/:surface", s.unlinkSurface)
	api.Get("/surfaces", s.listSurfaces)
	api.Put("/surfaces/:id", s.updateSurface)
	api.Post("/undo", s.undo)
	api.Post("/redo", s.redo)
	api.Get("/views/:view", s.getView)
	api.Get("/export.xlsx", s.exportExcel)

	// ============================================================
	// Projects
	// ============================================================

	api.Get("/projects", s.listProjects)
	api.Post("/projects", s.saveProject)
	api.Post("/projects/:id/open", s.openProject)
	api.Delete("/projects/:id", s.deleteProject)
}

func (s *Server) requestLogger() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		s.metrics.recordRequest(c.Method(), route, status)
		s.log.Debug("request",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
		)
		return err
	}
}

func (s *Server) ready(c fiber.Ctx) error {
	if s.store != nil {
		if _, err := s.store.List(c.Context(), "projects/"); err != nil {
			return fail(c, fiber.StatusServiceUnavailable, err.Error())
		}
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

func fail(c fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
