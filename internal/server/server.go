// Package server is the composition root: it wires the database, queue,
// worker pool, services, and handlers together and owns their lifecycles.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/aminulbx/genboard/internal/ai"
	"github.com/aminulbx/genboard/internal/auth"
	"github.com/aminulbx/genboard/internal/handler"
	"github.com/aminulbx/genboard/internal/middleware"
	"github.com/aminulbx/genboard/internal/queue"
	sqliteRepo "github.com/aminulbx/genboard/internal/repository/sqlite"
	"github.com/aminulbx/genboard/internal/service"
	"github.com/aminulbx/genboard/internal/worker"
)

// Config holds everything the server needs to assemble itself. main fills it
// from the environment.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string

	// RedisAddr selects the queue backend: empty means the in-process
	// channel queue, anything else is a Redis address.
	RedisAddr     string
	QueueCapacity int

	WorkerCount     int
	GenerateTimeout time.Duration

	// AIBaseURL selects the generator: empty means the deterministic stub.
	AIBaseURL string
	AITimeout time.Duration
}

// Server owns the HTTP router and every resource with a lifecycle: the
// database, the job queue, and the worker pool.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	jobs   queue.Queue
	pool   *worker.Pool
}

// New assembles the full dependency graph. Nothing starts running until
// Start; New only opens the database and constructs the wiring.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = 100
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring tokens: %w", err)
	}

	var jobs queue.Queue
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			db.Close()
			return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
		}
		jobs = queue.NewRedis(client, cfg.QueueCapacity)
	} else {
		jobs = queue.NewMemory(cfg.QueueCapacity)
	}

	var generator ai.Generator = ai.Stub{}
	if cfg.AIBaseURL != "" {
		generator = ai.NewClient(cfg.AIBaseURL, cfg.AITimeout)
	}

	users := sqliteRepo.NewUserRepo(db)
	projects := sqliteRepo.NewProjectRepo(db)
	generations := sqliteRepo.NewGenerationRepo(db)
	components := sqliteRepo.NewComponentRepo(db)
	activities := sqliteRepo.NewActivityRepo(db)

	pool := worker.NewPool(jobs, generations, components, generator, worker.Config{
		Size:            cfg.WorkerCount,
		GenerateTimeout: cfg.GenerateTimeout,
	}, logger)

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		jobs:   jobs,
		pool:   pool,
	}

	activity := service.NewActivityRecorder(activities, logger)
	authSvc := service.NewAuthService(users, tokens, logger)
	projectSvc := service.NewProjectService(projects, generations, components, users, activity, logger)
	generationSvc := service.NewGenerationService(projects, generations, jobs,
		service.NewQuotaGuard(generations), activity, logger)
	statsSvc := service.NewStatsService(projects, generations, components, logger)

	authHandler := handler.NewAuthHandler(authSvc, logger)
	projectHandler := handler.NewProjectHandler(projectSvc, logger)
	generationHandler := handler.NewGenerationHandler(generationSvc, statsSvc, logger)

	s.setupRoutes(tokens, authHandler, projectHandler, generationHandler)
	return s, nil
}

func (s *Server) setupRoutes(
	tokens *auth.TokenService,
	authHandler *handler.AuthHandler,
	projectHandler *handler.ProjectHandler,
	generationHandler *handler.GenerationHandler,
) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/healthz", s.handleHealth)
		r.Post("/auth/login", authHandler.HandleLogin)

		// Everything below requires a bearer token.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/auth/me", authHandler.HandleMe)

			r.Post("/projects", projectHandler.HandleCreate)
			r.Get("/projects", projectHandler.HandleList)
			r.Get("/projects/{id}", projectHandler.HandleGet)
			r.Patch("/projects/{id}", projectHandler.HandleUpdate)
			r.Delete("/projects/{id}", projectHandler.HandleDelete)

			r.Post("/projects/{id}/generations", generationHandler.HandleGenerate)
			r.Get("/projects/{id}/generations", generationHandler.HandleList)
			r.Get("/projects/{id}/stats", generationHandler.HandleStats)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// Start runs the worker pool and the HTTP server until a signal arrives,
// then shuts down in dependency order: stop accepting requests, stop the
// workers, close the queue, close the database.
func (s *Server) Start() error {
	s.pool.Start()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.Int("workers", s.pool.Size()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		s.shutdownResources()
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			s.shutdownResources()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.shutdownResources()
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

func (s *Server) shutdownResources() {
	s.pool.Stop()
	if err := s.jobs.Close(); err != nil {
		s.logger.Warn("closing queue", slog.String("error", err.Error()))
	}
	if err := s.db.Close(); err != nil {
		s.logger.Warn("closing database", slog.String("error", err.Error()))
	}
}
