package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"

	"github.com/liamcoop/quorum/config"
	"github.com/liamcoop/quorum/engine"
	"github.com/liamcoop/quorum/internal/logger"
	"github.com/liamcoop/quorum/source"
)

type Server struct {
	cfg    *config.Config
	db     *sql.DB // nil when running on the in-memory store
	engine *engine.Engine
	router *chi.Mux
}

func NewServer(cfg *config.Config) (*Server, error) {
	s := &Server{cfg: cfg}

	store, err := s.buildStore()
	if err != nil {
		return nil, err
	}
	s.engine = engine.NewEngine(store)

	s.setupRoutes()
	return s, nil
}

// buildStore picks the body store: Postgres when a database URL is
// configured, else an in-memory store seeded from the config source.
func (s *Server) buildStore() (engine.BodyStore, error) {
	if s.cfg.Database.URL != "" {
		db, err := sql.Open("postgres", s.cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.Ping(); err != nil {
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		s.db = db
		logger.Info("using postgres body store")
		return engine.NewPostgresBodyStore(db), nil
	}

	store := engine.NewInMemoryBodyStore()
	if s.cfg.Source.URL == "" {
		logger.Info("no database or source configured, starting with empty in-memory store")
		return store, nil
	}

	src, err := source.New(s.cfg.Source.URL, nil)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	bodies, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load bodies from source: %w", err)
	}
	for _, b := range bodies {
		if err := store.Add(b); err != nil {
			logger.Warn("skipping duplicate body from source", "body", b.ID, "error", err.Error())
		}
	}

	logger.Info("loaded bodies from source", "url", s.cfg.Source.URL, "count", len(bodies))
	return store, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	// Health and counters
	r.Get("/api/v1/health", s.handleHealth)
	r.Get("/api/v1/metrics", s.handleMetrics)

	r.Route("/api/v1/bodies", func(r chi.Router) {
		r.Get("/", s.handleListBodies)
		r.Post("/", s.handleCreateBody)

		r.Route("/{bodyId}", func(r chi.Router) {
			r.Get("/", s.handleGetBody)
			r.Put("/", s.handleUpdateBody)
			r.Delete("/", s.handleDeleteBody)

			r.Post("/evaluate", s.handleEvaluate)
			r.Post("/coalitions", s.handleCoalitions)
		})
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err.Error())
		os.Exit(1)
	}

	server, err := NewServer(cfg)
	if err != nil {
		logger.Error("failed to initialize server", "error", err.Error())
		os.Exit(1)
	}
	defer server.Close()

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server,
	}

	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err.Error())
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err.Error())
	}
}
