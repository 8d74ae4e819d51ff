// Package server exposes the question-answering engine over HTTP:
// collection and document management, ask/search endpoints, podcast
// jobs and a WebSocket chat channel.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"docqa/internal/answer"
	"docqa/internal/catalog"
	"docqa/internal/ingest"
	"docqa/internal/podcast"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// Server is the HTTP surface of the engine.
type Server struct {
	cfg        Config
	catalog    *catalog.Store
	engine     *answer.Engine
	ingestor   *ingest.Ingestor
	podcasts   *podcast.Worker
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with all dependencies. podcasts may be nil when
// podcast generation is disabled.
func New(cfg Config, store *catalog.Store, engine *answer.Engine, ingestor *ingest.Ingestor, podcasts *podcast.Worker) *Server {
	s := &Server{
		cfg:      cfg,
		catalog:  store,
		engine:   engine,
		ingestor: ingestor,
		podcasts: podcasts,
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(api chi.Router) {
		api.Post("/collections", s.handleCreateCollection)
		api.Get("/collections", s.handleListCollections)
		api.Get("/collections/{collectionID}", s.handleGetCollection)
		api.Delete("/collections/{collectionID}", s.handleDeleteCollection)

		api.Post("/documents", s.handleIngestDocument)
		api.Get("/documents", s.handleListDocuments)
		api.Get("/documents/{documentID}", s.handleGetDocument)
		api.Delete("/documents/{documentID}", s.handleDeleteDocument)
		api.Put("/documents/{documentID}/collection", s.handleAssignCollection)

		api.Post("/ask", s.handleAsk)
		api.Post("/search", s.handleSearch)

		api.Post("/documents/{documentID}/podcast", s.handleCreatePodcast)
		api.Get("/documents/{documentID}/podcast", s.handleLatestPodcast)
		api.Get("/podcasts/{jobID}", s.handleGetPodcast)
	})

	r.Get("/ws/chat", s.handleWebSocket)

	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      180 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("docqa server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
