package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/askpdf-dev/askpdf/internal/api/handlers"
	"github.com/askpdf-dev/askpdf/internal/api/middlewares"
	"github.com/askpdf-dev/askpdf/internal/config"
	"github.com/askpdf-dev/askpdf/internal/logger"
	"github.com/askpdf-dev/askpdf/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, users *services.UserService, docs *services.DocumentService, search *services.SearchService, chat *services.ChatService) *Server {
	authHandler := handlers.NewAuthHandler(users, cfg)
	docHandler := handlers.NewDocumentHandler(docs, cfg)
	searchHandler := handlers.NewSearchHandler(docs, search)
	chatHandler := handlers.NewChatHandler(chat)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/signup", authHandler.Signup)
		api.Post("/login", authHandler.Login)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(middlewares.JWT(cfg.JWTSecret))

			protected.Post("/documents/upload", docHandler.Upload)
			protected.Get("/documents", docHandler.List)
			protected.Get("/documents/{documentID}/status", docHandler.Status)
			protected.Post("/documents/{documentID}/reingest", docHandler.Reingest)
			protected.Delete("/documents/{documentID}", docHandler.Delete)

			protected.Post("/search", searchHandler.Search)

			protected.Post("/chat/query", chatHandler.Query)
			protected.Get("/chat/history", chatHandler.History)
			protected.Delete("/chat/history", chatHandler.ClearHistory)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	logger.Infof("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
