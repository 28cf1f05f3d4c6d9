// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"mempin/internal/adapter/device"
	"mempin/internal/config"
	"mempin/internal/server/handlers"
	"mempin/internal/service/draft"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server over the draft session registry.
func NewServer(
	cfg config.ServerConfig,
	registry *draft.Registry,
	spool *device.Spool,
	camera *device.StagedCamera,
	audio *device.StagedAudioDevice,
	log *logrus.Entry,
) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Create handler dependencies
	draftHandler := handlers.NewDraftHandler(registry)
	mediaHandler := handlers.NewMediaHandler(registry, spool, camera, audio)

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		r.Route("/v1", func(r chi.Router) {
			r.Route("/drafts", func(r chi.Router) {
				r.Post("/", draftHandler.CreateDraft)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", draftHandler.GetDraft)
					r.Patch("/", draftHandler.UpdateDraft)
					r.Delete("/", draftHandler.CancelDraft)
					r.Post("/confirm", draftHandler.Confirm)

					r.Route("/location", func(r chi.Router) {
						r.Post("/query", draftHandler.SetLocationQuery)
						r.Post("/coordinate", draftHandler.SetCoordinate)
						r.Post("/drag", draftHandler.DragPin)
						r.Post("/reverse", draftHandler.ReverseGeocode)
					})

					r.Route("/visibility", func(r chi.Router) {
						r.Post("/{option}", draftHandler.SelectVisibility)
						r.Delete("/{option}", draftHandler.DeselectVisibility)
					})
					r.Put("/circles", draftHandler.SetSocialCircles)

					r.Route("/media", func(r chi.Router) {
						r.Post("/photos", mediaHandler.AddPhoto)
						r.Post("/videos", mediaHandler.AddVideo)
						r.Delete("/{kind}/{index}", mediaHandler.RemoveItem)
					})

					r.Route("/audio", func(r chi.Router) {
						r.Post("/", mediaHandler.RecordAudio)
						r.Post("/play", mediaHandler.PlayAudio)
						r.Post("/stop", mediaHandler.StopAudio)
						r.Delete("/", mediaHandler.RemoveAudio)
					})
				})
			})
		})
	})

	// WebSocket endpoint for upload progress
	router.Get("/ws/drafts/{id}/progress", handlers.ProgressWebSocketHandler(registry, log))

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
