package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Routes builds the HTTP surface of the session host
func (h *Handler) Routes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", h.HandleCreateSession)
		r.Get("/", h.HandleListSessions)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.HandleGetSession)
			r.Delete("/", h.HandleDeleteSession)
			r.Post("/files/{role}", h.HandleStage)
			r.Get("/files/{role}/preview", h.HandlePreview)
			r.Post("/submit", h.HandleSubmit)
			r.Post("/reset", h.HandleReset)
			r.Get("/summary", h.HandleSummary)
			r.Get("/artifacts/{artifact}", h.HandleArtifact)
			r.Get("/view", h.HandleGetView)
			r.Put("/view/tab", h.HandleSetTab)
			r.Put("/view/slider", h.HandleSlider)
		})
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
