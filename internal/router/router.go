package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"portfolio-backend/internal/handlers"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/websocket"
)

type Handlers struct {
	Content *handlers.ContentHandler
	Session *handlers.SessionHandler
	Chat    *handlers.ChatHandler
	Contact *handlers.ContactHandler
}

// Limiters are owned by the caller so it can stop their cleanup loops.
type Limiters struct {
	Chat    *middleware.RateLimiter
	Contact *middleware.RateLimiter
}

func NewLimiters() Limiters {
	return Limiters{
		Chat:    middleware.NewRateLimiter(20, time.Minute),
		Contact: middleware.NewRateLimiter(5, time.Minute),
	}
}

func (l Limiters) Stop() {
	l.Chat.Stop()
	l.Contact.Stop()
}

func New(
	sessionAuth *middleware.SessionAuth,
	h Handlers,
	limiters Limiters,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{frontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	health := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}
	r.Get("/health", health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", health)

		// ──── Content Routes (public) ────
		r.Route("/content", func(r chi.Router) {
			r.Get("/", h.Content.Get)
			r.Get("/projects/{id}", h.Content.GetProject)
		})

		// ──── Page Sessions ────
		r.Post("/sessions", h.Session.Create)

		r.Route("/session", func(r chi.Router) {
			r.Use(sessionAuth.Middleware)
			r.Get("/", h.Session.Get)
			r.Delete("/", h.Session.End)
			r.Post("/navigate", h.Session.Navigate)
			r.Post("/fragment", h.Session.Fragment)
			r.Post("/visibility", h.Session.Visibility)
			r.Put("/draft", h.Session.Draft)

			r.With(limiters.Chat.Middleware).Post("/messages", h.Chat.SendMessage)
		})

		// ──── Contact (rate limited) ────
		r.With(limiters.Contact.Middleware).Post("/contact", h.Contact.Submit)

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
