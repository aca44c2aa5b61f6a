package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"gemini-chat/internal/handlers"
	"gemini-chat/internal/middleware"
	"gemini-chat/internal/websocket"
)

func New(
	sessions *middleware.SessionCookie,
	chatHandler *handlers.ChatHandler,
	wsHub *websocket.Hub,
	chatLimiter *middleware.RateLimiter,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Group(func(r chi.Router) {
		r.Use(sessions.Middleware)

		// ──── Browser UI ────
		r.Get("/", chatHandler.Index)
		r.With(chatLimiter.Middleware).Post("/chat", chatHandler.Submit)
		r.Post("/chat/clear", chatHandler.ClearForm)

		// ──── JSON API ────
		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/messages", chatHandler.ListMessages)
			r.With(chatLimiter.Middleware).Post("/messages", chatHandler.PostMessage)
			r.Delete("/messages", chatHandler.ClearMessages)

			// ──── WebSocket ────
			r.Get("/ws", wsHub.HandleWebSocket)
		})
	})

	return r
}
