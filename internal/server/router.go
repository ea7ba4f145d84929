package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zenberry/zenchat/internal/api/handlers"
	"github.com/zenberry/zenchat/internal/api/middleware"
)

type RouterConfig struct {
	ChatHandler           *handlers.ChatHandler
	HealthHandler         *handlers.HealthHandler
	ChatRequestsPerMinute int
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 64 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", cfg.HealthHandler.Health)
	r.Post("/context/reload", cfg.HealthHandler.Reload)

	r.Group(func(r chi.Router) {
		r.Use(middleware.ChatRateLimit(cfg.ChatRequestsPerMinute))

		r.Post("/chat", cfg.ChatHandler.Ask)
		r.Post("/chat/stream", cfg.ChatHandler.Stream)
	})

	return r
}
