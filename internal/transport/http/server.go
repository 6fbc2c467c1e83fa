package http

import (
	"log/slog"
	"net/http"
)

// NewServer создает роутер API с middleware для request id, логирования и CORS.
func NewServer(log *slog.Logger, h *Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/render", h.renderFeed)
	mux.HandleFunc("/api/conversions", h.listConversions)
	mux.HandleFunc("/api/health", h.healthCheck)
	var handler http.Handler = mux
	handler = loggingMiddleware(log)(handler)
	handler = requestIDMiddleware()(handler)
	handler = corsMiddleware()(handler)
	return handler
}
