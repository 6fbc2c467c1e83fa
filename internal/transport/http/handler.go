package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"rssreader/internal/domain"
	"rssreader/internal/render"
	"rssreader/internal/usecase"
)

type feedRenderer interface {
	Render(ctx context.Context, url string) ([]byte, render.Stats, error)
}

type historyLister interface {
	List(ctx context.Context, limit int) ([]domain.Conversion, error)
}

type Handler struct {
	log      *slog.Logger
	renderer feedRenderer
	history  historyLister
}

func NewHandler(log *slog.Logger, renderer feedRenderer, history historyLister) *Handler {
	return &Handler{
		log:      log,
		renderer: renderer,
		history:  history,
	}
}

// renderFeed - хендлер для эндпоинта GET /api/render?url=...
func (h *Handler) renderFeed(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/renderFeed"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", getRequestID(r.Context())),
	)
	if r.Method != http.MethodGet {
		log.Warn("method not allowed")
		respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	feedURL := r.URL.Query().Get("url")
	if feedURL == "" {
		respondWithError(w, http.StatusBadRequest, "Missing 'url' parameter")
		return
	}
	if err := usecase.RequireRemote(feedURL); err != nil {
		log.Warn("Rejected feed location", slog.String("url", feedURL))
		respondWithError(w, http.StatusBadRequest, "Only http and https feed URLs are allowed")
		return
	}
	page, stats, err := h.renderer.Render(r.Context(), feedURL)
	if err != nil {
		code, msg := statusFor(err)
		log.Warn("Failed to render feed",
			slog.String("url", feedURL),
			slog.Int("status", code),
			slog.Any("error", err),
		)
		respondWithError(w, code, msg)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Feed-Items", strconv.Itoa(stats.Items))
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}

// listConversions - хендлер для эндпоинта GET /api/conversions
func (h *Handler) listConversions(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/listConversions"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", getRequestID(r.Context())),
	)
	if r.Method != http.MethodGet {
		log.Warn("method not allowed")
		respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	limitStr := r.URL.Query().Get("limit")
	limit := 20
	if limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			log.Warn("invalid limit parameter", slog.String("limit", limitStr))
			respondWithError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
	}
	conversions, err := h.history.List(r.Context(), limit)
	if errors.Is(err, usecase.ErrHistoryDisabled) {
		respondWithError(w, http.StatusNotFound, "Conversion history is disabled")
		return
	}
	if err != nil {
		log.Error("Failed to list conversions", slog.Any("error", err))
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	respondWithJSON(w, http.StatusOK, conversions)
}

// healthCheck - хендлер для проверки состояния сервиса
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, usecase.ErrRemoteOnly):
		return http.StatusBadRequest, "Only http and https feed URLs are allowed"
	case errors.Is(err, render.ErrInvalidFeed):
		return http.StatusUnprocessableEntity, "Not a valid RSS 2.0 feed"
	case errors.Is(err, render.ErrStructure):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, usecase.ErrFetch), errors.Is(err, usecase.ErrParse):
		return http.StatusBadGateway, "Feed could not be loaded"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

// Вспомогательные функции для ответов
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
