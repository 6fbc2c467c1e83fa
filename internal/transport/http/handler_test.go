package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"rssreader/internal/domain"
	"rssreader/internal/render"
	"rssreader/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	page []byte
	err  error
	urls []string
}

func (f *fakeRenderer) Render(ctx context.Context, url string) ([]byte, render.Stats, error) {
	f.urls = append(f.urls, url)
	return f.page, render.Stats{Items: 2}, f.err
}

type fakeHistory struct {
	items []domain.Conversion
	err   error
	limit int
}

func (f *fakeHistory) List(ctx context.Context, limit int) ([]domain.Conversion, error) {
	f.limit = limit
	return f.items, f.err
}

func newTestServer(r *fakeRenderer, h *fakeHistory) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(logger, NewHandler(logger, r, h))
}

func TestRenderFeed_Success(t *testing.T) {
	r := &fakeRenderer{page: []byte("<html>\n</html>\n")}
	srv := newTestServer(r, &fakeHistory{})

	req := httptest.NewRequest(http.MethodGet, "/api/render?url=http%3A%2F%2Fexample.com%2Frss", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "2", rec.Header().Get("X-Feed-Items"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "<html>\n</html>\n", rec.Body.String())
	assert.Equal(t, []string{"http://example.com/rss"}, r.urls)
}

func TestRenderFeed_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"invalid feed", fmt.Errorf("http://x: %w", render.ErrInvalidFeed), http.StatusUnprocessableEntity},
		{"structure", &render.StructuralError{Parent: "channel", Element: "link"}, http.StatusUnprocessableEntity},
		{"fetch", fmt.Errorf("%w: timeout", usecase.ErrFetch), http.StatusBadGateway},
		{"parse", fmt.Errorf("%w: bad xml", usecase.ErrParse), http.StatusBadGateway},
		{"other", errors.New("unexpected"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(&fakeRenderer{err: tt.err}, &fakeHistory{})
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/render?url=http://x", nil))

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestRenderFeed_BadRequests(t *testing.T) {
	srv := newTestServer(&fakeRenderer{}, &fakeHistory{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/render", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/render?url=http://x", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRenderFeed_RejectsLocalLocations(t *testing.T) {
	locations := []string{
		"/tmp/secret.xml",
		"secret.xml",
		"file:///tmp/secret.xml",
		"http:///tmp/secret.xml",
	}
	for _, location := range locations {
		t.Run(location, func(t *testing.T) {
			r := &fakeRenderer{page: []byte("<html>\n</html>\n")}
			srv := newTestServer(r, &fakeHistory{})

			req := httptest.NewRequest(http.MethodGet, "/api/render?url="+url.QueryEscape(location), nil)
			req.Header.Set("Origin", "http://other.example")
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotContains(t, rec.Body.String(), "<html>")
			assert.Empty(t, r.urls)
		})
	}
}

func TestRenderFeed_RemoteOnlyErrorFromRenderer(t *testing.T) {
	err := fmt.Errorf("%w: %q", usecase.ErrRemoteOnly, "file:///x")
	srv := newTestServer(&fakeRenderer{err: err}, &fakeHistory{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/render?url=http://x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListConversions(t *testing.T) {
	h := &fakeHistory{items: []domain.Conversion{{FeedURL: "http://x", Items: 3}}}
	srv := newTestServer(&fakeRenderer{}, h)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/conversions?limit=5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []domain.Conversion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "http://x", got[0].FeedURL)
	assert.Equal(t, 5, h.limit)
}

func TestListConversions_Errors(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(&fakeRenderer{}, &fakeHistory{}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/conversions?limit=-1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	newTestServer(&fakeRenderer{}, &fakeHistory{err: usecase.ErrHistoryDisabled}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/conversions", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	newTestServer(&fakeRenderer{}, &fakeHistory{err: errors.New("db down")}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/conversions", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthAndCORS(t *testing.T) {
	srv := newTestServer(&fakeRenderer{}, &fakeHistory{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-1")
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "req-1", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/render", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
