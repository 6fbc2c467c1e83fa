package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"rssreader/internal/config"
)

// ErrUnexpectedStatus возвращается, если сервер ответил не 200 OK.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// Fetcher загружает RSS-документ по URL или пути к файлу.
// http и https загружаются HTTP-клиентом, file:// и строки без схемы
// открываются как локальные файлы.
type Fetcher struct {
	client    *http.Client
	userAgent string
	log       *slog.Logger
}

// New создает Fetcher с таймаутом и User-Agent из конфигурации.
func New(cfg config.FetcherConfig, log *slog.Logger) *Fetcher {
	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil || timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: cfg.UserAgent,
		log:       log,
	}
}

// Fetch возвращает тело документа как io.ReadCloser, которое должно быть закрыто после использования.
// Принимает контекст для контроля времени выполнения и отмены операции.
func (f *Fetcher) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || isDriveLetter(u.Scheme) {
		return f.open(location)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return f.get(ctx, location)
	case "file":
		return f.open(u.Path)
	default:
		return nil, fmt.Errorf("unsupported scheme %q in %s", u.Scheme, location)
	}
}

func (f *Fetcher) open(path string) (io.ReadCloser, error) {
	log := f.log.With(slog.String("path", path))
	file, err := os.Open(path)
	if err != nil {
		log.Error("Failed to open feed file", slog.Any("error", err))
		return nil, fmt.Errorf("failed to open feed file %s: %w", path, err)
	}
	log.Info("Opened feed file")
	return file, nil
}

func (f *Fetcher) get(ctx context.Context, url string) (io.ReadCloser, error) {
	log := f.log.With(slog.String("url", url))
	log.Info("Fetching URL")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Error("Failed to create HTTP request", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create request for url %s: %w", url, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		log.Error(
			"HTTP request failed",
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("failed to fetch url %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		log.Error(
			"Unexpected status code",
			slog.Int("status_code", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: %d for url %s", ErrUnexpectedStatus, resp.StatusCode, url)
	}
	log.Info("Successfully fetched URL")
	return resp.Body, nil
}

// isDriveLetter распознает пути Windows вида C:\feeds\rss.xml.
func isDriveLetter(scheme string) bool {
	return len(scheme) == 1
}
