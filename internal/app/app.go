package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"rssreader/internal/adapter/fetcher"
	"rssreader/internal/adapter/parser"
	"rssreader/internal/adapter/sink"
	"rssreader/internal/config"
	"rssreader/internal/domain"
	"rssreader/internal/migrations"
	"rssreader/internal/render"
	server "rssreader/internal/transport/http"
	"rssreader/internal/usecase"
	"rssreader/internal/worker"
	"rssreader/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// ErrBatchFailed возвращается, если хотя бы одна лента пакета не обработана.
var ErrBatchFailed = errors.New("some feeds failed to convert")

// App связывает компоненты RSS Reader: конвертер, историю конвертаций,
// воркер пакетной обработки и HTTP API.
type App struct {
	config    *config.Config
	logger    *slog.Logger
	converter *usecase.ConvertFeedUseCase
	server    *http.Server
	worker    *worker.Worker
	store     storage.ConversionStore
}

// New создает приложение из конфигурации. Если история включена, подключается
// к PostgreSQL и применяет миграции. Возвращает ошибку при сбое любого шага.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	var (
		store    storage.ConversionStore
		recorder usecase.HistoryRecorder
		reader   usecase.HistoryReader
	)
	if cfg.Database.Enabled {
		pg, err := openStore(ctx, cfg.Database, log)
		if err != nil {
			return nil, err
		}
		store, recorder, reader = pg, pg, pg
	}

	converter := usecase.NewConvertFeedUseCase(
		fetcher.New(cfg.Fetcher, log),
		parser.NewTreeParser(log),
		sink.NewFileOpener(log),
		recorder,
		render.Options{LegacyFallbackCell: cfg.Render.LegacyFallbackCell},
		log,
	)
	history := usecase.NewHistoryUseCase(reader)

	jobs := make([]domain.FeedJob, 0, len(cfg.App.Feeds))
	for _, f := range cfg.App.Feeds {
		jobs = append(jobs, domain.FeedJob{Name: f.Name, URL: f.URL, Output: f.Output})
	}
	w := worker.New(converter, jobs, cfg.App.Interval(), cfg.App.Timeout(), cfg.App.Concurrency, log)

	handler := server.NewHandler(log, converter, history)
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           server.NewServer(log, handler),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return &App{
		config:    cfg,
		logger:    log,
		converter: converter,
		server:    srv,
		worker:    w,
		store:     store,
	}, nil
}

func openStore(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*storage.PostgresConversionDB, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	if err := migrations.Apply(ctx, log, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrations failed: %w", err)
	}
	return storage.NewPostgresConversionDB(pool, log), nil
}

// Converter возвращает сценарий конвертации для интерактивного режима.
func (a *App) Converter() *usecase.ConvertFeedUseCase { return a.converter }

// Batch один раз обрабатывает все ленты из конфигурации.
func (a *App) Batch(ctx context.Context) (worker.Result, error) {
	res := a.worker.RunOnce(ctx)
	if res.Failed > 0 {
		return res, fmt.Errorf("%w: %d of %d", ErrBatchFailed, res.Failed, res.Failed+res.Successful)
	}
	return res, nil
}

// Serve запускает HTTP API и периодическую обработку лент и блокируется
// до отмены ctx или ошибки сервера, после чего выполняет graceful shutdown.
func (a *App) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	a.logger.Info("HTTP server ready",
		slog.String("component", "server"),
		slog.String("address", listener.Addr().String()),
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	if len(a.worker.Jobs()) > 0 {
		a.worker.Start(gCtx)
	}
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("Starting graceful shutdown", slog.String("component", "app"))
		a.worker.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})
	err = g.Wait()
	a.logger.Info("Application stopped", slog.String("component", "app"))
	return err
}

// Close освобождает ресурсы приложения.
func (a *App) Close() {
	if a.store != nil {
		a.store.Close()
	}
}
