package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"rssreader/internal/domain"
	"rssreader/internal/render"

	"github.com/google/uuid"
)

// ErrFetch и ErrParse помечают ошибки получения и разбора документа,
// чтобы внешние слои могли отличать их от ошибок ленты.
var (
	ErrFetch = errors.New("feed fetch failed")
	ErrParse = errors.New("feed parse failed")
)

// ErrRemoteOnly возвращается, когда по сети запрошена лента не по http(s):
// локальные файлы доступны только из CLI и пакетной обработки.
var ErrRemoteOnly = errors.New("only http and https feeds are allowed")

// RequireRemote проверяет, что location - абсолютный http(s) URL с хостом.
func RequireRemote(location string) error {
	u, err := url.Parse(location)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRemoteOnly, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("%w: %q has no host", ErrRemoteOnly, location)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrRemoteOnly, location)
	}
}

// ConvertFeedUseCase реализует сценарии конвертации RSS-ленты в HTML.
// Координирует загрузку, разбор, проверку, рендер в sink и запись истории.
type ConvertFeedUseCase struct {
	fetcher FeedFetcher
	parser  TreeParser
	opener  SinkOpener
	history HistoryRecorder
	opts    render.Options
	log     *slog.Logger
	now     func() time.Time
}

// NewConvertFeedUseCase создает новый экземпляр UseCase для конвертации лент.
// history может быть nil - тогда история не ведется.
func NewConvertFeedUseCase(
	fetcher FeedFetcher,
	parser TreeParser,
	opener SinkOpener,
	history HistoryRecorder,
	opts render.Options,
	log *slog.Logger,
) *ConvertFeedUseCase {
	return &ConvertFeedUseCase{
		fetcher: fetcher,
		parser:  parser,
		opener:  opener,
		history: history,
		opts:    opts,
		log:     log.With(slog.String("component", "converter")),
		now:     time.Now,
	}
}

// LoadFeed загружает и разбирает документ, затем проверяет, что это RSS 2.0.
// Для невалидной ленты возвращает ошибку, совпадающую с render.ErrInvalidFeed.
func (uc *ConvertFeedUseCase) LoadFeed(ctx context.Context, url string) (*domain.Node, error) {
	log := uc.log.With(slog.String("url", url))
	reader, err := uc.fetcher.Fetch(ctx, url)
	if err != nil {
		log.Error("Feed fetch failed",
			slog.String("stage", "fetch"),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer reader.Close()

	root, err := uc.parser.Parse(ctx, reader)
	if err != nil {
		log.Error("Feed parsing failed",
			slog.String("stage", "parse"),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if err := render.Validate(root); err != nil {
		log.Warn("Feed rejected",
			slog.String("stage", "validate"),
			slog.String("root", root.Label()),
		)
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	log.Debug("Feed loaded", slog.Int("channels", root.NumChildren()))
	return root, nil
}

// ConvertToFile рендерит уже проверенное дерево в файл output.
// Sink открывается здесь и закрывается на любом пути выхода; ошибка закрытия
// возвращается, если конвертация прошла успешно.
func (uc *ConvertFeedUseCase) ConvertToFile(ctx context.Context, url string, root *domain.Node, output string) (stats render.Stats, err error) {
	start := uc.now()
	log := uc.log.With(slog.String("url", url), slog.String("output", output))

	sink, err := uc.opener.Open(output)
	if err != nil {
		return render.Stats{}, err
	}
	defer func() {
		if closeErr := sink.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", output, closeErr)
		}
		if err != nil {
			log.Error("Conversion failed", slog.Any("error", err))
			return
		}
		uc.record(ctx, url, output, stats, start)
	}()

	return render.Convert(root, sink, uc.opts)
}

// Render выполняет полный цикл в памяти и возвращает HTML-документ.
// Принимает только http(s) URL, см. RequireRemote.
func (uc *ConvertFeedUseCase) Render(ctx context.Context, url string) ([]byte, render.Stats, error) {
	if err := RequireRemote(url); err != nil {
		uc.log.Warn("Rejected non-remote feed", slog.String("url", url))
		return nil, render.Stats{}, err
	}
	start := uc.now()
	root, err := uc.LoadFeed(ctx, url)
	if err != nil {
		return nil, render.Stats{}, err
	}
	var buf bytes.Buffer
	stats, err := render.Convert(root, &buf, uc.opts)
	if err != nil {
		uc.log.Error("Conversion failed", slog.String("url", url), slog.Any("error", err))
		return nil, stats, err
	}
	uc.record(ctx, url, "", stats, start)
	return buf.Bytes(), stats, nil
}

// ProcessFeed выполняет полный цикл для ленты из конфигурации: загрузка, проверка, запись в файл.
func (uc *ConvertFeedUseCase) ProcessFeed(ctx context.Context, job domain.FeedJob) error {
	root, err := uc.LoadFeed(ctx, job.URL)
	if err != nil {
		return fmt.Errorf("feed %s: %w", job.Name, err)
	}
	if _, err := uc.ConvertToFile(ctx, job.URL, root, job.Output); err != nil {
		return fmt.Errorf("feed %s: %w", job.Name, err)
	}
	return nil
}

// record логирует результат и сохраняет его в историю. Ошибка сохранения
// истории не считается ошибкой конвертации.
func (uc *ConvertFeedUseCase) record(ctx context.Context, url, output string, stats render.Stats, start time.Time) {
	duration := uc.now().Sub(start)
	uc.log.Info("Feed converted",
		slog.String("url", url),
		slog.String("output", output),
		slog.Int("items", stats.Items),
		slog.Duration("duration", duration),
	)
	if uc.history == nil {
		return
	}
	c := domain.Conversion{
		ID:           uuid.New(),
		FeedURL:      url,
		Output:       output,
		ChannelTitle: stats.ChannelTitle,
		Items:        stats.Items,
		Duration:     duration,
		CreatedAt:    start.UTC(),
	}
	if err := uc.history.SaveConversion(ctx, c); err != nil {
		uc.log.Warn("Failed to record conversion", slog.Any("error", err))
	}
}
