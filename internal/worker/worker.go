package worker

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"rssreader/internal/domain"

	"golang.org/x/sync/errgroup"
)

// FeedProcessor определяет интерфейс обработки одной ленты из конфигурации.
// Используется для внедрения зависимости в воркер.
type FeedProcessor interface {
	ProcessFeed(ctx context.Context, job domain.FeedJob) error
}

// Result содержит итоги одного цикла обработки.
type Result struct {
	Successful int
	Failed     int
}

// Worker периодически перерисовывает настроенные ленты в HTML-файлы.
// Ленты одного цикла обрабатываются параллельно, но не больше concurrency одновременно.
type Worker struct {
	processor   FeedProcessor
	jobs        []domain.FeedJob
	interval    time.Duration
	timeout     time.Duration
	concurrency int
	log         *slog.Logger
	cancel      context.CancelFunc
	done        chan struct{}
}

// New создает воркер. interval задает период циклов, timeout - предел времени
// на одну ленту, concurrency - число одновременно обрабатываемых лент.
func New(processor FeedProcessor, jobs []domain.FeedJob, interval, timeout time.Duration, concurrency int, log *slog.Logger) *Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Worker{
		processor:   processor,
		jobs:        jobs,
		interval:    interval,
		timeout:     timeout,
		concurrency: concurrency,
		log:         log.With(slog.String("component", "worker")),
	}
}

// Start запускает воркер в отдельной горутине. Первый цикл выполняется сразу.
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	go w.run(ctx)
}

// Stop отменяет текущий цикл и ждет завершения горутины воркера.
func (w *Worker) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)
	w.log.Info("Feed processing worker started",
		slog.String("interval", w.interval.String()),
		slog.Int("feed_count", len(w.jobs)),
	)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.RunOnce(ctx)
	for {
		select {
		case <-ticker.C:
			w.RunOnce(ctx)
		case <-ctx.Done():
			w.log.Info("Worker stopping")
			return
		}
	}
}

// RunOnce обрабатывает все ленты один раз и возвращает итоги цикла.
// Ошибка одной ленты не прерывает обработку остальных.
func (w *Worker) RunOnce(ctx context.Context) Result {
	start := time.Now()
	w.log.Info("Feed processing cycle started", slog.Int("feeds_to_process", len(w.jobs)))
	var successCount, errorCount atomic.Int64
	var g errgroup.Group
	g.SetLimit(w.concurrency)
	for _, job := range w.jobs {
		g.Go(func() error {
			if ctx.Err() != nil {
				errorCount.Add(1)
				return nil
			}
			opCtx, opCancel := context.WithTimeout(ctx, w.timeout)
			defer opCancel()
			if err := w.processor.ProcessFeed(opCtx, job); err != nil {
				errorCount.Add(1)
				w.log.Error("Feed processing failed",
					slog.String("feed", job.Name),
					slog.String("url", job.URL),
					slog.Any("error", err),
				)
				return nil
			}
			successCount.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	res := Result{Successful: int(successCount.Load()), Failed: int(errorCount.Load())}
	w.log.Info("Feed processing cycle completed",
		slog.Int("successful", res.Successful),
		slog.Int("errors", res.Failed),
		slog.Int("total", len(w.jobs)),
		slog.Duration("duration", time.Since(start)),
	)
	return res
}

// Jobs возвращает список лент, которые обрабатывает воркер.
func (w *Worker) Jobs() []domain.FeedJob { return w.jobs }

// Interval возвращает интервал обработки.
func (w *Worker) Interval() time.Duration { return w.interval }
