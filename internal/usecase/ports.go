package usecase

import (
	"context"
	"io"

	"rssreader/internal/domain"
)

// FeedFetcher определяет интерфейс загрузки RSS-документа по URL или пути.
// Возвращает io.ReadCloser который должен быть закрыт после использования.
type FeedFetcher interface {
	Fetch(ctx context.Context, location string) (io.ReadCloser, error)
}

// TreeParser определяет интерфейс разбора документа в размеченное дерево.
type TreeParser interface {
	Parse(ctx context.Context, reader io.Reader) (*domain.Node, error)
}

// SinkOpener открывает sink для записи HTML по пути.
type SinkOpener interface {
	Open(path string) (io.WriteCloser, error)
}

// HistoryRecorder сохраняет выполненные конвертации.
type HistoryRecorder interface {
	SaveConversion(ctx context.Context, c domain.Conversion) error
}

// HistoryReader читает историю конвертаций.
type HistoryReader interface {
	ListConversions(ctx context.Context, limit int) ([]domain.Conversion, error)
}
