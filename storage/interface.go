package storage

import (
	"context"

	"rssreader/internal/domain"
)

// ConversionStore определяет интерфейс истории конвертаций.
// Объединяет методы сохранения и чтения записей, а также закрытия соединения.
type ConversionStore interface {
	SaveConversion(ctx context.Context, c domain.Conversion) error
	ListConversions(ctx context.Context, limit int) ([]domain.Conversion, error)
	Close()
}
