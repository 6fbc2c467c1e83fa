package usecase

import (
	"context"
	"errors"

	"rssreader/internal/domain"
)

// ErrHistoryDisabled возвращается, если история конвертаций не настроена.
var ErrHistoryDisabled = errors.New("conversion history is disabled")

// HistoryUseCase предоставляет доступ к истории конвертаций для API.
type HistoryUseCase struct {
	storage HistoryReader
}

// NewHistoryUseCase создает UseCase истории. storage может быть nil.
func NewHistoryUseCase(s HistoryReader) *HistoryUseCase {
	return &HistoryUseCase{storage: s}
}

// List возвращает последние конвертации, не больше limit.
func (uc *HistoryUseCase) List(ctx context.Context, limit int) ([]domain.Conversion, error) {
	if uc.storage == nil {
		return nil, ErrHistoryDisabled
	}
	return uc.storage.ListConversions(ctx, limit)
}
