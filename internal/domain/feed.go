package domain

import (
	"time"

	"github.com/google/uuid"
)

// Conversion описывает одно выполненное преобразование RSS-ленты в HTML.
// Сохраняется в историю конвертаций и отдается через API.
type Conversion struct {
	ID           uuid.UUID     `json:"id"`
	FeedURL      string        `json:"feed_url"`
	Output       string        `json:"output"`
	ChannelTitle string        `json:"channel_title"`
	Items        int           `json:"items"`
	Duration     time.Duration `json:"duration"`
	CreatedAt    time.Time     `json:"created_at"`
}

// FeedJob связывает RSS-ленту из конфигурации с файлом, в который она рендерится.
type FeedJob struct {
	Name   string
	URL    string
	Output string
}
