package render

import (
	"fmt"
	"io"

	"rssreader/internal/domain"
)

// Stats содержит сведения о выполненной конвертации.
type Stats struct {
	ChannelTitle string
	Items        int
}

// Validate проверяет, что root - это <rss version="2.0">.
// Отсутствующий атрибут version считается невалидной лентой.
func Validate(root *domain.Node) error {
	if root == nil || !root.IsTag() || root.Label() != "rss" {
		return ErrInvalidFeed
	}
	if version, ok := root.Attr("version"); !ok || version != "2.0" {
		return ErrInvalidFeed
	}
	return nil
}

// Convert превращает дерево RSS 2.0 в HTML-таблицу и пишет её в w.
// Сначала проверяет корень; при невалидной ленте в w ничего не пишется.
// Каналом считается первый потомок корня. Затем выводятся шапка, по строке
// на каждый <item> канала в порядке документа и завершающие теги.
// Остальные потомки канала пропускаются. w не закрывается.
func Convert(root *domain.Node, w io.Writer, opts Options) (Stats, error) {
	if err := Validate(root); err != nil {
		return Stats{}, err
	}
	if root.NumChildren() == 0 {
		return Stats{}, &StructuralError{Parent: "rss", Element: "channel"}
	}
	channel := root.Child(0)
	if !channel.IsTag() || channel.Label() != "channel" {
		return Stats{}, &StructuralError{Parent: "rss", Element: "channel"}
	}

	e := NewEmitter(w, opts)
	if err := e.Header(channel); err != nil {
		return Stats{}, wrapWrite(err)
	}
	stats := Stats{}
	if title := child(channel, "title"); title != nil {
		stats.ChannelTitle = title.Text()
	}
	for i := 0; i < channel.NumChildren(); i++ {
		item := channel.Child(i)
		if !item.IsTag() || item.Label() != "item" {
			continue
		}
		if err := e.Item(item); err != nil {
			return stats, wrapWrite(err)
		}
		stats.Items++
	}
	if err := e.Footer(); err != nil {
		return stats, wrapWrite(err)
	}
	return stats, nil
}

// wrapWrite оставляет ошибки структуры как есть, а ошибки sink помечает как ошибки записи.
func wrapWrite(err error) error {
	if _, ok := err.(*StructuralError); ok {
		return err
	}
	return fmt.Errorf("failed to write html: %w", err)
}
