package parser

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"rssreader/internal/domain"

	"golang.org/x/net/html/charset"
)

// ErrEmptyDocument возвращается, если в документе нет ни одного элемента.
var ErrEmptyDocument = errors.New("document has no root element")

// pending - узел, который еще строится: потомки и текст накапливаются
// до закрывающего тега, после чего узел фиксируется в domain.Node.
type pending struct {
	label    string
	attrs    map[string]string
	children []*domain.Node
	text     strings.Builder
}

func (p *pending) flushText() {
	text := strings.TrimSpace(p.text.String())
	p.text.Reset()
	if text != "" {
		p.children = append(p.children, domain.NewText(text))
	}
}

type TreeParser struct {
	log *slog.Logger
}

func NewTreeParser(log *slog.Logger) *TreeParser {
	return &TreeParser{
		log: log,
	}
}

// Parse читает XML-документ и строит размеченное дерево.
// Метки тегов и атрибутов сохраняют префикс пространства имен (atom:link),
// чтобы элементы из других пространств не совпадали с элементами RSS.
// Текст между тегами обрезается по краям, пробельный текст отбрасывается.
func (p *TreeParser) Parse(ctx context.Context, reader io.Reader) (*domain.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	decoder := xml.NewDecoder(reader)
	decoder.CharsetReader = charset.NewReaderLabel
	decoder.Entity = xml.HTMLEntity
	root, err := buildTree(decoder)
	if err != nil {
		p.log.Error(
			"Error decoding XML",
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("failed to decode XML: %w", err)
	}
	p.log.Debug("XML tree built",
		slog.String("root", root.Label()),
		slog.Int("children", root.NumChildren()),
	)
	return root, nil
}

func buildTree(decoder *xml.Decoder) (*domain.Node, error) {
	var stack []*pending
	for {
		tok, err := decoder.RawToken()
		if errors.Is(err, io.EOF) {
			if len(stack) > 0 {
				return nil, fmt.Errorf("unexpected EOF: <%s> is not closed", stack[len(stack)-1].label)
			}
			return nil, ErrEmptyDocument
		}
		if err != nil {
			return nil, err
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			if len(stack) > 0 {
				stack[len(stack)-1].flushText()
			}
			node := &pending{
				label: qualified(tok.Name),
				attrs: make(map[string]string, len(tok.Attr)),
			}
			for _, a := range tok.Attr {
				node.attrs[qualified(a.Name)] = a.Value
			}
			stack = append(stack, node)
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(tok)
			}
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("unexpected end element </%s>", qualified(tok.Name))
			}
			top := stack[len(stack)-1]
			if name := qualified(tok.Name); name != top.label {
				return nil, fmt.Errorf("element <%s> closed by </%s>", top.label, name)
			}
			top.flushText()
			node := domain.NewTag(top.label, top.attrs, top.children...)
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return node, nil
			}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, node)
		}
	}
}

func qualified(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}
