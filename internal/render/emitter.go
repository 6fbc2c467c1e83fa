package render

import (
	"io"

	"rssreader/internal/domain"
)

const (
	noDate        = "No date available"
	noSource      = "No source available"
	noTitleOrDesc = "No title/description available"
)

// Options управляет деталями вывода HTML.
type Options struct {
	// LegacyFallbackCell повторяет исходный вывод программы байт в байт:
	// ячейка "No title/description available" остается без </td>,
	// строки новостей остаются без </tr>.
	LegacyFallbackCell bool
}

// Emitter построчно пишет HTML-документ в sink.
// Первая ошибка записи запоминается, последующие строки пропускаются.
type Emitter struct {
	w    io.Writer
	opts Options
	err  error
}

// NewEmitter создает Emitter поверх открытого sink. Emitter не закрывает sink.
func NewEmitter(w io.Writer, opts Options) *Emitter {
	return &Emitter{w: w, opts: opts}
}

// Err возвращает первую ошибку записи.
func (e *Emitter) Err() error { return e.err }

func (e *Emitter) println(parts ...string) {
	if e.err != nil {
		return
	}
	for _, p := range parts {
		if _, e.err = io.WriteString(e.w, p); e.err != nil {
			return
		}
	}
	_, e.err = io.WriteString(e.w, "\n")
}

// Header пишет открывающую часть документа: head с заголовком канала,
// h1 со ссылкой на сайт, описание и шапку таблицы.
// Элементы title, description и link обязательны; пустые title и description
// выводятся как пустая строка, link без текста считается ошибкой структуры.
// При ошибке структуры в sink ничего не пишется.
func (e *Emitter) Header(channel *domain.Node) error {
	title, err := requireChild(channel, "title")
	if err != nil {
		return err
	}
	desc, err := requireChild(channel, "description")
	if err != nil {
		return err
	}
	link, err := requireChild(channel, "link")
	if err != nil {
		return err
	}
	if link.NumChildren() == 0 {
		return &StructuralError{Parent: "link", Element: "text"}
	}
	titleText, descText, linkURL := title.Text(), desc.Text(), link.Text()

	e.println("<html>")
	e.println("<head>")
	e.println("<title>")
	e.println(titleText)
	e.println("</title>")
	e.println("</head>")
	e.println("<body>")
	e.println(` <h1><a href="`, linkURL, `">`, titleText, "</a></h1>")
	e.println(" <p>", descText, "</p>")
	e.println(` <table border="1">`)
	e.println("  <tr>")
	e.println("   <th>Date</th>")
	e.println("   <th>Source</th>")
	e.println("   <th>News</th>")
	e.println("  </tr>")
	return e.err
}

// Item пишет одну строку таблицы для новости: дата, источник и заголовок
// (или описание, если заголовка нет). Отсутствующие поля заменяются
// фиксированными текстами и никогда не приводят к ошибке.
func (e *Emitter) Item(item *domain.Node) error {
	e.println("  <tr>")

	if date := child(item, "pubDate"); date != nil {
		e.println("   <td>", date.Text(), "</td>")
	} else {
		e.println("   <td>", noDate, "</td>")
	}

	if source := child(item, "source"); source != nil {
		url, _ := source.Attr("url")
		e.println(`   <td><a href="`, url, `">`, source.Text(), "</a></td>")
	} else {
		e.println("   <td>", noSource, "</td>")
	}

	var linkURL string
	if link := child(item, "link"); link != nil {
		linkURL = link.Text()
	}

	text, ok := textOf(child(item, "title"))
	if !ok {
		text, ok = textOf(child(item, "description"))
	}
	switch {
	case ok && linkURL != "":
		e.println(`   <td><a href="`, linkURL, `">`, text, "</a></td>")
	case ok:
		e.println("   <td>", text, "</td>")
	case e.opts.LegacyFallbackCell:
		e.println("   <td>", noTitleOrDesc)
	default:
		e.println("   <td>", noTitleOrDesc, "</td>")
	}

	if !e.opts.LegacyFallbackCell {
		e.println("  </tr>")
	}
	return e.err
}

// Footer закрывает таблицу и документ.
func (e *Emitter) Footer() error {
	e.println(" </table>")
	e.println("</body>")
	e.println("</html>")
	return e.err
}

// textOf возвращает текст элемента и true, если элемент есть и у него есть потомки.
func textOf(n *domain.Node) (string, bool) {
	if n == nil || n.NumChildren() == 0 {
		return "", false
	}
	return n.Text(), true
}
