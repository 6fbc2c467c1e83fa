package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"rssreader/internal/adapter/parser"
	"rssreader/internal/domain"
	"rssreader/internal/render"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validFeed = `<?xml version="1.0"?>
<rss version="2.0">
<channel>
<title>Feed Title</title>
<link>http://example.com</link>
<description>Feed Desc</description>
<item><title>First</title><link>http://example.com/1</link></item>
<item><description>Second</description></item>
</channel>
</rss>`

type fakeFetcher struct {
	docs map[string]string
	err  error
}

func (f *fakeFetcher) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	doc, ok := f.docs[location]
	if !ok {
		return nil, errors.New("no such document")
	}
	return io.NopCloser(strings.NewReader(doc)), nil
}

type memSink struct {
	bytes.Buffer
	closed   bool
	closeErr error
}

func (s *memSink) Close() error {
	s.closed = true
	return s.closeErr
}

type memOpener struct {
	sinks    map[string]*memSink
	closeErr error
	openErr  error
}

func (o *memOpener) Open(path string) (io.WriteCloser, error) {
	if o.openErr != nil {
		return nil, o.openErr
	}
	if o.sinks == nil {
		o.sinks = make(map[string]*memSink)
	}
	s := &memSink{closeErr: o.closeErr}
	o.sinks[path] = s
	return s, nil
}

type memHistory struct {
	saved []domain.Conversion
	err   error
}

func (h *memHistory) SaveConversion(ctx context.Context, c domain.Conversion) error {
	h.saved = append(h.saved, c)
	return h.err
}

func newTestUseCase(docs map[string]string, opener *memOpener, history HistoryRecorder) *ConvertFeedUseCase {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewConvertFeedUseCase(&fakeFetcher{docs: docs}, parser.NewTreeParser(logger), opener, history, render.Options{}, logger)
}

func TestConvertFeedUseCase_ProcessFeed(t *testing.T) {
	opener := &memOpener{}
	history := &memHistory{}
	uc := newTestUseCase(map[string]string{"http://feed": validFeed}, opener, history)

	err := uc.ProcessFeed(context.Background(), domain.FeedJob{Name: "test", URL: "http://feed", Output: "out.html"})
	require.NoError(t, err)

	sink := opener.sinks["out.html"]
	require.NotNil(t, sink)
	assert.True(t, sink.closed)
	out := sink.String()
	assert.True(t, strings.HasPrefix(out, "<html>\n<head>\n<title>\nFeed Title\n"))
	assert.Contains(t, out, `   <td><a href="http://example.com/1">First</a></td>`)
	assert.Contains(t, out, "   <td>Second</td>")

	require.Len(t, history.saved, 1)
	assert.Equal(t, "http://feed", history.saved[0].FeedURL)
	assert.Equal(t, "out.html", history.saved[0].Output)
	assert.Equal(t, "Feed Title", history.saved[0].ChannelTitle)
	assert.Equal(t, 2, history.saved[0].Items)
}

func TestConvertFeedUseCase_InvalidFeedOpensNoSink(t *testing.T) {
	opener := &memOpener{}
	history := &memHistory{}
	doc := strings.Replace(validFeed, `version="2.0"`, `version="1.0"`, 1)
	uc := newTestUseCase(map[string]string{"http://feed": doc}, opener, history)

	err := uc.ProcessFeed(context.Background(), domain.FeedJob{Name: "test", URL: "http://feed", Output: "out.html"})

	assert.ErrorIs(t, err, render.ErrInvalidFeed)
	assert.Empty(t, opener.sinks)
	assert.Empty(t, history.saved)
}

func TestConvertFeedUseCase_LoadFeedErrors(t *testing.T) {
	uc := newTestUseCase(map[string]string{"http://bad": "<rss"}, &memOpener{}, nil)

	_, err := uc.LoadFeed(context.Background(), "http://missing")
	assert.ErrorIs(t, err, ErrFetch)

	_, err = uc.LoadFeed(context.Background(), "http://bad")
	assert.ErrorIs(t, err, ErrParse)
}

func TestConvertFeedUseCase_StructuralErrorClosesSink(t *testing.T) {
	opener := &memOpener{}
	history := &memHistory{}
	doc := strings.Replace(validFeed, "<link>http://example.com</link>", "", 1)
	uc := newTestUseCase(map[string]string{"http://feed": doc}, opener, history)

	root, err := uc.LoadFeed(context.Background(), "http://feed")
	require.NoError(t, err)
	_, err = uc.ConvertToFile(context.Background(), "http://feed", root, "out.html")

	assert.ErrorIs(t, err, render.ErrStructure)
	require.NotNil(t, opener.sinks["out.html"])
	assert.True(t, opener.sinks["out.html"].closed)
	assert.Zero(t, opener.sinks["out.html"].Len())
	assert.Empty(t, history.saved)
}

func TestConvertFeedUseCase_CloseErrorReported(t *testing.T) {
	opener := &memOpener{closeErr: errors.New("disk full")}
	uc := newTestUseCase(map[string]string{"http://feed": validFeed}, opener, nil)

	root, err := uc.LoadFeed(context.Background(), "http://feed")
	require.NoError(t, err)
	_, err = uc.ConvertToFile(context.Background(), "http://feed", root, "out.html")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestConvertFeedUseCase_OpenError(t *testing.T) {
	opener := &memOpener{openErr: errors.New("read-only file system")}
	uc := newTestUseCase(map[string]string{"http://feed": validFeed}, opener, nil)

	err := uc.ProcessFeed(context.Background(), domain.FeedJob{Name: "test", URL: "http://feed", Output: "out.html"})
	assert.ErrorContains(t, err, "read-only file system")
}

func TestConvertFeedUseCase_Render(t *testing.T) {
	history := &memHistory{err: errors.New("db down")}
	uc := newTestUseCase(map[string]string{"http://feed": validFeed}, &memOpener{}, history)

	first, stats, err := uc.Render(context.Background(), "http://feed")
	require.NoError(t, err)
	second, _, err := uc.Render(context.Background(), "http://feed")
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Items)
	assert.Equal(t, first, second)
	assert.True(t, bytes.HasSuffix(first, []byte("</html>\n")))
	assert.Len(t, history.saved, 2)
}

func TestConvertFeedUseCase_RenderRejectsLocalFiles(t *testing.T) {
	docs := map[string]string{
		"/srv/secret.xml":        validFeed,
		"file:///srv/secret.xml": validFeed,
	}
	uc := newTestUseCase(docs, &memOpener{}, nil)

	for location := range docs {
		page, _, err := uc.Render(context.Background(), location)
		assert.ErrorIs(t, err, ErrRemoteOnly, location)
		assert.Nil(t, page)
	}

	// CLI и пакетная обработка по-прежнему читают локальные файлы.
	_, err := uc.LoadFeed(context.Background(), "/srv/secret.xml")
	assert.NoError(t, err)
}

func TestRequireRemote(t *testing.T) {
	tests := []struct {
		location string
		ok       bool
	}{
		{"http://example.com/rss", true},
		{"HTTPS://example.com/rss", true},
		{"/etc/passwd", false},
		{"feeds/news.xml", false},
		{"file:///etc/passwd", false},
		{`C:\feeds\rss.xml`, false},
		{"ftp://example.com/rss", false},
		{"http:///etc/passwd", false},
		{"http://[::1", false},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			err := RequireRemote(tt.location)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrRemoteOnly)
			}
		})
	}
}

func TestHistoryUseCase_Disabled(t *testing.T) {
	_, err := NewHistoryUseCase(nil).List(context.Background(), 10)
	assert.ErrorIs(t, err, ErrHistoryDisabled)
}
