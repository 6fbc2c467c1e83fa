package sink

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// FileOpener открывает HTML-файлы для записи результата конвертации.
type FileOpener struct {
	log *slog.Logger
}

func NewFileOpener(log *slog.Logger) *FileOpener {
	return &FileOpener{log: log}
}

// Open создает (или перезаписывает) файл path и возвращает буферизованный sink.
// Недостающие каталоги создаются. Close сбрасывает буфер и закрывает файл.
func (o *FileOpener) Open(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		o.log.Error("Failed to create output file",
			slog.String("path", path),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("failed to create output file %s: %w", path, err)
	}
	o.log.Debug("Output file opened", slog.String("path", path))
	return &File{f: f, w: bufio.NewWriter(f)}, nil
}

// File - буферизованный файловый sink.
type File struct {
	f      *os.File
	w      *bufio.Writer
	closed bool
}

func (s *File) Write(p []byte) (int, error) {
	if s.closed {
		return 0, os.ErrClosed
	}
	return s.w.Write(p)
}

// Close сбрасывает буфер и закрывает файл. Повторный вызов ничего не делает.
func (s *File) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return errors.Join(s.w.Flush(), s.f.Close())
}

// Name возвращает путь к файлу.
func (s *File) Name() string { return s.f.Name() }
