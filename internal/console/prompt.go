package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// ErrNoInput возвращается, если ввод закончился раньше, чем был получен ответ.
var ErrNoInput = errors.New("no input")

const (
	urlPrompt    = "Please enter a valid URL of a RSS 2.0 feed: "
	outputPrompt = "Please enter a HTML file to serve as output: "
)

// Prompter задает вопросы в консоли и читает ответы построчно.
type Prompter struct {
	in    *bufio.Reader
	out   io.Writer
	color bool
}

// NewPrompter создает Prompter. При color=false вывод не раскрашивается.
func NewPrompter(in io.Reader, out io.Writer, color bool) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, color: color}
}

func (p *Prompter) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if p.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// Ask печатает prompt и возвращает следующую строку ввода без пробелов по краям.
func (p *Prompter) Ask(prompt string) (string, error) {
	if _, err := p.paint(color.Bold).Fprint(p.out, prompt); err != nil {
		return "", err
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// AskFeedURL спрашивает URL ленты.
func (p *Prompter) AskFeedURL() (string, error) { return p.Ask(urlPrompt) }

// AskOutputFile спрашивает путь к HTML-файлу.
func (p *Prompter) AskOutputFile() (string, error) { return p.Ask(outputPrompt) }

// RejectFeed печатает сообщение о том, что документ не является лентой RSS 2.0.
func (p *Prompter) RejectFeed() error {
	c := p.paint(color.FgRed)
	if _, err := c.Fprintln(p.out, "Your file was not found to be a valid RSS 2.0 feed."); err != nil {
		return err
	}
	_, err := c.Fprintln(p.out, "Please restart the program and try again.")
	return err
}

// Fail печатает ошибку с подсказкой.
func (p *Prompter) Fail(err error, hint string) {
	p.paint(color.FgRed, color.Bold).Fprintf(p.out, "Error: %v\n", err)
	if hint != "" {
		p.paint(color.FgCyan).Fprintf(p.out, "  Suggestion: %s\n", hint)
	}
}
