package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"rssreader/internal/app"
	"rssreader/internal/config"
	"rssreader/internal/console"
	"rssreader/internal/logger"
	"rssreader/internal/render"

	"github.com/mattn/go-isatty"
	flag "github.com/spf13/pflag"
)

const defaultConfigPath = "config.json"

// options - разобранные флаги командной строки.
type options struct {
	command      string
	configPath   string
	url          string
	output       string
	legacyCell   bool
	verbose      bool
	noColor      bool
	configForced bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("rssreader", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: rssreader [convert|batch|serve] [flags]")
		fs.PrintDefaults()
	}
	fs.StringVarP(&opts.configPath, "config", "c", defaultConfigPath, "path to JSON config file")
	fs.StringVarP(&opts.url, "url", "u", "", "feed URL or file (skips the prompt)")
	fs.StringVarP(&opts.output, "output", "o", "", "output HTML file (skips the prompt)")
	fs.BoolVar(&opts.legacyCell, "legacy-fallback-cell", false, "reproduce the legacy output: unterminated fallback cell and item rows")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr in convert mode")
	fs.BoolVar(&opts.noColor, "no-color", false, "disable colored console output")
	if err := fs.Parse(args); err != nil {
		return opts, fmt.Errorf("%w: %w", errUsage, err)
	}
	opts.configForced = fs.Changed("config")
	switch rest := fs.Args(); len(rest) {
	case 0:
		opts.command = "convert"
	case 1:
		opts.command = rest[0]
	default:
		return opts, fmt.Errorf("%w: unexpected arguments %v", errUsage, rest[1:])
	}
	switch opts.command {
	case "convert", "batch", "serve":
	default:
		return opts, fmt.Errorf("%w: unknown command %q", errUsage, opts.command)
	}
	return opts, nil
}

// loadConfig читает конфигурацию. Отсутствие файла по умолчанию не ошибка.
func loadConfig(opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if errors.Is(err, config.ErrConfigNotFound) && !opts.configForced {
		cfg, err = config.New(), nil
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(".env"); err != nil {
		return nil, err
	}
	if opts.legacyCell {
		cfg.Render.LegacyFallbackCell = true
	}
	if opts.command == "convert" && !opts.verbose {
		cfg.Logger.Level = "error"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(stderr, err)
		return exitCodeFor(err)
	}
	useColor := !opts.noColor && isTerminal(stdout)
	prompter := console.NewPrompter(stdin, stdout, useColor)

	cfg, err := loadConfig(opts)
	if err != nil {
		prompter.Fail(err, "check the config file and RSSREADER_* variables")
		return exitCodeFor(err)
	}
	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		prompter.Fail(err, "")
		return exitCodeFor(err)
	}
	slog.SetDefault(appLogger)

	a, err := app.New(ctx, cfg, appLogger)
	if err != nil {
		prompter.Fail(err, "")
		return exitCodeFor(err)
	}
	defer a.Close()

	switch opts.command {
	case "batch":
		res, err := a.Batch(ctx)
		fmt.Fprintf(stdout, "Converted %d feed(s), %d failed\n", res.Successful, res.Failed)
		return exitCodeFor(err)
	case "serve":
		if err := a.Serve(ctx); err != nil {
			appLogger.Error("Server failed", slog.Any("error", err))
			return exitCodeFor(err)
		}
		return ExitSuccess
	default:
		return convert(ctx, a, prompter, opts)
	}
}

// convert - интерактивный режим: спрашивает URL, проверяет ленту и только
// для валидной RSS 2.0 спрашивает путь к файлу и пишет HTML.
func convert(ctx context.Context, a *app.App, prompter *console.Prompter, opts options) int {
	url := opts.url
	if url == "" {
		var err error
		if url, err = prompter.AskFeedURL(); err != nil {
			prompter.Fail(err, "")
			return exitCodeFor(err)
		}
	}
	root, err := a.Converter().LoadFeed(ctx, url)
	if errors.Is(err, render.ErrInvalidFeed) {
		if err := prompter.RejectFeed(); err != nil {
			return ExitIO
		}
		return ExitSuccess
	}
	if err != nil {
		prompter.Fail(err, "make sure the URL or path points to an XML document")
		return exitCodeFor(err)
	}

	output := opts.output
	if output == "" {
		if output, err = prompter.AskOutputFile(); err != nil {
			prompter.Fail(err, "")
			return exitCodeFor(err)
		}
	}
	if _, err := a.Converter().ConvertToFile(ctx, url, root, output); err != nil {
		prompter.Fail(err, "")
		return exitCodeFor(err)
	}
	return ExitSuccess
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
