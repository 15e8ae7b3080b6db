package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/theimaginaryfoundation/reddit-absa/dataset"
)

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	splitter, err := dataset.NewPunktSplitter()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	opts := dataset.SegmentOptions{
		TextColumn: cfg.TextColumn,
		MinWords:   cfg.MinWords,
		Logger:     newLogger(cfg.Verbose),
	}
	stopProgress := func() {}
	if cfg.Progress {
		bar := newProgress(os.Stderr)
		bar.start()
		opts.OnProgress = bar.update
		stopProgress = bar.stop
	}

	res, err := dataset.SegmentComments(ctx, cfg.InputPath, cfg.OutputPath, splitter, opts)
	stopProgress()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	writeSummary(os.Stdout, cfg, res)
}

func writeSummary(w io.Writer, cfg Config, res dataset.SegmentResult) {
	fmt.Fprintf(w, "comments_read=%d sentences_written=%d sentences_too_short=%d out=%s\n",
		res.CommentsRead, res.SentencesWritten, res.SentencesTooShort, cfg.OutputPath)
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.InputPath, "in", cfg.InputPath, "Cleaned comments table (output of comment-normalizer)")
	fs.StringVar(&cfg.OutputPath, "out", cfg.OutputPath, "Path of the sentence CSV to write")
	fs.StringVar(&cfg.TextColumn, "text-column", cfg.TextColumn, "Column holding the cleaned comment text")
	fs.IntVar(&cfg.MinWords, "min-words", cfg.MinWords, "Drop sentences with this many words or fewer")
	fs.BoolVar(&cfg.Progress, "progress", false, "Render a progress bar on stderr")
	fs.BoolVar(&cfg.Verbose, "v", false, "Log debug diagnostics to stderr")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExample:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/sentence-splitter -progress")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.InputPath = filepath.Clean(cfg.InputPath)
	cfg.OutputPath = filepath.Clean(cfg.OutputPath)
	return cfg, nil
}
