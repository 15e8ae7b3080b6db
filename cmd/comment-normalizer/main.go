package main

import (
	"context"
	"flag"
	"fmt"
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

	inputs, err := dataset.CollectTables(cfg.InputPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	res, err := dataset.NormalizeComments(ctx, inputs, cfg.OutputPath, dataset.NormalizeOptions{
		TextColumn: cfg.TextColumn,
		Logger:     newLogger(cfg.Verbose),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "files_found=%d files_used=%d files_skipped=%d comments_written=%d empty_after_clean=%d out=%s\n",
		res.FilesFound, res.FilesUsed, res.FilesSkipped, res.CommentsWritten, res.EmptyAfterClean, cfg.OutputPath)
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

	fs.StringVar(&cfg.InputPath, "in", cfg.InputPath, "Directory, glob, or single file of raw per-thread comment tables (.csv/.tsv/.xlsx)")
	fs.StringVar(&cfg.OutputPath, "out", cfg.OutputPath, "Path of the combined cleaned-comments CSV")
	fs.StringVar(&cfg.TextColumn, "text-column", cfg.TextColumn, "Name of the comment text column in each raw table")
	fs.BoolVar(&cfg.Verbose, "v", false, "Log debug diagnostics to stderr")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/comment-normalizer")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/comment-normalizer -in 'data/raw_threads/reddit_*.csv' -out data/cleaned_comments.csv")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.InputPath = filepath.Clean(cfg.InputPath)
	cfg.OutputPath = filepath.Clean(cfg.OutputPath)
	return cfg, nil
}
