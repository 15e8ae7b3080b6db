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
	log := newLogger(cfg.Verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var total dataset.MAMSResult
	for _, c := range cfg.conversions() {
		res, err := dataset.ConvertMAMS(ctx, c.In, c.Out, dataset.MAMSOptions{Logger: log})
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "progress mams-converter: %s -> %s written=%d skipped_conflict=%d\n",
			c.In, c.Out, res.Written, res.SkippedConflict)

		total.Sentences += res.Sentences
		total.AspectTerms += res.AspectTerms
		total.SkippedConflict += res.SkippedConflict
		total.SkippedPolarity += res.SkippedPolarity
		total.SkippedBadOffsets += res.SkippedBadOffsets
		total.Written += res.Written
	}

	fmt.Fprintf(os.Stdout, "files=%d sentences=%d aspect_terms=%d written=%d skipped_conflict=%d skipped_polarity=%d skipped_bad_offsets=%d\n",
		len(cfg.conversions()), total.Sentences, total.AspectTerms, total.Written, total.SkippedConflict, total.SkippedPolarity, total.SkippedBadOffsets)
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

	fs.StringVar(&cfg.Dir, "dir", cfg.Dir, "Directory holding MAMS_<split>.xml files; outputs are written next to them")
	fs.StringVar(&cfg.Splits, "splits", cfg.Splits, "Comma-separated split names to convert")
	fs.StringVar(&cfg.InputPath, "in", "", "Convert a single MAMS XML file instead of -dir/-splits")
	fs.StringVar(&cfg.OutputPath, "out", "", "Output for -in (default: input with a .raw extension)")
	fs.BoolVar(&cfg.Verbose, "v", false, "Log debug diagnostics to stderr")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/mams-converter -dir data/mams -splits train,test,val")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/mams-converter -in MAMS_train.xml -out MAMS_train.raw")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Dir = filepath.Clean(cfg.Dir)
	if cfg.InputPath != "" {
		cfg.InputPath = filepath.Clean(cfg.InputPath)
	}
	if cfg.OutputPath != "" {
		cfg.OutputPath = filepath.Clean(cfg.OutputPath)
	}
	return cfg, nil
}
