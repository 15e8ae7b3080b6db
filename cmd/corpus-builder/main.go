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
	"github.com/theimaginaryfoundation/reddit-absa/dataset/fileutils"
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

	resolved := resolvedInput(cfg.ResolvedPath, log)
	res, err := dataset.BuildCorpus(ctx, cfg.AgreementsPath, resolved, cfg.TrainPath, cfg.TestPath, dataset.CorpusOptions{
		Seed:        cfg.Seed,
		TrainRatio:  cfg.TrainRatio,
		UnifiedPath: cfg.UnifiedPath,
		Logger:      log,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "agreed=%d resolved=%d total=%d seed=%d split=%d train_written=%d test_written=%d dropped_polarity=%d substitution_miss=%d train=%s test=%s\n",
		res.Agreed, res.Resolved, res.Total, res.Seed, res.Split, res.Train.Written, res.Test.Written, res.Dropped(),
		res.Train.SubstitutionMiss+res.Test.SubstitutionMiss, cfg.TrainPath, cfg.TestPath)
}

// resolvedInput returns path when the adjudicated file exists. With no disagreements there is
// nothing to adjudicate, and the corpus is built from the agreed rows alone.
func resolvedInput(path string, log *slog.Logger) string {
	if path == "" {
		return ""
	}
	if !fileutils.FileExists(path) {
		log.Info("no adjudicated disagreements; using agreed rows only", "resolved", path)
		return ""
	}
	return path
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

	fs.StringVar(&cfg.AgreementsPath, "agreements", cfg.AgreementsPath, "Agreed rows (output of annotator-agreement)")
	fs.StringVar(&cfg.ResolvedPath, "resolved", cfg.ResolvedPath, "Disagreement table with final_polarity filled in by hand (skipped if absent)")
	fs.StringVar(&cfg.TrainPath, "train", cfg.TrainPath, "Where to write the training split")
	fs.StringVar(&cfg.TestPath, "test", cfg.TestPath, "Where to write the test split")
	fs.StringVar(&cfg.UnifiedPath, "unified", "", "Optionally also write the merged corpus as CSV")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Shuffle seed for the train/test split")
	fs.Float64Var(&cfg.TrainRatio, "train-ratio", cfg.TrainRatio, "Fraction of rows assigned to the training split")
	fs.BoolVar(&cfg.Verbose, "v", false, "Log debug diagnostics (per-row substitution misses) to stderr")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/corpus-builder")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/corpus-builder -seed 7 -train-ratio 0.9 -unified data/final_corpus.csv")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.AgreementsPath = filepath.Clean(cfg.AgreementsPath)
	if cfg.ResolvedPath != "" {
		cfg.ResolvedPath = filepath.Clean(cfg.ResolvedPath)
	}
	if cfg.UnifiedPath != "" {
		cfg.UnifiedPath = filepath.Clean(cfg.UnifiedPath)
	}
	cfg.TrainPath = filepath.Clean(cfg.TrainPath)
	cfg.TestPath = filepath.Clean(cfg.TestPath)
	return cfg, nil
}
