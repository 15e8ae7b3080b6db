package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/theimaginaryfoundation/reddit-absa/dataset"
	"github.com/theimaginaryfoundation/reddit-absa/dataset/provider"
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

	var extractor dataset.CandidateExtractor = dataset.POSExtractor{}
	var llm *openAIAspectExtractor
	if cfg.Extractor == extractorLLM {
		apiKey, err := resolveAPIKey(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(2)
		}
		client := openai.NewClient(option.WithAPIKey(apiKey))
		llm = &openAIAspectExtractor{
			responder: provider.ClientResponder{Client: &client},
			model:     cfg.Model,
			retry:     provider.DefaultRetryPolicy(),
			fallback:  dataset.POSExtractor{},
			log:       log,
		}
		extractor = llm
	}

	opts := dataset.ExtractOptions{
		TextColumn: cfg.TextColumn,
		Seed:       cfg.Seed,
		Logger:     log,
	}
	stopProgress := func() {}
	if cfg.Progress {
		bar := newProgress(os.Stderr)
		bar.start()
		opts.OnProgress = bar.update
		stopProgress = bar.stop
	}

	res, err := dataset.ExtractAspectTasks(ctx, cfg.InputPath, cfg.OutputPath, extractor, opts)
	stopProgress()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	fallbacks := 0
	if llm != nil {
		fallbacks = llm.fallbacks
	}
	writeSummary(os.Stdout, cfg, res, fallbacks)
}

func writeSummary(w io.Writer, cfg Config, res dataset.ExtractResult, fallbacks int) {
	fmt.Fprintf(w, "sentences_read=%d candidates=%d filtered=%d duplicates=%d tasks_written=%d extractor=%s fallbacks=%d seed=%d out=%s\n",
		res.SentencesRead, res.Candidates, res.Filtered, res.Duplicates, res.TasksWritten, cfg.Extractor, fallbacks, res.Seed, cfg.OutputPath)
}

// resolveAPIKey prefers -api-key, then OPENAI_API_KEY from the environment or the env file.
func resolveAPIKey(cfg Config) (string, error) {
	if cfg.APIKey != "" {
		return cfg.APIKey, nil
	}
	if cfg.EnvFile != "" {
		if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("load %s: %w", cfg.EnvFile, err)
		}
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key, nil
	}
	return "", errors.New("missing OPENAI_API_KEY (or pass -api-key)")
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

	fs.StringVar(&cfg.InputPath, "in", cfg.InputPath, "Sentence table (output of sentence-splitter)")
	fs.StringVar(&cfg.OutputPath, "out", cfg.OutputPath, "Path of the annotation task CSV to write")
	fs.StringVar(&cfg.TextColumn, "text-column", cfg.TextColumn, "Column holding the sentence text")
	fs.StringVar(&cfg.Extractor, "extractor", cfg.Extractor, "Candidate extractor: pos (noun chunks) or llm (OpenAI)")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "OpenAI model for -extractor llm")
	fs.StringVar(&cfg.APIKey, "api-key", "", "OpenAI API key (overrides OPENAI_API_KEY env var)")
	fs.StringVar(&cfg.EnvFile, "env-file", cfg.EnvFile, "Optional .env file to read OPENAI_API_KEY from")
	fs.Int64Var(&cfg.Seed, "seed", 0, "Task shuffle seed (0 seeds from the clock)")
	fs.BoolVar(&cfg.Progress, "progress", false, "Render a progress bar on stderr")
	fs.BoolVar(&cfg.Verbose, "v", false, "Log debug diagnostics to stderr")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/aspect-extractor -seed 7 -progress")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/aspect-extractor -extractor llm -model gpt-5-mini")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.InputPath = filepath.Clean(cfg.InputPath)
	cfg.OutputPath = filepath.Clean(cfg.OutputPath)
	return cfg, nil
}
