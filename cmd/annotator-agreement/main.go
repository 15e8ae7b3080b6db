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

	res, err := dataset.FindDisagreements(ctx, cfg.Annotator1, cfg.Annotator2, dataset.AgreementOptions{
		LabelColumn:       cfg.LabelColumn,
		AgreementsPath:    cfg.AgreementsPath,
		DisagreementsPath: cfg.DisagreementsPath,
		ReportOnly:        cfg.ReportOnly,
		Logger:            newLogger(cfg.Verbose),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	writeSummary(os.Stdout, cfg, res)
}

func writeSummary(w io.Writer, cfg Config, res dataset.AgreementResult) {
	kappa := "undefined"
	if res.KappaDefined {
		kappa = fmt.Sprintf("%.4f", res.Kappa)
	}
	fmt.Fprintf(w, "rows=%d joined=%d unmatched_a=%d unmatched_b=%d compared=%d missing_label=%d kappa=%s agreed=%d disagreed=%d",
		res.RowsA, res.Joined, res.UnmatchedA, res.UnmatchedB, res.Compared, res.MissingLabels, kappa, res.Agreed, res.Disagreed)
	if cfg.ReportOnly {
		fmt.Fprintln(w, " report_only=true")
		return
	}
	disagreements := "none"
	if res.DisagreementsWritten {
		disagreements = cfg.DisagreementsPath
	}
	fmt.Fprintf(w, " agreements=%s disagreements=%s\n", cfg.AgreementsPath, disagreements)
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

	fs.StringVar(&cfg.Annotator1, "a", cfg.Annotator1, "First annotator's labeled table (sentence, aspect_term, label)")
	fs.StringVar(&cfg.Annotator2, "b", cfg.Annotator2, "Second annotator's labeled table")
	fs.StringVar(&cfg.LabelColumn, "label-column", cfg.LabelColumn, "Label column name in both tables")
	fs.StringVar(&cfg.AgreementsPath, "agreements", cfg.AgreementsPath, "Where to write the agreed rows")
	fs.StringVar(&cfg.DisagreementsPath, "disagreements", cfg.DisagreementsPath, "Where to write rows needing adjudication (only when any exist)")
	fs.BoolVar(&cfg.ReportOnly, "report-only", false, "Compute and print Cohen's kappa without writing any file")
	fs.BoolVar(&cfg.Verbose, "v", false, "Log debug diagnostics to stderr")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/annotator-agreement")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/annotator-agreement -a alice.xlsx -b bob.xlsx -report-only")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Annotator1 = filepath.Clean(cfg.Annotator1)
	cfg.Annotator2 = filepath.Clean(cfg.Annotator2)
	cfg.AgreementsPath = filepath.Clean(cfg.AgreementsPath)
	cfg.DisagreementsPath = filepath.Clean(cfg.DisagreementsPath)
	return cfg, nil
}
