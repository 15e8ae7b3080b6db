package main

import (
	"bytes"
	"flag"
	"strings"
	"testing"

	"github.com/theimaginaryfoundation/reddit-absa/dataset"
)

func TestParseFlags_Defaults(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("annotator-agreement", flag.ContinueOnError)
	cfg, err := parseFlags(fs, nil)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if !strings.HasSuffix(cfg.Annotator1, "annotator_1.csv") || !strings.HasSuffix(cfg.Annotator2, "annotator_2.csv") {
		t.Fatalf("cfg=%+v", cfg)
	}
	if !strings.HasSuffix(cfg.DisagreementsPath, "disagreements_to_fix.csv") {
		t.Fatalf("DisagreementsPath=%q", cfg.DisagreementsPath)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestParseFlags_ReportOnly(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("annotator-agreement", flag.ContinueOnError)
	cfg, err := parseFlags(fs, []string{"-a", "x.xlsx", "-b", "y.xlsx", "-report-only", "-label-column", "sentiment"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if !cfg.ReportOnly || cfg.Annotator1 != "x.xlsx" || cfg.Annotator2 != "y.xlsx" || cfg.LabelColumn != "sentiment" {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	if err := (Config{}).Validate(); err == nil {
		t.Fatalf("expected error for empty config")
	}
	if err := (Config{Annotator1: "a", Annotator2: "a", LabelColumn: "polarity", ReportOnly: true}).Validate(); err == nil {
		t.Fatalf("expected error for identical inputs")
	}
	if err := (Config{Annotator1: "a", Annotator2: "b", LabelColumn: "polarity", ReportOnly: true}).Validate(); err != nil {
		t.Fatalf("report-only config should not need outputs: %v", err)
	}
}

func TestWriteSummary(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	var buf bytes.Buffer
	writeSummary(&buf, cfg, dataset.AgreementResult{Joined: 4, Compared: 4, Kappa: 0.66666, KappaDefined: true, Agreed: 3, Disagreed: 1, DisagreementsWritten: true})
	out := buf.String()
	if !strings.Contains(out, "kappa=0.6667") {
		t.Fatalf("summary=%q", out)
	}
	if !strings.Contains(out, "disagreements_to_fix.csv") || !strings.HasSuffix(out, "\n") {
		t.Fatalf("summary=%q", out)
	}

	buf.Reset()
	writeSummary(&buf, cfg, dataset.AgreementResult{Agreed: 2})
	if !strings.Contains(buf.String(), "kappa=undefined") || !strings.Contains(buf.String(), "disagreements=none") {
		t.Fatalf("summary=%q", buf.String())
	}
}
