package main

import (
	"flag"
	"testing"
)

func TestParseFlags_Defaults(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("comment-normalizer", flag.ContinueOnError)
	cfg, err := parseFlags(fs, nil)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.InputPath == "" || cfg.OutputPath == "" {
		t.Fatalf("expected default paths, got %+v", cfg)
	}
	if cfg.TextColumn != "comment_text" {
		t.Fatalf("TextColumn=%q, want comment_text", cfg.TextColumn)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestParseFlags_Overrides(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("comment-normalizer", flag.ContinueOnError)
	cfg, err := parseFlags(fs, []string{"-in", "raw/*.csv", "-out", "x/y.csv", "-text-column", "body", "-v"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.InputPath != "raw/*.csv" || cfg.OutputPath != "x/y.csv" || cfg.TextColumn != "body" || !cfg.Verbose {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	if err := (Config{}).Validate(); err == nil {
		t.Fatalf("expected error for empty config")
	}
	if err := (Config{InputPath: "in", OutputPath: "out"}).Validate(); err == nil {
		t.Fatalf("expected error for missing TextColumn")
	}
}
