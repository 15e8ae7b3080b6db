package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/theimaginaryfoundation/reddit-absa/dataset"
)

const (
	extractorPOS = "pos"
	extractorLLM = "llm"
)

type Config struct {
	InputPath  string
	OutputPath string
	TextColumn string
	Extractor  string
	Model      string
	APIKey     string
	EnvFile    string
	Seed       int64
	Progress   bool
	Verbose    bool
}

func (c Config) Validate() error {
	if c.InputPath == "" {
		return errors.New("missing -in")
	}
	if c.OutputPath == "" {
		return errors.New("missing -out")
	}
	switch c.Extractor {
	case extractorPOS:
	case extractorLLM:
		if c.Model == "" {
			return errors.New("missing -model")
		}
	default:
		return fmt.Errorf("unknown -extractor %q (want %s or %s)", c.Extractor, extractorPOS, extractorLLM)
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		InputPath:  filepath.FromSlash("data/sentences.csv"),
		OutputPath: filepath.FromSlash("data/annotation_tasks.csv"),
		TextColumn: dataset.ColSentenceText,
		Extractor:  extractorPOS,
		Model:      "gpt-5-mini",
		EnvFile:    ".env",
	}
}
