package main

import (
	"errors"
	"path/filepath"

	"github.com/theimaginaryfoundation/reddit-absa/dataset"
)

type Config struct {
	InputPath  string
	OutputPath string
	TextColumn string
	MinWords   int
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
	if c.MinWords <= 0 {
		return errors.New("min words must be > 0")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		InputPath:  filepath.FromSlash("data/cleaned_comments.csv"),
		OutputPath: filepath.FromSlash("data/sentences.csv"),
		TextColumn: dataset.ColCleanedText,
		MinWords:   2,
	}
}
