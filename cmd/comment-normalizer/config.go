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
	Verbose    bool
}

func (c Config) Validate() error {
	if c.InputPath == "" {
		return errors.New("missing -in")
	}
	if c.OutputPath == "" {
		return errors.New("missing -out")
	}
	if c.TextColumn == "" {
		return errors.New("missing -text-column")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		InputPath:  filepath.FromSlash("data/raw_threads"),
		OutputPath: filepath.FromSlash("data/cleaned_comments.csv"),
		TextColumn: dataset.ColCommentText,
	}
}
