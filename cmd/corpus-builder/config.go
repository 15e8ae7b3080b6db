package main

import (
	"errors"
	"math"
	"path/filepath"

	"github.com/theimaginaryfoundation/reddit-absa/dataset"
)

type Config struct {
	AgreementsPath string
	ResolvedPath   string
	TrainPath      string
	TestPath       string
	UnifiedPath    string
	Seed           int64
	TrainRatio     float64
	Verbose        bool
}

func (c Config) Validate() error {
	if c.AgreementsPath == "" {
		return errors.New("missing -agreements")
	}
	if c.TrainPath == "" || c.TestPath == "" {
		return errors.New("missing -train or -test")
	}
	if c.TrainPath == c.TestPath {
		return errors.New("-train and -test name the same file")
	}
	if math.IsNaN(c.TrainRatio) || c.TrainRatio <= 0 || c.TrainRatio >= 1 {
		return errors.New("train ratio must be in (0, 1)")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		AgreementsPath: filepath.FromSlash("data/agreements.csv"),
		ResolvedPath:   filepath.FromSlash("data/disagreements_to_fix.csv"),
		TrainPath:      filepath.FromSlash("data/reddit_train.raw"),
		TestPath:       filepath.FromSlash("data/reddit_test.raw"),
		Seed:           dataset.DefaultSeed,
		TrainRatio:     dataset.DefaultTrainRatio,
	}
}
