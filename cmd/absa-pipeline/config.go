package main

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	stageNormalize = "normalize"
	stageSegment   = "segment"
	stageExtract   = "extract"
	stageAgree     = "agree"
	stageBuild     = "build"
	stageMAMS      = "mams"
)

// pipelineStages run in order by default; mams is standalone and only runs when asked for.
var pipelineStages = []string{stageNormalize, stageSegment, stageExtract, stageAgree, stageBuild}

type Config struct {
	ConfigPath string

	DataDir string
	RawDir  string

	MinWords   int
	Extractor  string
	Model      string
	TaskSeed   int64
	SplitSeed  int64
	TrainRatio float64

	MAMS       bool
	MAMSDir    string
	MAMSSplits string

	FromStage string
	OnlyStage string

	Overwrite bool
	Progress  bool
	DryRun    bool
}

func (c Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("missing -data-dir")
	}
	if c.RawDir == "" {
		return errors.New("missing -raw-dir")
	}
	if c.MinWords <= 0 {
		return errors.New("min-words must be > 0")
	}
	if c.Extractor != "pos" && c.Extractor != "llm" {
		return fmt.Errorf("unknown -extractor %q (want pos or llm)", c.Extractor)
	}
	if math.IsNaN(c.TrainRatio) || c.TrainRatio <= 0 || c.TrainRatio >= 1 {
		return errors.New("train-ratio must be in (0, 1)")
	}
	if c.OnlyStage != "" && c.FromStage != "" {
		return errors.New("use only one of -only-stage or -from-stage")
	}
	if c.OnlyStage != "" && !knownStage(c.OnlyStage) {
		return fmt.Errorf("unknown -only-stage %q", c.OnlyStage)
	}
	if c.FromStage != "" && !knownStage(c.FromStage) {
		return fmt.Errorf("unknown -from-stage %q", c.FromStage)
	}
	return nil
}

func knownStage(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == stageMAMS {
		return true
	}
	for _, p := range pipelineStages {
		if p == s {
			return true
		}
	}
	return false
}

func defaultConfig() Config {
	return Config{
		DataDir:    "data",
		RawDir:     filepath.FromSlash("data/raw_threads"),
		MinWords:   2,
		Extractor:  "pos",
		Model:      "gpt-5-mini",
		SplitSeed:  42,
		TrainRatio: 0.8,
		MAMSDir:    filepath.FromSlash("data/mams"),
		MAMSSplits: "train,test",
	}
}

// fileConfig mirrors the YAML pipeline file. Absent keys leave the default in place.
type fileConfig struct {
	DataDir    *string  `yaml:"data_dir"`
	RawDir     *string  `yaml:"raw_dir"`
	MinWords   *int     `yaml:"min_words"`
	Extractor  *string  `yaml:"extractor"`
	Model      *string  `yaml:"model"`
	TaskSeed   *int64   `yaml:"task_seed"`
	SplitSeed  *int64   `yaml:"split_seed"`
	TrainRatio *float64 `yaml:"train_ratio"`
	MAMS       *struct {
		Enabled *bool   `yaml:"enabled"`
		Dir     *string `yaml:"dir"`
		Splits  *string `yaml:"splits"`
	} `yaml:"mams"`
	Progress *bool `yaml:"progress"`
}

func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return fc, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc, nil
}

// applyFile copies values from the YAML file into cfg, except for settings whose flag
// was given explicitly on the command line.
func applyFile(cfg *Config, fc fileConfig, explicit map[string]bool) {
	setString := func(flagName string, dst *string, v *string) {
		if v != nil && !explicit[flagName] {
			*dst = *v
		}
	}
	setString("data-dir", &cfg.DataDir, fc.DataDir)
	setString("raw-dir", &cfg.RawDir, fc.RawDir)
	setString("extractor", &cfg.Extractor, fc.Extractor)
	setString("model", &cfg.Model, fc.Model)
	if fc.MinWords != nil && !explicit["min-words"] {
		cfg.MinWords = *fc.MinWords
	}
	if fc.TaskSeed != nil && !explicit["task-seed"] {
		cfg.TaskSeed = *fc.TaskSeed
	}
	if fc.SplitSeed != nil && !explicit["split-seed"] {
		cfg.SplitSeed = *fc.SplitSeed
	}
	if fc.TrainRatio != nil && !explicit["train-ratio"] {
		cfg.TrainRatio = *fc.TrainRatio
	}
	if fc.Progress != nil && !explicit["progress"] {
		cfg.Progress = *fc.Progress
	}
	if m := fc.MAMS; m != nil {
		if m.Enabled != nil && !explicit["mams"] {
			cfg.MAMS = *m.Enabled
		}
		setString("mams-dir", &cfg.MAMSDir, m.Dir)
		setString("mams-splits", &cfg.MAMSSplits, m.Splits)
	}
}
