package main

import (
	"flag"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParseFlags_Defaults(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("absa-pipeline", flag.ContinueOnError)
	cfg, err := parseFlags(fs, nil)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if cfg.SplitSeed != 42 || cfg.TrainRatio != 0.8 || cfg.Extractor != "pos" {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestParseFlags_YAMLThenFlags(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")
	yamlDoc := `
data_dir: work
min_words: 3
split_seed: 7
train_ratio: 0.9
extractor: llm
mams:
  enabled: true
  splits: train,test,val
`
	if err := os.WriteFile(path, []byte(yamlDoc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := flag.NewFlagSet("absa-pipeline", flag.ContinueOnError)
	cfg, err := parseFlags(fs, []string{"-config", path, "-split-seed", "99"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.DataDir != "work" || cfg.MinWords != 3 || cfg.TrainRatio != 0.9 || cfg.Extractor != "llm" {
		t.Fatalf("yaml values not applied: %+v", cfg)
	}
	if cfg.SplitSeed != 99 {
		t.Fatalf("SplitSeed=%d, explicit flag should win over yaml", cfg.SplitSeed)
	}
	if !cfg.MAMS || cfg.MAMSSplits != "train,test,val" {
		t.Fatalf("mams block not applied: %+v", cfg)
	}
}

func TestParseFlags_YAMLUnknownKey(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("data_dirr: x\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	fs := flag.NewFlagSet("absa-pipeline", flag.ContinueOnError)
	if _, err := parseFlags(fs, []string{"-config", path}); err == nil {
		t.Fatalf("expected error for unknown yaml key")
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.OnlyStage = "pack"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unknown stage")
	}
	cfg = defaultConfig()
	cfg.OnlyStage, cfg.FromStage = "build", "agree"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for -only-stage with -from-stage")
	}
}

func TestSelectStages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
		want []string
	}{
		{name: "default", cfg: Config{}, want: []string{"normalize", "segment", "extract", "agree", "build"}},
		{name: "from agree", cfg: Config{FromStage: "Agree"}, want: []string{"agree", "build"}},
		{name: "only mams", cfg: Config{OnlyStage: "mams", MAMS: true}, want: []string{"mams"}},
		{name: "with mams", cfg: Config{FromStage: "build", MAMS: true}, want: []string{"build", "mams"}},
		{name: "from mams", cfg: Config{FromStage: "mams", MAMS: true}, want: []string{"mams"}},
		{name: "from mams without -mams", cfg: Config{FromStage: "mams"}, want: []string{"mams"}},
		{name: "from extract", cfg: Config{FromStage: "extract"}, want: []string{"extract", "agree", "build"}},
	}
	for _, tt := range tests {
		if got := selectStages(tt.cfg); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("%s: selectStages=%v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestBuildPlan_AgreeWaitsForAnnotators(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.OnlyStage = stageAgree
	plan := buildPlan(cfg)
	if len(plan) != 1 {
		t.Fatalf("plan=%+v", plan)
	}
	st := plan[0]
	if allExist(st.requires) {
		t.Fatalf("annotator files should be missing")
	}
	if !strings.Contains(st.waitingHint, "annotator_1.csv") {
		t.Fatalf("hint=%q", st.waitingHint)
	}

	for _, p := range st.requires {
		if err := os.WriteFile(p, []byte("sentence,aspect_term,polarity\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if !allExist(st.requires) {
		t.Fatalf("requires should now exist")
	}
}

func TestBuildPlan_BuildArgs(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.OnlyStage = stageBuild
	cfg.SplitSeed = 7
	cfg.TrainRatio = 0.75
	plan := buildPlan(cfg)
	if len(plan) != 1 {
		t.Fatalf("plan=%+v", plan)
	}
	args := strings.Join(plan[0].args, " ")
	for _, want := range []string{"./cmd/corpus-builder", "-seed 7", "-train-ratio 0.75", "disagreements_to_fix.csv", "reddit_train.raw"} {
		if !strings.Contains(args, want) {
			t.Fatalf("args %q missing %q", args, want)
		}
	}
	if len(plan[0].outputs) != 2 {
		t.Fatalf("outputs=%v", plan[0].outputs)
	}
}

func TestBuildPlan_ExtractFlags(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.OnlyStage = stageExtract
	cfg.Extractor = "llm"
	cfg.TaskSeed = 3
	cfg.Progress = true
	args := strings.Join(buildPlan(cfg)[0].args, " ")
	for _, want := range []string{"-extractor llm", "-model gpt-5-mini", "-seed 3", "-progress"} {
		if !strings.Contains(args, want) {
			t.Fatalf("args %q missing %q", args, want)
		}
	}
}

func TestBuildPlan_FromAgreeLeavesMAMSOut(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.FromStage = stageAgree
	for _, st := range buildPlan(cfg) {
		if st.name == stageMAMS {
			t.Fatalf("mams scheduled with MAMS=false: %v", st.args)
		}
	}
}

func TestBuildPlan_BuildWaitsForAdjudication(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.OnlyStage = stageBuild
	plan := buildPlan(cfg)
	if len(plan) != 1 || plan[0].pending == nil {
		t.Fatalf("plan=%+v", plan)
	}
	st := plan[0]
	if reason := st.pending(); reason != "" {
		t.Fatalf("no disagreement file: pending=%q, want empty", reason)
	}

	path := filepath.Join(cfg.DataDir, "disagreements_to_fix.csv")
	unresolved := "sentence,aspect_term,annotator_1_label,annotator_2_label,final_polarity\n" +
		"the screen is dim,screen,negative,neutral,\n"
	if err := os.WriteFile(path, []byte(unresolved), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if reason := st.pending(); !strings.Contains(reason, "waiting for adjudication") || !strings.Contains(reason, path) {
		t.Fatalf("pending=%q", reason)
	}
	if !strings.Contains(st.waitingHint, "-from-stage build") {
		t.Fatalf("hint=%q", st.waitingHint)
	}

	resolved := "sentence,aspect_term,annotator_1_label,annotator_2_label,final_polarity\n" +
		"the screen is dim,screen,negative,neutral,negative\n"
	if err := os.WriteFile(path, []byte(resolved), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if reason := st.pending(); reason != "" {
		t.Fatalf("adjudicated file: pending=%q, want empty", reason)
	}
}

func TestParseFlags_RejectsNaNTrainRatio(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("absa-pipeline", flag.ContinueOnError)
	cfg, err := parseFlags(fs, []string{"-train-ratio", "NaN"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for NaN train ratio")
	}
}
