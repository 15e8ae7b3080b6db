package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/theimaginaryfoundation/reddit-absa/dataset"
	"github.com/theimaginaryfoundation/reddit-absa/dataset/fileutils"
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

	ran, skipped := 0, 0
	for _, st := range buildPlan(cfg) {
		if len(st.requires) > 0 && !allExist(st.requires) {
			fmt.Fprintf(os.Stdout, "stop before %s: waiting for %s\n", st.name, strings.Join(st.requires, ", "))
			fmt.Fprintln(os.Stdout, st.waitingHint)
			break
		}
		if !cfg.Overwrite && len(st.outputs) > 0 && allExist(st.outputs) {
			fmt.Fprintf(os.Stdout, "skip %s: %s already exists\n", st.name, strings.Join(st.outputs, ", "))
			skipped++
			continue
		}
		if st.pending != nil {
			if reason := st.pending(); reason != "" {
				fmt.Fprintf(os.Stdout, "stop before %s: %s\n", st.name, reason)
				fmt.Fprintln(os.Stdout, st.waitingHint)
				break
			}
		}
		if cfg.DryRun {
			fmt.Fprintln(os.Stdout, "would run: go "+strings.Join(st.args, " "))
			continue
		}
		if err := runGo(ctx, os.Stdout, os.Stderr, st.args...); err != nil {
			os.Exit(1)
		}
		ran++
	}
	fmt.Fprintf(os.Stdout, "stages_run=%d stages_skipped=%d data_dir=%s\n", ran, skipped, cfg.DataDir)
}

type stage struct {
	name string
	args []string

	// outputs existing means the stage already ran.
	outputs []string

	// requires lists hand-made inputs; the pipeline stops cleanly when any is missing.
	requires []string
	// pending reports hand-made work still open on inputs that exist; non-empty stops the pipeline.
	pending     func() string
	waitingHint string
}

type paths struct {
	cleaned, sentences, tasks string
	annotator1, annotator2    string
	agreements, disagreements string
	train, test               string
}

func dataPaths(dataDir string) paths {
	j := func(name string) string { return filepath.Join(dataDir, name) }
	return paths{
		cleaned:       j("cleaned_comments.csv"),
		sentences:     j("sentences.csv"),
		tasks:         j("annotation_tasks.csv"),
		annotator1:    j("annotator_1.csv"),
		annotator2:    j("annotator_2.csv"),
		agreements:    j("agreements.csv"),
		disagreements: j("disagreements_to_fix.csv"),
		train:         j("reddit_train.raw"),
		test:          j("reddit_test.raw"),
	}
}

func selectStages(cfg Config) []string {
	if cfg.OnlyStage != "" {
		return []string{strings.ToLower(strings.TrimSpace(cfg.OnlyStage))}
	}
	from := strings.ToLower(strings.TrimSpace(cfg.FromStage))
	if from == stageMAMS {
		return []string{stageMAMS}
	}
	stages := append([]string(nil), pipelineStages...)
	if from != "" {
		stages = stagesFrom(stages, from)
	}
	// mams is standalone: it runs after the pipeline only when asked for.
	if cfg.MAMS {
		stages = append(stages, stageMAMS)
	}
	return stages
}

// buildPlan turns the selected stages into `go run` invocations of the stage commands.
func buildPlan(cfg Config) []stage {
	p := dataPaths(cfg.DataDir)
	var plan []stage
	for _, name := range selectStages(cfg) {
		switch name {
		case stageNormalize:
			plan = append(plan, stage{
				name:    name,
				args:    []string{"run", "./cmd/comment-normalizer", "-in", cfg.RawDir, "-out", p.cleaned},
				outputs: []string{p.cleaned},
			})
		case stageSegment:
			args := []string{"run", "./cmd/sentence-splitter", "-in", p.cleaned, "-out", p.sentences, "-min-words", strconv.Itoa(cfg.MinWords)}
			if cfg.Progress {
				args = append(args, "-progress")
			}
			plan = append(plan, stage{name: name, args: args, outputs: []string{p.sentences}})
		case stageExtract:
			args := []string{"run", "./cmd/aspect-extractor", "-in", p.sentences, "-out", p.tasks, "-extractor", cfg.Extractor}
			if cfg.Extractor == "llm" {
				args = append(args, "-model", cfg.Model)
			}
			if cfg.TaskSeed != 0 {
				args = append(args, "-seed", strconv.FormatInt(cfg.TaskSeed, 10))
			}
			if cfg.Progress {
				args = append(args, "-progress")
			}
			plan = append(plan, stage{name: name, args: args, outputs: []string{p.tasks}})
		case stageAgree:
			// Re-running agree would replace a disagreement file that is being adjudicated by hand,
			// so an existing agreements file counts as done.
			plan = append(plan, stage{
				name:     name,
				args:     []string{"run", "./cmd/annotator-agreement", "-a", p.annotator1, "-b", p.annotator2, "-agreements", p.agreements, "-disagreements", p.disagreements},
				outputs:  []string{p.agreements},
				requires: []string{p.annotator1, p.annotator2},
				waitingHint: fmt.Sprintf("label %s into %s and %s (sentence, aspect_term, polarity), then re-run with -from-stage %s",
					p.tasks, filepath.Base(p.annotator1), filepath.Base(p.annotator2), stageAgree),
			})
		case stageBuild:
			plan = append(plan, stage{
				name: name,
				args: []string{"run", "./cmd/corpus-builder",
					"-agreements", p.agreements,
					"-resolved", p.disagreements,
					"-train", p.train,
					"-test", p.test,
					"-seed", strconv.FormatInt(cfg.SplitSeed, 10),
					"-train-ratio", strconv.FormatFloat(cfg.TrainRatio, 'f', -1, 64),
				},
				outputs:  []string{p.train, p.test},
				requires: []string{p.agreements},
				pending:  func() string { return adjudicationPending(p.disagreements) },
				waitingHint: fmt.Sprintf("run the %s stage first, fill %s in every row of %s, then re-run with -from-stage %s",
					stageAgree, dataset.ColFinalPolarity, filepath.Base(p.disagreements), stageBuild),
			})
		case stageMAMS:
			var outs []string
			for _, s := range strings.Split(cfg.MAMSSplits, ",") {
				if s = strings.TrimSpace(s); s != "" {
					outs = append(outs, filepath.Join(cfg.MAMSDir, "MAMS_"+s+".raw"))
				}
			}
			plan = append(plan, stage{
				name:    name,
				args:    []string{"run", "./cmd/mams-converter", "-dir", cfg.MAMSDir, "-splits", cfg.MAMSSplits},
				outputs: outs,
			})
		}
	}
	return plan
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.ConfigPath, "config", "", "Optional YAML pipeline file; explicit flags override its values")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Directory for all intermediate and final pipeline files")
	fs.StringVar(&cfg.RawDir, "raw-dir", cfg.RawDir, "Directory (or glob) of raw per-thread comment tables")
	fs.IntVar(&cfg.MinWords, "min-words", cfg.MinWords, "Drop sentences with this many words or fewer")
	fs.StringVar(&cfg.Extractor, "extractor", cfg.Extractor, "Aspect candidate extractor: pos or llm")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "OpenAI model for -extractor llm (uses OPENAI_API_KEY)")
	fs.Int64Var(&cfg.TaskSeed, "task-seed", cfg.TaskSeed, "Annotation task shuffle seed (0 seeds from the clock)")
	fs.Int64Var(&cfg.SplitSeed, "split-seed", cfg.SplitSeed, "Train/test split seed")
	fs.Float64Var(&cfg.TrainRatio, "train-ratio", cfg.TrainRatio, "Fraction of the corpus assigned to training")
	fs.BoolVar(&cfg.MAMS, "mams", cfg.MAMS, "Also convert the MAMS benchmark XML files")
	fs.StringVar(&cfg.MAMSDir, "mams-dir", cfg.MAMSDir, "Directory holding MAMS_<split>.xml")
	fs.StringVar(&cfg.MAMSSplits, "mams-splits", cfg.MAMSSplits, "Comma-separated MAMS splits")
	fs.StringVar(&cfg.FromStage, "from-stage", "", "Start at stage: normalize|segment|extract|agree|build|mams")
	fs.StringVar(&cfg.OnlyStage, "only-stage", "", "Run only one stage: normalize|segment|extract|agree|build|mams")
	fs.BoolVar(&cfg.Overwrite, "overwrite", cfg.Overwrite, "Re-run stages whose outputs already exist")
	fs.BoolVar(&cfg.Progress, "progress", cfg.Progress, "Show progress bars in long stages")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Print the stage commands without running them")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/absa-pipeline -config pipeline.example.yaml")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/absa-pipeline -from-stage agree")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/absa-pipeline -only-stage mams")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.ConfigPath != "" {
		fc, err := loadFileConfig(cfg.ConfigPath)
		if err != nil {
			return Config{}, err
		}
		explicit := make(map[string]bool)
		fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
		applyFile(&cfg, fc, explicit)
	}

	cfg.DataDir = filepath.Clean(cfg.DataDir)
	cfg.RawDir = filepath.Clean(cfg.RawDir)
	cfg.MAMSDir = filepath.Clean(cfg.MAMSDir)
	return cfg, nil
}

func runGo(ctx context.Context, stdout, stderr io.Writer, args ...string) error {
	cmd := exec.CommandContext(ctx, "go", args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = os.Environ()

	start := time.Now()
	if err := cmd.Run(); err != nil {
		fmt.Fprintln(stderr, "command failed:", "go "+strings.Join(args, " "))
		fmt.Fprintln(stderr, "error:", err.Error())
		return err
	}
	fmt.Fprintln(stdout, "ok:", "go "+strings.Join(args, " "), "(", time.Since(start).Round(time.Millisecond).String()+")")
	return nil
}

// adjudicationPending names the disagreement file while any of its rows still lacks a
// final_polarity. A missing file means there was nothing to adjudicate.
func adjudicationPending(path string) string {
	if !fileutils.FileExists(path) {
		return ""
	}
	if _, err := dataset.ReadResolvedRows(path); errors.Is(err, dataset.ErrIncompleteAdjudication) {
		return "waiting for adjudication of " + path
	}
	return ""
}

func stagesFrom(stages []string, from string) []string {
	from = strings.ToLower(strings.TrimSpace(from))
	for i, s := range stages {
		if s == from {
			return stages[i:]
		}
	}
	return stages
}

func allExist(paths []string) bool {
	for _, p := range paths {
		if !fileutils.FileExists(p) {
			return false
		}
	}
	return true
}
