package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jdkato/prose/v2"
)

// CandidateExtractor proposes aspect-term candidates for one sentence.
type CandidateExtractor interface {
	Candidates(ctx context.Context, sentence string) ([]string, error)
}

// CandidateExtractorFunc adapts a function to CandidateExtractor.
type CandidateExtractorFunc func(ctx context.Context, sentence string) ([]string, error)

func (f CandidateExtractorFunc) Candidates(ctx context.Context, sentence string) ([]string, error) {
	return f(ctx, sentence)
}

// POSExtractor mines noun chunks from part-of-speech tags: maximal runs of determiners,
// possessives, numbers, adjectives, and nouns that end on a noun.
type POSExtractor struct{}

func (POSExtractor) Candidates(ctx context.Context, sentence string) ([]string, error) {
	if strings.TrimSpace(sentence) == "" {
		return nil, nil
	}
	doc, err := prose.NewDocument(sentence,
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("POSExtractor: %w", err)
	}
	return nounChunks(sentence, doc.Tokens()), nil
}

type taggedSpan struct {
	tag        string
	start, end int
}

// nounChunks groups tagged tokens into noun chunks and slices each chunk from the
// original sentence so the candidate keeps the sentence's own spacing.
func nounChunks(sentence string, toks []prose.Token) []string {
	spans := make([]taggedSpan, 0, len(toks))
	cursor := 0
	for _, tok := range toks {
		idx := strings.Index(sentence[cursor:], tok.Text)
		if idx < 0 {
			// Tokenizer normalized the text (e.g. quotes); keep the tag without a span.
			spans = append(spans, taggedSpan{tag: tok.Tag, start: -1, end: -1})
			continue
		}
		start := cursor + idx
		end := start + len(tok.Text)
		spans = append(spans, taggedSpan{tag: tok.Tag, start: start, end: end})
		cursor = end
	}

	var out []string
	var run []taggedSpan
	flush := func() {
		last := -1
		for i, s := range run {
			if isNounTag(s.tag) {
				last = i
			}
		}
		if last >= 0 && run[0].start >= 0 && run[last].end >= 0 {
			out = append(out, sentence[run[0].start:run[last].end])
		}
		run = run[:0]
	}

	for _, s := range spans {
		switch {
		case s.start < 0:
			flush()
		case isDeterminerTag(s.tag) || isModifierTag(s.tag):
			// A pre-modifier after a noun opens a new chunk.
			if hasNoun(run) {
				flush()
			}
			run = append(run, s)
		case isNounTag(s.tag):
			run = append(run, s)
		default:
			flush()
		}
	}
	flush()
	return out
}

func hasNoun(run []taggedSpan) bool {
	for _, s := range run {
		if isNounTag(s.tag) {
			return true
		}
	}
	return false
}

func isNounTag(tag string) bool {
	switch tag {
	case "NN", "NNS", "NNP", "NNPS":
		return true
	}
	return false
}

func isDeterminerTag(tag string) bool {
	return tag == "DT" || tag == "PRP$" || tag == "PDT"
}

func isModifierTag(tag string) bool {
	switch tag {
	case "JJ", "JJR", "JJS", "CD":
		return true
	}
	return false
}

var pronounAspects = map[string]bool{
	"he": true, "she": true, "it": true, "they": true, "i": true, "you": true, "we": true,
}

// normalizeCandidate lowercases and trims a candidate and reports whether it is kept:
// longer than two characters and not a bare pronoun.
func normalizeCandidate(c string) (string, bool) {
	c = strings.ToLower(strings.TrimSpace(c))
	if utf8.RuneCountInString(c) <= 2 || pronounAspects[c] {
		return c, false
	}
	return c, true
}

// Task is one annotation task: an aspect term within its sentence.
type Task struct {
	Sentence   string
	AspectTerm string
}

// ExtractOptions controls ExtractAspectTasks.
type ExtractOptions struct {
	// TextColumn names the sentence column (default sentence_text).
	TextColumn string

	// Seed drives the task shuffle. Zero seeds from the clock.
	Seed int64

	// OnProgress, when set, is called after each sentence.
	OnProgress func(done, total int)

	Logger *slog.Logger
}

// ExtractResult reports what ExtractAspectTasks read and wrote.
type ExtractResult struct {
	SentencesRead int
	Candidates    int
	Filtered      int
	Duplicates    int
	TasksWritten  int
	Seed          int64
}

// ExtractAspectTasks turns sentences into deduplicated, shuffled annotation tasks with
// columns sentence, aspect_term.
func ExtractAspectTasks(ctx context.Context, inputPath, outputPath string, extractor CandidateExtractor, opts ExtractOptions) (ExtractResult, error) {
	if ctx == nil {
		return ExtractResult{}, errors.New("ExtractAspectTasks: ctx is nil")
	}
	if extractor == nil {
		return ExtractResult{}, errors.New("ExtractAspectTasks: extractor is nil")
	}
	if opts.TextColumn == "" {
		opts.TextColumn = ColSentenceText
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	log := loggerOr(opts.Logger)

	t, err := ReadTable(inputPath)
	if err != nil {
		return ExtractResult{}, fmt.Errorf("ExtractAspectTasks: %w", err)
	}
	col, err := t.Column(opts.TextColumn)
	if err != nil {
		return ExtractResult{}, fmt.Errorf("ExtractAspectTasks: %w", err)
	}

	res := ExtractResult{SentencesRead: t.Len(), Seed: opts.Seed}
	seen := make(map[Task]struct{})
	var tasks []Task
	for i, r := range t.Rows {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		sentence := r[col]
		cands, err := extractor.Candidates(ctx, sentence)
		if err != nil {
			return res, fmt.Errorf("ExtractAspectTasks: row %d: %w", i+1, err)
		}
		for _, c := range cands {
			res.Candidates++
			term, ok := normalizeCandidate(c)
			if !ok {
				res.Filtered++
				continue
			}
			task := Task{Sentence: sentence, AspectTerm: term}
			if _, dup := seen[task]; dup {
				res.Duplicates++
				continue
			}
			seen[task] = struct{}{}
			tasks = append(tasks, task)
		}
		if opts.OnProgress != nil {
			opts.OnProgress(i+1, t.Len())
		}
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	rng.Shuffle(len(tasks), func(i, j int) { tasks[i], tasks[j] = tasks[j], tasks[i] })

	rows := make([][]string, len(tasks))
	for i, task := range tasks {
		rows[i] = []string{task.Sentence, task.AspectTerm}
	}
	if err := WriteCSV(outputPath, []string{ColSentence, ColAspectTerm}, rows); err != nil {
		return res, fmt.Errorf("ExtractAspectTasks: %w", err)
	}
	res.TasksWritten = len(rows)
	log.Info("extracted aspect tasks", "sentences", res.SentencesRead, "tasks", res.TasksWritten, "duplicates", res.Duplicates, "filtered", res.Filtered, "seed", res.Seed)
	return res, nil
}
