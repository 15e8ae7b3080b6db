package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// SentenceSplitter splits a text into sentences.
type SentenceSplitter interface {
	Split(text string) []string
}

// PunktSplitter wraps the pretrained English Punkt tokenizer.
type PunktSplitter struct {
	tok *sentences.DefaultSentenceTokenizer
}

// NewPunktSplitter loads the bundled English Punkt model.
func NewPunktSplitter() (*PunktSplitter, error) {
	tok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("NewPunktSplitter: %w", err)
	}
	return &PunktSplitter{tok: tok}, nil
}

func (p *PunktSplitter) Split(text string) []string {
	var out []string
	for _, s := range p.tok.Tokenize(text) {
		if t := strings.TrimSpace(s.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// SegmentOptions controls SegmentComments.
type SegmentOptions struct {
	// TextColumn names the cleaned comment column (default cleaned_text).
	TextColumn string

	// MinWords drops sentences with MinWords or fewer whitespace-separated words (default 2).
	MinWords int

	// OnProgress, when set, is called after each comment.
	OnProgress func(done, total int)

	Logger *slog.Logger
}

// SegmentResult reports what SegmentComments read and wrote.
type SegmentResult struct {
	CommentsRead      int
	SentencesWritten  int
	SentencesTooShort int
}

// SegmentComments splits every cleaned comment into sentences and writes a single-column
// sentence_text table.
func SegmentComments(ctx context.Context, inputPath, outputPath string, splitter SentenceSplitter, opts SegmentOptions) (SegmentResult, error) {
	if ctx == nil {
		return SegmentResult{}, errors.New("SegmentComments: ctx is nil")
	}
	if splitter == nil {
		return SegmentResult{}, errors.New("SegmentComments: splitter is nil")
	}
	if opts.TextColumn == "" {
		opts.TextColumn = ColCleanedText
	}
	if opts.MinWords <= 0 {
		opts.MinWords = 2
	}
	log := loggerOr(opts.Logger)

	t, err := ReadTable(inputPath)
	if err != nil {
		return SegmentResult{}, fmt.Errorf("SegmentComments: %w", err)
	}
	col, err := t.Column(opts.TextColumn)
	if err != nil {
		return SegmentResult{}, fmt.Errorf("SegmentComments: %w", err)
	}

	res := SegmentResult{CommentsRead: t.Len()}
	var rows [][]string
	for i, r := range t.Rows {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		for _, s := range splitter.Split(r[col]) {
			if len(strings.Fields(s)) <= opts.MinWords {
				res.SentencesTooShort++
				continue
			}
			rows = append(rows, []string{s})
		}
		if opts.OnProgress != nil {
			opts.OnProgress(i+1, t.Len())
		}
	}

	if err := WriteCSV(outputPath, []string{ColSentenceText}, rows); err != nil {
		return res, fmt.Errorf("SegmentComments: %w", err)
	}
	res.SentencesWritten = len(rows)
	log.Info("segmented comments", "comments", res.CommentsRead, "sentences", res.SentencesWritten, "too_short", res.SentencesTooShort)
	return res, nil
}
