package dataset

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"

	"github.com/theimaginaryfoundation/reddit-absa/dataset/fileutils"
)

const (
	// DefaultSeed is the shuffle seed for the train/test split. math/rand's seeded source
	// produces the same sequence on every Go release, so a fixed seed reproduces the split.
	DefaultSeed int64 = 42

	// DefaultTrainRatio is the fraction of rows assigned to the training split.
	DefaultTrainRatio = 0.8
)

// ShuffleRows returns a seeded full permutation of rows. The input slice is not modified.
func ShuffleRows(rows []CorpusRow, seed int64) []CorpusRow {
	out := append([]CorpusRow(nil), rows...)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// SplitIndex returns floor(n * ratio): rows [0, split) train, [split, n) test.
func SplitIndex(n int, ratio float64) int {
	split := int(math.Floor(float64(n) * ratio))
	if split < 0 {
		return 0
	}
	if split > n {
		return n
	}
	return split
}

// EncodeRow converts a corpus row into a raw example. The first case-sensitive occurrence
// of the aspect term is replaced with Placeholder; substituted is false when the term does
// not occur verbatim and the sentence is kept as is. An unrecognized polarity returns an
// error wrapping ErrUnrecognizedPolarity.
func EncodeRow(row CorpusRow) (ex RawExample, substituted bool, err error) {
	p, err := ParsePolarity(row.Polarity)
	if err != nil {
		return RawExample{}, false, err
	}
	code, err := p.Code()
	if err != nil {
		return RawExample{}, false, err
	}

	sentence := row.Sentence
	if row.AspectTerm != "" && strings.Contains(sentence, row.AspectTerm) {
		sentence = strings.Replace(sentence, row.AspectTerm, Placeholder, 1)
		substituted = true
	}
	return RawExample{
		Sentence: strings.ToLower(strings.TrimSpace(sentence)),
		Term:     strings.ToLower(strings.TrimSpace(row.AspectTerm)),
		Code:     code,
	}, substituted, nil
}

// CorpusOptions controls BuildCorpus.
type CorpusOptions struct {
	// Seed is used as given; the corpus-builder command defaults it to DefaultSeed.
	Seed       int64
	TrainRatio float64

	// UnifiedPath, when set, also persists the merged corpus (before shuffling) as CSV.
	UnifiedPath string

	Logger *slog.Logger
}

// SplitStats counts what happened to the rows of one split.
type SplitStats struct {
	Rows             int
	Written          int
	DroppedPolarity  int
	SubstitutionMiss int
}

// CorpusResult reports the merge, the split, and the per-split encoding counts.
type CorpusResult struct {
	Agreed   int
	Resolved int
	Total    int
	Seed     int64
	Split    int

	Train SplitStats
	Test  SplitStats
}

// Dropped returns the rows dropped across both splits.
func (r CorpusResult) Dropped() int { return r.Train.DroppedPolarity + r.Test.DroppedPolarity }

// BuildCorpus merges the agreed set with the adjudicated disagreements, shuffles with a fixed
// seed, splits at floor(n*ratio), and writes both splits in the 3-line raw format. When
// resolvedPath is empty only the agreed set is used. Train, test, and the optional unified CSV
// are committed together; on any fatal error none of them is created.
func BuildCorpus(ctx context.Context, agreedPath, resolvedPath, trainPath, testPath string, opts CorpusOptions) (CorpusResult, error) {
	if ctx == nil {
		return CorpusResult{}, errors.New("BuildCorpus: ctx is nil")
	}
	if trainPath == "" || testPath == "" {
		return CorpusResult{}, errors.New("BuildCorpus: output paths are empty")
	}
	if opts.TrainRatio == 0 {
		opts.TrainRatio = DefaultTrainRatio
	}
	if math.IsNaN(opts.TrainRatio) || opts.TrainRatio < 0 || opts.TrainRatio > 1 {
		return CorpusResult{}, fmt.Errorf("BuildCorpus: train ratio %v outside [0, 1]", opts.TrainRatio)
	}
	log := loggerOr(opts.Logger)

	agreed, err := ReadCorpusRows(agreedPath)
	if err != nil {
		return CorpusResult{}, fmt.Errorf("BuildCorpus: %w", err)
	}
	var resolved []CorpusRow
	if resolvedPath != "" {
		resolved, err = ReadResolvedRows(resolvedPath)
		if err != nil {
			return CorpusResult{}, fmt.Errorf("BuildCorpus: %w", err)
		}
	}

	merged := MergeResolved(agreed, resolved)
	res := CorpusResult{
		Agreed:   len(agreed),
		Resolved: len(resolved),
		Total:    len(merged),
		Seed:     opts.Seed,
	}
	log.Info("merged annotations", "agreed", res.Agreed, "resolved", res.Resolved, "total", res.Total)

	shuffled := ShuffleRows(merged, opts.Seed)
	res.Split = SplitIndex(len(shuffled), opts.TrainRatio)
	train, test := shuffled[:res.Split], shuffled[res.Split:]

	if err := ctx.Err(); err != nil {
		return res, err
	}

	tf, err := fileutils.CreateAtomic(trainPath, 0o644)
	if err != nil {
		return res, fmt.Errorf("BuildCorpus: %w", err)
	}
	defer tf.Abort()
	if res.Train, err = writeRawSplit(tf, "train", train, log); err != nil {
		return res, fmt.Errorf("BuildCorpus: %w", err)
	}

	sf, err := fileutils.CreateAtomic(testPath, 0o644)
	if err != nil {
		return res, fmt.Errorf("BuildCorpus: %w", err)
	}
	defer sf.Abort()
	if res.Test, err = writeRawSplit(sf, "test", test, log); err != nil {
		return res, fmt.Errorf("BuildCorpus: %w", err)
	}

	outputs := []*fileutils.AtomicFile{tf, sf}
	if opts.UnifiedPath != "" {
		uf, err := fileutils.CreateAtomic(opts.UnifiedPath, 0o644)
		if err != nil {
			return res, fmt.Errorf("BuildCorpus: %w", err)
		}
		defer uf.Abort()
		rows := make([][]string, len(merged))
		for i, r := range merged {
			rows[i] = []string{r.Sentence, r.AspectTerm, r.Polarity}
		}
		if err := writeCSVRows(uf, []string{ColSentence, ColAspectTerm, ColPolarity}, rows); err != nil {
			return res, fmt.Errorf("BuildCorpus: write %s: %w", opts.UnifiedPath, err)
		}
		outputs = append(outputs, uf)
	}

	if err := fileutils.CommitAll(outputs...); err != nil {
		return res, fmt.Errorf("BuildCorpus: %w", err)
	}
	if res.Dropped() > 0 {
		log.Warn("rows dropped for unrecognized polarity", "reason", "unrecognized_polarity", "count", res.Dropped())
	}
	if miss := res.Train.SubstitutionMiss + res.Test.SubstitutionMiss; miss > 0 {
		log.Warn("aspect terms not found verbatim in their sentence", "reason", "substitution_miss", "count", miss)
	}
	return res, nil
}

func writeRawSplit(af *fileutils.AtomicFile, split string, rows []CorpusRow, log *slog.Logger) (SplitStats, error) {
	st := SplitStats{Rows: len(rows)}
	w := bufio.NewWriter(af)
	for i, row := range rows {
		ex, substituted, err := EncodeRow(row)
		if err != nil {
			st.DroppedPolarity++
			log.Warn("skipping row", "split", split, "row", i, "polarity", row.Polarity, "reason", "unrecognized_polarity")
			continue
		}
		if !substituted {
			st.SubstitutionMiss++
			log.Debug("aspect term not in sentence", "split", split, "row", i, "aspect_term", row.AspectTerm, "reason", "substitution_miss")
		}
		if _, err := w.WriteString(ex.Lines()); err != nil {
			return st, fmt.Errorf("write %s: %w", af.Path(), err)
		}
		st.Written++
	}
	if err := w.Flush(); err != nil {
		return st, fmt.Errorf("write %s: %w", af.Path(), err)
	}
	return st, nil
}
