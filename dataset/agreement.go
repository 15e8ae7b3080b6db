package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/theimaginaryfoundation/reddit-absa/dataset/fileutils"
)

// LabelRow is one annotator's judgment on an annotation task.
type LabelRow struct {
	Sentence   string
	AspectTerm string
	Label      string
}

// Key returns the natural join key of the row.
func (r LabelRow) Key() Task {
	return Task{Sentence: r.Sentence, AspectTerm: r.AspectTerm}
}

// LabelSet is the ordered label table produced by one annotator.
type LabelSet struct {
	Path string
	Rows []LabelRow
}

// ReadLabelSet loads an annotator table with sentence, aspect_term and labelColumn.
func ReadLabelSet(path, labelColumn string) (LabelSet, error) {
	if labelColumn == "" {
		labelColumn = ColPolarity
	}
	t, err := ReadTable(path)
	if err != nil {
		return LabelSet{}, fmt.Errorf("ReadLabelSet: %w", err)
	}
	cols, err := t.Columns(ColSentence, ColAspectTerm, labelColumn)
	if err != nil {
		return LabelSet{}, fmt.Errorf("ReadLabelSet: %w", err)
	}
	ls := LabelSet{Path: path, Rows: make([]LabelRow, 0, t.Len())}
	for _, r := range t.Rows {
		ls.Rows = append(ls.Rows, LabelRow{
			Sentence:   r[cols[0]],
			AspectTerm: r[cols[1]],
			Label:      r[cols[2]],
		})
	}
	return ls, nil
}

// AgreementRecord pairs both annotators' labels for one task.
type AgreementRecord struct {
	Sentence   string
	AspectTerm string
	LabelA     string
	LabelB     string
}

// Agreed reports whether both labels are present and equal (case and surrounding
// whitespace ignored). A record with a missing label on either side is a disagreement.
func (r AgreementRecord) Agreed() bool {
	if IsMissing(r.LabelA) || IsMissing(r.LabelB) {
		return false
	}
	return canonicalLabel(r.LabelA) == canonicalLabel(r.LabelB)
}

func canonicalLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// JoinResult is the keyed inner join of two label sets.
type JoinResult struct {
	Records    []AgreementRecord
	UnmatchedA int
	UnmatchedB int
}

// JoinLabelSets inner-joins a and b on (sentence, aspect_term). Output follows a's row order;
// a key repeated in b yields one record per matching b row. Rows without a partner are
// counted and dropped.
func JoinLabelSets(a, b LabelSet) JoinResult {
	byKey := make(map[Task][]int, len(b.Rows))
	for i, r := range b.Rows {
		byKey[r.Key()] = append(byKey[r.Key()], i)
	}

	var res JoinResult
	matchedB := make([]bool, len(b.Rows))
	for _, ra := range a.Rows {
		idxs, ok := byKey[ra.Key()]
		if !ok {
			res.UnmatchedA++
			continue
		}
		for _, j := range idxs {
			matchedB[j] = true
			res.Records = append(res.Records, AgreementRecord{
				Sentence:   ra.Sentence,
				AspectTerm: ra.AspectTerm,
				LabelA:     ra.Label,
				LabelB:     b.Rows[j].Label,
			})
		}
	}
	for _, m := range matchedB {
		if !m {
			res.UnmatchedB++
		}
	}
	return res
}

// Partition splits records into agreed and disagreed sets. Every record lands in exactly one.
func Partition(records []AgreementRecord) (agreed, disagreed []AgreementRecord) {
	for _, r := range records {
		if r.Agreed() {
			agreed = append(agreed, r)
		} else {
			disagreed = append(disagreed, r)
		}
	}
	return agreed, disagreed
}

// CohenKappa computes Cohen's kappa for two aligned label sequences:
// (po - pe) / (1 - pe), where po is the observed agreement rate and pe the agreement
// expected from each rater's marginal label frequencies. When pe is 1 both raters used a
// single identical label throughout and the result is 1.
func CohenKappa(a, b []string) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("CohenKappa: %w: %d vs %d labels", ErrLengthMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, errors.New("CohenKappa: no label pairs")
	}

	n := float64(len(a))
	countA := make(map[string]float64)
	countB := make(map[string]float64)
	agree := 0.0
	for i := range a {
		la, lb := canonicalLabel(a[i]), canonicalLabel(b[i])
		countA[la]++
		countB[lb]++
		if la == lb {
			agree++
		}
	}

	po := agree / n
	pe := 0.0
	for label, ca := range countA {
		pe += (ca / n) * (countB[label] / n)
	}
	if pe >= 1 {
		return 1, nil
	}
	return (po - pe) / (1 - pe), nil
}

// AgreementOptions controls FindDisagreements.
type AgreementOptions struct {
	// LabelColumn names the label column in both annotator tables (default polarity).
	LabelColumn string

	AgreementsPath    string
	DisagreementsPath string

	// ReportOnly computes the statistic and partition counts without writing any file.
	ReportOnly bool

	Logger *slog.Logger
}

// AgreementResult reports the join, the agreement statistic, and the partition.
type AgreementResult struct {
	RowsA, RowsB int
	Joined       int
	UnmatchedA   int
	UnmatchedB   int

	// Compared counts pairs with both labels present; only these feed Kappa.
	Compared      int
	MissingLabels int
	Kappa         float64
	KappaDefined  bool

	Agreed    int
	Disagreed int

	AgreementsWritten    bool
	DisagreementsWritten bool
}

// FindDisagreements aligns two annotator tables, reports Cohen's kappa, and persists the
// agreed rows (sentence, aspect_term, polarity) and, when any exist, the disagreed rows
// (sentence, aspect_term, annotator_1_label, annotator_2_label, final_polarity) for manual
// adjudication. Tables of different length fail with ErrLengthMismatch before anything
// is written.
func FindDisagreements(ctx context.Context, pathA, pathB string, opts AgreementOptions) (AgreementResult, error) {
	if ctx == nil {
		return AgreementResult{}, errors.New("FindDisagreements: ctx is nil")
	}
	if !opts.ReportOnly && (opts.AgreementsPath == "" || opts.DisagreementsPath == "") {
		return AgreementResult{}, errors.New("FindDisagreements: output paths are empty")
	}
	log := loggerOr(opts.Logger)

	a, err := ReadLabelSet(pathA, opts.LabelColumn)
	if err != nil {
		return AgreementResult{}, fmt.Errorf("FindDisagreements: %w", err)
	}
	b, err := ReadLabelSet(pathB, opts.LabelColumn)
	if err != nil {
		return AgreementResult{}, fmt.Errorf("FindDisagreements: %w", err)
	}

	res := AgreementResult{RowsA: len(a.Rows), RowsB: len(b.Rows)}
	if len(a.Rows) != len(b.Rows) {
		return res, fmt.Errorf("FindDisagreements: %w: %s has %d rows, %s has %d",
			ErrLengthMismatch, pathA, len(a.Rows), pathB, len(b.Rows))
	}

	joined := JoinLabelSets(a, b)
	res.Joined = len(joined.Records)
	res.UnmatchedA = joined.UnmatchedA
	res.UnmatchedB = joined.UnmatchedB
	if joined.UnmatchedA > 0 || joined.UnmatchedB > 0 {
		log.Warn("unmatched rows dropped from join", "reason", "unmatched_key", "annotator_1", joined.UnmatchedA, "annotator_2", joined.UnmatchedB)
	}

	var la, lb []string
	for _, r := range joined.Records {
		if IsMissing(r.LabelA) || IsMissing(r.LabelB) {
			res.MissingLabels++
			continue
		}
		la = append(la, r.LabelA)
		lb = append(lb, r.LabelB)
	}
	if res.MissingLabels > 0 {
		log.Warn("pairs with a missing label excluded from kappa", "reason", "missing_label", "count", res.MissingLabels)
	}
	res.Compared = len(la)
	if res.Compared > 0 {
		k, err := CohenKappa(la, lb)
		if err != nil {
			return res, fmt.Errorf("FindDisagreements: %w", err)
		}
		res.Kappa = k
		res.KappaDefined = true
	}

	agreed, disagreed := Partition(joined.Records)
	res.Agreed = len(agreed)
	res.Disagreed = len(disagreed)

	if opts.ReportOnly {
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	if err := writePartitions(opts.AgreementsPath, opts.DisagreementsPath, agreed, disagreed); err != nil {
		return res, fmt.Errorf("FindDisagreements: %w", err)
	}
	res.AgreementsWritten = true
	if len(disagreed) > 0 {
		res.DisagreementsWritten = true
	} else {
		// A file left over from an earlier run would otherwise be merged as if current.
		if err := fileutils.RemoveIfExists(opts.DisagreementsPath); err != nil {
			return res, fmt.Errorf("FindDisagreements: remove stale %s: %w", opts.DisagreementsPath, err)
		}
		log.Info("no disagreements found")
	}
	return res, nil
}

func writePartitions(agreedPath, disagreedPath string, agreed, disagreed []AgreementRecord) error {
	af, err := fileutils.CreateAtomic(agreedPath, 0o644)
	if err != nil {
		return err
	}
	defer af.Abort()

	w := csv.NewWriter(af)
	_ = w.Write([]string{ColSentence, ColAspectTerm, ColPolarity})
	for _, r := range agreed {
		_ = w.Write([]string{r.Sentence, r.AspectTerm, r.LabelA})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", agreedPath, err)
	}

	if len(disagreed) == 0 {
		return af.Commit()
	}

	df, err := fileutils.CreateAtomic(disagreedPath, 0o644)
	if err != nil {
		return err
	}
	defer df.Abort()

	w = csv.NewWriter(df)
	_ = w.Write([]string{ColSentence, ColAspectTerm, ColAnnotator1, ColAnnotator2, ColFinalPolarity})
	for _, r := range disagreed {
		_ = w.Write([]string{r.Sentence, r.AspectTerm, r.LabelA, r.LabelB, ""})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", disagreedPath, err)
	}
	return fileutils.CommitAll(af, df)
}
