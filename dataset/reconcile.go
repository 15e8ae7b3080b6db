package dataset

import (
	"fmt"
	"strings"
)

// CorpusRow is one labeled example of the unified corpus. Polarity holds the raw label;
// it is validated when the row is encoded.
type CorpusRow struct {
	Sentence   string
	AspectTerm string
	Polarity   string
}

// ReadCorpusRows loads a table with sentence, aspect_term, and polarity columns, such as
// the agreed set written by FindDisagreements.
func ReadCorpusRows(path string) ([]CorpusRow, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, fmt.Errorf("ReadCorpusRows: %w", err)
	}
	cols, err := t.Columns(ColSentence, ColAspectTerm, ColPolarity)
	if err != nil {
		return nil, fmt.Errorf("ReadCorpusRows: %w", err)
	}
	rows := make([]CorpusRow, 0, t.Len())
	for _, r := range t.Rows {
		rows = append(rows, CorpusRow{Sentence: r[cols[0]], AspectTerm: r[cols[1]], Polarity: r[cols[2]]})
	}
	return rows, nil
}

// ReadResolvedRows loads the adjudicated disagreement table and projects each row to
// {sentence, aspect_term, polarity=final_polarity}, discarding the per-annotator labels.
// A missing final_polarity column, or any row whose final_polarity is blank, fails with
// ErrIncompleteAdjudication and returns no rows.
func ReadResolvedRows(path string) ([]CorpusRow, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, fmt.Errorf("ReadResolvedRows: %w", err)
	}
	cols, err := t.Columns(ColSentence, ColAspectTerm)
	if err != nil {
		return nil, fmt.Errorf("ReadResolvedRows: %w", err)
	}
	if !t.HasColumn(ColFinalPolarity) {
		return nil, fmt.Errorf("ReadResolvedRows: %w: %s has no %s column; complete the manual adjudication first",
			ErrIncompleteAdjudication, path, ColFinalPolarity)
	}
	fp, _ := t.Column(ColFinalPolarity)

	var missing []int
	rows := make([]CorpusRow, 0, t.Len())
	for i, r := range t.Rows {
		if IsMissing(r[fp]) {
			// +2: one for the header, one for 1-based numbering.
			missing = append(missing, i+2)
			continue
		}
		rows = append(rows, CorpusRow{Sentence: r[cols[0]], AspectTerm: r[cols[1]], Polarity: r[fp]})
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("ReadResolvedRows: %w: %d row(s) in %s have no %s (lines %s); fill them in and re-run",
			ErrIncompleteAdjudication, len(missing), path, ColFinalPolarity, formatLines(missing, 10))
	}
	return rows, nil
}

// MergeResolved unions the agreed rows with the resolved rows: agreed rows first in their
// original order, then resolved rows in theirs.
func MergeResolved(agreed, resolved []CorpusRow) []CorpusRow {
	out := make([]CorpusRow, 0, len(agreed)+len(resolved))
	out = append(out, agreed...)
	out = append(out, resolved...)
	return out
}

func formatLines(lines []int, max int) string {
	var b strings.Builder
	for i, l := range lines {
		if i == max {
			b.WriteString(", …")
			break
		}
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d", l)
	}
	return b.String()
}
