package dataset

import (
	"errors"
	"strings"
	"testing"
)

func TestReadResolvedRows_ProjectsFinalPolarity(t *testing.T) {
	t.Parallel()

	p := writeTestFile(t, t.TempDir(), "resolved.csv",
		"sentence,aspect_term,annotator_1_label,annotator_2_label,final_polarity\n"+
			"the price is ok,price,neutral,positive,neutral\n"+
			"the view is nice,view,,positive,positive\n")

	rows, err := ReadResolvedRows(p)
	if err != nil {
		t.Fatalf("ReadResolvedRows: %v", err)
	}
	want := []CorpusRow{
		{Sentence: "the price is ok", AspectTerm: "price", Polarity: "neutral"},
		{Sentence: "the view is nice", AspectTerm: "view", Polarity: "positive"},
	}
	if len(rows) != len(want) {
		t.Fatalf("rows=%+v", rows)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Fatalf("row %d=%+v, want %+v", i, rows[i], want[i])
		}
	}
}

func TestReadResolvedRows_Incomplete(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	noColumn := writeTestFile(t, dir, "no_col.csv", "sentence,aspect_term,annotator_1_label,annotator_2_label\na b c,b,positive,negative\n")
	if _, err := ReadResolvedRows(noColumn); !errors.Is(err, ErrIncompleteAdjudication) {
		t.Fatalf("missing column err=%v, want ErrIncompleteAdjudication", err)
	}

	blank := writeTestFile(t, dir, "blank.csv",
		"sentence,aspect_term,final_polarity\n"+
			"a b c,b,positive\n"+
			"d e f,e,\n"+
			"g h i,h,NaN\n")
	rows, err := ReadResolvedRows(blank)
	if !errors.Is(err, ErrIncompleteAdjudication) {
		t.Fatalf("blank err=%v, want ErrIncompleteAdjudication", err)
	}
	if rows != nil {
		t.Fatalf("rows=%+v, want none", rows)
	}
	if !strings.Contains(err.Error(), "lines 3, 4") {
		t.Fatalf("error does not name the lines: %v", err)
	}
}

func TestMergeResolved_Order(t *testing.T) {
	t.Parallel()

	agreed := []CorpusRow{{Sentence: "a"}, {Sentence: "b"}}
	resolved := []CorpusRow{{Sentence: "c"}}
	got := MergeResolved(agreed, resolved)
	if len(got) != 3 || got[0].Sentence != "a" || got[1].Sentence != "b" || got[2].Sentence != "c" {
		t.Fatalf("MergeResolved=%+v", got)
	}
}

func TestFormatLines_Truncates(t *testing.T) {
	t.Parallel()

	if got := formatLines([]int{2, 3, 4}, 2); got != "2, 3, …" {
		t.Fatalf("formatLines=%q", got)
	}
}
