package dataset

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestReadTable_CSVWithBOMAndHeaderVariants(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := writeTestFile(t, dir, "in.csv", "\xef\xbb\xbfSentence,Aspect Term,Polarity\n\"the food, mostly\",food,positive\nshort row\n")

	tbl, err := ReadTable(p)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len()=%d, want 2", tbl.Len())
	}
	cols, err := tbl.Columns(ColSentence, ColAspectTerm, ColPolarity)
	if err != nil {
		t.Fatalf("Columns: %v", err)
	}
	if got := tbl.Rows[0][cols[0]]; got != "the food, mostly" {
		t.Fatalf("sentence=%q", got)
	}
	if got := tbl.Rows[1][cols[2]]; got != "" {
		t.Fatalf("short row not padded: %q", got)
	}
}

func TestReadTable_TSV(t *testing.T) {
	t.Parallel()

	p := writeTestFile(t, t.TempDir(), "in.tsv", "sentence_text\tother\nhello there friend\tx\n")
	tbl, err := ReadTable(p)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	c, err := tbl.Column(ColSentenceText)
	if err != nil {
		t.Fatalf("Column: %v", err)
	}
	if tbl.Rows[0][c] != "hello there friend" {
		t.Fatalf("row=%v", tbl.Rows[0])
	}
}

func TestReadTable_XLSXSkipsMetadataSheet(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "labels.xlsx")
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "Info"); err != nil {
		t.Fatalf("SetSheetName: %v", err)
	}
	_ = f.SetCellValue("Info", "A1", "annotation guide")
	if _, err := f.NewSheet("Labels"); err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	_ = f.SetCellValue("Labels", "A1", "sentence")
	_ = f.SetCellValue("Labels", "B1", "aspect_term")
	_ = f.SetCellValue("Labels", "C1", "polarity")
	_ = f.SetCellValue("Labels", "A2", "the screen is dim")
	_ = f.SetCellValue("Labels", "B2", "screen")
	_ = f.SetCellValue("Labels", "C2", "negative")
	if err := f.SaveAs(p); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	_ = f.Close()

	rows, err := ReadCorpusRows(p)
	if err != nil {
		t.Fatalf("ReadCorpusRows: %v", err)
	}
	if len(rows) != 1 || rows[0].AspectTerm != "screen" || rows[0].Polarity != "negative" {
		t.Fatalf("rows=%+v", rows)
	}
}

func TestReadTable_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := ReadTable(filepath.Join(dir, "missing.csv")); !errors.Is(err, ErrMissingInput) {
		t.Fatalf("missing file err=%v, want ErrMissingInput", err)
	}
	empty := writeTestFile(t, dir, "empty.csv", "")
	if _, err := ReadTable(empty); !errors.Is(err, ErrMissingInput) {
		t.Fatalf("empty file err=%v, want ErrMissingInput", err)
	}
	badXLSX := writeTestFile(t, dir, "bad.xlsx", "not a zip")
	if _, err := ReadTable(badXLSX); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("bad xlsx err=%v, want ErrMalformedInput", err)
	}

	p := writeTestFile(t, dir, "nocol.csv", "a,b\n1,2\n")
	tbl, err := ReadTable(p)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if _, err := tbl.Column(ColAspectTerm); !errors.Is(err, ErrMissingInput) {
		t.Fatalf("Column err=%v, want ErrMissingInput", err)
	}
}

func TestIsMissing(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"", "  ", "NaN", "null", "None", "n/a"} {
		if !IsMissing(v) {
			t.Fatalf("IsMissing(%q)=false", v)
		}
	}
	for _, v := range []string{"positive", "0", "-"} {
		if IsMissing(v) {
			t.Fatalf("IsMissing(%q)=true", v)
		}
	}
}

func TestWriteCSV_RoundTripsThroughReadTable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := filepath.Join(dir, "out.csv")
	rows := [][]string{{`she said "wow"`, "line\nbreak"}}
	if err := WriteCSV(p, []string{"a", "b"}, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	assertOnlyFiles(t, dir, "out.csv")

	tbl, err := ReadTable(p)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if tbl.Rows[0][0] != rows[0][0] || tbl.Rows[0][1] != rows[0][1] {
		t.Fatalf("row=%q, want %q", tbl.Rows[0], rows[0])
	}
}
