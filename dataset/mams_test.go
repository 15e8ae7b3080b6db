package dataset

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

const mamsFixture = `<?xml version="1.0" encoding="UTF-8"?>
<sentences>
  <sentence id="1">
    <text>Great food but slow service</text>
    <aspectTerms>
      <aspectTerm term="food" polarity="positive" from="6" to="10"/>
      <aspectTerm term="service" polarity="negative" from="20" to="27"/>
    </aspectTerms>
  </sentence>
  <sentence id="2">
    <text>The décor is fine but the staff was mixed</text>
    <aspectTerms>
      <aspectTerm term="décor" polarity="neutral" from="4" to="9"/>
      <aspectTerm term="staff" polarity="conflict" from="26" to="31"/>
    </aspectTerms>
  </sentence>
  <sentence id="3">
    <text>Nothing to see here</text>
  </sentence>
  <sentence id="4">
    <text>Menu was long</text>
    <aspectTerms>
      <aspectTerm term="menu" polarity="sarcastic" from="0" to="4"/>
      <aspectTerm term="menu" polarity="positive" from="0" to="99"/>
    </aspectTerms>
  </sentence>
</sentences>`

func TestConvertMAMSDocument(t *testing.T) {
	t.Parallel()

	examples, res, err := ConvertMAMSDocument([]byte(mamsFixture), quietLogger())
	if err != nil {
		t.Fatalf("ConvertMAMSDocument: %v", err)
	}
	want := []RawExample{
		{Sentence: "great $t$ but slow service", Term: "food", Code: 1},
		{Sentence: "great food but slow $t$", Term: "service", Code: -1},
		{Sentence: "the $t$ is fine but the staff was mixed", Term: "décor", Code: 0},
	}
	if len(examples) != len(want) {
		t.Fatalf("examples=%+v", examples)
	}
	for i := range want {
		if examples[i] != want[i] {
			t.Fatalf("example %d=%+v, want %+v", i, examples[i], want[i])
		}
	}
	if res.Sentences != 4 || res.WithoutAspects != 1 || res.AspectTerms != 6 {
		t.Fatalf("res=%+v", res)
	}
	if res.SkippedConflict != 1 || res.SkippedPolarity != 1 || res.SkippedBadOffsets != 1 {
		t.Fatalf("res=%+v", res)
	}
}

func TestConvertMAMSDocument_PolarityMatchedExactly(t *testing.T) {
	t.Parallel()

	doc := `<sentences><sentence><text>Great food but slow service</text><aspectTerms>` +
		`<aspectTerm term="food" polarity="Positive" from="6" to="10"/>` +
		`<aspectTerm term="service" polarity=" negative" from="20" to="27"/>` +
		`<aspectTerm term="service" polarity="CONFLICT" from="20" to="27"/>` +
		`<aspectTerm term="food" polarity="positive" from="6" to="10"/>` +
		`</aspectTerms></sentence></sentences>`
	examples, res, err := ConvertMAMSDocument([]byte(doc), quietLogger())
	if err != nil {
		t.Fatalf("ConvertMAMSDocument: %v", err)
	}
	if len(examples) != 1 || examples[0].Term != "food" || examples[0].Code != 1 {
		t.Fatalf("examples=%+v", examples)
	}
	if res.SkippedPolarity != 3 || res.SkippedConflict != 0 {
		t.Fatalf("res=%+v", res)
	}
}

func TestConvertMAMS_WritesRawFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeTestFile(t, dir, "MAMS_train.xml", `<sentences><sentence><text>Great food but slow service</text><aspectTerms><aspectTerm term="food" polarity="positive" from="6" to="10"/></aspectTerms></sentence></sentences>`)
	out := filepath.Join(dir, "MAMS_train.raw")

	res, err := ConvertMAMS(context.Background(), in, out, MAMSOptions{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("ConvertMAMS: %v", err)
	}
	if res.Written != 1 {
		t.Fatalf("Written=%d, want 1", res.Written)
	}
	if got, want := readTestFile(t, out), "great $t$ but slow service\nfood\n1\n"; got != want {
		t.Fatalf("output=%q, want %q", got, want)
	}
}

func TestConvertMAMS_ConflictOnlyYieldsEmptyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeTestFile(t, dir, "in.xml", `<sentences><sentence><text>Staff was odd</text><aspectTerms><aspectTerm term="staff" polarity="conflict" from="0" to="5"/></aspectTerms></sentence></sentences>`)
	out := filepath.Join(dir, "out.raw")

	res, err := ConvertMAMS(context.Background(), in, out, MAMSOptions{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("ConvertMAMS: %v", err)
	}
	if res.Written != 0 || res.SkippedConflict != 1 {
		t.Fatalf("res=%+v", res)
	}
	if got := readTestFile(t, out); got != "" {
		t.Fatalf("output=%q, want empty", got)
	}
}

func TestConvertMAMS_StructuralErrorsLeaveNoOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := []struct {
		name    string
		input   string
		content string
		want    error
	}{
		{name: "malformed", input: "bad.xml", content: `<sentences><sentence><text>unclosed`, want: ErrMalformedInput},
		{name: "no text", input: "notext.xml", content: `<sentences><sentence><aspectTerms/></sentence></sentences>`, want: ErrMalformedInput},
		{name: "missing", input: "missing.xml", want: ErrMissingInput},
	}
	for _, tt := range tests {
		in := filepath.Join(dir, tt.input)
		if tt.content != "" {
			in = writeTestFile(t, dir, tt.input, tt.content)
		}
		out := filepath.Join(dir, tt.name+".raw")
		_, err := ConvertMAMS(context.Background(), in, out, MAMSOptions{Logger: quietLogger()})
		if !errors.Is(err, tt.want) {
			t.Fatalf("%s: err=%v, want %v", tt.name, err, tt.want)
		}
		assertNotExist(t, out)
	}
}
