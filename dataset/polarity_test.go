package dataset

import (
	"errors"
	"testing"
)

func TestParsePolarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw      string
		want     Polarity
		wantCode int
		wantErr  bool
	}{
		{raw: "positive", want: Positive, wantCode: 1},
		{raw: " Negative ", want: Negative, wantCode: -1},
		{raw: "NEUTRAL", want: Neutral, wantCode: 0},
		{raw: "conflict", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "pos", wantErr: true},
	}
	for _, tt := range tests {
		p, err := ParsePolarity(tt.raw)
		if tt.wantErr {
			if !errors.Is(err, ErrUnrecognizedPolarity) {
				t.Fatalf("ParsePolarity(%q) err=%v, want ErrUnrecognizedPolarity", tt.raw, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParsePolarity(%q): %v", tt.raw, err)
		}
		if p != tt.want {
			t.Fatalf("ParsePolarity(%q)=%q, want %q", tt.raw, p, tt.want)
		}
		code, err := p.Code()
		if err != nil || code != tt.wantCode {
			t.Fatalf("%q.Code()=%d,%v want %d", p, code, err, tt.wantCode)
		}
	}
}

func TestPolarityCode_Unknown(t *testing.T) {
	t.Parallel()

	if Polarity("mixed").Valid() {
		t.Fatalf("mixed reported valid")
	}
	if _, err := Polarity("mixed").Code(); !errors.Is(err, ErrUnrecognizedPolarity) {
		t.Fatalf("err=%v, want ErrUnrecognizedPolarity", err)
	}
}

func TestRawExampleLines(t *testing.T) {
	t.Parallel()

	got := RawExample{Sentence: "the $T$ is terrible", Term: "battery life", Code: -1}.Lines()
	want := "the $T$ is terrible\nbattery life\n-1\n"
	if got != want {
		t.Fatalf("Lines()=%q, want %q", got, want)
	}
}
