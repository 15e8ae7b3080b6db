package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// Polarity is a sentiment value over the closed vocabulary positive/neutral/negative.
type Polarity string

const (
	Positive Polarity = "positive"
	Neutral  Polarity = "neutral"
	Negative Polarity = "negative"
)

// Placeholder is the token substituted for an aspect term's occurrence in a raw
// training example. Emitted sentences are lowercased, so it appears as "$t$" on disk.
const Placeholder = "$T$"

// polarityCodes is the only polarity-to-code mapping in the module. Both the corpus
// encoder and the MAMS converter go through Polarity.Code.
var polarityCodes = map[Polarity]int{
	Positive: 1,
	Neutral:  0,
	Negative: -1,
}

// ParsePolarity maps a raw label to a Polarity. Surrounding whitespace and case are ignored.
func ParsePolarity(raw string) (Polarity, error) {
	p := Polarity(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := polarityCodes[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnrecognizedPolarity, raw)
	}
	return p, nil
}

// Valid reports whether p is one of the three recognized values.
func (p Polarity) Valid() bool {
	_, ok := polarityCodes[p]
	return ok
}

// Code returns the integer encoding used in raw training examples.
func (p Polarity) Code() (int, error) {
	c, ok := polarityCodes[p]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnrecognizedPolarity, string(p))
	}
	return c, nil
}

// RawExample is one target-masked training example: the sentence with the aspect
// replaced by the placeholder, the lowercased aspect term, and the polarity code.
type RawExample struct {
	Sentence string
	Term     string
	Code     int
}

// Lines renders the example as its three on-disk lines, each newline-terminated.
func (e RawExample) Lines() string {
	var b strings.Builder
	b.Grow(len(e.Sentence) + len(e.Term) + 8)
	b.WriteString(e.Sentence)
	b.WriteByte('\n')
	b.WriteString(e.Term)
	b.WriteByte('\n')
	b.WriteString(strconv.Itoa(e.Code))
	b.WriteByte('\n')
	return b.String()
}
