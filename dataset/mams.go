package dataset

import (
	"bufio"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/theimaginaryfoundation/reddit-absa/dataset/fileutils"
)

// MAMS documents carry sentence elements under an arbitrary root:
//
//	<sentences>
//	  <sentence>
//	    <text>Great food but slow service</text>
//	    <aspectTerms>
//	      <aspectTerm term="food" polarity="positive" from="6" to="10"/>
//	    </aspectTerms>
//	  </sentence>
//	</sentences>
type mamsDocument struct {
	Sentences []mamsSentence `xml:"sentence"`
}

type mamsSentence struct {
	ID          string           `xml:"id,attr"`
	Text        *string          `xml:"text"`
	AspectTerms *mamsAspectTerms `xml:"aspectTerms"`
}

type mamsAspectTerms struct {
	Terms []mamsAspectTerm `xml:"aspectTerm"`
}

type mamsAspectTerm struct {
	Term     string `xml:"term,attr"`
	Polarity string `xml:"polarity,attr"`
	From     string `xml:"from,attr"`
	To       string `xml:"to,attr"`
}

// MAMSOptions controls ConvertMAMS.
type MAMSOptions struct {
	Logger *slog.Logger
}

// MAMSResult reports what ConvertMAMS read, skipped, and wrote.
type MAMSResult struct {
	Sentences         int
	WithoutAspects    int
	AspectTerms       int
	SkippedConflict   int
	SkippedPolarity   int
	SkippedBadOffsets int
	Written           int
}

// ConvertMAMS converts a MAMS XML file into the 3-line raw format. The whole document is
// parsed before the output is created, so a missing file (ErrMissingInput) or malformed
// XML (ErrMalformedInput) leaves no output behind.
func ConvertMAMS(ctx context.Context, inputPath, outputPath string, opts MAMSOptions) (MAMSResult, error) {
	if ctx == nil {
		return MAMSResult{}, errors.New("ConvertMAMS: ctx is nil")
	}
	if outputPath == "" {
		return MAMSResult{}, errors.New("ConvertMAMS: outputPath is empty")
	}
	log := loggerOr(opts.Logger)

	data, err := os.ReadFile(inputPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return MAMSResult{}, fmt.Errorf("ConvertMAMS: %w: file %s not found", ErrMissingInput, inputPath)
		}
		return MAMSResult{}, fmt.Errorf("ConvertMAMS: read %s: %w", inputPath, err)
	}

	examples, res, err := ConvertMAMSDocument(data, log)
	if err != nil {
		return res, fmt.Errorf("ConvertMAMS: %s: %w", inputPath, err)
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	af, err := fileutils.CreateAtomic(outputPath, 0o644)
	if err != nil {
		return res, fmt.Errorf("ConvertMAMS: %w", err)
	}
	defer af.Abort()

	w := bufio.NewWriter(af)
	for _, ex := range examples {
		if _, err := w.WriteString(ex.Lines()); err != nil {
			return res, fmt.Errorf("ConvertMAMS: write %s: %w", outputPath, err)
		}
	}
	if err := w.Flush(); err != nil {
		return res, fmt.Errorf("ConvertMAMS: write %s: %w", outputPath, err)
	}
	if err := af.Commit(); err != nil {
		return res, fmt.Errorf("ConvertMAMS: %w", err)
	}
	res.Written = len(examples)
	return res, nil
}

// ConvertMAMSDocument parses a MAMS document and encodes every usable aspect term.
// The placeholder is spliced in at the term's from/to offsets, which index characters of
// the original, unmodified sentence text; only then are sentence and term lowercased and
// trimmed. Terms labeled conflict, or with any polarity outside the shared vocabulary, are
// skipped, as are terms whose offsets do not fit the text.
func ConvertMAMSDocument(data []byte, log *slog.Logger) ([]RawExample, MAMSResult, error) {
	log = loggerOr(log)

	var doc mamsDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, MAMSResult{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	res := MAMSResult{Sentences: len(doc.Sentences)}
	var out []RawExample
	for si, s := range doc.Sentences {
		if s.Text == nil {
			return nil, res, fmt.Errorf("%w: sentence %d (id=%q) has no text element", ErrMalformedInput, si, s.ID)
		}
		if s.AspectTerms == nil || len(s.AspectTerms.Terms) == 0 {
			res.WithoutAspects++
			continue
		}

		text := []rune(*s.Text)
		for _, at := range s.AspectTerms.Terms {
			res.AspectTerms++

			if at.Polarity == "conflict" {
				res.SkippedConflict++
				continue
			}
			// MAMS labels are matched exactly; annotator tables go through ParsePolarity instead.
			p := Polarity(at.Polarity)
			if !p.Valid() {
				res.SkippedPolarity++
				log.Warn("skipping aspect term", "sentence", si, "term", at.Term, "polarity", at.Polarity, "reason", "unrecognized_polarity")
				continue
			}
			code, _ := p.Code()

			from, errFrom := strconv.Atoi(strings.TrimSpace(at.From))
			to, errTo := strconv.Atoi(strings.TrimSpace(at.To))
			if errFrom != nil || errTo != nil || from < 0 || to < from || to > len(text) {
				res.SkippedBadOffsets++
				log.Warn("skipping aspect term", "sentence", si, "term", at.Term, "from", at.From, "to", at.To, "reason", "bad_offsets")
				continue
			}

			masked := string(text[:from]) + Placeholder + string(text[to:])
			out = append(out, RawExample{
				Sentence: strings.ToLower(strings.TrimSpace(masked)),
				Term:     strings.ToLower(strings.TrimSpace(at.Term)),
				Code:     code,
			})
		}
	}
	return out, res, nil
}
