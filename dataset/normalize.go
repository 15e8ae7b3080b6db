package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

var (
	urlPattern     = regexp.MustCompile(`https?://\S+|www\.\S+`)
	mentionPattern = regexp.MustCompile(`u/\w+|r/\w+`)
	junkPattern    = regexp.MustCompile(`(?i)\[deleted\]|\[removed\]|#NAME\?`)
	disallowedRune = regexp.MustCompile(`[^a-z0-9\s.,'"-]`)
	whitespaceRun  = regexp.MustCompile(`\s+`)

	quoteUncurler = strings.NewReplacer(
		"‘", "'", "’", "'", "‚", "'", "‛", "'",
		"“", `"`, "”", `"`, "„", `"`, "‟", `"`,
	)

	// Byte sequences that only show up when UTF-8 was decoded as Windows-1252.
	mojibakeMarkers = []string{"Ã", "Â", "â€", "ðŸ"}
)

// CleanText normalizes one scraped comment: encoding repair, URL/mention/junk removal,
// lowercasing, a restricted character set, and collapsed whitespace.
func CleanText(text string) string {
	text = repairMojibake(text)
	text = strings.ToValidUTF8(text, "")
	text = norm.NFKC.String(text)
	text = quoteUncurler.Replace(text)

	text = urlPattern.ReplaceAllString(text, "")
	text = mentionPattern.ReplaceAllString(text, "")
	text = junkPattern.ReplaceAllString(text, "")
	text = strings.ToLower(text)
	text = disallowedRune.ReplaceAllString(text, "")
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// repairMojibake reverses a UTF-8 -> Windows-1252 mis-decode when the round trip yields
// valid UTF-8. Text that does not look mis-decoded is returned unchanged.
func repairMojibake(s string) string {
	suspicious := false
	for _, m := range mojibakeMarkers {
		if strings.Contains(s, m) {
			suspicious = true
			break
		}
	}
	if !suspicious {
		return s
	}
	raw, err := charmap.Windows1252.NewEncoder().String(s)
	if err != nil || !utf8.ValidString(raw) || raw == s {
		return s
	}
	return raw
}

// NormalizeOptions controls NormalizeComments.
type NormalizeOptions struct {
	// TextColumn names the comment text column in each raw table (default comment_text).
	TextColumn string
	Logger     *slog.Logger
}

// NormalizeResult reports what NormalizeComments read and wrote.
type NormalizeResult struct {
	FilesFound      int
	FilesUsed       int
	FilesSkipped    int
	CommentsWritten int
	EmptyAfterClean int
}

// NormalizeComments combines raw comment tables into one cleaned table with columns
// source_file, comment_text, cleaned_text. Tables lacking the text column are skipped
// with a warning; if none are usable the stage fails with ErrMissingInput and writes nothing.
func NormalizeComments(ctx context.Context, inputs []string, outputPath string, opts NormalizeOptions) (NormalizeResult, error) {
	if ctx == nil {
		return NormalizeResult{}, errors.New("NormalizeComments: ctx is nil")
	}
	if outputPath == "" {
		return NormalizeResult{}, errors.New("NormalizeComments: outputPath is empty")
	}
	if opts.TextColumn == "" {
		opts.TextColumn = ColCommentText
	}
	log := loggerOr(opts.Logger)

	res := NormalizeResult{FilesFound: len(inputs)}
	if len(inputs) == 0 {
		return res, fmt.Errorf("NormalizeComments: %w: no raw comment tables found", ErrMissingInput)
	}

	var rows [][]string
	for _, in := range inputs {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		t, err := ReadTable(in)
		if err != nil {
			log.Warn("skipping unreadable table", "file", in, "reason", "unreadable", "err", err)
			res.FilesSkipped++
			continue
		}
		col, err := t.Column(opts.TextColumn)
		if err != nil {
			log.Warn("skipping table without text column", "file", in, "column", opts.TextColumn, "reason", "missing_column")
			res.FilesSkipped++
			continue
		}
		res.FilesUsed++

		source := filepath.Base(in)
		for _, r := range t.Rows {
			cleaned := CleanText(r[col])
			if cleaned == "" {
				res.EmptyAfterClean++
			}
			rows = append(rows, []string{source, r[col], cleaned})
		}
	}
	if res.FilesUsed == 0 {
		return res, fmt.Errorf("NormalizeComments: %w: no table carries column %q", ErrMissingInput, opts.TextColumn)
	}

	if err := WriteCSV(outputPath, []string{ColSourceFile, ColCommentText, ColCleanedText}, rows); err != nil {
		return res, fmt.Errorf("NormalizeComments: %w", err)
	}
	res.CommentsWritten = len(rows)
	log.Info("normalized comments", "files_used", res.FilesUsed, "comments", res.CommentsWritten, "out", outputPath)
	return res, nil
}

var tableExts = map[string]bool{".csv": true, ".tsv": true, ".xlsx": true, ".xlsm": true}

// CollectTables expands a directory, glob pattern, or single file into a sorted list of
// tabular input files.
func CollectTables(pathOrGlob string) ([]string, error) {
	if pathOrGlob == "" {
		return nil, fmt.Errorf("CollectTables: %w: empty path", ErrMissingInput)
	}
	if strings.ContainsAny(pathOrGlob, "*?[") {
		matches, err := filepath.Glob(pathOrGlob)
		if err != nil {
			return nil, fmt.Errorf("CollectTables: bad pattern %q: %w", pathOrGlob, err)
		}
		var files []string
		for _, m := range matches {
			if tableExts[strings.ToLower(filepath.Ext(m))] {
				files = append(files, m)
			}
		}
		sort.Strings(files)
		return files, nil
	}

	fi, err := os.Stat(pathOrGlob)
	if err != nil {
		return nil, fmt.Errorf("CollectTables: %w: %s: %v", ErrMissingInput, pathOrGlob, err)
	}
	if !fi.IsDir() {
		return []string{pathOrGlob}, nil
	}

	entries, err := os.ReadDir(pathOrGlob)
	if err != nil {
		return nil, fmt.Errorf("CollectTables: read dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if tableExts[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, filepath.Join(pathOrGlob, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func loggerOr(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}
