package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/theimaginaryfoundation/reddit-absa/dataset/fileutils"
	"github.com/xuri/excelize/v2"
)

// Column names shared by the stage tables.
const (
	ColSourceFile    = "source_file"
	ColCommentText   = "comment_text"
	ColCleanedText   = "cleaned_text"
	ColSentenceText  = "sentence_text"
	ColSentence      = "sentence"
	ColAspectTerm    = "aspect_term"
	ColPolarity      = "polarity"
	ColAnnotator1    = "annotator_1_label"
	ColAnnotator2    = "annotator_2_label"
	ColFinalPolarity = "final_polarity"
)

// Table is a header plus rows read from a CSV, TSV, or XLSX file. Rows are padded or
// trimmed to the header width.
type Table struct {
	Path   string
	Header []string
	Rows   [][]string

	index map[string]int
}

// ReadTable loads a tabular file. The format is chosen by extension: .xlsx reads the first
// non-metadata sheet, .tsv uses tabs, anything else is parsed as CSV. A missing file
// wraps ErrMissingInput; an unparsable one wraps ErrMalformedInput.
func ReadTable(path string) (*Table, error) {
	if path == "" {
		return nil, fmt.Errorf("ReadTable: %w: empty path", ErrMissingInput)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("ReadTable: %w: file %s not found", ErrMissingInput, path)
		}
		return nil, fmt.Errorf("ReadTable: read %s: %w", path, err)
	}

	var all [][]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		all, err = parseExcel(content)
	case ".tsv":
		all, err = parseCSV(content, '\t')
	default:
		all, err = parseCSV(content, ',')
	}
	if err != nil {
		return nil, fmt.Errorf("ReadTable: %w: %s: %v", ErrMalformedInput, path, err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("ReadTable: %w: %s has no header row", ErrMissingInput, path)
	}

	t := &Table{Path: path, Header: make([]string, len(all[0]))}
	for i, h := range all[0] {
		t.Header[i] = normalizeColumnName(h)
	}
	t.Rows = all[1:]
	for i, row := range t.Rows {
		switch {
		case len(row) < len(t.Header):
			padded := make([]string, len(t.Header))
			copy(padded, row)
			t.Rows[i] = padded
		case len(row) > len(t.Header):
			t.Rows[i] = row[:len(t.Header)]
		}
	}
	t.buildIndex()
	return t, nil
}

func (t *Table) buildIndex() {
	t.index = make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		if _, ok := t.index[h]; !ok {
			t.index[h] = i
		}
	}
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// HasColumn reports whether the header carries name.
func (t *Table) HasColumn(name string) bool {
	if t.index == nil {
		t.buildIndex()
	}
	_, ok := t.index[normalizeColumnName(name)]
	return ok
}

// Column returns the index of name, or an ErrMissingInput error naming the file and column.
func (t *Table) Column(name string) (int, error) {
	if t.index == nil {
		t.buildIndex()
	}
	i, ok := t.index[normalizeColumnName(name)]
	if !ok {
		return -1, fmt.Errorf("%w: column %q not found in %s", ErrMissingInput, name, t.Path)
	}
	return i, nil
}

// Columns resolves several column names at once.
func (t *Table) Columns(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, n := range names {
		c, err := t.Column(n)
		if err != nil {
			return nil, err
		}
		idx[i] = c
	}
	return idx, nil
}

// IsMissing reports whether a cell value counts as absent. Spreadsheet exports write
// blanks or NaN for unfilled cells.
func IsMissing(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "nan", "null", "none", "n/a":
		return true
	}
	return false
}

// WriteCSV writes header and rows to path atomically.
func WriteCSV(path string, header []string, rows [][]string) error {
	af, err := fileutils.CreateAtomic(path, 0o644)
	if err != nil {
		return fmt.Errorf("WriteCSV: %w", err)
	}
	defer af.Abort()

	if err := writeCSVRows(af, header, rows); err != nil {
		return fmt.Errorf("WriteCSV: %w", err)
	}
	if err := af.Commit(); err != nil {
		return fmt.Errorf("WriteCSV: %w", err)
	}
	return nil
}

func writeCSVRows(out io.Writer, header []string, rows [][]string) error {
	w := csv.NewWriter(out)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("rows: %w", err)
	}
	return nil
}

func parseCSV(content []byte, comma rune) ([][]string, error) {
	// Strip a UTF-8 BOM; spreadsheet exports commonly prepend one.
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(content))
	r.Comma = comma
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.ReuseRecord = false
	return r.ReadAll()
}

var metadataSheets = map[string]bool{
	"info":     true,
	"metadata": true,
	"about":    true,
	"readme":   true,
	"notes":    true,
}

func parseExcel(content []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	sheet := ""
	for _, s := range sheets {
		if !metadataSheets[strings.ToLower(s)] {
			sheet = s
			break
		}
	}
	if sheet == "" {
		sheet = sheets[len(sheets)-1]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

var nonIdentRun = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeColumnName lowercases a header and collapses any run of non-alphanumerics to
// one underscore, so "Aspect Term" and "aspect_term" address the same column.
func normalizeColumnName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = nonIdentRun.ReplaceAllString(n, "_")
	return strings.Trim(n, "_")
}
