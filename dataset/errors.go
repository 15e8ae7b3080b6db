package dataset

import "errors"

// Sentinel errors for the failure categories a stage can report. Structural errors
// (ErrMissingInput, ErrLengthMismatch, ErrIncompleteAdjudication, ErrMalformedInput)
// abort a stage before any output is committed. ErrUnrecognizedPolarity and
// ErrSubstitutionMiss describe per-row conditions that are counted, not returned.
var (
	// ErrMissingInput indicates a required file, column, or element is absent.
	ErrMissingInput = errors.New("dataset: missing input")

	// ErrLengthMismatch indicates two aligned tables differ in row count.
	ErrLengthMismatch = errors.New("dataset: length mismatch")

	// ErrIncompleteAdjudication indicates an adjudicated row has no final_polarity.
	ErrIncompleteAdjudication = errors.New("dataset: incomplete adjudication")

	// ErrUnrecognizedPolarity indicates a label outside positive/neutral/negative.
	ErrUnrecognizedPolarity = errors.New("dataset: unrecognized polarity")

	// ErrSubstitutionMiss indicates an aspect term was not found verbatim in its sentence.
	ErrSubstitutionMiss = errors.New("dataset: aspect term not found in sentence")

	// ErrMalformedInput indicates a structured document could not be parsed.
	ErrMalformedInput = errors.New("dataset: malformed input")
)
