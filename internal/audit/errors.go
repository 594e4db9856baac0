// ABOUTME: Typed errors returned by source validation before an audit runs.
// ABOUTME: Callers can match on these with errors.As to map them to API responses.

package audit

import "fmt"

// UnsupportedLanguageError indicates the requested language tag does not
// resolve to a supported language.
type UnsupportedLanguageError struct {
	Tag string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language: %s", e.Tag)
}

// InvalidSourceError indicates the source was empty or whitespace-only.
type InvalidSourceError struct{}

func (e *InvalidSourceError) Error() string {
	return "invalid source: empty or whitespace-only input"
}

// SourceTooLargeError indicates the source exceeded the byte-size limit.
type SourceTooLargeError struct {
	Actual int
	Limit  int
}

func (e *SourceTooLargeError) Error() string {
	return fmt.Sprintf("source too large: %d bytes exceeds limit of %d", e.Actual, e.Limit)
}

// TooManyLinesError indicates the source exceeded the line-count limit.
type TooManyLinesError struct {
	Actual int
	Limit  int
}

func (e *TooManyLinesError) Error() string {
	return fmt.Sprintf("too many lines: %d exceeds limit of %d", e.Actual, e.Limit)
}
