package dataset

import (
	"errors"
	"fmt"
)

// ErrTooLarge indicates the payload exceeded Options.MaxBytes.
var ErrTooLarge = errors.New("dataset exceeds size limit")

// ParseError indicates an uploaded payload could not be read as CSV.
type ParseError struct {
	Source string
	Line   int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("error reading file %s: line %d: %v", e.Source, e.Line, e.Err)
	}
	if e.Source != "" {
		return fmt.Sprintf("error reading file %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("error reading file: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FetchError indicates a network, status, size or parse failure on the URL path.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("error reading URL %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// InvalidURLSuffixError is a warning: the URL does not end in ".csv" and was not fetched.
type InvalidURLSuffixError struct {
	URL string
}

func (e *InvalidURLSuffixError) Error() string {
	return "please provide a valid URL ending in .csv"
}

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("unexpected status %s: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("unexpected status %s", e.Status)
}

// IsWarning reports whether err should be shown as a warning rather than an error.
func IsWarning(err error) bool {
	var se *InvalidURLSuffixError
	return errors.As(err, &se)
}
