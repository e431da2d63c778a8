package dataset

import (
	"context"
	"path"
	"strings"
	"time"
)

// Source names the two mutually exclusive inputs of a load.
type Source struct {
	// Upload holds the bytes of an uploaded file; nil when nothing was uploaded.
	Upload     []byte
	UploadName string
	URL        string
}

// Empty reports whether neither input is set.
func (s Source) Empty() bool {
	return s.Upload == nil && strings.TrimSpace(s.URL) == ""
}

// Options controls loading.
type Options struct {
	// MaxBytes caps the payload size; 0 means unlimited.
	MaxBytes int64
	// MaxRows truncates the table; 0 means unlimited.
	MaxRows int
	// Fetcher serves the URL path. Defaults to an HTTPFetcher with a 30s timeout.
	Fetcher Fetcher
	// Filter is an optional boolean row filter, see ApplyFilter.
	Filter string
}

// Resolve loads a Table from exactly one source. An upload takes precedence
// over a URL. It returns a nil Table and a nil error when no source is set.
func Resolve(ctx context.Context, src Source, opt Options) (*Table, error) {
	var (
		t   *Table
		err error
	)
	switch {
	case src.Upload != nil:
		name := src.UploadName
		if name == "" {
			name = "upload.csv"
		}
		t, err = ParseCSV(name, src.Upload, opt)
		if err != nil {
			return nil, err
		}
	case src.URL != "":
		t, err = resolveURL(ctx, src.URL, opt)
		if err != nil {
			return nil, err
		}
	default:
		return nil, nil
	}
	if opt.Filter != "" {
		return ApplyFilter(t, opt.Filter)
	}
	return t, nil
}

func resolveURL(ctx context.Context, rawURL string, opt Options) (*Table, error) {
	// Suffix check only; no normalization or content-type sniffing.
	if !strings.HasSuffix(rawURL, ".csv") {
		return nil, &InvalidURLSuffixError{URL: rawURL}
	}
	f := opt.Fetcher
	if f == nil {
		f = NewHTTPFetcher(30*time.Second, opt.MaxBytes, 1, 0, 0)
	}
	body, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	t, err := ParseCSV(path.Base(rawURL), body, opt)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	return t, nil
}
