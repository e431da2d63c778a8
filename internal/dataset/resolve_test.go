package dataset

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	calls []string
	body  []byte
	err   error
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) ([]byte, error) {
	f.calls = append(f.calls, rawURL)
	if f.err != nil {
		return nil, f.err
	}
	return f.body, nil
}

func TestResolveNoSourceIdles(t *testing.T) {
	tbl, err := Resolve(context.Background(), Source{}, Options{})
	assert.NoError(t, err)
	assert.Nil(t, tbl)
	assert.True(t, Source{URL: "  "}.Empty())
}

func TestResolveRejectsNonCSVSuffixWithoutFetching(t *testing.T) {
	f := &fakeFetcher{body: []byte("a\n1\n")}
	for _, u := range []string{"http://example.com/data.txt", "http://example.com/data.CSV", "http://example.com/data.csv?x=1"} {
		tbl, err := Resolve(context.Background(), Source{URL: u}, Options{Fetcher: f})
		require.Error(t, err, u)
		assert.Nil(t, tbl)
		var se *InvalidURLSuffixError
		assert.True(t, errors.As(err, &se), u)
		assert.True(t, IsWarning(err))
	}
	assert.Empty(t, f.calls, "no fetch may be attempted")
}

func TestResolveFetchFailure(t *testing.T) {
	f := &fakeFetcher{err: errors.New("connection refused")}
	tbl, err := Resolve(context.Background(), Source{URL: "http://example.com/data.csv"}, Options{Fetcher: f})
	require.Error(t, err)
	assert.Nil(t, tbl)
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "http://example.com/data.csv", fe.URL)
	assert.Contains(t, err.Error(), "connection refused")
	assert.False(t, IsWarning(err))
	assert.Equal(t, []string{"http://example.com/data.csv"}, f.calls)
}

func TestResolveURLParseFailureIsFetchFailure(t *testing.T) {
	f := &fakeFetcher{body: []byte("a,b\n1,2,3\n")}
	_, err := Resolve(context.Background(), Source{URL: "http://example.com/data.csv"}, Options{Fetcher: f})
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	var pe *ParseError
	assert.True(t, errors.As(err, &pe))
}

func TestResolveURLSuccess(t *testing.T) {
	f := &fakeFetcher{body: []byte("region,sales\neast,1\nwest,2\n")}
	tbl, err := Resolve(context.Background(), Source{URL: "https://example.com/files/sales.csv"}, Options{Fetcher: f})
	require.NoError(t, err)
	assert.Equal(t, "sales.csv", tbl.Name)
	assert.Equal(t, 2, tbl.Rows)
}

func TestResolveUploadWinsOverURL(t *testing.T) {
	f := &fakeFetcher{body: []byte("never\n1\n")}
	src := Source{Upload: []byte("k\n1\n2\n"), UploadName: "up.csv", URL: "http://example.com/data.csv"}
	tbl, err := Resolve(context.Background(), src, Options{Fetcher: f})
	require.NoError(t, err)
	assert.Equal(t, "up.csv", tbl.Name)
	assert.Equal(t, []string{"k"}, tbl.Names())
	assert.Empty(t, f.calls)
}

func TestResolveUploadParseFailure(t *testing.T) {
	_, err := Resolve(context.Background(), Source{Upload: []byte{}}, Options{})
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "upload.csv", pe.Source)
}

func TestResolveAppliesFilter(t *testing.T) {
	src := Source{Upload: []byte("region,sales\neast,1\nwest,2\neast,3\n")}
	tbl, err := Resolve(context.Background(), src, Options{Filter: `region == "east"`})
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Rows)
}
