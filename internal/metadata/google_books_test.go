package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const googleVolumeBody = `{
  "kind": "books#volumes",
  "totalItems": 1,
  "items": [{
    "volumeInfo": {
      "title": "The Go Programming Language",
      "authors": ["Alan Donovan", "Brian Kernighan"],
      "publisher": "Addison-Wesley",
      "publishedDate": "2015-10",
      "description": "The authoritative resource.",
      "pageCount": 380,
      "language": "en",
      "industryIdentifiers": [{"type": "ISBN_13", "identifier": "9780134190440"}],
      "imageLinks": {"thumbnail": "http://books.google.com/books/content?id=x&img=1&zoom=1&edge=curl"}
    }
  }]
}`

func newGoogleTestClient(t *testing.T, enabled bool, handler http.HandlerFunc) (*GoogleBooksClient, *int32) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	client, err := NewGoogleBooksClient(context.Background(), GoogleBooksConfig{
		Enabled:  enabled,
		Endpoint: srv.URL + "/",
	})
	require.NoError(t, err)
	return client, &hits
}

func TestGoogleBooksLookupFound(t *testing.T) {
	var gotQuery string
	client, _ := newGoogleTestClient(t, true, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(googleVolumeBody))
	})
	res := client.Lookup(context.Background(), "978-0-13-419044-0")
	require.True(t, res.Found())
	assert.Equal(t, "isbn:9780134190440", gotQuery)
	assert.Equal(t, SourceGoogleBooks, res.Source)
	assert.Equal(t, "The Go Programming Language", res.Record.Title)
	assert.Equal(t, "2015-10-01", res.Record.PublicationDate)
	assert.Equal(t, "https://books.google.com/books/content?id=x&img=1", res.Record.CoverURL)
	assert.Equal(t, []string{"Alan Donovan", "Brian Kernighan"}, res.Record.Authors)
}

func TestGoogleBooksLookupNoItems(t *testing.T) {
	client, _ := newGoogleTestClient(t, true, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"kind":"books#volumes","totalItems":0}`))
	})
	res := client.Lookup(context.Background(), "9780000000000")
	assert.False(t, res.Found())
	assert.Equal(t, StatusAbsent, res.Status)
}

func TestGoogleBooksLookupServerError(t *testing.T) {
	client, _ := newGoogleTestClient(t, true, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	res := client.Lookup(context.Background(), "9780134190440")
	assert.False(t, res.Found())
	assert.Equal(t, StatusFailed, res.Status)
	assert.Error(t, res.Err)
}

func TestGoogleBooksDisabledMakesNoCall(t *testing.T) {
	client, hits := newGoogleTestClient(t, false, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(googleVolumeBody))
	})
	res := client.Lookup(context.Background(), "9780134190440")
	assert.Equal(t, StatusDisabled, res.Status)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestGoogleBooksHyphenatedIsbnFallback(t *testing.T) {
	client, _ := newGoogleTestClient(t, true, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"totalItems": 1, "items": [{"volumeInfo": {"title": "No Identifiers"}}]}`))
	})

	res := client.Lookup(context.Background(), "978-0-13-419044-0")
	require.True(t, res.Found())
	assert.Equal(t, "9780134190440", res.Record.ISBN13)
	assert.Empty(t, res.Record.ISBN10)

	res = client.Lookup(context.Background(), "0-13-419044-X")
	require.True(t, res.Found())
	assert.Equal(t, "013419044X", res.Record.ISBN10)
	assert.Empty(t, res.Record.ISBN13)
}
