package links

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_ReportsBrokenStatuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "curl/7.86.0", r.Header.Get("User-Agent"))

		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/gone":
			w.WriteHeader(http.StatusNotFound)
		case "/bad":
			w.WriteHeader(http.StatusBadRequest)
		case "/moved":
			// Redirect targets are followed, not reported.
			http.Redirect(w, r, "/ok", http.StatusMovedPermanently)
		}
	}))
	defer srv.Close()

	html := fmt.Sprintf(`
		<p><a href="%[1]s/ok">fine</a></p>
		<p><a href="%[1]s/gone">dead</a></p>
		<p><a href="%[1]s/bad">bad</a></p>
		<p><a href="%[1]s/moved">moved</a></p>
		<p><a href="/relative">relative links are skipped</a></p>
		<p><a href="mailto:someone@example.com">mail</a></p>
	`, srv.URL)

	broken, err := NewChecker(srv.Client()).Check(context.Background(), html)
	require.NoError(t, err)

	sort.Slice(broken, func(i, j int) bool { return broken[i].URL < broken[j].URL })
	require.Len(t, broken, 2)
	assert.Equal(t, srv.URL+"/bad", broken[0].URL)
	assert.Equal(t, http.StatusBadRequest, broken[0].Status)
	assert.Equal(t, srv.URL+"/gone", broken[1].URL)
	assert.Equal(t, http.StatusNotFound, broken[1].Status)
}

func TestCheck_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens anymore

	html := fmt.Sprintf(`<a href="%s/anything">unreachable</a>`, srv.URL)

	broken, err := NewChecker(nil).Check(context.Background(), html)
	require.NoError(t, err)
	require.Len(t, broken, 1)
	assert.Equal(t, -1, broken[0].Status)
}

func TestCheck_DeduplicatesLinks(t *testing.T) {
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	html := fmt.Sprintf(`<a href="%[1]s/page">one</a><a href="%[1]s/page">two</a>`, srv.URL)

	_, err := NewChecker(srv.Client()).Check(context.Background(), html)
	require.NoError(t, err)
	assert.EqualValues(t, 1, hits.Load())
}

func TestCheck_NoAnchors(t *testing.T) {
	broken, err := NewChecker(nil).Check(context.Background(), "<p>no links here</p>")
	require.NoError(t, err)
	assert.Empty(t, broken)
}
