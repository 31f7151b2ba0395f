package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexjbarnes/wordpress-sync/internal/blog"
	"github.com/alexjbarnes/wordpress-sync/internal/wordpress"
)

// newTestEngine wires an engine against an httptest server standing in
// for the WordPress API. The logical host stays example.com.
func newTestEngine(t *testing.T, handler http.Handler) *Engine {
	t.Helper()

	srv := httptest.NewTLSServer(handler)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	endpoint := &wordpress.Endpoint{
		Host:     "example.com",
		APIHost:  u.Host,
		Username: "editor",
		Password: "app-password",
	}

	client := wordpress.NewClient(endpoint, wordpress.YoastSchema{}, srv.Client())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewEngine(client, logger)
}

// testBlog writes a minimal publishable document without images to a
// temp directory.
func testBlog(t *testing.T, guid string) *blog.Blog {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "my-post")
	date := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	b := &blog.Blog{
		Dir:  dir,
		Path: filepath.Join(dir, blog.DocumentName),
		Meta: blog.Frontmatter{
			Title:      "My post",
			Author:     "Jane Doe",
			Slug:       "my-post",
			Status:     blog.StatusPublish,
			Date:       &date,
			Categories: []string{"golang"},
			GUID:       guid,
		},
		Content: "Hello.\n",
	}
	require.NoError(t, b.Save())

	return b
}

// storedPost is the remote shape testBlog translates to, as stored
// under guid https://example.com/wp-json/wp/v2/posts/42.
const storedPost = `{
	"id": 42,
	"slug": "my-post",
	"status": "publish",
	"author": 1,
	"categories": [7],
	"date_gmt": "2024-03-01T09:30:00",
	"link": "https://example.com/blog/my-post/",
	"title": {"rendered": "My post"},
	"content": {"rendered": "<p>Hello.</p>", "raw": "<p>Hello.</p>\n"},
	"_links": {"self": [{"href": "https://example.com/wp-json/wp/v2/posts/42"}]}
}`

// wordpressStub answers the fixed lookups every upsert performs and
// records write requests.
type wordpressStub struct {
	mux    *http.ServeMux
	writes []string
}

func newWordPressStub() *wordpressStub {
	s := &wordpressStub{mux: http.NewServeMux()}

	s.mux.HandleFunc("GET /wp-json/wp/v2/users/me", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 1, "name": "Jane Doe", "slug": "jdoe"}`))
	})
	s.mux.HandleFunc("GET /wp-json/wp/v2/categories", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": 7, "slug": "golang"}, {"id": 9, "slug": "devops"}]`))
	})

	return s
}

func (s *wordpressStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writes = append(s.writes, r.Method+" "+r.URL.Path)
	}

	s.mux.ServeHTTP(w, r)
}

func TestUpsert_CreatePersistsGUIDImmediately(t *testing.T) {
	stub := newWordPressStub()
	stub.mux.HandleFunc("GET /wp-json/wp/v2/posts", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	stub.mux.HandleFunc("POST /wp-json/wp/v2/posts", func(w http.ResponseWriter, r *http.Request) {
		var properties map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&properties))

		assert.Equal(t, "My post", properties["title"])
		assert.Equal(t, "my-post", properties["slug"])
		assert.Equal(t, "publish", properties["status"])
		assert.Equal(t, "standard", properties["format"])
		assert.Equal(t, float64(1), properties["author"])
		assert.Equal(t, []any{float64(7)}, properties["categories"])
		assert.Equal(t, "2024-03-01T09:30:00", properties["date_gmt"])
		assert.Contains(t, properties["content"], "<p>Hello.</p>")

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(storedPost))
	})

	engine := newTestEngine(t, stub)
	b := testBlog(t, "")

	require.NoError(t, engine.Upsert(context.Background(), b))

	assert.Equal(t, "https://example.com/wp-json/wp/v2/posts/42", b.Meta.GUID)

	// The guid must be on disk, not just in memory.
	saved, err := blog.Load(b.Path)
	require.NoError(t, err)
	assert.Equal(t, b.Meta.GUID, saved.Meta.GUID)

	assert.Equal(t, []string{"POST /wp-json/wp/v2/posts"}, stub.writes)
}

func TestUpsert_DuplicateSlugRefusesWithoutMutation(t *testing.T) {
	stub := newWordPressStub()
	stub.mux.HandleFunc("GET /wp-json/wp/v2/posts", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[%s]`, storedPost)
	})

	engine := newTestEngine(t, stub)
	b := testBlog(t, "")

	err := engine.Upsert(context.Background(), b)
	require.ErrorIs(t, err, ErrDuplicateSlug)
	assert.Contains(t, err.Error(), "https://example.com/blog/my-post/")

	assert.Empty(t, stub.writes)
	assert.Empty(t, b.Meta.GUID)
}

func TestUpsert_CrossHostGUID(t *testing.T) {
	stub := newWordPressStub()
	engine := newTestEngine(t, stub)
	b := testBlog(t, "https://other.com/wp-json/wp/v2/posts/9")

	err := engine.Upsert(context.Background(), b)
	require.ErrorIs(t, err, ErrCrossHostGUID)
	assert.Empty(t, stub.writes)
}

func TestUpsert_UnchangedDocumentPerformsNoWrites(t *testing.T) {
	stub := newWordPressStub()
	stub.mux.HandleFunc("GET /wp-json/wp/v2/posts/42", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "edit", r.URL.Query().Get("context"))
		w.Write([]byte(storedPost))
	})

	engine := newTestEngine(t, stub)
	b := testBlog(t, "https://example.com/wp-json/wp/v2/posts/42")

	require.NoError(t, engine.Upsert(context.Background(), b))
	assert.Empty(t, stub.writes, "an unchanged document must cause zero write calls")
}

func TestUpsert_PushesOnlyChangedProperties(t *testing.T) {
	stub := newWordPressStub()
	stub.mux.HandleFunc("GET /wp-json/wp/v2/posts/42", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(storedPost))
	})
	stub.mux.HandleFunc("PATCH /wp-json/wp/v2/posts/42", func(w http.ResponseWriter, r *http.Request) {
		var patch map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))

		assert.Equal(t, map[string]any{"title": "A better title"}, patch)
		w.Write([]byte(storedPost))
	})

	engine := newTestEngine(t, stub)
	b := testBlog(t, "https://example.com/wp-json/wp/v2/posts/42")
	b.Meta.Title = "A better title"

	require.NoError(t, engine.Upsert(context.Background(), b))
	assert.Equal(t, []string{"PATCH /wp-json/wp/v2/posts/42"}, stub.writes)
}

func TestUpsert_RequiresSlugAndDate(t *testing.T) {
	engine := newTestEngine(t, newWordPressStub())

	b := testBlog(t, "")
	b.Meta.Slug = ""
	require.Error(t, engine.Upsert(context.Background(), b))

	b = testBlog(t, "")
	b.Meta.Date = nil
	require.Error(t, engine.Upsert(context.Background(), b))
}

func TestUpsert_UnknownCategoryFails(t *testing.T) {
	stub := newWordPressStub()
	stub.mux.HandleFunc("GET /wp-json/wp/v2/posts", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	engine := newTestEngine(t, stub)
	b := testBlog(t, "")
	b.Meta.Categories = []string{"rust"}

	err := engine.Upsert(context.Background(), b)
	require.ErrorIs(t, err, wordpress.ErrUnknownTerm)
	assert.Empty(t, stub.writes)
}

func TestImageSlug(t *testing.T) {
	assert.Equal(t, "my-post-architecture", imageSlug("my-post", "images/architecture.png"))
	assert.Equal(t, "my-post-some-chart", imageSlug("my-post", "images/some.chart.png"))
	assert.Equal(t, "my-post-banner", imageSlug("my-post", "banner.jpg"))
}

func TestUploadLocalImages_SkipsMissingFiles(t *testing.T) {
	stub := newWordPressStub()
	engine := newTestEngine(t, stub)

	b := testBlog(t, "")
	b.Content = "![missing](images/not-there.png)\n"

	require.NoError(t, engine.UploadLocalImages(context.Background(), b))
	assert.Empty(t, b.UploadedImages)
	assert.Empty(t, stub.writes)
}

func TestUploadLocalImages_RecordsRemoteURLs(t *testing.T) {
	stub := newWordPressStub()
	stub.mux.HandleFunc("GET /wp-json/wp/v2/media", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	stub.mux.HandleFunc("POST /wp-json/wp/v2/media", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "my-post-arch", r.URL.Query().Get("slug"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 901, "slug": "my-post-arch",
			"guid": {"rendered": "https://example.com/wp-content/uploads/2024/03/my-post-arch.png"}}`))
	})

	engine := newTestEngine(t, stub)

	b := testBlog(t, "")
	b.Content = "![diagram](images/arch.png)\n"
	require.NoError(t, os.MkdirAll(filepath.Join(b.Dir, "images"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(b.Dir, "images", "arch.png"), []byte("png"), 0o644))

	require.NoError(t, engine.UploadLocalImages(context.Background(), b))
	assert.Equal(t, map[string]string{
		"images/arch.png": "https://example.com/wp-content/uploads/2024/03/my-post-arch.png",
	}, b.UploadedImages)
}
