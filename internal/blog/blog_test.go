package blog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `---
title: Shipping faster
subtitle: with less ceremony
author: Mark van Holsteijn
date: 2024-03-01T10:30:00+01:00
slug: shipping-faster
status: publish
categories:
    - cloud
    - golang
image: images/banner.png
og:
    image: images/og-banner.jpg
    description: ship faster with less ceremony
guid: https://example.com/wp-json/wp/v2/posts/4711
---

The body of the post.
`

func writeDocument(t *testing.T, content string) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "shipping-faster")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	path := filepath.Join(dir, DocumentName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoad_ParsesFrontmatterAndBody(t *testing.T) {
	path := writeDocument(t, sampleDocument)

	b, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Shipping faster", b.Meta.Title)
	assert.Equal(t, "with less ceremony", b.Meta.Subtitle)
	assert.Equal(t, "Mark van Holsteijn", b.Meta.Author)
	assert.Equal(t, "shipping-faster", b.Meta.Slug)
	assert.Equal(t, StatusPublish, b.Status())
	assert.Equal(t, []string{"cloud", "golang"}, b.Meta.Categories)
	assert.Equal(t, "https://example.com/wp-json/wp/v2/posts/4711", b.Meta.GUID)
	assert.Equal(t, "ship faster with less ceremony", b.Meta.OG.Description)
	assert.Equal(t, "The body of the post.\n", b.Content)
	assert.Equal(t, filepath.Dir(path), b.Dir)

	require.NotNil(t, b.Meta.Date)
	assert.Equal(t, 2024, b.Meta.Date.Year())
}

func TestLoad_MissingFileIsNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope", DocumentName))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStatus_DefaultsToDraft(t *testing.T) {
	b := &Blog{}
	assert.Equal(t, StatusDraft, b.Status())
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "my-post")
	date := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	b := &Blog{
		Dir:  dir,
		Path: filepath.Join(dir, DocumentName),
		Meta: Frontmatter{
			Title:      "My post",
			Author:     "Jane Doe",
			Slug:       "my-post",
			Status:     StatusDraft,
			Date:       &date,
			Categories: []string{"golang"},
		},
		Content: "Hello.\n",
	}
	require.NoError(t, b.Save())

	loaded, err := Load(b.Path)
	require.NoError(t, err)

	assert.Equal(t, b.Meta.Title, loaded.Meta.Title)
	assert.Equal(t, b.Meta.Slug, loaded.Meta.Slug)
	assert.Equal(t, b.Meta.Categories, loaded.Meta.Categories)
	assert.Equal(t, b.Content, loaded.Content)
	require.NotNil(t, loaded.Meta.Date)
	assert.True(t, loaded.Meta.Date.Equal(date))
}

func TestSave_OmitsEmptyKeys(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "bare")
	b := &Blog{
		Dir:     dir,
		Path:    filepath.Join(dir, DocumentName),
		Meta:    Frontmatter{Title: "Bare"},
		Content: "body\n",
	}
	require.NoError(t, b.Save())

	data, err := os.ReadFile(b.Path)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "guid")
	assert.NotContains(t, string(data), "email")
	assert.NotContains(t, string(data), "og:")
}

func TestImagePaths(t *testing.T) {
	b := &Blog{Dir: "/blogs/my-post"}
	assert.Empty(t, b.ImagePath())
	assert.Empty(t, b.OGImagePath())

	b.Meta.Image = "images/banner.png"
	b.Meta.OG.Image = "images/og-banner.jpg"
	assert.Equal(t, filepath.Join("/blogs/my-post", "images", "banner.png"), b.ImagePath())
	assert.Equal(t, filepath.Join("/blogs/my-post", "images", "og-banner.jpg"), b.OGImagePath())
}

func TestFindAll_ReturnsBlogDirectories(t *testing.T) {
	root := t.TempDir()

	for _, dir := range []string{"2024/03/post-a", "2024/04/post-b"} {
		full := filepath.Join(root, dir)
		require.NoError(t, os.MkdirAll(full, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(full, DocumentName), []byte("---\n---\n"), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(root, "2024/05/empty"), 0o755))

	dirs, err := FindAll(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "2024/03/post-a"),
		filepath.Join(root, "2024/04/post-b"),
	}, dirs)
}
