package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/alexjbarnes/wordpress-sync/internal/blog"
	"github.com/alexjbarnes/wordpress-sync/internal/wordpress"
)

// prespanName preserves the pre-cleanup document when span corruption
// was found, so the original is never lost.
const prespanName = "index.prespan.md"

// renderedName keeps a copy of the remote rendered HTML alongside the
// Markdown, for eyeballing conversion fidelity.
const renderedName = "index.html"

// DownloadPost materializes a remote post as a local document under
// baseDir/<year>/<month>/<slug>/. An existing document at that path is
// loaded first so local-only metadata survives the refresh. The body
// is converted to Markdown, excess blank lines removed, owned remote
// image references pulled into images/ and rewritten to relative
// paths. When span corruption is found, the uncleaned version is kept
// as index.prespan.md next to the cleaned document.
func (e *Engine) DownloadPost(ctx context.Context, post wordpress.Post, baseDir string) (*blog.Blog, error) {
	date, err := post.Date()
	if err != nil {
		return nil, fmt.Errorf("post %d has no valid date: %w", post.ID(), err)
	}

	dir := filepath.Join(baseDir,
		fmt.Sprintf("%d", date.Year()),
		fmt.Sprintf("%02d", int(date.Month())),
		post.Slug(),
	)

	b, err := blog.Load(filepath.Join(dir, blog.DocumentName))
	if errors.Is(err, blog.ErrNotFound) {
		b = &blog.Blog{Dir: dir, Path: filepath.Join(dir, blog.DocumentName)}
	} else if err != nil {
		return nil, err
	}

	author, err := e.client.UserByID(ctx, idString(post.Author()))
	if err != nil {
		return nil, fmt.Errorf("resolving author %d: %w", post.Author(), err)
	}

	categories, err := e.client.TermSlugs(ctx, "categories", post.Categories())
	if err != nil {
		return nil, err
	}

	b.Meta.Title = post.Title()
	b.Meta.Author = author.Name()
	b.Meta.GUID = post.GUID()
	b.Meta.Categories = categories
	b.Meta.Date = &date
	b.Meta.Slug = post.Slug()
	b.Meta.Status = post.Status()

	if d := post.OGDescription(); d != "" {
		b.Meta.OG.Description = d
	}

	featuredURL, err := e.downloadFeaturedMedia(ctx, post, b)
	if err != nil {
		return nil, err
	}

	if err := e.downloadOGImage(ctx, post, b, featuredURL); err != nil {
		return nil, err
	}

	if err := b.SetContentFromHTML(post.Content()); err != nil {
		return nil, err
	}

	prefix := ""
	if b.Meta.Slug != "" {
		prefix = b.Meta.Slug + "-"
	}

	if err := e.DownloadRemoteImages(ctx, b, prefix); err != nil {
		return nil, err
	}

	b.RemoveEmptyLines()

	e.logger.Info("writing blog", slog.String("path", b.Path))

	if err := b.Save(); err != nil {
		return nil, err
	}

	if err := os.WriteFile(filepath.Join(dir, renderedName), []byte(post.Content()), 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", renderedName, err)
	}

	if b.HasSpanCorruption() {
		if err := os.Rename(b.Path, filepath.Join(dir, prespanName)); err != nil {
			return nil, fmt.Errorf("preserving pre-span document: %w", err)
		}

		b.RemoveSpanTags()

		if err := b.Save(); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// downloadFeaturedMedia pulls the post's featured image to the
// document's banner path, defaulting the path when the document does
// not name one yet. Returns the asset URL for og-image deduplication.
func (e *Engine) downloadFeaturedMedia(ctx context.Context, post wordpress.Post, b *blog.Blog) (string, error) {
	if post.FeaturedMedia() == 0 {
		return "", nil
	}

	raw, err := e.client.Get(ctx, "media", idString(post.FeaturedMedia()), nil)
	if err != nil {
		return "", fmt.Errorf("fetching featured media %d: %w", post.FeaturedMedia(), err)
	}

	medium := wordpress.NewMedium(raw)

	u, err := url.Parse(medium.URL())
	if err != nil {
		return "", fmt.Errorf("parsing media url %q: %w", medium.URL(), err)
	}

	if b.Meta.Image == "" {
		b.Meta.Image = path.Join(imagesDir, "banner"+path.Ext(u.Path))
	}

	if err := e.downloadMedia(ctx, u, b.ImagePath()); err != nil {
		return "", err
	}

	return medium.URL(), nil
}

// downloadOGImage pulls the post's Open-Graph image when it is owned
// by the endpoint and is not just the featured image again.
func (e *Engine) downloadOGImage(ctx context.Context, post wordpress.Post, b *blog.Blog, featuredURL string) error {
	var ogImage *url.URL

	for _, u := range post.OGImages() {
		if e.client.Endpoint().IsHostFor(u) {
			ogImage = u
			break
		}
	}

	if ogImage == nil || ogImage.String() == featuredURL {
		return nil
	}

	if b.Meta.OG.Image == "" {
		b.Meta.OG.Image = path.Join(imagesDir, "og-banner"+path.Ext(ogImage.Path))
	}

	return e.downloadMedia(ctx, ogImage, b.OGImagePath())
}
