package sync

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/alexjbarnes/wordpress-sync/internal/blog"
)

// imagesDir is the subdirectory of a blog directory that local image
// assets live in.
const imagesDir = "images"

// imageSlugSeparators collapses path separators and dots when deriving
// a media slug from an image path stem.
var imageSlugSeparators = regexp.MustCompile(`[/.\\]+`)

// imageSlug derives the remote media slug for a local image of a
// document: the document slug plus the sanitized path stem.
func imageSlug(docSlug, ref string) string {
	stem := strings.TrimSuffix(filepath.Base(ref), filepath.Ext(ref))
	stem = strings.Trim(stem, "-")

	return docSlug + "-" + imageSlugSeparators.ReplaceAllString(stem, "-")
}

// UploadLocalImages uploads every local image the document references
// and records the resulting remote URLs in the document's upload map,
// which Rendered consumes. References to files that do not exist are
// logged and left alone; higher-level validation catches them.
func (e *Engine) UploadLocalImages(ctx context.Context, b *blog.Blog) error {
	b.UploadedImages = map[string]string{}

	for _, ref := range b.LocalImageRefs() {
		localPath := filepath.Join(b.Dir, ref)
		if _, err := os.Stat(localPath); err != nil {
			e.logger.Warn("referenced image does not exist", slog.String("path", localPath))
			continue
		}

		medium, err := e.client.UploadMedia(ctx, imageSlug(b.Meta.Slug, ref), localPath, e.logger)
		if err != nil {
			return fmt.Errorf("uploading image %s: %w", ref, err)
		}

		b.UploadedImages[ref] = medium.URL()
	}

	return nil
}

// DownloadRemoteImages pulls every remote image owned by the endpoint
// into the document's images directory and rewrites the Markdown
// references to the relative local paths, preserving alt text and
// captions. slugPrefix is the upload naming convention to strip from
// downloaded file names (usually "<slug>-").
func (e *Engine) DownloadRemoteImages(ctx context.Context, b *blog.Blog, slugPrefix string) error {
	downloaded := map[string]string{}

	for _, ref := range b.RemoteImageRefs(e.client.Endpoint()) {
		name := path.Base(ref.Path)
		if slugPrefix != "" {
			for strings.HasPrefix(name, slugPrefix) {
				name = strings.TrimPrefix(name, slugPrefix)
			}
		}

		rel := path.Join(imagesDir, name)
		if err := e.downloadMedia(ctx, ref, filepath.Join(b.Dir, imagesDir, name)); err != nil {
			return err
		}

		downloaded[ref.String()] = rel
	}

	b.Content = blog.RewriteImageRefs(b.Content, downloaded)

	return nil
}

// downloadMedia fetches one asset and writes it to disk.
func (e *Engine) downloadMedia(ctx context.Context, u *url.URL, dest string) error {
	e.logger.Info("downloading image",
		slog.String("url", u.String()),
		slog.String("as", filepath.Base(dest)),
	)

	raw, err := e.client.DownloadMedia(ctx, u.String())
	if err != nil {
		return fmt.Errorf("downloading %s: %w", u, err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
	}

	if err := os.WriteFile(dest, raw, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}

	return nil
}
