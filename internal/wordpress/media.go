package wordpress

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

// UploadsPathPrefix is the path under which WordPress serves media
// uploads. Image references outside it are not media-library assets.
const UploadsPathPrefix = "/wp-content/uploads/"

// MediaBySlug finds the media item stored under the given slug, or
// ErrNotFound. The API only supports free-text media search, so the
// results are filtered on an exact slug or title match.
func (c *Client) MediaBySlug(ctx context.Context, slug string) (Medium, error) {
	objects, err := c.List(ctx, "media", url.Values{"search": {slug}})
	if err != nil {
		return Medium{}, err
	}

	for _, obj := range objects {
		m := NewMedium(obj)
		if m.Slug() == slug || m.Title() == slug {
			return m, nil
		}
	}

	return Medium{}, ErrNotFound
}

// MediumByLink resolves the media item whose asset URL matches the
// given link. Only URLs owned by the endpoint with a media-upload path
// can resolve; anything else is ErrNotFound.
func (c *Client) MediumByLink(ctx context.Context, link *url.URL) (Medium, error) {
	if !c.endpoint.IsHostFor(link) || !strings.HasPrefix(link.Path, UploadsPathPrefix) {
		return Medium{}, ErrNotFound
	}

	stem := fileStem(path.Base(link.Path))

	objects, err := c.List(ctx, "media", url.Values{"search": {stem}})
	if err != nil {
		return Medium{}, err
	}

	for _, obj := range objects {
		m := NewMedium(obj)
		if m.URL() == link.String() {
			return m, nil
		}
	}

	return Medium{}, ErrNotFound
}

// fileStem returns the file name without its extension.
func fileStem(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}

// DownloadMedia retrieves the raw bytes of a media asset. The URL is
// normalized to the API host first.
func (c *Client) DownloadMedia(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint.NormalizeURL(rawURL), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawURL, err)
	}

	return content, nil
}

// UploadMedia uploads a local file as the media item with the given
// slug. The upload is idempotent and content-addressed: when a medium
// already exists under the slug with identical bytes, it is reused
// without any write call. When the bytes differ, the stale medium is
// force-deleted first, then the new content is uploaded under the same
// slug. WordPress media slugs cannot be overwritten in place, so
// delete-then-recreate is what keeps a stable slug-to-latest-asset
// mapping. At most one medium exists per slug at any time.
func (c *Client) UploadMedia(ctx context.Context, slug, localPath string, logger *slog.Logger) (Medium, error) {
	content, err := os.ReadFile(localPath)
	if err != nil {
		return Medium{}, fmt.Errorf("reading %s: %w", localPath, err)
	}

	stored, err := c.MediaBySlug(ctx, slug)

	switch {
	case err == nil:
		existing, err := c.DownloadMedia(ctx, stored.URL())
		if err != nil {
			return Medium{}, fmt.Errorf("comparing stored media %s: %w", slug, err)
		}

		if bytes.Equal(existing, content) {
			return stored, nil
		}

		logger.Info("force deleting stale media",
			slog.String("slug", slug),
			slog.Int64("id", stored.ID()),
		)

		if err := c.Delete(ctx, "media", strconv.FormatInt(stored.ID(), 10), true); err != nil {
			return Medium{}, fmt.Errorf("deleting stale media %s: %w", slug, err)
		}

	case IsNotFound(err):
		// First upload under this slug.

	default:
		return Medium{}, err
	}

	return c.createMedia(ctx, slug, filepath.Ext(localPath), content, logger)
}

// createMedia posts raw bytes as a new media item.
func (c *Client) createMedia(ctx context.Context, slug, ext string, content []byte, logger *slog.Logger) (Medium, error) {
	filename := slug + ext

	logger.Info("uploading media",
		slog.String("filename", filename),
		slog.Int("bytes", len(content)),
	)

	params := url.Values{"slug": {slug}, "title": {slug}}

	req, err := c.newRequest(ctx, http.MethodPost, c.resourceURL("media")+"?"+params.Encode(), bytes.NewReader(content))
	if err != nil {
		return Medium{}, err
	}

	req.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if ctype := mime.TypeByExtension(ext); ctype != "" {
		req.Header.Set("Content-Type", ctype)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Medium{}, fmt.Errorf("uploading media %s: %w", slug, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return Medium{}, statusError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Medium{}, fmt.Errorf("reading upload response: %w", err)
	}

	return NewMedium(body), nil
}
