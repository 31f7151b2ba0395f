package sync

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/alexjbarnes/wordpress-sync/internal/blog"
	"github.com/alexjbarnes/wordpress-sync/internal/wordpress"
)

// Upsert synchronizes one document to the remote endpoint. A document
// without a guid is unpublished: it is created remotely and the
// returned guid is persisted immediately, making the transition to
// published irreversible within a run. A document with a guid takes
// the update path, where every property is diffed against the stored
// post and only changes are pushed. Image sync follows the body in
// fixed order: Open-Graph banner first, then featured banner.
func (e *Engine) Upsert(ctx context.Context, b *blog.Blog) error {
	if b.Meta.Slug == "" {
		return fmt.Errorf("document %s has no slug", b.Path)
	}

	if b.Meta.Date == nil {
		return fmt.Errorf("document %s has no date", b.Path)
	}

	var (
		post wordpress.Post
		err  error
	)

	if b.Meta.GUID == "" {
		post, err = e.create(ctx, b)
	} else {
		post, err = e.update(ctx, b)
	}

	if err != nil {
		return err
	}

	return e.syncImages(ctx, b, post)
}

// create handles the unpublished state: refuse on a slug collision,
// otherwise create the post and persist the assigned guid before
// anything else can fail. A crash after this point is recoverable by
// re-running; the next run sees the guid and takes the update path.
func (e *Engine) create(ctx context.Context, b *blog.Blog) (wordpress.Post, error) {
	existing, err := e.client.PostBySlug(ctx, b.Meta.Slug)
	if err == nil {
		return wordpress.Post{}, fmt.Errorf("%w: %s", ErrDuplicateSlug, existing.Link())
	}

	if !wordpress.IsNotFound(err) {
		return wordpress.Post{}, fmt.Errorf("checking slug %s: %w", b.Meta.Slug, err)
	}

	properties, err := e.translate(ctx, b)
	if err != nil {
		return wordpress.Post{}, err
	}

	post, err := e.client.CreatePost(ctx, properties)
	if err != nil {
		return wordpress.Post{}, fmt.Errorf("creating post %s: %w", b.Meta.Slug, err)
	}

	b.Meta.GUID = post.GUID()
	if err := b.Save(); err != nil {
		return wordpress.Post{}, fmt.Errorf("persisting guid: %w", err)
	}

	e.logger.Info("uploaded blog as new post",
		slog.String("title", b.Meta.Title),
		slog.String("link", post.Link()),
	)

	return post, nil
}

// update handles the published state: verify guid ownership, fetch the
// stored post in edit context, and push only the properties that
// actually changed. Content is compared against the stored raw content
// so an unchanged document causes no revision churn.
func (e *Engine) update(ctx context.Context, b *blog.Blog) (wordpress.Post, error) {
	if !e.client.Endpoint().IsHostForURL(b.Meta.GUID) {
		return wordpress.Post{}, fmt.Errorf("%w: %s is not on %s",
			ErrCrossHostGUID, b.Meta.GUID, e.client.Endpoint().Host)
	}

	post, err := e.client.PostByGUID(ctx, b.Meta.GUID)
	if err != nil {
		return wordpress.Post{}, fmt.Errorf("fetching %s: %w", b.Meta.GUID, err)
	}

	properties, err := e.translate(ctx, b)
	if err != nil {
		return wordpress.Post{}, err
	}

	changed := e.changedProperties(post, properties)
	if len(changed) == 0 {
		e.logger.Info("post is up to date", slog.String("slug", b.Meta.Slug))
		return post, nil
	}

	post, err = e.client.UpdatePost(ctx, b.Meta.GUID, changed)
	if err != nil {
		return wordpress.Post{}, fmt.Errorf("updating %s: %w", b.Meta.GUID, err)
	}

	e.logger.Info("updated blog",
		slog.String("title", b.Meta.Title),
		slog.String("link", post.Link()),
	)

	return post, nil
}

// translate builds the full remote property set for a document:
// uploads local images, renders the body, and resolves the author and
// category slugs to their numeric ids.
func (e *Engine) translate(ctx context.Context, b *blog.Blog) (map[string]any, error) {
	author, err := e.client.UniqueUserByName(ctx, b.Meta.Author, b.Meta.Email, e.AuthorHint, e.logger)
	if err != nil {
		return nil, fmt.Errorf("resolving author: %w", err)
	}

	if err := e.UploadLocalImages(ctx, b); err != nil {
		return nil, err
	}

	content, err := b.Rendered()
	if err != nil {
		return nil, err
	}

	categories, err := e.client.TermIDs(ctx, "categories", b.Meta.Categories)
	if err != nil {
		return nil, err
	}

	properties := map[string]any{
		"title":      b.Meta.Title,
		"slug":       b.Meta.Slug,
		"author":     author.ID(),
		"content":    content,
		"format":     "standard",
		"status":     b.Status(),
		"categories": categories,
	}

	for k, v := range wordpress.DateProperties(*b.Meta.Date) {
		properties[k] = v
	}

	if b.Meta.OG.Description != "" {
		for k, v := range e.client.SEO().DescriptionProperties(b.Meta.OG.Description) {
			properties[k] = v
		}
	}

	return properties, nil
}

// changedProperties diffs the translated property set against the
// stored post and keeps only the properties whose target value
// differs. An empty result means the update can be skipped entirely.
func (e *Engine) changedProperties(post wordpress.Post, properties map[string]any) map[string]any {
	changed := map[string]any{}

	if content := properties["content"].(string); content != post.RawContent() {
		changed["content"] = content
		e.logContentDiff(post.RawContent(), content)
	}

	if title := properties["title"].(string); title != post.Title() {
		changed["title"] = title
	}

	if slug := properties["slug"].(string); slug != post.Slug() {
		changed["slug"] = slug
	}

	if status := properties["status"].(string); status != post.Status() {
		changed["status"] = status
	}

	if author := properties["author"].(int64); author != post.Author() {
		changed["author"] = author
	}

	if categories := properties["categories"].([]int64); !sameIDs(categories, post.Categories()) {
		changed["categories"] = categories
	}

	if date, err := post.Date(); err != nil || properties["date_gmt"].(string) != date.UTC().Format("2006-01-02T15:04:05") {
		changed["date"] = properties["date"]
		changed["date_gmt"] = properties["date_gmt"]
	}

	if meta, ok := properties["meta"]; ok {
		if post.OGDescription() != metaDescription(meta) {
			changed["meta"] = meta
		}
	}

	return changed
}

// metaDescription digs the description value back out of a meta patch
// for comparison against the stored post.
func metaDescription(meta any) string {
	m, ok := meta.(map[string]any)
	if !ok {
		return ""
	}

	for _, v := range m {
		if s, ok := v.(string); ok {
			return s
		}
	}

	return ""
}

// logContentDiff logs a character diff of the stored vs translated
// content at debug level, for diagnosing unexpected updates.
func (e *Engine) logContentDiff(old, updated string) {
	if !e.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(old, updated, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	e.logger.Debug("content changed", slog.String("diff", dmp.DiffPrettyText(diffs)))
}

func sameIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// syncImages pushes the document's banner images after the body, each
// compared against the post's current metadata so an unchanged image
// causes no API write. Open-Graph banner first, featured banner
// second.
func (e *Engine) syncImages(ctx context.Context, b *blog.Blog, post wordpress.Post) error {
	if path := b.OGImagePath(); path != "" {
		medium, err := e.client.UploadMedia(ctx, b.Meta.Slug+"-og-banner", path, e.logger)
		if err != nil {
			return fmt.Errorf("uploading og banner: %w", err)
		}

		if !hasOGImage(post, medium.URL()) {
			e.logger.Info("updating opengraph image", slog.String("url", medium.URL()))

			patch := e.client.SEO().OGImageProperties(medium.URL())
			if _, err := e.client.UpdatePost(ctx, b.Meta.GUID, patch); err != nil {
				return fmt.Errorf("patching og image: %w", err)
			}
		}
	}

	if path := b.ImagePath(); path != "" {
		medium, err := e.client.UploadMedia(ctx, b.Meta.Slug+"-banner", path, e.logger)
		if err != nil {
			return fmt.Errorf("uploading banner: %w", err)
		}

		if post.FeaturedMedia() != medium.ID() {
			e.logger.Info("updating featured media", slog.Int64("id", medium.ID()))

			patch := map[string]any{"featured_media": medium.ID()}
			if _, err := e.client.UpdatePost(ctx, b.Meta.GUID, patch); err != nil {
				return fmt.Errorf("patching featured media: %w", err)
			}
		}
	}

	return nil
}

// hasOGImage reports whether the post already advertises the given
// Open-Graph image URL.
func hasOGImage(post wordpress.Post, url string) bool {
	for _, u := range post.OGImages() {
		if u.String() == url {
			return true
		}
	}

	return false
}

// idString formats a numeric id for resource paths.
func idString(id int64) string { return strconv.FormatInt(id, 10) }
