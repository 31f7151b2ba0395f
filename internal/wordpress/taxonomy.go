package wordpress

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// taxonomyMap caches the slug/id mapping of one taxonomy resource for
// the lifetime of a client. Populated lazily on first access, read-only
// afterwards, never invalidated mid-run.
type taxonomyMap struct {
	bySlug map[string]int64
	byID   map[int64]string
}

// taxonomy returns the cached map for a taxonomy resource, fetching
// all terms on first access.
func (c *Client) taxonomy(ctx context.Context, resource string) (*taxonomyMap, error) {
	if m, ok := c.taxonomies[resource]; ok {
		return m, nil
	}

	objects, err := c.List(ctx, resource, nil)
	if err != nil {
		return nil, fmt.Errorf("loading taxonomy %s: %w", resource, err)
	}

	m := &taxonomyMap{
		bySlug: make(map[string]int64, len(objects)),
		byID:   make(map[int64]string, len(objects)),
	}

	for _, obj := range objects {
		term := gjson.ParseBytes(obj)
		slug := term.Get("slug").String()
		id := term.Get("id").Int()

		m.bySlug[slug] = id
		m.byID[id] = slug
	}

	c.taxonomies[resource] = m

	return m, nil
}

// TermID translates a term slug to its numeric id. An unknown slug
// fails fast; the error enumerates the valid slugs so the operator can
// correct the document, never silently dropping the term.
func (c *Client) TermID(ctx context.Context, taxonomy, slug string) (int64, error) {
	m, err := c.taxonomy(ctx, taxonomy)
	if err != nil {
		return 0, err
	}

	id, ok := m.bySlug[slug]
	if !ok {
		valid := make([]string, 0, len(m.bySlug))
		for s := range m.bySlug {
			valid = append(valid, s)
		}

		sort.Strings(valid)

		return 0, fmt.Errorf("%w: invalid %s term %q, try one of:\n %s",
			ErrUnknownTerm, taxonomy, slug, strings.Join(valid, ",\n "))
	}

	return id, nil
}

// TermSlug translates a numeric term id back to its slug. Unknown ids
// resolve to the empty string; downloads tolerate terms that were
// deleted remotely after the post referenced them.
func (c *Client) TermSlug(ctx context.Context, taxonomy string, id int64) (string, error) {
	m, err := c.taxonomy(ctx, taxonomy)
	if err != nil {
		return "", err
	}

	return m.byID[id], nil
}

// TermIDs translates a list of term slugs, failing on the first
// unknown one.
func (c *Client) TermIDs(ctx context.Context, taxonomy string, slugs []string) ([]int64, error) {
	ids := make([]int64, 0, len(slugs))

	for _, slug := range slugs {
		id, err := c.TermID(ctx, taxonomy, slug)
		if err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, nil
}

// TermSlugs translates a list of term ids, skipping ids that no longer
// resolve.
func (c *Client) TermSlugs(ctx context.Context, taxonomy string, ids []int64) ([]string, error) {
	slugs := make([]string, 0, len(ids))

	for _, id := range ids {
		slug, err := c.TermSlug(ctx, taxonomy, id)
		if err != nil {
			return nil, err
		}

		if slug != "" {
			slugs = append(slugs, slug)
		}
	}

	return slugs, nil
}
