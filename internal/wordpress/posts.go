package wordpress

import (
	"context"
	"net/url"
)

// Posts lists posts matching the query as Post views.
func (c *Client) Posts(ctx context.Context, query url.Values) ([]Post, error) {
	objects, err := c.List(ctx, "posts", query)
	if err != nil {
		return nil, err
	}

	posts := make([]Post, 0, len(objects))
	for _, obj := range objects {
		posts = append(posts, NewPost(obj, c.seo))
	}

	return posts, nil
}

// PostByID retrieves a single post in edit context, which exposes the
// raw (unrendered) content alongside the rendered form.
func (c *Client) PostByID(ctx context.Context, id string) (Post, error) {
	raw, err := c.Get(ctx, "posts", id, url.Values{"context": {"edit"}})
	if err != nil {
		return Post{}, err
	}

	return NewPost(raw, c.seo), nil
}

// PostByGUID retrieves the post identified by its guid self-link in
// edit context.
func (c *Client) PostByGUID(ctx context.Context, guid string) (Post, error) {
	raw, err := c.GetByURL(ctx, guid, url.Values{"context": {"edit"}})
	if err != nil {
		return Post{}, err
	}

	return NewPost(raw, c.seo), nil
}

// PostBySlug finds the non-trashed post with exactly the given slug,
// or ErrNotFound. The API's slug filter is a prefix search, so the
// results are checked for an exact match.
func (c *Client) PostBySlug(ctx context.Context, slug string) (Post, error) {
	posts, err := c.Posts(ctx, url.Values{
		"status": {"draft,publish,pending"},
		"slug":   {slug},
	})
	if err != nil {
		return Post{}, err
	}

	for _, p := range posts {
		if p.Slug() == slug {
			return p, nil
		}
	}

	return Post{}, ErrNotFound
}

// CreatePost creates a post from the given properties.
func (c *Client) CreatePost(ctx context.Context, properties map[string]any) (Post, error) {
	raw, err := c.Create(ctx, "posts", properties)
	if err != nil {
		return Post{}, err
	}

	return NewPost(raw, c.seo), nil
}

// UpdatePost partially updates the post at the given guid.
func (c *Client) UpdatePost(ctx context.Context, guid string, properties map[string]any) (Post, error) {
	raw, err := c.Update(ctx, guid, properties)
	if err != nil {
		return Post{}, err
	}

	return NewPost(raw, c.seo), nil
}
