package wordpress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// Users lists users matching the query.
func (c *Client) Users(ctx context.Context, query url.Values) ([]User, error) {
	objects, err := c.List(ctx, "users", query)
	if err != nil {
		return nil, err
	}

	users := make([]User, 0, len(objects))
	for _, obj := range objects {
		users = append(users, NewUser(obj))
	}

	return users, nil
}

// UserByID retrieves a single user. The id may be "me" for the
// authenticated user.
func (c *Client) UserByID(ctx context.Context, id string) (User, error) {
	raw, err := c.Get(ctx, "users", id, nil)
	if err != nil {
		return User{}, err
	}

	return NewUser(raw), nil
}

// UniqueUserByName resolves a display name to exactly one user.
//
// The authenticated user is checked first: an exact name match avoids
// a search round-trip and the elevated permission the search needs.
// Otherwise the name is searched in edit context (which exposes email
// addresses); a permission denial downgrades to a plain search.
// Multiple matches are disambiguated by the author slug hint, then by
// a case-insensitive email match. A remaining ambiguity fails with the
// candidates listed so the operator can supply a hint.
func (c *Client) UniqueUserByName(ctx context.Context, name, emailHint, authorHint string, logger *slog.Logger) (User, error) {
	if me, err := c.UserByID(ctx, "me"); err == nil && me.Name() == name {
		return me, nil
	}

	query := url.Values{"search": {name}, "context": {"edit"}}

	users, err := c.Users(ctx, query)
	if errors.Is(err, ErrPermissionDenied) {
		logger.Warn("permission denied to read user email addresses", slog.String("name", name))

		users, err = c.Users(ctx, url.Values{"search": {name}})
	}

	if err != nil {
		return User{}, err
	}

	switch len(users) {
	case 0:
		return User{}, fmt.Errorf("author %q not found on %s: %w", name, c.endpoint.Host, ErrNotFound)
	case 1:
		return users[0], nil
	}

	for _, u := range users {
		if authorHint != "" && u.Slug() == authorHint {
			return u, nil
		}

		if authorHint == "" && emailHint != "" && u.Email() != "" &&
			strings.EqualFold(u.Email(), emailHint) {
			return u, nil
		}
	}

	candidates := make([]string, 0, len(users))
	for _, u := range users {
		candidates = append(candidates, fmt.Sprintf("%s / %s", u.Slug(), u.Email()))
	}

	return User{}, fmt.Errorf("%w: %d authors named %q (possible: %s)",
		ErrAmbiguousAuthor, len(users), name, strings.Join(candidates, ", "))
}
