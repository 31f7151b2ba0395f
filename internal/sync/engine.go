// Package sync orchestrates the bidirectional translation between
// local blog documents and remote WordPress posts.
package sync

import (
	"errors"
	"log/slog"

	"github.com/alexjbarnes/wordpress-sync/internal/wordpress"
)

// Data-integrity guards. Always fatal to the current item, never
// auto-resolved.
var (
	// ErrDuplicateSlug means a document without a guid collides with an
	// existing remote post of the same slug. Silently adopting an
	// unrelated post would be an overwrite, so the operation refuses.
	ErrDuplicateSlug = errors.New("a post with the same slug already exists")

	// ErrCrossHostGUID means a document's guid points at a different
	// host than the sync target.
	ErrCrossHostGUID = errors.New("guid is not stored on target host")
)

// Engine synchronizes documents against one endpoint. AuthorHint
// disambiguates author lookups that match multiple users (an author
// slug supplied by the operator).
type Engine struct {
	client     *wordpress.Client
	logger     *slog.Logger
	AuthorHint string
}

// NewEngine creates an engine for the given client.
func NewEngine(client *wordpress.Client, logger *slog.Logger) *Engine {
	return &Engine{
		client: client,
		logger: logger,
	}
}

// Client returns the engine's API client.
func (e *Engine) Client() *wordpress.Client { return e.client }
