package blog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goliatone/go-slug"
)

// ogDescriptionPlaceholder reminds the author to fill in the SEO
// description before publishing.
const ogDescriptionPlaceholder = "TODO: add short SEO description here"

// New creates a fresh draft document in a directory named after the
// slugified title, dated one week out at midnight. The directory must
// not exist yet. The caller still has to Save.
func New(baseDir, title, subtitle, author string) (*Blog, error) {
	s, err := slug.Normalize(title)
	if err != nil {
		return nil, fmt.Errorf("deriving slug from %q: %w", title, err)
	}

	dir := filepath.Join(baseDir, s)
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("a directory named %q already exists", s)
	}

	date := time.Now().AddDate(0, 0, 7)
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	return &Blog{
		Dir:  dir,
		Path: filepath.Join(dir, DocumentName),
		Meta: Frontmatter{
			Title:    title,
			Subtitle: subtitle,
			Author:   author,
			Slug:     s,
			Status:   StatusDraft,
			Date:     &date,
			OG:       OG{Description: ogDescriptionPlaceholder},
		},
	}, nil
}
