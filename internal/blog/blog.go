// Package blog owns the on-disk front-matter document and mediates all
// content transformations between the local Markdown representation
// and remote HTML.
package blog

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when loading a document that does not exist.
var ErrNotFound = errors.New("blog not found")

// DocumentName is the file name of a blog document inside its
// directory.
const DocumentName = "index.md"

// Publication statuses a document may carry.
const (
	StatusDraft   = "draft"
	StatusPublish = "publish"
	StatusPending = "pending"
)

// OG is the Open-Graph front-matter block.
type OG struct {
	Image       string `yaml:"image,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Frontmatter holds the recognized metadata keys of a blog document.
// Slug is the stable key across local and remote; GUID is the opaque
// remote resource locator assigned on first publish.
type Frontmatter struct {
	Title      string     `yaml:"title,omitempty"`
	Subtitle   string     `yaml:"subtitle,omitempty"`
	Author     string     `yaml:"author,omitempty"`
	Email      string     `yaml:"email,omitempty"`
	Date       *time.Time `yaml:"date,omitempty"`
	Slug       string     `yaml:"slug,omitempty"`
	Status     string     `yaml:"status,omitempty"`
	Categories []string   `yaml:"categories,omitempty"`
	Image      string     `yaml:"image,omitempty"`
	OG         OG         `yaml:"og,omitempty"`
	Excerpt    string     `yaml:"excerpt,omitempty"`
	GUID       string     `yaml:"guid,omitempty"`
	Brand      string     `yaml:"brand,omitempty"`
}

// Blog is a front-matter document identified by its directory. Image
// paths in the metadata are relative to Dir. UploadedImages maps local
// image references to their remote asset URLs for the current run; it
// is populated by the image upload step and consumed by Rendered.
type Blog struct {
	Dir     string
	Path    string
	Meta    Frontmatter
	Content string

	UploadedImages map[string]string
}

// Load reads and parses the document at path. A missing file is
// ErrNotFound; batch callers skip the item, single-item callers abort.
func Load(path string) (*Blog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}

		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	b := &Blog{
		Path: path,
		Dir:  filepath.Dir(path),
	}

	body, err := frontmatter.Parse(bytes.NewReader(data), &b.Meta)
	if err != nil {
		return nil, fmt.Errorf("parsing front matter of %s: %w", path, err)
	}

	b.Content = string(body)

	return b, nil
}

// Status returns the publication status, defaulting to draft.
func (b *Blog) Status() string {
	if b.Meta.Status == "" {
		return StatusDraft
	}

	return b.Meta.Status
}

// ImagePath returns the absolute path of the banner image, empty when
// none is set.
func (b *Blog) ImagePath() string {
	if b.Meta.Image == "" {
		return ""
	}

	return filepath.Join(b.Dir, b.Meta.Image)
}

// OGImagePath returns the absolute path of the Open-Graph banner,
// empty when none is set.
func (b *Blog) OGImagePath() string {
	if b.Meta.OG.Image == "" {
		return ""
	}

	return filepath.Join(b.Dir, b.Meta.OG.Image)
}

// Save serializes front matter and body back to disk, creating the
// containing directory if absent. The write replaces the whole file
// atomically; a guid assigned during sync must never be lost to a
// partial write.
func (b *Blog) Save() error {
	if err := os.MkdirAll(b.Dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", b.Dir, err)
	}

	meta, err := yaml.Marshal(&b.Meta)
	if err != nil {
		return fmt.Errorf("marshalling front matter: %w", err)
	}

	var buf bytes.Buffer

	buf.WriteString("---\n")
	buf.Write(meta)
	buf.WriteString("---\n\n")
	buf.WriteString(b.Content)

	if err := atomic.WriteFile(b.Path, &buf); err != nil {
		return fmt.Errorf("writing %s: %w", b.Path, err)
	}

	return nil
}

// FindAll walks root and returns the directories containing a blog
// document, for batch commands operating on a tree of blogs.
func FindAll(root string) ([]string, error) {
	var dirs []string

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && d.Name() == DocumentName {
			dirs = append(dirs, filepath.Dir(path))
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	return dirs, nil
}
