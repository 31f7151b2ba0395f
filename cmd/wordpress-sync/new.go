package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alexjbarnes/wordpress-sync/internal/banner"
	"github.com/alexjbarnes/wordpress-sync/internal/blog"
)

func newNewCmd() *cobra.Command {
	var (
		title    string
		subtitle string
		author   string
		image    string
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "create a skeleton blog",
		Long: `Creates a draft blog in a directory named after the slugified title,
dated one week out. When an image URL or path is given it is fitted to
the 1200x630 Open-Graph size and stored as the banner.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			logger := newLogger()

			b, err := blog.New(".", title, subtitle, author)
			if err != nil {
				return err
			}

			if image != "" {
				rel, err := fetchBanner(image, b.Dir, logger)
				if err != nil {
					return err
				}
				b.Meta.Image = rel
			}

			if err := b.Save(); err != nil {
				return err
			}

			logger.Info("created blog", slog.String("path", b.Path))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "of the blog")
	cmd.Flags().StringVar(&subtitle, "subtitle", "", "of the blog")
	cmd.Flags().StringVar(&author, "author", "", "of the blog")
	cmd.Flags().StringVar(&image, "image", "", "URL or path of the banner image")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("subtitle")
	_ = cmd.MarkFlagRequired("author")

	return cmd
}

// fetchBanner copies the image into dir/images, fits it to the
// Open-Graph size and returns its path relative to dir.
func fetchBanner(ref, dir string, logger *slog.Logger) (string, error) {
	src, ext, err := fetchImage(ref)
	if err != nil {
		return "", err
	}
	defer os.Remove(src)

	path, err := banner.Generate(src, filepath.Join(dir, "images", "banner"+ext), logger)
	if err != nil {
		return "", err
	}

	return filepath.Rel(dir, path)
}

// fetchImage downloads or copies the image to a temporary file and
// returns the file path and the source extension.
func fetchImage(ref string) (string, string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", "", fmt.Errorf("parsing image reference %q: %w", ref, err)
	}

	var body io.ReadCloser
	switch u.Scheme {
	case "http", "https":
		resp, err := http.Get(ref)
		if err != nil {
			return "", "", fmt.Errorf("fetching %s: %w", ref, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return "", "", fmt.Errorf("fetching %s: status %d", ref, resp.StatusCode)
		}
		body = resp.Body
	case "", "file":
		f, err := os.Open(u.Path)
		if err != nil {
			return "", "", err
		}
		body = f
	default:
		return "", "", fmt.Errorf("unsupported image scheme %q", u.Scheme)
	}
	defer body.Close()

	ext := filepath.Ext(u.Path)
	if ext == "" {
		ext = ".jpg"
	}

	tmp, err := os.CreateTemp("", "wordpress-sync-banner-*"+ext)
	if err != nil {
		return "", "", err
	}

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", "", err
	}

	return tmp.Name(), ext, nil
}
