package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alexjbarnes/wordpress-sync/internal/banner"
	"github.com/alexjbarnes/wordpress-sync/internal/blog"
	"github.com/alexjbarnes/wordpress-sync/internal/email"
	"github.com/alexjbarnes/wordpress-sync/internal/wordpress"
)

// relinking a tree of blogs to the posts on another host.
func newChangeGUIDCmd() *cobra.Command {
	var host string

	cmd := &cobra.Command{
		Use:   "change-guid [flags] DIR",
		Short: "point blogs at the matching posts on another host",
		Long: `Looks up each blog under DIR by slug on the WordPress host and stores
the found post's guid in the document, so later uploads update that
host's post.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, logger, err := newEngine(host)
			if err != nil {
				return err
			}

			return forEachBlog(args[0], func(b *blog.Blog) error {
				post, err := engine.Client().PostBySlug(cmd.Context(), b.Meta.Slug)
				if errors.Is(err, wordpress.ErrNotFound) {
					logger.Warn("blog not found on host",
						slog.String("slug", b.Meta.Slug),
						slog.String("host", host),
					)
					return nil
				}
				if err != nil {
					return err
				}

				logger.Info("relinking blog",
					slog.String("slug", b.Meta.Slug),
					slog.String("guid", post.GUID()),
				)
				b.Meta.GUID = post.GUID()
				return b.Save()
			})
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "wordpress host to change to")
	_ = cmd.MarkFlagRequired("host")

	return cmd
}

func newRegenerateBannersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "regenerate-banners DIR",
		Short: "refit Open-Graph banners from the blog banners",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			logger := newLogger()

			return forEachBlog(args[0], func(b *blog.Blog) error {
				if b.Meta.Image == "" {
					logger.Warn("blog has no banner", slog.String("path", b.Path))
					return nil
				}

				if b.Meta.OG.Image == "" {
					b.Meta.OG.Image = path.Join("images", "og-banner.jpg")
				}

				out, err := banner.Generate(b.ImagePath(), b.OGImagePath(), logger)
				if err != nil {
					return fmt.Errorf("regenerating banner for %s: %w", b.Path, err)
				}

				rel, err := filepath.Rel(b.Dir, out)
				if err != nil {
					return err
				}
				b.Meta.OG.Image = rel
				return b.Save()
			})
		},
	}
}

func newAddEmailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-email DIR",
		Short: "add author email and brand to blog metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return forEachBlog(args[0], func(b *blog.Blog) error {
				if b.Meta.Author != "" {
					b.Meta.Email = email.NameToEmail(b.Meta.Author)
				}
				b.Meta.Brand = email.Domain
				return b.Save()
			})
		},
	}
}

// forEachBlog loads every blog document under root and applies fn,
// stopping at the first failure.
func forEachBlog(root string, fn func(*blog.Blog) error) error {
	paths, err := blog.FindAll(root)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no blogs found in %s", root)
	}

	for _, p := range paths {
		b, err := blog.Load(filepath.Join(p, blog.DocumentName))
		if err != nil {
			return err
		}
		if err := fn(b); err != nil {
			return err
		}
	}
	return nil
}
