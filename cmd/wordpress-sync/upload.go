package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alexjbarnes/wordpress-sync/internal/blog"
)

func newUploadCmd() *cobra.Command {
	var (
		host       string
		watch      bool
		authorSlug string
	)

	cmd := &cobra.Command{
		Use:   "upload [flags] DIR",
		Short: "upload Markdown blogs to WordPress",
		Long: `Uploads every blog under DIR to the WordPress host. A blog without a
guid is created and its guid written back; a blog with a guid is
updated in place when its content or metadata changed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, logger, err := newEngine(host)
			if err != nil {
				return err
			}
			engine.AuthorHint = authorSlug

			dirs, err := blog.FindAll(args[0])
			if err != nil {
				return err
			}
			if len(dirs) == 0 {
				return fmt.Errorf("no blogs found in %s", args[0])
			}

			ctx := cmd.Context()

			for _, dir := range dirs {
				b, err := blog.Load(filepath.Join(dir, blog.DocumentName))
				if err != nil {
					return err
				}
				if err := engine.Upsert(ctx, b); err != nil {
					return fmt.Errorf("uploading %s: %w", dir, err)
				}
			}

			if !watch {
				return nil
			}

			if len(dirs) > 1 {
				return fmt.Errorf("--watch needs a single blog directory, found %d blogs", len(dirs))
			}

			b, err := blog.Load(filepath.Join(dirs[0], blog.DocumentName))
			if err != nil {
				return err
			}

			logger.Info("watching for changes", slog.String("dir", dirs[0]))

			return b.Watch(ctx, logger, func() error {
				fresh, err := blog.Load(b.Path)
				if err != nil {
					return err
				}
				if err := engine.Upsert(ctx, fresh); err != nil {
					logger.Error("upload failed", slog.String("error", err.Error()))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "wordpress host to upload to")
	cmd.Flags().BoolVar(&watch, "watch", false, "re-upload whenever the blog changes on disk")
	cmd.Flags().StringVar(&authorSlug, "author-slug", "", "user slug to disambiguate the author with")
	_ = cmd.MarkFlagRequired("host")

	return cmd
}
