package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/alexjbarnes/wordpress-sync/internal/wordpress"
)

func newDownloadCmd() *cobra.Command {
	var (
		host      string
		directory string
	)

	cmd := &cobra.Command{
		Use:   "download [flags] [post-id...]",
		Short: "download WordPress posts as Markdown blogs",
		Long: `Reads posts from a WordPress installation and writes each one as a
frontmatter document under the target directory. When post ids are
given only those posts are downloaded, otherwise all of them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, logger, err := newEngine(host)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			posts, err := resolvePosts(ctx, engine.Client(), args)
			if err != nil {
				return err
			}

			failed := 0
			for _, post := range posts {
				if _, err := engine.DownloadPost(ctx, post, directory); err != nil {
					logger.Error("download failed",
						slog.Int64("id", post.ID()),
						slog.String("link", post.Link()),
						slog.String("error", err.Error()),
					)
					failed++
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d posts failed to download", failed, len(posts))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "wordpress host to download from")
	cmd.Flags().StringVar(&directory, "directory", "", "directory to download to")
	_ = cmd.MarkFlagRequired("host")
	_ = cmd.MarkFlagRequired("directory")

	return cmd
}

// resolvePosts fetches the named posts in edit context, or every post
// when no ids are given. A missing id is an error.
func resolvePosts(ctx context.Context, client *wordpress.Client, ids []string) ([]wordpress.Post, error) {
	if len(ids) == 0 {
		return client.Posts(ctx, url.Values{"context": []string{"edit"}})
	}

	posts := make([]wordpress.Post, 0, len(ids))
	for _, id := range ids {
		post, err := client.PostByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("post %s: %w", id, err)
		}
		posts = append(posts, post)
	}
	return posts, nil
}
