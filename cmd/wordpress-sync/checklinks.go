package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/alexjbarnes/wordpress-sync/internal/links"
)

func newCheckLinksCmd() *cobra.Command {
	var host string

	cmd := &cobra.Command{
		Use:   "check-links [flags] [post-id...]",
		Short: "report broken links in WordPress posts",
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

			checker := links.NewChecker(nil)
			postsWithBroken := 0

			for _, post := range posts {
				broken, err := checker.Check(ctx, post.Content())
				if err != nil {
					return fmt.Errorf("checking %s: %w", post.Link(), err)
				}

				if len(broken) == 0 {
					logger.Info("no broken links", slog.String("link", post.Link()))
					continue
				}

				postsWithBroken++
				logger.Error("broken links found",
					slog.String("link", post.Link()),
					slog.Int("count", len(broken)),
				)
				for _, b := range broken {
					logger.Error("broken link",
						slog.String("url", b.URL),
						slog.Int("status", b.Status),
					)
				}
			}

			if postsWithBroken > 0 {
				return fmt.Errorf("%d of %d posts have broken links", postsWithBroken, len(posts))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "wordpress host to check blog post links of")
	_ = cmd.MarkFlagRequired("host")

	return cmd
}
