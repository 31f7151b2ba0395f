package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

func newUpdateCanonicalCmd() *cobra.Command {
	var (
		host string
		base string
	)

	cmd := &cobra.Command{
		Use:   "update-canonical [flags] [post-id...]",
		Short: "point post canonical URLs at the canonical site",
		Long: `Sets each post's canonical URL to <canonical-base>/<slug>. Posts whose
canonical already matches are left alone. When post ids are given only
those posts are updated, otherwise all of them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, logger, err := newEngine(host)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			client := engine.Client()

			posts, err := resolvePosts(ctx, client, args)
			if err != nil {
				return err
			}

			for _, post := range posts {
				canonical := base + "/" + post.Slug()

				if post.Canonical() == canonical {
					logger.Info("canonical already set", slog.String("title", post.Title()))
					continue
				}

				logger.Info("updating canonical",
					slog.String("title", post.Title()),
					slog.String("canonical", canonical),
				)

				properties := client.SEO().CanonicalProperties(canonical)
				if _, err := client.UpdatePost(ctx, post.GUID(), properties); err != nil {
					return err
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "wordpress host to update the posts of")
	cmd.Flags().StringVar(&base, "canonical-base", "https://xebia.com/blog", "base URL canonical links point at")
	_ = cmd.MarkFlagRequired("host")

	return cmd
}
