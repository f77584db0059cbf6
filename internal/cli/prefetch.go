package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"cardhub/internal/app"
)

func NewPrefetchCommand() *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "prefetch",
		Short: "Search every roster character not stored yet",
		Long: `Prefetch walks the character roster and searches the catalogs for each
character without stored cards, so later searches can be served offline.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return withApp(func(ctx context.Context, a *app.App, _ string) error {
				if lang != "" {
					a.Prefetcher.Language = lang
				}
				stats, err := a.Prefetcher.Run(ctx, func(done, total int, name string) {
					fmt.Fprintf(out, "\r[%d/%d] %-24s", done, total, name)
				})
				fmt.Fprintln(out)
				fmt.Fprintf(out, "cached: %d  fetched: %d  failed: %d\n", stats.Cached, stats.Fetched, stats.Failed)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "Catalog language (defaults to prefetch.language)")
	return cmd
}
