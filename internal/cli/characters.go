package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cardhub/internal/app"
	"cardhub/internal/characters"
)

func NewCharactersCommand() *cobra.Command {
	var (
		query     string
		favorites bool
	)

	cmd := &cobra.Command{
		Use:   "characters",
		Short: "List roster characters",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return withApp(func(ctx context.Context, a *app.App, userID string) error {
				items, err := a.Characters.List(ctx, characters.SearchParams{
					UserID:        userID,
					Query:         query,
					FavoritesOnly: favorites,
				})
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "#\tNAME\tFAVORITE")
				for _, ch := range items {
					idx := "-"
					if ch.SpeciesIndex != nil {
						idx = fmt.Sprintf("%d", *ch.SpeciesIndex)
					}
					star := ""
					if ch.Favorite {
						star = "★"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\n", idx, ch.Name, star)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Name filter")
	cmd.Flags().BoolVar(&favorites, "favorites", false, "Only favorites")
	return cmd
}
