package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cardhub/internal/app"
	"cardhub/internal/collection"
)

func NewOwnCommand() *cobra.Command {
	var character string

	cmd := &cobra.Command{
		Use:   "own <card-id>...",
		Short: "Mark cards as owned",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return withApp(func(ctx context.Context, a *app.App, userID string) error {
				for _, id := range args {
					if err := a.Collection.MarkOwned(ctx, userID, id); err != nil {
						return err
					}
					fmt.Fprintf(out, "✓ %s owned\n", id)

					if !a.Config.Aggregator.AutoFavoriteOnOwn {
						continue
					}
					name, err := a.AutoFavorite().Apply(ctx, userID, id, character)
					if err != nil {
						fmt.Fprintf(out, "! could not favorite character of %s: %v\n", id, err)
						continue
					}
					if name != "" {
						fmt.Fprintf(out, "★ %s added to favorites\n", name)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&character, "character", "", "Character to favorite instead of resolving it from the card")
	return cmd
}

func NewMissingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "missing <card-id>...",
		Short: "Mark cards as not owned",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return withApp(func(ctx context.Context, a *app.App, userID string) error {
				for _, id := range args {
					if err := a.Collection.MarkMissing(ctx, userID, id); err != nil {
						return err
					}
					fmt.Fprintf(out, "✓ %s marked missing\n", id)
				}
				return nil
			})
		},
	}
}

func NewCollectionCommand() *cobra.Command {
	var (
		ownedOnly   bool
		missingOnly bool
		limit       int
		offset      int
	)

	cmd := &cobra.Command{
		Use:   "collection",
		Short: "List your ownership records",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if ownedOnly && missingOnly {
				return fmt.Errorf("--owned and --missing are exclusive")
			}
			p := collection.ListParams{Limit: limit, Offset: offset}
			if ownedOnly || missingOnly {
				owned := ownedOnly
				p.Owned = &owned
			}

			return withApp(func(ctx context.Context, a *app.App, userID string) error {
				items, total, err := a.Collection.List(ctx, userID, p)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "CARD\tNAME\tOWNED\tCONDITION\tGRADE")
				for _, it := range items {
					name := "-"
					if it.Card != nil {
						name = it.Card.Name
					}
					grade := "-"
					if it.Graded {
						grade = it.GradingCompany + " " + it.Grade
					}
					fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%s\n", it.CardID, name, it.Owned, it.Condition, grade)
				}
				_ = w.Flush()
				fmt.Fprintf(out, "\n%d of %d records\n", len(items), total)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&ownedOnly, "owned", false, "Only owned cards")
	cmd.Flags().BoolVar(&missingOnly, "missing", false, "Only cards marked missing")
	cmd.Flags().IntVar(&limit, "limit", 50, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")
	return cmd
}
