package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cardhub/internal/app"
)

func NewWishlistCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Manage your wishlist",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <card-id>...",
		Short: "Add cards to the wishlist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return withApp(func(ctx context.Context, a *app.App, userID string) error {
				for _, id := range args {
					if err := a.Wishlist.Add(ctx, userID, id); err != nil {
						return err
					}
					fmt.Fprintf(out, "✓ %s wishlisted\n", id)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <card-id>...",
		Short: "Remove cards from the wishlist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return withApp(func(ctx context.Context, a *app.App, userID string) error {
				for _, id := range args {
					if _, err := a.Wishlist.Remove(ctx, userID, id); err != nil {
						return err
					}
					fmt.Fprintf(out, "✓ %s removed\n", id)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the wishlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return withApp(func(ctx context.Context, a *app.App, userID string) error {
				items, err := a.Wishlist.ListWithCards(ctx, userID)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "CARD\tNAME\tSET\tADDED")
				for _, it := range items {
					name, set := "-", "-"
					if it.Card != nil {
						name, set = it.Card.Name, it.Card.Set.Name
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", it.CardID, name, set, it.CreatedAt.Format("2006-01-02"))
				}
				return w.Flush()
			})
		},
	})

	return cmd
}
