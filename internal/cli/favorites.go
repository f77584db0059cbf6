package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cardhub/internal/app"
)

func NewFavoriteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorite",
		Short: "Manage favorite characters",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <character>",
		Short: "Favorite a character and snapshot its card total",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			name := strings.Join(args, " ")
			return withApp(func(ctx context.Context, a *app.App, userID string) error {
				added, err := a.Completion.AddFavorite(ctx, userID, name)
				if err != nil {
					return err
				}
				if !added {
					fmt.Fprintf(out, "%s is already a favorite\n", name)
					return nil
				}
				fmt.Fprintf(out, "★ %s added to favorites\n", name)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <character>",
		Short: "Remove a favorite",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			name := strings.Join(args, " ")
			return withApp(func(ctx context.Context, a *app.App, userID string) error {
				removed, err := a.Completion.RemoveFavorite(ctx, userID, name)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("%s is not a favorite", name)
				}
				fmt.Fprintf(out, "✓ %s removed\n", name)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List favorites with completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return withApp(func(ctx context.Context, a *app.App, userID string) error {
				items, err := a.Completion.Favorites(ctx, userID)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(out, "No favorites yet")
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "CHARACTER\tOWNED\tTOTAL\tCOMPLETE")
				for _, it := range items {
					fmt.Fprintf(w, "%s\t%d\t%d\t%.1f%%\n", it.Name, it.OwnedCards, it.TotalCards, it.Percentage())
				}
				return w.Flush()
			})
		},
	})

	return cmd
}

func NewCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion",
		Short: "Show collection completion across favorites",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return withApp(func(ctx context.Context, a *app.App, userID string) error {
				cc, err := a.Completion.Collection(ctx, userID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Owned:    %d\n", cc.OwnedCards)
				fmt.Fprintf(out, "Total:    %d\n", cc.TotalCards)
				fmt.Fprintf(out, "Complete: %.1f%%\n", cc.Percentage())
				return nil
			})
		},
	}
}
