package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"cardhub/internal/app"
	"cardhub/internal/export"
	"cardhub/pkg/models"
)

func NewExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored cards or your collection",
	}

	var (
		cardsOut    string
		format      string
		character   string
		collOut     string
		includeMiss bool
	)

	cardsCmd := &cobra.Command{
		Use:   "cards",
		Short: "Export stored cards as CSV or JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if format != "csv" && format != "json" {
				return fmt.Errorf("format must be csv or json")
			}
			return withApp(func(ctx context.Context, a *app.App, _ string) error {
				var (
					list []models.Card
					err  error
				)
				if character != "" {
					list, err = a.Cards.ListByCharacter(ctx, character, "")
				} else {
					list, err = a.Cards.All(ctx)
				}
				if err != nil {
					return err
				}

				write := func(w io.Writer) error { return export.CardsCSV(w, list) }
				if format == "json" {
					write = func(w io.Writer) error { return export.CardsJSON(w, list) }
				}
				if err := export.ToFile(cardsOut, write); err != nil {
					return err
				}
				fmt.Fprintf(out, "✓ exported %d cards to %s\n", len(list), cardsOut)
				return nil
			})
		},
	}
	cardsCmd.Flags().StringVar(&cardsOut, "out", "data/cards.csv", "Output path")
	cardsCmd.Flags().StringVar(&format, "format", "csv", "csv or json")
	cardsCmd.Flags().StringVar(&character, "character", "", "Only cards of this character")

	collCmd := &cobra.Command{
		Use:   "collection",
		Short: "Export your ownership records as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return withApp(func(ctx context.Context, a *app.App, userID string) error {
				var owned *bool
				if !includeMiss {
					t := true
					owned = &t
				}
				all, err := a.Collection.ListAll(ctx, userID, owned)
				if err != nil {
					return err
				}

				if err := export.ToFile(collOut, func(w io.Writer) error { return export.CollectionCSV(w, all) }); err != nil {
					return err
				}
				fmt.Fprintf(out, "✓ exported %d records to %s\n", len(all), collOut)
				return nil
			})
		},
	}
	collCmd.Flags().StringVar(&collOut, "out", "data/collection.csv", "Output path")
	collCmd.Flags().BoolVar(&includeMiss, "all", false, "Include cards marked missing")

	cmd.AddCommand(cardsCmd, collCmd)
	return cmd
}

func NewImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <collection.csv>",
		Short: "Import ownership records from a collection CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			records, err := export.ReadCollectionCSV(f)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			return withApp(func(ctx context.Context, a *app.App, userID string) error {
				for _, rec := range records {
					rec.UserID = userID
					if err := a.Collection.Upsert(ctx, rec); err != nil {
						return err
					}
				}
				fmt.Fprintf(out, "✓ imported %d records\n", len(records))
				return nil
			})
		},
	}
}
