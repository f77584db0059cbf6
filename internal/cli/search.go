package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cardhub/internal/aggregator"
	"cardhub/internal/app"
	"cardhub/internal/cards"
	"cardhub/internal/catalog"
	"cardhub/pkg/models"
)

func NewSearchCommand() *cobra.Command {
	var (
		lang  string
		setID string
		order string
		page  int
	)

	cmd := &cobra.Command{
		Use:   "search <character>",
		Short: "Search both catalogs for a character's cards",
		Long: `Search queries every enabled catalog, stores what it finds and prints the
merged list. When every catalog fails, previously stored cards are shown.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			sortOrder, ok := cards.ParseSortOrder(order)
			if !ok {
				return fmt.Errorf("unknown sort order %q", order)
			}
			name := strings.Join(args, " ")

			return withApp(func(ctx context.Context, a *app.App, _ string) error {
				rep, err := a.Aggregator.Search(ctx, aggregator.Request{Character: name, Language: lang, SetID: setID, Page: page})
				if err != nil {
					return err
				}

				for _, o := range rep.Outcomes {
					if o.Status == catalog.StatusFailed.String() {
						fmt.Fprintf(out, "! %s unavailable (%s)\n", o.Source, o.Kind)
					}
				}
				if rep.IndexFallback {
					fmt.Fprintf(out, "! %s is not in the roster, searched species #%d\n", name, rep.SpeciesIndex)
				}

				list := rep.Cards
				if rep.Degraded {
					if len(rep.Cached) == 0 {
						return fmt.Errorf("catalogs unavailable (%s), try again later", rep.FailureKind)
					}
					fmt.Fprintln(out, "! showing stored cards")
					list = rep.Cached
				}
				if len(list) == 0 {
					fmt.Fprintf(out, "No cards found for %s\n", name)
					return nil
				}

				cards.Sort(list, sortOrder)
				printCards(out, list)
				if rep.HasMore {
					fmt.Fprintf(out, "More results: cardhub search %s --page %d\n", name, rep.NextPage)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "en", "Catalog language")
	cmd.Flags().StringVar(&setID, "set", "", "Restrict to one set id")
	cmd.Flags().StringVar(&order, "sort", "", "Sort: set, price_low, price_high, rarity, number")
	cmd.Flags().IntVar(&page, "page", 0, "Load this page of the paging catalogs")

	return cmd
}

func printCards(out io.Writer, list []models.Card) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSET\tNUMBER\tRARITY\tPRICE\tSOURCE")
	for _, c := range list {
		price := "-"
		if p, ok := c.MarketPrice(); ok {
			price = fmt.Sprintf("$%.2f", p)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.Name, c.Set.Name, dash(c.Number), dash(c.Rarity), price, c.Source)
	}
	_ = w.Flush()
	fmt.Fprintf(out, "\n%d cards\n", len(list))
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
