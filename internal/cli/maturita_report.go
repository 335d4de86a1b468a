package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mrlokans/libris/internal/entities"
	"github.com/mrlokans/libris/internal/maturita"
)

// writeMaturitaReport prints how many catalog books fall into each
// maturita category next to the category minimum.
func writeMaturitaReport(w io.Writer, books []entities.Book) error {
	counts := maturita.Distribution(books)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "CATEGORY\tBOOKS\tMINIMUM\t\n")
	for _, c := range maturita.Categories {
		marker := ""
		if counts[c.Key] < c.Min {
			marker = "(short)"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", c.Label, counts[c.Key], c.Min, marker)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d books in catalog, %d required per student\n", len(books), maturita.TotalRequired)
	return err
}

func newMaturitaReportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "maturita-report",
		Short: "Show how the catalog covers the maturita reading categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			books, err := db.Books.List(cmd.Context())
			if err != nil {
				return err
			}
			return writeMaturitaReport(cmd.OutOrStdout(), books)
		},
	}
}
