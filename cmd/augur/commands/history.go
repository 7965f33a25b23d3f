package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.trai.ch/augur/internal/core/domain"
)

type historyRow struct {
	Date  string   `json:"date"`
	Open  *float64 `json:"open"`
	High  *float64 `json:"high"`
	Low   *float64 `json:"low"`
	Close float64  `json:"close"`
}

func (c *CLI) newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Print the historical series used for training",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			series, err := c.app.History(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			rows := make([]historyRow, len(series))
			for i, r := range series {
				rows[i] = historyRow{
					Date:  r.Date.Format(domain.DateLayout),
					Open:  optionalPrice(r.Open),
					High:  optionalPrice(r.High),
					Low:   optionalPrice(r.Low),
					Close: r.Close,
				}
			}

			return render(cmd, rows, func(w *tabwriter.Writer) {
				_, _ = fmt.Fprintln(w, "DATE\tOPEN\tHIGH\tLOW\tCLOSE")
				for _, r := range series {
					_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						r.Date.Format(domain.DateLayout),
						formatPrice(r.Open), formatPrice(r.High), formatPrice(r.Low), formatPrice(r.Close))
				}
			})
		},
	}
}
