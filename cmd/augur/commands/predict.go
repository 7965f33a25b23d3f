package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.trai.ch/augur/internal/core/domain"
)

const defaultHorizonDays = 30

type forecastRow struct {
	Date     string  `json:"date"`
	Estimate float64 `json:"estimate"`
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
}

func (c *CLI) newPredictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict <id>",
		Short: "Forecast the next days of an identifier, training a model if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, _ := cmd.Flags().GetInt("days")

			forecast, err := c.app.Predict(cmd.Context(), args[0], days)
			if err != nil {
				return err
			}

			rows := make([]forecastRow, len(forecast))
			for i, p := range forecast {
				rows[i] = forecastRow{
					Date:     p.Date.Format(domain.DateLayout),
					Estimate: p.Estimate,
					Lower:    p.Lower,
					Upper:    p.Upper,
				}
			}

			return render(cmd, rows, func(w *tabwriter.Writer) {
				_, _ = fmt.Fprintln(w, "DATE\tESTIMATE\tLOWER\tUPPER")
				for _, r := range rows {
					_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
						r.Date, formatPrice(r.Estimate), formatPrice(r.Lower), formatPrice(r.Upper))
				}
			})
		},
	}
	cmd.Flags().IntP("days", "d", defaultHorizonDays, "Number of days to forecast")
	return cmd
}
