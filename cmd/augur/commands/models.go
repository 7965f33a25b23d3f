package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/augur/internal/core/domain"
)

type modelRow struct {
	ID          string    `json:"id"`
	Engine      string    `json:"engine"`
	Points      int       `json:"points"`
	WindowStart string    `json:"window_start"`
	WindowEnd   string    `json:"window_end"`
	TrainedAt   time.Time `json:"trained_at"`
}

func newModelRows(metas []domain.ArtifactMeta) []modelRow {
	rows := make([]modelRow, len(metas))
	for i, m := range metas {
		rows[i] = modelRow{
			ID:          m.Identifier.String(),
			Engine:      m.Engine,
			Points:      m.Points,
			WindowStart: m.WindowStart.Format(domain.DateLayout),
			WindowEnd:   m.WindowEnd.Format(domain.DateLayout),
			TrainedAt:   m.TrainedAt,
		}
	}
	return rows
}

func renderModels(cmd *cobra.Command, metas []domain.ArtifactMeta) error {
	rows := newModelRows(metas)
	return render(cmd, rows, func(w *tabwriter.Writer) {
		_, _ = fmt.Fprintln(w, "ID\tENGINE\tPOINTS\tWINDOW\tTRAINED")
		for _, r := range rows {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s..%s\t%s\n",
				r.ID, r.Engine, r.Points, r.WindowStart, r.WindowEnd, r.TrainedAt.Format(time.RFC3339))
		}
	})
}

func (c *CLI) newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List stored models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			metas, err := c.app.Models()
			if err != nil {
				return err
			}
			return renderModels(cmd, metas)
		},
	}
}
