package commands

import (
	"errors"

	"github.com/spf13/cobra"
	"go.trai.ch/augur/internal/core/domain"
)

func (c *CLI) newTrainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "train <id>...",
		Short: "Train models, replacing stored ones",
		Long: "Train fetches fresh history and fits a new model for every identifier, " +
			"even when one is already stored. Identifiers are trained in order; " +
			"a failure does not stop the remaining ones.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				trained []domain.ArtifactMeta
				errs    []error
			)
			for _, raw := range args {
				meta, err := c.app.Train(cmd.Context(), raw)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				trained = append(trained, meta)
			}

			if len(trained) > 0 {
				if err := renderModels(cmd, trained); err != nil {
					return err
				}
			}
			return errors.Join(errs...)
		},
	}
}
