package ports

import (
	"context"

	"go.trai.ch/augur/internal/core/domain"
)

// Trainer turns historical data for an identifier into a persisted model artifact.
//
//go:generate mockgen -source=trainer.go -destination=mocks/mock_trainer.go -package=mocks
type Trainer interface {
	// Train fetches data, fits a model and saves it. It does not retry.
	// Failures are joined with domain.ErrTrainingFailed.
	Train(ctx context.Context, id domain.Identifier) (domain.ArtifactMeta, error)
}
