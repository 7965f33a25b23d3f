package ports

import (
	"context"
	"time"

	"go.trai.ch/augur/internal/core/domain"
)

// DataProvider fetches historical series for identifiers, backed by a local durable cache.
//
//go:generate mockgen -source=data_provider.go -destination=mocks/mock_data_provider.go -package=mocks
type DataProvider interface {
	// Fetch returns the cleaned, date-ordered records of id within [start, end].
	// The local cache is refreshed when it does not cover the window.
	//
	// It fails with domain.ErrEmptyResult when the source has no data for id and
	// with domain.ErrSourceUnavailable on transient source failures.
	Fetch(ctx context.Context, id domain.Identifier, start, end time.Time) (domain.Series, error)

	// Cached returns the locally cached series for id without contacting the source.
	// It fails with domain.ErrEmptyResult when nothing is cached.
	Cached(id domain.Identifier) (domain.Series, error)
}
