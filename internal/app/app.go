// Package app implements the application layer for augur.
package app

import (
	"context"
	"errors"
	"time"

	"go.trai.ch/augur/internal/core/domain"
	"go.trai.ch/augur/internal/core/ports"
	"go.trai.ch/augur/internal/engine/modelcache"
	"go.trai.ch/zerr"
)

// App serves forecasts and historical data on top of the model cache.
type App struct {
	cache    *modelcache.Manager
	engine   ports.ForecastEngine
	provider ports.DataProvider
	store    ports.ModelStore
	settings domain.Settings
	logger   ports.Logger
	tracer   ports.Tracer
	now      func() time.Time
}

// New creates a new App instance.
func New(
	cache *modelcache.Manager,
	engine ports.ForecastEngine,
	provider ports.DataProvider,
	store ports.ModelStore,
	settings domain.Settings,
	logger ports.Logger,
	tracer ports.Tracer,
) *App {
	return &App{
		cache:    cache,
		engine:   engine,
		provider: provider,
		store:    store,
		settings: settings,
		logger:   logger,
		tracer:   tracer,
		now:      time.Now,
	}
}

// Predict returns horizonDays forecast rows for the identifier, training a
// model first when none is stored.
func (a *App) Predict(ctx context.Context, rawID string, horizonDays int) ([]domain.ForecastPoint, error) {
	id, err := domain.ParseIdentifier(rawID)
	if err != nil {
		return nil, err
	}

	if maxHorizon := a.settings.Predict.MaxHorizon; horizonDays < 1 || horizonDays > maxHorizon {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrInvalidHorizon, "horizon out of range"),
			"horizon_days", horizonDays), "max_horizon", maxHorizon)
	}

	ctx, span := a.tracer.Start(ctx, "app.Predict")
	defer span.End()
	span.SetAttribute("augur.identifier", id.String())
	span.SetAttribute("augur.horizon_days", horizonDays)

	handle, err := a.cache.GetOrLoad(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, zerr.With(zerr.Wrap(err, "failed to resolve model"), "id", id.String())
	}

	forecast, err := a.engine.Predict(handle, horizonDays)
	if err != nil {
		span.RecordError(err)
		return nil, zerr.With(zerr.Wrap(err, "failed to generate forecast"), "id", id.String())
	}

	return forecast, nil
}

// History returns the historical series of the identifier within the
// configured training window. When the data source is unavailable it falls
// back to the local cache.
func (a *App) History(ctx context.Context, rawID string) (domain.Series, error) {
	id, err := domain.ParseIdentifier(rawID)
	if err != nil {
		return nil, err
	}

	start, end, err := a.settings.Training.Window(a.now())
	if err != nil {
		return nil, err
	}

	ctx, span := a.tracer.Start(ctx, "app.History")
	defer span.End()
	span.SetAttribute("augur.identifier", id.String())

	series, err := a.provider.Fetch(ctx, id, start, end)
	if err == nil {
		return series, nil
	}

	if errors.Is(err, domain.ErrSourceUnavailable) {
		cached, cacheErr := a.provider.Cached(id)
		if cacheErr == nil {
			if window := cached.Window(start, end); len(window) > 0 {
				a.logger.Warn("data source unavailable, serving cached history", "id", id.String())
				return window, nil
			}
		}
	}

	span.RecordError(err)
	return nil, zerr.With(zerr.Wrap(err, "failed to load history"), "id", id.String())
}

// Train retrains the identifier's model even when one is stored and returns
// the metadata of the new artifact.
func (a *App) Train(ctx context.Context, rawID string) (domain.ArtifactMeta, error) {
	id, err := domain.ParseIdentifier(rawID)
	if err != nil {
		return domain.ArtifactMeta{}, err
	}

	if _, err := a.cache.Retrain(ctx, id); err != nil {
		return domain.ArtifactMeta{}, zerr.With(zerr.Wrap(err, "failed to retrain model"), "id", id.String())
	}

	artifact, err := a.store.Load(id)
	if err != nil {
		return domain.ArtifactMeta{}, err
	}
	return artifact.Meta, nil
}

// Invalidate drops the cached model of the identifier in this process.
// The stored artifact is kept, so the next prediction reloads it.
func (a *App) Invalidate(rawID string) error {
	id, err := domain.ParseIdentifier(rawID)
	if err != nil {
		return err
	}
	a.cache.Invalidate(id)
	return nil
}

// Forget deletes the stored model of the identifier and drops it from the
// cache, so the next prediction trains from scratch. It blocks until a
// resolve already in flight for the identifier has finished.
func (a *App) Forget(rawID string) error {
	id, err := domain.ParseIdentifier(rawID)
	if err != nil {
		return err
	}
	// Waiting for an in-flight training keeps it from saving the artifact
	// back after the delete.
	err = a.cache.Forget(id, func() error {
		return a.store.Delete(id)
	})
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to delete model"), "id", id.String())
	}
	return nil
}

// Models lists the metadata of every stored model.
func (a *App) Models() ([]domain.ArtifactMeta, error) {
	metas, err := a.store.List()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to list models")
	}
	return metas, nil
}

// State reports the in-process cache state of the identifier.
func (a *App) State(rawID string) (modelcache.Snapshot, error) {
	id, err := domain.ParseIdentifier(rawID)
	if err != nil {
		return modelcache.Snapshot{}, err
	}
	return a.cache.State(id), nil
}

// Settings returns the effective settings.
func (a *App) Settings() domain.Settings {
	return a.settings
}

// Close stops in-flight model resolves.
func (a *App) Close() {
	a.cache.Close()
}
