// Package trainer turns historical data into persisted model artifacts.
package trainer

import (
	"context"
	"errors"
	"time"

	"go.trai.ch/augur/internal/core/domain"
	"go.trai.ch/augur/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Trainer = (*Orchestrator)(nil)

// Orchestrator implements ports.Trainer: fetch, clean, fit, serialize, save.
type Orchestrator struct {
	provider ports.DataProvider
	engine   ports.ForecastEngine
	store    ports.ModelStore
	settings domain.Settings
	logger   ports.Logger
	metrics  ports.Metrics
	tracer   ports.Tracer
	now      func() time.Time
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(
	provider ports.DataProvider,
	engine ports.ForecastEngine,
	store ports.ModelStore,
	settings domain.Settings,
	logger ports.Logger,
	metrics ports.Metrics,
	tracer ports.Tracer,
) *Orchestrator {
	return &Orchestrator{
		provider: provider,
		engine:   engine,
		store:    store,
		settings: settings,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		now:      time.Now,
	}
}

// Train runs one training for id. It never retries; every failure is joined
// with domain.ErrTrainingFailed.
func (o *Orchestrator) Train(ctx context.Context, id domain.Identifier) (meta domain.ArtifactMeta, err error) {
	ctx, span := o.tracer.Start(ctx, "trainer.Train")
	span.SetAttribute("augur.identifier", id.String())

	started := o.now()
	o.logger.Info("training model", "id", id.String())

	defer func() {
		elapsed := o.now().Sub(started)
		o.metrics.Training(err == nil, elapsed)
		if err != nil {
			err = zerr.With(zerr.Wrap(errors.Join(domain.ErrTrainingFailed, err), "failed to train model"),
				"id", id.String())
			span.RecordError(err)
		} else {
			span.SetAttribute("augur.points", meta.Points)
			o.logger.Info("model trained", "id", id.String(), "points", meta.Points,
				"elapsed", elapsed.Round(time.Millisecond).String())
		}
		span.End()
	}()

	start, end, err := o.settings.Training.Window(o.now())
	if err != nil {
		return domain.ArtifactMeta{}, err
	}

	series, err := o.provider.Fetch(ctx, id, start, end)
	if err != nil {
		return domain.ArtifactMeta{}, err
	}

	series = domain.CleanSeries(series)
	if len(series) < o.settings.Training.MinPoints {
		return domain.ArtifactMeta{}, zerr.With(
			zerr.With(zerr.Wrap(domain.ErrInsufficientData, "not enough usable records"), "points", len(series)),
			"min_points", o.settings.Training.MinPoints)
	}

	handle, err := o.engine.Fit(series.Frame(), o.settings.Seasonality)
	if err != nil {
		return domain.ArtifactMeta{}, err
	}

	payload, err := o.engine.Serialize(handle)
	if err != nil {
		return domain.ArtifactMeta{}, err
	}

	first, last, _ := series.Bounds()
	meta = domain.ArtifactMeta{
		Identifier:  id,
		Engine:      o.engine.Name(),
		TrainedAt:   o.now().UTC(),
		WindowStart: first,
		WindowEnd:   last,
		Points:      len(series),
	}

	if err := o.store.Save(id, domain.ModelArtifact{Meta: meta, Payload: payload}); err != nil {
		return domain.ArtifactMeta{}, err
	}

	return meta, nil
}
