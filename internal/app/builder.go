package app

import (
	"context"
	"time"

	"go.trai.ch/augur/internal/core/ports"
)

// shutdownTimeout bounds how long Close waits for span processors to flush.
const shutdownTimeout = 5 * time.Second

// shutdowner is implemented by tracers that buffer spans until shut down.
type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App     *App
	Logger  ports.Logger
	Metrics ports.Metrics
	Tracer  ports.Tracer
}

// NewComponents creates a new Components struct from dependencies.
func NewComponents(app *App, logger ports.Logger, metrics ports.Metrics, tracer ports.Tracer) *Components {
	return &Components{
		App:     app,
		Logger:  logger,
		Metrics: metrics,
		Tracer:  tracer,
	}
}

// Close stops the application and then shuts the tracer down.
func (c *Components) Close() {
	c.App.Close()

	s, ok := c.Tracer.(shutdowner)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		c.Logger.Error(err)
	}
}
