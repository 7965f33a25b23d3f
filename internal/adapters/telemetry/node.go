package telemetry

import (
	"context"

	"github.com/grindlemire/graft"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/augur/internal/adapters/config"
	"go.trai.ch/augur/internal/adapters/logger"
	"go.trai.ch/augur/internal/core/domain"
	"go.trai.ch/augur/internal/core/ports"
)

// TracerNodeID is the unique identifier for the Telemetry adapter Graft node.
const TracerNodeID graft.ID = "adapter.telemetry"

func init() {
	graft.Register(graft.Node[ports.Tracer]{
		ID:        TracerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.SettingsNodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.Tracer, error) {
			settings, err := graft.Dep[domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewTracer(settings.Log, log), nil
		},
	})
}

// NewTracer builds the tracer for the given log settings.
// With tracing enabled, ended spans are written to log.
func NewTracer(settings domain.LogSettings, log ports.Logger) *OTelTracer {
	var processors []sdktrace.SpanProcessor
	if settings.Trace {
		processors = append(processors, NewLogProcessor(log))
	}
	return NewOTelTracer(processors...)
}
