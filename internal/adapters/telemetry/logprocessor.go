package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/augur/internal/core/ports"
)

var _ sdktrace.SpanProcessor = (*LogProcessor)(nil)

// LogProcessor writes every ended span to a logger as one line.
type LogProcessor struct {
	logger ports.Logger
}

// NewLogProcessor creates a span processor that logs through logger.
func NewLogProcessor(logger ports.Logger) *LogProcessor {
	return &LogProcessor{logger: logger}
}

// OnStart does nothing; spans are logged once they end.
func (p *LogProcessor) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd logs the span name, duration, attributes and error status.
func (p *LogProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	attrs := s.Attributes()
	args := make([]any, 0, 2*len(attrs)+4)
	args = append(args, "duration", s.EndTime().Sub(s.StartTime()))
	for _, kv := range attrs {
		args = append(args, string(kv.Key), kv.Value.Emit())
	}
	if status := s.Status(); status.Code == codes.Error {
		args = append(args, "error", status.Description)
	}
	p.logger.Info("span "+s.Name(), args...)
}

// Shutdown does nothing; the logger owns no buffered spans.
func (p *LogProcessor) Shutdown(_ context.Context) error {
	return nil
}

// ForceFlush does nothing.
func (p *LogProcessor) ForceFlush(_ context.Context) error {
	return nil
}
