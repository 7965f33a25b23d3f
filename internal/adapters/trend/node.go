package trend

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/augur/internal/core/ports"
)

// NodeID is the unique identifier for the forecasting engine Graft node.
const NodeID graft.ID = "adapter.forecast_engine"

func init() {
	graft.Register(graft.Node[ports.ForecastEngine]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ForecastEngine, error) {
			return New(), nil
		},
	})
}
