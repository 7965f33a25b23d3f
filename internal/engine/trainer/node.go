package trainer

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/augur/internal/adapters/config"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/augur/internal/adapters/logger"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/augur/internal/adapters/marketdata" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/augur/internal/adapters/metrics"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/augur/internal/adapters/modelstore" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/augur/internal/adapters/telemetry"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/augur/internal/adapters/trend"      //nolint:depguard // Wired in engine wiring
	"go.trai.ch/augur/internal/core/domain"
	"go.trai.ch/augur/internal/core/ports"
)

// NodeID is the unique identifier for the training orchestrator Graft node.
const NodeID graft.ID = "engine.trainer"

func init() {
	graft.Register(graft.Node[ports.Trainer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			marketdata.NodeID,
			trend.NodeID,
			modelstore.NodeID,
			config.SettingsNodeID,
			logger.NodeID,
			metrics.NodeID,
			telemetry.TracerNodeID,
		},
		Run: func(ctx context.Context) (ports.Trainer, error) {
			provider, err := graft.Dep[ports.DataProvider](ctx)
			if err != nil {
				return nil, err
			}

			engine, err := graft.Dep[ports.ForecastEngine](ctx)
			if err != nil {
				return nil, err
			}

			store, err := graft.Dep[ports.ModelStore](ctx)
			if err != nil {
				return nil, err
			}

			settings, err := graft.Dep[domain.Settings](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			m, err := graft.Dep[ports.Metrics](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			return NewOrchestrator(provider, engine, store, settings, log, m, tracer), nil
		},
	})
}
