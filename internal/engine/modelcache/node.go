package modelcache

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/augur/internal/adapters/config"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/augur/internal/adapters/logger"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/augur/internal/adapters/metrics"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/augur/internal/adapters/modelstore" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/augur/internal/adapters/trend"      //nolint:depguard // Wired in engine wiring
	"go.trai.ch/augur/internal/core/domain"
	"go.trai.ch/augur/internal/core/ports"
	"go.trai.ch/augur/internal/engine/trainer"
)

// NodeID is the unique identifier for the model cache manager Graft node.
const NodeID graft.ID = "engine.model_cache"

func init() {
	graft.Register(graft.Node[*Manager]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			modelstore.NodeID,
			trainer.NodeID,
			trend.NodeID,
			config.SettingsNodeID,
			logger.NodeID,
			metrics.NodeID,
		},
		Run: func(ctx context.Context) (*Manager, error) {
			store, err := graft.Dep[ports.ModelStore](ctx)
			if err != nil {
				return nil, err
			}

			t, err := graft.Dep[ports.Trainer](ctx)
			if err != nil {
				return nil, err
			}

			engine, err := graft.Dep[ports.ForecastEngine](ctx)
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

			return NewManager(store, t, engine, log, m, settings.Cache.FailureCooldown), nil
		},
	})
}
