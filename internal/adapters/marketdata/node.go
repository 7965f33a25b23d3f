package marketdata

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/augur/internal/adapters/config"
	"go.trai.ch/augur/internal/adapters/logger"
	"go.trai.ch/augur/internal/adapters/metrics"
	"go.trai.ch/augur/internal/core/domain"
	"go.trai.ch/augur/internal/core/ports"
)

// NodeID is the unique identifier for the data provider Graft node.
const NodeID graft.ID = "adapter.data_provider"

func init() {
	graft.Register(graft.Node[ports.DataProvider]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.SettingsNodeID, logger.NodeID, metrics.NodeID},
		Run: func(ctx context.Context) (ports.DataProvider, error) {
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
			return NewProvider(settings.DataDir, settings.Source, log, m), nil
		},
	})
}
