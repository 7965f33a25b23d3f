package modelstore

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/augur/internal/adapters/config"
	"go.trai.ch/augur/internal/adapters/logger"
	"go.trai.ch/augur/internal/core/domain"
	"go.trai.ch/augur/internal/core/ports"
)

// NodeID is the unique identifier for the model store Graft node.
const NodeID graft.ID = "adapter.model_store"

func init() {
	graft.Register(graft.Node[ports.ModelStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.SettingsNodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.ModelStore, error) {
			settings, err := graft.Dep[domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewStore(settings.ModelsDir, log), nil
		},
	})
}
