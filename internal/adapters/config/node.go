package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/augur/internal/adapters/logger"
	"go.trai.ch/augur/internal/core/domain"
	"go.trai.ch/augur/internal/core/ports"
)

const (
	// NodeID is the unique identifier for the config loader Graft node.
	NodeID graft.ID = "adapter.config_loader"

	// SettingsNodeID is the unique identifier for the loaded settings Graft node.
	SettingsNodeID graft.ID = "adapter.settings"
)

// jsonSwitcher is implemented by loggers that support a JSON output mode.
type jsonSwitcher interface {
	SetJSON(enable bool)
}

func init() {
	graft.Register(graft.Node[ports.ConfigLoader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.ConfigLoader, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(log, ""), nil
		},
	})

	graft.Register(graft.Node[domain.Settings]{
		ID:        SettingsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{NodeID, logger.NodeID},
		Run: func(ctx context.Context) (domain.Settings, error) {
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return domain.Settings{}, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return domain.Settings{}, err
			}

			settings, err := loader.Load()
			if err != nil {
				return domain.Settings{}, err
			}
			if s, ok := log.(jsonSwitcher); ok {
				s.SetJSON(settings.Log.JSON)
			}
			return settings, nil
		},
	})
}
