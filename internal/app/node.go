package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/augur/internal/adapters/config"     //nolint:depguard // Wired in app layer
	"go.trai.ch/augur/internal/adapters/logger"     //nolint:depguard // Wired in app layer
	"go.trai.ch/augur/internal/adapters/marketdata" //nolint:depguard // Wired in app layer
	"go.trai.ch/augur/internal/adapters/metrics"    //nolint:depguard // Wired in app layer
	"go.trai.ch/augur/internal/adapters/modelstore" //nolint:depguard // Wired in app layer
	"go.trai.ch/augur/internal/adapters/telemetry"  //nolint:depguard // Wired in app layer
	"go.trai.ch/augur/internal/adapters/trend"      //nolint:depguard // Wired in app layer
	"go.trai.ch/augur/internal/core/domain"
	"go.trai.ch/augur/internal/core/ports"
	"go.trai.ch/augur/internal/engine/modelcache"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			modelcache.NodeID,
			trend.NodeID,
			marketdata.NodeID,
			modelstore.NodeID,
			config.SettingsNodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			metrics.NodeID,
			telemetry.TracerNodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
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

			return NewComponents(app, log, m, tracer), nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	cache, err := graft.Dep[*modelcache.Manager](ctx)
	if err != nil {
		return nil, err
	}

	engine, err := graft.Dep[ports.ForecastEngine](ctx)
	if err != nil {
		return nil, err
	}

	provider, err := graft.Dep[ports.DataProvider](ctx)
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

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	return New(cache, engine, provider, store, settings, log, tracer), nil
}
