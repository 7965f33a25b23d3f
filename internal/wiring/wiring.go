// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/augur/internal/adapters/config"
	_ "go.trai.ch/augur/internal/adapters/logger"
	_ "go.trai.ch/augur/internal/adapters/marketdata"
	_ "go.trai.ch/augur/internal/adapters/metrics"
	_ "go.trai.ch/augur/internal/adapters/modelstore"
	_ "go.trai.ch/augur/internal/adapters/telemetry"
	_ "go.trai.ch/augur/internal/adapters/trend"
	// Register app and engine nodes.
	_ "go.trai.ch/augur/internal/app"
	_ "go.trai.ch/augur/internal/engine/modelcache"
	_ "go.trai.ch/augur/internal/engine/trainer"
)
