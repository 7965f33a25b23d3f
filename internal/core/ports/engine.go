package ports

import "go.trai.ch/augur/internal/core/domain"

// ModelHandle is the loaded, usable form of a fitted model.
// Its concrete type belongs to the ForecastEngine that produced it.
type ModelHandle any

// ForecastEngine is the pluggable statistical forecasting capability.
//
//go:generate mockgen -source=engine.go -destination=mocks/mock_engine.go -package=mocks
type ForecastEngine interface {
	// Name identifies the engine in artifact metadata.
	Name() string

	// Fit trains a model on the frame.
	Fit(frame []domain.Observation, seasonality domain.Seasonality) (ModelHandle, error)

	// Predict produces horizonDays consecutive daily rows following the training data.
	Predict(handle ModelHandle, horizonDays int) ([]domain.ForecastPoint, error)

	// Serialize encodes a handle into artifact payload bytes.
	Serialize(handle ModelHandle) ([]byte, error)

	// Deserialize decodes artifact payload bytes into a handle.
	Deserialize(payload []byte) (ModelHandle, error)
}
