package domain

import "time"

// ForecastPoint is one forecast row.
// Lower <= Estimate <= Upper holds for every point produced by an engine.
type ForecastPoint struct {
	Date     time.Time `json:"date"`
	Estimate float64   `json:"estimate"`
	Lower    float64   `json:"lower"`
	Upper    float64   `json:"upper"`
}

// Seasonality selects the seasonal components an engine should fit.
type Seasonality struct {
	Yearly bool `koanf:"yearly" yaml:"yearly"`
	Weekly bool `koanf:"weekly" yaml:"weekly"`
	Daily  bool `koanf:"daily"  yaml:"daily"`
}
