package domain

import (
	"time"

	"go.trai.ch/zerr"
)

// Training window modes.
const (
	WindowAbsolute = "absolute"
	WindowRolling  = "rolling"
)

// Settings is the effective configuration consumed by the lifecycle components.
type Settings struct {
	DataDir     string           `koanf:"data_dir"    yaml:"data_dir"`
	ModelsDir   string           `koanf:"models_dir"  yaml:"models_dir"`
	Training    TrainingSettings `koanf:"training"    yaml:"training"`
	Seasonality Seasonality      `koanf:"seasonality" yaml:"seasonality"`
	Cache       CacheSettings    `koanf:"cache"       yaml:"cache"`
	Predict     PredictSettings  `koanf:"predict"     yaml:"predict"`
	Source      SourceSettings   `koanf:"source"      yaml:"source"`
	Log         LogSettings      `koanf:"log"         yaml:"log"`
}

// TrainingSettings controls the training window and data requirements.
type TrainingSettings struct {
	Mode        string `koanf:"mode"         yaml:"mode"`
	Start       string `koanf:"start"        yaml:"start"`
	End         string `koanf:"end"          yaml:"end"`
	RollingDays int    `koanf:"rolling_days" yaml:"rolling_days"`
	MinPoints   int    `koanf:"min_points"   yaml:"min_points"`
}

// CacheSettings controls the model cache manager.
type CacheSettings struct {
	FailureCooldown time.Duration `koanf:"failure_cooldown" yaml:"failure_cooldown"`
}

// PredictSettings controls the prediction service.
type PredictSettings struct {
	MaxHorizon int `koanf:"max_horizon" yaml:"max_horizon"`
}

// SourceSettings controls the upstream market data source.
type SourceSettings struct {
	BaseURL         string        `koanf:"base_url"         yaml:"base_url"`
	Timeout         time.Duration `koanf:"timeout"          yaml:"timeout"`
	RatePerSecond   float64       `koanf:"rate_per_second"  yaml:"rate_per_second"`
	BreakerFailures uint32        `koanf:"breaker_failures" yaml:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"  yaml:"breaker_timeout"`
}

// LogSettings controls log output.
type LogSettings struct {
	JSON  bool `koanf:"json"  yaml:"json"`
	Trace bool `koanf:"trace" yaml:"trace"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		DataDir:   DefaultDataPath(),
		ModelsDir: DefaultModelsPath(),
		Training: TrainingSettings{
			Mode:        WindowAbsolute,
			Start:       "2015-01-01",
			End:         "2025-01-01",
			RollingDays: 3650,
			MinPoints:   30,
		},
		Seasonality: Seasonality{Yearly: true, Weekly: true, Daily: false},
		Cache:       CacheSettings{FailureCooldown: time.Minute},
		Predict:     PredictSettings{MaxHorizon: 365},
		Source: SourceSettings{
			BaseURL:         "https://query1.finance.yahoo.com/v7/finance/download",
			Timeout:         30 * time.Second,
			RatePerSecond:   2,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
	}
}

// Window resolves the configured training window relative to now.
func (t TrainingSettings) Window(now time.Time) (start, end time.Time, err error) {
	switch t.Mode {
	case WindowRolling:
		end = TruncateDay(now)
		return end.AddDate(0, 0, -t.RollingDays), end, nil
	case WindowAbsolute, "":
		start, err = time.Parse(DateLayout, t.Start)
		if err != nil {
			return time.Time{}, time.Time{}, zerr.With(zerr.Wrap(ErrConfigInvalid, "training.start is not a date"),
				"value", t.Start)
		}
		end, err = time.Parse(DateLayout, t.End)
		if err != nil {
			return time.Time{}, time.Time{}, zerr.With(zerr.Wrap(ErrConfigInvalid, "training.end is not a date"),
				"value", t.End)
		}
		return start, end, nil
	default:
		return time.Time{}, time.Time{}, zerr.With(zerr.Wrap(ErrConfigInvalid, "unknown training window mode"),
			"mode", t.Mode)
	}
}

// Validate checks the settings for values the components cannot work with.
func (s Settings) Validate() error {
	if s.DataDir == "" || s.ModelsDir == "" {
		return zerr.Wrap(ErrConfigInvalid, "data_dir and models_dir must be set")
	}
	start, end, err := s.Training.Window(time.Now())
	if err != nil {
		return err
	}
	if !start.Before(end) {
		return zerr.Wrap(ErrConfigInvalid, "training window start must be before end")
	}
	if s.Training.Mode == WindowRolling && s.Training.RollingDays <= 0 {
		return zerr.With(zerr.Wrap(ErrConfigInvalid, "training.rolling_days must be positive"),
			"rolling_days", s.Training.RollingDays)
	}
	if s.Training.MinPoints < 2 {
		return zerr.With(zerr.Wrap(ErrConfigInvalid, "training.min_points must be at least 2"),
			"min_points", s.Training.MinPoints)
	}
	if s.Cache.FailureCooldown < 0 {
		return zerr.Wrap(ErrConfigInvalid, "cache.failure_cooldown must not be negative")
	}
	if s.Predict.MaxHorizon < 1 {
		return zerr.With(zerr.Wrap(ErrConfigInvalid, "predict.max_horizon must be positive"),
			"max_horizon", s.Predict.MaxHorizon)
	}
	if s.Source.BaseURL == "" {
		return zerr.Wrap(ErrConfigInvalid, "source.base_url must be set")
	}
	return nil
}
