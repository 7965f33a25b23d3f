// Package trend implements a forecasting engine that fits a linear trend
// plus optional seasonal profiles to a daily series.
package trend

import (
	"errors"
	"math"
	"time"

	"github.com/goccy/go-json"
	"go.trai.ch/augur/internal/core/domain"
	"go.trai.ch/augur/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// EngineName identifies the engine in artifact metadata.
	EngineName = "trend"

	modelVersion = 1

	// intervalZ is the normal quantile of an 80% prediction interval.
	intervalZ = 1.2815515655446004

	day = 24 * time.Hour

	// Minimum spans of history before a seasonal profile is estimated.
	minWeeklySpan = 14 * day
	minYearlySpan = 365 * day
)

var _ ports.ForecastEngine = (*Engine)(nil)

// model is the fitted state. It is also the serialized payload.
type model struct {
	Version   int       `json:"version"`
	Origin    time.Time `json:"origin"`
	Last      time.Time `json:"last"`
	Intercept float64   `json:"intercept"`
	Slope     float64   `json:"slope"`
	Weekly    []float64 `json:"weekly,omitempty"`
	Yearly    []float64 `json:"yearly,omitempty"`
	Sigma     float64   `json:"sigma"`
	Points    int       `json:"points"`
}

// Engine implements ports.ForecastEngine. It is stateless and safe for concurrent use.
type Engine struct{}

// New creates an Engine.
func New() *Engine {
	return &Engine{}
}

// Name returns the engine identifier.
func (e *Engine) Name() string {
	return EngineName
}

// Fit estimates trend, seasonal profiles and residual spread from frame.
// Daily seasonality is accepted but has no effect on daily bars.
func (e *Engine) Fit(frame []domain.Observation, seasonality domain.Seasonality) (ports.ModelHandle, error) {
	if len(frame) < 2 {
		return nil, zerr.With(zerr.Wrap(domain.ErrModelFitFailed, "need at least two observations"), "points", len(frame))
	}

	origin := domain.TruncateDay(frame[0].Date)
	last := origin
	xs := make([]float64, len(frame))
	ys := make([]float64, len(frame))
	for i, o := range frame {
		if math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
			return nil, zerr.With(zerr.Wrap(domain.ErrModelFitFailed, "observation is not a number"),
				"date", o.Date.Format(domain.DateLayout))
		}
		d := domain.TruncateDay(o.Date)
		if d.Before(origin) {
			return nil, zerr.Wrap(domain.ErrModelFitFailed, "observations are not in date order")
		}
		if d.After(last) {
			last = d
		}
		xs[i] = dayIndex(origin, d)
		ys[i] = o.Value
	}

	intercept, slope, ok := leastSquares(xs, ys)
	if !ok {
		return nil, zerr.Wrap(domain.ErrModelFitFailed, "observations span a single day")
	}

	m := &model{
		Version:   modelVersion,
		Origin:    origin,
		Last:      last,
		Intercept: intercept,
		Slope:     slope,
		Points:    len(frame),
	}

	residuals := make([]float64, len(frame))
	for i := range frame {
		residuals[i] = ys[i] - (intercept + slope*xs[i])
	}

	span := last.Sub(origin)
	if seasonality.Yearly && span >= minYearlySpan {
		m.Yearly = profile(frame, residuals, 12, monthBucket)
		subtract(frame, residuals, m.Yearly, monthBucket)
	}
	if seasonality.Weekly && span >= minWeeklySpan {
		m.Weekly = profile(frame, residuals, 7, weekdayBucket)
		subtract(frame, residuals, m.Weekly, weekdayBucket)
	}

	m.Sigma = spread(residuals)
	return m, nil
}

// Predict returns horizonDays daily rows starting the day after the last observation.
func (e *Engine) Predict(handle ports.ModelHandle, horizonDays int) ([]domain.ForecastPoint, error) {
	m, ok := handle.(*model)
	if !ok || m == nil {
		return nil, zerr.Wrap(domain.ErrPredictFailed, "handle was not produced by the trend engine")
	}
	if horizonDays < 1 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidHorizon, "horizon must be positive"), "days", horizonDays)
	}

	points := make([]domain.ForecastPoint, horizonDays)
	for k := 1; k <= horizonDays; k++ {
		date := m.Last.AddDate(0, 0, k)
		estimate := m.value(date)
		width := intervalZ * m.Sigma * math.Sqrt(float64(k))
		points[k-1] = domain.ForecastPoint{
			Date:     date,
			Estimate: estimate,
			Lower:    estimate - width,
			Upper:    estimate + width,
		}
	}
	return points, nil
}

// Serialize encodes the handle as JSON.
func (e *Engine) Serialize(handle ports.ModelHandle) ([]byte, error) {
	m, ok := handle.(*model)
	if !ok || m == nil {
		return nil, zerr.Wrap(domain.ErrModelFitFailed, "handle was not produced by the trend engine")
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode model")
	}
	return data, nil
}

// Deserialize decodes a payload produced by Serialize.
func (e *Engine) Deserialize(payload []byte) (ports.ModelHandle, error) {
	var m model
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, zerr.Wrap(errors.Join(domain.ErrModelDecodeFailed, err), "failed to decode model")
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *model) validate() error {
	switch {
	case m.Version != modelVersion:
		return zerr.With(zerr.Wrap(domain.ErrModelDecodeFailed, "unsupported model version"), "version", m.Version)
	case m.Weekly != nil && len(m.Weekly) != 7:
		return zerr.Wrap(domain.ErrModelDecodeFailed, "weekly profile must have 7 buckets")
	case m.Yearly != nil && len(m.Yearly) != 12:
		return zerr.Wrap(domain.ErrModelDecodeFailed, "yearly profile must have 12 buckets")
	case m.Sigma < 0 || math.IsNaN(m.Sigma) || math.IsNaN(m.Slope) || math.IsNaN(m.Intercept):
		return zerr.Wrap(domain.ErrModelDecodeFailed, "model parameters are invalid")
	case m.Last.Before(m.Origin):
		return zerr.Wrap(domain.ErrModelDecodeFailed, "model dates are inverted")
	}
	return nil
}

func (m *model) value(date time.Time) float64 {
	v := m.Intercept + m.Slope*dayIndex(m.Origin, date)
	if m.Yearly != nil {
		v += m.Yearly[monthBucket(date)]
	}
	if m.Weekly != nil {
		v += m.Weekly[weekdayBucket(date)]
	}
	return v
}

func dayIndex(origin, t time.Time) float64 {
	return float64(t.Sub(origin) / day)
}

func monthBucket(t time.Time) int {
	return int(t.Month()) - 1
}

func weekdayBucket(t time.Time) int {
	return int(t.Weekday())
}

// leastSquares fits y = a + b*x. ok is false when x has no variance.
func leastSquares(xs, ys []float64) (a, b float64, ok bool) {
	n := float64(len(xs))
	var meanX, meanY float64
	for i := range xs {
		meanX += xs[i]
		meanY += ys[i]
	}
	meanX /= n
	meanY /= n

	var sxx, sxy float64
	for i := range xs {
		dx := xs[i] - meanX
		sxx += dx * dx
		sxy += dx * (ys[i] - meanY)
	}
	if sxx == 0 {
		return 0, 0, false
	}

	b = sxy / sxx
	return meanY - b*meanX, b, true
}

// profile averages residuals per bucket and centres the result on zero.
// Buckets without observations stay at zero.
func profile(frame []domain.Observation, residuals []float64, buckets int, bucket func(time.Time) int) []float64 {
	sums := make([]float64, buckets)
	counts := make([]int, buckets)
	for i, o := range frame {
		b := bucket(o.Date)
		sums[b] += residuals[i]
		counts[b]++
	}

	means := make([]float64, buckets)
	var total float64
	var filled int
	for b := range means {
		if counts[b] == 0 {
			continue
		}
		means[b] = sums[b] / float64(counts[b])
		total += means[b]
		filled++
	}

	if filled > 0 {
		centre := total / float64(filled)
		for b := range means {
			if counts[b] > 0 {
				means[b] -= centre
			}
		}
	}
	return means
}

func subtract(frame []domain.Observation, residuals, effects []float64, bucket func(time.Time) int) {
	for i, o := range frame {
		residuals[i] -= effects[bucket(o.Date)]
	}
}

// spread is the residual standard deviation with two degrees of freedom
// spent on the trend.
func spread(residuals []float64) float64 {
	dof := len(residuals) - 2
	if dof < 1 {
		dof = 1
	}
	var ss float64
	for _, r := range residuals {
		ss += r * r
	}
	return math.Sqrt(ss / float64(dof))
}
