package domain_test

import (
	"errors"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/augur/internal/core/domain"
	"go.trai.ch/zerr"
)

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCleanSeries(t *testing.T) {
	t.Parallel()

	raw := domain.Series{
		{Date: day("2024-01-03"), Close: 3},
		{Date: day("2024-01-01"), Close: 1},
		{Date: day("2024-01-02"), Close: math.NaN()},
		{Date: day("2024-01-03").Add(5 * time.Hour), Close: 33},
		{Date: day("2024-01-04"), Close: math.Inf(1)},
	}

	cleaned := domain.CleanSeries(raw)

	require.Len(t, cleaned, 2)
	assert.Equal(t, day("2024-01-01"), cleaned[0].Date)
	assert.Equal(t, day("2024-01-03"), cleaned[1].Date)
	assert.InDelta(t, 33.0, cleaned[1].Close, 1e-9, "last record for a date wins")
	assert.Len(t, raw, 5, "input must not be modified")
}

func TestSeries_WindowAndBounds(t *testing.T) {
	t.Parallel()

	s := domain.Series{
		{Date: day("2024-01-01"), Close: 1},
		{Date: day("2024-01-02"), Close: 2},
		{Date: day("2024-01-03"), Close: 3},
	}

	w := s.Window(day("2024-01-02"), day("2024-01-03"))
	require.Len(t, w, 2)
	assert.Equal(t, day("2024-01-02"), w[0].Date)

	open := s.Window(day("2024-01-02"), time.Time{})
	assert.Len(t, open, 2)

	first, last, ok := s.Bounds()
	require.True(t, ok)
	assert.Equal(t, day("2024-01-01"), first)
	assert.Equal(t, day("2024-01-03"), last)

	_, _, ok = domain.Series{}.Bounds()
	assert.False(t, ok)

	frame := s.Frame()
	require.Len(t, frame, 3)
	assert.InDelta(t, 3.0, frame[2].Value, 1e-9)
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		want   domain.ErrorKind
		status int
	}{
		{"invalid identifier", zerr.Wrap(domain.ErrInvalidIdentifier, "bad"), domain.KindValidation, http.StatusBadRequest},
		{"invalid horizon", domain.ErrInvalidHorizon, domain.KindValidation, http.StatusBadRequest},
		{
			"insufficient data inside training failure",
			errors.Join(domain.ErrTrainingFailed, zerr.Wrap(domain.ErrInsufficientData, "0 points")),
			domain.KindDataUnavailable, http.StatusNotFound,
		},
		{"model not found", domain.ErrModelNotFound, domain.KindNotFound, http.StatusNotFound},
		{
			"storage inside training failure",
			errors.Join(domain.ErrTrainingFailed, domain.StorageError(errors.New("disk full"))),
			domain.KindStorage, http.StatusInternalServerError,
		},
		{"fit failure", errors.Join(domain.ErrTrainingFailed, domain.ErrModelFitFailed), domain.KindTrainingFailed, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), domain.KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			kind := domain.KindOf(tt.err)
			assert.Equal(t, tt.want, kind, kind.String())
			assert.Equal(t, tt.status, kind.HTTPStatus())
		})
	}
}

func TestTrainingSettings_Window(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 13, 0, 0, 0, time.UTC)

	rolling := domain.TrainingSettings{Mode: domain.WindowRolling, RollingDays: 10}
	start, end, err := rolling.Window(now)
	require.NoError(t, err)
	assert.Equal(t, day("2025-06-15"), end)
	assert.Equal(t, day("2025-06-05"), start)

	absolute := domain.TrainingSettings{Mode: domain.WindowAbsolute, Start: "2020-01-01", End: "2021-01-01"}
	start, end, err = absolute.Window(now)
	require.NoError(t, err)
	assert.Equal(t, day("2020-01-01"), start)
	assert.Equal(t, day("2021-01-01"), end)

	_, _, err = domain.TrainingSettings{Mode: "weird"}.Window(now)
	require.ErrorIs(t, err, domain.ErrConfigInvalid)
}

func TestSettings_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, domain.DefaultSettings().Validate())

	s := domain.DefaultSettings()
	s.Predict.MaxHorizon = 0
	require.ErrorIs(t, s.Validate(), domain.ErrConfigInvalid)

	s = domain.DefaultSettings()
	s.Training.Start, s.Training.End = "2024-01-01", "2023-01-01"
	require.ErrorIs(t, s.Validate(), domain.ErrConfigInvalid)

	s = domain.DefaultSettings()
	s.Training.MinPoints = 1
	require.ErrorIs(t, s.Validate(), domain.ErrConfigInvalid)
}
