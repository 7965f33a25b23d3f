package domain

import (
	"math"
	"slices"
	"time"
)

// DateLayout is the calendar date format used in data files and forecast output.
const DateLayout = "2006-01-02"

// HistoricalRecord is one daily bar of a historical series.
// Missing prices are represented as NaN until the series is cleaned.
type HistoricalRecord struct {
	Date  time.Time `json:"date"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
}

// Series is a time-ordered sequence of historical records.
type Series []HistoricalRecord

// Observation is one row of a training frame.
type Observation struct {
	Date  time.Time
	Value float64
}

// CleanSeries returns a copy of s without records whose close is missing,
// with one record per calendar date (the last occurrence wins) in ascending date order.
func CleanSeries(s Series) Series {
	byDate := make(map[time.Time]HistoricalRecord, len(s))
	for _, rec := range s {
		if math.IsNaN(rec.Close) || math.IsInf(rec.Close, 0) {
			continue
		}
		rec.Date = TruncateDay(rec.Date)
		byDate[rec.Date] = rec
	}

	cleaned := make(Series, 0, len(byDate))
	for _, rec := range byDate {
		cleaned = append(cleaned, rec)
	}
	slices.SortFunc(cleaned, func(a, b HistoricalRecord) int {
		return a.Date.Compare(b.Date)
	})
	return cleaned
}

// Window returns the records whose date lies within [start, end], both inclusive.
// A zero end means no upper bound. s must be sorted.
func (s Series) Window(start, end time.Time) Series {
	out := make(Series, 0, len(s))
	for _, rec := range s {
		if !start.IsZero() && rec.Date.Before(TruncateDay(start)) {
			continue
		}
		if !end.IsZero() && rec.Date.After(TruncateDay(end)) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Frame builds the training frame from the close prices of s.
func (s Series) Frame() []Observation {
	frame := make([]Observation, len(s))
	for i, rec := range s {
		frame[i] = Observation{Date: rec.Date, Value: rec.Close}
	}
	return frame
}

// Bounds returns the first and last dates of a sorted series.
// ok is false when the series is empty.
func (s Series) Bounds() (first, last time.Time, ok bool) {
	if len(s) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return s[0].Date, s[len(s)-1].Date, true
}

// TruncateDay returns midnight UTC of the calendar day of t.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
