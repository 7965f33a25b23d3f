package marketdata

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"go.trai.ch/augur/internal/core/domain"
	"go.trai.ch/zerr"
)

var cacheHeader = []string{"date", "open", "high", "low", "close"}

// parseSeries decodes a daily bar CSV. Columns are located by header name,
// case-insensitively, so both the cache format and the upstream format
// (Date,Open,High,Low,Close,Adj Close,Volume) are accepted. Cells that are
// empty, "null" or unparseable become NaN; rows with a bad date are skipped.
func parseSeries(r io.Reader) (domain.Series, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, zerr.Wrap(err, "failed to read csv header")
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	dateCol, ok := cols["date"]
	if !ok {
		return nil, zerr.New("csv has no date column")
	}
	closeCol, ok := cols["close"]
	if !ok {
		return nil, zerr.New("csv has no close column")
	}

	var series domain.Series
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, zerr.Wrap(err, "failed to read csv row")
		}
		if dateCol >= len(row) {
			continue
		}

		date, err := time.Parse(domain.DateLayout, strings.TrimSpace(row[dateCol]))
		if err != nil {
			continue
		}

		series = append(series, domain.HistoricalRecord{
			Date:  date,
			Open:  cell(row, cols, "open"),
			High:  cell(row, cols, "high"),
			Low:   cell(row, cols, "low"),
			Close: cellAt(row, closeCol),
		})
	}

	return series, nil
}

func cell(row []string, cols map[string]int, name string) float64 {
	i, ok := cols[name]
	if !ok {
		return math.NaN()
	}
	return cellAt(row, i)
}

func cellAt(row []string, i int) float64 {
	if i >= len(row) {
		return math.NaN()
	}
	raw := strings.TrimSpace(row[i])
	if raw == "" || strings.EqualFold(raw, "null") {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// encodeSeries renders s in the cache format.
func encodeSeries(s domain.Series) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(cacheHeader); err != nil {
		return nil, zerr.Wrap(err, "failed to write csv header")
	}
	for _, rec := range s {
		row := []string{
			rec.Date.Format(domain.DateLayout),
			formatPrice(rec.Open),
			formatPrice(rec.High),
			formatPrice(rec.Low),
			formatPrice(rec.Close),
		}
		if err := w.Write(row); err != nil {
			return nil, zerr.Wrap(err, "failed to write csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, zerr.Wrap(err, "failed to flush csv")
	}

	return buf.Bytes(), nil
}

func formatPrice(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
