package marketdata

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.trai.ch/augur/internal/core/domain"
	"go.trai.ch/zerr"
)

// download fetches daily bars for id covering [start, end] from the upstream source.
func (p *Provider) download(ctx context.Context, id domain.Identifier, start, end time.Time) (domain.Series, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrSourceUnavailable, err), "rate limit wait aborted"),
			"id", id.String())
	}

	series, err := p.breaker.Execute(func() (domain.Series, error) {
		return p.request(ctx, id, start, end)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = zerr.Wrap(errors.Join(domain.ErrSourceUnavailable, err), "circuit breaker rejected request")
	}
	p.metrics.SourceFetch(err == nil)
	if err != nil {
		return nil, zerr.With(err, "id", id.String())
	}

	return series, nil
}

func (p *Provider) request(ctx context.Context, id domain.Identifier, start, end time.Time) (domain.Series, error) {
	u, err := url.JoinPath(p.settings.BaseURL, url.PathEscape(id.String()))
	if err != nil {
		return nil, zerr.Wrap(err, "invalid source url")
	}

	q := url.Values{}
	q.Set("period1", strconv.FormatInt(domain.TruncateDay(start).Unix(), 10))
	q.Set("period2", strconv.FormatInt(domain.TruncateDay(end).AddDate(0, 0, 1).Unix(), 10))
	q.Set("interval", "1d")
	q.Set("events", "history")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, zerr.Wrap(errors.Join(domain.ErrSourceUnavailable, err), "failed to query data source")
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort close in defer

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, zerr.Wrap(domain.ErrEmptyResult, "unknown identifier")
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrSourceUnavailable, "unexpected response"),
			"status", resp.StatusCode)
	}

	series, err := parseSeries(resp.Body)
	if err != nil {
		return nil, zerr.Wrap(errors.Join(domain.ErrSourceUnavailable, err), "failed to decode response")
	}
	return series, nil
}

// breakerSuccess reports whether an outcome counts as healthy for the circuit breaker.
// An identifier without data or a caller giving up says nothing about the source.
func breakerSuccess(err error) bool {
	return err == nil ||
		errors.Is(err, domain.ErrEmptyResult) ||
		errors.Is(err, context.Canceled)
}
