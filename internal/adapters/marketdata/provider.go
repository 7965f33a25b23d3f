// Package marketdata implements the DataProvider port: daily bars from an
// HTTP source, cached on disk as one CSV file per identifier.
package marketdata

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sony/gobreaker/v2"
	augurfs "go.trai.ch/augur/internal/adapters/fs"
	"go.trai.ch/augur/internal/core/domain"
	"go.trai.ch/augur/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// coverageTolerance absorbs weekends and holidays at the edges of a window.
const coverageTolerance = 7 * 24 * time.Hour

var _ ports.DataProvider = (*Provider)(nil)

// Provider implements ports.DataProvider.
type Provider struct {
	dataDir    string
	settings   domain.SourceSettings
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[domain.Series]
	logger     ports.Logger
	metrics    ports.Metrics
	now        func() time.Time

	requestGroup singleflight.Group
}

// NewProvider creates a Provider caching into dataDir.
func NewProvider(dataDir string, settings domain.SourceSettings, logger ports.Logger, metrics ports.Metrics) *Provider {
	return newProviderWithClient(dataDir, settings, logger, metrics, &http.Client{Timeout: settings.Timeout}, time.Now)
}

// newProviderWithClient creates a Provider with a custom http client and clock (used for testing).
func newProviderWithClient(
	dataDir string,
	settings domain.SourceSettings,
	logger ports.Logger,
	metrics ports.Metrics,
	client *http.Client,
	now func() time.Time,
) *Provider {
	limit := rate.Inf
	if settings.RatePerSecond > 0 {
		limit = rate.Limit(settings.RatePerSecond)
	}

	p := &Provider{
		dataDir:    filepath.Clean(dataDir),
		settings:   settings,
		httpClient: client,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger,
		metrics:    metrics,
		now:        now,
	}

	failures := settings.BreakerFailures
	p.breaker = gobreaker.NewCircuitBreaker[domain.Series](gobreaker.Settings{
		Name:         "marketdata",
		MaxRequests:  1,
		Timeout:      settings.BreakerTimeout,
		IsSuccessful: breakerSuccess,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return failures > 0 && counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			p.logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return p
}

// Fetch returns the cleaned records of id within [start, end], serving them
// from the cache file when it covers the window.
func (p *Provider) Fetch(ctx context.Context, id domain.Identifier, start, end time.Time) (domain.Series, error) {
	cached, modTime, err := p.readCache(id)
	if err != nil {
		p.logger.Warn("ignoring unreadable data cache", "id", id.String(), "error", err.Error())
		cached = nil
	}

	if p.covers(cached, modTime, start, end) {
		return window(id, cached, start, end)
	}

	// The refresh is shared by every caller asking for the same window, so it
	// runs detached from ctx; a caller whose ctx ends only stops waiting.
	key := id.String() + "|" + start.Format(domain.DateLayout) + "|" + end.Format(domain.DateLayout)
	ch := p.requestGroup.DoChan(key, func() (any, error) {
		shared, cancel := p.sharedContext(ctx)
		defer cancel()
		return p.refresh(shared, id, cached, start, end)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return window(id, res.Val.(domain.Series), start, end) //nolint:forcetypeassert // refresh always returns domain.Series
	case <-ctx.Done():
		return nil, zerr.With(zerr.Wrap(ctx.Err(), "stopped waiting for data source"), "id", id.String())
	}
}

// sharedContext keeps the values of ctx but not its cancellation, bounded by
// the source timeout when one is configured.
func (p *Provider) sharedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if p.settings.Timeout > 0 {
		return context.WithTimeout(detached, p.settings.Timeout)
	}
	return context.WithCancel(detached)
}

// Cached returns the cached series of id without contacting the source.
func (p *Provider) Cached(id domain.Identifier) (domain.Series, error) {
	series, _, err := p.readCache(id)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrEmptyResult, "no cached data"), "id", id.String())
	}
	return series, nil
}

// refresh downloads the window, merges it into the cached series and rewrites the cache file.
func (p *Provider) refresh(
	ctx context.Context,
	id domain.Identifier,
	cached domain.Series,
	start, end time.Time,
) (domain.Series, error) {
	fetched, err := p.download(ctx, id, start, end)
	if err != nil {
		return nil, err
	}

	fetched = domain.CleanSeries(fetched)
	if len(fetched) == 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrEmptyResult, "source returned no usable records"), "id", id.String())
	}

	merged := domain.CleanSeries(append(append(domain.Series{}, cached...), fetched...))
	if err := p.writeCache(id, merged); err != nil {
		p.logger.Warn("failed to update data cache", "id", id.String(), "error", err.Error())
	}

	return merged, nil
}

// covers reports whether the cached series can answer a request for [start, end].
func (p *Provider) covers(s domain.Series, modTime time.Time, start, end time.Time) bool {
	first, last, ok := s.Bounds()
	if !ok {
		return false
	}
	if first.After(domain.TruncateDay(start).Add(coverageTolerance)) {
		return false
	}
	if !last.Before(domain.TruncateDay(end).Add(-coverageTolerance)) {
		return true
	}

	// The source cannot have data past today; a file written today is current.
	today := domain.TruncateDay(p.now())
	return !domain.TruncateDay(end).Before(today) && domain.TruncateDay(modTime).Equal(today)
}

func window(id domain.Identifier, s domain.Series, start, end time.Time) (domain.Series, error) {
	w := s.Window(start, end)
	if len(w) == 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrEmptyResult, "no records in window"), "id", id.String())
	}
	return w, nil
}

func (p *Provider) cachePath(id domain.Identifier) string {
	return filepath.Join(p.dataDir, domain.DataFileName(id))
}

// readCache returns the cached series and the file modification time.
// A missing file is an empty series.
func (p *Provider) readCache(id domain.Identifier) (domain.Series, time.Time, error) {
	path := p.cachePath(id)
	data, err := os.ReadFile(path) //nolint:gosec // Path is built from a validated identifier
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, time.Time{}, nil
		}
		return nil, time.Time{}, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "path", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, time.Time{}, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "path", path)
	}

	series, err := parseSeries(bytes.NewReader(data))
	if err != nil {
		return nil, time.Time{}, zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "path", path)
	}

	return domain.CleanSeries(series), info.ModTime(), nil
}

func (p *Provider) writeCache(id domain.Identifier, s domain.Series) error {
	data, err := encodeSeries(s)
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}
	return augurfs.WriteFileAtomic(p.cachePath(id), data)
}
