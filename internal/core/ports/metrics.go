package ports

import "time"

// CacheResult labels the outcome of a model cache lookup.
type CacheResult string

const (
	// CacheHit means a ready handle was returned.
	CacheHit CacheResult = "hit"
	// CacheWait means the caller joined an in-flight resolve.
	CacheWait CacheResult = "wait"
	// CacheMiss means the caller started a resolve.
	CacheMiss CacheResult = "miss"
	// CacheCooldown means a stored failure was returned without retrying.
	CacheCooldown CacheResult = "cooldown"
)

// Metrics records lifecycle events.
//
//go:generate mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks
type Metrics interface {
	// CacheLookup counts one GetOrLoad call.
	CacheLookup(result CacheResult)
	// Training records one training run.
	Training(success bool, elapsed time.Duration)
	// SourceFetch records one upstream data request.
	SourceFetch(success bool)
}
