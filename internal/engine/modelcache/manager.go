// Package modelcache implements the in-memory model lifecycle: per identifier
// it serves a cached handle, loads a stored artifact or trains a new one, and
// guarantees that concurrent requests share a single resolve.
package modelcache

import (
	"context"
	"sync"
	"time"

	"go.trai.ch/augur/internal/core/domain"
	"go.trai.ch/augur/internal/core/ports"
	"go.trai.ch/zerr"
)

// job is one resolve execution. Its outcome is readable once done is closed.
type job struct {
	generation uint64
	force      bool
	prev       *job
	done       chan struct{}

	handle ports.ModelHandle
	err    error
}

// entry is the state machine of one identifier.
type entry struct {
	mu sync.RWMutex

	state      State
	handle     ports.ModelHandle
	err        error
	failedAt   time.Time
	generation uint64

	// job is the resolve new callers join. It is nil unless state is StateLoading.
	job *job
	// inflight is the most recently started job, which may be stale after an
	// invalidation. New jobs wait for it so resolves never overlap.
	inflight *job
}

// reset moves e to StateAbsent under a new generation. The caller must hold e.mu.
func (e *entry) reset() {
	e.generation++
	e.state = StateAbsent
	e.handle = nil
	e.err = nil
	e.failedAt = time.Time{}
	e.job = nil
}

// Manager caches model handles per identifier.
type Manager struct {
	store    ports.ModelStore
	trainer  ports.Trainer
	engine   ports.ForecastEngine
	logger   ports.Logger
	metrics  ports.Metrics
	cooldown time.Duration

	mu      sync.Mutex
	entries map[domain.Identifier]*entry
	closed  bool

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewManager creates a Manager. A failed resolve is returned to callers
// without retrying until cooldown has elapsed.
func NewManager(
	store ports.ModelStore,
	trainer ports.Trainer,
	engine ports.ForecastEngine,
	logger ports.Logger,
	metrics ports.Metrics,
	cooldown time.Duration,
) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		store:    store,
		trainer:  trainer,
		engine:   engine,
		logger:   logger,
		metrics:  metrics,
		cooldown: cooldown,
		entries:  make(map[domain.Identifier]*entry),
		baseCtx:  ctx,
		cancel:   cancel,
	}
}

// GetOrLoad returns a ready handle for id, loading or training it if needed.
//
// Concurrent callers for the same id share one resolve. The resolve runs under
// the manager's own context: when ctx ends the caller stops waiting and gets
// ctx.Err(), but the resolve continues for the other waiters.
func (m *Manager) GetOrLoad(ctx context.Context, id domain.Identifier) (ports.ModelHandle, error) {
	e, err := m.entry(id)
	if err != nil {
		return nil, err
	}

	e.mu.RLock()
	if e.state == StateReady {
		h := e.handle
		e.mu.RUnlock()
		m.metrics.CacheLookup(ports.CacheHit)
		return h, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	switch e.state {
	case StateReady:
		h := e.handle
		e.mu.Unlock()
		m.metrics.CacheLookup(ports.CacheHit)
		return h, nil

	case StateLoading:
		j := e.job
		e.mu.Unlock()
		m.metrics.CacheLookup(ports.CacheWait)
		return wait(ctx, j)

	case StateFailed:
		if time.Since(e.failedAt) < m.cooldown {
			err := e.err
			e.mu.Unlock()
			m.metrics.CacheLookup(ports.CacheCooldown)
			return nil, err
		}
	}

	j, err := m.start(e, id, false)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	m.metrics.CacheLookup(ports.CacheMiss)
	return wait(ctx, j)
}

// Retrain discards any cached state for id and resolves it again by training,
// even when a stored artifact exists. Callers of GetOrLoad arriving meanwhile
// join the retrain.
func (m *Manager) Retrain(ctx context.Context, id domain.Identifier) (ports.ModelHandle, error) {
	e, err := m.entry(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	j, err := m.start(e, id, true)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	m.metrics.CacheLookup(ports.CacheMiss)
	return wait(ctx, j)
}

// Invalidate forces the entry for id to Absent and bumps its generation.
// A resolve already in flight still completes for its waiters, but its
// result is not cached.
func (m *Manager) Invalidate(id domain.Identifier) {
	m.mu.Lock()
	e, ok := m.entries[id]
	m.mu.Unlock()
	if !ok {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
}

// Forget invalidates id and runs remove once no resolve for id is in flight.
// A resolve started before Forget therefore cannot store an artifact after
// remove has deleted it. remove runs with the entry locked, so resolves for id
// requested meanwhile start only after it returns.
func (m *Manager) Forget(id domain.Identifier, remove func() error) error {
	m.mu.Lock()
	e, ok := m.entries[id]
	if !ok {
		e = &entry{}
		m.entries[id] = e
	}
	m.mu.Unlock()

	for {
		e.mu.Lock()
		e.reset()

		inflight := e.inflight
		if inflight == nil {
			err := remove()
			e.mu.Unlock()
			return err
		}
		e.mu.Unlock()

		<-inflight.done
	}
}

// State returns a snapshot of the entry for id. A failure whose cool-down has
// elapsed is reported as StateAbsent.
func (m *Manager) State(id domain.Identifier) Snapshot {
	m.mu.Lock()
	e, ok := m.entries[id]
	m.mu.Unlock()
	if !ok {
		return Snapshot{State: StateAbsent}
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	s := Snapshot{State: e.state, Generation: e.generation}
	if e.state == StateFailed {
		if time.Since(e.failedAt) >= m.cooldown {
			s.State = StateAbsent
			return s
		}
		s.Err = e.err
		s.FailedAt = e.failedAt
	}
	return s
}

// Close cancels in-flight resolves and waits for them to finish.
// Later calls to GetOrLoad and Retrain fail with domain.ErrManagerClosed.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
}

func (m *Manager) entry(id domain.Identifier) (*entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, zerr.Wrap(domain.ErrManagerClosed, "model cache is closed")
	}
	e, ok := m.entries[id]
	if !ok {
		e = &entry{}
		m.entries[id] = e
	}
	return e, nil
}

// start moves e to StateLoading under a fresh generation and launches the
// resolve. The caller must hold e.mu.
func (m *Manager) start(e *entry, id domain.Identifier, force bool) (*job, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, zerr.Wrap(domain.ErrManagerClosed, "model cache is closed")
	}
	m.wg.Add(1)
	m.mu.Unlock()

	e.generation++
	j := &job{
		generation: e.generation,
		force:      force,
		prev:       e.inflight,
		done:       make(chan struct{}),
	}

	e.state = StateLoading
	e.handle = nil
	e.err = nil
	e.job = j
	e.inflight = j

	go m.run(e, id, j)
	return j, nil
}

func (m *Manager) run(e *entry, id domain.Identifier, j *job) {
	defer m.wg.Done()

	if j.prev != nil {
		<-j.prev.done
	}
	j.prev = nil

	j.handle, j.err = m.resolve(m.baseCtx, id, j.force)

	e.mu.Lock()
	if e.inflight == j {
		e.inflight = nil
	}
	if e.generation == j.generation && e.job == j {
		m.settle(e, id, j)
	} else {
		m.logger.Info("discarding stale model resolve", "id", id.String(), "generation", j.generation)
	}
	e.mu.Unlock()

	close(j.done)
}

// settle applies the outcome of the current job. The caller must hold e.mu.
func (m *Manager) settle(e *entry, id domain.Identifier, j *job) {
	e.job = nil

	switch {
	case j.err == nil:
		e.state = StateReady
		e.handle = j.handle
	case poisons(j.err):
		e.state = StateFailed
		e.err = j.err
		e.failedAt = time.Now()
		m.logger.Warn("model resolve failed", "id", id.String(), "cooldown", m.cooldown.String())
	default:
		e.state = StateAbsent
		m.logger.Warn("model resolve failed, entry stays retryable", "id", id.String())
	}
}

// resolve loads the stored artifact for id, training it first when it is
// missing or when force is set.
func (m *Manager) resolve(ctx context.Context, id domain.Identifier, force bool) (ports.ModelHandle, error) {
	train := force
	if !force {
		exists, err := m.store.Exists(id)
		if err != nil {
			return nil, err
		}
		train = !exists
	}

	if train {
		if _, err := m.trainer.Train(ctx, id); err != nil {
			return nil, err
		}
	}

	artifact, err := m.store.Load(id)
	if err != nil {
		return nil, err
	}

	handle, err := m.engine.Deserialize(artifact.Payload)
	if err != nil {
		return nil, domain.StorageError(zerr.With(err, "id", id.String()))
	}
	return handle, nil
}

// poisons reports whether err should hold the entry in StateFailed for the
// cool-down. Storage, cancellation and internal failures leave it retryable.
func poisons(err error) bool {
	switch domain.KindOf(err) {
	case domain.KindDataUnavailable, domain.KindTrainingFailed:
		return true
	default:
		return false
	}
}

func wait(ctx context.Context, j *job) (ports.ModelHandle, error) {
	select {
	case <-j.done:
		return j.handle, j.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
