package modelcache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/augur/internal/core/domain"
	"go.trai.ch/augur/internal/core/ports"
	"go.trai.ch/augur/internal/core/ports/mocks"
	"go.trai.ch/augur/internal/engine/modelcache"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

// model is the handle the fake engine decodes: the payload text.
type model struct {
	version string
}

type fixture struct {
	manager *modelcache.Manager
	store   *mocks.MockModelStore
	trainer *mocks.MockTrainer
	engine  *mocks.MockForecastEngine
	metrics *mocks.MockMetrics
}

func newFixture(t *testing.T, cooldown time.Duration) fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := fixture{
		store:   mocks.NewMockModelStore(ctrl),
		trainer: mocks.NewMockTrainer(ctrl),
		engine:  mocks.NewMockForecastEngine(ctrl),
		metrics: mocks.NewMockMetrics(ctrl),
	}
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()

	f.manager = modelcache.NewManager(f.store, f.trainer, f.engine, log, f.metrics, cooldown)
	return f
}

// decodeVersions makes the engine decode any payload into a *model.
func (f fixture) decodeVersions() {
	f.engine.EXPECT().Deserialize(gomock.Any()).DoAndReturn(func(payload []byte) (ports.ModelHandle, error) {
		return &model{version: string(payload)}, nil
	}).AnyTimes()
}

func (f fixture) anyLookups() {
	f.metrics.EXPECT().CacheLookup(gomock.Any()).AnyTimes()
}

func artifact(version string) domain.ModelArtifact {
	return domain.ModelArtifact{Payload: []byte(version)}
}

func version(t *testing.T, h ports.ModelHandle) string {
	t.Helper()
	m, ok := h.(*model)
	require.True(t, ok, "unexpected handle type %T", h)
	return m.version
}

func TestManager_State_Unknown(t *testing.T) {
	f := newFixture(t, time.Minute)
	defer f.manager.Close()

	s := f.manager.State(domain.MustIdentifier("SPY"))
	assert.Equal(t, modelcache.StateAbsent, s.State)
	assert.Zero(t, s.Generation)
	assert.NoError(t, s.Err)
}

func TestManager_GetOrLoad_StoredArtifact(t *testing.T) {
	f := newFixture(t, time.Minute)
	defer f.manager.Close()
	f.decodeVersions()
	id := domain.MustIdentifier("MSFT")

	f.store.EXPECT().Exists(id).Return(true, nil).Times(1)
	f.store.EXPECT().Load(id).Return(artifact("v1"), nil).Times(1)
	f.trainer.EXPECT().Train(gomock.Any(), gomock.Any()).Times(0)
	f.metrics.EXPECT().CacheLookup(ports.CacheMiss).Times(1)
	f.metrics.EXPECT().CacheLookup(ports.CacheHit).Times(2)

	first, err := f.manager.GetOrLoad(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, "v1", version(t, first))

	for range 2 {
		h, err := f.manager.GetOrLoad(t.Context(), id)
		require.NoError(t, err)
		assert.Same(t, first, h)
	}

	s := f.manager.State(id)
	assert.Equal(t, modelcache.StateReady, s.State)
	assert.Equal(t, uint64(1), s.Generation)
}

func TestManager_GetOrLoad_SingleFlight(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t, time.Minute)
		defer f.manager.Close()
		f.decodeVersions()
		id := domain.MustIdentifier("AAPL")

		release := make(chan struct{})
		f.store.EXPECT().Exists(id).Return(false, nil).Times(1)
		f.trainer.EXPECT().Train(gomock.Any(), id).
			DoAndReturn(func(context.Context, domain.Identifier) (domain.ArtifactMeta, error) {
				<-release
				return domain.ArtifactMeta{Identifier: id}, nil
			}).
			Times(1)
		f.store.EXPECT().Load(id).Return(artifact("v1"), nil).Times(1)

		const callers = 8
		f.metrics.EXPECT().CacheLookup(ports.CacheMiss).Times(1)
		f.metrics.EXPECT().CacheLookup(ports.CacheWait).Times(callers - 1)

		handles := make([]ports.ModelHandle, callers)
		errs := make([]error, callers)
		var wg sync.WaitGroup
		for i := range callers {
			wg.Go(func() {
				handles[i], errs[i] = f.manager.GetOrLoad(t.Context(), id)
			})
		}

		synctest.Wait()
		assert.Equal(t, modelcache.StateLoading, f.manager.State(id).State)

		close(release)
		wg.Wait()

		for i := range callers {
			require.NoError(t, errs[i])
			assert.Same(t, handles[0], handles[i])
		}
		assert.Equal(t, modelcache.StateReady, f.manager.State(id).State)
	})
}

func TestManager_GetOrLoad_IndependentIdentifiers(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t, time.Minute)
		defer f.manager.Close()
		f.decodeVersions()
		f.anyLookups()
		slow := domain.MustIdentifier("AAPL")
		fast := domain.MustIdentifier("MSFT")

		release := make(chan struct{})
		f.store.EXPECT().Exists(slow).Return(false, nil)
		f.trainer.EXPECT().Train(gomock.Any(), slow).
			DoAndReturn(func(context.Context, domain.Identifier) (domain.ArtifactMeta, error) {
				<-release
				return domain.ArtifactMeta{}, nil
			})
		f.store.EXPECT().Load(slow).Return(artifact("slow"), nil)
		f.store.EXPECT().Exists(fast).Return(true, nil)
		f.store.EXPECT().Load(fast).Return(artifact("fast"), nil)

		var wg sync.WaitGroup
		wg.Go(func() {
			_, err := f.manager.GetOrLoad(t.Context(), slow)
			assert.NoError(t, err)
		})
		synctest.Wait()

		h, err := f.manager.GetOrLoad(t.Context(), fast)
		require.NoError(t, err)
		assert.Equal(t, "fast", version(t, h))
		assert.Equal(t, modelcache.StateLoading, f.manager.State(slow).State)

		close(release)
		wg.Wait()
	})
}

func TestManager_Invalidate_Reloads(t *testing.T) {
	f := newFixture(t, time.Minute)
	defer f.manager.Close()
	f.decodeVersions()
	f.anyLookups()
	id := domain.MustIdentifier("SPY")

	f.store.EXPECT().Exists(id).Return(true, nil).Times(2)
	f.store.EXPECT().Load(id).Return(artifact("v1"), nil).Times(1)
	f.store.EXPECT().Load(id).Return(artifact("v2"), nil).Times(1)

	h, err := f.manager.GetOrLoad(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, "v1", version(t, h))

	f.manager.Invalidate(id)
	s := f.manager.State(id)
	assert.Equal(t, modelcache.StateAbsent, s.State)
	assert.Equal(t, uint64(2), s.Generation)

	h, err = f.manager.GetOrLoad(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, "v2", version(t, h))
	assert.Equal(t, uint64(3), f.manager.State(id).Generation)
}

func TestManager_Invalidate_UnknownIsNoop(t *testing.T) {
	f := newFixture(t, time.Minute)
	defer f.manager.Close()

	id := domain.MustIdentifier("SPY")
	f.manager.Invalidate(id)
	assert.Equal(t, modelcache.StateAbsent, f.manager.State(id).State)
}

func TestManager_Invalidate_DiscardsStaleResult(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t, time.Minute)
		defer f.manager.Close()
		f.decodeVersions()
		f.anyLookups()
		id := domain.MustIdentifier("AAPL")

		release := make(chan struct{})
		var trainings atomic.Int32
		f.store.EXPECT().Exists(id).Return(false, nil).Times(2)
		f.trainer.EXPECT().Train(gomock.Any(), id).
			DoAndReturn(func(context.Context, domain.Identifier) (domain.ArtifactMeta, error) {
				if trainings.Add(1) == 1 {
					<-release
				}
				return domain.ArtifactMeta{}, nil
			}).
			Times(2)
		f.store.EXPECT().Load(id).Return(artifact("stale"), nil).Times(1)
		f.store.EXPECT().Load(id).Return(artifact("fresh"), nil).Times(1)

		var stale, fresh ports.ModelHandle
		var staleErr, freshErr error
		var wg sync.WaitGroup

		wg.Go(func() { stale, staleErr = f.manager.GetOrLoad(t.Context(), id) })
		synctest.Wait()

		f.manager.Invalidate(id)
		wg.Go(func() { fresh, freshErr = f.manager.GetOrLoad(t.Context(), id) })
		synctest.Wait()

		// The second resolve waits for the first one to finish.
		assert.Equal(t, int32(1), trainings.Load())
		assert.Equal(t, modelcache.StateLoading, f.manager.State(id).State)

		close(release)
		wg.Wait()

		require.NoError(t, staleErr)
		require.NoError(t, freshErr)
		assert.Equal(t, "stale", version(t, stale))
		assert.Equal(t, "fresh", version(t, fresh))

		s := f.manager.State(id)
		assert.Equal(t, modelcache.StateReady, s.State)
		assert.Equal(t, uint64(3), s.Generation)

		h, err := f.manager.GetOrLoad(t.Context(), id)
		require.NoError(t, err)
		assert.Same(t, fresh, h)
	})
}

func TestManager_Forget_WaitsForInflightTraining(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t, time.Minute)
		defer f.manager.Close()
		f.decodeVersions()
		f.anyLookups()
		id := domain.MustIdentifier("SPY")

		var (
			mu     sync.Mutex
			events []string
		)
		record := func(event string) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, event)
		}

		release := make(chan struct{})
		f.store.EXPECT().Exists(id).Return(false, nil).Times(1)
		f.trainer.EXPECT().Train(gomock.Any(), id).
			DoAndReturn(func(context.Context, domain.Identifier) (domain.ArtifactMeta, error) {
				<-release
				record("saved")
				return domain.ArtifactMeta{Identifier: id}, nil
			}).
			Times(1)
		f.store.EXPECT().Load(id).Return(artifact("v1"), nil).Times(1)

		var (
			h         ports.ModelHandle
			getErr    error
			forgetErr error
			wg        sync.WaitGroup
		)
		wg.Go(func() { h, getErr = f.manager.GetOrLoad(t.Context(), id) })
		synctest.Wait()

		wg.Go(func() {
			forgetErr = f.manager.Forget(id, func() error {
				record("deleted")
				return nil
			})
		})
		synctest.Wait()

		mu.Lock()
		assert.Empty(t, events, "the delete must wait for the training")
		mu.Unlock()

		close(release)
		wg.Wait()

		require.NoError(t, forgetErr)
		assert.Equal(t, []string{"saved", "deleted"}, events)

		// The caller that started the training still gets its outcome.
		require.NoError(t, getErr)
		assert.Equal(t, "v1", version(t, h))
		assert.Equal(t, modelcache.StateAbsent, f.manager.State(id).State)
	})
}

func TestManager_Forget_Idle(t *testing.T) {
	f := newFixture(t, time.Minute)
	defer f.manager.Close()
	id := domain.MustIdentifier("SPY")

	calls := 0
	require.NoError(t, f.manager.Forget(id, func() error {
		calls++
		return nil
	}))
	assert.Equal(t, 1, calls)
	assert.Equal(t, modelcache.StateAbsent, f.manager.State(id).State)

	errDelete := errors.New("disk gone")
	err := f.manager.Forget(id, func() error { return errDelete })
	assert.ErrorIs(t, err, errDelete)
}

func TestManager_GetOrLoad_FailureCooldown(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		const cooldown = time.Minute
		f := newFixture(t, cooldown)
		defer f.manager.Close()
		id := domain.MustIdentifier("NOPE")

		trainErr := errors.Join(domain.ErrTrainingFailed,
			zerr.With(zerr.Wrap(domain.ErrInsufficientData, "not enough data points"), "points", 0))

		f.store.EXPECT().Exists(id).Return(false, nil).Times(2)
		f.trainer.EXPECT().Train(gomock.Any(), id).Return(domain.ArtifactMeta{}, trainErr).Times(2)
		f.metrics.EXPECT().CacheLookup(ports.CacheMiss).Times(2)
		f.metrics.EXPECT().CacheLookup(ports.CacheCooldown).Times(1)

		_, err := f.manager.GetOrLoad(t.Context(), id)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInsufficientData)
		assert.Equal(t, domain.KindDataUnavailable, domain.KindOf(err))

		s := f.manager.State(id)
		assert.Equal(t, modelcache.StateFailed, s.State)
		assert.ErrorIs(t, s.Err, domain.ErrInsufficientData)
		assert.True(t, s.FailedAt.Equal(time.Now()))

		time.Sleep(cooldown / 2)
		_, err = f.manager.GetOrLoad(t.Context(), id)
		assert.ErrorIs(t, err, domain.ErrInsufficientData)

		time.Sleep(cooldown / 2)
		assert.Equal(t, modelcache.StateAbsent, f.manager.State(id).State)

		_, err = f.manager.GetOrLoad(t.Context(), id)
		assert.ErrorIs(t, err, domain.ErrInsufficientData)
	})
}

func TestManager_GetOrLoad_ZeroCooldownRetries(t *testing.T) {
	f := newFixture(t, 0)
	defer f.manager.Close()
	f.anyLookups()
	id := domain.MustIdentifier("NOPE")

	fitErr := errors.Join(domain.ErrTrainingFailed, zerr.Wrap(domain.ErrModelFitFailed, "singular"))
	f.store.EXPECT().Exists(id).Return(false, nil).Times(2)
	f.trainer.EXPECT().Train(gomock.Any(), id).Return(domain.ArtifactMeta{}, fitErr).Times(2)

	for range 2 {
		_, err := f.manager.GetOrLoad(t.Context(), id)
		assert.Equal(t, domain.KindTrainingFailed, domain.KindOf(err))
	}
}

func TestManager_GetOrLoad_NonPoisoningFailures(t *testing.T) {
	diskErr := domain.StorageError(errors.New("disk quota exceeded"))
	decodeErr := zerr.Wrap(domain.ErrModelDecodeFailed, "bad payload")

	tests := []struct {
		name  string
		setup func(f fixture, id domain.Identifier)
		kind  domain.ErrorKind
	}{
		{
			name: "exists fails",
			setup: func(f fixture, id domain.Identifier) {
				f.store.EXPECT().Exists(id).Return(false, diskErr)
			},
			kind: domain.KindStorage,
		},
		{
			name: "load fails",
			setup: func(f fixture, id domain.Identifier) {
				f.store.EXPECT().Exists(id).Return(true, nil)
				f.store.EXPECT().Load(id).Return(domain.ModelArtifact{}, diskErr)
			},
			kind: domain.KindStorage,
		},
		{
			name: "artifact removed between exists and load",
			setup: func(f fixture, id domain.Identifier) {
				f.store.EXPECT().Exists(id).Return(true, nil)
				f.store.EXPECT().Load(id).Return(domain.ModelArtifact{}, zerr.Wrap(domain.ErrModelNotFound, "gone"))
			},
			kind: domain.KindNotFound,
		},
		{
			name: "payload does not decode",
			setup: func(f fixture, id domain.Identifier) {
				f.store.EXPECT().Exists(id).Return(true, nil)
				f.store.EXPECT().Load(id).Return(artifact("garbage"), nil)
				f.engine.EXPECT().Deserialize([]byte("garbage")).Return(nil, decodeErr)
			},
			kind: domain.KindStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, time.Hour)
			defer f.manager.Close()
			f.anyLookups()
			id := domain.MustIdentifier("SPY")

			tt.setup(f, id)
			_, err := f.manager.GetOrLoad(t.Context(), id)
			require.Error(t, err)
			assert.Equal(t, tt.kind, domain.KindOf(err))
			assert.Equal(t, modelcache.StateAbsent, f.manager.State(id).State)

			// The entry is immediately retryable.
			f.store.EXPECT().Exists(id).Return(true, nil)
			f.store.EXPECT().Load(id).Return(artifact("ok"), nil)
			f.engine.EXPECT().Deserialize([]byte("ok")).Return(&model{version: "ok"}, nil)

			h, err := f.manager.GetOrLoad(t.Context(), id)
			require.NoError(t, err)
			assert.Equal(t, "ok", version(t, h))
		})
	}
}

func TestManager_GetOrLoad_CallerCancelKeepsJob(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t, time.Minute)
		defer f.manager.Close()
		f.decodeVersions()
		f.anyLookups()
		id := domain.MustIdentifier("AAPL")

		release := make(chan struct{})
		var jobErr error
		f.store.EXPECT().Exists(id).Return(false, nil).Times(1)
		f.trainer.EXPECT().Train(gomock.Any(), id).
			DoAndReturn(func(ctx context.Context, _ domain.Identifier) (domain.ArtifactMeta, error) {
				<-release
				jobErr = ctx.Err()
				return domain.ArtifactMeta{}, nil
			}).
			Times(1)
		f.store.EXPECT().Load(id).Return(artifact("v1"), nil).Times(1)

		ctx, cancel := context.WithCancel(t.Context())
		errc := make(chan error, 1)
		go func() {
			_, err := f.manager.GetOrLoad(ctx, id)
			errc <- err
		}()
		synctest.Wait()

		cancel()
		err := <-errc
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, domain.KindCanceled, domain.KindOf(err))
		assert.Equal(t, modelcache.StateLoading, f.manager.State(id).State)

		close(release)
		synctest.Wait()

		assert.Equal(t, modelcache.StateReady, f.manager.State(id).State)
		require.NoError(t, jobErr)

		h, err := f.manager.GetOrLoad(t.Context(), id)
		require.NoError(t, err)
		assert.Equal(t, "v1", version(t, h))
	})
}

func TestManager_Retrain(t *testing.T) {
	f := newFixture(t, time.Minute)
	defer f.manager.Close()
	f.decodeVersions()
	f.anyLookups()
	id := domain.MustIdentifier("SPY")

	f.store.EXPECT().Exists(id).Return(true, nil).Times(1)
	f.store.EXPECT().Load(id).Return(artifact("v1"), nil).Times(1)
	f.trainer.EXPECT().Train(gomock.Any(), id).Return(domain.ArtifactMeta{Identifier: id}, nil).Times(1)
	f.store.EXPECT().Load(id).Return(artifact("v2"), nil).Times(1)

	h, err := f.manager.GetOrLoad(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, "v1", version(t, h))

	h, err = f.manager.Retrain(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, "v2", version(t, h))

	cached, err := f.manager.GetOrLoad(t.Context(), id)
	require.NoError(t, err)
	assert.Same(t, h, cached)
}

func TestManager_Close(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t, time.Minute)
		f.anyLookups()
		id := domain.MustIdentifier("AAPL")

		f.store.EXPECT().Exists(id).Return(false, nil)
		f.trainer.EXPECT().Train(gomock.Any(), id).
			DoAndReturn(func(ctx context.Context, _ domain.Identifier) (domain.ArtifactMeta, error) {
				<-ctx.Done()
				return domain.ArtifactMeta{}, ctx.Err()
			})

		errc := make(chan error, 1)
		go func() {
			_, err := f.manager.GetOrLoad(t.Context(), id)
			errc <- err
		}()
		synctest.Wait()

		f.manager.Close()
		err := <-errc
		assert.Equal(t, domain.KindCanceled, domain.KindOf(err))
		assert.Equal(t, modelcache.StateAbsent, f.manager.State(id).State)

		_, err = f.manager.GetOrLoad(t.Context(), id)
		require.ErrorIs(t, err, domain.ErrManagerClosed)
		_, err = f.manager.Retrain(t.Context(), id)
		require.ErrorIs(t, err, domain.ErrManagerClosed)

		// Closing twice is harmless.
		f.manager.Close()
	})
}
