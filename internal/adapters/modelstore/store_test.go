package modelstore_test

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/augur/internal/adapters/modelstore"
	"go.trai.ch/augur/internal/core/domain"
	"go.trai.ch/augur/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func artifact(id string, points int) domain.ModelArtifact {
	return domain.ModelArtifact{
		Meta: domain.ArtifactMeta{
			Identifier:  domain.MustIdentifier(id),
			Engine:      "trend",
			TrainedAt:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
			WindowStart: time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC),
			WindowEnd:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			Points:      points,
		},
		Payload: []byte(`{"slope":0.5}`),
	}
}

func newStore(t *testing.T) (*modelstore.Store, string) {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	dir := filepath.Join(t.TempDir(), "models")
	return modelstore.NewStore(dir, log), dir
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store, _ := newStore(t)
	id := domain.MustIdentifier("SPY")

	exists, err := store.Exists(id)
	require.NoError(t, err)
	assert.False(t, exists)

	want := artifact("SPY", 2500)
	require.NoError(t, store.Save(id, want))

	exists, err = store.Exists(id)
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := store.Load(id)
	require.NoError(t, err)
	assert.Equal(t, want.Payload, got.Payload)
	assert.Equal(t, id, got.Meta.Identifier)
	assert.Equal(t, 2500, got.Meta.Points)
	assert.True(t, want.Meta.TrainedAt.Equal(got.Meta.TrainedAt))
}

func TestStore_SaveOverwrites(t *testing.T) {
	store, dir := newStore(t)
	id := domain.MustIdentifier("AAPL")

	require.NoError(t, store.Save(id, artifact("AAPL", 10)))
	require.NoError(t, store.Save(id, artifact("AAPL", 20)))
	require.NoError(t, store.Save(id, artifact("AAPL", 20)))

	got, err := store.Load(id)
	require.NoError(t, err)
	assert.Equal(t, 20, got.Meta.Points)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_LoadMissing(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.Load(domain.MustIdentifier("MSFT"))
	require.ErrorIs(t, err, domain.ErrModelNotFound)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestStore_LoadCorrupt(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(string) string
	}{
		{
			name:   "truncated file",
			mutate: func(s string) string { return s[:len(s)/2] },
		},
		{
			name: "checksum mismatch",
			mutate: func(s string) string {
				return strings.Replace(s, `"checksum":"`, `"checksum":"0`, 1)
			},
		},
		{
			name: "unknown format version",
			mutate: func(s string) string {
				return strings.Replace(s, `"version":1`, `"version":99`, 1)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, dir := newStore(t)
			id := domain.MustIdentifier("SPY")
			require.NoError(t, store.Save(id, artifact("SPY", 10)))

			path := filepath.Join(dir, domain.ModelFileName(id))
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(path, []byte(tt.mutate(string(data))), domain.FilePerm))

			_, err = store.Load(id)
			require.ErrorIs(t, err, domain.ErrArtifactCorrupt)
			require.ErrorIs(t, err, domain.ErrStorageFailed)
			assert.Equal(t, domain.KindStorage, domain.KindOf(err))
		})
	}
}

func TestStore_Delete(t *testing.T) {
	store, _ := newStore(t)
	id := domain.MustIdentifier("SPY")

	require.NoError(t, store.Delete(id), "deleting a missing model is not an error")

	require.NoError(t, store.Save(id, artifact("SPY", 10)))
	require.NoError(t, store.Delete(id))

	exists, err := store.Exists(id)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStore_List(t *testing.T) {
	store, dir := newStore(t)

	metas, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, metas, "a missing directory lists nothing")

	require.NoError(t, store.Save(domain.MustIdentifier("SPY"), artifact("SPY", 1)))
	require.NoError(t, store.Save(domain.MustIdentifier("AAPL"), artifact("AAPL", 2)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "BROKEN"+domain.ModelFileExt), []byte("{"), domain.FilePerm))

	metas, err = store.List()
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, "AAPL", metas[0].Identifier.String())
	assert.Equal(t, "SPY", metas[1].Identifier.String())
}

func TestStore_ConcurrentSaveAndLoad(t *testing.T) {
	store, _ := newStore(t)
	id := domain.MustIdentifier("SPY")
	require.NoError(t, store.Save(id, artifact("SPY", 1)))

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Save(id, artifact("SPY", i+1)))
		}()
		go func() {
			defer wg.Done()
			got, err := store.Load(id)
			if assert.NoError(t, err, "readers never observe a partial artifact") {
				assert.Positive(t, got.Meta.Points)
			}
		}()
	}
	wg.Wait()
}
