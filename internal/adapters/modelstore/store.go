// Package modelstore persists fitted model artifacts, one file per identifier.
package modelstore

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	augurfs "go.trai.ch/augur/internal/adapters/fs"
	"go.trai.ch/augur/internal/core/domain"
	"go.trai.ch/augur/internal/core/ports"
	"go.trai.ch/zerr"
)

// formatVersion is written into every envelope; files with another version are rejected.
const formatVersion = 1

var _ ports.ModelStore = (*Store)(nil)

// envelope is the on-disk form of a model artifact.
type envelope struct {
	Version  int                 `json:"version"`
	Meta     domain.ArtifactMeta `json:"meta"`
	Checksum string              `json:"checksum"`
	Payload  []byte              `json:"payload"`
}

// Store implements ports.ModelStore on a directory of <ID>.model.json files.
type Store struct {
	dir    string
	logger ports.Logger
}

// NewStore creates a Store rooted at dir. The directory is created on first save.
func NewStore(dir string, logger ports.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// Exists reports whether an artifact file is present for id.
func (s *Store) Exists(id domain.Identifier) (bool, error) {
	_, err := os.Stat(s.path(id))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, domain.StorageError(zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "id", id.String()))
	}
}

// Load reads and verifies the artifact for id.
func (s *Store) Load(id domain.Identifier) (domain.ModelArtifact, error) {
	path := s.path(id)
	data, err := os.ReadFile(path) //nolint:gosec // Path is built from a validated identifier
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ModelArtifact{}, zerr.With(zerr.Wrap(domain.ErrModelNotFound, "no stored model"), "id", id.String())
		}
		return domain.ModelArtifact{}, domain.StorageError(
			zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "path", path))
	}

	env, err := decode(data)
	if err != nil {
		return domain.ModelArtifact{}, domain.StorageError(zerr.With(err, "path", path))
	}

	return domain.ModelArtifact{Meta: env.Meta, Payload: env.Payload}, nil
}

// Save atomically replaces the artifact for id.
func (s *Store) Save(id domain.Identifier, artifact domain.ModelArtifact) error {
	meta := artifact.Meta
	meta.Identifier = id

	data, err := json.Marshal(envelope{
		Version:  formatVersion,
		Meta:     meta,
		Checksum: augurfs.Checksum(artifact.Payload),
		Payload:  artifact.Payload,
	})
	if err != nil {
		return domain.StorageError(zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error()))
	}

	if err := augurfs.WriteFileAtomic(s.path(id), data); err != nil {
		return domain.StorageError(zerr.With(err, "id", id.String()))
	}
	return nil
}

// Delete removes the artifact for id if present.
func (s *Store) Delete(id domain.Identifier) error {
	err := os.Remove(s.path(id))
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return domain.StorageError(zerr.With(zerr.Wrap(err, "failed to delete model"), "id", id.String()))
}

// List returns the metadata of every readable artifact ordered by identifier.
// Unreadable or corrupt files are reported and skipped.
func (s *Store) List() ([]domain.ArtifactMeta, error) {
	names, err := augurfs.FilesWithSuffix(s.dir, domain.ModelFileExt)
	if err != nil {
		return nil, domain.StorageError(err)
	}

	var metas []domain.ArtifactMeta
	for name := range names {
		id, err := domain.ParseIdentifier(strings.TrimSuffix(name, domain.ModelFileExt))
		if err != nil {
			s.logger.Warn("skipping model file with invalid name", "file", name)
			continue
		}

		artifact, err := s.Load(id)
		if err != nil {
			s.logger.Warn("skipping unreadable model", "id", id.String(), "error", err.Error())
			continue
		}
		metas = append(metas, artifact.Meta)
	}

	return metas, nil
}

func (s *Store) path(id domain.Identifier) string {
	return filepath.Join(s.dir, domain.ModelFileName(id))
}

func decode(data []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return envelope{}, zerr.Wrap(errors.Join(domain.ErrArtifactCorrupt, err), domain.ErrStoreUnmarshalFailed.Error())
	}

	if env.Version != formatVersion {
		return envelope{}, zerr.With(zerr.Wrap(domain.ErrArtifactCorrupt, "unsupported artifact format"),
			"version", env.Version)
	}

	if sum := augurfs.Checksum(env.Payload); sum != env.Checksum {
		return envelope{}, zerr.With(zerr.Wrap(domain.ErrArtifactCorrupt, "checksum mismatch"),
			"want", env.Checksum)
	}

	return env, nil
}
