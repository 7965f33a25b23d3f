package ports

import "go.trai.ch/augur/internal/core/domain"

// ModelStore persists one model artifact per identifier.
//
// Save must be atomic: a concurrent Load observes either the complete previous
// artifact or the complete new one.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ModelStore interface {
	// Exists reports whether an artifact is stored for id.
	Exists(id domain.Identifier) (bool, error)

	// Load reads the artifact for id. It fails with domain.ErrModelNotFound when none is stored.
	Load(id domain.Identifier) (domain.ModelArtifact, error)

	// Save stores artifact for id, fully replacing any previous artifact.
	Save(id domain.Identifier, artifact domain.ModelArtifact) error

	// Delete removes the artifact for id. Deleting a missing artifact is not an error.
	Delete(id domain.Identifier) error

	// List returns the metadata of every stored artifact, ordered by identifier.
	List() ([]domain.ArtifactMeta, error)
}
