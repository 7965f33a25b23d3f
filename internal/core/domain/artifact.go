package domain

import "time"

// ArtifactMeta describes a trained model artifact.
type ArtifactMeta struct {
	Identifier  Identifier `json:"identifier"`
	Engine      string     `json:"engine"`
	TrainedAt   time.Time  `json:"trained_at"`
	WindowStart time.Time  `json:"window_start"`
	WindowEnd   time.Time  `json:"window_end"`
	Points      int        `json:"points"`
}

// ModelArtifact is the durable form of a fitted model: opaque engine bytes plus metadata.
type ModelArtifact struct {
	Meta    ArtifactMeta
	Payload []byte
}
