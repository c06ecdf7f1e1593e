package repository

import (
	"context"

	"wantly/internal/models"
)

// SnapshotRepository persists the engine's full state. The engine's
// in-memory state is always authoritative: Save is best-effort and invoked
// asynchronously after mutations, and a failed save never affects engine
// correctness — a later successful one reconciles the store.
//
// Load returns (nil, nil) when no snapshot has ever been saved.
type SnapshotRepository interface {
	Load(ctx context.Context) (*models.Snapshot, error)
	Save(ctx context.Context, snap *models.Snapshot) error
}
