// Package repository persists match snapshots.
package repository

import (
	"context"

	"github.com/okian/courtside/internal/domain/model"
)

// Store provides read/write access to persisted matches.
type Store interface {
	// Save stores snap, replacing any older version of the same match.
	// A snapshot whose version is lower than the stored one is ignored.
	Save(ctx context.Context, snap model.Snapshot) error

	// Load returns the stored snapshot of a match.
	// Returns ErrNotFound if the match is unknown.
	Load(ctx context.Context, id string) (model.Snapshot, error)

	// List returns every stored snapshot ordered by creation time.
	List(ctx context.Context) ([]model.Snapshot, error)

	// Delete removes a match. Deleting an unknown match is not an error.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored matches.
	Count(ctx context.Context) int
}
