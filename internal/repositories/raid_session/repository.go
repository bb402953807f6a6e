// Package raidsession provides the repository interface and types for the
// shared session document.
//
// The store contract mirrors the sync collaborator the engine assumes:
// create-with-initial-value, get-once, and an atomic conditional Apply
// that merges a Patch only when the caller's version still matches the
// stored document. Concurrent appends to log/chat and barrier membership
// never go through read-modify-write.
package raidsession

import (
	"context"

	"github.com/shuffleraid/raid-api/internal/entities"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=raidsessionmock -source=repository.go

// CreateInput contains the initial session document
type CreateInput struct {
	Session *entities.Session
}

// CreateOutput contains the stored session
type CreateOutput struct {
	Session *entities.Session
}

// GetInput addresses a session by its join code
type GetInput struct {
	Code string
}

// GetOutput contains the current session document
type GetOutput struct {
	Session *entities.Session
}

// ApplyInput is a conditional merge-patch: the patch only lands when the
// stored version still equals ExpectedVersion
type ApplyInput struct {
	Code            string
	ExpectedVersion int64
	Patch           *entities.Patch
}

// ApplyOutput reports the version the patch produced
type ApplyOutput struct {
	Version int64
}

// DeleteInput addresses a session for removal
type DeleteInput struct {
	Code string
}

// DeleteOutput is the result of removing a session
type DeleteOutput struct{}

// Repository defines the storage interface for session documents
type Repository interface {
	// Create stores a new session document; the code must be unused
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves the current session document by code
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Apply merges a patch under optimistic concurrency; a stale
	// ExpectedVersion aborts without side effects
	Apply(ctx context.Context, input ApplyInput) (*ApplyOutput, error)

	// Delete removes a session document
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
}
