// Package store persists closure runs so they can be listed and fetched
// later by ID.
//
// Two backends implement [Store]:
//   - FileStore: JSON files in a directory, for the CLI
//   - MongoStore: a MongoDB collection, for the HTTP service
//
// Runs expire after their TTL. FileStore drops expired runs on access and in
// Cleanup; MongoStore relies on a TTL index.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	zerrors "github.com/matzehuels/zclosure/pkg/errors"
)

// DefaultTTL is how long runs are kept.
const DefaultTTL = 30 * 24 * time.Hour

// Run is a stored closure result.
type Run struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	Trees  int `json:"trees"`
	Taxa   int `json:"taxa"`
	Splits int `json:"splits"`

	// Options and Result are the JSON-encoded pipeline options and result.
	Options json.RawMessage `json:"options,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}

// NewRun returns a run with a fresh ID.
func NewRun(source string, ttl time.Duration) *Run {
	now := time.Now().UTC()
	return &Run{
		ID:        uuid.NewString(),
		Source:    source,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired reports whether the run is past its expiry.
func (r *Run) IsExpired() bool {
	return !r.ExpiresAt.IsZero() && time.Now().After(r.ExpiresAt)
}

// Store is the interface for run storage backends. Implementations are
// safe for concurrent use.
type Store interface {
	// Get returns the run with the given ID, or a NOT_FOUND error.
	Get(ctx context.Context, id string) (*Run, error)

	// Save stores a run, replacing any run with the same ID.
	Save(ctx context.Context, run *Run) error

	// Delete removes a run. Deleting a missing run is a NOT_FOUND error.
	Delete(ctx context.Context, id string) error

	// List returns up to limit runs, newest first, without their Result.
	// A limit of zero or less means no limit.
	List(ctx context.Context, limit int) ([]*Run, error)

	// Cleanup removes expired runs.
	Cleanup(ctx context.Context) error

	Close() error
}

func notFound(id string) error {
	return zerrors.New(zerrors.ErrCodeNotFound, "run %s not found", id)
}
