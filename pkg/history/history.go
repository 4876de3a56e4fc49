// Package history persists analysis runs so reports can be revisited and
// compared after the fact.
//
// A Run captures one analysis: the graph fingerprint, the options that
// shaped it, bucket statistics and the rendered report text. The Store
// interface has a file-backed implementation for local use and a
// MongoDB-backed one for shared deployments.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Gauravv801/QA-Eval/pkg/cover"
	"github.com/Gauravv801/QA-Eval/pkg/errors"
)

// ErrNotFound is returned by Get and Delete for unknown run ids.
var ErrNotFound = errors.New(errors.ErrCodeRunNotFound, "run not found")

// Run is one persisted analysis run.
type Run struct {
	ID         string      `json:"id" bson:"_id"`
	CreatedAt  time.Time   `json:"created_at" bson:"created_at"`
	GraphHash  string      `json:"graph_hash" bson:"graph_hash"`
	EntryState string      `json:"entry_state" bson:"entry_state"`
	ExitState  string      `json:"exit_state" bson:"exit_state"`
	Truncated  bool        `json:"truncated" bson:"truncated"`
	Stats      cover.Stats `json:"stats" bson:"stats"`
	Notes      string      `json:"notes,omitempty" bson:"notes,omitempty"`
	Report     string      `json:"report" bson:"report"`
}

// NewRun creates a run with a fresh id and the current time.
func NewRun(graphHash, entry, exit string) *Run {
	return &Run{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC().Truncate(time.Millisecond),
		GraphHash:  graphHash,
		EntryState: entry,
		ExitState:  exit,
	}
}

// Store persists runs.
type Store interface {
	// Save writes the run, overwriting any run with the same id.
	Save(ctx context.Context, run *Run) error

	// Get returns the run with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns runs newest first, at most limit entries (0 = all).
	// Report text is omitted from listed runs to keep listings light.
	List(ctx context.Context, limit int) ([]*Run, error)

	// Delete removes the run with the given id, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
