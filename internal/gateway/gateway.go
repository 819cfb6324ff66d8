// Package gateway provides the persistence strategies behind the project
// store. A strategy is selected once at startup, not per call: Remote talks
// to the hosted store, Local keeps a durable blob on disk, and Fallback
// composes the two so user input survives a remote outage.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/myfiredeal/firedeal/internal/domain"
)

// ErrNotFound indicates an update targeted a record the backend does not hold.
var ErrNotFound = errors.New("project not found")

// Gateway is the capability set shared by all persistence strategies.
//
// Create and Update return ok=false with a nil error when the write was
// accepted but the store returned no row ("write accepted, shape unknown");
// the caller is expected to resynchronize with a full List rather than
// trust a locally-constructed guess.
type Gateway interface {
	// List returns the caller's records, newest first.
	List(ctx context.Context, ownerID string) ([]domain.Project, error)
	// Create persists a draft stamped with the given owner and returns the
	// canonical written record.
	Create(ctx context.Context, draft domain.Project, ownerID string) (rec domain.Project, ok bool, err error)
	// Update replaces the stored record matching p.ID with p.
	Update(ctx context.Context, p domain.Project) (rec domain.Project, ok bool, err error)
}

// PersistenceError wraps a failure of the hosted store: unreachable,
// rejected write, malformed response. It is surfaced to the user as a
// dismissible banner and never crashes the dashboard.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// LocalStorageError wraps a serialization or disk failure of the local
// strategy. Unlike a remote failure it represents unrecoverable data-loss
// risk (the local copy is the only copy), so it always propagates.
type LocalStorageError struct {
	Op  string
	Err error
}

func (e *LocalStorageError) Error() string {
	return fmt.Sprintf("local storage: %s: %v", e.Op, e.Err)
}

func (e *LocalStorageError) Unwrap() error { return e.Err }
