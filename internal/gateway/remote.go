package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	"github.com/myfiredeal/firedeal/internal/domain"
	"github.com/myfiredeal/firedeal/internal/record"
)

const projectsTable = "projects"

// Remote is the authoritative, multi-device strategy: every operation is a
// single round-trip to the hosted store, scoped to the calling user. No
// automatic retry; the caller decides fallback behavior.
type Remote struct {
	db  *supabase.Client
	log *zap.Logger
}

// NewRemote creates a remote gateway on an authenticated supabase client.
func NewRemote(db *supabase.Client, log *zap.Logger) *Remote {
	return &Remote{db: db, log: log}
}

// List fetches the caller's records ordered newest first. The owner filter
// is applied explicitly rather than relying on ambient row-level security.
func (r *Remote) List(ctx context.Context, ownerID string) ([]domain.Project, error) {
	data, _, err := r.db.From(projectsTable).
		Select("*", "", false).
		Eq("owner_id", ownerID).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteWithContext(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}

	rows, err := decodeRows(data)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}

	projects := make([]domain.Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, record.FromStorage(row))
	}
	return projects, nil
}

// Create inserts the draft with the owner stamped and asks the store to
// return the written row. A success with no row body is not an error: the
// caller must resync.
func (r *Remote) Create(ctx context.Context, draft domain.Project, ownerID string) (domain.Project, bool, error) {
	payload := record.ToStorage(draft, record.Options{IncludeOwner: true, OwnerID: ownerID})

	data, _, err := r.db.From(projectsTable).
		Insert([]record.Row{payload}, false, "", "representation", "").
		ExecuteWithContext(ctx)
	if err != nil {
		return domain.Project{}, false, &PersistenceError{Op: "create", Err: err}
	}

	rows, err := decodeRows(data)
	if err != nil {
		return domain.Project{}, false, &PersistenceError{Op: "create", Err: err}
	}
	if len(rows) == 0 {
		r.log.Info("create accepted without row body, resync required")
		return domain.Project{}, false, nil
	}
	return record.FromStorage(rows[0]), true, nil
}

// Update replaces the whole stored record; the owner column is withheld so
// it can never be overwritten.
func (r *Remote) Update(ctx context.Context, p domain.Project) (domain.Project, bool, error) {
	if p.ID == "" {
		return domain.Project{}, false, &PersistenceError{Op: "update", Err: ErrNotFound}
	}
	payload := record.ToStorage(p, record.Options{})

	data, _, err := r.db.From(projectsTable).
		Update(payload, "representation", "").
		Eq("id", p.ID).
		ExecuteWithContext(ctx)
	if err != nil {
		return domain.Project{}, false, &PersistenceError{Op: "update", Err: err}
	}

	rows, err := decodeRows(data)
	if err != nil {
		return domain.Project{}, false, &PersistenceError{Op: "update", Err: err}
	}
	if len(rows) == 0 {
		r.log.Info("update accepted without row body, resync required", zap.String("id", p.ID))
		return domain.Project{}, false, nil
	}
	return record.FromStorage(rows[0]), true, nil
}

// decodeRows tolerates the empty and null bodies PostgREST returns when a
// write succeeds without a representation.
func decodeRows(data []byte) ([]record.Row, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var rows []record.Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return rows, nil
}
