package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/myfiredeal/firedeal/internal/domain"
	"github.com/myfiredeal/firedeal/internal/record"
)

// CollectionKey is the single key holding the serialized collection; the
// local strategy stores it as a file of that name in the data directory.
const CollectionKey = "myfiredeal.projects"

// Local is the single-device strategy: one JSON-serialized array of
// storage-schema rows, read and rewritten whole on every operation. It
// survives restarts but never leaves the machine. Write failures propagate
// as *LocalStorageError because the blob is the only copy of the data.
type Local struct {
	path string
	log  *zap.Logger
}

// NewLocal creates a local gateway persisting under dataDir.
func NewLocal(dataDir string, log *zap.Logger) *Local {
	return &Local{path: filepath.Join(dataDir, CollectionKey), log: log}
}

// List returns all stored records, newest first. A missing blob is an
// empty collection, not an error. Rows loaded without an id get one
// synthesized so every record is usable for update operations; the repaired
// blob is written back best-effort.
func (l *Local) List(_ context.Context, _ string) ([]domain.Project, error) {
	rows, err := l.load()
	if err != nil {
		return nil, err
	}

	repaired := false
	for i := range rows {
		if rows[i].ID == "" {
			rows[i].ID = uuid.NewString()
			repaired = true
		}
	}
	if repaired {
		if err := l.save(rows); err != nil {
			l.log.Warn("could not persist synthesized ids", zap.Error(err))
		}
	}

	projects := make([]domain.Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, record.FromStorage(row))
	}
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].CreatedAt > projects[j].CreatedAt
	})
	return projects, nil
}

// Create generates the id and timestamp client-side, prepends the record to
// the blob and rewrites it. There is no server round-trip, so the written
// row is always returned.
func (l *Local) Create(_ context.Context, draft domain.Project, ownerID string) (domain.Project, bool, error) {
	rows, err := l.load()
	if err != nil {
		return domain.Project{}, false, err
	}

	row := record.ToStorage(draft, record.Options{IncludeOwner: ownerID != "", OwnerID: ownerID})
	row.ID = uuid.NewString()
	now := record.Now()
	row.CreatedAt = &now

	rows = append([]record.Row{row}, rows...)
	if err := l.save(rows); err != nil {
		return domain.Project{}, false, err
	}
	return record.FromStorage(row), true, nil
}

// Update replaces the row matching p.ID in place, preserving the stored
// owner and creation timestamp.
func (l *Local) Update(_ context.Context, p domain.Project) (domain.Project, bool, error) {
	rows, err := l.load()
	if err != nil {
		return domain.Project{}, false, err
	}

	for i := range rows {
		if rows[i].ID != p.ID {
			continue
		}
		row := record.ToStorage(p, record.Options{})
		row.ID = rows[i].ID
		row.OwnerID = rows[i].OwnerID
		row.CreatedAt = rows[i].CreatedAt
		rows[i] = row
		if err := l.save(rows); err != nil {
			return domain.Project{}, false, err
		}
		return record.FromStorage(row), true, nil
	}
	return domain.Project{}, false, &PersistenceError{Op: "update", Err: ErrNotFound}
}

// Remove deletes the row matching id, if present. Used by the fallback
// composite to evict a stashed record once the remote store holds it.
func (l *Local) Remove(id string) error {
	rows, err := l.load()
	if err != nil {
		return err
	}
	kept := rows[:0]
	for _, row := range rows {
		if row.ID != id {
			kept = append(kept, row)
		}
	}
	if len(kept) == len(rows) {
		return nil
	}
	return l.save(kept)
}

func (l *Local) load() ([]record.Row, error) {
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &LocalStorageError{Op: "read", Err: err}
	}
	if len(data) == 0 {
		return nil, nil
	}
	var rows []record.Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, &LocalStorageError{Op: "decode", Err: fmt.Errorf("%s: %w", CollectionKey, err)}
	}
	return rows, nil
}

func (l *Local) save(rows []record.Row) error {
	if rows == nil {
		rows = []record.Row{}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return &LocalStorageError{Op: "encode", Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return &LocalStorageError{Op: "write", Err: err}
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return &LocalStorageError{Op: "write", Err: err}
	}
	return nil
}
