package gateway

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/myfiredeal/firedeal/internal/domain"
	"github.com/myfiredeal/firedeal/internal/record"
)

func createDraft(name string, kind domain.Kind) domain.Project {
	p := domain.NewDraft(kind)
	p.Name = name
	return p
}

// TestLocalListMissingBlob verifies a missing blob is an empty collection,
// not an error.
func TestLocalListMissingBlob(t *testing.T) {
	l := NewLocal(t.TempDir(), zap.NewNop())

	projects, err := l.List(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, projects)
}

// TestLocalCreateAssignsIdentity verifies create fills in id and timestamp
// client-side and returns the written row.
func TestLocalCreateAssignsIdentity(t *testing.T) {
	l := NewLocal(t.TempDir(), zap.NewNop())

	rec, ok, err := l.Create(context.Background(), createDraft("Acme", domain.KindDeal), "user-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, rec.ID)
	assert.NotEmpty(t, rec.CreatedAt)
	assert.Equal(t, "user-1", rec.OwnerID)
	assert.Equal(t, "Acme", rec.Name)
}

// TestLocalPersistsAcrossInstances verifies the blob survives a restart and
// lists newest first.
func TestLocalPersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	l := NewLocal(dir, zap.NewNop())
	first, _, err := l.Create(ctx, createDraft("First", domain.KindSubsidiary), "user-1")
	require.NoError(t, err)
	second, _, err := l.Create(ctx, createDraft("Second", domain.KindDeal), "user-1")
	require.NoError(t, err)

	// Fresh instance over the same directory
	reopened := NewLocal(dir, zap.NewNop())
	projects, err := reopened.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, second.ID, projects[0].ID)
	assert.Equal(t, first.ID, projects[1].ID)
}

// TestLocalSynthesizesMissingIds verifies rows stored without an id get one
// on load and the repair is written back.
func TestLocalSynthesizesMissingIds(t *testing.T) {
	dir := t.TempDir()
	name := "Orphan"
	blob, err := json.Marshal([]record.Row{{Name: &name}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, CollectionKey), blob, 0o644))

	l := NewLocal(dir, zap.NewNop())
	projects, err := l.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.NotEmpty(t, projects[0].ID)

	// Repair must be durable
	data, err := os.ReadFile(filepath.Join(dir, CollectionKey))
	require.NoError(t, err)
	var rows []record.Row
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, projects[0].ID, rows[0].ID)
}

// TestLocalCorruptBlob verifies a malformed blob surfaces as a
// LocalStorageError instead of being silently discarded.
func TestLocalCorruptBlob(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, CollectionKey), []byte("{not json"), 0o644))

	l := NewLocal(dir, zap.NewNop())
	_, err := l.List(context.Background(), "user-1")

	var lerr *LocalStorageError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "decode", lerr.Op)
}

// TestLocalUpdateReplacesInPlace verifies update rewrites the matching row
// while keeping the stored owner and creation timestamp.
func TestLocalUpdateReplacesInPlace(t *testing.T) {
	l := NewLocal(t.TempDir(), zap.NewNop())
	ctx := context.Background()

	rec, _, err := l.Create(ctx, createDraft("Before", domain.KindSubsidiary), "user-1")
	require.NoError(t, err)

	edited := rec
	edited.Name = "After"
	edited.OwnerID = "intruder" // Must not stick
	updated, ok, err := l.Update(ctx, edited)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, "user-1", updated.OwnerID)
	assert.Equal(t, rec.CreatedAt, updated.CreatedAt)

	projects, err := l.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "After", projects[0].Name)
}

// TestLocalUpdateUnknownId verifies updating a record the blob does not
// hold is reported, not swallowed.
func TestLocalUpdateUnknownId(t *testing.T) {
	l := NewLocal(t.TempDir(), zap.NewNop())

	p := createDraft("Ghost", domain.KindDeal)
	p.ID = "missing"
	_, ok, err := l.Update(context.Background(), p)

	assert.False(t, ok)
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestLocalRemove verifies eviction of a stashed record.
func TestLocalRemove(t *testing.T) {
	l := NewLocal(t.TempDir(), zap.NewNop())
	ctx := context.Background()

	rec, _, err := l.Create(ctx, createDraft("Stashed", domain.KindDeal), "user-1")
	require.NoError(t, err)

	require.NoError(t, l.Remove(rec.ID))
	require.NoError(t, l.Remove("never-there")) // Idempotent

	projects, err := l.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, projects)
}
