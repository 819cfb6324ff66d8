package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/myfiredeal/firedeal/internal/domain"
	"github.com/myfiredeal/firedeal/internal/gateway"
	"github.com/myfiredeal/firedeal/internal/session"
)

// fakeGateway is a scriptable Gateway for exercising the store's commit
// semantics.
type fakeGateway struct {
	projects  []domain.Project
	listCalls int
	nextID    int

	failCreate bool
	failUpdate bool
	noRow      bool // Simulate "write accepted, shape unknown"
}

func (g *fakeGateway) List(_ context.Context, _ string) ([]domain.Project, error) {
	g.listCalls++
	out := make([]domain.Project, len(g.projects))
	copy(out, g.projects)
	return out, nil
}

func (g *fakeGateway) Create(_ context.Context, draft domain.Project, ownerID string) (domain.Project, bool, error) {
	if g.failCreate {
		return domain.Project{}, false, &gateway.PersistenceError{Op: "create", Err: fmt.Errorf("boom")}
	}
	g.nextID++
	rec := draft
	rec.ID = fmt.Sprintf("rec-%d", g.nextID)
	rec.OwnerID = ownerID
	rec.CreatedAt = "2026-02-01T08:00:00Z"
	g.projects = append([]domain.Project{rec}, g.projects...)
	if g.noRow {
		return domain.Project{}, false, nil
	}
	return rec, true, nil
}

func (g *fakeGateway) Update(_ context.Context, p domain.Project) (domain.Project, bool, error) {
	if g.failUpdate {
		return domain.Project{}, false, &gateway.PersistenceError{Op: "update", Err: fmt.Errorf("boom")}
	}
	for i := range g.projects {
		if g.projects[i].ID == p.ID {
			g.projects[i] = p
			if g.noRow {
				return domain.Project{}, false, nil
			}
			return p, true, nil
		}
	}
	return domain.Project{}, false, nil
}

// fakeProvider satisfies session.Provider with canned responses.
type fakeProvider struct{}

func (fakeProvider) SignIn(_ context.Context, email, _ string) (*domain.Session, error) {
	return &domain.Session{UserID: "user-1", Email: email, AccessToken: "at", RefreshToken: "rt"}, nil
}
func (fakeProvider) SignUp(context.Context, string, string) (string, *domain.Session, error) {
	return "", nil, nil
}
func (fakeProvider) Validate(context.Context, string) (string, string, error) {
	return "user-1", "t@example.com", nil
}
func (fakeProvider) Refresh(context.Context, string) (*domain.Session, error) { return nil, nil }
func (fakeProvider) SignOut(context.Context, string) error                    { return nil }
func (fakeProvider) BindSession(*domain.Session)                              {}
func (fakeProvider) UpsertProfile(context.Context, string, string) error      { return nil }
func (fakeProvider) ProfileName(context.Context, string) (string, error)      { return "", nil }

func newTestStore(t *testing.T, gw gateway.Gateway, signedIn bool) *Store {
	t.Helper()
	holder := session.NewHolder(fakeProvider{}, t.TempDir(), zap.NewNop())
	if signedIn {
		_, err := holder.SignIn(context.Background(), "t@example.com", "pw")
		require.NoError(t, err)
	}
	return New(gw, holder, zap.NewNop())
}

func seedProjects() []domain.Project {
	return []domain.Project{
		{ID: "rec-c", Name: "Gamma", Kind: domain.KindDeal, OwnerID: "user-1", CreatedAt: "2026-01-03T00:00:00Z", Priority: domain.PriorityHigh},
		{ID: "rec-b", Name: "Beta", Kind: domain.KindSubsidiary, OwnerID: "user-1", CreatedAt: "2026-01-02T00:00:00Z", Priority: domain.PriorityMedium},
		{ID: "rec-a", Name: "Alpha", Kind: domain.KindDeal, OwnerID: "user-1", CreatedAt: "2026-01-01T00:00:00Z", Priority: domain.PriorityLow},
	}
}

// TestLoadWithoutSession verifies the signed-out state is an empty
// collection, not an error.
func TestLoadWithoutSession(t *testing.T) {
	gw := &fakeGateway{projects: seedProjects()}
	s := newTestStore(t, gw, false)

	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, gw.listCalls, "no gateway call without a session")
}

// TestLoadReplacesCollection verifies load is a full replacement.
func TestLoadReplacesCollection(t *testing.T) {
	gw := &fakeGateway{projects: seedProjects()}
	s := newTestStore(t, gw, true)
	ctx := context.Background()

	require.NoError(t, s.Load(ctx))
	assert.Equal(t, 3, s.Len())

	gw.projects = gw.projects[:1]
	require.NoError(t, s.Load(ctx))
	assert.Equal(t, 1, s.Len())
}

// TestByKindPartition verifies the projection contains exactly the records
// of the requested kind, in collection order.
func TestByKindPartition(t *testing.T) {
	gw := &fakeGateway{projects: seedProjects()}
	s := newTestStore(t, gw, true)
	require.NoError(t, s.Load(context.Background()))

	deals := s.ByKind(domain.KindDeal)
	require.Len(t, deals, 2)
	assert.Equal(t, "Gamma", deals[0].Name)
	assert.Equal(t, "Alpha", deals[1].Name)

	subs := s.ByKind(domain.KindSubsidiary)
	require.Len(t, subs, 1)
	assert.Equal(t, "Beta", subs[0].Name)

	assert.Equal(t, s.Len(), len(deals)+len(subs), "every record belongs to exactly one tab")
}

// TestCreateFrontInsert verifies a committed draft lands at the front of
// the collection, stamped with the session owner.
func TestCreateFrontInsert(t *testing.T) {
	gw := &fakeGateway{projects: seedProjects()}
	s := newTestStore(t, gw, true)
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	draft := domain.NewDraft(domain.KindDeal)
	draft.Name = "Newest"
	rec, err := s.Create(ctx, draft)
	require.NoError(t, err)
	assert.Equal(t, "user-1", rec.OwnerID)

	all := s.All()
	require.Len(t, all, 4)
	assert.Equal(t, rec.ID, all[0].ID)
}

// TestCreateWithoutSession verifies creating while signed out fails
// cleanly.
func TestCreateWithoutSession(t *testing.T) {
	s := newTestStore(t, &fakeGateway{}, false)

	_, err := s.Create(context.Background(), domain.NewDraft(domain.KindDeal))
	var perr *gateway.PersistenceError
	require.ErrorAs(t, err, &perr)
}

// TestCreateNoRowResyncs verifies the "write accepted, shape unknown"
// response triggers a full reload instead of trusting a local guess.
func TestCreateNoRowResyncs(t *testing.T) {
	gw := &fakeGateway{noRow: true}
	s := newTestStore(t, gw, true)
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))
	callsBefore := gw.listCalls

	draft := domain.NewDraft(domain.KindSubsidiary)
	draft.Name = "Phantom"
	rec, err := s.Create(ctx, draft)
	require.NoError(t, err)

	assert.Equal(t, callsBefore+1, gw.listCalls, "no-row commit resyncs")
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "Phantom", rec.Name, "resynced row matched back to the draft")
	assert.NotEmpty(t, rec.ID)
}

// TestCreateFallbackRecordStillInserted verifies a create that failed
// remotely but produced a stashed record both inserts it and reports the
// error.
func TestCreateFallbackRecordStillInserted(t *testing.T) {
	stashed := domain.Project{ID: "local-1", Name: "Stashed", Kind: domain.KindDeal}
	gw := &stubGateway{createRec: stashed, createOK: true, createErr: &gateway.PersistenceError{Op: "create", Err: fmt.Errorf("down")}}
	s := newTestStore(t, gw, true)

	rec, err := s.Create(context.Background(), domain.NewDraft(domain.KindDeal))
	require.Error(t, err)
	assert.Equal(t, "local-1", rec.ID)

	all := s.All()
	require.Len(t, all, 1)
	assert.Equal(t, "local-1", all[0].ID)
}

// TestUpdateMergesInPlace verifies an edit replaces its record without
// changing collection size or order, and that identity fields are
// immutable.
func TestUpdateMergesInPlace(t *testing.T) {
	gw := &fakeGateway{projects: seedProjects()}
	s := newTestStore(t, gw, true)
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	edited := domain.Project{
		ID:        "rec-b",
		Name:      "Beta v2",
		Kind:      domain.KindDeal, // Kind changes are allowed
		Priority:  domain.PriorityHigh,
		OwnerID:   "intruder",             // Must not stick
		CreatedAt: "1999-01-01T00:00:00Z", // Must not stick
	}
	rec, err := s.Update(ctx, edited)
	require.NoError(t, err)
	assert.Equal(t, "Beta v2", rec.Name)
	assert.Equal(t, "user-1", rec.OwnerID)
	assert.Equal(t, "2026-01-02T00:00:00Z", rec.CreatedAt)

	all := s.All()
	require.Len(t, all, 3)
	assert.Equal(t, "rec-c", all[0].ID)
	assert.Equal(t, "rec-b", all[1].ID)
	assert.Equal(t, "rec-a", all[2].ID)
}

// TestUpdateUnknownId verifies editing a record outside the collection is
// a contract violation that leaves the collection untouched.
func TestUpdateUnknownId(t *testing.T) {
	gw := &fakeGateway{projects: seedProjects()}
	s := newTestStore(t, gw, true)
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	_, err := s.Update(ctx, domain.Project{ID: "missing", Name: "Ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 3, s.Len())
}

// TestUpdateFailureLeavesCollection verifies a failed commit changes
// nothing, so the modal can keep its draft and retry.
func TestUpdateFailureLeavesCollection(t *testing.T) {
	gw := &fakeGateway{projects: seedProjects()}
	s := newTestStore(t, gw, true)
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	gw.failUpdate = true
	_, err := s.Update(ctx, domain.Project{ID: "rec-b", Name: "Doomed"})
	require.Error(t, err)

	prior, found := s.Get("rec-b")
	require.True(t, found)
	assert.Equal(t, "Beta", prior.Name)
}

// TestUpdateNoRowResyncs verifies the no-row update response triggers a
// reload and serves the resynced record.
func TestUpdateNoRowResyncs(t *testing.T) {
	gw := &fakeGateway{projects: seedProjects()}
	s := newTestStore(t, gw, true)
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	gw.noRow = true
	callsBefore := gw.listCalls
	rec, err := s.Update(ctx, domain.Project{ID: "rec-a", Name: "Alpha v2", Kind: domain.KindDeal})
	require.NoError(t, err)

	assert.Equal(t, callsBefore+1, gw.listCalls)
	assert.Equal(t, "Alpha v2", rec.Name)
}

// stubGateway returns fixed responses; used where the fakeGateway's
// bookkeeping would get in the way.
type stubGateway struct {
	createRec domain.Project
	createOK  bool
	createErr error
}

func (g *stubGateway) List(context.Context, string) ([]domain.Project, error) { return nil, nil }
func (g *stubGateway) Create(context.Context, domain.Project, string) (domain.Project, bool, error) {
	return g.createRec, g.createOK, g.createErr
}
func (g *stubGateway) Update(context.Context, domain.Project) (domain.Project, bool, error) {
	return domain.Project{}, false, nil
}
