package gateway

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/myfiredeal/firedeal/internal/domain"
)

// Fallback is the "best effort remote, replicate locally" composition:
// writes go to the remote store first; when that fails, the user's input is
// stashed in the local strategy under a client-generated id so it is never
// lost, and the remote error is still surfaced for display.
//
// Reconciliation policy for stashed records: List retries the remote create
// for each of them after a successful remote fetch. A retried record is
// evicted from the stash and served from its canonical remote row; one that
// still fails stays stashed and is appended to the result so it remains
// visible instead of silently disappearing.
type Fallback struct {
	remote Gateway
	local  *Local
	log    *zap.Logger
}

// NewFallback composes a remote gateway with a local stash.
func NewFallback(remote Gateway, local *Local, log *zap.Logger) *Fallback {
	return &Fallback{remote: remote, local: local, log: log}
}

// List serves the remote collection, reconciling the local stash into it.
// When the remote store is unreachable the stash alone is served so the
// dashboard still shows what the user entered offline.
func (f *Fallback) List(ctx context.Context, ownerID string) ([]domain.Project, error) {
	remote, err := f.remote.List(ctx, ownerID)
	if err != nil {
		f.log.Warn("remote list failed, serving local stash", zap.Error(err))
		stash, lerr := f.local.List(ctx, ownerID)
		if lerr != nil {
			return nil, err
		}
		return stash, err
	}

	stash, lerr := f.local.List(ctx, ownerID)
	if lerr != nil {
		f.log.Warn("local stash unreadable during reconcile", zap.Error(lerr))
		return remote, nil
	}

	seen := make(map[string]struct{}, len(remote))
	for _, p := range remote {
		seen[p.ID] = struct{}{}
	}

	for _, stashed := range stash {
		if _, dup := seen[stashed.ID]; dup {
			continue
		}
		rec, ok, cerr := f.remote.Create(ctx, stashed, ownerID)
		if cerr != nil || !ok {
			f.log.Warn("stash retry failed, keeping local copy",
				zap.String("id", stashed.ID), zap.Error(cerr))
			remote = append(remote, stashed)
			continue
		}
		f.log.Info("stashed record promoted to remote",
			zap.String("local_id", stashed.ID), zap.String("remote_id", rec.ID))
		if rerr := f.local.Remove(stashed.ID); rerr != nil {
			f.log.Warn("could not evict promoted record from stash", zap.Error(rerr))
		}
		remote = append([]domain.Project{rec}, remote...)
	}
	return remote, nil
}

// Create writes through to the remote store. On remote failure the draft is
// written to the stash unconditionally and returned alongside the remote
// error: the caller inserts the fallback record and still shows the error.
func (f *Fallback) Create(ctx context.Context, draft domain.Project, ownerID string) (domain.Project, bool, error) {
	rec, ok, err := f.remote.Create(ctx, draft, ownerID)
	if err == nil {
		return rec, ok, nil
	}

	f.log.Warn("remote create failed, stashing locally", zap.Error(err))
	stashed, _, lerr := f.local.Create(ctx, draft, ownerID)
	if lerr != nil {
		// Both copies failed; the local error is the data-loss one.
		f.log.Error("local stash write failed after remote failure", zap.Error(lerr))
		return domain.Project{}, false, lerr
	}
	return stashed, true, err
}

// Update passes through to the remote store; edits have no fallback
// semantics. Edits to a still-stashed record are applied to the stash so
// they are not lost when the record is later promoted.
func (f *Fallback) Update(ctx context.Context, p domain.Project) (domain.Project, bool, error) {
	stashed, ok, err := f.local.Update(ctx, p)
	if err == nil && ok {
		return stashed, true, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		// Not a plain miss: the stash itself is unreadable or unwritable
		f.log.Warn("local stash error during update, trying remote", zap.Error(err))
	}
	return f.remote.Update(ctx, p)
}
