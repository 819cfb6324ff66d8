// Package store holds the in-memory project collection that drives the
// dashboard. It owns all mutations: view models never touch the collection
// directly, they commit drafts through Create and Update and read through
// the projection methods. The collection is ordered newest first.
package store

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/myfiredeal/firedeal/internal/domain"
	"github.com/myfiredeal/firedeal/internal/gateway"
	"github.com/myfiredeal/firedeal/internal/session"
)

// ErrNotFound indicates an update targeted a record that is not in the
// collection. Editing a record that was never loaded is a contract
// violation, not a silent no-op.
var ErrNotFound = errors.New("project not in collection")

// Store is the process-wide project collection. Bubble Tea resolves
// commands on goroutines, so access is mutex-guarded.
type Store struct {
	gw      gateway.Gateway
	session *session.Holder
	log     *zap.Logger

	mu       sync.RWMutex
	projects []domain.Project
}

// New creates an empty store backed by the given gateway, scoped by the
// session holder's identity.
func New(gw gateway.Gateway, holder *session.Holder, log *zap.Logger) *Store {
	return &Store{gw: gw, session: holder, log: log}
}

// Load replaces the whole collection with the gateway's list for the
// current session. Without a session the collection is simply emptied;
// that is the signed-out state, not an error.
func (s *Store) Load(ctx context.Context) error {
	sess := s.session.Current()
	if sess == nil {
		s.mu.Lock()
		s.projects = nil
		s.mu.Unlock()
		return nil
	}

	projects, err := s.gw.List(ctx, sess.UserID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.projects = projects
	s.mu.Unlock()
	return nil
}

// Create commits a draft. No field-level validation beyond enum
// defaulting: every record field is free text. On success the canonical
// record is inserted at the front, de-duplicated by id. When the gateway
// accepted the write without returning a row, the collection is resynced
// with a full Load instead of trusting a locally-built guess.
//
// With the fallback gateway, a returned record accompanied by an error is
// the stashed local copy: it is still inserted so the user's input stays
// visible, and the error is reported for display.
func (s *Store) Create(ctx context.Context, draft domain.Project) (domain.Project, error) {
	sess := s.session.Current()
	if sess == nil {
		return domain.Project{}, &gateway.PersistenceError{Op: "create", Err: errors.New("no active session")}
	}

	draft.Kind = domain.NormalizeKind(string(draft.Kind))
	draft.Priority = domain.NormalizePriority(string(draft.Priority))

	rec, ok, err := s.gw.Create(ctx, draft, sess.UserID)
	if err != nil {
		if ok && rec.ID != "" {
			s.insertFront(rec)
		}
		return rec, err
	}
	if !ok {
		s.log.Info("create returned no row, resyncing")
		if lerr := s.Load(ctx); lerr != nil {
			return domain.Project{}, lerr
		}
		return s.matchDraft(draft), nil
	}

	s.insertFront(rec)
	return rec, nil
}

// Update commits an edited copy of an existing record. The stored record
// is the shallow merge of its prior value with the draft's editable
// fields; owner and creation timestamp are immutable. Failure leaves the
// collection untouched so the caller can keep the draft and retry.
func (s *Store) Update(ctx context.Context, edited domain.Project) (domain.Project, error) {
	prior, found := s.Get(edited.ID)
	if !found {
		return domain.Project{}, ErrNotFound
	}

	merged := merge(prior, edited)

	rec, ok, err := s.gw.Update(ctx, merged)
	if err != nil {
		return domain.Project{}, err
	}
	if !ok {
		s.log.Info("update returned no row, resyncing", zap.String("id", merged.ID))
		if lerr := s.Load(ctx); lerr != nil {
			return domain.Project{}, lerr
		}
		if got, found := s.Get(merged.ID); found {
			return got, nil
		}
		return merged, nil
	}

	s.replaceInPlace(rec)
	return rec, nil
}

// All returns a copy of the collection, newest first.
func (s *Store) All() []domain.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Project, len(s.projects))
	copy(out, s.projects)
	return out
}

// ByKind is the dashboard's read-side projection: the records of one kind,
// in collection order. It never mutates the collection and reflects the
// latest commit immediately.
func (s *Store) ByKind(kind domain.Kind) []domain.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Project
	for _, p := range s.projects {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}

// Get returns the record with the given id, if present.
func (s *Store) Get(id string) (domain.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.projects {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Project{}, false
}

// Len returns the collection size.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.projects)
}

// insertFront puts rec first, removing any prior entry with the same id.
// The de-dup guards against a create resolving after a resync already
// delivered the same row.
func (s *Store) insertFront(rec domain.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := make([]domain.Project, 0, len(s.projects)+1)
	kept = append(kept, rec)
	for _, p := range s.projects {
		if p.ID != rec.ID {
			kept = append(kept, p)
		}
	}
	s.projects = kept
}

// replaceInPlace swaps the record with rec's id, preserving the relative
// order of all other records.
func (s *Store) replaceInPlace(rec domain.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.projects {
		if p.ID == rec.ID {
			s.projects[i] = rec
			return
		}
	}
	// The record left the collection while the write was in flight (a
	// concurrent resync); front-insert so the result is still reflected.
	s.projects = append([]domain.Project{rec}, s.projects...)
}

// matchDraft finds the freshly-resynced row for a draft that was created
// without a returned representation. Best effort by name and kind; the
// zero value is returned when the resynced list has no match.
func (s *Store) matchDraft(draft domain.Project) domain.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.projects {
		if p.Name == draft.Name && p.Kind == draft.Kind {
			return p
		}
	}
	return domain.Project{}
}

// merge applies the draft's editable fields over the prior record. Update
// is whole-record replacement at the storage layer, so every editable
// field comes from the draft; identity and provenance stay with the prior.
func merge(prior, draft domain.Project) domain.Project {
	out := prior
	out.Name = draft.Name
	out.Sector = draft.Sector
	out.Kind = domain.NormalizeKind(string(draft.Kind))
	out.PartnerClient = draft.PartnerClient
	out.Status = draft.Status
	out.Objective = draft.Objective
	out.NextAction = draft.NextAction
	out.PromptMarketing = draft.PromptMarketing
	out.PromptPartner = draft.PromptPartner
	out.PromptSeller = draft.PromptSeller
	out.PromptSpecialist = draft.PromptSpecialist
	out.Priority = domain.NormalizePriority(string(draft.Priority))
	out.IsPublic = draft.IsPublic
	return out
}
