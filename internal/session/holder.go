package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/myfiredeal/firedeal/internal/domain"
)

const sessionFileName = "session.json"

// Holder owns the current session and the change-notification channel the
// UI consumes. Every change fully replaces the held session, including to
// nil on sign-out. The session is persisted to disk so a restart resumes
// without re-entering credentials.
type Holder struct {
	provider Provider
	path     string
	log      *zap.Logger

	mu      sync.RWMutex
	current *domain.Session

	changes chan *domain.Session
}

// NewHolder creates a holder persisting its session under dataDir.
func NewHolder(provider Provider, dataDir string, log *zap.Logger) *Holder {
	return &Holder{
		provider: provider,
		path:     filepath.Join(dataDir, sessionFileName),
		log:      log,
		changes:  make(chan *domain.Session, 16),
	}
}

// Current returns the held session, nil when signed out.
func (h *Holder) Current() *domain.Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Changes delivers every session replacement, including the nil that a
// sign-out produces. The UI reads one notification per render cycle.
func (h *Holder) Changes() <-chan *domain.Session {
	return h.changes
}

// Resolve restores the persisted session, validating it against the
// provider and falling back to a token refresh when the access token has
// expired. It must complete before the first screen is chosen; the caller
// shows an initializing state until it returns. A resolution failure means
// "signed out", never a fatal error.
func (h *Holder) Resolve(ctx context.Context) *domain.Session {
	stored, err := h.loadPersisted()
	if err != nil {
		h.log.Warn("could not read persisted session", zap.Error(err))
		return h.replace(nil)
	}
	if stored == nil {
		return h.replace(nil)
	}

	if userID, email, err := h.provider.Validate(ctx, stored.AccessToken); err == nil {
		stored.UserID = userID
		stored.Email = email
		h.provider.BindSession(stored)
		return h.replace(stored)
	}

	if stored.RefreshToken != "" {
		if fresh, err := h.provider.Refresh(ctx, stored.RefreshToken); err == nil {
			h.provider.BindSession(fresh)
			h.persist(fresh)
			return h.replace(fresh)
		}
	}

	h.log.Info("persisted session no longer valid")
	h.clearPersisted()
	return h.replace(nil)
}

// SignIn authenticates and installs the resulting session.
func (h *Holder) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	sess, err := h.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	h.provider.BindSession(sess)
	h.persist(sess)
	return h.replace(sess), nil
}

// SignUp registers a new account and writes the display name to the
// profile store. The profile write is part of the operation's contract: if
// it fails, the sign-up as a whole is reported as failed. The user is not
// signed in; the provider may require an email confirmation first.
func (h *Holder) SignUp(ctx context.Context, email, password, fullName string) error {
	userID, _, err := h.provider.SignUp(ctx, email, password)
	if err != nil {
		return err
	}
	if userID == "" {
		return nil
	}
	return h.provider.UpsertProfile(ctx, userID, fullName)
}

// ProfileName loads the display name for the current session's user. With
// no session it returns the empty string.
func (h *Holder) ProfileName(ctx context.Context) (string, error) {
	cur := h.Current()
	if cur == nil {
		return "", nil
	}
	return h.provider.ProfileName(ctx, cur.UserID)
}

// SignOut clears the held session. The provider call is fire-and-forget: a
// failure to reach it is logged but never keeps the local session alive.
func (h *Holder) SignOut(ctx context.Context) {
	cur := h.Current()
	if cur != nil {
		if err := h.provider.SignOut(ctx, cur.AccessToken); err != nil {
			h.log.Warn("provider sign-out failed", zap.Error(err))
		}
	}
	h.provider.BindSession(nil)
	h.clearPersisted()
	h.replace(nil)
}

// replace installs the new session and publishes the change. The channel is
// buffered; if the UI has fallen far enough behind to fill it, the oldest
// notification is dropped since only the latest session matters.
func (h *Holder) replace(s *domain.Session) *domain.Session {
	h.mu.Lock()
	h.current = s
	h.mu.Unlock()

	for {
		select {
		case h.changes <- s:
			return s
		default:
			select {
			case <-h.changes:
				h.log.Debug("dropped stale session notification")
			default:
			}
		}
	}
}

type persistedSession struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (h *Holder) loadPersisted() (*domain.Session, error) {
	data, err := os.ReadFile(h.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p persistedSession
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if p.AccessToken == "" {
		return nil, nil
	}
	return &domain.Session{
		UserID:       p.UserID,
		Email:        p.Email,
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
	}, nil
}

func (h *Holder) persist(s *domain.Session) {
	data, err := json.Marshal(persistedSession{
		UserID:       s.UserID,
		Email:        s.Email,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
	})
	if err != nil {
		h.log.Warn("could not encode session", zap.Error(err))
		return
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		h.log.Warn("could not persist session", zap.Error(err))
		return
	}
	if err := os.WriteFile(h.path, data, 0o600); err != nil {
		h.log.Warn("could not persist session", zap.Error(err))
	}
}

func (h *Holder) clearPersisted() {
	if err := os.Remove(h.path); err != nil && !os.IsNotExist(err) {
		h.log.Warn("could not remove persisted session", zap.Error(err))
	}
}
