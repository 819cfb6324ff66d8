// Package tui provides Bubble Tea models for the interactive TUI.
package tui

import (
	"github.com/myfiredeal/firedeal/internal/domain"
)

// SessionResolvedMsg carries the result of the startup session resolution.
// A nil session means nobody is signed in yet.
type SessionResolvedMsg struct {
	Session *domain.Session
}

// SessionChangedMsg is delivered for every session replacement published by
// the holder (refresh, sign-in from another path, sign-out).
type SessionChangedMsg struct {
	Session *domain.Session
}

// SignedInMsg is emitted when a sign-in attempt completes.
type SignedInMsg struct {
	Session *domain.Session
	Err     error
}

// SignedUpMsg is emitted when a sign-up attempt completes. On success the
// login form flips back to sign-in mode with a confirmation notice.
type SignedUpMsg struct {
	Err error
}

// SignedOutMsg is emitted once the sign-out has cleared local state.
type SignedOutMsg struct{}

// ProjectsLoadedMsg is emitted when a full collection load completes.
type ProjectsLoadedMsg struct {
	Err error
}

// ProjectSavedMsg carries the result of a create or update commit. It is
// handled at the app root so a resolved write still lands in the collection
// even when the originating modal has been closed.
type ProjectSavedMsg struct {
	Project domain.Project
	Created bool
	Err     error
}

// ProfileLoadedMsg carries the signed-in user's display name, loaded best
// effort after sign-in.
type ProfileLoadedMsg struct {
	Name string
}

// OpenCreateMsg asks the app to show the create modal pre-filled with the
// given kind.
type OpenCreateMsg struct {
	Kind domain.Kind
}

// OpenDetailMsg asks the app to show the detail modal for a project.
type OpenDetailMsg struct {
	ID string
}

// CloseModalMsg returns to the dashboard from the create or detail modal.
type CloseModalMsg struct{}

// ErrorMsg is emitted when an unrecoverable error occurs.
type ErrorMsg struct {
	Err error
}

// QuitMsg is emitted when the user requests to quit.
type QuitMsg struct{}
