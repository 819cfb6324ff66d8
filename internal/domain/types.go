// Package domain defines the normalized domain types for the portfolio
// tracker. These types represent the core concepts independent of the
// storage schema used by the backing store.
package domain

// Kind partitions the dashboard into its two tabs.
type Kind string

const (
	KindSubsidiary Kind = "Subsidiary"
	KindDeal       Kind = "Deal"
)

// Kinds lists the valid kinds in tab order.
var Kinds = []Kind{KindSubsidiary, KindDeal}

// NormalizeKind maps unknown or missing input to the default kind.
func NormalizeKind(s string) Kind {
	switch Kind(s) {
	case KindSubsidiary, KindDeal:
		return Kind(s)
	default:
		return KindSubsidiary
	}
}

// Priority is the coarse urgency attached to a project.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Priorities lists the valid priorities in menu order.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// NormalizePriority maps unknown or missing input to the default priority.
func NormalizePriority(s string) Priority {
	switch Priority(s) {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return Priority(s)
	default:
		return PriorityMedium
	}
}

// UndefinedTypeLabel is shown when a project has neither a sector nor a kind.
const UndefinedTypeLabel = "Type not set"

// Project is one portfolio entry (subsidiary or deal) with its full field
// set. All free-text fields are plain strings, never absent; a zero-value
// Project is a valid empty draft once its Kind and Priority are defaulted.
type Project struct {
	ID               string   // Assigned by the store (remote) or generated client-side (local)
	Name             string   // Display name
	Sector           string   // Free-text sector / market segment
	Kind             Kind     // Subsidiary or Deal; sole dashboard partition key
	PartnerClient    string   // Counterparty name
	Status           string   // Free-text status
	Objective        string   // Free-text objective
	NextAction       string   // Free-text next action
	PromptMarketing  string   // Template slot
	PromptPartner    string   // Template slot
	PromptSeller     string   // Template slot
	PromptSpecialist string   // Template slot
	Priority         Priority // High, Medium or Low
	IsPublic         bool     // Visibility flag
	OwnerID          string   // Owning user id; stamped at creation, never user-editable
	CreatedAt        string   // RFC3339 timestamp, immutable after creation
}

// TypeLabel derives the display label for a project's type: the sector when
// set, else the kind, else a sentinel. Never stored, always derived.
func (p Project) TypeLabel() string {
	if p.Sector != "" {
		return p.Sector
	}
	if p.Kind != "" {
		return string(p.Kind)
	}
	return UndefinedTypeLabel
}

// NewDraft returns an empty draft for the create form, pre-filled with the
// given kind and the default priority.
func NewDraft(kind Kind) Project {
	return Project{
		Kind:     NormalizeKind(string(kind)),
		Priority: PriorityMedium,
	}
}

// Session represents the authenticated actor. A nil *Session means signed
// out; consumers treat that as "no data", never as an error.
type Session struct {
	UserID       string
	Email        string
	AccessToken  string
	RefreshToken string
}
