// Package record translates between the domain Project and the storage
// schema of the projects table. Both directions are pure and total: every
// empty input field becomes an explicit null on the way out, and every
// null or absent column becomes a hard default on the way in, so the view
// layer never sees a partially-populated record.
package record

import (
	"time"

	"github.com/myfiredeal/firedeal/internal/domain"
)

// Row mirrors one row of the projects table (and one entry of the local
// blob, which reuses the storage schema). Nullable columns are pointers so
// an empty field serializes as an explicit null rather than an omitted key.
type Row struct {
	ID               string  `json:"id,omitempty"`
	Name             *string `json:"nom_du_projet"`
	Kind             *string `json:"type_projet"`
	Sector           *string `json:"type_secteur"`
	PartnerClient    *string `json:"partenaire_client"`
	Status           *string `json:"statut"`
	Objective        *string `json:"objectif"`
	NextAction       *string `json:"prochaine_action"`
	PromptMarketing  *string `json:"prompt_marketing"`
	PromptPartner    *string `json:"prompt_partenaire"`
	PromptSeller     *string `json:"prompt_vendeur"`
	PromptSpecialist *string `json:"prompt_specialiste"`
	Priority         *string `json:"priorite"`
	IsPublic         bool    `json:"is_public"`
	OwnerID          *string `json:"owner_id,omitempty"`
	CreatedAt        *string `json:"created_at,omitempty"`
}

// Options controls the write-side mapping.
type Options struct {
	// IncludeOwner stamps the owner column from OwnerID. Set on create;
	// left unset on update so the owner is never overwritten.
	IncludeOwner bool
	OwnerID      string
}

// ToStorage maps a project to its storage payload. The id and created_at
// columns are never written by the caller in remote mode (the store assigns
// them); the local strategy fills them in before persisting.
func ToStorage(p domain.Project, opts Options) Row {
	row := Row{
		Name:             nullable(p.Name),
		Kind:             nullable(string(p.Kind)),
		Sector:           nullable(p.Sector),
		PartnerClient:    nullable(p.PartnerClient),
		Status:           nullable(p.Status),
		Objective:        nullable(p.Objective),
		NextAction:       nullable(p.NextAction),
		PromptMarketing:  nullable(p.PromptMarketing),
		PromptPartner:    nullable(p.PromptPartner),
		PromptSeller:     nullable(p.PromptSeller),
		PromptSpecialist: nullable(p.PromptSpecialist),
		Priority:         nullable(string(p.Priority)),
		IsPublic:         p.IsPublic,
	}
	if opts.IncludeOwner {
		row.OwnerID = nullable(opts.OwnerID)
	}
	return row
}

// FromStorage maps a storage row back to a fully-populated project. An
// empty ID marks the record as unpersisted: callers must not feed it to
// update operations.
func FromStorage(row Row) domain.Project {
	return domain.Project{
		ID:               row.ID,
		Name:             orEmpty(row.Name),
		Kind:             domain.NormalizeKind(orEmpty(row.Kind)),
		Sector:           orEmpty(row.Sector),
		PartnerClient:    orEmpty(row.PartnerClient),
		Status:           orEmpty(row.Status),
		Objective:        orEmpty(row.Objective),
		NextAction:       orEmpty(row.NextAction),
		PromptMarketing:  orEmpty(row.PromptMarketing),
		PromptPartner:    orEmpty(row.PromptPartner),
		PromptSeller:     orEmpty(row.PromptSeller),
		PromptSpecialist: orEmpty(row.PromptSpecialist),
		Priority:         domain.NormalizePriority(orEmpty(row.Priority)),
		IsPublic:         row.IsPublic,
		OwnerID:          orEmpty(row.OwnerID),
		CreatedAt:        orNow(row.CreatedAt),
	}
}

// nullable returns nil for the empty string so the column serializes as an
// explicit null.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orNow(s *string) string {
	if s == nil || *s == "" {
		return Now()
	}
	return *s
}

// Now returns the timestamp format used across the storage schema.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
