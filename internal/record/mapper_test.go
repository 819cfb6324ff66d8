package record

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myfiredeal/firedeal/internal/domain"
)

// Test fixtures
func createFullProject() domain.Project {
	return domain.Project{
		ID:               "rec-1",
		Name:             "Acme Expansion",
		Sector:           "Energy",
		Kind:             domain.KindDeal,
		PartnerClient:    "Acme Corp",
		Status:           "In negotiation",
		Objective:        "Close before Q4",
		NextAction:       "Send term sheet",
		PromptMarketing:  "marketing copy",
		PromptPartner:    "partner pitch",
		PromptSeller:     "seller brief",
		PromptSpecialist: "specialist notes",
		Priority:         domain.PriorityHigh,
		IsPublic:         true,
		OwnerID:          "user-1",
		CreatedAt:        "2026-01-15T10:00:00Z",
	}
}

// TestToStorageExplicitNulls verifies that empty free-text fields serialize
// as explicit JSON nulls, never as omitted keys.
func TestToStorageExplicitNulls(t *testing.T) {
	row := ToStorage(domain.Project{Kind: domain.KindSubsidiary, Priority: domain.PriorityMedium}, Options{})

	data, err := json.Marshal(row)
	require.NoError(t, err)
	payload := string(data)

	for _, col := range []string{
		"nom_du_projet", "type_secteur", "partenaire_client", "statut",
		"objectif", "prochaine_action", "prompt_marketing",
		"prompt_partenaire", "prompt_vendeur", "prompt_specialiste",
	} {
		assert.Contains(t, payload, `"`+col+`":null`, "column %s should be an explicit null", col)
	}

	// Defaulted enums are real values, not nulls
	assert.Contains(t, payload, `"type_projet":"Subsidiary"`)
	assert.Contains(t, payload, `"priorite":"Medium"`)
	assert.Contains(t, payload, `"is_public":false`)
}

// TestToStorageOwnerStamping verifies that the owner column appears only
// when requested (create), never on update payloads.
func TestToStorageOwnerStamping(t *testing.T) {
	p := createFullProject()

	withOwner, err := json.Marshal(ToStorage(p, Options{IncludeOwner: true, OwnerID: "user-1"}))
	require.NoError(t, err)
	assert.Contains(t, string(withOwner), `"owner_id":"user-1"`)

	withoutOwner, err := json.Marshal(ToStorage(p, Options{}))
	require.NoError(t, err)
	assert.NotContains(t, string(withoutOwner), "owner_id")
}

// TestToStorageNeverWritesIdentity verifies the client never writes id or
// created_at; the store assigns both.
func TestToStorageNeverWritesIdentity(t *testing.T) {
	data, err := json.Marshal(ToStorage(createFullProject(), Options{}))
	require.NoError(t, err)

	assert.False(t, strings.Contains(string(data), `"id"`))
	assert.False(t, strings.Contains(string(data), "created_at"))
}

// TestFromStorageDefaults verifies that a row of nothing but nulls comes
// back as a fully-defaulted record.
func TestFromStorageDefaults(t *testing.T) {
	p := FromStorage(Row{})

	assert.Equal(t, "", p.ID)
	assert.Equal(t, "", p.Name)
	assert.Equal(t, domain.KindSubsidiary, p.Kind)
	assert.Equal(t, domain.PriorityMedium, p.Priority)
	assert.False(t, p.IsPublic)
	assert.NotEmpty(t, p.CreatedAt, "missing created_at defaults to now")
}

// TestFromStorageNormalizesEnums verifies unknown stored values collapse to
// the defaults instead of leaking into the UI.
func TestFromStorageNormalizesEnums(t *testing.T) {
	tests := []struct {
		name         string
		kind         string
		priority     string
		wantKind     domain.Kind
		wantPriority domain.Priority
	}{
		{"known values pass through", "Deal", "High", domain.KindDeal, domain.PriorityHigh},
		{"unknown kind defaults", "Branch", "Low", domain.KindSubsidiary, domain.PriorityLow},
		{"unknown priority defaults", "Subsidiary", "Urgent", domain.KindSubsidiary, domain.PriorityMedium},
		{"empty both default", "", "", domain.KindSubsidiary, domain.PriorityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind := tt.kind
			priority := tt.priority
			p := FromStorage(Row{Kind: &kind, Priority: &priority})
			assert.Equal(t, tt.wantKind, p.Kind)
			assert.Equal(t, tt.wantPriority, p.Priority)
		})
	}
}

// TestRoundTrip verifies a record survives the full out-and-back mapping,
// including a pass through JSON serialization.
func TestRoundTrip(t *testing.T) {
	original := createFullProject()

	row := ToStorage(original, Options{IncludeOwner: true, OwnerID: original.OwnerID})
	// The store assigns these on write
	row.ID = original.ID
	created := original.CreatedAt
	row.CreatedAt = &created

	data, err := json.Marshal(row)
	require.NoError(t, err)
	var decoded Row
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, original, FromStorage(decoded))
}
