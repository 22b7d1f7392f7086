package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strp(s string) *string { return &s }

// Display names derive from first+last and fall back to the legacy name
// column. The per-user SQL breakdowns use the same derivation, so users
// created through the API (who never populate the legacy column) still get
// their name reported.
func TestDisplayName(t *testing.T) {
	u := &User{FirstName: strp("Jean"), LastName: strp("Dupont")}
	assert.Equal(t, "Jean Dupont", u.DisplayName())

	u = &User{FirstName: strp("Jean"), Name: "ignored"}
	assert.Equal(t, "Jean", u.DisplayName())

	u = &User{Name: "Legacy Name"}
	assert.Equal(t, "Legacy Name", u.DisplayName())

	u = &User{}
	assert.Equal(t, "", u.DisplayName())
}

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, RoleOuvrier, NormalizeRole("employee"))
	assert.Equal(t, RoleAdmin, NormalizeRole(RoleAdmin))
	assert.True(t, ValidRole("employee"))
	assert.False(t, ValidRole("superuser"))
}
