package auth

import (
	"testing"

	"garage-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-at-least-32-characters-long"

func TestTokenRoundTrip(t *testing.T) {
	user := &models.User{
		ID:       7,
		Username: "ayse",
		Email:    "ayse@example.com",
		Role:     models.RoleSupervisor,
	}

	token, err := GenerateToken(testSecret, user)
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "ayse", claims.Username)
	assert.Equal(t, "ayse@example.com", claims.Email)
	assert.Equal(t, models.RoleSupervisor, claims.Role)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	user := &models.User{ID: 1, Username: "admin", Role: models.RoleAdmin}

	token, err := GenerateToken(testSecret, user)
	require.NoError(t, err)

	_, err = ParseToken("another-secret-also-32-characters-xx", token)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken(testSecret, "not.a.token")
	assert.Error(t, err)
}

func TestPermissionsForRole(t *testing.T) {
	assert.True(t, PermissionsForRole(models.RoleAdmin)["show_personal_expenses"])
	assert.False(t, PermissionsForRole(models.RoleSupervisor)["show_personal_expenses"])
	assert.False(t, PermissionsForRole(models.RoleTechnician)["show_personal_expenses"])
}
