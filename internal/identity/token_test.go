package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/shared"
	"github.com/taskdeck/taskdeck/internal/users"
)

func testUser() users.User {
	return users.User{
		ID:             7,
		Name:           "Ada",
		Email:          "ada@example.com",
		Role:           shared.RoleAdmin,
		OrganizationID: 3,
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	token, err := issuer.Issue(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token.Value)

	actor, claims, err := issuer.Verify(token.Value)
	require.NoError(t, err)

	assert.Equal(t, int64(7), actor.ID)
	assert.Equal(t, "ada@example.com", actor.Email)
	assert.Equal(t, shared.RoleAdmin, actor.Role)
	assert.Equal(t, int64(3), actor.OrganizationID)
	assert.NotEmpty(t, claims.ID, "token must carry a unique id for revocation")
	assert.WithinDuration(t, token.ExpiresAt, claims.ExpiresAt.Time, time.Second)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewIssuer("secret-a", time.Hour).Issue(testUser())
	require.NoError(t, err)

	_, _, err = NewIssuer("secret-b", time.Hour).Verify(token.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Minute)
	issued := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return issued }

	token, err := issuer.Issue(testUser())
	require.NoError(t, err)

	issuer.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, _, err = issuer.Verify(token.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)
	for _, value := range []string{"", "not-a-token", "a.b.c"} {
		_, _, err := issuer.Verify(value)
		assert.ErrorIs(t, err, ErrInvalidToken, "value %q", value)
	}
}

func TestVerifyRejectsUnknownRole(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)
	user := testUser()
	user.Role = shared.Role("superuser")

	token, err := issuer.Issue(user)
	require.NoError(t, err)

	_, _, err = issuer.Verify(token.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDistinctTokenIDs(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	first, err := issuer.Issue(testUser())
	require.NoError(t, err)
	second, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, firstClaims, err := issuer.Verify(first.Value)
	require.NoError(t, err)
	_, secondClaims, err := issuer.Verify(second.Value)
	require.NoError(t, err)

	assert.NotEqual(t, firstClaims.ID, secondClaims.ID)
}
