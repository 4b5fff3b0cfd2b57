package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"altiushub/internal/model"
)

func newTestService() *JWTService {
	return NewJWTService("test-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestIssueAccessToken_VerifyFresh(t *testing.T) {
	svc := newTestService()

	token, err := svc.IssueAccessToken(1, model.RoleAdmin, true, 3*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(token, true)
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.Equal(t, TokenKindAccess, claims.Kind)
	assert.True(t, claims.Fresh)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestVerify_Expired(t *testing.T) {
	svc := newTestService()

	token, err := svc.IssueAccessToken(1, model.RoleAdmin, true, -time.Minute)
	require.NoError(t, err)

	_, err = svc.Verify(token, false)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_TamperedSignature(t *testing.T) {
	svc := newTestService()
	other := NewJWTService("other-secret", 15*time.Minute, 7*24*time.Hour)

	token, err := other.IssueAccessToken(1, model.RoleAdmin, true, 0)
	require.NoError(t, err)

	_, err = svc.Verify(token, false)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestVerify_Garbage(t *testing.T) {
	svc := newTestService()

	_, err := svc.Verify("not.a.token", false)
	assert.ErrorIs(t, err, ErrTokenMalformed)

	_, err = svc.Verify("", false)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestVerify_RefreshTokenRejected(t *testing.T) {
	svc := newTestService()

	refresh, err := svc.IssueRefreshToken(1, model.RoleAdmin)
	require.NoError(t, err)

	// a refresh token is not a valid access token
	_, err = svc.Verify(refresh, false)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestRefresh_IssuesNonFreshAccessToken(t *testing.T) {
	svc := newTestService()

	refresh, err := svc.IssueRefreshToken(7, model.RoleUser)
	require.NoError(t, err)

	access, err := svc.Refresh(refresh)
	require.NoError(t, err)

	_, err = svc.Verify(access, true)
	assert.ErrorIs(t, err, ErrTokenNotFresh)

	claims, err := svc.Verify(access, false)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, model.RoleUser, claims.Role)
	assert.False(t, claims.Fresh)
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	svc := newTestService()

	access, err := svc.IssueAccessToken(1, model.RoleAdmin, true, 0)
	require.NoError(t, err)

	// failed verification must never mint a replacement
	_, err = svc.Refresh(access)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestRefresh_ExpiredRefreshToken(t *testing.T) {
	svc := NewJWTService("test-secret", 15*time.Minute, -time.Minute)

	refresh, err := svc.IssueRefreshToken(1, model.RoleAdmin)
	require.NoError(t, err)

	_, err = svc.Refresh(refresh)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
