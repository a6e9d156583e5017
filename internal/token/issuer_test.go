package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuanTND2497/expense-tracker/internal/port"
)

func newTestIssuer(t *testing.T) *Issuer {
	t.Helper()
	iss, err := NewIssuer("access-secret", time.Hour, "refresh-secret", 168*time.Hour)
	require.NoError(t, err)
	return iss
}

func TestNewIssuer_Configuration(t *testing.T) {
	tests := []struct {
		name          string
		accessSecret  string
		refreshSecret string
		accessTTL     time.Duration
		refreshTTL    time.Duration
		wantErr       bool
	}{
		{name: "valid", accessSecret: "a", refreshSecret: "r", accessTTL: time.Hour, refreshTTL: time.Hour},
		{name: "missing access secret", refreshSecret: "r", accessTTL: time.Hour, refreshTTL: time.Hour, wantErr: true},
		{name: "missing refresh secret", accessSecret: "a", accessTTL: time.Hour, refreshTTL: time.Hour, wantErr: true},
		{name: "zero access ttl", accessSecret: "a", refreshSecret: "r", refreshTTL: time.Hour, wantErr: true},
		{name: "zero refresh ttl", accessSecret: "a", refreshSecret: "r", accessTTL: time.Hour, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewIssuer(tt.accessSecret, tt.accessTTL, tt.refreshSecret, tt.refreshTTL)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIssuer_AccessTokenRoundTrip(t *testing.T) {
	iss := newTestIssuer(t)

	signed, err := iss.IssueAccessToken("user-1", "alice@example.com")
	require.NoError(t, err)

	claims, err := iss.VerifyAccess(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestIssuer_DistinctSecrets(t *testing.T) {
	iss := newTestIssuer(t)

	access, err := iss.IssueAccessToken("user-1", "alice@example.com")
	require.NoError(t, err)
	refresh, err := iss.IssueRefreshToken("user-1", "alice@example.com")
	require.NoError(t, err)

	// A refresh token must not verify as an access token, and vice versa.
	_, err = iss.VerifyAccess(refresh)
	assert.ErrorIs(t, err, port.ErrTokenInvalid)
	_, err = iss.VerifyRefresh(access)
	assert.ErrorIs(t, err, port.ErrTokenInvalid)
}

func TestIssuer_ExpiredToken(t *testing.T) {
	iss, err := NewIssuer("access-secret", time.Nanosecond, "refresh-secret", time.Nanosecond)
	require.NoError(t, err)

	signed, err := iss.IssueRefreshToken("user-1", "alice@example.com")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = iss.VerifyRefresh(signed)
	assert.ErrorIs(t, err, port.ErrTokenExpired)
}

func TestIssuer_GarbageToken(t *testing.T) {
	iss := newTestIssuer(t)

	_, err := iss.VerifyAccess("not.a.token")
	assert.ErrorIs(t, err, port.ErrTokenInvalid)
}
