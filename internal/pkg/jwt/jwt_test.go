package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignParse(t *testing.T) {
	SetSecret("test-secret")

	tok, err := Sign("admin-1", "sess-1", time.Hour)
	require.NoError(t, err)

	claims, err := Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.AdminID)
	assert.Equal(t, "sess-1", claims.SessionID)
}

func TestParseRejects(t *testing.T) {
	SetSecret("test-secret")

	expired, err := Sign("admin-1", "sess-1", -time.Minute)
	require.NoError(t, err)
	_, err = Parse(expired)
	assert.Error(t, err)

	noSID, err := Sign("admin-1", "", time.Hour)
	require.NoError(t, err)
	_, err = Parse(noSID)
	assert.Error(t, err)

	other := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, Claims{AdminID: "a", SessionID: "s",
		RegisteredClaims: jwtlib.RegisteredClaims{Issuer: issuer}})
	forged, err := other.SignedString([]byte("wrong"))
	require.NoError(t, err)
	_, err = Parse(forged)
	assert.Error(t, err)

	_, err = Parse("not-a-token")
	assert.Error(t, err)
}
