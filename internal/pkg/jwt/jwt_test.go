package jwt

import (
	"strings"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParse(t *testing.T) {
	SetSecret("test-secret")

	token, err := Sign("user-1", "a@b.c", time.Hour)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@b.c", claims.Email)
}

func TestParse_Expired(t *testing.T) {
	SetSecret("test-secret")

	token, err := Sign("user-1", "", -time.Minute)
	require.NoError(t, err)

	_, err = Parse(token)
	assert.Error(t, err)
}

func TestParse_WrongSecret(t *testing.T) {
	SetSecret("one")
	token, err := Sign("user-1", "", time.Hour)
	require.NoError(t, err)

	SetSecret("two")
	_, err = Parse(token)
	assert.Error(t, err)
}

func TestParse_RejectsNoneAlg(t *testing.T) {
	SetSecret("test-secret")
	unsigned := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, Claims{UserID: "user-1"})
	raw, err := unsigned.SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = Parse(raw)
	assert.Error(t, err)
}
