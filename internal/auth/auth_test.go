package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, in := range []string{"admin", "ADMIN", " Admin "} {
		r, err := ParseRole(in)
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, r)
	}
	r, err := ParseRole("user")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, r)

	_, err = ParseRole("masseur")
	require.Error(t, err)
}

func TestPrincipalAccess(t *testing.T) {
	admin := Principal{ID: "a1", Role: RoleAdmin}
	user := Principal{ID: "u1", Role: RoleUser}

	assert.True(t, admin.CanAccess("u1"))
	assert.True(t, user.CanAccess("u1"))
	assert.False(t, user.CanAccess("u2"))
	assert.False(t, Principal{Role: RoleUser}.Owns(""))
}

func TestVerifierRoundTrip(t *testing.T) {
	token, err := Sign("secret", Principal{ID: "u1", Role: RoleUser}, time.Hour)
	require.NoError(t, err)

	p, err := NewVerifier("secret").Verify(token)
	require.NoError(t, err)
	assert.Equal(t, Principal{ID: "u1", Role: RoleUser}, p)

	_, err = NewVerifier("other").Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifierRejectsBadClaims(t *testing.T) {
	v := NewVerifier("secret")

	expired, err := Sign("secret", Principal{ID: "u1", Role: RoleUser}, -time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(expired)
	require.ErrorIs(t, err, ErrInvalidToken)

	noRole := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err := noRole.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = v.Verify(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)

	_, ok = BearerToken("Basic abc")
	assert.False(t, ok)
	_, ok = BearerToken("Bearer ")
	assert.False(t, ok)
}
