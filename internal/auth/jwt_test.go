package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/Pranaykumar222/CampusConnect/internal/apperr"
)

func signToken(t *testing.T, secret, userID string, expiry time.Duration) string {
	t.Helper()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateRoundTrip(t *testing.T) {
	v := NewValidator("s3cret")
	userID, err := v.Validate(signToken(t, "s3cret", "user-1", time.Hour))
	require.NoError(t, err)
	require.Equal(t, "user-1", userID)
}

func TestValidateRejectsBadTokens(t *testing.T) {
	v := NewValidator("s3cret")

	cases := map[string]string{
		"wrong secret":  signToken(t, "other", "user-1", time.Hour),
		"expired":       signToken(t, "s3cret", "user-1", -time.Hour),
		"empty subject": signToken(t, "s3cret", "", time.Hour),
		"garbage":       "not.a.token",
	}
	for name, token := range cases {
		_, err := v.Validate(token)
		require.ErrorIs(t, err, apperr.ErrAuth, name)
	}
}

func TestValidateRejectsUnsignedToken(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "user-1"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewValidator("s3cret").Validate(signed)
	require.ErrorIs(t, err, apperr.ErrAuth)
}

func TestParseBearer(t *testing.T) {
	token, err := ParseBearer("Bearer abc.def.ghi")
	require.NoError(t, err)
	require.Equal(t, "abc.def.ghi", token)

	token, err = ParseBearer("bearer abc")
	require.NoError(t, err)
	require.Equal(t, "abc", token)

	for _, header := range []string{"", "abc", "Basic abc"} {
		_, err := ParseBearer(header)
		require.ErrorIs(t, err, apperr.ErrAuth, header)
	}
}
