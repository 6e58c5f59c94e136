package jwt

import (
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-at-least-16-chars!!"

func signMap(t *testing.T, claims gojwt.MapClaims, secret string) string {
	t.Helper()
	s, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestGenerateAndValidate(t *testing.T) {
	token, err := GenerateToken("64b7f0c2e4b0a1a2b3c4d5e6", testSecret, 7*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(token, "."))

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "64b7f0c2e4b0a1a2b3c4d5e6", claims.UserID)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestGenerateRejectsEmptySubject(t *testing.T) {
	_, err := GenerateToken("", testSecret, time.Hour)
	assert.ErrorIs(t, err, ErrMissingSubject)
}

func TestValidateWrongSecret(t *testing.T) {
	token, err := GenerateToken("user-1", testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token, "another-secret-entirely!!")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateExpired(t *testing.T) {
	token := signMap(t, gojwt.MapClaims{
		UserIDClaim: "user-1",
		"exp":       time.Now().Add(-time.Minute).Unix(),
	}, testSecret)

	_, err := ValidateToken(token, testSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateRequiresExpiry(t *testing.T) {
	token := signMap(t, gojwt.MapClaims{UserIDClaim: "user-1"}, testSecret)

	_, err := ValidateToken(token, testSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateMalformed(t *testing.T) {
	_, err := ValidateToken("not-a-token", testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsNoneAlgorithm(t *testing.T) {
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, gojwt.MapClaims{
		UserIDClaim: "user-1",
		"exp":       time.Now().Add(time.Hour).Unix(),
	}).SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ValidateToken(token, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLegacySubjectClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	tests := []struct {
		name   string
		claims gojwt.MapClaims
		want   string
	}{
		{"id", gojwt.MapClaims{"id": "a1", "exp": exp}, "a1"},
		{"_id", gojwt.MapClaims{"_id": "b2", "exp": exp}, "b2"},
		{"sub", gojwt.MapClaims{"sub": "c3", "exp": exp}, "c3"},
		{"canonical wins", gojwt.MapClaims{UserIDClaim: "d4", "sub": "zz", "exp": exp}, "d4"},
		{"id before sub", gojwt.MapClaims{"id": "e5", "sub": "zz", "exp": exp}, "e5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateToken(signMap(t, tt.claims, testSecret), testSecret)
			require.NoError(t, err)
			assert.Equal(t, tt.want, claims.UserID)
		})
	}
}

func TestUnknownSubjectClaimRejected(t *testing.T) {
	token := signMap(t, gojwt.MapClaims{
		"user": "x",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	_, err := ValidateToken(token, testSecret)
	assert.ErrorIs(t, err, ErrMissingSubject)
}
