// Package jwt issues and verifies the HS256 session tokens carried in the
// "jwt" cookie or the Authorization header.
//
// Tokens are issued with a single canonical subject claim, "userId".
// Tokens minted by earlier deployments may carry the subject under "id",
// "_id" or "sub"; ValidateToken accepts those names from a fixed allow-list
// so existing sessions survive until they expire.
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v4"
)

// UserIDClaim is the claim every newly issued token carries.
const UserIDClaim = "userId"

// legacySubjectClaims are consulted, in order, only when UserIDClaim is absent.
var legacySubjectClaims = []string{"id", "_id", "sub"}

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrInvalidToken   = errors.New("invalid token")
	ErrMissingSubject = errors.New("token has no subject claim")
)

// Claims is the verified content of a session token.
type Claims struct {
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// GenerateToken signs a session token for userID valid for expiry.
func GenerateToken(userID, secret string, expiry time.Duration) (string, error) {
	if userID == "" {
		return "", ErrMissingSubject
	}
	now := time.Now()
	claims := gojwt.MapClaims{
		UserIDClaim: userID,
		"iat":       now.Unix(),
		"exp":       now.Add(expiry).Unix(),
	}

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies signature, algorithm and expiry and extracts the
// subject. A token without an exp claim is rejected.
func ValidateToken(tokenStr, secret string) (*Claims, error) {
	parsed, err := gojwt.Parse(tokenStr, func(t *gojwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*gojwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}))
	if err != nil {
		var vErr *gojwt.ValidationError
		if errors.As(err, &vErr) && vErr.Errors&gojwt.ValidationErrorExpired != 0 {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mc, ok := parsed.Claims.(gojwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	now := time.Now().Unix()
	if !mc.VerifyExpiresAt(now, true) {
		return nil, ErrTokenExpired
	}

	userID := subjectFrom(mc)
	if userID == "" {
		return nil, ErrMissingSubject
	}

	claims := &Claims{UserID: userID}
	if exp, ok := mc["exp"].(float64); ok {
		claims.ExpiresAt = time.Unix(int64(exp), 0)
	}
	if iat, ok := mc["iat"].(float64); ok {
		claims.IssuedAt = time.Unix(int64(iat), 0)
	}
	return claims, nil
}

func subjectFrom(mc gojwt.MapClaims) string {
	names := append([]string{UserIDClaim}, legacySubjectClaims...)
	for _, name := range names {
		if v, ok := mc[name].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
