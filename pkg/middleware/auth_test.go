package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dias221467/shadowmeet/internal/models"
	"github.com/Dias221467/shadowmeet/internal/testutil"
	"github.com/Dias221467/shadowmeet/pkg/jwt"
	gojwt "github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const secret = "test-secret-at-least-16-chars!!"

func signed(t *testing.T, claims gojwt.MapClaims) string {
	t.Helper()
	s, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func setup(t *testing.T) (*testutil.UserStore, *models.User, http.Handler) {
	t.Helper()
	users := testutil.NewUserStore()
	user := users.Add(&models.User{Email: "a@x.com", Password: "hash", FullName: "A"})

	h := AuthMiddleware(secret, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := GetUserFromContext(r.Context())
		require.NotNil(t, u)
		_, _ = w.Write([]byte(u.ID.Hex()))
	}))
	return users, user, h
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["message"]
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	_, user, h := setup(t)
	token, err := jwt.GenerateToken(user.ID.Hex(), secret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user.ID.Hex(), rec.Body.String())
}

func TestAuthMiddlewareRejects(t *testing.T) {
	_, user, h := setup(t)
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name  string
		token string
		msg   string
	}{
		{"missing", "", "Unauthorized - No token provided"},
		{"garbage", "not.a.jwt", "Unauthorized - Invalid or expired token"},
		{"expired", signed(t, gojwt.MapClaims{"userId": user.ID.Hex(), "exp": time.Now().Add(-time.Minute).Unix()}), "Unauthorized - Invalid or expired token"},
		{"no subject", signed(t, gojwt.MapClaims{"exp": exp}), "Unauthorized - Invalid token payload"},
		{"bad id", signed(t, gojwt.MapClaims{"userId": "nope", "exp": exp}), "Unauthorized - Invalid token payload"},
		{"unknown user", signed(t, gojwt.MapClaims{"userId": primitive.NewObjectID().Hex(), "exp": exp}), "Unauthorized - User not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.msg, message(t, rec))
		})
	}
}

func TestAuthMiddlewareAcceptsLegacyClaim(t *testing.T) {
	_, user, h := setup(t)
	token := signed(t, gojwt.MapClaims{"sub": user.ID.Hex(), "exp": time.Now().Add(time.Hour).Unix()})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Access-Token", token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTokenFromRequestPriority(t *testing.T) {
	tests := []struct {
		name   string
		cookie map[string]string
		header map[string]string
		want   string
	}{
		{"jwt cookie wins", map[string]string{"jwt": "c1", "token": "c2"}, map[string]string{"Authorization": "Bearer b", "X-Access-Token": "x"}, "c1"},
		{"bearer before token cookie", map[string]string{"token": "c2"}, map[string]string{"Authorization": "Bearer b", "X-Access-Token": "x"}, "b"},
		{"bearer is case-insensitive", nil, map[string]string{"Authorization": "bearer b"}, "b"},
		{"token cookie before header", map[string]string{"token": "c2"}, map[string]string{"X-Access-Token": "x"}, "c2"},
		{"access token header", nil, map[string]string{"X-Access-Token": "x"}, "x"},
		{"basic auth ignored", nil, map[string]string{"Authorization": "Basic abc"}, ""},
		{"nothing", nil, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.cookie {
				req.AddCookie(&http.Cookie{Name: k, Value: v})
			}
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, TokenFromRequest(req))
		})
	}
}

func TestAuthMiddlewareStoreFailure(t *testing.T) {
	users, user, h := setup(t)
	users.Err = assert.AnError
	token, err := jwt.GenerateToken(user.ID.Hex(), secret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
