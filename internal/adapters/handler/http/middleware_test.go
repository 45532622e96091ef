package http

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuthMiddleware(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")

	userID := uuid.New()
	var gotUserID uuid.UUID
	var called bool

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		gotUserID, _ = r.Context().Value(UserIDKey).(uuid.UUID)
	})
	protected := AuthMiddleware(next)

	validClaims := jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(15 * time.Minute).Unix(),
		"iat": time.Now().Unix(),
	}

	t.Run("valid token passes the user through", func(t *testing.T) {
		called = false
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: signToken(t, "test-secret", validClaims)})
		w := httptest.NewRecorder()

		protected.ServeHTTP(w, req)

		assert.True(t, called)
		assert.Equal(t, userID, gotUserID)
	})

	t.Run("missing cookie", func(t *testing.T) {
		called = false
		req := httptest.NewRequest("GET", "/", nil)
		w := httptest.NewRecorder()

		protected.ServeHTTP(w, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		called = false
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: signToken(t, "other-secret", validClaims)})
		w := httptest.NewRecorder()

		protected.ServeHTTP(w, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		called = false
		expired := jwt.MapClaims{
			"sub": userID.String(),
			"exp": time.Now().Add(-time.Minute).Unix(),
			"iat": time.Now().Add(-time.Hour).Unix(),
		}
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: signToken(t, "test-secret", expired)})
		w := httptest.NewRecorder()

		protected.ServeHTTP(w, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("non-uuid subject", func(t *testing.T) {
		called = false
		bad := jwt.MapClaims{
			"sub": "not-a-uuid",
			"exp": time.Now().Add(15 * time.Minute).Unix(),
		}
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: signToken(t, "test-secret", bad)})
		w := httptest.NewRecorder()

		protected.ServeHTTP(w, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
