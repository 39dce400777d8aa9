package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newTestRouter(handler http.HandlerFunc, adminOnly bool) *mux.Router {
	r := mux.NewRouter()
	sub := r.PathPrefix("/").Subrouter()
	sub.Use(RequireAuth(testSecret))
	if adminOnly {
		sub.Use(RequireAdmin)
	}
	sub.HandleFunc("/protected", handler).Methods("GET")
	return r
}

func TestRequireAuthPopulatesIdentity(t *testing.T) {
	var gotUserID int
	var gotRole string
	router := newTestRouter(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserID(r.Context())
		gotRole = Role(r.Context())
	}, false)

	token := signToken(t, jwt.MapClaims{
		"user_id": 7,
		"role":    "user",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, gotUserID)
	assert.Equal(t, "user", gotRole)
}

func TestRequireAuthRejectsMissingOrBadToken(t *testing.T) {
	router := newTestRouter(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}, false)

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireAuthRejectsExpiredToken(t *testing.T) {
	router := newTestRouter(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}, false)

	token := signToken(t, jwt.MapClaims{
		"user_id": 7,
		"role":    "user",
		"exp":     time.Now().Add(-time.Minute).Unix(),
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	router := newTestRouter(func(w http.ResponseWriter, r *http.Request) {}, true)

	t.Run("admin allowed", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{
			"user_id": 1,
			"role":    "admin",
			"exp":     time.Now().Add(time.Hour).Unix(),
		})
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("regular user forbidden", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{
			"user_id": 7,
			"role":    "user",
			"exp":     time.Now().Add(time.Hour).Unix(),
		})
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
