package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cherryblossom/internal/platform/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminRequest(t *testing.T, secret, role string) *http.Request {
	t.Helper()
	token, _, err := crypto.GenerateToken(secret, "ops", role, time.Hour)
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodPost, "/internal/jobs/transform", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

func TestAdminMiddleware(t *testing.T) {
	var subject string
	handler := AdminMiddleware("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = SubjectFrom(r)
		assert.Equal(t, crypto.RoleAdmin, RoleFrom(r))
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, adminRequest(t, "secret", crypto.RoleAdmin))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ops", subject)
}

func TestAdminMiddleware_Rejects(t *testing.T) {
	handler := AdminMiddleware("secret")(okHandler)

	tests := []struct {
		name string
		req  *http.Request
		want int
	}{
		{"no header", httptest.NewRequest(http.MethodPost, "/", nil), http.StatusUnauthorized},
		{"wrong secret", adminRequest(t, "other", crypto.RoleAdmin), http.StatusUnauthorized},
		{"wrong role", adminRequest(t, "secret", "VIEWER"), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, tt.req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestAdminMiddleware_NoSecretConfigured(t *testing.T) {
	handler := AdminMiddleware("")(okHandler)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, adminRequest(t, "secret", crypto.RoleAdmin))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
