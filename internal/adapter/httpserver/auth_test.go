package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fairyhunter13/resume-matcher/internal/config"
)

func TestRecruiterGuard(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	srv := &Server{Cfg: config.Config{HRUsername: "hr", HRPasswordHash: string(hash)}}

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	guard := srv.RecruiterGuard()(next)

	t.Run("no credentials", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		guard.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/matches/top", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/v1/matches/top", nil)
		req.SetBasicAuth("hr", "wrong")
		rec := httptest.NewRecorder()
		guard.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong user", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/v1/matches/top", nil)
		req.SetBasicAuth("admin", "s3cret")
		rec := httptest.NewRecorder()
		guard.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/v1/matches/top", nil)
		req.SetBasicAuth("hr", "s3cret")
		rec := httptest.NewRecorder()
		guard.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("guard disabled without config", func(t *testing.T) {
		t.Parallel()
		open := (&Server{Cfg: config.Config{}}).RecruiterGuard()(next)
		rec := httptest.NewRecorder()
		open.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/matches/top", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
