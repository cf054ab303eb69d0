package httpserver

import (
	"crypto/subtle"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// RecruiterGuard protects recruiter endpoints with HTTP basic auth. The
// configured password is stored as a bcrypt hash; the guard is a no-op when
// credentials are not configured.
func (s *Server) RecruiterGuard() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !s.Cfg.HRAuthEnabled() {
				next.ServeHTTP(w, r)
				return
			}
			user, pass, ok := r.BasicAuth()
			if !ok || !s.credentialsValid(user, pass) {
				w.Header().Set("WWW-Authenticate", `Basic realm="recruiter"`)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) credentialsValid(user, pass string) bool {
	if subtle.ConstantTimeCompare([]byte(user), []byte(s.Cfg.HRUsername)) != 1 {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(s.Cfg.HRPasswordHash), []byte(pass)) == nil
}
