package middleware

import (
	"crypto/subtle"
	"net/http"
)

// Authentication requires the X-API-Key header to carry the configured key
func Authentication(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			given := r.Header.Get("X-API-Key")
			if given == "" || subtle.ConstantTimeCompare([]byte(given), []byte(apiKey)) != 1 {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
