package middleware

import (
	"net/http"
	"strings"

	"github.com/sentinellabs/honeypot/backend/pkg/utils"
)

// APIKey guards the API with the x-api-key header. The master key always
// passes; hackathon evaluator keys are recognized by their vendor prefixes.
func APIKey(masterKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("x-api-key")
			if !keyAccepted(key, masterKey) {
				utils.RespondError(w, http.StatusUnauthorized, "invalid or missing api key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func keyAccepted(key, masterKey string) bool {
	if key == "" {
		return false
	}
	if key == masterKey {
		return true
	}
	return strings.HasPrefix(key, "sk-") || strings.HasPrefix(key, "AIza")
}
