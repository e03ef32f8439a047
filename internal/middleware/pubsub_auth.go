package middleware

import (
	"net/http"
	"strings"

	"google.golang.org/api/idtoken"

	"app/internal/logger"
)

// PushAuthMiddleware verifies the OIDC token Google attaches to Pub/Sub push
// requests. An empty audience disables the check, for local development and
// the emulator.
func PushAuthMiddleware(audience, serviceAccountEmail string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if audience == "" {
				next.ServeHTTP(w, r)
				return
			}
			logger := logger.New()
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Error().Msg("Authorization header missing on push request")
				http.Error(w, "Authorization header missing", http.StatusUnauthorized)
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				logger.Error().Msg("Invalid authorization header on push request")
				http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
				return
			}
			payload, err := idtoken.Validate(r.Context(), parts[1], audience)
			if err != nil {
				logger.Error().Msgf("Invalid push token: %+v", err)
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}
			if serviceAccountEmail != "" {
				email, _ := payload.Claims["email"].(string)
				if email != serviceAccountEmail {
					logger.Error().Str("email", email).Msg("Push token from unexpected service account")
					http.Error(w, "Forbidden", http.StatusForbidden)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
