package security

import (
	"net/http"
	"strings"

	logger "github.com/sirupsen/logrus"

	"signalbridge/src/auth"
)

const (
	TokenHeader  = "X-Intake-Token"
	SourceHeader = "X-Signal-Source"
)

// IntakeAuth checks the intake token when tokenHash is set and stores the declared
// source on the request context.
func IntakeAuth(tokenHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if tokenHash != "" {
				if !VerifyToken(tokenHash, r.Header.Get(TokenHeader)) {
					logger.WithField("remote", r.RemoteAddr).Warn("intake request with invalid token")
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
				ctx = auth.WithAuthenticated(ctx)
			}

			if source := strings.TrimSpace(r.Header.Get(SourceHeader)); source != "" {
				ctx = auth.WithSource(ctx, source)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
