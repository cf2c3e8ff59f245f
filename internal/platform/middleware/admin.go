package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "formation/pkg/domain-errors"
	"formation/pkg/platform/httputil"
	"formation/pkg/requestcontext"
)

// AdminTokenValidator validates a bearer token for the admin API.
type AdminTokenValidator interface {
	ValidateToken(tokenString string) (*AdminClaims, error)
}

// AdminClaims is what the admin routes need from a validated token.
type AdminClaims struct {
	Subject string
	TokenID string
}

// RequireAdmin rejects requests without a valid admin bearer token and puts
// the token subject into the request context.
func RequireAdmin(validator AdminTokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				logger.WarnContext(ctx, "unauthorized admin access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(strings.TrimSpace(token))
			if err != nil {
				logger.WarnContext(ctx, "unauthorized admin access - invalid token",
					"request_id", requestID,
					"error", err,
				)
				if !dErrors.HasCode(err, dErrors.CodeForbidden) {
					err = dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token")
				}
				httputil.WriteError(w, err)
				return
			}

			ctx = requestcontext.WithAdminSubject(ctx, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
