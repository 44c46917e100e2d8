package devserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/roadwatch/internal/logging"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const (
	userKey   ctxKey = "user"
	claimsKey ctxKey = "claims"
)

// RequireAuth rejects requests without a valid bearer token and stores the
// resolved user and claims in the request context.
func RequireAuth(svc *Service, logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := middleware.GetReqID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.Warn(ctx, "missing bearer token", "request_id", requestID, "path", r.URL.Path)
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			user, claims, err := svc.Authenticate(ctx, token)
			if err != nil {
				logger.Warn(ctx, "token rejected", "request_id", requestID, "error", err)
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx = context.WithValue(ctx, userKey, user)
			ctx = context.WithValue(ctx, claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger logs one line per request with its outcome.
func RequestLogger(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"request_id", middleware.GetReqID(r.Context()),
				"duration", time.Since(start),
			)
		})
	}
}

func userFrom(ctx context.Context) *User {
	u, _ := ctx.Value(userKey).(*User)
	return u
}

func claimsFrom(ctx context.Context) *Claims {
	c, _ := ctx.Value(claimsKey).(*Claims)
	return c
}
