// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/boardnight/auth"
)

type contextKey int

const callerKey contextKey = iota

// WithSession resolves the registered caller from an Authorization bearer
// token. Requests without the header pass through anonymously; a header
// with a bad token is rejected.
func WithSession(verifier *auth.SessionVerifier, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next(w, r)
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			ErrorResponse(w, http.StatusUnauthorized, "Invalid authorization header")
			return
		}

		userID, err := verifier.Verify(token)
		if err != nil {
			slog.Warn("session rejected", "path", r.URL.Path, "error", err)
			ErrorResponse(w, http.StatusUnauthorized, "Invalid session")
			return
		}

		next(w, r.WithContext(ContextWithCaller(r.Context(), userID)))
	}
}

// ContextWithCaller attaches a registered user ID to ctx
func ContextWithCaller(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, callerKey, userID)
}

// CallerID returns the registered user behind the request, or ""
func CallerID(r *http.Request) string {
	userID, _ := r.Context().Value(callerKey).(string)
	return userID
}
