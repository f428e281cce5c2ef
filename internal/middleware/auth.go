package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const bearerTokenKey contextKey = "bearerToken"

// BearerToken stashes the request's bearer credential in the context without
// validating it. Absence of a token is tolerated at this layer; downstream
// collaborators decide what an empty credential means.
func BearerToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer"))
		ctx := context.WithValue(r.Context(), bearerTokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TokenFromContext returns the bearer credential captured by BearerToken,
// empty when none was sent.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(bearerTokenKey).(string)
	return token
}
