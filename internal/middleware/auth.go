package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// TokenVerifier checks a bearer token and returns the subject it was issued to.
// *service.AuthService satisfies it.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

type actorKey struct{}

// RequireAdmin returns a middleware that rejects requests without a valid
// "Authorization: Bearer <token>" header with 401. The token subject is put
// in the request context; read it back with Actor.
func RequireAdmin(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}
			subject, err := v.Verify(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), actorKey{}, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Actor returns the admin subject stored by RequireAdmin, or "" outside an
// admin route.
func Actor(ctx context.Context) string {
	s, _ := ctx.Value(actorKey{}).(string)
	return s
}

// WithActor returns a copy of ctx carrying subject as the admin actor.
func WithActor(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, actorKey{}, subject)
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// writeError writes the API's standard error body. It mirrors the handler
// package so rejections from middleware look the same to clients.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
