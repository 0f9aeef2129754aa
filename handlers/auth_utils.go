package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/kvit-dev/caleoban/utilities"
)

// TokenVerifier resolves a Firebase ID token to the user's uid.
type TokenVerifier interface {
	VerifyUserToken(ctx context.Context, token string) (string, error)
}

type userUIDKey struct{}

// Auth authenticates requests. With Disabled set, the X-User-ID header names
// the user and no token is checked; this is meant for local runs and tests.
type Auth struct {
	Verifier TokenVerifier
	Disabled bool
}

// AuthMiddleware puts the caller's uid into the request context.
// Websocket clients cannot set headers, so a ?token= query parameter is
// accepted as well.
func (a *Auth) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a.Disabled {
			uid := r.Header.Get("X-User-ID")
			if uid == "" {
				uid = r.URL.Query().Get("userId")
			}
			if uid == "" {
				http.Error(w, "X-User-ID header missing", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserUID(r.Context(), uid)))
			return
		}

		token := bearerToken(r)
		if token == "" {
			utilities.LogError(fmt.Errorf("authorization header missing"), "Authentication failed")
			http.Error(w, "Authorization header missing", http.StatusUnauthorized)
			return
		}
		if a.Verifier == nil {
			http.Error(w, "Authentication is not configured", http.StatusInternalServerError)
			return
		}

		uid, err := a.Verifier.VerifyUserToken(r.Context(), token)
		if err != nil {
			utilities.LogError(err, "Invalid token")
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserUID(r.Context(), uid)))
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return r.URL.Query().Get("token")
}

func WithUserUID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, userUIDKey{}, uid)
}

// UserUID returns the authenticated uid, or "" outside AuthMiddleware.
func UserUID(ctx context.Context) string {
	uid, _ := ctx.Value(userUIDKey{}).(string)
	return uid
}
