package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"taskapp-backend/internal/apperr"
)

type ctxKey struct{}

// UserLookup reports whether a user id still exists.
type UserLookup func(ctx context.Context, userID int64) (bool, error)

type Middleware struct {
	secret []byte
	lookup UserLookup
}

func New(secret []byte) Middleware {
	return Middleware{secret: secret}
}

// WithLookup makes tokens of deleted users resolve as unauthorized.
func (m Middleware) WithLookup(fn UserLookup) Middleware {
	m.lookup = fn
	return m
}

// Optional resolves the caller without requiring a token. No Authorization
// header means anonymous; a header that does not hold a valid token is 401.
func (m Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if h == "" {
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), Anonymous())))
			return
		}

		id, err := m.resolve(r.Context(), h)
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// Wrap requires an authenticated caller.
func (m Middleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := m.resolve(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		next(w, r.WithContext(WithIdentity(r.Context(), id)))
	}
}

func (m Middleware) resolve(ctx context.Context, header string) (Identity, error) {
	if !strings.HasPrefix(header, "Bearer ") {
		return Identity{}, apperr.ErrUnauthorized
	}
	userID, err := ParseToken(m.secret, strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return Identity{}, apperr.ErrUnauthorized
	}
	if m.lookup != nil {
		ok, err := m.lookup(ctx, userID)
		if err != nil {
			return Identity{}, fmt.Errorf("lookup user %d: %w", userID, err)
		}
		if !ok {
			return Identity{}, apperr.ErrUnauthorized
		}
	}
	return User(userID), nil
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFromContext returns the identity set by the middleware, anonymous if none.
func IdentityFromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(ctxKey{}).(Identity)
	return id
}
