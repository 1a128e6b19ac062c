package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/farmerchain/farmerchain/internal/auth"
	"github.com/farmerchain/farmerchain/internal/model"
	"github.com/farmerchain/farmerchain/internal/store"
)

type contextKey string

const principalKey contextKey = "principal"

// GetPrincipal returns the authenticated principal stored by
// AuthMiddleware, or nil if the request is unauthenticated.
func GetPrincipal(ctx context.Context) *auth.Principal {
	p, _ := ctx.Value(principalKey).(*auth.Principal)
	return p
}

// AuthMiddleware validates the Bearer token and stores the caller's
// principal in the request context.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				jsonError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				jsonError(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}

			claims, err := auth.ValidateToken(secret, tokenStr, auth.TokenTypeAccess)
			if err != nil {
				jsonError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			principal := claims.Principal()
			ctx := context.WithValue(r.Context(), principalKey, &principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a handler to one role and re-checks approval on
// every request, so a rejected account loses access even while its
// token is still valid. Admins carry no approval state.
func RequireRole(db *sql.DB, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := GetPrincipal(r.Context())
			if p == nil {
				jsonError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if p.Role != role {
				jsonError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			if role == model.RoleAdmin {
				admin, err := store.GetAdmin(r.Context(), db, p.ID)
				if err != nil {
					storeError(w, err)
					return
				}
				if admin == nil {
					jsonError(w, http.StatusUnauthorized, "account no longer exists")
					return
				}
			} else {
				account, err := store.GetAccount(r.Context(), db, role, p.ID)
				if err != nil {
					storeError(w, err)
					return
				}
				if account == nil {
					jsonError(w, http.StatusUnauthorized, "account no longer exists")
					return
				}
				if account.ApprovalStatus != model.ApprovalApproved {
					jsonError(w, http.StatusForbidden, "account is not approved")
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth gates a handler to any authenticated principal without a
// role restriction. Non-admin callers still must be approved.
func RequireAuth(db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := GetPrincipal(r.Context())
			if p == nil {
				jsonError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if p.Role != model.RoleAdmin {
				account, err := store.GetAccount(r.Context(), db, p.Role, p.ID)
				if err != nil {
					storeError(w, err)
					return
				}
				if account == nil || account.ApprovalStatus != model.ApprovalApproved {
					jsonError(w, http.StatusForbidden, "account is not approved")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoggingMiddleware logs each request with its duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
