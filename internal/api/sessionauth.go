package api

import (
	"net/http"
	"strings"
	"time"

	"barangayops/internal/identity"
	"barangayops/pkg/config"
)

// SessionAuth validates bearer session tokens and attaches the actor to the
// request context.
//
// Expected header:
// - Authorization: Bearer <JWT>
//
// In dev, if Authorization is missing, it falls back to X-Actor-Role /
// X-Subject-ID headers to keep local testing simple.
func SessionAuth(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := strings.TrimSpace(r.Header.Get("Authorization"))
			if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				token := strings.TrimSpace(authz[7:])
				actor, err := identity.VerifySessionToken(token, cfg.SessionSecret, time.Now())
				if err != nil {
					WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid session token")
					return
				}
				next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
				return
			}

			// Dev fallback
			if cfg.AppEnv != "prod" {
				if roleHeader := strings.TrimSpace(r.Header.Get("X-Actor-Role")); roleHeader != "" {
					role, err := identity.ParseRole(roleHeader)
					if err != nil {
						WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unknown role")
						return
					}
					actor := &identity.Actor{
						ID:        strings.TrimSpace(r.Header.Get("X-Actor-ID")),
						Role:      role,
						SubjectID: strings.TrimSpace(r.Header.Get("X-Subject-ID")),
					}
					if actor.ID == "" {
						actor.ID = "dev"
					}
					if role == identity.RoleResident && actor.SubjectID == "" {
						WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "resident requires X-Subject-ID")
						return
					}
					next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
					return
				}
			}

			WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session token")
		})
	}
}

// RequireRoles guards a subtree to the given roles.
func RequireRoles(roles ...identity.Role) func(http.Handler) http.Handler {
	allowed := make(map[identity.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a := ActorFromContext(r.Context())
			if a == nil {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor")
				return
			}
			if !allowed[a.Role] {
				WriteError(w, http.StatusForbidden, "FORBIDDEN", "you are not allowed to do this")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
