package api

import (
	"encoding/json"
	"net/http"
	"time"

	"barangayops/internal/identity"
	"barangayops/pkg/config"
)

type devSessionRequest struct {
	Role      string `json:"role"`
	ActorID   string `json:"actorId"`
	SubjectID string `json:"subjectId"`
}

// DevSession mints a session token for local testing. Disabled in prod;
// real deployments sit behind the municipal SSO that issues these tokens.
func DevSession(cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.AppEnv == "prod" {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "not found")
			return
		}

		var req devSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
			return
		}
		role, err := identity.ParseRole(req.Role)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "unknown role")
			return
		}
		if req.ActorID == "" {
			req.ActorID = "dev"
		}
		actor := identity.Actor{ID: req.ActorID, Role: role, SubjectID: req.SubjectID}
		if (role == identity.RoleResident || role == identity.RoleDriver) && actor.SubjectID == "" {
			WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "subjectId is required for resident and driver sessions")
			return
		}

		ttl := time.Duration(cfg.SessionTTLMinutes) * time.Minute
		token, err := identity.SignSessionToken(actor, cfg.SessionSecret, ttl, time.Now())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{
			"token":     token,
			"expiresIn": int(ttl.Seconds()),
		})
	}
}
