package api

import (
	"database/sql"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/farmerchain/farmerchain/internal/auth"
	"github.com/farmerchain/farmerchain/internal/model"
	"github.com/farmerchain/farmerchain/internal/store"
)

// AuthHandler issues and refreshes tokens for all four roles.
type AuthHandler struct {
	DB        *sql.DB
	JWTSecret string
}

type loginRequest struct {
	Role     string `json:"role"`
	Username string `json:"username"` // email for marketplace roles, username for admins
	Password string `json:"password"`
}

type loginResponse struct {
	auth.TokenPair
	Role   string `json:"role"`
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

// Login authenticates a caller by role and credentials. Unknown accounts
// are 404 so the client can steer the user to registration; unapproved
// accounts and bad passwords are 401.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !model.ValidRole(req.Role) {
		jsonError(w, http.StatusBadRequest, "invalid role")
		return
	}
	if req.Username == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	var (
		id           int64
		name         string
		passwordHash string
	)
	if req.Role == model.RoleAdmin {
		admin, err := store.GetAdminByUsername(r.Context(), h.DB, req.Username)
		if err != nil {
			storeError(w, err)
			return
		}
		if admin == nil {
			jsonError(w, http.StatusNotFound, "account not found")
			return
		}
		id, name, passwordHash = admin.ID, admin.Username, admin.PasswordHash
	} else {
		account, err := store.GetAccountByEmail(r.Context(), h.DB, req.Role, req.Username)
		if err != nil {
			storeError(w, err)
			return
		}
		if account == nil {
			jsonError(w, http.StatusNotFound, "account not found")
			return
		}
		if account.ApprovalStatus != model.ApprovalApproved {
			jsonError(w, http.StatusUnauthorized, "account is pending admin approval")
			return
		}
		id, name, passwordHash = account.ID, account.Name, account.PasswordHash
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	pair, err := auth.GenerateTokenPair(h.JWTSecret, id, req.Username, req.Role, name)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "generating tokens")
		return
	}

	jsonResponse(w, http.StatusOK, loginResponse{
		TokenPair: pair,
		Role:      req.Role,
		UserID:    id,
		Name:      name,
	})
}

// Refresh exchanges a valid refresh token for a new token pair.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Refresh == "" {
		jsonError(w, http.StatusBadRequest, "refresh token is required")
		return
	}

	claims, err := auth.ValidateToken(h.JWTSecret, req.Refresh, auth.TokenTypeRefresh)
	if err != nil {
		jsonError(w, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}

	pair, err := auth.GenerateTokenPair(h.JWTSecret, claims.AccountID, claims.Username, claims.Role, claims.Name)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "generating tokens")
		return
	}

	jsonResponse(w, http.StatusOK, pair)
}
