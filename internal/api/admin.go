package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/farmerchain/farmerchain/internal/mail"
	"github.com/farmerchain/farmerchain/internal/model"
	"github.com/farmerchain/farmerchain/internal/store"
)

// AdminHandler serves admin registration and the approval workflow.
type AdminHandler struct {
	DB     *sql.DB
	Mailer *mail.Mailer
}

// Register creates an admin account.
func (h *AdminHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username      string `json:"username"`
		Password      string `json:"password"`
		WalletAddress string `json:"wallet_address"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" || req.WalletAddress == "" {
		jsonError(w, http.StatusBadRequest, "username, password and wallet address are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "hashing password")
		return
	}

	admin, err := store.CreateAdmin(r.Context(), h.DB, req.Username, string(hash), req.WalletAddress)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			jsonError(w, http.StatusConflict, "username or wallet address already registered")
			return
		}
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, admin)
}

// LoginCheck reports whether an admin username exists.
func (h *AdminHandler) LoginCheck(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Username == "" {
		jsonError(w, http.StatusBadRequest, "username is required")
		return
	}

	admin, err := store.GetAdminByUsername(r.Context(), h.DB, req.Username)
	if err != nil {
		storeError(w, err)
		return
	}
	if admin == nil {
		jsonResponse(w, http.StatusNotFound, map[string]any{
			"status":  "not_found",
			"message": "admin account not found",
		})
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"status":  "found",
		"message": "admin account exists",
	})
}

// PendingRegistrations lists all accounts awaiting a decision, grouped
// by role.
func (h *AdminHandler) PendingRegistrations(w http.ResponseWriter, r *http.Request) {
	out := map[string][]model.Account{}
	for _, role := range []string{model.RoleFarmer, model.RoleFPO, model.RoleRetailer} {
		accounts, err := store.ListPendingAccounts(r.Context(), h.DB, role)
		if err != nil {
			storeError(w, err)
			return
		}
		out[role+"s"] = accounts
	}
	jsonResponse(w, http.StatusOK, out)
}

// Decision returns a handler that approves or rejects the {id} account
// of the given role and notifies it by email.
func (h *AdminHandler) Decision(role, status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid account id")
			return
		}

		if err := store.SetApprovalStatus(r.Context(), h.DB, role, id, status); err != nil {
			storeError(w, err)
			return
		}

		if account, err := store.GetAccount(r.Context(), h.DB, role, id); err == nil && account != nil {
			verb := "approved"
			if status == model.ApprovalRejected {
				verb = "rejected"
			}
			body := fmt.Sprintf("Hi %s,\n\nYour registration has been %s.\n", account.Name, verb)
			h.Mailer.SendAsync("Registration "+verb, account.Email, body)
		}

		jsonResponse(w, http.StatusOK, map[string]string{
			"message": fmt.Sprintf("%s %d marked %s", role, id, status),
		})
	}
}
