package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/farmerchain/farmerchain/internal/model"
	"github.com/farmerchain/farmerchain/internal/store"
)

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// AccountsHandler serves the account surface for one marketplace role.
// The same handler is registered three times, once per role.
type AccountsHandler struct {
	DB   *sql.DB
	Role string
}

type registerRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	WalletAddress string `json:"wallet_address"`
	City          string `json:"city"`
	State         string `json:"state"`

	// The government identifier goes by a different name per role, so
	// accept each alias alongside the generic key.
	IdentityNumber string `json:"identity_number"`
	AadhaarNumber  string `json:"aadhaar_number"`
	CIN            string `json:"corporate_identification_number"`
	GSTIN          string `json:"gstin"`
}

func (req *registerRequest) identity() string {
	for _, v := range []string{req.IdentityNumber, req.AadhaarNumber, req.CIN, req.GSTIN} {
		if v != "" {
			return v
		}
	}
	return ""
}

// Register creates a new account in the pending state.
func (h *AccountsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	identity := req.identity()
	if req.Name == "" || req.Email == "" || req.Password == "" || identity == "" || req.WalletAddress == "" {
		jsonError(w, http.StatusBadRequest, "name, email, password, identity number and wallet address are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "hashing password")
		return
	}

	account, err := store.CreateAccount(r.Context(), h.DB, h.Role, &model.Account{
		Name:           req.Name,
		Email:          req.Email,
		PasswordHash:   string(hash),
		IdentityNumber: identity,
		WalletAddress:  req.WalletAddress,
		City:           req.City,
		State:          req.State,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			jsonError(w, http.StatusConflict, "email, identity number or wallet address already registered")
			return
		}
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, map[string]any{
		"message": "registration submitted, awaiting admin approval",
		"account": account,
	})
}

// LoginCheck reports whether an email is registered and where it stands
// in the approval workflow, so the client can show the right screen
// before asking for a password.
func (h *AccountsHandler) LoginCheck(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Email == "" {
		jsonError(w, http.StatusBadRequest, "email is required")
		return
	}

	account, err := store.GetAccountByEmail(r.Context(), h.DB, h.Role, req.Email)
	if err != nil {
		storeError(w, err)
		return
	}
	if account == nil {
		jsonResponse(w, http.StatusNotFound, map[string]any{
			"status":   "not_found",
			"approved": false,
			"message":  "account not found, please register",
		})
		return
	}

	resp := map[string]any{
		"status":   account.ApprovalStatus,
		"approved": account.ApprovalStatus == model.ApprovalApproved,
	}
	switch account.ApprovalStatus {
	case model.ApprovalApproved:
		resp["message"] = "account approved"
	case model.ApprovalRejected:
		resp["message"] = "registration was rejected by the admin"
	default:
		resp["message"] = "registration is pending admin approval"
	}
	jsonResponse(w, http.StatusOK, resp)
}

func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := store.ListAccounts(r.Context(), h.DB, h.Role)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, accounts)
}

func (h *AccountsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	account, err := store.GetAccount(r.Context(), h.DB, h.Role, id)
	if err != nil {
		storeError(w, err)
		return
	}
	if account == nil {
		jsonError(w, http.StatusNotFound, "account not found")
		return
	}
	jsonResponse(w, http.StatusOK, account)
}

// Update changes the mutable profile fields of the caller's own account.
func (h *AccountsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid account id")
		return
	}
	if p := GetPrincipal(r.Context()); p == nil || p.ID != id {
		jsonError(w, http.StatusForbidden, "can only update your own account")
		return
	}

	var req struct {
		Name  string `json:"name"`
		City  string `json:"city"`
		State string `json:"state"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := store.UpdateAccount(r.Context(), h.DB, h.Role, id, req.Name, req.City, req.State); err != nil {
		storeError(w, err)
		return
	}

	account, err := store.GetAccount(r.Context(), h.DB, h.Role, id)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, account)
}

// Delete removes the caller's own account.
func (h *AccountsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid account id")
		return
	}
	if p := GetPrincipal(r.Context()); p == nil || p.ID != id {
		jsonError(w, http.StatusForbidden, "can only delete your own account")
		return
	}

	if err := store.DeleteAccount(r.Context(), h.DB, h.Role, id); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "account deleted"})
}
