package model

import "time"

// Account represents a marketplace participant: a farmer, an FPO or a
// retailer. All three tiers share the same shape and live in separate
// tables; IdentityNumber holds the tier-specific government identifier
// (Aadhaar for farmers, CIN for FPOs, GSTIN for retailers).
type Account struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	IdentityNumber string    `json:"identity_number"`
	WalletAddress  string    `json:"wallet_address"`
	City           string    `json:"city"`
	State          string    `json:"state"`
	ApprovalStatus string    `json:"approval_status"`
	CreatedAt      time.Time `json:"created_at"`
}

// Admin is the platform operator account. Admins are implicitly approved
// and are never subject to the approval workflow.
type Admin struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	PasswordHash  string    `json:"-"`
	WalletAddress string    `json:"wallet_address"`
	CreatedAt     time.Time `json:"created_at"`
}

// Roles.
const (
	RoleFarmer   = "farmer"
	RoleFPO      = "fpo"
	RoleRetailer = "retailer"
	RoleAdmin    = "admin"
)

// Approval statuses.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// ValidRole reports whether role names one of the four account kinds.
func ValidRole(role string) bool {
	switch role {
	case RoleFarmer, RoleFPO, RoleRetailer, RoleAdmin:
		return true
	}
	return false
}
