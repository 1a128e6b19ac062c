package store

import (
	"context"
	"errors"
	"testing"

	"github.com/farmerchain/farmerchain/internal/model"
)

func TestCreateAndGetAccount(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	created, err := CreateAccount(ctx, database, model.RoleFarmer, &model.Account{
		Name:           "Asha",
		Email:          "asha@example.com",
		PasswordHash:   "hash",
		IdentityNumber: "AAD-1",
		WalletAddress:  "0xabc",
	})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if created.ApprovalStatus != model.ApprovalPending {
		t.Errorf("expected new account pending, got %q", created.ApprovalStatus)
	}

	got, err := GetAccountByEmail(ctx, database, model.RoleFarmer, "asha@example.com")
	if err != nil {
		t.Fatalf("GetAccountByEmail: %v", err)
	}
	if got == nil || got.ID != created.ID {
		t.Fatalf("expected account %d, got %+v", created.ID, got)
	}

	// Same email in another role's table is fine.
	if _, err := CreateAccount(ctx, database, model.RoleFPO, &model.Account{
		Name: "Asha Collective", Email: "asha@example.com",
		PasswordHash: "hash", IdentityNumber: "CIN-1", WalletAddress: "0xdef",
	}); err != nil {
		t.Errorf("same email in different role should be allowed: %v", err)
	}
}

func TestCreateAccountDuplicateEmail(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	a := seedAccount(t, database, model.RoleRetailer)

	_, err := CreateAccount(ctx, database, model.RoleRetailer, &model.Account{
		Name: "Other", Email: a.Email,
		PasswordHash: "hash", IdentityNumber: "GST-999", WalletAddress: "0x999",
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate email, got %v", err)
	}
}

func TestApprovalWorkflow(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	a, err := CreateAccount(ctx, database, model.RoleFarmer, &model.Account{
		Name: "Pending", Email: "pending@example.com",
		PasswordHash: "hash", IdentityNumber: "AAD-2", WalletAddress: "0x2",
	})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	pending, err := ListPendingAccounts(ctx, database, model.RoleFarmer)
	if err != nil {
		t.Fatalf("ListPendingAccounts: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != a.ID {
		t.Fatalf("expected 1 pending account, got %+v", pending)
	}

	if err := SetApprovalStatus(ctx, database, model.RoleFarmer, a.ID, model.ApprovalApproved); err != nil {
		t.Fatalf("SetApprovalStatus: %v", err)
	}

	got, _ := GetAccount(ctx, database, model.RoleFarmer, a.ID)
	if got.ApprovalStatus != model.ApprovalApproved {
		t.Errorf("expected approved, got %q", got.ApprovalStatus)
	}

	pending, _ = ListPendingAccounts(ctx, database, model.RoleFarmer)
	if len(pending) != 0 {
		t.Errorf("expected no pending accounts, got %d", len(pending))
	}

	if err := SetApprovalStatus(ctx, database, model.RoleFarmer, 9999, model.ApprovalRejected); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing account, got %v", err)
	}
}

func TestUpdateAccountKeepsIdentity(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	a := seedAccount(t, database, model.RoleFPO)

	if err := UpdateAccount(ctx, database, model.RoleFPO, a.ID, "New Name", "Nashik", "Maharashtra"); err != nil {
		t.Fatalf("UpdateAccount: %v", err)
	}

	got, _ := GetAccount(ctx, database, model.RoleFPO, a.ID)
	if got.Name != "New Name" || got.City != "Nashik" {
		t.Errorf("profile fields not updated: %+v", got)
	}
	if got.Email != a.Email || got.IdentityNumber != a.IdentityNumber {
		t.Errorf("immutable fields changed: %+v", got)
	}
}

func TestDeleteAccount(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	a := seedAccount(t, database, model.RoleFarmer)
	if err := DeleteAccount(ctx, database, model.RoleFarmer, a.ID); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}

	got, err := GetAccount(ctx, database, model.RoleFarmer, a.ID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if got != nil {
		t.Errorf("expected account gone, got %+v", got)
	}
}

func TestAdminAccounts(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	admin, err := CreateAdmin(ctx, database, "root", "hash", "0xadmin")
	if err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}

	got, err := GetAdminByUsername(ctx, database, "root")
	if err != nil {
		t.Fatalf("GetAdminByUsername: %v", err)
	}
	if got == nil || got.ID != admin.ID {
		t.Fatalf("expected admin %d, got %+v", admin.ID, got)
	}

	if _, err := CreateAdmin(ctx, database, "root", "hash2", "0xother"); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate username, got %v", err)
	}
}
