package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/farmerchain/farmerchain/internal/model"
)

// roleTable returns the account table for a marketplace role. Admins
// live in their own table with a different shape and are handled by the
// admin functions below.
func roleTable(role string) (string, error) {
	switch role {
	case model.RoleFarmer:
		return "farmers", nil
	case model.RoleFPO:
		return "fpos", nil
	case model.RoleRetailer:
		return "retailers", nil
	}
	return "", fmt.Errorf("no account table for role %q", role)
}

const accountCols = `id, name, email, password_hash, identity_number, wallet_address, city, state, approval_status, created_at`

func scanAccount(row *sql.Row) (*model.Account, error) {
	a := &model.Account{}
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.IdentityNumber,
		&a.WalletAddress, &a.City, &a.State, &a.ApprovalStatus, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning account: %w", err)
	}
	return a, nil
}

// CreateAccount registers a new account in the given role's table with
// approval_status pending.
func CreateAccount(ctx context.Context, db *sql.DB, role string, a *model.Account) (*model.Account, error) {
	table, err := roleTable(role)
	if err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (name, email, password_hash, identity_number, wallet_address, city, state)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`, table),
		a.Name, a.Email, a.PasswordHash, a.IdentityNumber, a.WalletAddress, a.City, a.State,
	)
	if isUniqueViolation(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s account: %w", role, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting account id: %w", err)
	}
	return GetAccount(ctx, db, role, id)
}

// GetAccount returns an account by ID, or nil if absent.
func GetAccount(ctx context.Context, db *sql.DB, role string, id int64) (*model.Account, error) {
	table, err := roleTable(role)
	if err != nil {
		return nil, err
	}
	row := db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, accountCols, table), id)
	return scanAccount(row)
}

// GetAccountByEmail returns an account by its login email, or nil if
// absent.
func GetAccountByEmail(ctx context.Context, db *sql.DB, role, email string) (*model.Account, error) {
	table, err := roleTable(role)
	if err != nil {
		return nil, err
	}
	row := db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE email = ?`, accountCols, table), email)
	return scanAccount(row)
}

// ListAccounts returns all accounts of a role.
func ListAccounts(ctx context.Context, db *sql.DB, role string) ([]model.Account, error) {
	return listAccounts(ctx, db, role, "")
}

// ListPendingAccounts returns accounts of a role awaiting admin review.
func ListPendingAccounts(ctx context.Context, db *sql.DB, role string) ([]model.Account, error) {
	return listAccounts(ctx, db, role, model.ApprovalPending)
}

func listAccounts(ctx context.Context, db *sql.DB, role, status string) ([]model.Account, error) {
	table, err := roleTable(role)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s`, accountCols, table)
	var args []any
	if status != "" {
		query += ` WHERE approval_status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing %s accounts: %w", role, err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.IdentityNumber,
			&a.WalletAddress, &a.City, &a.State, &a.ApprovalStatus, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// UpdateAccount updates an account's mutable profile fields. Identity
// fields (email, identity number, wallet) are immutable after
// registration.
func UpdateAccount(ctx context.Context, db *sql.DB, role string, id int64, name, city, state string) error {
	table, err := roleTable(role)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET name = ?, city = ?, state = ? WHERE id = ?`, table),
		name, city, state, id,
	)
	if err != nil {
		return fmt.Errorf("updating %s account: %w", role, err)
	}
	return nil
}

// DeleteAccount removes an account. Quotes and bids cascade.
func DeleteAccount(ctx context.Context, db *sql.DB, role string, id int64) error {
	table, err := roleTable(role)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id); err != nil {
		return fmt.Errorf("deleting %s account: %w", role, err)
	}
	return nil
}

// SetApprovalStatus records an admin's approval decision.
func SetApprovalStatus(ctx context.Context, db *sql.DB, role string, id int64, status string) error {
	table, err := roleTable(role)
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET approval_status = ? WHERE id = ?`, table),
		status, id,
	)
	if err != nil {
		return fmt.Errorf("setting approval status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateAdmin creates a platform admin account.
func CreateAdmin(ctx context.Context, db *sql.DB, username, passwordHash, walletAddress string) (*model.Admin, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO admins (username, password_hash, wallet_address) VALUES (?, ?, ?)`,
		username, passwordHash, walletAddress,
	)
	if isUniqueViolation(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("creating admin: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting admin id: %w", err)
	}
	return GetAdmin(ctx, db, id)
}

// GetAdmin returns an admin by ID, or nil if absent.
func GetAdmin(ctx context.Context, db *sql.DB, id int64) (*model.Admin, error) {
	a := &model.Admin{}
	err := db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, wallet_address, created_at FROM admins WHERE id = ?`, id,
	).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.WalletAddress, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting admin: %w", err)
	}
	return a, nil
}

// GetAdminByUsername returns an admin by username, or nil if absent.
func GetAdminByUsername(ctx context.Context, db *sql.DB, username string) (*model.Admin, error) {
	a := &model.Admin{}
	err := db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, wallet_address, created_at FROM admins WHERE username = ?`, username,
	).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.WalletAddress, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting admin by username: %w", err)
	}
	return a, nil
}
