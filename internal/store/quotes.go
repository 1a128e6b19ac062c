package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/farmerchain/farmerchain/internal/model"
)

// CreateQuote inserts a new quote request for a tier. Quotes always
// start open; status transitions happen only through AcceptBid.
func CreateQuote(ctx context.Context, db *sql.DB, tier model.Tier, q *model.QuoteRequest) (*model.QuoteRequest, error) {
	t := tables(tier)

	result, err := db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (%s, product_name, category, description, deadline, quantity, unit)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`, t.quoteTable, t.quoteOwner),
		q.OwnerID, q.ProductName, q.Category, q.Description, q.Deadline, q.Quantity, q.Unit,
	)
	if err != nil {
		return nil, fmt.Errorf("creating quote: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting quote id: %w", err)
	}
	return GetQuote(ctx, db, tier, id)
}

// GetQuote returns a quote by ID with the owner name joined, or nil if
// absent.
func GetQuote(ctx context.Context, db *sql.DB, tier model.Tier, id int64) (*model.QuoteRequest, error) {
	t := tables(tier)

	q := &model.QuoteRequest{}
	err := db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT q.id, q.%s, q.product_name, q.category, q.description, q.deadline,
		        q.quantity, q.unit, q.status, q.accepted_bid_id, q.created_at, o.name
		 FROM %s q JOIN %s o ON o.id = q.%s
		 WHERE q.id = ?`, t.quoteOwner, t.quoteTable, t.ownerTable, t.quoteOwner), id,
	).Scan(&q.ID, &q.OwnerID, &q.ProductName, &q.Category, &q.Description, &q.Deadline,
		&q.Quantity, &q.Unit, &q.Status, &q.AcceptedBidID, &q.CreatedAt, &q.OwnerName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting quote: %w", err)
	}
	return q, nil
}

// ListOwnerQuotes returns every quote owned by an account, any status.
func ListOwnerQuotes(ctx context.Context, db *sql.DB, tier model.Tier, ownerID int64) ([]model.QuoteRequest, error) {
	t := tables(tier)
	return listQuotes(ctx, db, t,
		fmt.Sprintf(`WHERE q.%s = ?`, t.quoteOwner), ownerID)
}

// ListOpenQuotes returns quotes still open for bidding, for the
// downstream tier's bidders to browse.
func ListOpenQuotes(ctx context.Context, db *sql.DB, tier model.Tier) ([]model.QuoteRequest, error) {
	return listQuotes(ctx, db, tables(tier), `WHERE q.status = ?`, model.QuoteOpen)
}

func listQuotes(ctx context.Context, db *sql.DB, t tierTables, filter string, args ...any) ([]model.QuoteRequest, error) {
	query := fmt.Sprintf(`SELECT q.id, q.%s, q.product_name, q.category, q.description, q.deadline,
	        q.quantity, q.unit, q.status, q.accepted_bid_id, q.created_at, o.name
	 FROM %s q JOIN %s o ON o.id = q.%s
	 %s ORDER BY q.deadline DESC`, t.quoteOwner, t.quoteTable, t.ownerTable, t.quoteOwner, filter)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing quotes: %w", err)
	}
	defer rows.Close()

	var quotes []model.QuoteRequest
	for rows.Next() {
		var q model.QuoteRequest
		if err := rows.Scan(&q.ID, &q.OwnerID, &q.ProductName, &q.Category, &q.Description, &q.Deadline,
			&q.Quantity, &q.Unit, &q.Status, &q.AcceptedBidID, &q.CreatedAt, &q.OwnerName); err != nil {
			return nil, fmt.Errorf("scanning quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

// UpdateQuote updates a quote's descriptive fields. Status and the
// accepted bid are never touched here.
func UpdateQuote(ctx context.Context, db *sql.DB, tier model.Tier, q *model.QuoteRequest) error {
	t := tables(tier)

	result, err := db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET product_name = ?, category = ?, description = ?,
		 deadline = ?, quantity = ?, unit = ? WHERE id = ?`, t.quoteTable),
		q.ProductName, q.Category, q.Description, q.Deadline, q.Quantity, q.Unit, q.ID,
	)
	if err != nil {
		return fmt.Errorf("updating quote: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteQuote removes a quote. Its bids cascade.
func DeleteQuote(ctx context.Context, db *sql.DB, tier model.Tier, id int64) error {
	t := tables(tier)
	result, err := db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, t.quoteTable), id)
	if err != nil {
		return fmt.Errorf("deleting quote: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
