package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/farmerchain/farmerchain/internal/model"
)

// AcceptBid awards a quote to one bid: the bid becomes accepted, the
// quote becomes awarded with the bid recorded as its accepted bid, and
// every sibling bid is rejected. All of it commits or none of it does.
//
// This is the single award path; the per-quote accept endpoint and the
// negotiation accept both resolve through it.
func AcceptBid(ctx context.Context, db *sql.DB, tier model.Tier, quoteID, bidID int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := acceptBidTx(ctx, tx, tables(tier), quoteID, bidID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing award: %w", err)
	}
	return nil
}

// acceptBidTx runs the award state machine inside an existing
// transaction. The quote update is conditional on status still being
// open, so of two racing awards exactly one sees its row change; the
// loser gets ErrQuoteNotOpen and its bid update rolls back with the
// transaction.
func acceptBidTx(ctx context.Context, tx *sql.Tx, t tierTables, quoteID, bidID int64) error {
	var status string
	err := tx.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT status FROM %s WHERE id = ?`, t.quoteTable), quoteID,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checking quote status: %w", err)
	}
	if status != model.QuoteOpen {
		return ErrQuoteNotOpen
	}

	var exists int64
	err = tx.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT id FROM %s WHERE id = ? AND quote_id = ?`, t.bidTable), bidID, quoteID,
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checking bid: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET status = ? WHERE id = ?`, t.bidTable),
		model.BidAccepted, bidID,
	); err != nil {
		return fmt.Errorf("accepting bid: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET status = ?, accepted_bid_id = ? WHERE id = ? AND status = ?`, t.quoteTable),
		model.QuoteAwarded, bidID, quoteID, model.QuoteOpen,
	)
	if err != nil {
		return fmt.Errorf("awarding quote: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		// Lost a race after the initial status read.
		return ErrQuoteNotOpen
	}

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET status = ? WHERE quote_id = ? AND id <> ?`, t.bidTable),
		model.BidRejected, quoteID, bidID,
	); err != nil {
		return fmt.Errorf("rejecting sibling bids: %w", err)
	}

	return nil
}
