package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/farmerchain/farmerchain/internal/model"
)

// SubmitBid records a bid against an open quote. The open check and the
// insert run in one transaction so a quote cannot be awarded between
// them. Returns ErrQuoteNotOpen for a non-open quote and ErrDuplicateBid
// on tiers that reject repeat bidders.
func SubmitBid(ctx context.Context, db *sql.DB, tier model.Tier, b *model.Bid) (*model.Bid, error) {
	t := tables(tier)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT status FROM %s WHERE id = ?`, t.quoteTable), b.QuoteID,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("checking quote status: %w", err)
	}
	if status != model.QuoteOpen {
		return nil, ErrQuoteNotOpen
	}

	if t.uniqueBidder {
		var count int
		err = tx.QueryRowContext(ctx,
			fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE quote_id = ? AND %s = ?`, t.bidTable, t.bidBidder),
			b.QuoteID, b.BidderID,
		).Scan(&count)
		if err != nil {
			return nil, fmt.Errorf("checking for existing bid: %w", err)
		}
		if count > 0 {
			return nil, ErrDuplicateBid
		}
	}

	result, err := tx.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (%s, quote_id, bid_amount, delivery_time_days, comments, transport_mode, vehicle_type)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`, t.bidTable, t.bidBidder),
		b.BidderID, b.QuoteID, b.BidAmount, b.DeliveryTimeDays, b.Comments, b.TransportMode, nullIfEmpty(b.VehicleType),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting bid: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing bid: %w", err)
	}

	id, _ := result.LastInsertId()
	return GetBid(ctx, db, tier, id)
}

// GetBid returns a bid by ID with bidder and product names joined, or
// nil if absent.
func GetBid(ctx context.Context, db *sql.DB, tier model.Tier, id int64) (*model.Bid, error) {
	t := tables(tier)

	b := &model.Bid{}
	var vehicleType sql.NullString
	err := db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT b.id, b.%s, b.quote_id, b.bid_amount, b.delivery_time_days, b.comments,
		        b.transport_mode, b.vehicle_type, b.status, b.submitted_at, o.name, q.product_name
		 FROM %s b
		 JOIN %s o ON o.id = b.%s
		 JOIN %s q ON q.id = b.quote_id
		 WHERE b.id = ?`, t.bidBidder, t.bidTable, t.bidderTable, t.bidBidder, t.quoteTable), id,
	).Scan(&b.ID, &b.BidderID, &b.QuoteID, &b.BidAmount, &b.DeliveryTimeDays, &b.Comments,
		&b.TransportMode, &vehicleType, &b.Status, &b.SubmittedAt, &b.BidderName, &b.ProductName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting bid: %w", err)
	}
	b.VehicleType = vehicleType.String
	return b, nil
}

// ListQuoteBids returns every bid submitted against a quote, newest
// first.
func ListQuoteBids(ctx context.Context, db *sql.DB, tier model.Tier, quoteID int64) ([]model.Bid, error) {
	t := tables(tier)
	return listBids(ctx, db, t, `WHERE b.quote_id = ?`, quoteID)
}

// ListBidderBids returns every bid an account has placed, newest first.
func ListBidderBids(ctx context.Context, db *sql.DB, tier model.Tier, bidderID int64) ([]model.Bid, error) {
	t := tables(tier)
	return listBids(ctx, db, t, fmt.Sprintf(`WHERE b.%s = ?`, t.bidBidder), bidderID)
}

func listBids(ctx context.Context, db *sql.DB, t tierTables, filter string, args ...any) ([]model.Bid, error) {
	query := fmt.Sprintf(`SELECT b.id, b.%s, b.quote_id, b.bid_amount, b.delivery_time_days, b.comments,
	        b.transport_mode, b.vehicle_type, b.status, b.submitted_at, o.name, q.product_name
	 FROM %s b
	 JOIN %s o ON o.id = b.%s
	 JOIN %s q ON q.id = b.quote_id
	 %s ORDER BY b.submitted_at DESC`, t.bidBidder, t.bidTable, t.bidderTable, t.bidBidder, t.quoteTable, filter)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing bids: %w", err)
	}
	defer rows.Close()

	var bids []model.Bid
	for rows.Next() {
		var b model.Bid
		var vehicleType sql.NullString
		if err := rows.Scan(&b.ID, &b.BidderID, &b.QuoteID, &b.BidAmount, &b.DeliveryTimeDays, &b.Comments,
			&b.TransportMode, &vehicleType, &b.Status, &b.SubmittedAt, &b.BidderName, &b.ProductName); err != nil {
			return nil, fmt.Errorf("scanning bid: %w", err)
		}
		b.VehicleType = vehicleType.String
		bids = append(bids, b)
	}
	return bids, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
