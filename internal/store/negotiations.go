package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/farmerchain/farmerchain/internal/model"
)

// Participants are the two sides of a negotiation, resolved from the
// referenced bid's ownership chain.
type Participants struct {
	QuoteID  int64
	OwnerID  int64 // quote owner (farmer or FPO, by bid kind)
	BidderID int64 // bid author (FPO or retailer, by bid kind)
}

// CreateNegotiation opens a thread over a bid. Only one active thread
// may exist per bid; a terminal thread does not block a new one.
func CreateNegotiation(ctx context.Context, db *sql.DB, ref model.BidRef) (*model.Negotiation, error) {
	t := tables(ref.Kind.Tier())

	var exists int64
	err := db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT id FROM %s WHERE id = ?`, t.bidTable), ref.ID,
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("checking bid: %w", err)
	}

	var active int
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM negotiations WHERE bid_kind = ? AND bid_id = ? AND status = ?`,
		ref.Kind, ref.ID, model.NegotiationActive,
	).Scan(&active)
	if err != nil {
		return nil, fmt.Errorf("checking for active negotiation: %w", err)
	}
	if active > 0 {
		return nil, ErrConflict
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO negotiations (bid_kind, bid_id) VALUES (?, ?)`, ref.Kind, ref.ID)
	if err != nil {
		return nil, fmt.Errorf("creating negotiation: %w", err)
	}

	id, _ := result.LastInsertId()
	return GetNegotiation(ctx, db, id)
}

// GetNegotiation returns a negotiation with its bid detail and ordered
// messages, or nil if absent.
func GetNegotiation(ctx context.Context, db *sql.DB, id int64) (*model.Negotiation, error) {
	n := &model.Negotiation{}
	err := db.QueryRowContext(ctx,
		`SELECT id, bid_kind, bid_id, status, created_at FROM negotiations WHERE id = ?`, id,
	).Scan(&n.ID, &n.Bid.Kind, &n.Bid.ID, &n.Status, &n.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting negotiation: %w", err)
	}

	bid, err := GetBid(ctx, db, n.Bid.Kind.Tier(), n.Bid.ID)
	if err != nil {
		return nil, err
	}
	n.BidDetail = bid

	msgs, err := ListMessages(ctx, db, n.ID)
	if err != nil {
		return nil, err
	}
	n.Messages = msgs

	return n, nil
}

// ResolveParticipants walks a bid reference to its quote and returns
// both counterparties. Dispatch happens on the kind tag once, here.
func ResolveParticipants(ctx context.Context, db *sql.DB, ref model.BidRef) (Participants, error) {
	t := tables(ref.Kind.Tier())

	var p Participants
	err := db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT q.id, q.%s, b.%s
		 FROM %s b JOIN %s q ON q.id = b.quote_id
		 WHERE b.id = ?`, t.quoteOwner, t.bidBidder, t.bidTable, t.quoteTable), ref.ID,
	).Scan(&p.QuoteID, &p.OwnerID, &p.BidderID)
	if err == sql.ErrNoRows {
		return Participants{}, ErrNotFound
	}
	if err != nil {
		return Participants{}, fmt.Errorf("resolving negotiation participants: %w", err)
	}
	return p, nil
}

// IsParticipant reports whether the caller is the bidder or the quote
// owner on the negotiation's bid.
func IsParticipant(ctx context.Context, db *sql.DB, ref model.BidRef, role string, accountID int64) (bool, error) {
	p, err := ResolveParticipants(ctx, db, ref)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	switch role {
	case ref.Kind.OwnerRole():
		return accountID == p.OwnerID, nil
	case ref.Kind.BidderRole():
		return accountID == p.BidderID, nil
	}
	return false, nil
}

// ListNegotiations returns every negotiation the account participates
// in, as bidder or as quote owner, across both bid variants. Admins see
// all negotiations.
func ListNegotiations(ctx context.Context, db *sql.DB, role string, accountID int64) ([]model.Negotiation, error) {
	if role == model.RoleAdmin {
		return listAllNegotiations(ctx, db)
	}

	type filter struct {
		kind  model.BidKind
		where string
	}

	var filters []filter
	switch role {
	case model.RoleFarmer:
		filters = []filter{{model.BidKindFPO, "q.farmer_id = ?"}}
	case model.RoleFPO:
		filters = []filter{
			{model.BidKindFPO, "b.fpo_id = ?"},
			{model.BidKindRetailer, "q.fpo_id = ?"},
		}
	case model.RoleRetailer:
		filters = []filter{{model.BidKindRetailer, "b.retailer_id = ?"}}
	default:
		return nil, nil
	}

	var negotiations []model.Negotiation
	for _, f := range filters {
		t := tables(f.kind.Tier())
		query := fmt.Sprintf(`SELECT n.id, n.bid_kind, n.bid_id, n.status, n.created_at
		 FROM negotiations n
		 JOIN %s b ON n.bid_id = b.id
		 JOIN %s q ON q.id = b.quote_id
		 WHERE n.bid_kind = ? AND %s
		 ORDER BY n.created_at DESC`, t.bidTable, t.quoteTable, f.where)

		rows, err := db.QueryContext(ctx, query, f.kind, accountID)
		if err != nil {
			return nil, fmt.Errorf("listing negotiations: %w", err)
		}
		for rows.Next() {
			var n model.Negotiation
			if err := rows.Scan(&n.ID, &n.Bid.Kind, &n.Bid.ID, &n.Status, &n.CreatedAt); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning negotiation: %w", err)
			}
			negotiations = append(negotiations, n)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	return negotiations, nil
}

func listAllNegotiations(ctx context.Context, db *sql.DB) ([]model.Negotiation, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, bid_kind, bid_id, status, created_at FROM negotiations ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing negotiations: %w", err)
	}
	defer rows.Close()

	var negotiations []model.Negotiation
	for rows.Next() {
		var n model.Negotiation
		if err := rows.Scan(&n.ID, &n.Bid.Kind, &n.Bid.ID, &n.Status, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning negotiation: %w", err)
		}
		negotiations = append(negotiations, n)
	}
	return negotiations, rows.Err()
}

// AddMessage appends a message to an active negotiation. The active
// check and the insert share a transaction so a message can never land
// on a thread that just turned terminal.
func AddMessage(ctx context.Context, db *sql.DB, negotiationID int64, m *model.NegotiationMessage) (*model.NegotiationMessage, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM negotiations WHERE id = ?`, negotiationID).Scan(&status)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("checking negotiation status: %w", err)
	}
	if status != model.NegotiationActive {
		return nil, ErrNegotiationClosed
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO negotiation_messages (negotiation_id, sender_role, sender_id, sender_name, message, counter_amount)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		negotiationID, m.SenderRole, m.SenderID, m.SenderName, m.Message, m.CounterAmount,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing message: %w", err)
	}

	id, _ := result.LastInsertId()
	return getMessage(ctx, db, id)
}

func getMessage(ctx context.Context, db *sql.DB, id int64) (*model.NegotiationMessage, error) {
	m := &model.NegotiationMessage{}
	err := db.QueryRowContext(ctx,
		`SELECT id, negotiation_id, sender_role, sender_id, sender_name, message, counter_amount, created_at
		 FROM negotiation_messages WHERE id = ?`, id,
	).Scan(&m.ID, &m.NegotiationID, &m.SenderRole, &m.SenderID, &m.SenderName, &m.Message, &m.CounterAmount, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting message: %w", err)
	}
	return m, nil
}

// ListMessages returns a negotiation's messages oldest first.
func ListMessages(ctx context.Context, db *sql.DB, negotiationID int64) ([]model.NegotiationMessage, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, negotiation_id, sender_role, sender_id, sender_name, message, counter_amount, created_at
		 FROM negotiation_messages WHERE negotiation_id = ? ORDER BY created_at, id`, negotiationID)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var msgs []model.NegotiationMessage
	for rows.Next() {
		var m model.NegotiationMessage
		if err := rows.Scan(&m.ID, &m.NegotiationID, &m.SenderRole, &m.SenderID, &m.SenderName,
			&m.Message, &m.CounterAmount, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// AcceptNegotiation settles a negotiation in the bidder's favor. Only
// the quote owner may accept. The award (bid accepted, quote awarded,
// siblings rejected) and the negotiation transition commit together.
func AcceptNegotiation(ctx context.Context, db *sql.DB, negotiationID int64, callerRole string, callerID int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	ref, status, err := getNegotiationTx(ctx, tx, negotiationID)
	if err != nil {
		return err
	}
	if status != model.NegotiationActive {
		return ErrNegotiationClosed
	}

	t := tables(ref.Kind.Tier())

	var quoteID, ownerID int64
	err = tx.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT q.id, q.%s FROM %s b JOIN %s q ON q.id = b.quote_id WHERE b.id = ?`,
			t.quoteOwner, t.bidTable, t.quoteTable), ref.ID,
	).Scan(&quoteID, &ownerID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("resolving quote owner: %w", err)
	}

	if callerRole != ref.Kind.OwnerRole() || callerID != ownerID {
		return ErrNotOwner
	}

	if err := acceptBidTx(ctx, tx, t, quoteID, ref.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE negotiations SET status = ? WHERE id = ?`,
		model.NegotiationAccepted, negotiationID,
	); err != nil {
		return fmt.Errorf("closing negotiation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing negotiation accept: %w", err)
	}
	return nil
}

// RejectNegotiation ends a negotiation and rejects its bid. Either
// participant may reject; the caller's participation is checked at the
// handler via IsParticipant.
func RejectNegotiation(ctx context.Context, db *sql.DB, negotiationID int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	ref, status, err := getNegotiationTx(ctx, tx, negotiationID)
	if err != nil {
		return err
	}
	if status != model.NegotiationActive {
		return ErrNegotiationClosed
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE negotiations SET status = ? WHERE id = ?`,
		model.NegotiationRejected, negotiationID,
	); err != nil {
		return fmt.Errorf("rejecting negotiation: %w", err)
	}

	t := tables(ref.Kind.Tier())
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET status = ? WHERE id = ?`, t.bidTable),
		model.BidRejected, ref.ID,
	); err != nil {
		return fmt.Errorf("rejecting bid: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing negotiation reject: %w", err)
	}
	return nil
}

func getNegotiationTx(ctx context.Context, tx *sql.Tx, id int64) (model.BidRef, string, error) {
	var ref model.BidRef
	var status string
	err := tx.QueryRowContext(ctx,
		`SELECT bid_kind, bid_id, status FROM negotiations WHERE id = ?`, id,
	).Scan(&ref.Kind, &ref.ID, &status)
	if err == sql.ErrNoRows {
		return model.BidRef{}, "", ErrNotFound
	}
	if err != nil {
		return model.BidRef{}, "", fmt.Errorf("getting negotiation: %w", err)
	}
	return ref, status, nil
}
