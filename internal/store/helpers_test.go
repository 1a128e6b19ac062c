package store

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/farmerchain/farmerchain/internal/db"
	"github.com/farmerchain/farmerchain/internal/model"
)

var accountSeq int

// seedAccount inserts an approved account of the given role and returns
// it. Unique fields are derived from a sequence so tests can seed freely.
func seedAccount(t *testing.T, database *sql.DB, role string) *model.Account {
	t.Helper()
	accountSeq++

	a, err := CreateAccount(context.Background(), database, role, &model.Account{
		Name:           fmt.Sprintf("%s %d", role, accountSeq),
		Email:          fmt.Sprintf("%s%d@example.com", role, accountSeq),
		PasswordHash:   "x",
		IdentityNumber: fmt.Sprintf("ID-%d", accountSeq),
		WalletAddress:  fmt.Sprintf("0x%040d", accountSeq),
		City:           "Pune",
		State:          "Maharashtra",
	})
	if err != nil {
		t.Fatalf("seeding %s account: %v", role, err)
	}
	if err := SetApprovalStatus(context.Background(), database, role, a.ID, model.ApprovalApproved); err != nil {
		t.Fatalf("approving %s account: %v", role, err)
	}
	return a
}

func seedQuote(t *testing.T, database *sql.DB, tier model.Tier, ownerID int64) *model.QuoteRequest {
	t.Helper()

	q, err := CreateQuote(context.Background(), database, tier, &model.QuoteRequest{
		OwnerID:     ownerID,
		ProductName: "Wheat",
		Category:    "grain",
		Deadline:    "2026-12-31",
		Quantity:    100,
		Unit:        "kg",
	})
	if err != nil {
		t.Fatalf("seeding quote: %v", err)
	}
	return q
}

func seedBid(t *testing.T, database *sql.DB, tier model.Tier, quoteID, bidderID int64, amount float64) *model.Bid {
	t.Helper()

	b, err := SubmitBid(context.Background(), database, tier, &model.Bid{
		BidderID:         bidderID,
		QuoteID:          quoteID,
		BidAmount:        amount,
		DeliveryTimeDays: 5,
		TransportMode:    model.TransportRoad,
		VehicleType:      model.VehicleMediumTruck,
	})
	if err != nil {
		t.Fatalf("seeding bid: %v", err)
	}
	return b
}

func newTestDB(t *testing.T) *sql.DB {
	return db.NewTestDB(t)
}
