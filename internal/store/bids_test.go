package store

import (
	"context"
	"errors"
	"testing"

	"github.com/farmerchain/farmerchain/internal/model"
)

func TestSubmitAndListBids(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	farmer := seedAccount(t, database, model.RoleFarmer)
	fpo := seedAccount(t, database, model.RoleFPO)
	q := seedQuote(t, database, model.TierFarmer, farmer.ID)

	b := seedBid(t, database, model.TierFarmer, q.ID, fpo.ID, 450)
	if b.Status != model.BidSubmitted {
		t.Errorf("expected new bid submitted, got %q", b.Status)
	}
	if b.BidderName == "" || b.ProductName == "" {
		t.Errorf("expected joined names on bid, got %+v", b)
	}

	bids, err := ListQuoteBids(ctx, database, model.TierFarmer, q.ID)
	if err != nil {
		t.Fatalf("ListQuoteBids: %v", err)
	}
	if len(bids) != 1 {
		t.Fatalf("expected 1 bid, got %d", len(bids))
	}

	mine, err := ListBidderBids(ctx, database, model.TierFarmer, fpo.ID)
	if err != nil {
		t.Fatalf("ListBidderBids: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != b.ID {
		t.Fatalf("expected own bid listed, got %+v", mine)
	}
}

func TestSubmitBidOnMissingQuote(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	fpo := seedAccount(t, database, model.RoleFPO)

	_, err := SubmitBid(ctx, database, model.TierFarmer, &model.Bid{
		BidderID: fpo.ID, QuoteID: 9999, BidAmount: 100,
		TransportMode: model.TransportAir,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSubmitBidOnAwardedQuote(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	farmer := seedAccount(t, database, model.RoleFarmer)
	fpo := seedAccount(t, database, model.RoleFPO)
	late := seedAccount(t, database, model.RoleFPO)
	q := seedQuote(t, database, model.TierFarmer, farmer.ID)
	b := seedBid(t, database, model.TierFarmer, q.ID, fpo.ID, 500)

	if err := AcceptBid(ctx, database, model.TierFarmer, q.ID, b.ID); err != nil {
		t.Fatalf("AcceptBid: %v", err)
	}

	_, err := SubmitBid(ctx, database, model.TierFarmer, &model.Bid{
		BidderID: late.ID, QuoteID: q.ID, BidAmount: 480,
		TransportMode: model.TransportAir,
	})
	if !errors.Is(err, ErrQuoteNotOpen) {
		t.Errorf("expected ErrQuoteNotOpen, got %v", err)
	}
}

func TestRetailerCannotBidTwice(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	fpoOwner := seedAccount(t, database, model.RoleFPO)
	retailer := seedAccount(t, database, model.RoleRetailer)
	q := seedQuote(t, database, model.TierFPO, fpoOwner.ID)

	seedBid(t, database, model.TierFPO, q.ID, retailer.ID, 900)

	_, err := SubmitBid(ctx, database, model.TierFPO, &model.Bid{
		BidderID: retailer.ID, QuoteID: q.ID, BidAmount: 850,
		TransportMode: model.TransportAir,
	})
	if !errors.Is(err, ErrDuplicateBid) {
		t.Errorf("expected ErrDuplicateBid, got %v", err)
	}
}

func TestFPOMayReviseBid(t *testing.T) {
	database := newTestDB(t)

	farmer := seedAccount(t, database, model.RoleFarmer)
	fpo := seedAccount(t, database, model.RoleFPO)
	q := seedQuote(t, database, model.TierFarmer, farmer.ID)

	// The farmer tier accepts repeat bids from the same FPO.
	seedBid(t, database, model.TierFarmer, q.ID, fpo.ID, 500)
	seedBid(t, database, model.TierFarmer, q.ID, fpo.ID, 480)

	bids, err := ListQuoteBids(context.Background(), database, model.TierFarmer, q.ID)
	if err != nil {
		t.Fatalf("ListQuoteBids: %v", err)
	}
	if len(bids) != 2 {
		t.Errorf("expected 2 bids, got %d", len(bids))
	}
}
