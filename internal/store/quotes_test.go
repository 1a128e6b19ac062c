package store

import (
	"context"
	"errors"
	"testing"

	"github.com/farmerchain/farmerchain/internal/model"
)

func TestCreateAndListQuotes(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	farmer := seedAccount(t, database, model.RoleFarmer)
	other := seedAccount(t, database, model.RoleFarmer)
	q := seedQuote(t, database, model.TierFarmer, farmer.ID)
	seedQuote(t, database, model.TierFarmer, other.ID)

	if q.Status != model.QuoteOpen {
		t.Errorf("expected new quote open, got %q", q.Status)
	}

	mine, err := ListOwnerQuotes(ctx, database, model.TierFarmer, farmer.ID)
	if err != nil {
		t.Fatalf("ListOwnerQuotes: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != q.ID {
		t.Fatalf("expected only own quote, got %+v", mine)
	}

	open, err := ListOpenQuotes(ctx, database, model.TierFarmer)
	if err != nil {
		t.Fatalf("ListOpenQuotes: %v", err)
	}
	if len(open) != 2 {
		t.Errorf("expected 2 open quotes, got %d", len(open))
	}
	if open[0].OwnerName == "" {
		t.Errorf("expected owner name joined in, got %+v", open[0])
	}
}

func TestAwardedQuoteLeavesOpenList(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	farmer := seedAccount(t, database, model.RoleFarmer)
	fpo := seedAccount(t, database, model.RoleFPO)
	q := seedQuote(t, database, model.TierFarmer, farmer.ID)
	b := seedBid(t, database, model.TierFarmer, q.ID, fpo.ID, 500)

	if err := AcceptBid(ctx, database, model.TierFarmer, q.ID, b.ID); err != nil {
		t.Fatalf("AcceptBid: %v", err)
	}

	open, _ := ListOpenQuotes(ctx, database, model.TierFarmer)
	if len(open) != 0 {
		t.Errorf("awarded quote should not be listed as open, got %d", len(open))
	}
}

func TestUpdateQuote(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	farmer := seedAccount(t, database, model.RoleFarmer)
	q := seedQuote(t, database, model.TierFarmer, farmer.ID)

	q.ProductName = "Rice"
	q.Quantity = 250
	if err := UpdateQuote(ctx, database, model.TierFarmer, q); err != nil {
		t.Fatalf("UpdateQuote: %v", err)
	}

	got, _ := GetQuote(ctx, database, model.TierFarmer, q.ID)
	if got.ProductName != "Rice" || got.Quantity != 250 {
		t.Errorf("quote not updated: %+v", got)
	}
	if got.Status != model.QuoteOpen {
		t.Errorf("update must not touch status, got %q", got.Status)
	}

	missing := *q
	missing.ID = 9999
	if err := UpdateQuote(ctx, database, model.TierFarmer, &missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteQuoteCascadesBids(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	fpoOwner := seedAccount(t, database, model.RoleFPO)
	retailer := seedAccount(t, database, model.RoleRetailer)
	q := seedQuote(t, database, model.TierFPO, fpoOwner.ID)
	b := seedBid(t, database, model.TierFPO, q.ID, retailer.ID, 900)

	if err := DeleteQuote(ctx, database, model.TierFPO, q.ID); err != nil {
		t.Fatalf("DeleteQuote: %v", err)
	}

	gotBid, err := GetBid(ctx, database, model.TierFPO, b.ID)
	if err != nil {
		t.Fatalf("GetBid: %v", err)
	}
	if gotBid != nil {
		t.Errorf("expected bid removed with its quote, got %+v", gotBid)
	}
}
