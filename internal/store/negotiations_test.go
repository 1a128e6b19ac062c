package store

import (
	"context"
	"errors"
	"testing"

	"github.com/farmerchain/farmerchain/internal/model"
)

func TestCreateNegotiation(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	farmer := seedAccount(t, database, model.RoleFarmer)
	fpo := seedAccount(t, database, model.RoleFPO)
	q := seedQuote(t, database, model.TierFarmer, farmer.ID)
	b := seedBid(t, database, model.TierFarmer, q.ID, fpo.ID, 500)

	ref := model.BidRef{Kind: model.BidKindFPO, ID: b.ID}
	neg, err := CreateNegotiation(ctx, database, ref)
	if err != nil {
		t.Fatalf("CreateNegotiation: %v", err)
	}
	if neg.Status != model.NegotiationActive {
		t.Errorf("expected active negotiation, got %q", neg.Status)
	}
	if neg.BidDetail == nil || neg.BidDetail.ID != b.ID {
		t.Errorf("expected bid detail loaded, got %+v", neg.BidDetail)
	}

	// Only one active thread per bid.
	if _, err := CreateNegotiation(ctx, database, ref); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict for second active thread, got %v", err)
	}

	// A missing bid cannot anchor a thread.
	if _, err := CreateNegotiation(ctx, database, model.BidRef{Kind: model.BidKindFPO, ID: 9999}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestNegotiationReopensAfterTerminal(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	farmer := seedAccount(t, database, model.RoleFarmer)
	fpo := seedAccount(t, database, model.RoleFPO)
	q := seedQuote(t, database, model.TierFarmer, farmer.ID)
	b := seedBid(t, database, model.TierFarmer, q.ID, fpo.ID, 500)
	ref := model.BidRef{Kind: model.BidKindFPO, ID: b.ID}

	neg, _ := CreateNegotiation(ctx, database, ref)
	if err := RejectNegotiation(ctx, database, neg.ID); err != nil {
		t.Fatalf("RejectNegotiation: %v", err)
	}

	// A terminal thread does not block a new one.
	if _, err := CreateNegotiation(ctx, database, ref); err != nil {
		t.Errorf("expected new thread after rejection, got %v", err)
	}
}

func TestAddMessage(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	farmer := seedAccount(t, database, model.RoleFarmer)
	fpo := seedAccount(t, database, model.RoleFPO)
	q := seedQuote(t, database, model.TierFarmer, farmer.ID)
	b := seedBid(t, database, model.TierFarmer, q.ID, fpo.ID, 500)
	neg, _ := CreateNegotiation(ctx, database, model.BidRef{Kind: model.BidKindFPO, ID: b.ID})

	offer := 450.0
	msg, err := AddMessage(ctx, database, neg.ID, &model.NegotiationMessage{
		SenderRole: model.RoleFarmer, SenderID: farmer.ID, SenderName: farmer.Name,
		Message: "Can you do 450?", CounterAmount: &offer,
	})
	if err != nil {
		t.Fatalf("AddMessage: %v", err)
	}
	if msg.CounterAmount == nil || *msg.CounterAmount != 450 {
		t.Errorf("expected counter amount preserved, got %+v", msg)
	}

	AddMessage(ctx, database, neg.ID, &model.NegotiationMessage{
		SenderRole: model.RoleFPO, SenderID: fpo.ID, SenderName: fpo.Name,
		Message: "Deal.",
	})

	got, _ := GetNegotiation(ctx, database, neg.ID)
	if len(got.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got.Messages))
	}
	if got.Messages[0].Message != "Can you do 450?" {
		t.Errorf("expected oldest message first, got %q", got.Messages[0].Message)
	}
	if got.Messages[0].SenderName != farmer.Name {
		t.Errorf("expected denormalized sender name, got %q", got.Messages[0].SenderName)
	}
}

func TestAddMessageOnClosedNegotiation(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	farmer := seedAccount(t, database, model.RoleFarmer)
	fpo := seedAccount(t, database, model.RoleFPO)
	q := seedQuote(t, database, model.TierFarmer, farmer.ID)
	b := seedBid(t, database, model.TierFarmer, q.ID, fpo.ID, 500)
	neg, _ := CreateNegotiation(ctx, database, model.BidRef{Kind: model.BidKindFPO, ID: b.ID})

	if err := RejectNegotiation(ctx, database, neg.ID); err != nil {
		t.Fatalf("RejectNegotiation: %v", err)
	}

	_, err := AddMessage(ctx, database, neg.ID, &model.NegotiationMessage{
		SenderRole: model.RoleFPO, SenderID: fpo.ID, SenderName: fpo.Name, Message: "Hello?",
	})
	if !errors.Is(err, ErrNegotiationClosed) {
		t.Fatalf("expected ErrNegotiationClosed, got %v", err)
	}

	// The rejected message must not have been persisted.
	msgs, _ := ListMessages(ctx, database, neg.ID)
	if len(msgs) != 0 {
		t.Errorf("expected no messages on closed thread, got %d", len(msgs))
	}
}

func TestAcceptNegotiationOwnerOnly(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	farmer := seedAccount(t, database, model.RoleFarmer)
	fpo := seedAccount(t, database, model.RoleFPO)
	q := seedQuote(t, database, model.TierFarmer, farmer.ID)
	b := seedBid(t, database, model.TierFarmer, q.ID, fpo.ID, 500)
	neg, _ := CreateNegotiation(ctx, database, model.BidRef{Kind: model.BidKindFPO, ID: b.ID})

	// The bidder may not accept their own bid.
	err := AcceptNegotiation(ctx, database, neg.ID, model.RoleFPO, fpo.ID)
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner for bidder, got %v", err)
	}

	// Neither may a different farmer.
	stranger := seedAccount(t, database, model.RoleFarmer)
	err = AcceptNegotiation(ctx, database, neg.ID, model.RoleFarmer, stranger.ID)
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner for stranger, got %v", err)
	}

	// The failed attempts must not have moved anything.
	got, _ := GetNegotiation(ctx, database, neg.ID)
	if got.Status != model.NegotiationActive {
		t.Errorf("expected negotiation still active, got %q", got.Status)
	}
}

func TestAcceptNegotiationAwardsBid(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	farmer := seedAccount(t, database, model.RoleFarmer)
	fpo1 := seedAccount(t, database, model.RoleFPO)
	fpo2 := seedAccount(t, database, model.RoleFPO)
	q := seedQuote(t, database, model.TierFarmer, farmer.ID)
	winner := seedBid(t, database, model.TierFarmer, q.ID, fpo1.ID, 500)
	loser := seedBid(t, database, model.TierFarmer, q.ID, fpo2.ID, 520)
	neg, _ := CreateNegotiation(ctx, database, model.BidRef{Kind: model.BidKindFPO, ID: winner.ID})

	if err := AcceptNegotiation(ctx, database, neg.ID, model.RoleFarmer, farmer.ID); err != nil {
		t.Fatalf("AcceptNegotiation: %v", err)
	}

	got, _ := GetNegotiation(ctx, database, neg.ID)
	if got.Status != model.NegotiationAccepted {
		t.Errorf("expected negotiation accepted, got %q", got.Status)
	}

	// Accepting through a negotiation awards exactly like a direct
	// accept.
	quote, _ := GetQuote(ctx, database, model.TierFarmer, q.ID)
	if quote.Status != model.QuoteAwarded || quote.AcceptedBidID == nil || *quote.AcceptedBidID != winner.ID {
		t.Errorf("expected quote awarded to bid %d, got %+v", winner.ID, quote)
	}
	gotLoser, _ := GetBid(ctx, database, model.TierFarmer, loser.ID)
	if gotLoser.Status != model.BidRejected {
		t.Errorf("expected sibling bid rejected, got %q", gotLoser.Status)
	}

	// Terminal thread cannot be settled again.
	if err := AcceptNegotiation(ctx, database, neg.ID, model.RoleFarmer, farmer.ID); !errors.Is(err, ErrNegotiationClosed) {
		t.Errorf("expected ErrNegotiationClosed, got %v", err)
	}
}

func TestAcceptNegotiationAfterQuoteAwarded(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	farmer := seedAccount(t, database, model.RoleFarmer)
	fpo1 := seedAccount(t, database, model.RoleFPO)
	fpo2 := seedAccount(t, database, model.RoleFPO)
	q := seedQuote(t, database, model.TierFarmer, farmer.ID)
	direct := seedBid(t, database, model.TierFarmer, q.ID, fpo1.ID, 500)
	negotiated := seedBid(t, database, model.TierFarmer, q.ID, fpo2.ID, 480)
	neg, _ := CreateNegotiation(ctx, database, model.BidRef{Kind: model.BidKindFPO, ID: negotiated.ID})

	if err := AcceptBid(ctx, database, model.TierFarmer, q.ID, direct.ID); err != nil {
		t.Fatalf("AcceptBid: %v", err)
	}

	// The quote is already awarded, so the negotiation cannot settle.
	err := AcceptNegotiation(ctx, database, neg.ID, model.RoleFarmer, farmer.ID)
	if !errors.Is(err, ErrQuoteNotOpen) {
		t.Fatalf("expected ErrQuoteNotOpen, got %v", err)
	}

	got, _ := GetNegotiation(ctx, database, neg.ID)
	if got.Status != model.NegotiationActive {
		t.Errorf("failed accept must not close the thread, got %q", got.Status)
	}
}

func TestRejectNegotiationRejectsBid(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	fpoOwner := seedAccount(t, database, model.RoleFPO)
	retailer := seedAccount(t, database, model.RoleRetailer)
	q := seedQuote(t, database, model.TierFPO, fpoOwner.ID)
	b := seedBid(t, database, model.TierFPO, q.ID, retailer.ID, 900)
	neg, _ := CreateNegotiation(ctx, database, model.BidRef{Kind: model.BidKindRetailer, ID: b.ID})

	if err := RejectNegotiation(ctx, database, neg.ID); err != nil {
		t.Fatalf("RejectNegotiation: %v", err)
	}

	gotBid, _ := GetBid(ctx, database, model.TierFPO, b.ID)
	if gotBid.Status != model.BidRejected {
		t.Errorf("expected bid rejected with its negotiation, got %q", gotBid.Status)
	}

	if err := RejectNegotiation(ctx, database, neg.ID); !errors.Is(err, ErrNegotiationClosed) {
		t.Errorf("expected ErrNegotiationClosed on second reject, got %v", err)
	}
}

func TestIsParticipantAndListing(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	farmer := seedAccount(t, database, model.RoleFarmer)
	fpo := seedAccount(t, database, model.RoleFPO)
	retailer := seedAccount(t, database, model.RoleRetailer)
	q := seedQuote(t, database, model.TierFarmer, farmer.ID)
	b := seedBid(t, database, model.TierFarmer, q.ID, fpo.ID, 500)
	ref := model.BidRef{Kind: model.BidKindFPO, ID: b.ID}
	CreateNegotiation(ctx, database, ref)

	for _, tc := range []struct {
		role string
		id   int64
		want bool
	}{
		{model.RoleFarmer, farmer.ID, true},
		{model.RoleFPO, fpo.ID, true},
		{model.RoleRetailer, retailer.ID, false},
	} {
		got, err := IsParticipant(ctx, database, ref, tc.role, tc.id)
		if err != nil {
			t.Fatalf("IsParticipant(%s): %v", tc.role, err)
		}
		if got != tc.want {
			t.Errorf("IsParticipant(%s) = %v, want %v", tc.role, got, tc.want)
		}
	}

	for _, tc := range []struct {
		role string
		id   int64
		want int
	}{
		{model.RoleFarmer, farmer.ID, 1},
		{model.RoleFPO, fpo.ID, 1},
		{model.RoleRetailer, retailer.ID, 0},
	} {
		negs, err := ListNegotiations(ctx, database, tc.role, tc.id)
		if err != nil {
			t.Fatalf("ListNegotiations(%s): %v", tc.role, err)
		}
		if len(negs) != tc.want {
			t.Errorf("ListNegotiations(%s) = %d threads, want %d", tc.role, len(negs), tc.want)
		}
	}
}
