package api

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/farmerchain/farmerchain/internal/mail"
	"github.com/farmerchain/farmerchain/internal/model"
	"github.com/farmerchain/farmerchain/internal/store"
)

// QuotesHandler serves the quote owner surface for one tier: farmers
// managing farmer quotes, FPOs managing FPO quotes.
type QuotesHandler struct {
	DB     *sql.DB
	Tier   model.Tier
	Mailer *mail.Mailer
}

type quoteRequest struct {
	ProductName string  `json:"product_name"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Deadline    string  `json:"deadline"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
}

func (req *quoteRequest) validate() string {
	if req.ProductName == "" || req.Deadline == "" || req.Unit == "" {
		return "product_name, deadline and unit are required"
	}
	if req.Quantity <= 0 {
		return "quantity must be positive"
	}
	if _, err := time.Parse("2006-01-02", req.Deadline); err != nil {
		return "deadline must be a YYYY-MM-DD date"
	}
	return ""
}

func (h *QuotesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	p := GetPrincipal(r.Context())
	quote, err := store.CreateQuote(r.Context(), h.DB, h.Tier, &model.QuoteRequest{
		OwnerID:     p.ID,
		ProductName: req.ProductName,
		Category:    req.Category,
		Description: req.Description,
		Deadline:    req.Deadline,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
	})
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, quote)
}

func (h *QuotesHandler) List(w http.ResponseWriter, r *http.Request) {
	p := GetPrincipal(r.Context())
	quotes, err := store.ListOwnerQuotes(r.Context(), h.DB, h.Tier, p.ID)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, quotes)
}

// ownQuote loads the quote at {id} if the caller owns it. Quotes owned
// by someone else are indistinguishable from absent ones.
func (h *QuotesHandler) ownQuote(w http.ResponseWriter, r *http.Request) *model.QuoteRequest {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid quote id")
		return nil
	}

	quote, err := store.GetQuote(r.Context(), h.DB, h.Tier, id)
	if err != nil {
		storeError(w, err)
		return nil
	}
	p := GetPrincipal(r.Context())
	if quote == nil || quote.OwnerID != p.ID {
		jsonError(w, http.StatusNotFound, "quote not found")
		return nil
	}
	return quote
}

func (h *QuotesHandler) Get(w http.ResponseWriter, r *http.Request) {
	quote := h.ownQuote(w, r)
	if quote == nil {
		return
	}
	jsonResponse(w, http.StatusOK, quote)
}

func (h *QuotesHandler) Update(w http.ResponseWriter, r *http.Request) {
	quote := h.ownQuote(w, r)
	if quote == nil {
		return
	}

	var req quoteRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	quote.ProductName = req.ProductName
	quote.Category = req.Category
	quote.Description = req.Description
	quote.Deadline = req.Deadline
	quote.Quantity = req.Quantity
	quote.Unit = req.Unit
	if err := store.UpdateQuote(r.Context(), h.DB, h.Tier, quote); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, quote)
}

func (h *QuotesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	quote := h.ownQuote(w, r)
	if quote == nil {
		return
	}
	if err := store.DeleteQuote(r.Context(), h.DB, h.Tier, quote.ID); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "quote deleted"})
}

// Bids lists all bids submitted on one of the caller's quotes.
func (h *QuotesHandler) Bids(w http.ResponseWriter, r *http.Request) {
	quote := h.ownQuote(w, r)
	if quote == nil {
		return
	}
	bids, err := store.ListQuoteBids(r.Context(), h.DB, h.Tier, quote.ID)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, bids)
}

// AcceptBid awards the quote to one bid: the bid is accepted, the quote
// moves to awarded, and all sibling bids are rejected in the same
// transaction.
func (h *QuotesHandler) AcceptBid(w http.ResponseWriter, r *http.Request) {
	quote := h.ownQuote(w, r)
	if quote == nil {
		return
	}

	var req struct {
		BidID int64 `json:"bid_id"`
	}
	if err := decodeJSON(r, &req); err != nil || req.BidID == 0 {
		jsonError(w, http.StatusBadRequest, "bid_id is required")
		return
	}

	if err := store.AcceptBid(r.Context(), h.DB, h.Tier, quote.ID, req.BidID); err != nil {
		storeError(w, err)
		return
	}

	notifyBidAccepted(r.Context(), h.DB, h.Mailer, h.Tier, req.BidID)

	jsonResponse(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("bid %d accepted, quote awarded", req.BidID),
	})
}

// notifyBidAccepted emails the winning bidder. Failures are logged, not
// surfaced: the award already committed.
func notifyBidAccepted(ctx context.Context, db *sql.DB, mailer *mail.Mailer, tier model.Tier, bidID int64) {
	bid, err := store.GetBid(ctx, db, tier, bidID)
	if err != nil || bid == nil {
		slog.Warn("loading accepted bid for notification", "bid_id", bidID, "error", err)
		return
	}

	bidderRole := model.RoleFPO
	if tier == model.TierFPO {
		bidderRole = model.RoleRetailer
	}
	bidder, err := store.GetAccount(ctx, db, bidderRole, bid.BidderID)
	if err != nil || bidder == nil {
		slog.Warn("loading bidder for notification", "bid_id", bidID, "error", err)
		return
	}

	body := fmt.Sprintf("Hi %s,\n\nYour bid of %.2f for %q has been accepted.\n", bidder.Name, bid.BidAmount, bid.ProductName)
	mailer.SendAsync("Your bid was accepted", bidder.Email, body)
}
