package api

import (
	"database/sql"
	"net/http"

	"github.com/farmerchain/farmerchain/internal/mail"
	"github.com/farmerchain/farmerchain/internal/model"
	"github.com/farmerchain/farmerchain/internal/store"
)

// NegotiationsHandler serves negotiation threads. Threads are only
// visible to the quote owner and the bidder; everyone else sees 404.
type NegotiationsHandler struct {
	DB     *sql.DB
	Mailer *mail.Mailer
}

// Create opens a negotiation thread on a bid. Either participant may
// start it; a bid can only have one active thread at a time.
func (h *NegotiationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var ref model.BidRef
	if err := decodeJSON(r, &ref); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !model.ValidBidKind(ref.Kind) {
		jsonError(w, http.StatusBadRequest, "bid_kind must be fpo_bid or retailer_bid")
		return
	}
	if ref.ID == 0 {
		jsonError(w, http.StatusBadRequest, "bid_id is required")
		return
	}

	p := GetPrincipal(r.Context())
	ok, err := store.IsParticipant(r.Context(), h.DB, ref, p.Role, p.ID)
	if err != nil {
		storeError(w, err)
		return
	}
	if !ok {
		jsonError(w, http.StatusForbidden, "only the quote owner or the bidder may negotiate")
		return
	}

	neg, err := store.CreateNegotiation(r.Context(), h.DB, ref)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, neg)
}

// List returns the negotiations the caller participates in. Admins see
// all of them.
func (h *NegotiationsHandler) List(w http.ResponseWriter, r *http.Request) {
	p := GetPrincipal(r.Context())
	negs, err := store.ListNegotiations(r.Context(), h.DB, p.Role, p.ID)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, negs)
}

// visibleNegotiation loads the negotiation at {id} if the caller may see
// it.
func (h *NegotiationsHandler) visibleNegotiation(w http.ResponseWriter, r *http.Request) *model.Negotiation {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid negotiation id")
		return nil
	}

	neg, err := store.GetNegotiation(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return nil
	}
	if neg == nil {
		jsonError(w, http.StatusNotFound, "negotiation not found")
		return nil
	}

	p := GetPrincipal(r.Context())
	if p.Role != model.RoleAdmin {
		ok, err := store.IsParticipant(r.Context(), h.DB, neg.Bid, p.Role, p.ID)
		if err != nil {
			storeError(w, err)
			return nil
		}
		if !ok {
			jsonError(w, http.StatusNotFound, "negotiation not found")
			return nil
		}
	}
	return neg
}

func (h *NegotiationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	neg := h.visibleNegotiation(w, r)
	if neg == nil {
		return
	}
	jsonResponse(w, http.StatusOK, neg)
}

// SendMessage appends a message, optionally carrying a counter offer,
// to an active thread.
func (h *NegotiationsHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	neg := h.visibleNegotiation(w, r)
	if neg == nil {
		return
	}

	var req struct {
		Message       string   `json:"message"`
		CounterAmount *float64 `json:"counter_amount"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		jsonError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.CounterAmount != nil && *req.CounterAmount <= 0 {
		jsonError(w, http.StatusBadRequest, "counter_amount must be positive")
		return
	}

	p := GetPrincipal(r.Context())
	msg, err := store.AddMessage(r.Context(), h.DB, neg.ID, &model.NegotiationMessage{
		SenderRole:    p.Role,
		SenderID:      p.ID,
		SenderName:    p.Name,
		Message:       req.Message,
		CounterAmount: req.CounterAmount,
	})
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, msg)
}

// Accept settles the negotiation in the bidder's favor: the underlying
// bid is awarded exactly as a direct accept-bid would award it. Only
// the quote owner may accept.
func (h *NegotiationsHandler) Accept(w http.ResponseWriter, r *http.Request) {
	neg := h.visibleNegotiation(w, r)
	if neg == nil {
		return
	}

	p := GetPrincipal(r.Context())
	if err := store.AcceptNegotiation(r.Context(), h.DB, neg.ID, p.Role, p.ID); err != nil {
		storeError(w, err)
		return
	}

	notifyBidAccepted(r.Context(), h.DB, h.Mailer, neg.Bid.Kind.Tier(), neg.Bid.ID)

	jsonResponse(w, http.StatusOK, map[string]string{
		"message": "negotiation accepted, bid awarded",
	})
}

// Reject closes the negotiation and marks the underlying bid rejected.
// Either participant may reject.
func (h *NegotiationsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	neg := h.visibleNegotiation(w, r)
	if neg == nil {
		return
	}

	if err := store.RejectNegotiation(r.Context(), h.DB, neg.ID); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{
		"message": "negotiation rejected",
	})
}
