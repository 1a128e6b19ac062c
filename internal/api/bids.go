package api

import (
	"database/sql"
	"net/http"

	"github.com/farmerchain/farmerchain/internal/model"
	"github.com/farmerchain/farmerchain/internal/store"
)

// BidsHandler serves the bidder surface for one tier: FPOs bidding on
// farmer quotes, retailers bidding on FPO quotes.
type BidsHandler struct {
	DB   *sql.DB
	Tier model.Tier
}

// OpenQuotes lists quotes currently open for bidding on this tier.
func (h *BidsHandler) OpenQuotes(w http.ResponseWriter, r *http.Request) {
	quotes, err := store.ListOpenQuotes(r.Context(), h.DB, h.Tier)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, quotes)
}

type submitBidRequest struct {
	BidAmount        float64 `json:"bid_amount"`
	DeliveryTimeDays int     `json:"delivery_time_days"`
	Comments         string  `json:"comments"`
	TransportMode    string  `json:"transport_mode"`
	VehicleType      string  `json:"vehicle_type"`
}

func (req *submitBidRequest) validate() string {
	if req.BidAmount <= 0 {
		return "bid_amount must be positive"
	}
	if req.DeliveryTimeDays < 0 {
		return "delivery_time_days must not be negative"
	}
	switch req.TransportMode {
	case model.TransportRoad:
		if !model.ValidVehicleType(req.VehicleType) {
			return "road transport requires a valid vehicle_type"
		}
	case model.TransportAir:
	default:
		return "transport_mode must be road or air"
	}
	return ""
}

// SubmitBid places a bid on an open quote at {id}.
func (h *BidsHandler) SubmitBid(w http.ResponseWriter, r *http.Request) {
	quoteID, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid quote id")
		return
	}

	var req submitBidRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	p := GetPrincipal(r.Context())
	bid, err := store.SubmitBid(r.Context(), h.DB, h.Tier, &model.Bid{
		BidderID:         p.ID,
		QuoteID:          quoteID,
		BidAmount:        req.BidAmount,
		DeliveryTimeDays: req.DeliveryTimeDays,
		Comments:         req.Comments,
		TransportMode:    req.TransportMode,
		VehicleType:      req.VehicleType,
	})
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, bid)
}

// MyBids lists all bids the caller has submitted on this tier.
func (h *BidsHandler) MyBids(w http.ResponseWriter, r *http.Request) {
	p := GetPrincipal(r.Context())
	bids, err := store.ListBidderBids(r.Context(), h.DB, h.Tier, p.ID)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, bids)
}
