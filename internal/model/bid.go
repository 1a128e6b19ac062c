package model

import "time"

// Bid statuses.
const (
	BidSubmitted = "submitted"
	BidAccepted  = "accepted"
	BidRejected  = "rejected"
)

// Transport modes.
const (
	TransportRoad = "road"
	TransportAir  = "air"
)

// Vehicle types for road transport.
const (
	VehicleSmallTruck       = "small_truck"
	VehicleMediumTruck      = "medium_truck"
	VehicleLargeTruck       = "large_truck"
	VehicleArticulatedTruck = "articulated_truck"
)

// ValidVehicleType reports whether v names a known road vehicle class.
func ValidVehicleType(v string) bool {
	switch v {
	case VehicleSmallTruck, VehicleMediumTruck, VehicleLargeTruck, VehicleArticulatedTruck:
		return true
	}
	return false
}

// Bid is a response to a quote. BidderID references the FPO (for bids on
// farmer quotes) or the retailer (for bids on FPO quotes).
type Bid struct {
	ID               int64     `json:"id"`
	BidderID         int64     `json:"bidder_id"`
	QuoteID          int64     `json:"quote_id"`
	BidAmount        float64   `json:"bid_amount"`
	DeliveryTimeDays int       `json:"delivery_time_days"`
	Comments         string    `json:"comments,omitempty"`
	TransportMode    string    `json:"transport_mode"`
	VehicleType      string    `json:"vehicle_type,omitempty"`
	Status           string    `json:"status"`
	SubmittedAt      time.Time `json:"submitted_at"`

	// Joined fields (not always populated).
	BidderName  string `json:"bidder_name,omitempty"`
	ProductName string `json:"product_name,omitempty"`
}

// BidKind tags which bid table a polymorphic reference points into.
type BidKind string

const (
	BidKindFPO      BidKind = "fpo_bid"      // FPO bid on a farmer quote
	BidKindRetailer BidKind = "retailer_bid" // retailer bid on an FPO quote
)

// ValidBidKind reports whether k names a known bid variant.
func ValidBidKind(k BidKind) bool {
	return k == BidKindFPO || k == BidKindRetailer
}

// Tier returns the marketplace tier the referenced bid belongs to.
func (k BidKind) Tier() Tier {
	if k == BidKindRetailer {
		return TierFPO
	}
	return TierFarmer
}

// OwnerRole returns the role that owns the quote the bid targets.
func (k BidKind) OwnerRole() string {
	if k == BidKindRetailer {
		return RoleFPO
	}
	return RoleFarmer
}

// BidderRole returns the role that placed the referenced bid.
func (k BidKind) BidderRole() string {
	if k == BidKindRetailer {
		return RoleRetailer
	}
	return RoleFPO
}

// BidRef is a tagged reference to exactly one bid of either variant.
type BidRef struct {
	Kind BidKind `json:"bid_kind"`
	ID   int64   `json:"bid_id"`
}
