package model

import "time"

// Tier identifies which side of the marketplace a quote belongs to.
// Farmer quotes are bid on by FPOs, FPO quotes by retailers.
type Tier string

const (
	TierFarmer Tier = "farmer"
	TierFPO    Tier = "fpo"
)

// Quote statuses.
const (
	QuoteOpen    = "open"
	QuoteAwarded = "awarded"
	QuoteClosed  = "closed"
)

// QuoteRequest is an open request to supply a product. OwnerID references
// the farmer or FPO that created it, depending on the tier. AcceptedBidID
// is set exactly when Status is "awarded".
type QuoteRequest struct {
	ID            int64     `json:"id"`
	OwnerID       int64     `json:"owner_id"`
	ProductName   string    `json:"product_name"`
	Category      string    `json:"category"`
	Description   string    `json:"description"`
	Deadline      string    `json:"deadline"` // YYYY-MM-DD
	Quantity      float64   `json:"quantity"`
	Unit          string    `json:"unit"`
	Status        string    `json:"status"`
	AcceptedBidID *int64    `json:"accepted_bid_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`

	// Joined field (not always populated).
	OwnerName string `json:"owner_name,omitempty"`
}
