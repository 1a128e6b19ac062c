package store

import "github.com/farmerchain/farmerchain/internal/model"

// tierTables maps a marketplace tier onto its quote and bid tables.
// Both tiers share every algorithm in this package; only the table and
// column names differ, so each store function takes its tier and works
// against the right pair of tables.
type tierTables struct {
	quoteTable  string
	quoteOwner  string // owner FK column on the quote table
	ownerTable  string
	bidTable    string
	bidBidder   string // bidder FK column on the bid table
	bidderTable string

	// uniqueBidder rejects a second bid from the same bidder on one
	// quote. Only the retailer tier enforces this.
	uniqueBidder bool
}

func tables(t model.Tier) tierTables {
	if t == model.TierFPO {
		return tierTables{
			quoteTable:   "fpo_quotes",
			quoteOwner:   "fpo_id",
			ownerTable:   "fpos",
			bidTable:     "retailer_bids",
			bidBidder:    "retailer_id",
			bidderTable:  "retailers",
			uniqueBidder: true,
		}
	}
	return tierTables{
		quoteTable:  "farmer_quotes",
		quoteOwner:  "farmer_id",
		ownerTable:  "farmers",
		bidTable:    "fpo_bids",
		bidBidder:   "fpo_id",
		bidderTable: "fpos",
	}
}
