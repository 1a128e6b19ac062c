package model

import "time"

// Negotiation statuses. Active negotiations accept messages; accepted and
// rejected are terminal.
const (
	NegotiationActive   = "active"
	NegotiationAccepted = "accepted"
	NegotiationRejected = "rejected"
)

// Negotiation is a message thread anchored to exactly one bid.
type Negotiation struct {
	ID        int64     `json:"id"`
	Bid       BidRef    `json:"bid"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`

	// Joined fields (not always populated).
	BidDetail *Bid                 `json:"bid_detail,omitempty"`
	Messages  []NegotiationMessage `json:"messages,omitempty"`
}

// NegotiationMessage is one entry in a negotiation thread. The sender
// identity is denormalized from the token at send time, so the record
// preserves who sent it even if the account changes later.
type NegotiationMessage struct {
	ID            int64     `json:"id"`
	NegotiationID int64     `json:"-"`
	SenderRole    string    `json:"sender_role"`
	SenderID      int64     `json:"sender_id"`
	SenderName    string    `json:"sender_name"`
	Message       string    `json:"message"`
	CounterAmount *float64  `json:"counter_amount,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
