package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bid records a single accepted bid on an auction.  Bids are immutable
// once persisted: no edits, no retraction.  The timestamp is assigned by
// the server at acceptance, never taken from the client.
//
// Fields:
//
//	ID        – primary key identifier.
//	AuctionID – auction the bid belongs to.
//	BidderID  – user who placed the bid.
//	Amount    – bid amount; equals the auction's CurrentBid at the moment
//	            of acceptance.
//	Timestamp – server-assigned acceptance time (UTC).
type Bid struct {
	ID        uint64          // bids.id
	AuctionID uint64          // bids.auction_id
	BidderID  uint64          // bids.bidder_id
	Amount    decimal.Decimal // bids.amount
	Timestamp time.Time       // bids.timestamp
}

// BidView is a detail-view bid annotated with the bidder's display name.
type BidView struct {
	ID         uint64          `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	Timestamp  time.Time       `json:"timestamp"`
	BidderName string          `json:"bidder_name"`
}
