// Package queue defines the domain events exchanged over the message
// broker and the publisher/consumer pair around them.
package queue

import "time"

// BidPlacedEvent is published after a bid has been accepted and
// committed.  It carries enough information for downstream consumers to
// log or notify without querying the primary database.
type BidPlacedEvent struct {
	EventID   string    `json:"event_id"`
	AuctionID uint64    `json:"auction_id"`
	BidderID  uint64    `json:"bidder_id"`
	Amount    string    `json:"amount"`
	PlacedAt  time.Time `json:"placed_at"`
}

// AuctionCompletedEvent is published when a seller accepts a winner and
// the horse's ownership has been transferred.
type AuctionCompletedEvent struct {
	EventID     string `json:"event_id"`
	AuctionID   uint64 `json:"auction_id"`
	WinnerID    uint64 `json:"winner_id"`
	FinalBid    string `json:"final_bid"`
	MicrochipID string `json:"microchip_id"`
}
