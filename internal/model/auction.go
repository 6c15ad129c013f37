package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuctionStatus enumerates the lifecycle states of an auction.  The
// values are stored verbatim in the auctions.status column.
type AuctionStatus string

const (
	StatusUpcoming         AuctionStatus = "Upcoming"         // scheduled, bidding not yet open
	StatusLive             AuctionStatus = "Live"             // open for bidding
	StatusWaitingForSeller AuctionStatus = "WaitingForSeller" // bidding closed, awaiting seller decision
	StatusCompleted        AuctionStatus = "Completed"        // winner accepted, ownership transferred
	StatusEnded            AuctionStatus = "Ended"            // closed without a completed sale
)

// Terminal reports whether the status admits no further transitions.
func (s AuctionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusEnded
}

// CanTransition reports whether moving from s to next is a legal forward
// transition.  Statuses never regress; the only lateral move is the
// administrative close, which may jump from any non-terminal state
// straight to Ended.
func (s AuctionStatus) CanTransition(next AuctionStatus) bool {
	if s.Terminal() {
		return false
	}
	switch next {
	case StatusLive:
		return s == StatusUpcoming
	case StatusWaitingForSeller:
		return s == StatusLive
	case StatusCompleted:
		return s == StatusWaitingForSeller
	case StatusEnded:
		return true // admin close from any non-terminal state
	}
	return false
}

// Auction represents a scheduled sale of a single horse.  BasePrice and
// CurrentBid are equal at creation time; CurrentBid then only ever
// increases through accepted bids.
//
// Fields:
//
//	ID               – primary key identifier.
//	Name             – display name of the auction.
//	StartTime        – when bidding opens (UTC).
//	EndTime          – when bidding closes (UTC); moved forward on admin close.
//	BasePrice        – opening price.
//	CurrentBid       – highest accepted bid so far (>= BasePrice).
//	MinimumIncrement – smallest amount a new bid must add on top of
//	                   CurrentBid (> 0, defaults to 1000).
//	Status           – lifecycle state, see AuctionStatus.
//	ImageUrl         – optional promotional image.
//	VideoUrl         – optional promotional video.
//	InsuranceDetails – optional free-form insurance text.
//	MicrochipID      – horse being auctioned (immutable after creation).
//	CreatedByID      – user who created the auction.
//	WinnerID         – winning bidder, set only on completion.
type Auction struct {
	ID               uint64          // auctions.id
	Name             string          // auctions.name
	StartTime        time.Time       // auctions.start_time
	EndTime          time.Time       // auctions.end_time
	BasePrice        decimal.Decimal // auctions.base_price
	CurrentBid       decimal.Decimal // auctions.current_bid
	MinimumIncrement decimal.Decimal // auctions.minimum_increment
	Status           AuctionStatus   // auctions.status
	ImageUrl         *string         // auctions.image_url (nullable)
	VideoUrl         *string         // auctions.video_url (nullable)
	InsuranceDetails *string         // auctions.insurance_details (nullable)
	MicrochipID      string          // auctions.microchip_id
	CreatedByID      uint64          // auctions.created_by_id
	WinnerID         *uint64         // auctions.winner_id (nullable)
	CreatedAt        time.Time       // auctions.created_at
	UpdatedAt        time.Time       // auctions.updated_at
}

// AuctionSummary is the denormalized list-view row: auction scalars plus
// a horse preview and an aggregate bid count.  Full bid history is only
// shipped on the detail view.
type AuctionSummary struct {
	ID         uint64          `json:"id"`
	Name       string          `json:"name"`
	StartTime  time.Time       `json:"start_time"`
	EndTime    time.Time       `json:"end_time"`
	BasePrice  decimal.Decimal `json:"base_price"`
	CurrentBid decimal.Decimal `json:"current_bid"`
	Status     AuctionStatus   `json:"status"`
	ImageUrl   *string         `json:"image_url"`
	VideoUrl   *string         `json:"video_url"`
	HorseName  string          `json:"horse_name"`
	HorseImage *string         `json:"horse_image"`
	HorseBreed string          `json:"horse_breed"`
	BidCount   int             `json:"bid_count"`
}

// DefaultMinimumIncrement is applied when an auction is created without
// an explicit increment.
var DefaultMinimumIncrement = decimal.NewFromInt(1000)
