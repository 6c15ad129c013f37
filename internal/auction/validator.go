package auction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/arabian-horse-auction/internal/model"
)

// Validator centralizes the bid admission rules: the verified-bidder
// gate, auction timing checks and the monotonic minimum-increment rule.
// Keeping the rules here lets any future bulk/import bidding path reuse
// them unchanged.
type Validator struct{}

// CheckBidder enforces the platform-wide verified-bidder gate.  A user
// must have paid the refundable insurance deposit before their first
// bid on any auction.
func (Validator) CheckBidder(u *model.User) error {
	if !u.IsVerifiedBidder {
		return paymentRequired("you must pay the insurance deposit to bid")
	}
	return nil
}

// CheckTiming verifies that the auction is open for bidding at the
// given instant.  The end-time comparison is deliberately kept even
// though the status sweep should have moved an expired auction out of
// Live already: the sweep is lazy and bounded only by read frequency.
func (Validator) CheckTiming(a *model.Auction, now time.Time) error {
	if a.Status != model.StatusLive {
		return invalidState("auction is not live")
	}
	if now.After(a.EndTime) {
		return invalidState("auction has ended")
	}
	return nil
}

// CheckAmount enforces the minimum-increment rule.  The rejection
// message reports the smallest acceptable amount.
func (Validator) CheckAmount(a *model.Auction, amount decimal.Decimal) error {
	min := a.CurrentBid.Add(a.MinimumIncrement)
	if amount.LessThan(min) {
		return invalidArgument("bid must be at least %s", min.String())
	}
	return nil
}
