package auction

import (
	"testing"
	"time"

	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/arabian-horse-auction/internal/model"
)

func TestCheckBidder(t *testing.T) {
	var v Validator
	err := v.CheckBidder(&model.User{IsVerifiedBidder: false})
	check.Equal(t, KindPaymentRequired, KindOf(err))
	check.NoError(t, v.CheckBidder(&model.User{IsVerifiedBidder: true}))
}

func TestCheckTiming(t *testing.T) {
	var v Validator
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := &model.Auction{Status: model.StatusLive, EndTime: now.Add(time.Hour)}

	check.NoError(t, v.CheckTiming(a, now))

	a.Status = model.StatusUpcoming
	check.Equal(t, KindInvalidState, KindOf(v.CheckTiming(a, now)))

	a.Status = model.StatusLive
	check.Equal(t, KindInvalidState, KindOf(v.CheckTiming(a, now.Add(2*time.Hour))))
}

func TestCheckAmount(t *testing.T) {
	var v Validator
	a := &model.Auction{
		CurrentBid:       decimal.NewFromInt(100000),
		MinimumIncrement: decimal.NewFromInt(1000),
	}

	err := v.CheckAmount(a, decimal.NewFromInt(100999))
	check.Equal(t, KindInvalidArgument, KindOf(err))
	check.Equal(t, "bid must be at least 101000", err.Error())

	// Exactly the floor is acceptable.
	check.NoError(t, v.CheckAmount(a, decimal.NewFromInt(101000)))
	check.NoError(t, v.CheckAmount(a, decimal.NewFromInt(250000)))
}
