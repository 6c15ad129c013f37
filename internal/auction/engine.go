package auction

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/arabian-horse-auction/internal/model"
	"github.com/iliyamo/arabian-horse-auction/internal/repository"
)

// AuctionStore is the persistence surface the engine mutates auctions
// through.  The query/projection reads (ListSummaries, BidViews) are
// read-only; every write to an auction or its bids goes through the
// engine, never through a handler directly.
type AuctionStore interface {
	Create(ctx context.Context, a *model.Auction) error
	GetByID(ctx context.Context, id uint64) (*model.Auction, error)
	ListSummaries(ctx context.Context) ([]model.AuctionSummary, error)
	BidsByAuction(ctx context.Context, auctionID uint64) ([]model.Bid, error)
	BidViews(ctx context.Context, auctionID uint64) ([]model.BidView, error)
	// AppendBid persists the bid and the auction's new current_bid in a
	// single transaction, guarded by the previous current_bid value.  It
	// returns repository.ErrConflict when another writer advanced the
	// auction in between.
	AppendBid(ctx context.Context, a *model.Auction, prev decimal.Decimal, b *model.Bid) error
	PromoteUpcoming(ctx context.Context, now time.Time) (int64, error)
	ExpireLive(ctx context.Context, now time.Time) (int64, error)
	Close(ctx context.Context, id uint64, endTime time.Time) error
	// Complete marks the auction Completed with the given winner and
	// reassigns the horse to the winner's owner record, delisting it
	// from sale, all in one transaction.
	Complete(ctx context.Context, auctionID, winnerID, ownerID uint64, microchipID string) error
	Delete(ctx context.Context, id uint64) error
}

// HorseStore resolves the horse an auction references.
type HorseStore interface {
	GetProfile(ctx context.Context, microchipID string) (*model.HorseProfile, error)
}

// OwnerStore locates and creates owner records for winning bidders.
type OwnerStore interface {
	Find(ctx context.Context, userID uint64) (*model.Owner, error)
	Create(ctx context.Context, o *model.Owner) error
}

// UserStore resolves bidders and flips the verified-bidder flag.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	SetVerifiedBidder(ctx context.Context, id uint64) error
}

// EventPublisher receives domain events after the corresponding write
// has committed.  Publish failures must not fail the operation.
type EventPublisher interface {
	BidPlaced(auctionID, bidderID uint64, amount decimal.Decimal, at time.Time)
	AuctionCompleted(auctionID, winnerID uint64, finalBid decimal.Decimal, microchipID string)
}

// bidConflictRetries bounds the re-validate loop when a concurrent
// writer (another process) advances current_bid between our read and
// write.  Within one process the per-auction lock already serializes.
const bidConflictRetries = 3

// Engine owns all state transitions of an auction: time-based sweeps,
// creation, bid acceptance, winner acceptance with ownership transfer,
// administrative close and delete.
type Engine struct {
	auctions  AuctionStore
	horses    HorseStore
	owners    OwnerStore
	users     UserStore
	validator Validator
	locks     *keyedMutex
	events    EventPublisher
	log       *logrus.Logger
	now       func() time.Time
}

// NewEngine constructs an Engine.  events may be nil when no broker is
// configured; log must be non-nil.
func NewEngine(auctions AuctionStore, horses HorseStore, owners OwnerStore, users UserStore, events EventPublisher, log *logrus.Logger) *Engine {
	if auctions == nil || horses == nil || owners == nil || users == nil {
		panic("nil store passed to NewEngine")
	}
	return &Engine{
		auctions: auctions,
		horses:   horses,
		owners:   owners,
		users:    users,
		locks:    newKeyedMutex(),
		events:   events,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateInput carries the caller-supplied fields for a new auction.
type CreateInput struct {
	Name             string
	StartTime        time.Time
	EndTime          time.Time
	BasePrice        decimal.Decimal
	MinimumIncrement decimal.Decimal // zero means DefaultMinimumIncrement
	MicrochipID      string
	ImageUrl         *string
	VideoUrl         *string
	InsuranceDetails *string
}

// Detail is the read projection of a single auction: all scalar fields,
// the full horse profile including its owner chain, and the bid history
// ordered by amount descending.
type Detail struct {
	Auction *model.Auction      `json:"auction"`
	Horse   *model.HorseProfile `json:"horse"`
	Bids    []model.BidView     `json:"bids"`
}

// Create validates and persists a new auction.  The actor must be an
// Admin, or a Seller who owns the referenced horse.  The initial status
// is computed eagerly: Live when the start time has already passed,
// Upcoming otherwise.  CurrentBid starts equal to BasePrice.
func (e *Engine) Create(ctx context.Context, actor model.Actor, in CreateInput) (*model.Auction, error) {
	if actor.ID == 0 {
		return nil, unauthenticated("authentication required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalidArgument("auction name is required")
	}
	if !in.EndTime.After(in.StartTime) {
		return nil, invalidArgument("end time must be after start time")
	}
	if in.BasePrice.IsNegative() {
		return nil, invalidArgument("base price must not be negative")
	}
	inc := in.MinimumIncrement
	if inc.IsZero() {
		inc = model.DefaultMinimumIncrement
	}
	if !inc.IsPositive() {
		return nil, invalidArgument("minimum increment must be positive")
	}

	horse, err := e.horses.GetProfile(ctx, in.MicrochipID)
	if err != nil {
		if errors.Is(err, repository.ErrHorseNotFound) {
			return nil, notFound("horse not found")
		}
		return nil, err
	}
	if !actor.IsAdmin() {
		if actor.Role != model.RoleSeller || horse.OwnerUserID == nil || *horse.OwnerUserID != actor.ID {
			return nil, forbidden("you can only auction your own horses")
		}
	}

	now := e.now()
	status := model.StatusUpcoming
	if !now.Before(in.StartTime) {
		status = model.StatusLive
	}
	a := &model.Auction{
		Name:             in.Name,
		StartTime:        in.StartTime.UTC(),
		EndTime:          in.EndTime.UTC(),
		BasePrice:        in.BasePrice,
		CurrentBid:       in.BasePrice,
		MinimumIncrement: inc,
		Status:           status,
		ImageUrl:         in.ImageUrl,
		VideoUrl:         in.VideoUrl,
		InsuranceDetails: in.InsuranceDetails,
		MicrochipID:      in.MicrochipID,
		CreatedByID:      actor.ID,
	}
	if err := e.auctions.Create(ctx, a); err != nil {
		return nil, err
	}
	e.log.WithFields(logrus.Fields{
		"auction_id": a.ID,
		"microchip":  a.MicrochipID,
		"status":     a.Status,
	}).Info("auction created")
	return a, nil
}

// List runs the time-triggered status sweep and returns the list view,
// ordered by start time descending.
func (e *Engine) List(ctx context.Context) ([]model.AuctionSummary, error) {
	if err := e.Sweep(ctx); err != nil {
		return nil, err
	}
	return e.auctions.ListSummaries(ctx)
}

// Get returns the detail view of one auction.  Unlike List it does not
// persist a sweep; time-based transitions are still reflected in the
// returned status so callers never observe a stale Live auction past
// its end time.
func (e *Engine) Get(ctx context.Context, id uint64) (*Detail, error) {
	a, err := e.auctions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAuctionNotFound) {
			return nil, notFound("auction not found")
		}
		return nil, err
	}
	e.reconcile(a)
	horse, err := e.horses.GetProfile(ctx, a.MicrochipID)
	if err != nil && !errors.Is(err, repository.ErrHorseNotFound) {
		return nil, err
	}
	bids, err := e.auctions.BidViews(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{Auction: a, Horse: horse, Bids: bids}, nil
}

// reconcile applies the time-based transition predicates to a loaded
// auction in memory.  The durable transition happens on the next sweep;
// this only keeps single-auction reads and the accept path from acting
// on a stale status.
func (e *Engine) reconcile(a *model.Auction) {
	now := e.now()
	if a.Status == model.StatusUpcoming && !now.Before(a.StartTime) {
		a.Status = model.StatusLive
	}
	if a.Status == model.StatusLive && !now.Before(a.EndTime) {
		a.Status = model.StatusWaitingForSeller
	}
}

// PlaceBid validates and applies a bid.  The gates run in a fixed
// order, each with its own failure mode: authentication, the verified
// bidder deposit, auction existence, live status, end time, and finally
// the minimum increment.  On success the bid and the auction's new
// current bid are persisted atomically and the new current bid is
// returned.
func (e *Engine) PlaceBid(ctx context.Context, actor model.Actor, auctionID uint64, amount decimal.Decimal) (decimal.Decimal, error) {
	if actor.ID == 0 {
		return decimal.Zero, unauthenticated("authentication required")
	}
	user, err := e.users.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return decimal.Zero, unauthenticated("unknown user")
		}
		return decimal.Zero, err
	}
	if err := e.validator.CheckBidder(user); err != nil {
		return decimal.Zero, err
	}

	// Serialize the read-modify-write per auction: two concurrent bids
	// must never both pass the increment check against the same
	// current_bid.
	e.locks.Lock(auctionID)
	defer e.locks.Unlock(auctionID)

	for attempt := 0; ; attempt++ {
		a, err := e.auctions.GetByID(ctx, auctionID)
		if err != nil {
			if errors.Is(err, repository.ErrAuctionNotFound) {
				return decimal.Zero, notFound("auction not found")
			}
			return decimal.Zero, err
		}
		now := e.now()
		if err := e.validator.CheckTiming(a, now); err != nil {
			return decimal.Zero, err
		}
		if err := e.validator.CheckAmount(a, amount); err != nil {
			return decimal.Zero, err
		}

		prev := a.CurrentBid
		bid := &model.Bid{
			AuctionID: auctionID,
			BidderID:  actor.ID,
			Amount:    amount,
			Timestamp: now,
		}
		a.CurrentBid = amount
		err = e.auctions.AppendBid(ctx, a, prev, bid)
		if err == nil {
			e.log.WithFields(logrus.Fields{
				"auction_id": auctionID,
				"bidder_id":  actor.ID,
				"amount":     amount.String(),
			}).Info("bid accepted")
			if e.events != nil {
				e.events.BidPlaced(auctionID, actor.ID, amount, now)
			}
			return amount, nil
		}
		if errors.Is(err, repository.ErrConflict) {
			if attempt < bidConflictRetries {
				// Another writer advanced current_bid; re-validate
				// against fresh state.
				continue
			}
			return decimal.Zero, invalidState("auction is receiving too many concurrent bids, try again")
		}
		return decimal.Zero, err
	}
}

// PayInsurance marks the actor as a verified bidder.  The operation is
// idempotent by effect: repeated calls change nothing.  The actor's
// role is left untouched; verification is a capability flag, not a role
// upgrade.
func (e *Engine) PayInsurance(ctx context.Context, actor model.Actor) error {
	if actor.ID == 0 {
		return unauthenticated("authentication required")
	}
	if err := e.users.SetVerifiedBidder(ctx, actor.ID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return unauthenticated("unknown user")
		}
		return err
	}
	e.log.WithField("user_id", actor.ID).Info("insurance deposit recorded")
	return nil
}

// AcceptWinner completes an auction: the bid with the maximum amount
// wins (ties broken by earliest timestamp, then lowest id), the winning
// bidder gets an owner record if they have none, and the horse is
// reassigned and delisted.  Only the auction's creator or an Admin may
// accept.
func (e *Engine) AcceptWinner(ctx context.Context, actor model.Actor, auctionID uint64) (*model.Auction, error) {
	if actor.ID == 0 {
		return nil, unauthenticated("authentication required")
	}

	e.locks.Lock(auctionID)
	defer e.locks.Unlock(auctionID)

	a, err := e.auctions.GetByID(ctx, auctionID)
	if err != nil {
		if errors.Is(err, repository.ErrAuctionNotFound) {
			return nil, notFound("auction not found")
		}
		return nil, err
	}
	if a.CreatedByID != actor.ID && !actor.IsAdmin() {
		return nil, forbidden("only the auction creator or an admin can accept the winner")
	}
	e.reconcile(a)
	if !a.Status.CanTransition(model.StatusCompleted) {
		return nil, invalidState("auction is not awaiting a seller decision")
	}

	bids, err := e.auctions.BidsByAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	winning := winningBid(bids)
	if winning == nil {
		return nil, invalidState("no bids to accept")
	}

	owner, err := e.ensureOwner(ctx, winning.BidderID)
	if err != nil {
		return nil, err
	}
	if err := e.auctions.Complete(ctx, auctionID, winning.BidderID, owner.OwnerID, a.MicrochipID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// The row moved to a terminal state under our feet.
			return nil, invalidState("auction is no longer awaiting a seller decision")
		}
		return nil, err
	}

	a.Status = model.StatusCompleted
	winnerID := winning.BidderID
	a.WinnerID = &winnerID
	e.log.WithFields(logrus.Fields{
		"auction_id": auctionID,
		"winner_id":  winnerID,
		"final_bid":  winning.Amount.String(),
	}).Info("auction completed")
	if e.events != nil {
		e.events.AuctionCompleted(auctionID, winnerID, winning.Amount, a.MicrochipID)
	}
	return a, nil
}

// winningBid picks the bid with the maximum amount; equal amounts fall
// back to the earliest timestamp, then the lowest id.  Amounts strictly
// increase under normal operation so the tie-break is rarely exercised,
// but it keeps winner determination deterministic.
func winningBid(bids []model.Bid) *model.Bid {
	var best *model.Bid
	for i := range bids {
		b := &bids[i]
		switch {
		case best == nil:
			best = b
		case b.Amount.GreaterThan(best.Amount):
			best = b
		case b.Amount.Equal(best.Amount):
			if b.Timestamp.Before(best.Timestamp) ||
				(b.Timestamp.Equal(best.Timestamp) && b.ID < best.ID) {
				best = b
			}
		}
	}
	return best
}

// ensureOwner locates the owner record for a user, creating one when
// absent.  Creation is persisted immediately as its own write so the
// owner row exists even if the completion transaction later fails.
func (e *Engine) ensureOwner(ctx context.Context, userID uint64) (*model.Owner, error) {
	owner, err := e.owners.Find(ctx, userID)
	if err == nil {
		return owner, nil
	}
	if !errors.Is(err, repository.ErrOwnerNotFound) {
		return nil, err
	}
	owner = &model.Owner{OwnerID: userID, Since: e.now()}
	if err := e.owners.Create(ctx, owner); err != nil {
		return nil, err
	}
	e.log.WithField("owner_id", userID).Info("owner record created for winning bidder")
	return owner, nil
}

// Close is the administrative override: the auction is marked Ended and
// its end time moved to now, regardless of how far along it is.  A
// Completed auction cannot be closed; ownership has already changed
// hands.
func (e *Engine) Close(ctx context.Context, actor model.Actor, auctionID uint64) error {
	if actor.ID == 0 {
		return unauthenticated("authentication required")
	}
	if !actor.IsAdmin() {
		return forbidden("only admins can close auctions")
	}

	e.locks.Lock(auctionID)
	defer e.locks.Unlock(auctionID)

	a, err := e.auctions.GetByID(ctx, auctionID)
	if err != nil {
		if errors.Is(err, repository.ErrAuctionNotFound) {
			return notFound("auction not found")
		}
		return err
	}
	if !a.Status.CanTransition(model.StatusEnded) {
		return invalidState("auction is already %s", strings.ToLower(string(a.Status)))
	}
	if err := e.auctions.Close(ctx, auctionID, e.now()); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// Another writer moved the auction to a terminal state
			// between our read and the guarded write.
			return invalidState("auction has already finished")
		}
		return err
	}
	e.log.WithField("auction_id", auctionID).Info("auction closed by admin")
	return nil
}

// Delete hard-deletes an auction together with all of its bids.
// Admin-only; there is no soft delete or audit trail.
func (e *Engine) Delete(ctx context.Context, actor model.Actor, auctionID uint64) error {
	if actor.ID == 0 {
		return unauthenticated("authentication required")
	}
	if !actor.IsAdmin() {
		return forbidden("only admins can delete auctions")
	}
	if err := e.auctions.Delete(ctx, auctionID); err != nil {
		if errors.Is(err, repository.ErrAuctionNotFound) {
			return notFound("auction not found")
		}
		return err
	}
	e.log.WithField("auction_id", auctionID).Info("auction deleted")
	return nil
}

// Sweep applies the two time-based transitions: Upcoming auctions whose
// start time has passed go Live, Live auctions whose end time has
// passed go WaitingForSeller.  The SQL predicates repeat the status
// guard so a sweep can never regress a status.
func (e *Engine) Sweep(ctx context.Context) error {
	now := e.now()
	promoted, err := e.auctions.PromoteUpcoming(ctx, now)
	if err != nil {
		return err
	}
	expired, err := e.auctions.ExpireLive(ctx, now)
	if err != nil {
		return err
	}
	if promoted > 0 || expired > 0 {
		e.log.WithFields(logrus.Fields{
			"went_live":       promoted,
			"awaiting_seller": expired,
		}).Info("status sweep applied")
	}
	return nil
}
