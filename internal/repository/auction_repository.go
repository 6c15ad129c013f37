// Package repository contains data access logic for the auction domain.
// This file holds the AuctionRepo, which persists auctions and their bids.
// All money columns are DECIMAL and scanned into shopspring decimals so no
// floating point ever touches a price.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/arabian-horse-auction/internal/model"
)

// ErrAuctionNotFound indicates that an auction was not located in the DB.
var ErrAuctionNotFound = errors.New("auction not found")

// AuctionRepo manages persistence for auctions and bids.
type AuctionRepo struct {
	db *sql.DB
}

// NewAuctionRepo constructs an AuctionRepo with the given DB handle.
func NewAuctionRepo(db *sql.DB) *AuctionRepo {
	return &AuctionRepo{db: db}
}

const auctionColumns = `id, name, start_time, end_time, base_price, current_bid,
    minimum_increment, status, image_url, video_url, insurance_details,
    microchip_id, created_by_id, winner_id, created_at, updated_at`

func scanAuction(row interface{ Scan(...interface{}) error }) (*model.Auction, error) {
	var a model.Auction
	err := row.Scan(
		&a.ID, &a.Name, &a.StartTime, &a.EndTime, &a.BasePrice, &a.CurrentBid,
		&a.MinimumIncrement, &a.Status, &a.ImageUrl, &a.VideoUrl, &a.InsuranceDetails,
		&a.MicrochipID, &a.CreatedByID, &a.WinnerID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new auction and assigns the generated ID back to the
// struct, then re-reads the row to pick up DB-assigned timestamps.
func (r *AuctionRepo) Create(ctx context.Context, a *model.Auction) error {
	const q = `INSERT INTO auctions
        (name, start_time, end_time, base_price, current_bid, minimum_increment,
         status, image_url, video_url, insurance_details, microchip_id, created_by_id)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		a.Name, a.StartTime, a.EndTime, a.BasePrice, a.CurrentBid, a.MinimumIncrement,
		a.Status, a.ImageUrl, a.VideoUrl, a.InsuranceDetails, a.MicrochipID, a.CreatedByID,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM auctions WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, a.ID).Scan(&a.CreatedAt, &a.UpdatedAt)
}

// GetByID retrieves an auction by its ID.  It returns ErrAuctionNotFound
// if there is no matching row.
func (r *AuctionRepo) GetByID(ctx context.Context, id uint64) (*model.Auction, error) {
	const q = `SELECT ` + auctionColumns + ` FROM auctions WHERE id = ?`
	a, err := scanAuction(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAuctionNotFound
		}
		return nil, err
	}
	return a, nil
}

// ListSummaries returns the denormalized list view for every auction,
// ordered by start time descending: auction scalars, a horse preview and
// the aggregate bid count.  Full bid history is deliberately excluded.
func (r *AuctionRepo) ListSummaries(ctx context.Context) ([]model.AuctionSummary, error) {
	const q = `SELECT a.id, a.name, a.start_time, a.end_time, a.base_price, a.current_bid,
                      a.status, a.image_url, a.video_url,
                      h.name, h.image_url, h.breed,
                      (SELECT COUNT(*) FROM bids b WHERE b.auction_id = a.id)
               FROM auctions a
               JOIN horses h ON h.microchip_id = a.microchip_id
               ORDER BY a.start_time DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.AuctionSummary, 0)
	for rows.Next() {
		var s model.AuctionSummary
		if err := rows.Scan(
			&s.ID, &s.Name, &s.StartTime, &s.EndTime, &s.BasePrice, &s.CurrentBid,
			&s.Status, &s.ImageUrl, &s.VideoUrl,
			&s.HorseName, &s.HorseImage, &s.HorseBreed, &s.BidCount,
		); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// BidsByAuction returns the raw bids of an auction in insertion order.
// Used by winner determination, which needs bidder ids and timestamps.
func (r *AuctionRepo) BidsByAuction(ctx context.Context, auctionID uint64) ([]model.Bid, error) {
	const q = `SELECT id, auction_id, bidder_id, amount, timestamp
               FROM bids WHERE auction_id = ? ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var bids []model.Bid
	for rows.Next() {
		var b model.Bid
		if err := rows.Scan(&b.ID, &b.AuctionID, &b.BidderID, &b.Amount, &b.Timestamp); err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}
	return bids, rows.Err()
}

// BidViews returns the detail-view bid history ordered by amount
// descending (highest bid first), each row annotated with the bidder's
// display name.
func (r *AuctionRepo) BidViews(ctx context.Context, auctionID uint64) ([]model.BidView, error) {
	const q = `SELECT b.id, b.amount, b.timestamp, u.full_name
               FROM bids b
               JOIN users u ON u.id = b.bidder_id
               WHERE b.auction_id = ?
               ORDER BY b.amount DESC, b.timestamp ASC`
	rows, err := r.db.QueryContext(ctx, q, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	views := make([]model.BidView, 0)
	for rows.Next() {
		var v model.BidView
		if err := rows.Scan(&v.ID, &v.Amount, &v.Timestamp, &v.BidderName); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// AppendBid persists a bid and advances the auction's current_bid in a
// single transaction.  The UPDATE is guarded by the previous current_bid
// value; when another writer got there first no row matches and
// ErrConflict is returned so the caller can re-validate and retry.
func (r *AuctionRepo) AppendBid(ctx context.Context, a *model.Auction, prev decimal.Decimal, b *model.Bid) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const upd = `UPDATE auctions SET current_bid = ?, updated_at = CURRENT_TIMESTAMP
                 WHERE id = ? AND status = 'Live' AND current_bid = ?`
	res, err := tx.ExecContext(ctx, upd, b.Amount, a.ID, prev)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}

	const ins = `INSERT INTO bids (auction_id, bidder_id, amount, timestamp) VALUES (?, ?, ?, ?)`
	bres, err := tx.ExecContext(ctx, ins, b.AuctionID, b.BidderID, b.Amount, b.Timestamp)
	if err != nil {
		return err
	}
	id, err := bres.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// PromoteUpcoming moves every Upcoming auction whose start time has
// passed to Live.  The status guard in the predicate makes the sweep
// idempotent and regression-free.
func (r *AuctionRepo) PromoteUpcoming(ctx context.Context, now time.Time) (int64, error) {
	const q = `UPDATE auctions SET status = 'Live', updated_at = CURRENT_TIMESTAMP
               WHERE status = 'Upcoming' AND start_time <= ?`
	res, err := r.db.ExecContext(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ExpireLive moves every Live auction whose end time has passed to
// WaitingForSeller.
func (r *AuctionRepo) ExpireLive(ctx context.Context, now time.Time) (int64, error) {
	const q = `UPDATE auctions SET status = 'WaitingForSeller', updated_at = CURRENT_TIMESTAMP
               WHERE status = 'Live' AND end_time <= ?`
	res, err := r.db.ExecContext(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close is the administrative override: status becomes Ended and the end
// time is moved to the close instant.  The predicate excludes terminal
// states so a close racing a completion can never regress the row; zero
// affected rows on an existing auction reports ErrConflict.
func (r *AuctionRepo) Close(ctx context.Context, id uint64, endTime time.Time) error {
	const q = `UPDATE auctions SET status = 'Ended', end_time = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ? AND status NOT IN ('Completed', 'Ended')`
	res, err := r.db.ExecContext(ctx, q, endTime, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM auctions WHERE id = ?`, id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrAuctionNotFound
			}
			return err
		}
		return ErrConflict
	}
	return nil
}

// Complete finalizes an accepted auction in one transaction: status and
// winner on the auction row, then ownership transfer and delisting on
// the horse row.
func (r *AuctionRepo) Complete(ctx context.Context, auctionID, winnerID, ownerID uint64, microchipID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// The row may still read Live when the end time passed but no sweep
	// ran since; the engine has already verified the transition.
	const updAuction = `UPDATE auctions
                        SET status = 'Completed', winner_id = ?, updated_at = CURRENT_TIMESTAMP
                        WHERE id = ? AND status IN ('WaitingForSeller', 'Live')`
	res, err := tx.ExecContext(ctx, updAuction, winnerID, auctionID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}

	const updHorse = `UPDATE horses
                      SET owner_id = ?, is_for_sale = 0, updated_at = CURRENT_TIMESTAMP
                      WHERE microchip_id = ?`
	if _, err := tx.ExecContext(ctx, updHorse, ownerID, microchipID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Delete removes an auction and all of its bids.  Bids are deleted
// explicitly inside the transaction even though the FK cascades, so the
// cleanup does not depend on schema options.
func (r *AuctionRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bids WHERE auction_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM auctions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAuctionNotFound
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
