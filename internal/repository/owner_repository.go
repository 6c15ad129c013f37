package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/arabian-horse-auction/internal/model"
)

// ErrOwnerNotFound indicates that a user has no owner record yet.
var ErrOwnerNotFound = errors.New("owner not found")

// OwnerRepo manages persistence for owner records, the proxy entity
// linking user accounts to the horses they hold.
type OwnerRepo struct {
	db *sql.DB
}

// NewOwnerRepo constructs an OwnerRepo with the given DB handle.
func NewOwnerRepo(db *sql.DB) *OwnerRepo {
	return &OwnerRepo{db: db}
}

// Find returns the owner record keyed by the given user id, or
// ErrOwnerNotFound when none exists.
func (r *OwnerRepo) Find(ctx context.Context, userID uint64) (*model.Owner, error) {
	const q = `SELECT owner_id, preferences, since FROM owners WHERE owner_id = ?`
	var o model.Owner
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&o.OwnerID, &o.Preferences, &o.Since)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}
	return &o, nil
}

// Create inserts a new owner record.  OwnerID shares the users id space,
// so the caller supplies it.
func (r *OwnerRepo) Create(ctx context.Context, o *model.Owner) error {
	const q = `INSERT INTO owners (owner_id, preferences, since) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, o.OwnerID, o.Preferences, o.Since)
	return err
}
