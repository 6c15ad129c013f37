package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/arabian-horse-auction/internal/model"
)

// ErrHorseNotFound indicates that a horse was not located in the DB.
var ErrHorseNotFound = errors.New("horse not found")

// HorseRepo manages persistence for horse profiles.
type HorseRepo struct {
	db *sql.DB
}

// NewHorseRepo constructs a HorseRepo with the given DB handle.
func NewHorseRepo(db *sql.DB) *HorseRepo {
	return &HorseRepo{db: db}
}

const horseColumns = `h.microchip_id, h.name, h.age, h.gender, h.breed, h.image_url,
    h.owner_id, h.price, h.is_for_sale, h.created_at, h.updated_at`

func scanHorse(row interface{ Scan(...interface{}) error }, h *model.Horse) error {
	return row.Scan(
		&h.MicrochipID, &h.Name, &h.Age, &h.Gender, &h.Breed, &h.ImageUrl,
		&h.OwnerID, &h.Price, &h.IsForSale, &h.CreatedAt, &h.UpdatedAt,
	)
}

// Create inserts a new horse profile.  MicrochipID is the caller-supplied
// primary key; a duplicate chip id is reported as ErrConflict, either by
// the pre-check or by the primary key when a concurrent registration
// slips past it.
func (r *HorseRepo) Create(ctx context.Context, h *model.Horse) error {
	var exists int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM horses WHERE microchip_id = ?`, h.MicrochipID).Scan(&exists)
	if err == nil {
		return ErrConflict
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	const q = `INSERT INTO horses
        (microchip_id, name, age, gender, breed, image_url, owner_id, price, is_for_sale)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q,
		h.MicrochipID, h.Name, h.Age, h.Gender, h.Breed, h.ImageUrl,
		h.OwnerID, h.Price, h.IsForSale,
	); err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	const sel = `SELECT created_at, updated_at FROM horses WHERE microchip_id = ?`
	return r.db.QueryRowContext(ctx, sel, h.MicrochipID).Scan(&h.CreatedAt, &h.UpdatedAt)
}

// GetProfile returns a horse together with its owner chain: the owner's
// underlying user id and display name, when an owner is assigned.  It
// returns ErrHorseNotFound if there is no matching row.
func (r *HorseRepo) GetProfile(ctx context.Context, microchipID string) (*model.HorseProfile, error) {
	const q = `SELECT ` + horseColumns + `, u.id, u.full_name
               FROM horses h
               LEFT JOIN owners o ON o.owner_id = h.owner_id
               LEFT JOIN users u ON u.id = o.owner_id
               WHERE h.microchip_id = ?`
	var p model.HorseProfile
	err := r.db.QueryRowContext(ctx, q, microchipID).Scan(
		&p.MicrochipID, &p.Name, &p.Age, &p.Gender, &p.Breed, &p.ImageUrl,
		&p.OwnerID, &p.Price, &p.IsForSale, &p.CreatedAt, &p.UpdatedAt,
		&p.OwnerUserID, &p.OwnerName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHorseNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListForSale returns every horse currently listed on the sales board.
func (r *HorseRepo) ListForSale(ctx context.Context) ([]model.Horse, error) {
	const q = `SELECT ` + horseColumns + ` FROM horses h WHERE h.is_for_sale = 1 ORDER BY h.updated_at DESC`
	return r.list(ctx, q)
}

// ListAll returns every registered horse, newest registrations first.
func (r *HorseRepo) ListAll(ctx context.Context) ([]model.Horse, error) {
	const q = `SELECT ` + horseColumns + ` FROM horses h ORDER BY h.created_at DESC`
	return r.list(ctx, q)
}

// ListByOwner returns all horses held by the owner record of the given
// user id.
func (r *HorseRepo) ListByOwner(ctx context.Context, userID uint64) ([]model.Horse, error) {
	const q = `SELECT ` + horseColumns + ` FROM horses h WHERE h.owner_id = ? ORDER BY h.name ASC`
	return r.list(ctx, q, userID)
}

func (r *HorseRepo) list(ctx context.Context, q string, args ...interface{}) ([]model.Horse, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Horse, 0)
	for rows.Next() {
		var h model.Horse
		if err := scanHorse(rows, &h); err != nil {
			return nil, err
		}
		result = append(result, h)
	}
	return result, rows.Err()
}

// SetListing flips the sales-board listing of a horse owned by the given
// user.  Listing requires a price; delisting clears it.  It returns
// ErrHorseNotFound when the horse does not exist and ErrForbidden when
// it belongs to someone else.
func (r *HorseRepo) SetListing(ctx context.Context, microchipID string, userID uint64, forSale bool, price *decimal.Decimal) error {
	var ownerID *uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT owner_id FROM horses WHERE microchip_id = ?`, microchipID,
	).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrHorseNotFound
		}
		return err
	}
	if ownerID == nil || *ownerID != userID {
		return ErrForbidden
	}
	const q = `UPDATE horses SET is_for_sale = ?, price = ?, updated_at = CURRENT_TIMESTAMP
               WHERE microchip_id = ?`
	_, err = r.db.ExecContext(ctx, q, forSale, price, microchipID)
	return err
}
