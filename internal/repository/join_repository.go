package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/arabian-horse-auction/internal/model"
)

// ErrJoinRequestNotFound indicates that a join request was not located
// in the DB.
var ErrJoinRequestNotFound = errors.New("join request not found")

// JoinRepo manages persistence for seller join requests.
type JoinRepo struct {
	db *sql.DB
}

// NewJoinRepo constructs a JoinRepo with the given DB handle.
func NewJoinRepo(db *sql.DB) *JoinRepo {
	return &JoinRepo{db: db}
}

// Create inserts a pending join request.
func (r *JoinRepo) Create(ctx context.Context, jr *model.JoinRequest) error {
	const q = `INSERT INTO join_requests (user_id, motivation, status) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, jr.UserID, jr.Motivation, model.JoinPending)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	jr.ID = uint64(id)
	jr.Status = model.JoinPending
	return r.db.QueryRowContext(ctx, `SELECT created_at FROM join_requests WHERE id = ?`, jr.ID).Scan(&jr.CreatedAt)
}

// ListPending returns all undecided requests, oldest first.
func (r *JoinRepo) ListPending(ctx context.Context) ([]model.JoinRequest, error) {
	const q = `SELECT id, user_id, motivation, status, created_at, decided_at
               FROM join_requests WHERE status = ? ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, q, model.JoinPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.JoinRequest, 0)
	for rows.Next() {
		var jr model.JoinRequest
		if err := rows.Scan(&jr.ID, &jr.UserID, &jr.Motivation, &jr.Status, &jr.CreatedAt, &jr.DecidedAt); err != nil {
			return nil, err
		}
		result = append(result, jr)
	}
	return result, rows.Err()
}

// Decide moves a pending request to Approved or Rejected and returns the
// request so the caller can apply the role upgrade.  Deciding an already
// decided request returns ErrConflict.
func (r *JoinRepo) Decide(ctx context.Context, id uint64, status string) (*model.JoinRequest, error) {
	const upd = `UPDATE join_requests SET status = ?, decided_at = CURRENT_TIMESTAMP
                 WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, upd, status, id, model.JoinPending)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM join_requests WHERE id = ?`, id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrJoinRequestNotFound
			}
			return nil, err
		}
		return nil, ErrConflict
	}
	const sel = `SELECT id, user_id, motivation, status, created_at, decided_at FROM join_requests WHERE id = ?`
	var jr model.JoinRequest
	if err := r.db.QueryRowContext(ctx, sel, id).Scan(
		&jr.ID, &jr.UserID, &jr.Motivation, &jr.Status, &jr.CreatedAt, &jr.DecidedAt,
	); err != nil {
		return nil, err
	}
	return &jr, nil
}
