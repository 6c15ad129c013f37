package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/arabian-horse-auction/internal/model"
)

// ErrMessageNotFound indicates that a message was not located in the DB.
var ErrMessageNotFound = errors.New("message not found")

// MessageRepo manages persistence for direct messages between users.
type MessageRepo struct {
	db *sql.DB
}

// NewMessageRepo constructs a MessageRepo with the given DB handle.
func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Create inserts a new message.
func (r *MessageRepo) Create(ctx context.Context, m *model.Message) error {
	const q = `INSERT INTO messages (sender_id, receiver_id, microchip_id, subject, content)
               VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.SenderID, m.ReceiverID, m.MicrochipID, m.Subject, m.Content)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return r.db.QueryRowContext(ctx, `SELECT timestamp FROM messages WHERE id = ?`, m.ID).Scan(&m.Timestamp)
}

// ListInbox returns the messages received by a user, newest first.
func (r *MessageRepo) ListInbox(ctx context.Context, userID uint64) ([]model.Message, error) {
	const q = `SELECT id, sender_id, receiver_id, microchip_id, subject, content, is_read, timestamp
               FROM messages WHERE receiver_id = ? ORDER BY timestamp DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Message, 0)
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.MicrochipID,
			&m.Subject, &m.Content, &m.IsRead, &m.Timestamp); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// MarkRead flags a message as read.  Only the receiver may do so; a
// mismatch returns ErrForbidden, an unknown id ErrMessageNotFound.
func (r *MessageRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	var receiverID uint64
	err := r.db.QueryRowContext(ctx, `SELECT receiver_id FROM messages WHERE id = ?`, id).Scan(&receiverID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMessageNotFound
		}
		return err
	}
	if receiverID != userID {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx, `UPDATE messages SET is_read = 1 WHERE id = ?`, id)
	return err
}
