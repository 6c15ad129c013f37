package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/arabian-horse-auction/internal/model"
)

// ErrNewsNotFound indicates that a news post was not located in the DB.
var ErrNewsNotFound = errors.New("news post not found")

// NewsRepo manages persistence for news posts.  Posts arrive already
// prepared; the scraping and translation pipeline lives outside the API.
type NewsRepo struct {
	db *sql.DB
}

// NewNewsRepo constructs a NewsRepo with the given DB handle.
func NewNewsRepo(db *sql.DB) *NewsRepo {
	return &NewsRepo{db: db}
}

// Create inserts a news post.
func (r *NewsRepo) Create(ctx context.Context, p *model.NewsPost) error {
	const q = `INSERT INTO news_posts (title, content, source_url, image_url) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, p.Title, p.Content, p.SourceUrl, p.ImageUrl)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return r.db.QueryRowContext(ctx, `SELECT published_at FROM news_posts WHERE id = ?`, p.ID).Scan(&p.PublishedAt)
}

// List returns all posts, newest first.
func (r *NewsRepo) List(ctx context.Context) ([]model.NewsPost, error) {
	const q = `SELECT id, title, content, source_url, image_url, published_at
               FROM news_posts ORDER BY published_at DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.NewsPost, 0)
	for rows.Next() {
		var p model.NewsPost
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.SourceUrl, &p.ImageUrl, &p.PublishedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// Delete removes a post by id.
func (r *NewsRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM news_posts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNewsNotFound
	}
	return nil
}
