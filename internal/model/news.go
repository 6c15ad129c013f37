package model

import "time"

// NewsPost is a published news article.  Posts are prepared outside the
// API (the scraping and translation pipeline is external) and stored
// here ready for display.
type NewsPost struct {
	ID          uint64    // news_posts.id
	Title       string    // news_posts.title
	Content     string    // news_posts.content
	SourceUrl   *string   // news_posts.source_url (nullable)
	ImageUrl    *string   // news_posts.image_url (nullable)
	PublishedAt time.Time // news_posts.published_at
}
