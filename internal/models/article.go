package models

import (
	"time"
)

// Article represents an article in the system
type Article struct {
	ID           string     `json:"id" db:"id"`
	Slug         string     `json:"slug" db:"slug"`
	Title        string     `json:"title" db:"title"`
	Excerpt      string     `json:"excerpt,omitempty" db:"excerpt"`
	Body         string     `json:"body" db:"body"`
	Category     string     `json:"category" db:"category"`
	CoverURL     string     `json:"cover_url" db:"cover_url"`
	AuthorID     string     `json:"-" db:"author_id"`
	Author       Author     `json:"author" db:"-"`
	CommentCount int        `json:"comment_count" db:"comment_count"`
	ViewCount    int        `json:"view_count" db:"view_count"`
	Status       string     `json:"status" db:"status"`
	PublishedAt  *time.Time `json:"published_at,omitempty" db:"published_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// ValidStatuses defines allowed article statuses
var ValidStatuses = map[string]bool{
	"draft":     true,
	"published": true,
}

// ArticleDetail is an article together with its first page of comments
type ArticleDetail struct {
	Article
	TargetURL       string     `json:"target_url"`
	Comments        []*Comment `json:"comments"`
	HasMoreComments bool       `json:"has_more_comments"`
}
