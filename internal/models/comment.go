package models

import (
	"time"
)

// EntryState tells a server-confirmed entry apart from one that was
// inserted optimistically and is still waiting for the backend.
type EntryState int

const (
	StateConfirmed EntryState = iota
	StatePending
)

// Author is a snapshot of the user who wrote an entry, taken at creation time
type Author struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	LevelTag string `json:"level_tag"`
}

// Entry holds the fields shared by top-level comments and replies
type Entry struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Author    Author    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	LikeCount int       `json:"like_count"`
	IsLike    bool      `json:"is_like"`
	IsAuthor  bool      `json:"is_author"`

	State   EntryState `json:"-"`
	LocalID string     `json:"-"`
}

// Pending reports whether the entry has not been confirmed by the backend yet
func (e *Entry) Pending() bool {
	return e.State == StatePending
}

// Reply is a comment attached to a top-level comment. It has no replies of its own.
type Reply struct {
	Entry
}

// Comment is a comment attached directly to an article.
// Replies holds the resident prefix (newest first); ReplyCount is the total.
type Comment struct {
	Entry
	ReplyCount int      `json:"reply_count"`
	Replies    []*Reply `json:"replies"`
}

// Clone returns a deep copy of the comment and its resident replies
func (c *Comment) Clone() *Comment {
	out := *c
	out.Replies = make([]*Reply, len(c.Replies))
	for i, r := range c.Replies {
		cp := *r
		out.Replies[i] = &cp
	}
	return &out
}

// CommentRecord is a comment or reply row as stored in the database
type CommentRecord struct {
	ID         string    `json:"id" db:"id"`
	ArticleID  string    `json:"article_id" db:"article_id"`
	ParentID   *string   `json:"parent_id,omitempty" db:"parent_id"`
	UserID     string    `json:"user_id" db:"user_id"`
	Content    string    `json:"content" db:"content"`
	LikeCount  int       `json:"like_count" db:"like_count"`
	ReplyCount int       `json:"reply_count" db:"reply_count"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`

	// Joined from users
	Author Author `json:"author" db:"-"`
	// Whether the requesting viewer has liked this row
	Liked bool `json:"is_like" db:"-"`
}

// IsReply reports whether the record is attached to another comment
func (r *CommentRecord) IsReply() bool {
	return r.ParentID != nil && *r.ParentID != ""
}

// CommentPage is one page of top-level comments
type CommentPage struct {
	Data        []*Comment `json:"data"`
	CurrentPage int        `json:"current_page"`
	HasMore     bool       `json:"has_more"`
}

// ReplyPage is one page of replies to a comment
type ReplyPage struct {
	Data        []*Reply `json:"data"`
	CurrentPage int      `json:"current_page"`
	HasMore     bool     `json:"has_more"`
	ReplyCount  int      `json:"reply_count"`
}

// LikeResult is the outcome of a like toggle
type LikeResult struct {
	CommentID string `json:"comment_id"`
	IsLike    bool   `json:"is_like"`
	LikeCount int    `json:"like_count"`
}

// CreateCommentRequest is the body of a comment or reply submission
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

// MaxCommentWords is the maximum allowed words in a comment body
const MaxCommentWords = 500

// DefaultPageSize is the number of comments or replies per page
const DefaultPageSize = 10

// ToEntry converts a row into the wire form. IsAuthor marks rows written
// by the author of the article they belong to.
func (r *CommentRecord) ToEntry(articleAuthorID string) Entry {
	author := r.Author
	if author.ID == "" {
		author.ID = r.UserID
	}
	return Entry{
		ID:        r.ID,
		Content:   r.Content,
		Author:    author,
		CreatedAt: r.CreatedAt,
		LikeCount: r.LikeCount,
		IsLike:    r.Liked,
		IsAuthor:  articleAuthorID != "" && r.UserID == articleAuthorID,
	}
}
