package repository

import (
	"context"
	"errors"

	"github.com/sporthub-api/internal/database"
	"github.com/sporthub-api/internal/models"
)

var (
	// ErrNotFound is returned by writes that reference a missing row
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint is violated
	ErrDuplicate = errors.New("record already exists")
	// ErrInvalidParent is returned when a reply targets a reply or a comment of another article
	ErrInvalidParent = errors.New("parent is not a top-level comment of this article")
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	// Upsert inserts user unless its email is taken, and returns the stored row
	Upsert(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Count(ctx context.Context) (int, error)
}

// ArticleRepository defines the interface for article data operations
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id string) (*models.Article, error)
	IncrementViews(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// CommentRepository defines the interface for comment and reply data operations.
// viewerID may be empty; rows are then never reported as liked.
type CommentRepository interface {
	// Create inserts a comment or reply and bumps the parent's reply count
	// and the article's comment count in the same transaction
	Create(ctx context.Context, comment *models.CommentRecord) error
	GetByID(ctx context.Context, id string) (*models.CommentRecord, error)
	// ListTopLevel returns top-level comments of an article, newest first
	ListTopLevel(ctx context.Context, articleID, viewerID string, limit, offset int) ([]*models.CommentRecord, error)
	// ListReplies returns replies to one comment, newest first
	ListReplies(ctx context.Context, parentID, viewerID string, limit, offset int) ([]*models.CommentRecord, error)
	// ListLatestReplies returns up to perParent newest replies for each parent
	ListLatestReplies(ctx context.Context, parentIDs []string, viewerID string, perParent int) (map[string][]*models.CommentRecord, error)
	// ToggleLike flips userID's like on a comment and returns the new state
	ToggleLike(ctx context.Context, commentID, userID string) (*models.LikeResult, error)
	Count(ctx context.Context) (int, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	User    UserRepository
	Article ArticleRepository
	Comment CommentRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		User:    NewUserRepo(db),
		Article: NewArticleRepo(db),
		Comment: NewCommentRepo(db),
	}
}

// Offset converts a 1-based page into a row offset
func Offset(page, size int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * size
}
