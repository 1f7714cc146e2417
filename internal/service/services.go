package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/sporthub-api/internal/config"
	"github.com/sporthub-api/internal/cooldown"
	"github.com/sporthub-api/internal/metrics"
	"github.com/sporthub-api/internal/models"
	"github.com/sporthub-api/internal/repository"
	"github.com/sporthub-api/internal/validation"
)

var (
	// ErrArticleNotFound is returned when the article does not exist
	ErrArticleNotFound = errors.New("article not found")
	// ErrCommentNotFound is returned when the comment does not exist
	ErrCommentNotFound = errors.New("comment not found")
	// ErrUserNotFound is returned when the user does not exist
	ErrUserNotFound = errors.New("user not found")
	// ErrUnauthorized is returned for writes without a known viewer
	ErrUnauthorized = errors.New("login required")
	// ErrNestedReply is returned when a reply targets another reply
	ErrNestedReply = errors.New("replies cannot be replied to")
)

// CommentService defines the interface for comment thread operations.
// Pages are 1-based. viewerID may be empty for anonymous reads.
type CommentService interface {
	ListComments(ctx context.Context, articleID, viewerID string, page int) (*models.CommentPage, error)
	ListReplies(ctx context.Context, commentID, viewerID string, page int) (*models.ReplyPage, error)
	PostComment(ctx context.Context, articleID, userID, content string) (*models.Comment, error)
	PostReply(ctx context.Context, commentID, userID, content string) (*models.Reply, error)
	ToggleLike(ctx context.Context, commentID, userID string) (*models.LikeResult, error)
	Count(ctx context.Context) (int, error)
}

// ArticleService defines the interface for article reads
type ArticleService interface {
	GetArticle(ctx context.Context, articleID, viewerID string) (*models.ArticleDetail, error)
	Count(ctx context.Context) (int, error)
}

// UserService defines the interface for the mock login and profiles
type UserService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, update *models.ProfileUpdate) (*models.User, error)
	Count(ctx context.Context) (int, error)
}

// Services holds all service interfaces
type Services struct {
	Comment CommentService
	Article ArticleService
	User    UserService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, limiter cooldown.Limiter, m *metrics.Metrics, cfg *config.Config, log zerolog.Logger) *Services {
	v := validation.NewValidator(cfg.Comments.MaxWords)
	commentSvc := newCommentService(repos, limiter, v, m, cfg.Comments, log)

	return &Services{
		Comment: commentSvc,
		Article: newArticleService(repos.Article, commentSvc, log),
		User:    newUserService(repos.User, v, log),
	}
}
