package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sporthub-api/internal/config"
	"github.com/sporthub-api/internal/cooldown"
	"github.com/sporthub-api/internal/metrics"
	"github.com/sporthub-api/internal/models"
	"github.com/sporthub-api/internal/repository"
	"github.com/sporthub-api/internal/validation"
)

// commentService is the concrete implementation of CommentService
type commentService struct {
	comments  repository.CommentRepository
	articles  repository.ArticleRepository
	users     repository.UserRepository
	limiter   cooldown.Limiter
	validator *validation.Validator
	metrics   *metrics.Metrics
	cfg       config.CommentConfig
	log       zerolog.Logger
	now       func() time.Time
}

func newCommentService(
	repos *repository.Repositories,
	limiter cooldown.Limiter,
	v *validation.Validator,
	m *metrics.Metrics,
	cfg config.CommentConfig,
	log zerolog.Logger,
) *commentService {
	if m == nil {
		m = metrics.New(nil)
	}
	return &commentService{
		comments:  repos.Comment,
		articles:  repos.Article,
		users:     repos.User,
		limiter:   limiter,
		validator: v,
		metrics:   m,
		cfg:       cfg,
		log:       log.With().Str("service", "comment").Logger(),
		now:       time.Now,
	}
}

// ListComments returns one page of an article's top-level comments, newest
// first, each carrying its newest replies.
func (s *commentService) ListComments(ctx context.Context, articleID, viewerID string, page int) (*models.CommentPage, error) {
	article, err := s.article(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}

	size := s.cfg.PageSize
	records, err := s.comments.ListTopLevel(ctx, articleID, viewerID, size+1, repository.Offset(page, size))
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	hasMore := len(records) > size
	if hasMore {
		records = records[:size]
	}

	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	embedded, err := s.comments.ListLatestReplies(ctx, ids, viewerID, s.cfg.EmbeddedReplies)
	if err != nil {
		return nil, fmt.Errorf("list embedded replies: %w", err)
	}

	data := make([]*models.Comment, len(records))
	for i, r := range records {
		c := &models.Comment{
			Entry:      r.ToEntry(article.AuthorID),
			ReplyCount: r.ReplyCount,
			Replies:    make([]*models.Reply, 0, len(embedded[r.ID])),
		}
		for _, reply := range embedded[r.ID] {
			c.Replies = append(c.Replies, &models.Reply{Entry: reply.ToEntry(article.AuthorID)})
		}
		data[i] = c
	}

	return &models.CommentPage{Data: data, CurrentPage: page, HasMore: hasMore}, nil
}

// ListReplies returns one page of replies to a top-level comment, newest first
func (s *commentService) ListReplies(ctx context.Context, commentID, viewerID string, page int) (*models.ReplyPage, error) {
	parent, err := s.topLevel(ctx, commentID)
	if err != nil {
		return nil, err
	}
	article, err := s.article(ctx, parent.ArticleID)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}

	size := s.cfg.ReplyPageSize
	records, err := s.comments.ListReplies(ctx, commentID, viewerID, size+1, repository.Offset(page, size))
	if err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	hasMore := len(records) > size
	if hasMore {
		records = records[:size]
	}

	data := make([]*models.Reply, len(records))
	for i, r := range records {
		data[i] = &models.Reply{Entry: r.ToEntry(article.AuthorID)}
	}

	return &models.ReplyPage{
		Data:        data,
		CurrentPage: page,
		HasMore:     hasMore,
		ReplyCount:  parent.ReplyCount,
	}, nil
}

// PostComment creates a top-level comment by userID
func (s *commentService) PostComment(ctx context.Context, articleID, userID, content string) (*models.Comment, error) {
	author, clean, err := s.prepare(ctx, userID, content)
	if err != nil {
		return nil, err
	}
	article, err := s.article(ctx, articleID)
	if err != nil {
		return nil, err
	}

	rec := &models.CommentRecord{
		ID:        uuid.NewString(),
		ArticleID: article.ID,
		UserID:    author.ID,
		Content:   clean,
		CreatedAt: s.now().UTC(),
		Author:    author.AsAuthor(),
	}
	if err := s.insert(ctx, rec); err != nil {
		return nil, err
	}

	s.metrics.CommentCreated("comment")
	s.log.Info().
		Str("comment_id", rec.ID).
		Str("article_id", rec.ArticleID).
		Str("user_id", rec.UserID).
		Msg("Comment created")

	return &models.Comment{Entry: rec.ToEntry(article.AuthorID), Replies: []*models.Reply{}}, nil
}

// PostReply creates a reply by userID under a top-level comment
func (s *commentService) PostReply(ctx context.Context, commentID, userID, content string) (*models.Reply, error) {
	author, clean, err := s.prepare(ctx, userID, content)
	if err != nil {
		return nil, err
	}
	parent, err := s.topLevel(ctx, commentID)
	if err != nil {
		return nil, err
	}
	article, err := s.article(ctx, parent.ArticleID)
	if err != nil {
		return nil, err
	}

	parentID := parent.ID
	rec := &models.CommentRecord{
		ID:        uuid.NewString(),
		ArticleID: parent.ArticleID,
		ParentID:  &parentID,
		UserID:    author.ID,
		Content:   clean,
		CreatedAt: s.now().UTC(),
		Author:    author.AsAuthor(),
	}
	if err := s.insert(ctx, rec); err != nil {
		return nil, err
	}

	s.metrics.CommentCreated("reply")
	s.log.Info().
		Str("comment_id", rec.ID).
		Str("parent_id", parentID).
		Str("user_id", rec.UserID).
		Msg("Reply created")

	return &models.Reply{Entry: rec.ToEntry(article.AuthorID)}, nil
}

// ToggleLike flips userID's like on a comment or reply
func (s *commentService) ToggleLike(ctx context.Context, commentID, userID string) (*models.LikeResult, error) {
	if _, err := s.viewer(ctx, userID); err != nil {
		return nil, err
	}
	if !validation.IsValidUUID(commentID) {
		return nil, ErrCommentNotFound
	}

	result, err := s.comments.ToggleLike(ctx, commentID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("toggle like: %w", err)
	}

	s.metrics.LikeToggled(result.IsLike)
	return result, nil
}

// Count returns the total number of comments and replies
func (s *commentService) Count(ctx context.Context) (int, error) {
	return s.comments.Count(ctx)
}

// prepare resolves the author and cleans the content of a submission
func (s *commentService) prepare(ctx context.Context, userID, content string) (*models.User, string, error) {
	author, err := s.viewer(ctx, userID)
	if err != nil {
		s.metrics.SubmissionRejected("auth")
		return nil, "", err
	}
	clean, err := s.validator.CleanComment(content)
	if err != nil {
		s.metrics.SubmissionRejected("invalid")
		return nil, "", err
	}
	return author, clean, nil
}

// insert takes the author's cool-down slot and writes rec. The slot is
// given back when the write fails so that the retry is not refused.
func (s *commentService) insert(ctx context.Context, rec *models.CommentRecord) error {
	if err := s.limiter.Acquire(ctx, rec.UserID); err != nil {
		var wait *cooldown.WaitError
		if errors.As(err, &wait) {
			s.metrics.SubmissionRejected("cooldown")
			return wait
		}
		return fmt.Errorf("acquire cooldown: %w", err)
	}

	err := s.comments.Create(ctx, rec)
	if err == nil {
		return nil
	}

	if relErr := s.limiter.Release(ctx, rec.UserID); relErr != nil {
		s.log.Warn().Err(relErr).Str("user_id", rec.UserID).Msg("Failed to release cooldown")
	}
	switch {
	case errors.Is(err, repository.ErrInvalidParent):
		return ErrNestedReply
	case errors.Is(err, repository.ErrNotFound):
		return ErrArticleNotFound
	}
	s.log.Error().Err(err).Str("article_id", rec.ArticleID).Msg("Failed to create comment")
	return fmt.Errorf("create comment: %w", err)
}

func (s *commentService) viewer(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" || !validation.IsValidUUID(userID) {
		return nil, ErrUnauthorized
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil || !user.Active {
		return nil, ErrUnauthorized
	}
	return user, nil
}

func (s *commentService) article(ctx context.Context, articleID string) (*models.Article, error) {
	if !validation.IsValidUUID(articleID) {
		return nil, ErrArticleNotFound
	}
	article, err := s.articles.GetByID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if article == nil {
		return nil, ErrArticleNotFound
	}
	return article, nil
}

// topLevel loads a comment that replies may attach to
func (s *commentService) topLevel(ctx context.Context, commentID string) (*models.CommentRecord, error) {
	if !validation.IsValidUUID(commentID) {
		return nil, ErrCommentNotFound
	}
	c, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	if c == nil {
		return nil, ErrCommentNotFound
	}
	if c.IsReply() {
		return nil, ErrNestedReply
	}
	return c, nil
}
