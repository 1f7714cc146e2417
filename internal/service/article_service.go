package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/sporthub-api/internal/models"
	"github.com/sporthub-api/internal/repository"
)

// articleService is the concrete implementation of ArticleService
type articleService struct {
	articles repository.ArticleRepository
	comments CommentService
	log      zerolog.Logger
}

func newArticleService(articles repository.ArticleRepository, comments CommentService, log zerolog.Logger) *articleService {
	return &articleService{
		articles: articles,
		comments: comments,
		log:      log.With().Str("service", "article").Logger(),
	}
}

// GetArticle returns an article with the first page of its comment thread
// and counts the view.
func (s *articleService) GetArticle(ctx context.Context, articleID, viewerID string) (*models.ArticleDetail, error) {
	page, err := s.comments.ListComments(ctx, articleID, viewerID, 1)
	if err != nil {
		return nil, err
	}

	article, err := s.articles.GetByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, ErrArticleNotFound
	}

	if err := s.articles.IncrementViews(ctx, articleID); err != nil {
		s.log.Warn().Err(err).Str("article_id", articleID).Msg("Failed to count article view")
	} else {
		article.ViewCount++
	}

	return &models.ArticleDetail{
		Article:         *article,
		TargetURL:       "/article/" + article.ID,
		Comments:        page.Data,
		HasMoreComments: page.HasMore,
	}, nil
}

// Count returns the total number of articles
func (s *articleService) Count(ctx context.Context) (int, error) {
	return s.articles.Count(ctx)
}
