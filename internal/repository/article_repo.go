package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sporthub-api/internal/database"
	"github.com/sporthub-api/internal/models"
)

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db *database.DB
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db}
}

// Create inserts a new article
func (r *articleRepo) Create(ctx context.Context, article *models.Article) error {
	query := `
		INSERT INTO articles (id, slug, title, excerpt, body, category, cover_url, author_id,
			status, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		article.ID, article.Slug, article.Title, article.Excerpt, article.Body,
		article.Category, article.CoverURL, article.AuthorID,
		article.Status, article.PublishedAt, article.CreatedAt, time.Now(),
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// GetByID retrieves an article with its author
func (r *articleRepo) GetByID(ctx context.Context, id string) (*models.Article, error) {
	query := `
		SELECT a.id, a.slug, a.title, a.excerpt, a.body, a.category, a.cover_url, a.author_id,
			a.comment_count, a.view_count, a.status, a.published_at, a.created_at, a.updated_at,
			u.name, u.avatar, u.level_tag
		FROM articles a
		JOIN users u ON u.id = a.author_id
		WHERE a.id = $1
	`

	var a models.Article
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.Slug, &a.Title, &a.Excerpt, &a.Body, &a.Category, &a.CoverURL, &a.AuthorID,
		&a.CommentCount, &a.ViewCount, &a.Status, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt,
		&a.Author.Name, &a.Author.Avatar, &a.Author.LevelTag,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.Author.ID = a.AuthorID

	return &a, nil
}

// IncrementViews bumps the article's view counter
func (r *articleRepo) IncrementViews(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE articles SET view_count = view_count + 1 WHERE id = $1", id)
	return err
}

// Count returns the total number of articles
func (r *articleRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count)
	return count, err
}
