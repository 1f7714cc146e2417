package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sporthub-api/internal/database"
	"github.com/sporthub-api/internal/models"
)

// commentSelect reads a comment row with its author and the viewer's like.
// The viewer id is always the first placeholder.
const commentSelect = `
	SELECT c.id, c.article_id, c.parent_id, c.user_id, c.content, c.like_count, c.reply_count,
		c.created_at, c.updated_at, u.name, u.avatar, u.level_tag,
		EXISTS(SELECT 1 FROM comment_likes l WHERE l.comment_id = c.id AND l.user_id::text = $1)
	FROM comments c
	JOIN users u ON u.id = c.user_id
`

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	db *database.DB
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentRepository {
	return &commentRepo{db: db}
}

func scanComment(row rowScanner) (*models.CommentRecord, error) {
	var (
		c      models.CommentRecord
		parent sql.NullString
	)
	err := row.Scan(
		&c.ID, &c.ArticleID, &parent, &c.UserID, &c.Content, &c.LikeCount, &c.ReplyCount,
		&c.CreatedAt, &c.UpdatedAt, &c.Author.Name, &c.Author.Avatar, &c.Author.LevelTag,
		&c.Liked,
	)
	if err != nil {
		return nil, err
	}
	if parent.Valid {
		c.ParentID = &parent.String
	}
	c.Author.ID = c.UserID
	return &c, nil
}

func scanComments(rows *sql.Rows) ([]*models.CommentRecord, error) {
	defer rows.Close()

	var out []*models.CommentRecord
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Create inserts a comment or reply. A reply's parent must be a top-level
// comment of the same article; its reply count moves with the insert.
func (r *commentRepo) Create(ctx context.Context, comment *models.CommentRecord) error {
	now := time.Now()
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = now
	}
	comment.UpdatedAt = now

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if comment.IsReply() {
			res, err := tx.ExecContext(ctx, `
				UPDATE comments SET reply_count = reply_count + 1
				WHERE id = $1 AND article_id = $2 AND parent_id IS NULL
			`, *comment.ParentID, comment.ArticleID)
			if err != nil {
				return fmt.Errorf("bump reply count: %w", err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return ErrInvalidParent
			}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO comments (id, article_id, parent_id, user_id, content, like_count, reply_count, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, 0, 0, $6, $7)
		`,
			comment.ID, comment.ArticleID, comment.ParentID, comment.UserID, comment.Content,
			comment.CreatedAt, comment.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert comment: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			"UPDATE articles SET comment_count = comment_count + 1 WHERE id = $1", comment.ArticleID)
		if err != nil {
			return fmt.Errorf("bump comment count: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// GetByID retrieves a comment or reply by ID
func (r *commentRepo) GetByID(ctx context.Context, id string) (*models.CommentRecord, error) {
	c, err := scanComment(r.db.QueryRowContext(ctx, commentSelect+` WHERE c.id = $2`, "", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

// ListTopLevel returns a page of an article's top-level comments, newest first
func (r *commentRepo) ListTopLevel(ctx context.Context, articleID, viewerID string, limit, offset int) ([]*models.CommentRecord, error) {
	query := commentSelect + `
		WHERE c.article_id = $2 AND c.parent_id IS NULL
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, query, viewerID, articleID, limit, offset)
	if err != nil {
		return nil, err
	}
	return scanComments(rows)
}

// ListReplies returns a page of replies to parentID, newest first
func (r *commentRepo) ListReplies(ctx context.Context, parentID, viewerID string, limit, offset int) ([]*models.CommentRecord, error) {
	query := commentSelect + `
		WHERE c.parent_id = $2
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, query, viewerID, parentID, limit, offset)
	if err != nil {
		return nil, err
	}
	return scanComments(rows)
}

// ListLatestReplies returns the newest perParent replies of each parent in one query
func (r *commentRepo) ListLatestReplies(ctx context.Context, parentIDs []string, viewerID string, perParent int) (map[string][]*models.CommentRecord, error) {
	out := make(map[string][]*models.CommentRecord, len(parentIDs))
	if len(parentIDs) == 0 || perParent <= 0 {
		return out, nil
	}

	query := `
		SELECT c.id, c.article_id, c.parent_id, c.user_id, c.content, c.like_count, c.reply_count,
			c.created_at, c.updated_at, u.name, u.avatar, u.level_tag,
			EXISTS(SELECT 1 FROM comment_likes l WHERE l.comment_id = c.id AND l.user_id::text = $1)
		FROM (
			SELECT *, ROW_NUMBER() OVER (PARTITION BY parent_id ORDER BY created_at DESC, id DESC) AS rn
			FROM comments
			WHERE parent_id::text = ANY($2)
		) c
		JOIN users u ON u.id = c.user_id
		WHERE c.rn <= $3
		ORDER BY c.parent_id, c.rn
	`
	rows, err := r.db.QueryContext(ctx, query, viewerID, pq.Array(parentIDs), perParent)
	if err != nil {
		return nil, err
	}
	replies, err := scanComments(rows)
	if err != nil {
		return nil, err
	}
	for _, reply := range replies {
		out[*reply.ParentID] = append(out[*reply.ParentID], reply)
	}
	return out, nil
}

// ToggleLike inserts or deletes the viewer's like row and moves the
// counter by one in the same transaction. The counter never drops below zero.
func (r *commentRepo) ToggleLike(ctx context.Context, commentID, userID string) (*models.LikeResult, error) {
	result := &models.LikeResult{CommentID: commentID}

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var current int
		err := tx.QueryRowContext(ctx,
			"SELECT like_count FROM comments WHERE id = $1 FOR UPDATE", commentID).Scan(&current)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			"DELETE FROM comment_likes WHERE comment_id = $1 AND user_id = $2", commentID, userID)
		if err != nil {
			return fmt.Errorf("delete like: %w", err)
		}
		removed, _ := res.RowsAffected()

		delta := 1
		if removed > 0 {
			delta = -1
		} else {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO comment_likes (comment_id, user_id, created_at) VALUES ($1, $2, $3)",
				commentID, userID, time.Now())
			if err != nil {
				return fmt.Errorf("insert like: %w", err)
			}
		}

		err = tx.QueryRowContext(ctx, `
			UPDATE comments SET like_count = GREATEST(like_count + $2, 0)
			WHERE id = $1
			RETURNING like_count
		`, commentID, delta).Scan(&result.LikeCount)
		if err != nil {
			return fmt.Errorf("update like count: %w", err)
		}
		result.IsLike = delta > 0
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Count returns the total number of comments and replies
func (r *commentRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comments").Scan(&count)
	return count, err
}
