package service

import (
	"context"

	"github.com/sporthub-api/internal/models"
	"github.com/sporthub-api/internal/thread"
)

var _ thread.Backend = (*LocalBackend)(nil)

// LocalBackend serves a thread straight from the comment service, acting
// as viewerID. It lets a Thread run in-process without the HTTP layer.
type LocalBackend struct {
	comments CommentService
	viewerID string
}

// NewLocalBackend creates a backend for viewerID; empty means anonymous
func NewLocalBackend(comments CommentService, viewerID string) *LocalBackend {
	return &LocalBackend{comments: comments, viewerID: viewerID}
}

func (b *LocalBackend) FetchComments(ctx context.Context, articleID string, page int) ([]*models.Comment, error) {
	p, err := b.comments.ListComments(ctx, articleID, b.viewerID, page)
	if err != nil {
		return nil, err
	}
	return p.Data, nil
}

func (b *LocalBackend) FetchReplies(ctx context.Context, commentID string, page int) ([]*models.Reply, error) {
	p, err := b.comments.ListReplies(ctx, commentID, b.viewerID, page)
	if err != nil {
		return nil, err
	}
	return p.Data, nil
}

func (b *LocalBackend) PostComment(ctx context.Context, articleID, content string) (*models.Entry, error) {
	c, err := b.comments.PostComment(ctx, articleID, b.viewerID, content)
	if err != nil {
		return nil, err
	}
	return &c.Entry, nil
}

func (b *LocalBackend) PostReply(ctx context.Context, parentID, content string) (*models.Entry, error) {
	r, err := b.comments.PostReply(ctx, parentID, b.viewerID, content)
	if err != nil {
		return nil, err
	}
	return &r.Entry, nil
}
