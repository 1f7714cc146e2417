package mocks

import (
	"context"

	"github.com/sporthub-api/internal/models"
	"github.com/sporthub-api/internal/service"
)

// Verify interface compliance
var (
	_ service.CommentService = (*MockCommentService)(nil)
	_ service.ArticleService = (*MockArticleService)(nil)
	_ service.UserService    = (*MockUserService)(nil)
)

// MockCommentService is a mock implementation of CommentService.
// Unset funcs return empty results.
type MockCommentService struct {
	ListCommentsFunc func(ctx context.Context, articleID, viewerID string, page int) (*models.CommentPage, error)
	ListRepliesFunc  func(ctx context.Context, commentID, viewerID string, page int) (*models.ReplyPage, error)
	PostCommentFunc  func(ctx context.Context, articleID, userID, content string) (*models.Comment, error)
	PostReplyFunc    func(ctx context.Context, commentID, userID, content string) (*models.Reply, error)
	ToggleLikeFunc   func(ctx context.Context, commentID, userID string) (*models.LikeResult, error)
	Total            int

	// Content of every accepted post, in order
	Posted []string
}

func NewMockCommentService() *MockCommentService {
	return &MockCommentService{}
}

func (m *MockCommentService) ListComments(ctx context.Context, articleID, viewerID string, page int) (*models.CommentPage, error) {
	if m.ListCommentsFunc != nil {
		return m.ListCommentsFunc(ctx, articleID, viewerID, page)
	}
	return &models.CommentPage{Data: []*models.Comment{}, CurrentPage: page}, nil
}

func (m *MockCommentService) ListReplies(ctx context.Context, commentID, viewerID string, page int) (*models.ReplyPage, error) {
	if m.ListRepliesFunc != nil {
		return m.ListRepliesFunc(ctx, commentID, viewerID, page)
	}
	return &models.ReplyPage{Data: []*models.Reply{}, CurrentPage: page}, nil
}

func (m *MockCommentService) PostComment(ctx context.Context, articleID, userID, content string) (*models.Comment, error) {
	if m.PostCommentFunc != nil {
		c, err := m.PostCommentFunc(ctx, articleID, userID, content)
		if err == nil {
			m.Posted = append(m.Posted, content)
		}
		return c, err
	}
	m.Posted = append(m.Posted, content)
	return &models.Comment{
		Entry:   models.Entry{ID: "mock-comment", Content: content, Author: models.Author{ID: userID}},
		Replies: []*models.Reply{},
	}, nil
}

func (m *MockCommentService) PostReply(ctx context.Context, commentID, userID, content string) (*models.Reply, error) {
	if m.PostReplyFunc != nil {
		r, err := m.PostReplyFunc(ctx, commentID, userID, content)
		if err == nil {
			m.Posted = append(m.Posted, content)
		}
		return r, err
	}
	m.Posted = append(m.Posted, content)
	return &models.Reply{Entry: models.Entry{ID: "mock-reply", Content: content, Author: models.Author{ID: userID}}}, nil
}

func (m *MockCommentService) ToggleLike(ctx context.Context, commentID, userID string) (*models.LikeResult, error) {
	if m.ToggleLikeFunc != nil {
		return m.ToggleLikeFunc(ctx, commentID, userID)
	}
	return &models.LikeResult{CommentID: commentID, IsLike: true, LikeCount: 1}, nil
}

func (m *MockCommentService) Count(ctx context.Context) (int, error) {
	return m.Total, nil
}

// MockArticleService is a mock implementation of ArticleService
type MockArticleService struct {
	Articles map[string]*models.ArticleDetail
	Total    int
}

func NewMockArticleService() *MockArticleService {
	return &MockArticleService{Articles: make(map[string]*models.ArticleDetail)}
}

func (m *MockArticleService) GetArticle(ctx context.Context, articleID, viewerID string) (*models.ArticleDetail, error) {
	a, ok := m.Articles[articleID]
	if !ok {
		return nil, service.ErrArticleNotFound
	}
	return a, nil
}

func (m *MockArticleService) Count(ctx context.Context) (int, error) {
	return m.Total, nil
}

// MockUserService is a mock implementation of UserService
type MockUserService struct {
	Users     map[string]*models.User
	LoginFunc func(ctx context.Context, req *models.LoginRequest) (*models.User, error)
}

func NewMockUserService() *MockUserService {
	return &MockUserService{Users: make(map[string]*models.User)}
}

func (m *MockUserService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, req)
	}
	for _, u := range m.Users {
		if u.Email == req.Email {
			return u, nil
		}
	}
	u := &models.User{ID: "mock-user", Email: req.Email, Name: req.Name, LevelTag: models.DefaultLevelTag, Active: true}
	m.Users[u.ID] = u
	return u, nil
}

func (m *MockUserService) Get(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.Users[id]
	if !ok {
		return nil, service.ErrUserNotFound
	}
	return u, nil
}

func (m *MockUserService) UpdateProfile(ctx context.Context, id string, update *models.ProfileUpdate) (*models.User, error) {
	u, ok := m.Users[id]
	if !ok {
		return nil, service.ErrUserNotFound
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Avatar != nil {
		u.Avatar = *update.Avatar
	}
	if update.Gender != nil {
		u.Gender = *update.Gender
	}
	return u, nil
}

func (m *MockUserService) Count(ctx context.Context) (int, error) {
	return len(m.Users), nil
}
