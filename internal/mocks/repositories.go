package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sporthub-api/internal/models"
	"github.com/sporthub-api/internal/repository"
)

// Verify interface compliance
var (
	_ repository.UserRepository    = (*MockUserRepository)(nil)
	_ repository.ArticleRepository = (*MockArticleRepository)(nil)
	_ repository.CommentRepository = (*MockCommentRepository)(nil)
)

// MockUserRepository is an in-memory UserRepository
type MockUserRepository struct {
	mu          sync.Mutex
	Users       map[string]*models.User
	EmailToUser map[string]*models.User
	InsertError error
	UpdateError error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users:       make(map[string]*models.User),
		EmailToUser: make(map[string]*models.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	if _, taken := m.EmailToUser[user.Email]; taken {
		return repository.ErrDuplicate
	}
	cp := *user
	m.Users[user.ID] = &cp
	m.EmailToUser[user.Email] = &cp
	return nil
}

func (m *MockUserRepository) Upsert(ctx context.Context, user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return nil, m.InsertError
	}
	if existing, ok := m.EmailToUser[user.Email]; ok {
		existing.Active = true
		cp := *existing
		return &cp, nil
	}
	cp := *user
	m.Users[user.ID] = &cp
	m.EmailToUser[user.Email] = &cp
	out := cp
	return &out, nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.EmailToUser[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return m.UpdateError
	}
	u, ok := m.Users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Name = user.Name
	u.Avatar = user.Avatar
	u.Gender = user.Gender
	u.UpdatedAt = time.Now()
	return nil
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Users), nil
}

// MockArticleRepository is an in-memory ArticleRepository
type MockArticleRepository struct {
	mu          sync.Mutex
	Articles    map[string]*models.Article
	Users       *MockUserRepository
	InsertError error
}

// NewMockArticleRepository creates an article store; users resolves authors when set
func NewMockArticleRepository(users *MockUserRepository) *MockArticleRepository {
	return &MockArticleRepository{
		Articles: make(map[string]*models.Article),
		Users:    users,
	}
}

func (m *MockArticleRepository) Create(ctx context.Context, article *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	if _, taken := m.Articles[article.ID]; taken {
		return repository.ErrDuplicate
	}
	cp := *article
	m.Articles[article.ID] = &cp
	return nil
}

func (m *MockArticleRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	m.mu.Lock()
	a, ok := m.Articles[id]
	if !ok {
		m.mu.Unlock()
		return nil, nil
	}
	cp := *a
	m.mu.Unlock()

	if m.Users != nil {
		if u, _ := m.Users.GetByID(ctx, cp.AuthorID); u != nil {
			cp.Author = u.AsAuthor()
		}
	}
	return &cp, nil
}

func (m *MockArticleRepository) IncrementViews(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.Articles[id]; ok {
		a.ViewCount++
	}
	return nil
}

func (m *MockArticleRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Articles), nil
}

func (m *MockArticleRepository) bumpComments(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Articles[id]
	if ok {
		a.CommentCount++
	}
	return ok
}

// MockCommentRepository is an in-memory CommentRepository
type MockCommentRepository struct {
	mu       sync.Mutex
	Comments map[string]*models.CommentRecord
	// comment id -> user id -> liked
	Likes    map[string]map[string]bool
	Users    *MockUserRepository
	Articles *MockArticleRepository

	InsertError error
	ListError   error
	CreateCalls int
}

// NewMockCommentRepository creates a comment store. users fills in authors and
// articles receives comment count updates; either may be nil.
func NewMockCommentRepository(users *MockUserRepository, articles *MockArticleRepository) *MockCommentRepository {
	return &MockCommentRepository{
		Comments: make(map[string]*models.CommentRecord),
		Likes:    make(map[string]map[string]bool),
		Users:    users,
		Articles: articles,
	}
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.CommentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.InsertError != nil {
		return m.InsertError
	}

	var parent *models.CommentRecord
	if comment.IsReply() {
		p, ok := m.Comments[*comment.ParentID]
		if !ok || p.IsReply() || p.ArticleID != comment.ArticleID {
			return repository.ErrInvalidParent
		}
		parent = p
	}
	if m.Articles != nil && !m.Articles.bumpComments(comment.ArticleID) {
		return repository.ErrNotFound
	}
	if parent != nil {
		parent.ReplyCount++
	}

	now := time.Now()
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = now
	}
	comment.UpdatedAt = now
	cp := *comment
	m.Comments[comment.ID] = &cp
	return nil
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id string) (*models.CommentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Comments[id]
	if !ok {
		return nil, nil
	}
	return m.view(c, ""), nil
}

func (m *MockCommentRepository) ListTopLevel(ctx context.Context, articleID, viewerID string, limit, offset int) ([]*models.CommentRecord, error) {
	return m.list(viewerID, limit, offset, func(c *models.CommentRecord) bool {
		return c.ArticleID == articleID && !c.IsReply()
	})
}

func (m *MockCommentRepository) ListReplies(ctx context.Context, parentID, viewerID string, limit, offset int) ([]*models.CommentRecord, error) {
	return m.list(viewerID, limit, offset, func(c *models.CommentRecord) bool {
		return c.IsReply() && *c.ParentID == parentID
	})
}

func (m *MockCommentRepository) ListLatestReplies(ctx context.Context, parentIDs []string, viewerID string, perParent int) (map[string][]*models.CommentRecord, error) {
	out := make(map[string][]*models.CommentRecord, len(parentIDs))
	for _, id := range parentIDs {
		replies, err := m.ListReplies(ctx, id, viewerID, perParent, 0)
		if err != nil {
			return nil, err
		}
		if len(replies) > 0 {
			out[id] = replies
		}
	}
	return out, nil
}

func (m *MockCommentRepository) ToggleLike(ctx context.Context, commentID, userID string) (*models.LikeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Comments[commentID]
	if !ok {
		return nil, repository.ErrNotFound
	}

	likes := m.Likes[commentID]
	if likes == nil {
		likes = make(map[string]bool)
		m.Likes[commentID] = likes
	}
	if likes[userID] {
		delete(likes, userID)
		if c.LikeCount > 0 {
			c.LikeCount--
		}
	} else {
		likes[userID] = true
		c.LikeCount++
	}
	return &models.LikeResult{CommentID: commentID, IsLike: likes[userID], LikeCount: c.LikeCount}, nil
}

func (m *MockCommentRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Comments), nil
}

// list filters, sorts newest first and pages. Caller must not hold m.mu.
func (m *MockCommentRepository) list(viewerID string, limit, offset int, keep func(*models.CommentRecord) bool) ([]*models.CommentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}

	var matched []*models.CommentRecord
	for _, c := range m.Comments {
		if keep(c) {
			matched = append(matched, c)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit >= 0 && limit < len(matched) {
		matched = matched[:limit]
	}

	out := make([]*models.CommentRecord, len(matched))
	for i, c := range matched {
		out[i] = m.view(c, viewerID)
	}
	return out, nil
}

// view copies c and fills the joined columns. Caller holds m.mu.
func (m *MockCommentRepository) view(c *models.CommentRecord, viewerID string) *models.CommentRecord {
	cp := *c
	cp.Author = models.Author{ID: c.UserID}
	if m.Users != nil {
		if u, _ := m.Users.GetByID(context.Background(), c.UserID); u != nil {
			cp.Author = u.AsAuthor()
		}
	}
	cp.Liked = viewerID != "" && m.Likes[c.ID][viewerID]
	return &cp
}
