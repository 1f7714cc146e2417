package thread

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sporthub-api/internal/models"
	"github.com/sporthub-api/internal/session"
)

// fakeBackend serves pages out of memory the way the comments API does
type fakeBackend struct {
	mu       sync.Mutex
	pageSize int
	comments map[string][]*models.Comment
	replies  map[string][]*models.Reply
	seq      int

	fetchErr error
	postErr  error
	// when set, posts wait for a value (or ctx) before answering
	block chan struct{}

	commentFetches int
	replyFetches   int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		pageSize: 10,
		comments: make(map[string][]*models.Comment),
		replies:  make(map[string][]*models.Reply),
	}
}

func (f *fakeBackend) FetchComments(ctx context.Context, articleID string, page int) ([]*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commentFetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	all := f.comments[articleID]
	start, end := window(page, f.pageSize, len(all))
	out := make([]*models.Comment, 0, end-start)
	for _, c := range all[start:end] {
		out = append(out, c.Clone())
	}
	return out, nil
}

func (f *fakeBackend) FetchReplies(ctx context.Context, commentID string, page int) ([]*models.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replyFetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	all := f.replies[commentID]
	start, end := window(page, f.pageSize, len(all))
	out := make([]*models.Reply, 0, end-start)
	for _, r := range all[start:end] {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeBackend) PostComment(ctx context.Context, articleID, content string) (*models.Entry, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.postErr != nil {
		return nil, f.postErr
	}
	f.seq++
	e := models.Entry{ID: fmt.Sprintf("srv-%d", f.seq), Content: content, CreatedAt: time.Now().UTC()}
	f.comments[articleID] = append([]*models.Comment{{Entry: e}}, f.comments[articleID]...)
	return &e, nil
}

func (f *fakeBackend) PostReply(ctx context.Context, parentID, content string) (*models.Entry, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.postErr != nil {
		return nil, f.postErr
	}
	f.seq++
	e := models.Entry{ID: fmt.Sprintf("srv-%d", f.seq), Content: content, CreatedAt: time.Now().UTC()}
	f.replies[parentID] = append([]*models.Reply{{Entry: e}}, f.replies[parentID]...)
	return &e, nil
}

func (f *fakeBackend) wait(ctx context.Context) error {
	f.mu.Lock()
	block := f.block
	f.mu.Unlock()
	if block == nil {
		return nil
	}
	select {
	case <-block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func window(page, size, total int) (int, int) {
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return start, end
}

// seedComments builds n comments newest first with ids c-01..c-n
func seedComments(n int) []*models.Comment {
	out := make([]*models.Comment, n)
	base := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		out[i] = &models.Comment{Entry: models.Entry{
			ID:        fmt.Sprintf("c-%02d", i+1),
			Content:   fmt.Sprintf("comment %d", i+1),
			Author:    models.Author{ID: "auth-1", Name: "張大衛", LevelTag: "Official"},
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		}}
	}
	return out
}

// seedReplies builds n replies with ids <parent>-r-01..
func seedReplies(parentID string, n int) []*models.Reply {
	out := make([]*models.Reply, n)
	for i := 0; i < n; i++ {
		out[i] = &models.Reply{Entry: models.Entry{
			ID:      fmt.Sprintf("%s-r-%02d", parentID, i+1),
			Content: fmt.Sprintf("reply %d", i+1),
		}}
	}
	return out
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func viewer() *models.User {
	return &models.User{ID: "u-current", Name: "Demo User", LevelTag: "Fan"}
}

// newTestThread wires a thread to backend with a controllable clock
func newTestThread(backend Backend, sess *session.Session) (*Thread, *fakeClock) {
	clk := &fakeClock{t: time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)}
	th := New("a-1", sess, backend, DefaultConfig(), zerolog.Nop())
	th.now = clk.Now
	th.guard.now = clk.Now
	return th, clk
}
