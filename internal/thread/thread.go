// Package thread is the comment section of one article page view: the
// resident comment tree, its pagination, the submission guard and likes.
package thread

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"
	"github.com/sporthub-api/internal/models"
	"github.com/sporthub-api/internal/session"
)

// Backend is the server side of the thread
type Backend interface {
	FetchComments(ctx context.Context, articleID string, page int) ([]*models.Comment, error)
	FetchReplies(ctx context.Context, commentID string, page int) ([]*models.Reply, error)
	PostComment(ctx context.Context, articleID, content string) (*models.Entry, error)
	PostReply(ctx context.Context, parentID, content string) (*models.Entry, error)
}

// Config holds thread tuning
type Config struct {
	PageSize      int
	ReplyPageSize int
	Cooldown      time.Duration
	SubmitTimeout time.Duration
}

// DefaultConfig returns pages of 10 and a 10 second cool-down
func DefaultConfig() Config {
	return Config{
		PageSize:      models.DefaultPageSize,
		ReplyPageSize: models.DefaultPageSize,
		Cooldown:      10 * time.Second,
		SubmitTimeout: 15 * time.Second,
	}
}

// Thread owns the comment tree of one article for the lifetime of a page view.
// Mutations are serialised; backend calls run outside the lock so that
// different targets can be in flight at the same time.
type Thread struct {
	mu sync.Mutex

	articleID       string
	articleAuthorID string
	cfg             Config
	sess            *session.Session
	backend         Backend

	store     *Store
	pages     *Pagination
	guard     *Guard
	reactions *Reactions

	drafts   map[Target]string
	replyBox string

	log zerolog.Logger
	now func() time.Time
}

// New creates an empty thread for articleID viewed through sess
func New(articleID string, sess *session.Session, backend Backend, cfg Config, log zerolog.Logger) *Thread {
	store := NewStore()
	return &Thread{
		articleID: articleID,
		cfg:       cfg,
		sess:      sess,
		backend:   backend,
		store:     store,
		pages:     NewPagination(cfg.PageSize, cfg.ReplyPageSize),
		guard:     NewGuard(cfg.Cooldown),
		reactions: NewReactions(store, sess),
		drafts:    make(map[Target]string),
		log:       log.With().Str("component", "thread").Str("article_id", articleID).Logger(),
		now:       time.Now,
	}
}

// Load seeds the thread with the initial page of comments
func (t *Thread) Load(comments []*models.Comment) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.store.Initialize(comments)
	t.pages.Reset(len(comments))
}

// LoadArticle seeds the thread from an article detail response
func (t *Thread) LoadArticle(detail *models.ArticleDetail) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.articleAuthorID = detail.Author.ID
	t.store.Initialize(detail.Comments)
	t.pages.Reset(len(detail.Comments))
	if !detail.HasMoreComments {
		t.pages.hasMore = false
	}
}

// Comments returns a copy of the resident tree
func (t *Thread) Comments() []*models.Comment {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Comments()
}

// Comment returns a copy of a resident top-level comment
func (t *Thread) Comment(id string) (*models.Comment, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c := t.store.Comment(id)
	if c == nil {
		return nil, false
	}
	return c.Clone(), true
}

// HasMoreComments reports whether "load more" should be offered
func (t *Thread) HasMoreComments() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pages.HasMore()
}

// IsLoadingMore reports whether a top-level page fetch is outstanding
func (t *Thread) IsLoadingMore() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pages.Loading()
}

// LoadMoreComments fetches the next page of top-level comments. It is a
// no-op while a fetch is outstanding or after the last page. It returns
// the number of comments added.
func (t *Thread) LoadMoreComments(ctx context.Context) (int, error) {
	t.mu.Lock()
	page, ok := t.pages.BeginLoadMore()
	t.mu.Unlock()
	if !ok {
		return 0, nil
	}

	comments, err := t.backend.FetchComments(ctx, t.articleID, page)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.pages.EndLoadMore(len(comments), err)
	if err != nil {
		t.log.Warn().Err(err).Int("page", page).Msg("Failed to load comments")
		return 0, fmt.Errorf("load comments page %d: %w", page, err)
	}

	added := t.store.AppendTopLevel(comments)
	t.log.Debug().Int("page", page).Int("fetched", len(comments)).Int("added", added).Msg("Loaded comments")
	return added, nil
}

// ToggleReplies expands or collapses a comment's replies. Expanding fetches
// the first page when fewer replies are resident than should be visible;
// if that fetch fails the comment stays collapsed.
func (t *Thread) ToggleReplies(ctx context.Context, commentID string) (bool, error) {
	t.mu.Lock()
	c := t.store.Comment(commentID)
	if c == nil {
		t.mu.Unlock()
		return false, ErrCommentNotFound
	}
	expanded := t.pages.ToggleReplies(commentID)
	fetch := expanded && t.needsReplies(c, 1) && t.pages.BeginReplies(commentID)
	t.mu.Unlock()

	if !fetch {
		return expanded, nil
	}

	if err := t.fetchReplies(ctx, commentID, 1); err != nil {
		t.mu.Lock()
		t.pages.Collapse(commentID)
		t.mu.Unlock()
		return false, err
	}
	return true, nil
}

// LoadMoreReplies reveals the next page of an expanded comment's replies,
// fetching it when it is not resident. Collapsed comments and comments
// whose replies are all visible are left alone.
func (t *Thread) LoadMoreReplies(ctx context.Context, commentID string) error {
	t.mu.Lock()
	c := t.store.Comment(commentID)
	if c == nil {
		t.mu.Unlock()
		return ErrCommentNotFound
	}
	view := t.pages.Replies(commentID)
	if !view.Expanded || !t.pages.HasMoreReplies(commentID, len(c.Replies), c.ReplyCount) {
		t.mu.Unlock()
		return nil
	}

	next := view.Page + 1
	if !t.needsReplies(c, next) {
		t.pages.SetReplyPage(commentID, next)
		t.mu.Unlock()
		return nil
	}
	if !t.pages.BeginReplies(commentID) {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	return t.fetchReplies(ctx, commentID, next)
}

// VisibleReplies returns copies of the replies currently shown under a comment
func (t *Thread) VisibleReplies(commentID string) []*models.Reply {
	t.mu.Lock()
	defer t.mu.Unlock()

	c := t.store.Comment(commentID)
	if c == nil {
		return nil
	}
	n := t.pages.VisibleReplies(commentID, len(c.Replies))
	out := make([]*models.Reply, n)
	for i := 0; i < n; i++ {
		cp := *c.Replies[i]
		out[i] = &cp
	}
	return out
}

// HasMoreReplies reports whether the "more replies" control should be shown
func (t *Thread) HasMoreReplies(commentID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	c := t.store.Comment(commentID)
	if c == nil {
		return false
	}
	return t.pages.HasMoreReplies(commentID, len(c.Replies), c.ReplyCount)
}

// ReplyView returns the visibility state of a comment's replies
func (t *Thread) ReplyView(commentID string) ReplyView {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pages.Replies(commentID)
}

// needsReplies reports whether page of c's replies is not fully resident
func (t *Thread) needsReplies(c *models.Comment, page int) bool {
	pending := pendingReplies(c)
	want := min(t.pages.ReplyLimit(page), c.ReplyCount-pending)
	return len(c.Replies)-pending < want
}

func (t *Thread) fetchReplies(ctx context.Context, commentID string, page int) error {
	replies, err := t.backend.FetchReplies(ctx, commentID, page)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.pages.EndReplies(commentID)
	if err != nil {
		t.log.Warn().Err(err).Str("comment_id", commentID).Int("page", page).Msg("Failed to load replies")
		return fmt.Errorf("load replies page %d: %w", page, err)
	}

	t.store.SetReplies(commentID, replies, t.pages.ReplyLimit(page))
	t.pages.SetReplyPage(commentID, page)
	return nil
}

// SetDraft stores the text typed into target
func (t *Thread) SetDraft(target Target, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if text == "" {
		delete(t.drafts, target)
		return
	}
	t.drafts[target] = text
}

// Draft returns the text typed into target
func (t *Thread) Draft(target Target) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.drafts[target]
}

// CanSubmit reports whether the submit control of target is enabled
func (t *Thread) CanSubmit(target Target) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.TrimSpace(t.drafts[target]) != "" && !t.guard.InFlight(target)
}

// InFlight reports whether target has a submission outstanding; its input is read-only
func (t *Thread) InFlight(target Target) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.guard.InFlight(target)
}

// OpenReply opens the reply box under a comment. Anonymous viewers get ErrAuthRequired.
func (t *Thread) OpenReply(commentID string) error {
	if t.sess == nil || !t.sess.IsLoggedIn() {
		return ErrAuthRequired
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.store.Comment(commentID) == nil {
		return ErrCommentNotFound
	}
	t.replyBox = commentID
	return nil
}

// CloseReply closes the open reply box
func (t *Thread) CloseReply() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.replyBox = ""
}

// ReplyBox returns the id of the comment whose reply box is open
func (t *Thread) ReplyBox() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.replyBox
}

// Like toggles the viewer's like on a comment or reply
func (t *Thread) Like(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reactions.Like(id)
}

// SubmitComment posts the main composer's draft as a new top-level comment
func (t *Thread) SubmitComment(ctx context.Context) (*models.Comment, error) {
	target := MainComposer

	t.mu.Lock()
	content, pending, err := t.begin(target)
	if err != nil {
		t.mu.Unlock()
		return nil, err
	}
	comment := &models.Comment{Entry: pending}
	t.store.PrependTopLevel(comment)
	t.mu.Unlock()

	defer t.end(target)

	entry, err := t.call(ctx, func(ctx context.Context) (*models.Entry, error) {
		return t.backend.PostComment(ctx, t.articleID, content)
	})

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.store.Remove(pending.LocalID)
		t.log.Warn().Err(err).Msg("Comment submission failed")
		return nil, fmt.Errorf("post comment: %w", err)
	}

	t.finish(target)
	// A reload while the post was in flight drops the pending entry; the
	// reloaded tree stands and the caller gets the server's copy.
	if !t.store.Confirm(pending.LocalID, *entry) {
		t.log.Debug().Str("comment_id", entry.ID).Msg("Thread reloaded during submission")
	}
	if c := t.store.Comment(entry.ID); c != nil {
		return c.Clone(), nil
	}
	return &models.Comment{Entry: confirmedEntry(pending, *entry), Replies: []*models.Reply{}}, nil
}

// SubmitReply posts the draft in the reply box under parentID
func (t *Thread) SubmitReply(ctx context.Context, parentID string) (*models.Reply, error) {
	target := ReplyTarget(parentID)

	t.mu.Lock()
	if t.store.Comment(parentID) == nil {
		t.mu.Unlock()
		return nil, ErrCommentNotFound
	}
	content, pending, err := t.begin(target)
	if err != nil {
		t.mu.Unlock()
		return nil, err
	}
	t.store.PrependReply(parentID, &models.Reply{Entry: pending})
	t.mu.Unlock()

	defer t.end(target)

	entry, err := t.call(ctx, func(ctx context.Context) (*models.Entry, error) {
		return t.backend.PostReply(ctx, parentID, content)
	})

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.store.Remove(pending.LocalID)
		t.log.Warn().Err(err).Str("parent_id", parentID).Msg("Reply submission failed")
		return nil, fmt.Errorf("post reply: %w", err)
	}

	t.finish(target)
	if t.replyBox == parentID {
		t.replyBox = ""
	}
	if !t.store.Confirm(pending.LocalID, *entry) {
		t.log.Debug().Str("reply_id", entry.ID).Str("parent_id", parentID).Msg("Thread reloaded during submission")
	}
	if e, ok := t.store.Entry(entry.ID); ok {
		return &models.Reply{Entry: e}, nil
	}
	return &models.Reply{Entry: confirmedEntry(pending, *entry)}, nil
}

// confirmedEntry takes the server's id, content and timestamp over pending
func confirmedEntry(pending, confirmed models.Entry) models.Entry {
	pending.ID = confirmed.ID
	if confirmed.Content != "" {
		pending.Content = confirmed.Content
	}
	if !confirmed.CreatedAt.IsZero() {
		pending.CreatedAt = confirmed.CreatedAt
	}
	pending.State = models.StateConfirmed
	return pending
}

// begin runs the guard for target and builds the pending entry. Caller holds t.mu.
func (t *Thread) begin(target Target) (string, models.Entry, error) {
	content := strings.TrimSpace(t.drafts[target])
	if err := t.guard.Begin(t.sess, target, content); err != nil {
		if !errors.Is(err, ErrEmptyContent) {
			t.log.Debug().Err(err).Str("target", string(target)).Msg("Submission rejected")
		}
		return "", models.Entry{}, err
	}

	author, _ := t.sess.Viewer()
	localID := "local-" + ksuid.New().String()
	return content, models.Entry{
		ID:        localID,
		LocalID:   localID,
		State:     models.StatePending,
		Content:   content,
		Author:    author,
		CreatedAt: t.now().UTC(),
		IsAuthor:  t.articleAuthorID != "" && author.ID == t.articleAuthorID,
	}, nil
}

// finish clears the draft and starts the cool-down. Caller holds t.mu.
func (t *Thread) finish(target Target) {
	delete(t.drafts, target)
	t.guard.Succeeded(t.sess)
}

func (t *Thread) end(target Target) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.guard.End(target)
}

// call runs fn with the submit timeout. The result is abandoned when the
// timeout fires first, so a backend that never answers cannot pin the target.
func (t *Thread) call(ctx context.Context, fn func(context.Context) (*models.Entry, error)) (*models.Entry, error) {
	if t.cfg.SubmitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.SubmitTimeout)
		defer cancel()
	}

	type result struct {
		entry *models.Entry
		err   error
	}
	done := make(chan result, 1)
	go func() {
		entry, err := fn(ctx)
		done <- result{entry, err}
	}()

	select {
	case r := <-done:
		if r.err == nil && r.entry == nil {
			return nil, errors.New("backend returned no entry")
		}
		return r.entry, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ctx.Err()
	}
}
