package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sporthub-api/internal/config"
	"github.com/sporthub-api/internal/cooldown"
	"github.com/sporthub-api/internal/metrics"
	"github.com/sporthub-api/internal/mocks"
	"github.com/sporthub-api/internal/models"
	"github.com/sporthub-api/internal/repository"
	"github.com/sporthub-api/internal/service"
	"github.com/sporthub-api/internal/session"
	"github.com/sporthub-api/internal/thread"
)

const (
	articleID = "a0000000-0000-4000-8000-000000000001"
	authorID  = "u0000000-0000-4000-8000-000000000001"
)

func newServices(t *testing.T) *service.Services {
	t.Helper()
	ctx := context.Background()

	users := mocks.NewMockUserRepository()
	articles := mocks.NewMockArticleRepository(users)
	comments := mocks.NewMockCommentRepository(users, articles)

	if err := users.Create(ctx, &models.User{ID: authorID, Email: "author@sporthub.test", Name: "張大衛", LevelTag: "Official", Active: true}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := articles.Create(ctx, &models.Article{ID: articleID, Title: "Lakers defense", AuthorID: authorID, Status: "published"}); err != nil {
		t.Fatalf("seed article: %v", err)
	}

	repos := &repository.Repositories{User: users, Article: articles, Comment: comments}
	return service.NewServices(repos, cooldown.NewMemoryLimiter(0), metrics.New(nil), config.Defaults(), zerolog.Nop())
}

func newSession(t *testing.T, dir string) *session.Session {
	t.Helper()
	store, err := session.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	return session.New(store)
}

func runOnce(t *testing.T, services *service.Services, dir string, opts options) string {
	t.Helper()
	opts.articleID = articleID
	var out bytes.Buffer
	if err := run(context.Background(), &out, services, newSession(t, dir), thread.DefaultConfig(), opts, zerolog.Nop()); err != nil {
		t.Fatalf("run(%+v) failed: %v", opts, err)
	}
	return out.String()
}

func TestRun_SessionSurvivesBetweenRuns(t *testing.T) {
	services := newServices(t)
	dir := t.TempDir()

	out := runOnce(t, services, dir, options{})
	if !strings.Contains(out, "not signed in") {
		t.Errorf("Expected anonymous view, got:\n%s", out)
	}

	out = runOnce(t, services, dir, options{email: "Fan@SportHub.test", name: "Demo User"})
	if !strings.Contains(out, "signed in as Demo User") {
		t.Errorf("Expected login to show, got:\n%s", out)
	}

	// A fresh process restores the stored user and can post
	out = runOnce(t, services, dir, options{post: "  what a stop  "})
	if !strings.Contains(out, "signed in as Demo User") {
		t.Errorf("Expected restored session, got:\n%s", out)
	}
	if !strings.Contains(out, "Demo User") || !strings.Contains(out, ": what a stop") {
		t.Errorf("Expected the new comment at the head, got:\n%s", out)
	}

	out = runOnce(t, services, dir, options{logout: true})
	if !strings.Contains(out, "not signed in") {
		t.Errorf("Expected logout to clear the session, got:\n%s", out)
	}
	out = runOnce(t, services, dir, options{})
	if !strings.Contains(out, "not signed in") {
		t.Errorf("Logout must be persisted, got:\n%s", out)
	}
}

func TestRun_ReplyAndExpand(t *testing.T) {
	services := newServices(t)
	dir := t.TempDir()

	runOnce(t, services, dir, options{email: "fan@sporthub.test", name: "Demo User"})
	runOnce(t, services, dir, options{post: "top level"})

	page, err := services.Comment.ListComments(context.Background(), articleID, "", 1)
	if err != nil || len(page.Data) != 1 {
		t.Fatalf("Expected one stored comment, got %v, %v", page, err)
	}
	parentID := page.Data[0].ID

	out := runOnce(t, services, dir, options{post: "agreed", replyTo: parentID, expand: parentID})
	if !strings.Contains(out, "    ") || !strings.Contains(out, ": agreed") {
		t.Errorf("Expected the reply under its parent, got:\n%s", out)
	}
}

func TestRun_AnonymousPostFails(t *testing.T) {
	services := newServices(t)

	opts := options{articleID: articleID, post: "hello"}
	err := run(context.Background(), &bytes.Buffer{}, services, newSession(t, t.TempDir()), thread.DefaultConfig(), opts, zerolog.Nop())
	if err == nil {
		t.Fatal("Expected an anonymous post to be refused")
	}
}

func TestRun_UnknownArticle(t *testing.T) {
	services := newServices(t)

	opts := options{articleID: "a0000000-0000-4000-8000-000000000099"}
	err := run(context.Background(), &bytes.Buffer{}, services, newSession(t, t.TempDir()), thread.DefaultConfig(), opts, zerolog.Nop())
	if err == nil {
		t.Fatal("Expected an error for an unknown article")
	}
}
