// Command thread is a console client for one article's comment thread. It
// keeps the viewer signed in between runs and drives the same thread engine
// a page view does, backed directly by the service layer.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sporthub-api/internal/config"
	"github.com/sporthub-api/internal/cooldown"
	"github.com/sporthub-api/internal/database"
	"github.com/sporthub-api/internal/metrics"
	"github.com/sporthub-api/internal/models"
	"github.com/sporthub-api/internal/repository"
	"github.com/sporthub-api/internal/service"
	"github.com/sporthub-api/internal/session"
	"github.com/sporthub-api/internal/thread"
	"github.com/sporthub-api/pkg/logger"
)

type options struct {
	articleID  string
	sessionDir string
	client     string
	email      string
	name       string
	logout     bool
	post       string
	replyTo    string
	expand     string
	like       string
	pages      int
}

func main() {
	var opts options
	flag.StringVar(&opts.articleID, "article", "", "article id (required)")
	flag.StringVar(&opts.sessionDir, "session-dir", ".sporthub", "directory holding the signed-in user")
	flag.StringVar(&opts.client, "client", "cli", "session namespace when sessions live in Redis")
	flag.StringVar(&opts.email, "login", "", "sign in with this email before anything else")
	flag.StringVar(&opts.name, "name", "", "display name used with -login")
	flag.BoolVar(&opts.logout, "logout", false, "sign out and forget the stored user")
	flag.StringVar(&opts.post, "post", "", "post this text as a comment, or as a reply with -reply-to")
	flag.StringVar(&opts.replyTo, "reply-to", "", "comment id to reply to")
	flag.StringVar(&opts.expand, "expand", "", "comment id whose replies are shown")
	flag.StringVar(&opts.like, "like", "", "comment or reply id to like or unlike")
	flag.IntVar(&opts.pages, "pages", 1, "number of comment pages to show")
	flag.Parse()

	log := logger.New()
	if opts.articleID == "" {
		fmt.Fprintln(os.Stderr, "-article is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	store, closeStore, err := newSessionStore(cfg, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open session store")
	}
	defer closeStore()

	services := service.NewServices(
		repository.New(db),
		cooldown.NewMemoryLimiter(cfg.Comments.Cooldown),
		metrics.New(nil),
		cfg,
		log,
	)

	if err := run(context.Background(), os.Stdout, services, session.New(store), threadConfig(cfg), opts, log); err != nil {
		log.Fatal().Err(err).Msg("Thread command failed")
	}
}

// run restores the session, applies the requested actions and prints the thread
func run(ctx context.Context, w io.Writer, services *service.Services, sess *session.Session, cfg thread.Config, opts options, log zerolog.Logger) error {
	if err := sess.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("Ignoring unreadable session")
	}

	switch {
	case opts.logout:
		if err := sess.Logout(ctx); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
	case opts.email != "":
		user, err := services.User.Login(ctx, &models.LoginRequest{Email: opts.email, Name: opts.name})
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}
		if err := sess.Login(ctx, user); err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}

	viewerID := ""
	if u := sess.User(); u != nil {
		viewerID = u.ID
	}

	detail, err := services.Article.GetArticle(ctx, opts.articleID, viewerID)
	if err != nil {
		return fmt.Errorf("load article: %w", err)
	}

	th := thread.New(opts.articleID, sess, service.NewLocalBackend(services.Comment, viewerID), cfg, log)
	th.LoadArticle(detail)

	for page := 1; page < opts.pages && th.HasMoreComments(); page++ {
		if _, err := th.LoadMoreComments(ctx); err != nil {
			return fmt.Errorf("load comments: %w", err)
		}
	}

	if opts.post != "" {
		if err := submit(ctx, th, opts); err != nil {
			return err
		}
	}
	if opts.like != "" {
		if err := th.Like(opts.like); err != nil {
			return fmt.Errorf("like: %w", err)
		}
	}
	if opts.expand != "" {
		if _, err := th.ToggleReplies(ctx, opts.expand); err != nil {
			return fmt.Errorf("expand replies: %w", err)
		}
	}

	render(w, detail, sess, th)
	return nil
}

func submit(ctx context.Context, th *thread.Thread, opts options) error {
	if opts.replyTo == "" {
		th.SetDraft(thread.MainComposer, opts.post)
		if _, err := th.SubmitComment(ctx); err != nil {
			return fmt.Errorf("post comment: %w", err)
		}
		return nil
	}

	if err := th.OpenReply(opts.replyTo); err != nil {
		return fmt.Errorf("post reply: %w", err)
	}
	th.SetDraft(thread.ReplyTarget(opts.replyTo), opts.post)
	if _, err := th.SubmitReply(ctx, opts.replyTo); err != nil {
		return fmt.Errorf("post reply: %w", err)
	}
	return nil
}

func render(w io.Writer, detail *models.ArticleDetail, sess *session.Session, th *thread.Thread) {
	fmt.Fprintf(w, "%s\n%s\n", detail.Title, detail.TargetURL)
	if u := sess.User(); u != nil {
		fmt.Fprintf(w, "signed in as %s\n", u.Name)
	} else {
		fmt.Fprintln(w, "not signed in")
	}
	fmt.Fprintln(w)

	for _, c := range th.Comments() {
		fmt.Fprintf(w, "%s %s\n", c.ID, line(c.Entry))
		for _, r := range th.VisibleReplies(c.ID) {
			fmt.Fprintf(w, "    %s %s\n", r.ID, line(r.Entry))
		}
		if th.HasMoreReplies(c.ID) {
			fmt.Fprintf(w, "    (%d replies)\n", c.ReplyCount)
		}
	}
	if th.HasMoreComments() {
		fmt.Fprintln(w, "(more comments)")
	}
}

func line(e models.Entry) string {
	var b strings.Builder
	b.WriteString(e.Author.Name)
	if e.IsAuthor {
		b.WriteString(" [author]")
	}
	fmt.Fprintf(&b, " %s: %s", e.CreatedAt.Format("2006-01-02 15:04"), e.Content)
	if e.LikeCount > 0 {
		fmt.Fprintf(&b, " (%d likes", e.LikeCount)
		if e.IsLike {
			b.WriteString(", liked")
		}
		b.WriteString(")")
	}
	return b.String()
}

func threadConfig(cfg *config.Config) thread.Config {
	tc := thread.DefaultConfig()
	tc.PageSize = cfg.Comments.PageSize
	tc.ReplyPageSize = cfg.Comments.ReplyPageSize
	tc.Cooldown = cfg.Comments.Cooldown
	tc.SubmitTimeout = cfg.Comments.SubmitTimeout
	return tc
}

// newSessionStore keeps the signed-in user in Redis when it is enabled and
// in a local directory otherwise.
func newSessionStore(cfg *config.Config, opts options) (session.Store, func(), error) {
	if !cfg.Redis.Enabled {
		store, err := session.NewFileStore(opts.sessionDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return session.NewRedisStore(rdb, "sporthub:session:"+opts.client), func() { rdb.Close() }, nil
}
