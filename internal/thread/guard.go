package thread

import (
	"errors"
	"strings"
	"time"

	"github.com/sporthub-api/internal/cooldown"
	"github.com/sporthub-api/internal/session"
)

var (
	// ErrEmptyContent is returned for blank submissions
	ErrEmptyContent = errors.New("content is empty")
	// ErrInFlight is returned when the target already has a submission outstanding
	ErrInFlight = errors.New("a submission is already in flight for this target")
	// ErrAuthRequired is returned for writes by an anonymous viewer
	ErrAuthRequired = errors.New("login required")
	// ErrCommentNotFound is returned when a reply targets a comment that is not resident
	ErrCommentNotFound = errors.New("comment not found")
	// ErrTimeout is returned when the backend did not answer within the submit timeout
	ErrTimeout = errors.New("submission timed out")
)

// Target identifies an input box: the main composer or the reply box under a comment
type Target string

// MainComposer is the comment box at the top of the thread
const MainComposer Target = ""

// ReplyTarget is the reply box under the comment with commentID
func ReplyTarget(commentID string) Target {
	return Target("reply:" + commentID)
}

// Guard rejects blank, duplicate and too-frequent submissions.
// The cool-down clock lives on the viewer's session so that every target
// shares it.
type Guard struct {
	window   time.Duration
	inFlight map[Target]bool
	now      func() time.Time
}

// NewGuard creates a guard with the given cool-down window
func NewGuard(window time.Duration) *Guard {
	return &Guard{
		window:   window,
		inFlight: make(map[Target]bool),
		now:      time.Now,
	}
}

// Begin runs the pre-submission checks for target and, when they pass,
// marks it in flight. Every successful Begin must be paired with End.
func (g *Guard) Begin(sess *session.Session, target Target, content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	if g.inFlight[target] {
		return ErrInFlight
	}
	if sess == nil || !sess.IsLoggedIn() {
		return ErrAuthRequired
	}
	if err := cooldown.Check(sess.LastSubmitAt(), g.now(), g.window); err != nil {
		return err
	}
	g.inFlight[target] = true
	return nil
}

// End clears the in-flight flag of target
func (g *Guard) End(target Target) {
	delete(g.inFlight, target)
}

// Succeeded starts a new cool-down for the viewer
func (g *Guard) Succeeded(sess *session.Session) {
	sess.MarkSubmitted(g.now())
}

// InFlight reports whether target has a submission outstanding
func (g *Guard) InFlight(target Target) bool {
	return g.inFlight[target]
}
