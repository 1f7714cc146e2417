// Package session holds the current viewer of a page and the user record
// that outlives a single page view.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sporthub-api/internal/models"
)

// UserStorageKey is the fixed key the logged-in user record is stored under
const UserStorageKey = "sporthub_user"

// ErrNotLoggedIn is returned by operations that need a current user
var ErrNotLoggedIn = errors.New("not logged in")

// Store persists the logged-in user record as JSON under a key
type Store interface {
	Load(ctx context.Context, key string) (*models.User, error)
	Save(ctx context.Context, key string, user *models.User) error
	Delete(ctx context.Context, key string) error
}

// Session is one viewer's state: who they are and when they last posted.
// It is safe for concurrent use.
type Session struct {
	mu           sync.RWMutex
	user         *models.User
	lastSubmitAt time.Time
	store        Store
	key          string
}

// New creates an anonymous session persisted through store.
// store may be nil for sessions that never outlive the process.
func New(store Store) *Session {
	return &Session{store: store, key: UserStorageKey}
}

// NewWithUser creates a session that is already logged in as user
func NewWithUser(user *models.User) *Session {
	s := New(nil)
	s.user = cloneUser(user)
	return s
}

// Restore reads the persisted user record, if any, into the session
func (s *Session) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	user, err := s.store.Load(ctx, s.key)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return nil
}

// IsLoggedIn reports whether there is a current user
func (s *Session) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// User returns a copy of the current user, or nil
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneUser(s.user)
}

// Viewer returns the current user as an author snapshot
func (s *Session) Viewer() (models.Author, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.Author{}, false
	}
	return s.user.AsAuthor(), true
}

// Login makes user the current user and persists the record
func (s *Session) Login(ctx context.Context, user *models.User) error {
	if user == nil || user.ID == "" {
		return errors.New("login: user id is required")
	}

	s.mu.Lock()
	s.user = cloneUser(user)
	s.mu.Unlock()

	return s.persist(ctx)
}

// Logout forgets the current user and the persisted record
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.lastSubmitAt = time.Time{}
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	if err := s.store.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// UpdateProfile applies update to the current user and persists the result
func (s *Session) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return nil, ErrNotLoggedIn
	}
	if update.Name != nil {
		s.user.Name = *update.Name
	}
	if update.Avatar != nil {
		s.user.Avatar = *update.Avatar
	}
	if update.Gender != nil {
		s.user.Gender = *update.Gender
	}
	s.user.UpdatedAt = time.Now()
	out := cloneUser(s.user)
	s.mu.Unlock()

	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

// LastSubmitAt is the time of the viewer's most recent successful submission
func (s *Session) LastSubmitAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSubmitAt
}

// MarkSubmitted records a successful submission at t
func (s *Session) MarkSubmitted(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.After(s.lastSubmitAt) {
		s.lastSubmitAt = t
	}
}

func (s *Session) persist(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	s.mu.RLock()
	user := cloneUser(s.user)
	s.mu.RUnlock()

	if err := s.store.Save(ctx, s.key, user); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

func cloneUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
