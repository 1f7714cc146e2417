package thread

import (
	"github.com/sporthub-api/internal/session"
)

// Reactions applies like toggles for logged-in viewers
type Reactions struct {
	store *Store
	sess  *session.Session
}

// NewReactions creates a controller over store for the viewer in sess
func NewReactions(store *Store, sess *session.Session) *Reactions {
	return &Reactions{store: store, sess: sess}
}

// Like toggles the viewer's like on id. Anonymous viewers get
// ErrAuthRequired and nothing changes; unknown ids are a no-op.
func (r *Reactions) Like(id string) error {
	if r.sess == nil || !r.sess.IsLoggedIn() {
		return ErrAuthRequired
	}
	r.store.ToggleLike(id)
	return nil
}
