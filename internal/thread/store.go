package thread

import (
	"github.com/sporthub-api/internal/models"
)

// Store holds the comment tree of one article page view.
// It is not safe for concurrent use; Thread serialises access to it.
type Store struct {
	comments []*models.Comment
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{}
}

// Initialize replaces the whole tree. Reply counts lower than the number
// of embedded replies are raised so that len(Replies) <= ReplyCount holds.
func (s *Store) Initialize(comments []*models.Comment) {
	s.comments = make([]*models.Comment, 0, len(comments))
	for _, c := range comments {
		if c == nil {
			continue
		}
		cp := c.Clone()
		if cp.ReplyCount < len(cp.Replies) {
			cp.ReplyCount = len(cp.Replies)
		}
		s.comments = append(s.comments, cp)
	}
}

// Len returns the number of resident top-level comments
func (s *Store) Len() int {
	return len(s.comments)
}

// PrependTopLevel inserts c at the head of the top-level sequence
func (s *Store) PrependTopLevel(c *models.Comment) {
	s.comments = append([]*models.Comment{c}, s.comments...)
}

// AppendTopLevel appends a fetched page in the order received.
// Comments already resident are skipped. It returns how many were added.
func (s *Store) AppendTopLevel(page []*models.Comment) int {
	added := 0
	for _, c := range page {
		if c == nil || s.Comment(c.ID) != nil {
			continue
		}
		cp := c.Clone()
		if cp.ReplyCount < len(cp.Replies) {
			cp.ReplyCount = len(cp.Replies)
		}
		s.comments = append(s.comments, cp)
		added++
	}
	return added
}

// PrependReply inserts r at the head of the parent's replies and bumps its
// reply count in the same step. It reports false when the parent is unknown.
func (s *Store) PrependReply(parentID string, r *models.Reply) bool {
	parent := s.Comment(parentID)
	if parent == nil {
		return false
	}
	parent.Replies = append([]*models.Reply{r}, parent.Replies...)
	parent.ReplyCount++
	return true
}

// SetReplies appends a fetched page of replies to the parent, stopping once
// limit (the page boundary) confirmed replies are resident and never
// exceeding the parent's reply count. Pending replies do not take a slot
// since the server has not counted them yet. Replies already resident are
// skipped. It returns how many were added.
func (s *Store) SetReplies(parentID string, page []*models.Reply, limit int) int {
	parent := s.Comment(parentID)
	if parent == nil {
		return 0
	}
	pending := pendingReplies(parent)
	if limit > parent.ReplyCount-pending {
		limit = parent.ReplyCount - pending
	}

	seen := make(map[string]bool, len(parent.Replies))
	for _, r := range parent.Replies {
		seen[r.ID] = true
	}

	confirmed := len(parent.Replies) - pending
	added := 0
	for _, r := range page {
		if confirmed >= limit {
			break
		}
		if r == nil || seen[r.ID] {
			continue
		}
		cp := *r
		parent.Replies = append(parent.Replies, &cp)
		seen[r.ID] = true
		confirmed++
		added++
	}
	return added
}

// pendingReplies counts the optimistic replies under c
func pendingReplies(c *models.Comment) int {
	n := 0
	for _, r := range c.Replies {
		if r.Pending() {
			n++
		}
	}
	return n
}

// ToggleLike flips the viewer's like on a comment or reply and moves the
// like count by one. Unknown ids are ignored and reported as false.
func (s *Store) ToggleLike(id string) bool {
	e := s.entry(id)
	if e == nil {
		return false
	}
	if e.IsLike {
		e.IsLike = false
		if e.LikeCount > 0 {
			e.LikeCount--
		}
	} else {
		e.IsLike = true
		e.LikeCount++
	}
	return true
}

// Comment returns the resident top-level comment with id, or nil
func (s *Store) Comment(id string) *models.Comment {
	for _, c := range s.comments {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Entry returns a copy of the comment or reply with id
func (s *Store) Entry(id string) (models.Entry, bool) {
	e := s.entry(id)
	if e == nil {
		return models.Entry{}, false
	}
	return *e, true
}

// Comments returns a deep copy of the tree
func (s *Store) Comments() []*models.Comment {
	out := make([]*models.Comment, len(s.comments))
	for i, c := range s.comments {
		out[i] = c.Clone()
	}
	return out
}

// Confirm swaps a pending entry's local id for the id the backend assigned
func (s *Store) Confirm(localID string, confirmed models.Entry) bool {
	e := s.pending(localID)
	if e == nil {
		return false
	}
	*e = confirmedEntry(*e, confirmed)
	return true
}

// Remove rolls back a pending entry. Removing a reply gives back the
// reply count it took.
func (s *Store) Remove(localID string) bool {
	for i, c := range s.comments {
		if c.Pending() && c.LocalID == localID {
			s.comments = append(s.comments[:i], s.comments[i+1:]...)
			return true
		}
		for j, r := range c.Replies {
			if r.Pending() && r.LocalID == localID {
				c.Replies = append(c.Replies[:j], c.Replies[j+1:]...)
				c.ReplyCount--
				return true
			}
		}
	}
	return false
}

// entry finds a comment or reply by id, searching one level deep
func (s *Store) entry(id string) *models.Entry {
	for _, c := range s.comments {
		if c.ID == id {
			return &c.Entry
		}
		for _, r := range c.Replies {
			if r.ID == id {
				return &r.Entry
			}
		}
	}
	return nil
}

func (s *Store) pending(localID string) *models.Entry {
	for _, c := range s.comments {
		if c.Pending() && c.LocalID == localID {
			return &c.Entry
		}
		for _, r := range c.Replies {
			if r.Pending() && r.LocalID == localID {
				return &r.Entry
			}
		}
	}
	return nil
}
