package thread

// ReplyView is the visibility state of one comment's replies.
// A collapsed comment has no page.
type ReplyView struct {
	Expanded bool
	Page     int
}

// Pagination tracks how much of the thread is materialised and whether
// more can be fetched. It performs no I/O; Thread drives the fetches.
type Pagination struct {
	pageSize      int
	replyPageSize int

	page    int
	hasMore bool
	loading bool

	// expanded comment id -> reply page; absent means collapsed
	replies        map[string]int
	loadingReplies map[string]bool
}

// NewPagination creates a controller for the given page sizes
func NewPagination(pageSize, replyPageSize int) *Pagination {
	return &Pagination{
		pageSize:       pageSize,
		replyPageSize:  replyPageSize,
		page:           1,
		replies:        make(map[string]int),
		loadingReplies: make(map[string]bool),
	}
}

// Reset starts over after the initial page of initialCount comments was loaded.
// A short initial page means there is nothing further to fetch.
func (p *Pagination) Reset(initialCount int) {
	p.page = 1
	p.hasMore = initialCount >= p.pageSize
	p.loading = false
	p.replies = make(map[string]int)
	p.loadingReplies = make(map[string]bool)
}

// Page is the last top-level page that was loaded
func (p *Pagination) Page() int { return p.page }

// HasMore reports whether another top-level page may exist
func (p *Pagination) HasMore() bool { return p.hasMore }

// Loading reports whether a top-level fetch is outstanding
func (p *Pagination) Loading() bool { return p.loading }

// BeginLoadMore claims the next top-level page. ok is false while a fetch
// is outstanding or once the last page has been seen.
func (p *Pagination) BeginLoadMore() (page int, ok bool) {
	if p.loading || !p.hasMore {
		return 0, false
	}
	p.loading = true
	return p.page + 1, true
}

// EndLoadMore records the outcome of the fetch claimed by BeginLoadMore.
// A failed fetch leaves the page counter and HasMore untouched.
func (p *Pagination) EndLoadMore(fetched int, err error) {
	p.loading = false
	if err != nil {
		return
	}
	p.page++
	if fetched < p.pageSize {
		p.hasMore = false
	}
}

// ToggleReplies flips a comment between collapsed and expanded at page 1
func (p *Pagination) ToggleReplies(id string) (expanded bool) {
	if _, ok := p.replies[id]; ok {
		delete(p.replies, id)
		return false
	}
	p.replies[id] = 1
	return true
}

// Collapse hides a comment's replies
func (p *Pagination) Collapse(id string) {
	delete(p.replies, id)
}

// Replies returns the visibility state of a comment's replies
func (p *Pagination) Replies(id string) ReplyView {
	page, ok := p.replies[id]
	return ReplyView{Expanded: ok, Page: page}
}

// SetReplyPage moves an expanded comment to page. Collapsed comments are left alone.
func (p *Pagination) SetReplyPage(id string, page int) {
	if _, ok := p.replies[id]; ok {
		p.replies[id] = page
	}
}

// BeginReplies marks a reply fetch for id as outstanding; false if one already is
func (p *Pagination) BeginReplies(id string) bool {
	if p.loadingReplies[id] {
		return false
	}
	p.loadingReplies[id] = true
	return true
}

// EndReplies clears the outstanding reply fetch for id
func (p *Pagination) EndReplies(id string) {
	delete(p.loadingReplies, id)
}

// LoadingReplies reports whether a reply fetch for id is outstanding
func (p *Pagination) LoadingReplies(id string) bool {
	return p.loadingReplies[id]
}

// ReplyLimit is the number of replies visible at page
func (p *Pagination) ReplyLimit(page int) int {
	return page * p.replyPageSize
}

// VisibleReplies is how many of resident replies are shown for id
func (p *Pagination) VisibleReplies(id string, resident int) int {
	page, ok := p.replies[id]
	if !ok {
		return 0
	}
	return min(p.ReplyLimit(page), resident)
}

// HasMoreReplies reports whether the "more replies" control should be offered
func (p *Pagination) HasMoreReplies(id string, resident, replyCount int) bool {
	if _, ok := p.replies[id]; !ok {
		return false
	}
	return p.VisibleReplies(id, resident) < replyCount
}
