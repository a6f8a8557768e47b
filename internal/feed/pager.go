// Package feed implements paginated loading of the reverse-chronological
// post feed. The Pager tracks the pagination offset and merges fetched
// pages (replace on refresh, append on load-more), discarding completions
// from superseded requests so a late response can never clobber the
// result of a newer one.
package feed

import (
	"context"
	"errors"

	"snapfeed/internal/backend"
)

// DefaultPageSize is the number of posts requested per page.
const DefaultPageSize = 10

// ErrFetchInFlight is returned when a load-more is requested while a
// fetch is already outstanding. A refresh is allowed to supersede an
// outstanding fetch instead.
var ErrFetchInFlight = errors.New("feed fetch already in flight")

// Fetcher is the slice of the backend client the pager needs.
type Fetcher interface {
	RecentPosts(ctx context.Context, limit, skip int) ([]backend.Post, error)
}

// PageResult is the single-value completion of one issued fetch. It
// carries the new page only; merging into held state happens in Apply,
// which keeps the fetch itself idempotent.
type PageResult struct {
	// Posts is the fetched page, newest first. Not yet merged.
	Posts []backend.Post
	// Err is the classified fetch failure, nil on success.
	Err error
	// Reset records whether this fetch was a refresh.
	Reset bool
	// Short reports that the page came back smaller than the page size,
	// signalling a likely last page. It is not an end-of-feed error.
	Short bool

	seq uint64
}

// Pager owns the client-held view of the feed. It is confined to a
// single owner goroutine: Load and Apply must be called from the
// goroutine that owns the feed state, and only the returned channel
// crosses goroutines.
type Pager struct {
	fetch    Fetcher
	pageSize int

	posts    []backend.Post
	inFlight bool
	issued   uint64
	short    bool
}

// NewPager creates a pager over fetch. A pageSize of 0 selects
// DefaultPageSize.
func NewPager(fetch Fetcher, pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager{fetch: fetch, pageSize: pageSize}
}

// Posts returns a copy of the currently held posts, newest first. The
// caller may reorder or mutate the returned slice freely.
func (p *Pager) Posts() []backend.Post {
	return append([]backend.Post(nil), p.posts...)
}

// Offset is the count of posts fetched so far; the next load-more
// requests posts starting here.
func (p *Pager) Offset() int {
	return len(p.posts)
}

// InFlight reports whether a fetch is outstanding.
func (p *Pager) InFlight() bool {
	return p.inFlight
}

// MayHaveMore reports whether a further load-more is worth issuing. It
// turns false once a page comes back short and true again after a
// refresh.
func (p *Pager) MayHaveMore() bool {
	return !p.short
}

// Load issues one page fetch and returns its single-value completion
// channel. With reset true the fetch starts at offset 0 and supersedes
// any outstanding request; with reset false it starts at the current
// offset and is rejected while a fetch is in flight.
//
// The completion must be handed back to Apply on the owner goroutine;
// Load itself never mutates the held posts.
func (p *Pager) Load(ctx context.Context, reset bool) (<-chan PageResult, error) {
	if p.inFlight && !reset {
		return nil, ErrFetchInFlight
	}

	p.issued++
	p.inFlight = true

	seq := p.issued
	skip := 0
	if !reset {
		skip = len(p.posts)
	}

	ch := make(chan PageResult, 1)
	go func() {
		posts, err := p.fetch.RecentPosts(ctx, p.pageSize, skip)
		ch <- PageResult{
			Posts: posts,
			Err:   err,
			Reset: reset,
			Short: err == nil && len(posts) < p.pageSize,
			seq:   seq,
		}
	}()
	return ch, nil
}

// Apply merges a completion into the held state. It returns false when
// the completion is stale (a newer fetch was issued after this one) and
// the state was left untouched; the feed then keeps reflecting the
// latest-issued request.
//
// For a current completion, Apply clears the in-flight flag and, on
// success, replaces the held posts (refresh) or appends the new page
// (load-more). On failure the held posts are kept and the caller
// inspects PageResult.Err.
func (p *Pager) Apply(r PageResult) bool {
	if r.seq != p.issued {
		return false
	}

	p.inFlight = false
	if r.Err != nil {
		return true
	}

	if r.Reset {
		p.posts = append([]backend.Post(nil), r.Posts...)
	} else {
		p.posts = append(p.posts, r.Posts...)
	}
	p.short = r.Short
	return true
}
