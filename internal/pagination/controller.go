// Package pagination merges remote listing pages into a single scrollable
// collection and guards against overlapping next-page fetches.
package pagination

import (
	"context"
	"sync"
	"time"

	"pokegram/feed/internal/domain"

	log "github.com/sirupsen/logrus"
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// PageFetcher loads the page starting at cursor.
type PageFetcher func(ctx context.Context, cursor domain.Cursor) (*domain.ListingPage, error)

// FetchTimeout bounds a single page fetch. The fetch is detached from its
// callers' cancellation, so this is what stops a hung request.
const FetchTimeout = 30 * time.Second

// fetchCall is a fetch in flight. Callers that arrive while it runs wait on done.
type fetchCall struct {
	done chan struct{}
	page *domain.ListingPage
	err  error
	// waiters counts callers that joined after the fetch started.
	waiters int
}

type Controller struct {
	name  string
	fetch PageFetcher
	first domain.Cursor

	mu       sync.Mutex
	state    State
	next     domain.Cursor
	pages    []*domain.ListingPage
	inflight *fetchCall
}

func NewController(name string, fetch PageFetcher, pageSize int) *Controller {
	first := domain.Cursor{Offset: 0, Limit: pageSize}
	return &Controller{
		name:  name,
		fetch: fetch,
		first: first,
		state: StateIdle,
		next:  first,
	}
}

// FetchNext loads the next page and appends it. Calls made while a fetch is in
// flight join that fetch and get its result. On an exhausted list it returns (nil, nil).
//
// A caller whose ctx ends stops waiting and gets ctx.Err(), but the fetch
// itself keeps running for the other callers and still updates the list.
func (c *Controller) FetchNext(ctx context.Context) (*domain.ListingPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	call := c.inflight
	if call != nil {
		call.waiters++
	} else {
		if c.state == StateExhausted {
			c.mu.Unlock()
			return nil, nil
		}

		call = &fetchCall{done: make(chan struct{})}
		c.inflight = call
		prev := c.state
		c.state = StateLoading
		go c.run(context.WithoutCancel(ctx), call, c.next, prev)
	}
	c.mu.Unlock()

	select {
	case <-call.done:
		return call.page, call.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Controller) run(ctx context.Context, call *fetchCall, cursor domain.Cursor, prev State) {
	ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	log.Debugf("%s: fetching page offset=%d limit=%d", c.name, cursor.Offset, cursor.Limit)
	page, err := c.fetch(ctx, cursor)

	c.mu.Lock()
	if err != nil {
		c.state = prev
		log.Warnf("⚠️ %s: page fetch at offset %d failed: %v", c.name, cursor.Offset, err)
	} else {
		c.pages = append(c.pages, page)
		if page.Next == nil {
			c.state = StateExhausted
			log.Debugf("%s: list exhausted after %d pages", c.name, len(c.pages))
		} else {
			c.state = StateReady
			c.next = *page.Next
		}
	}
	call.page, call.err = page, err
	waiters := call.waiters
	c.inflight = nil
	c.mu.Unlock()

	close(call.done)
	if waiters > 0 {
		log.Debugf("%s: page at offset %d shared with %d joined callers", c.name, cursor.Offset, waiters)
	}
}

// MaybeFetchNext fetches only when pos is within threshold of the content end,
// more pages exist and nothing is in flight. It reports whether a fetch ran.
func (c *Controller) MaybeFetchNext(ctx context.Context, pos ScrollPosition, threshold int) (bool, error) {
	if !NearEnd(pos, threshold) || !c.HasNext() || c.IsFetching() {
		return false, nil
	}
	_, err := c.FetchNext(ctx)
	return true, err
}

// Items returns all loaded items in page order.
func (c *Controller) Items() []domain.ItemRef {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, p := range c.pages {
		n += len(p.Items)
	}
	items := make([]domain.ItemRef, 0, n)
	for _, p := range c.pages {
		items = append(items, p.Items...)
	}
	return items
}

func (c *Controller) Pages() []*domain.ListingPage {
	c.mu.Lock()
	defer c.mu.Unlock()

	pages := make([]*domain.ListingPage, len(c.pages))
	copy(pages, c.pages)
	return pages
}

func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, p := range c.pages {
		n += len(p.Items)
	}
	return n
}

// TotalCount is the server-reported size of the list, 0 before the first page.
func (c *Controller) TotalCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.pages) == 0 {
		return 0
	}
	return c.pages[len(c.pages)-1].TotalCount
}

func (c *Controller) HasNext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state != StateExhausted
}

func (c *Controller) IsFetching() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight != nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Reset drops all loaded pages and rewinds to the first page. It reports false
// and does nothing while a fetch is in flight.
func (c *Controller) Reset() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inflight != nil {
		return false
	}
	c.pages = nil
	c.next = c.first
	c.state = StateIdle
	return true
}
