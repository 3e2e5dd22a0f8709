// Package coordinator drives search sessions and result pagination for a
// list of remote files.
//
// A Coordinator is owned by one goroutine (its "main loop"). All exported
// methods except DetachView must be called from that goroutine; fetches run
// on worker goroutines and hand their results back through a mainloop.Poster.
package coordinator

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/FranLegon/cloud-drives-search/internal/eventbus"
	"github.com/FranLegon/cloud-drives-search/internal/logger"
	"github.com/FranLegon/cloud-drives-search/internal/mainloop"
	"github.com/FranLegon/cloud-drives-search/internal/model"
	"github.com/FranLegon/cloud-drives-search/internal/search"
)

// Adapter is the list view the coordinator drives.
type Adapter interface {
	ReplaceItems(items []model.Item)
	AppendItems(items []model.Item)
	SetEmptyState(state search.EmptyState)
	SetLoadingState(loading bool)
	// ShowNotice displays a transient, dismissible message.
	ShowNotice(msg string)
}

// Filterable is implemented by adapters that can narrow their own items
// without a fetch.
type Filterable interface {
	Filter(query string)
}

// Session is the search progress of one coordinator.
type Session struct {
	Current   search.Request
	Running   bool
	PageToken int
	// Fresh is true until the first page of the current search has loaded.
	Fresh bool
}

// PageResult reports the outcome of one fetch to the completion hook.
type PageResult struct {
	Request search.Request
	Page    int
	Count   int
	Loaded  int
	End     bool
	Err     error
}

// Stats counts coordinator decisions since creation.
type Stats struct {
	Dispatched int
	Duplicates int
	Dropped    int
	Failed     int
	Discarded  int
}

type Option func(*Coordinator)

// WithCache shows cached items while the first page is fetched.
func WithCache(cache search.CacheReader) Option {
	return func(c *Coordinator) { c.cache = cache }
}

// WithThresholds overrides DefaultThresholds.
func WithThresholds(t Thresholds) Option {
	return func(c *Coordinator) { c.thresholds = t }
}

// WithContext sets the parent context of every fetch.
func WithContext(ctx context.Context) Option {
	return func(c *Coordinator) { c.ctx = ctx }
}

// WithCompletionHook registers fn to run on the main loop after every fetch
// whose result was applied or failed.
func WithCompletionHook(fn func(PageResult)) Option {
	return func(c *Coordinator) { c.hook = fn }
}

// Coordinator serializes search requests and pagination for one list.
type Coordinator struct {
	fetcher    search.Fetcher
	cache      search.CacheReader
	poster     mainloop.Poster
	thresholds Thresholds
	ctx        context.Context
	hook       func(PageResult)
	bus        eventbus.EventBus

	adapter Adapter
	alive   atomic.Bool
	session Session
	pending bool
	task    *Task
	loaded  int
	stats   Stats
}

// New creates a coordinator with no view attached and no active search.
func New(fetcher search.Fetcher, poster mainloop.Poster, opts ...Option) *Coordinator {
	c := &Coordinator{
		fetcher:    fetcher,
		poster:     poster,
		thresholds: DefaultThresholds,
		ctx:        context.Background(),
		session:    Session{Current: search.None},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns a copy of the current session.
func (c *Coordinator) Session() Session {
	return c.session
}

// Task returns the in-flight fetch, or nil.
func (c *Coordinator) Task() *Task {
	return c.task
}

// Stats returns decision counters.
func (c *Coordinator) Stats() Stats {
	return c.stats
}

// Loaded returns the number of items merged into the adapter by the session.
func (c *Coordinator) Loaded() int {
	return c.loaded
}

// AttachView connects the adapter. A search started while no view was
// attached is dispatched now.
func (c *Coordinator) AttachView(a Adapter) {
	c.adapter = a
	c.alive.Store(true)
	if c.pending {
		c.pending = false
		c.StartSearch(c.session.Current)
	}
}

// DetachView marks the view as gone. The in-flight fetch is cancelled and
// its result, should it still arrive, is discarded. Safe to call from any
// goroutine.
func (c *Coordinator) DetachView() {
	if !c.alive.Swap(false) {
		return
	}
	c.poster.Post(func() {
		if c.alive.Load() {
			return
		}
		c.adapter = nil
		if c.task != nil {
			if c.task.Cancel() && c.task.Page == search.FirstPage {
				c.pending = true
			}
			c.task = nil
		}
		c.session.Running = false
	})
}

// StartSearch begins a new search. A request equal to the running one is
// ignored; a different request cancels the running fetch first.
func (c *Coordinator) StartSearch(req search.Request) {
	tags := []string{"search", req.String()}

	if c.session.Running && c.task != nil && c.session.Current.Equal(req) {
		c.stats.Duplicates++
		logger.DebugTagged(tags, "Search already running, ignoring duplicate request")
		return
	}
	if c.task != nil {
		logger.DebugTagged(tags, "Cancelling running fetch %s for %s", c.task.ID, c.task.Request)
		c.task.Cancel()
		c.task = nil
	}

	c.session = Session{Current: req, PageToken: search.PageUnset, Fresh: true}
	c.loaded = 0

	if !c.alive.Load() {
		c.pending = true
		return
	}
	c.pending = false

	c.adapter.ReplaceItems(nil)
	c.adapter.SetEmptyState(search.LoadingEmptyState())
	c.adapter.SetLoadingState(true)
	c.dispatch(req, search.FirstPage)
}

// OnScrolled requests the next page when the visible window nears the end
// of the loaded items. After a failed fetch the failed page, the first one
// included, is requested again. It reports whether a fetch was dispatched.
func (c *Coordinator) OnScrolled(w ScrollWindow) bool {
	if w.Delta <= 0 || !c.alive.Load() {
		return false
	}
	if c.session.Running {
		c.stats.Dropped++
		logger.DebugTagged([]string{"search", c.session.Current.String()}, "Fetch running, dropping scroll at item %d", w.LastVisible)
		return false
	}
	if c.session.PageToken <= search.PageUnset {
		return false
	}

	remaining := c.loaded - (w.LastVisible + 1)
	if remaining >= c.thresholds.For(w.Layout) {
		return false
	}

	if c.session.PageToken == search.FirstPage && c.loaded == 0 {
		c.adapter.SetEmptyState(search.LoadingEmptyState())
	}
	c.adapter.SetLoadingState(true)
	c.dispatch(c.session.Current, c.session.PageToken)
	return true
}

// ResetSession drops the current search. Calling it repeatedly is harmless.
func (c *Coordinator) ResetSession() {
	wasRunning := c.session.Running
	if c.task != nil {
		c.task.Cancel()
		c.task = nil
	}
	c.session = Session{Current: search.None, PageToken: search.PageUnset}
	c.pending = false
	if wasRunning && c.alive.Load() {
		c.adapter.SetLoadingState(false)
	}
}

// Filter narrows the attached list locally. It returns false when the
// adapter cannot filter.
func (c *Coordinator) Filter(query string) bool {
	if !c.alive.Load() {
		return false
	}
	f, ok := c.adapter.(Filterable)
	if !ok {
		return false
	}
	f.Filter(query)
	return true
}

func (c *Coordinator) dispatch(req search.Request, page int) {
	task := newTask(c.ctx, req, page)
	c.task = task
	c.session.Running = true
	c.stats.Dispatched++

	logger.DebugTagged([]string{"search", req.String()}, "Dispatching fetch %s for page %d", task.ID, page)

	fetcher, cache, poster := c.fetcher, c.cache, c.poster
	task.start(func(ctx context.Context) {
		if page == search.FirstPage && cache != nil {
			items, err := cache.Cached(ctx, req)
			if err != nil {
				logger.WarningTagged([]string{"cache"}, "Failed to read cached results for %s: %v", req, err)
			} else if len(items) > 0 && !task.Cancelled() {
				poster.Post(func() { c.onPreview(task, items) })
			}
		}

		result, err := fetcher.Fetch(ctx, req, page)
		poster.Post(func() { c.onComplete(task, result, err) })
	})
}

func (c *Coordinator) onPreview(task *Task, items []model.Item) {
	if c.task != task || task.State() != TaskRunning || !c.alive.Load() {
		return
	}
	c.adapter.ReplaceItems(items)
	c.loaded = len(items)
}

func (c *Coordinator) onComplete(task *Task, result search.ResultPage, err error) {
	if c.task != task || !task.complete() {
		c.stats.Discarded++
		return
	}
	c.task = nil
	c.session.Running = false

	if !c.alive.Load() {
		c.stats.Discarded++
		return
	}

	req := task.Request
	tags := []string{"search", req.String()}

	if err != nil && search.ClassifyError(err) == search.KindCancelled {
		logger.DebugTagged(tags, "Fetch of page %d cancelled", task.Page)
		c.adapter.SetLoadingState(false)
		return
	}
	if err != nil {
		c.stats.Failed++
		logger.WarningTagged(tags, "Fetch of page %d failed: %v", task.Page, err)
		// The next forward scroll fetches the failed page again.
		c.session.PageToken = task.Page
		c.adapter.SetLoadingState(false)
		c.adapter.ShowNotice(noticeFor(err))
		if c.loaded == 0 {
			c.adapter.SetEmptyState(search.Classify(&req).Empty)
		}
		c.publish(eventbus.SearchFailedEvent{Request: req, Page: task.Page, Err: err})
		c.notify(PageResult{Request: req, Page: task.Page, Loaded: c.loaded, Err: err})
		return
	}

	next := result.NextPageToken
	if next != search.PageEnd && next <= task.Page {
		logger.WarningTagged(tags, "Page %d returned non-advancing token %d, treating as end", task.Page, next)
		next = search.PageEnd
	}

	if task.Page == search.FirstPage {
		c.adapter.ReplaceItems(result.Items)
		c.loaded = len(result.Items)
		c.session.Fresh = false
	} else {
		c.adapter.AppendItems(result.Items)
		c.loaded += len(result.Items)
	}
	c.session.PageToken = next
	end := next == search.PageEnd

	logger.DebugTagged(tags, "Page %d merged: %d items, %d loaded, next %d", task.Page, len(result.Items), c.loaded, next)

	if len(result.Items) == 0 && !end {
		// An empty page leaves nothing to scroll towards the next one.
		c.dispatch(req, next)
	} else {
		c.adapter.SetLoadingState(false)
		if c.loaded == 0 {
			c.adapter.SetEmptyState(search.Classify(&req).Empty)
		}
	}

	c.publish(eventbus.SearchCompletedEvent{Request: req, Page: task.Page, Count: len(result.Items), End: end})
	c.notify(PageResult{Request: req, Page: task.Page, Count: len(result.Items), Loaded: c.loaded, End: end})
}

func (c *Coordinator) notify(r PageResult) {
	if c.hook != nil {
		c.hook(r)
	}
}

func (c *Coordinator) publish(e eventbus.Event) {
	if c.bus != nil {
		c.bus.Publish(e)
	}
}

func noticeFor(err error) string {
	switch search.ClassifyError(err) {
	case search.KindNetwork:
		return "No connection. Showing what is already loaded."
	case search.KindServer:
		return "The server did not answer. Try again in a moment."
	case search.KindAuth:
		return "Your account needs to be signed in again."
	case search.KindUnsupported:
		return "This search is not available for this account."
	case search.KindNotFound:
		return "The requested results are no longer available."
	}
	return fmt.Sprintf("Search failed: %v", err)
}
