package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/FranLegon/cloud-drives-search/internal/coordinator"
	"github.com/FranLegon/cloud-drives-search/internal/model"
	"github.com/FranLegon/cloud-drives-search/internal/search"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ coordinator.Adapter    = (*Model)(nil)
	_ coordinator.Filterable = (*Model)(nil)
)

// stubFetcher answers immediately from a table keyed by request type.
type stubFetcher struct {
	mu    sync.Mutex
	reqs  []search.Request
	pages map[search.Type][]search.ResultPage
	errs  []error
}

func (f *stubFetcher) Fetch(ctx context.Context, req search.Request, page int) (search.ResultPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return search.ResultPage{}, err
	}
	pages := f.pages[req.Type]
	if page-1 < len(pages) {
		return pages[page-1], nil
	}
	return search.ResultPage{NextPageToken: search.PageEnd}, nil
}

func (f *stubFetcher) last() search.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reqs[len(f.reqs)-1]
}

func (f *stubFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

type harness struct {
	t     *testing.T
	m     *Model
	msgs  chan tea.Msg
	fetch *stubFetcher
}

func newHarness(t *testing.T, pages map[search.Type][]search.ResultPage) *harness {
	f := &stubFetcher{pages: pages}
	m := New(f, Options{Initial: search.None, GridColumns: 2}, coordinator.WithThresholds(coordinator.Thresholds{
		ListLookahead: 2, GridLookaheadRows: 1, GridColumns: 2,
	}))
	h := &harness{t: t, m: m, msgs: make(chan tea.Msg, 16), fetch: f}
	m.send = func(msg tea.Msg) { h.msgs <- msg }
	m.Update(tea.WindowSizeMsg{Width: 100, Height: chrome + 3})
	return h
}

// settle feeds one posted completion back into the model.
func (h *harness) settle() {
	h.t.Helper()
	select {
	case msg := <-h.msgs:
		h.m.Update(msg)
	case <-time.After(2 * time.Second):
		h.t.Fatal("no completion was posted")
	}
}

func (h *harness) start(req search.Request) {
	h.m.Update(startMsg{req: req})
	h.settle()
}

func (h *harness) key(k string) {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+f":
		msg = tea.KeyMsg{Type: tea.KeyCtrlF}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	h.m.Update(msg)
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func files(prefix string, n int) []model.Item {
	out := make([]model.Item, n)
	for i := range out {
		out[i] = model.Item{ID: fmt.Sprintf("%s%d", prefix, i), Name: fmt.Sprintf("%s-%d.txt", prefix, i), Size: 1024}
	}
	return out
}

func TestInitialListingRenders(t *testing.T) {
	h := newHarness(t, map[search.Type][]search.ResultPage{
		search.NoSearch: {{Items: []model.Item{{ID: "d", Name: "Docs", IsFolder: true}, {ID: "f", Name: "a.txt", Size: 2048}}, NextPageToken: search.PageEnd}},
	})
	h.start(search.None)

	view := h.m.View()
	assert.Contains(t, view, "Docs/")
	assert.Contains(t, view, "a.txt")
	assert.Contains(t, view, "2.0 kB")
	assert.Contains(t, view, "browse")
}

func TestQueryStartsFileSearch(t *testing.T) {
	h := newHarness(t, map[search.Type][]search.ResultPage{
		search.FileSearch: {{Items: files("report", 1), NextPageToken: search.PageEnd}},
	})
	h.start(search.None)

	h.key("/")
	h.typeText("report")
	h.key("enter")
	h.settle()

	assert.Equal(t, search.Request{Query: "report", Type: search.FileSearch}, h.fetch.last())
	assert.Contains(t, h.m.View(), "report-0.txt")
}

func TestFavoritesEmptyStateAndMenu(t *testing.T) {
	h := newHarness(t, nil)
	h.start(search.Request{Type: search.FavoriteSearch})

	view := h.m.View()
	assert.Contains(t, view, "Nothing favorited yet")
	assert.Contains(t, view, "-sort")
	assert.Contains(t, view, "[grid]")
}

func TestGalleryHidesGrid(t *testing.T) {
	h := newHarness(t, nil)
	h.start(search.None)

	h.key("g")
	assert.Equal(t, coordinator.LayoutGrid, h.m.layout)

	for h.m.request.Type != search.GallerySearch {
		h.key("tab")
		h.settle()
	}
	assert.Equal(t, coordinator.LayoutList, h.m.layout)
	h.key("g")
	assert.Equal(t, coordinator.LayoutList, h.m.layout)
	assert.Contains(t, h.m.View(), "-grid")
}

func TestScrollingLoadsNextPage(t *testing.T) {
	h := newHarness(t, map[search.Type][]search.ResultPage{
		search.FileSearch: {
			{Items: files("a", 4), NextPageToken: 2},
			{Items: files("b", 2), NextPageToken: search.PageEnd},
		},
	})
	h.start(search.Request{Query: "x", Type: search.FileSearch})
	require.Len(t, h.m.items, 4)

	h.key("down")
	h.key("down")
	h.key("down")
	h.settle()

	assert.Len(t, h.m.items, 6)
	assert.Equal(t, 2, h.fetch.count())
	assert.False(t, h.m.loading)
}

func TestLocalFilterAndNoticeDismissal(t *testing.T) {
	h := newHarness(t, map[search.Type][]search.ResultPage{
		search.FileSearch: {{Items: append(files("alpha", 2), files("beta", 1)...), NextPageToken: search.PageEnd}},
	})
	h.start(search.Request{Query: "x", Type: search.FileSearch})

	h.key("ctrl+f")
	h.typeText("beta")
	assert.Len(t, h.m.visible(), 1)
	h.key("enter")
	assert.Equal(t, "beta", h.m.filter)
	assert.Equal(t, 1, h.fetch.count())

	h.m.ShowNotice("No connection. Showing what is already loaded.")
	assert.Contains(t, h.m.View(), "No connection")
	h.key("down")
	assert.NotContains(t, h.m.View(), "No connection")
}

func TestEscResetsToBrowse(t *testing.T) {
	h := newHarness(t, nil)
	h.start(search.Request{Query: "x", Type: search.SharedFilter})

	h.key("esc")
	h.settle()

	assert.Equal(t, search.None, h.m.request)
	assert.Equal(t, search.None, h.fetch.last())
}

func TestQuitDetachesView(t *testing.T) {
	h := newHarness(t, nil)
	h.start(search.None)

	_, cmd := h.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Empty(t, h.m.View())
}

func TestEmptyGalleryPageMovesOn(t *testing.T) {
	photo := model.Item{ID: "p1", Name: "beach.jpg", MimeType: "image/jpeg", Size: 1024}
	h := newHarness(t, map[search.Type][]search.ResultPage{
		search.GallerySearch: {
			{NextPageToken: 2},
			{Items: []model.Item{photo}, NextPageToken: search.PageEnd},
		},
	})
	h.start(search.Request{Type: search.GallerySearch})
	h.settle()

	assert.Equal(t, 2, h.fetch.count())
	require.Len(t, h.m.items, 1)
	view := h.m.View()
	assert.Contains(t, view, "beach.jpg")
	assert.NotContains(t, view, "No photos or videos")
}

func TestScrollRetriesFailedFirstPage(t *testing.T) {
	h := newHarness(t, map[search.Type][]search.ResultPage{
		search.FileSearch: {{Items: files("report", 2), NextPageToken: search.PageEnd}},
	})
	h.fetch.errs = []error{search.NewError(search.KindNetwork, "list", errors.New("connection reset"))}
	h.start(search.Request{Query: "report", Type: search.FileSearch})

	view := h.m.View()
	assert.Contains(t, view, "No connection")
	assert.Contains(t, view, "No results")

	h.key("down")
	h.settle()

	assert.Equal(t, 2, h.fetch.count())
	assert.Len(t, h.m.items, 2)
	assert.Contains(t, h.m.View(), "report-1.txt")
}

func TestFilteredViewStillPaginates(t *testing.T) {
	late := model.Item{ID: "late", Name: "beta-late.txt"}
	h := newHarness(t, map[search.Type][]search.ResultPage{
		search.FileSearch: {
			{Items: append(files("beta", 1), files("alpha", 4)...), NextPageToken: 2},
			{Items: []model.Item{late}, NextPageToken: search.PageEnd},
		},
	})
	h.start(search.Request{Query: "x", Type: search.FileSearch})

	h.key("ctrl+f")
	h.typeText("beta")
	h.key("enter")
	require.Len(t, h.m.visible(), 1)

	h.key("down")
	h.settle()

	assert.Equal(t, 2, h.fetch.count())
	assert.Len(t, h.m.items, 6)
	assert.Len(t, h.m.visible(), 2)
}
