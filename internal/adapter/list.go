// Package adapter holds in-memory list views driven by the search
// coordinator.
package adapter

import (
	"strings"
	"sync"

	"github.com/FranLegon/cloud-drives-search/internal/model"
	"github.com/FranLegon/cloud-drives-search/internal/search"
)

// List is a goroutine-safe list of items with an optional name filter.
type List struct {
	mu      sync.RWMutex
	items   []model.Item
	empty   search.EmptyState
	loading bool
	notices []string
	filter  string
}

// NewList returns an empty list.
func NewList() *List {
	return &List{}
}

func (l *List) ReplaceItems(items []model.Item) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append([]model.Item(nil), items...)
}

func (l *List) AppendItems(items []model.Item) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, items...)
}

func (l *List) SetEmptyState(state search.EmptyState) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.empty = state
}

func (l *List) SetLoadingState(loading bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = loading
}

func (l *List) ShowNotice(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notices = append(l.notices, msg)
}

// Filter narrows Snapshot to items whose name contains query, ignoring case.
// An empty query clears the filter.
func (l *List) Filter(query string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.filter = strings.ToLower(strings.TrimSpace(query))
}

// Len is the number of items held, ignoring the filter.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Snapshot returns a copy of the items that pass the filter, in order.
func (l *List) Snapshot() []model.Item {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.filter == "" {
		return append([]model.Item(nil), l.items...)
	}
	var out []model.Item
	for _, it := range l.items {
		if strings.Contains(strings.ToLower(it.Name), l.filter) {
			out = append(out, it)
		}
	}
	return out
}

// EmptyState returns the placeholder last set by the coordinator.
func (l *List) EmptyState() search.EmptyState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.empty
}

// EmptyStateVisible reports whether the placeholder would be rendered.
func (l *List) EmptyStateVisible() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items) == 0 && l.empty != (search.EmptyState{})
}

func (l *List) Loading() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loading
}

// TakeNotices returns pending notices and dismisses them.
func (l *List) TakeNotices() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.notices
	l.notices = nil
	return out
}
