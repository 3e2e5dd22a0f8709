package adapter

import (
	"sync"
	"testing"

	"github.com/FranLegon/cloud-drives-search/internal/coordinator"
	"github.com/FranLegon/cloud-drives-search/internal/model"
	"github.com/FranLegon/cloud-drives-search/internal/search"
	"github.com/stretchr/testify/assert"
)

var (
	_ coordinator.Adapter    = (*List)(nil)
	_ coordinator.Filterable = (*List)(nil)
)

func named(names ...string) []model.Item {
	out := make([]model.Item, len(names))
	for i, n := range names {
		out[i] = model.Item{ID: n, Name: n}
	}
	return out
}

func TestReplaceThenAppendPreservesOrder(t *testing.T) {
	l := NewList()
	l.AppendItems(named("stale"))
	l.ReplaceItems(named("A", "B", "C"))
	l.AppendItems(named("D", "E"))

	assert.Equal(t, named("A", "B", "C", "D", "E"), l.Snapshot())
	assert.Equal(t, 5, l.Len())
}

func TestReplaceCopiesInput(t *testing.T) {
	l := NewList()
	in := named("A", "B")
	l.ReplaceItems(in)
	in[0].Name = "changed"

	assert.Equal(t, "A", l.Snapshot()[0].Name)
}

func TestFilterIsCaseInsensitive(t *testing.T) {
	l := NewList()
	l.ReplaceItems(named("Report.pdf", "notes.txt", "REPORT-2024.xlsx"))

	l.Filter("report")
	assert.Equal(t, named("Report.pdf", "REPORT-2024.xlsx"), l.Snapshot())
	assert.Equal(t, 3, l.Len())

	l.Filter("  ")
	assert.Len(t, l.Snapshot(), 3)
}

func TestEmptyStateVisibility(t *testing.T) {
	l := NewList()
	assert.False(t, l.EmptyStateVisible())

	l.SetEmptyState(search.LoadingEmptyState())
	assert.True(t, l.EmptyStateVisible())

	l.ReplaceItems(named("A"))
	assert.False(t, l.EmptyStateVisible())
	assert.Equal(t, search.LoadingEmptyState(), l.EmptyState())
}

func TestNoticesAreTakenOnce(t *testing.T) {
	l := NewList()
	l.ShowNotice("first")
	l.ShowNotice("second")

	assert.Equal(t, []string{"first", "second"}, l.TakeNotices())
	assert.Empty(t, l.TakeNotices())
}

func TestConcurrentUse(t *testing.T) {
	l := NewList()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.AppendItems(named("x"))
			l.SetLoadingState(true)
			_ = l.Snapshot()
			_ = l.Loading()
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, l.Len())
}
