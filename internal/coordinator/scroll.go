package coordinator

// Layout is the arrangement of the visible list.
type Layout int

const (
	LayoutList Layout = iota
	LayoutGrid
)

func (l Layout) String() string {
	if l == LayoutGrid {
		return "grid"
	}
	return "list"
}

// ScrollWindow describes the visible part of the list after a scroll.
type ScrollWindow struct {
	FirstVisible int
	LastVisible  int
	// Delta is positive when scrolling towards the end of the list.
	Delta  int
	Layout Layout
}

// Thresholds controls how far ahead the next page is prefetched.
type Thresholds struct {
	// ListLookahead is the number of unrendered trailing items below which
	// a list layout requests the next page.
	ListLookahead int
	// GridLookaheadRows times GridColumns is the equivalent for grids.
	GridLookaheadRows int
	GridColumns       int
}

// DefaultThresholds prefetch roughly one screen ahead on a phone-sized list.
var DefaultThresholds = Thresholds{
	ListLookahead:     10,
	GridLookaheadRows: 2,
	GridColumns:       4,
}

// For returns the trailing item count that triggers pagination.
func (t Thresholds) For(layout Layout) int {
	if layout == LayoutGrid {
		rows, cols := t.GridLookaheadRows, t.GridColumns
		if rows < 1 {
			rows = 1
		}
		if cols < 1 {
			cols = 1
		}
		return rows * cols
	}
	if t.ListLookahead < 1 {
		return 1
	}
	return t.ListLookahead
}
