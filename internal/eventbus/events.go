package eventbus

import "github.com/FranLegon/cloud-drives-search/internal/search"

// EventType represents the type of an event
type EventType string

// Event types
const (
	EventSearchRequested EventType = "SearchRequested"
	EventMenuReset       EventType = "MenuReset"
	EventSearchCompleted EventType = "SearchCompleted"
	EventSearchFailed    EventType = "SearchFailed"
)

// Event is the interface for all events
type Event interface {
	Type() EventType
}

// SearchRequestedEvent asks every bound coordinator to run a search
type SearchRequestedEvent struct {
	Request search.Request
}

func (e SearchRequestedEvent) Type() EventType { return EventSearchRequested }

// MenuResetEvent is emitted when the list menu changes and the current search
// session must be dropped
type MenuResetEvent struct{}

func (e MenuResetEvent) Type() EventType { return EventMenuReset }

// SearchCompletedEvent is emitted after a page has been merged into a list
type SearchCompletedEvent struct {
	Request search.Request
	Page    int
	Count   int  // items in this page
	End     bool // no further pages
}

func (e SearchCompletedEvent) Type() EventType { return EventSearchCompleted }

// SearchFailedEvent is emitted when a fetch fails
type SearchFailedEvent struct {
	Request search.Request
	Page    int
	Err     error
}

func (e SearchFailedEvent) Type() EventType { return EventSearchFailed }
