package search

import (
	"fmt"
	"strings"

	"github.com/FranLegon/cloud-drives-search/internal/model"
)

// Type classifies what kind of search or filter a request performs.
type Type int

const (
	NoSearch Type = iota
	FileSearch
	FavoriteSearch
	RecentlyModifiedSearch
	SharedFilter
	GallerySearch
	LocalSearch
	RegularFilter
	OfflineMode
)

var typeNames = map[Type]string{
	NoSearch:               "none",
	FileSearch:             "file",
	FavoriteSearch:         "favorite",
	RecentlyModifiedSearch: "recent",
	SharedFilter:           "shared",
	GallerySearch:          "gallery",
	LocalSearch:            "local",
	RegularFilter:          "filter",
	OfflineMode:            "offline",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType is the inverse of Type.String.
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range typeNames {
		if name == s {
			return t, nil
		}
	}
	return NoSearch, fmt.Errorf("unknown search type %q", s)
}

// Types lists every search type in declaration order.
func Types() []Type {
	return []Type{
		NoSearch, FileSearch, FavoriteSearch, RecentlyModifiedSearch,
		SharedFilter, GallerySearch, LocalSearch, RegularFilter, OfflineMode,
	}
}

// Remote reports whether requests of this type are answered by a provider
// rather than by the local store.
func (t Type) Remote() bool {
	switch t {
	case LocalSearch, RegularFilter, OfflineMode:
		return false
	}
	return true
}

// Request describes a pending search. For NoSearch the query holds the ID of
// the folder being listed, empty meaning the drive root.
type Request struct {
	Query       string
	Type        Type
	OnlyFolders bool
}

// None is the request of a session with no active search.
var None = Request{Type: NoSearch}

// Equal compares requests by query and type.
func (r Request) Equal(other Request) bool {
	return r.Query == other.Query && r.Type == other.Type
}

// Key is a stable identifier used for cache and page-token bookkeeping.
func (r Request) Key() string {
	return r.Type.String() + "\x00" + r.Query
}

func (r Request) String() string {
	if r.Query == "" {
		return r.Type.String()
	}
	return fmt.Sprintf("%s:%q", r.Type, r.Query)
}

const (
	// PageUnset means no page has been requested in the session yet.
	PageUnset = 0
	// FirstPage is the page token of the first request of a search.
	FirstPage = 1
	// PageEnd means the result set has been exhausted.
	PageEnd = -1
)

// ResultPage is one page of search results.
type ResultPage struct {
	Items         []model.Item
	NextPageToken int
}

// End reports whether no further pages exist.
func (p ResultPage) End() bool {
	return p.NextPageToken == PageEnd
}
