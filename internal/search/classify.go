package search

// EmptyState is the placeholder shown when a list holds no items.
type EmptyState struct {
	Headline string
	Message  string
	Icon     string
	// Tinted asks the renderer to colour the icon with the theme accent.
	Tinted bool
}

// MenuPolicy says which list controls a search type wants visible.
type MenuPolicy int

const (
	// MenuDefault leaves the current menu untouched.
	MenuDefault MenuPolicy = iota
	// MenuShowAll shows the grid toggle, sort control and search box.
	MenuShowAll
	// MenuHideSort hides the sort control only.
	MenuHideSort
	// MenuHideGridAndSort hides the grid toggle and the sort control.
	MenuHideGridAndSort
)

// MenuState is the visibility of the list controls.
type MenuState struct {
	Grid   bool
	Sort   bool
	Search bool
}

// DefaultMenu is the menu of a plain folder listing.
var DefaultMenu = MenuState{Grid: true, Sort: true, Search: true}

// Apply returns the menu that results from applying the policy to m.
func (p MenuPolicy) Apply(m MenuState) MenuState {
	switch p {
	case MenuShowAll:
		return MenuState{Grid: true, Sort: true, Search: true}
	case MenuHideSort:
		m.Sort = false
	case MenuHideGridAndSort:
		m.Grid = false
		m.Sort = false
	}
	return m
}

// Presentation is everything the list shell needs to render a search type.
type Presentation struct {
	Empty EmptyState
	Menu  MenuPolicy
}

var presentations = map[Type]Presentation{
	NoSearch: {
		Empty: EmptyState{Headline: "No files here", Message: "Upload some content or sync with your devices.", Icon: "folder", Tinted: true},
		Menu:  MenuShowAll,
	},
	FileSearch: {
		Empty: EmptyState{Headline: "No results", Message: "Nothing matched your search.", Icon: "search", Tinted: true},
	},
	FavoriteSearch: {
		Empty: EmptyState{Headline: "Nothing favorited yet", Message: "Files and folders you mark as favorites will show up here.", Icon: "star"},
		Menu:  MenuHideSort,
	},
	RecentlyModifiedSearch: {
		Empty: EmptyState{Headline: "No results", Message: "Found no files modified recently.", Icon: "recent"},
		Menu:  MenuHideSort,
	},
	SharedFilter: {
		Empty: EmptyState{Headline: "Nothing shared yet", Message: "Files and folders shared with you will show up here.", Icon: "shared", Tinted: true},
	},
	GallerySearch: {
		Empty: EmptyState{Headline: "No photos or videos", Message: "Images and videos from your drives will show up here.", Icon: "image"},
		Menu:  MenuHideGridAndSort,
	},
	LocalSearch: {
		Empty: EmptyState{Headline: "No results", Message: "No cached files match your search.", Icon: "search", Tinted: true},
	},
	RegularFilter: {
		Empty: EmptyState{Headline: "No results", Message: "No files in this list match the filter.", Icon: "filter", Tinted: true},
	},
	OfflineMode: {
		Empty: EmptyState{Headline: "Nothing available offline", Message: "Files you have searched before are kept here for offline use.", Icon: "offline"},
	},
}

// Classify maps a request to its empty state and menu policy. A nil request
// is classified as NoSearch.
func Classify(req *Request) Presentation {
	if req == nil {
		return presentations[NoSearch]
	}
	if p, ok := presentations[req.Type]; ok {
		return p
	}
	return presentations[FileSearch]
}

// LoadingEmptyState is shown while the first page of a search is in flight.
func LoadingEmptyState() EmptyState {
	return EmptyState{Headline: "Loading…", Icon: "sync"}
}
