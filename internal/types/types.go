package types

// Tab represents a single live browser tab as reported by the host.
type Tab struct {
	ID       int
	URL      string // empty while a tab has not committed a navigation
	Title    string
	Pinned   bool
	Active   bool
	WindowID int
}

// TabRecord is what the registry remembers about a tab.
type TabRecord struct {
	URL   string
	Title string
}

// Settings holds the user options read from the persistent store.
type Settings struct {
	AutoClose         bool
	CurrentWindowOnly bool
	SortTabs          bool
}

// IconVariant selects the toolbar icon.
type IconVariant int

const (
	IconNormal IconVariant = iota
	IconDimmed
)

func (v IconVariant) String() string {
	if v == IconNormal {
		return "normal"
	}
	return "dimmed"
}

// Presentation is everything pushed to the toolbar on a refresh.
type Presentation struct {
	BadgeText string      `json:"badge"`
	Tooltip   string      `json:"title"`
	Icon      IconVariant `json:"-"`
}
