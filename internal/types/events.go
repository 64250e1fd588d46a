package types

import "fmt"

// Event is a host notification handled by the controller.
type Event interface {
	event()
}

// TabUpdated is sent when a tab is created or changes url or title.
type TabUpdated struct {
	ID    int
	URL   string
	Title string
}

// TabRemoved is sent when a tab is closed.
type TabRemoved struct {
	ID int
}

// TabReplaced is sent when the host swaps one tab id for another
// (prerender, discard).
type TabReplaced struct {
	AddedID   int
	RemovedID int
}

// SettingsChanged is sent when the settings store reports a write.
type SettingsChanged struct {
	Namespace string
}

// ActionClicked is the user-initiated close-duplicates action.
type ActionClicked struct{}

// Startup asks for a full resync. Reason is only logged.
type Startup struct {
	Reason string
}

// Installed is sent on install or update of the host integration.
type Installed struct{}

func (TabUpdated) event()      {}
func (TabRemoved) event()      {}
func (TabReplaced) event()     {}
func (SettingsChanged) event() {}
func (ActionClicked) event()   {}
func (Startup) event()         {}
func (Installed) event()       {}

// EventName returns a short dotted name for logging.
func EventName(ev Event) string {
	switch e := ev.(type) {
	case TabUpdated:
		return "tab.updated"
	case TabRemoved:
		return "tab.removed"
	case TabReplaced:
		return "tab.replaced"
	case SettingsChanged:
		return "settings.changed"
	case ActionClicked:
		return "action.clicked"
	case Startup:
		return "runtime.startup"
	case Installed:
		return "runtime.installed"
	default:
		return fmt.Sprintf("%T", e)
	}
}
