package server

import (
	"encoding/json"
	"fmt"

	"github.com/lotas/tabputz/internal/types"
)

type wireTab struct {
	ID       int    `json:"id"`
	URL      string `json:"url"`
	Title    string `json:"title"`
	Pinned   bool   `json:"pinned"`
	Active   bool   `json:"active"`
	WindowID int    `json:"windowId"`
}

func (wt wireTab) tab() types.Tab {
	return types.Tab{
		ID:       wt.ID,
		URL:      wt.URL,
		Title:    wt.Title,
		Pinned:   wt.Pinned,
		Active:   wt.Active,
		WindowID: wt.WindowID,
	}
}

// ParseTab converts a raw JSON tab into a Tab.
func ParseTab(raw json.RawMessage) (types.Tab, error) {
	var wt wireTab
	if err := json.Unmarshal(raw, &wt); err != nil {
		return types.Tab{}, err
	}
	return wt.tab(), nil
}

// ParseTabs converts a raw JSON tab list. A missing list is an empty one.
func ParseTabs(raw json.RawMessage) ([]types.Tab, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var wts []wireTab
	if err := json.Unmarshal(raw, &wts); err != nil {
		return nil, fmt.Errorf("parse tabs: %w", err)
	}
	tabs := make([]types.Tab, 0, len(wts))
	for _, wt := range wts {
		tabs = append(tabs, wt.tab())
	}
	return tabs, nil
}

// Translate maps an extension message to a controller event. Messages that
// carry no event for the controller return nil, nil.
func Translate(msg IncomingMsg) (types.Event, error) {
	switch msg.Type {
	case "tab.created", "tab.updated":
		tab, err := ParseTab(msg.Tab)
		if err != nil {
			return nil, fmt.Errorf("parse tab: %w", err)
		}
		return types.TabUpdated{ID: tab.ID, URL: tab.URL, Title: tab.Title}, nil
	case "tab.removed":
		return types.TabRemoved{ID: msg.TabID}, nil
	case "tab.replaced":
		return types.TabReplaced{AddedID: msg.TabID, RemovedID: msg.RemovedTabID}, nil
	case "storage.changed":
		return types.SettingsChanged{Namespace: msg.Area}, nil
	case "action.clicked":
		return types.ActionClicked{}, nil
	case "runtime.startup":
		return types.Startup{Reason: "browser startup"}, nil
	case "runtime.installed":
		return types.Installed{}, nil
	case "connected", "snapshot":
		return types.Startup{Reason: "extension " + msg.Type}, nil
	default:
		return nil, nil
	}
}
