package analyzer

import (
	"sort"
	"strings"

	"github.com/lotas/tabputz/internal/types"
)

// SortTabs orders tabs by window, then by case-folded url. The sort is stable.
func SortTabs(tabs []types.Tab) {
	sort.SliceStable(tabs, func(i, j int) bool {
		if tabs[i].WindowID != tabs[j].WindowID {
			return tabs[i].WindowID < tabs[j].WindowID
		}
		return strings.ToLower(tabs[i].URL) < strings.ToLower(tabs[j].URL)
	})
}

// ResolveDuplicates picks, for every url shown by more than one tab, the tab
// to keep and returns the ids of all others in the order they were marked.
//
// Tabs are walked once, left to right (after SortTabs when sortTabs is set).
// The first tab seen for a url is kept unless a later duplicate is pinned or
// active while the kept one is not pinned; in that case the kept tab is
// marked instead and the later one takes its place. Tabs without a url are
// never closed.
func ResolveDuplicates(tabs []types.Tab, sortTabs bool) []int {
	candidates := make([]types.Tab, 0, len(tabs))
	for _, t := range tabs {
		if t.URL != "" {
			candidates = append(candidates, t)
		}
	}
	if sortTabs {
		SortTabs(candidates)
	}

	kept := make(map[string]types.Tab, len(candidates))
	var toClose []int
	for _, tab := range candidates {
		existing, ok := kept[tab.URL]
		if !ok {
			kept[tab.URL] = tab
			continue
		}
		if !existing.Pinned && (tab.Pinned || tab.Active) {
			toClose = append(toClose, existing.ID)
			kept[tab.URL] = tab
		} else {
			toClose = append(toClose, tab.ID)
		}
	}
	return toClose
}
