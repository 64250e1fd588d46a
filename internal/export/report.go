// Package export renders a one-shot duplicate report of a tab inventory.
package export

import (
	"sort"
	"time"

	"github.com/lotas/tabputz/internal/analyzer"
	"github.com/lotas/tabputz/internal/registry"
	"github.com/lotas/tabputz/internal/types"
)

// Report is the aggregate view of one tab query.
type Report struct {
	Source      string
	GeneratedAt time.Time
	Stats       analyzer.Stats
	Groups      []Group
	TopDomains  []analyzer.DomainStat
	// WouldClose lists the tabs a close-duplicates pass would close.
	WouldClose []int
}

// Group is one url open in more than one tab.
type Group struct {
	URL    string
	Title  string
	TabIDs []int
}

// Build aggregates tabs the way the controller does.
func Build(source string, tabs []types.Tab, sortTabs bool, now time.Time) Report {
	reg := registry.New()
	reg.Reset(tabs)
	entries := reg.Entries()
	stats := analyzer.ComputeStats(entries)

	ids := make(map[string][]int)
	for _, e := range entries {
		ids[e.URL] = append(ids[e.URL], e.ID)
	}

	var groups []Group
	for _, u := range stats.Order {
		st := stats.URLs[u]
		if st.Count < 2 {
			continue
		}
		groups = append(groups, Group{URL: u, Title: st.Title, TabIDs: ids[u]})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i].TabIDs) > len(groups[j].TabIDs)
	})

	return Report{
		Source:      source,
		GeneratedAt: now,
		Stats:       stats,
		Groups:      groups,
		TopDomains:  analyzer.TopDomains(stats.Domains),
		WouldClose:  analyzer.ResolveDuplicates(tabs, sortTabs),
	}
}
