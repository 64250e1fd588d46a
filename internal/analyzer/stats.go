package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lotas/tabputz/internal/registry"
)

const (
	// MinTopDomainCount is the number of distinct urls a domain needs
	// before it is listed under top domains.
	MinTopDomainCount = 5

	maxSummaryLen = 50
)

// URLStat counts the tabs sharing one exact url.
type URLStat struct {
	URL   string
	Count int
	Title string // title of the lowest tab id showing URL
}

// DomainStat counts the distinct urls sharing one host.
type DomainStat struct {
	Domain string
	Count  int
}

// Stats is the aggregate view of a registry snapshot.
type Stats struct {
	URLs       map[string]*URLStat
	Order      []string // urls in first-seen order
	Domains    []DomainStat
	Duplicates []string
	TabCount   int
	URLCount   int
}

// Diff is the number of tabs that would be closed if every url kept one tab.
func (s Stats) Diff() int {
	return s.TabCount - s.URLCount
}

// ComputeStats groups the entries by url and by domain. Entries are expected
// in ascending id order, as returned by Registry.Entries.
func ComputeStats(entries []registry.Entry) Stats {
	stats := Stats{URLs: make(map[string]*URLStat)}

	for _, e := range entries {
		if e.URL == "" {
			continue
		}
		if st, ok := stats.URLs[e.URL]; ok {
			st.Count++
			continue
		}
		stats.URLs[e.URL] = &URLStat{URL: e.URL, Count: 1, Title: e.Title}
		stats.Order = append(stats.Order, e.URL)
	}

	stats.Domains = domainStats(stats.Order)

	for _, u := range stats.Order {
		st := stats.URLs[u]
		stats.TabCount += st.Count
		stats.URLCount++
		if st.Count > 1 {
			stats.Duplicates = append(stats.Duplicates, duplicateSummary(st))
		}
	}
	// Ordering is by the formatted string, so "9 : x" sorts above "10 : x".
	sort.Sort(sort.Reverse(sort.StringSlice(stats.Duplicates)))

	return stats
}

func domainStats(urls []string) []DomainStat {
	index := make(map[string]int)
	var out []DomainStat
	for _, u := range urls {
		domain, err := Domain(u)
		if err != nil {
			continue
		}
		if i, ok := index[domain]; ok {
			out[i].Count++
			continue
		}
		index[domain] = len(out)
		out = append(out, DomainStat{Domain: domain, Count: 1})
	}
	return out
}

func duplicateSummary(st *URLStat) string {
	label := st.Title
	if label == "" {
		label = st.URL
	}
	return fmt.Sprintf("%d : %s", st.Count, truncate(label, maxSummaryLen))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// TopDomains returns the domains with at least MinTopDomainCount urls,
// most urls first. Domains with equal counts keep their input order.
func TopDomains(domains []DomainStat) []DomainStat {
	sorted := make([]DomainStat, len(domains))
	copy(sorted, domains)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Count > sorted[j].Count
	})

	var out []DomainStat
	for _, d := range sorted {
		if d.Count >= MinTopDomainCount {
			out = append(out, d)
		}
	}
	return out
}

// FormatTopDomains renders top domains as "<count> : <domain>" lines.
func FormatTopDomains(domains []DomainStat) string {
	lines := make([]string, 0, len(domains))
	for _, d := range TopDomains(domains) {
		lines = append(lines, fmt.Sprintf("%d : %s", d.Count, d.Domain))
	}
	return strings.Join(lines, "\n")
}
