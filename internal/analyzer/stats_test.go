package analyzer

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/lotas/tabputz/internal/registry"
)

func entries(pairs ...string) []registry.Entry {
	var out []registry.Entry
	for i := 0; i+1 < len(pairs); i += 2 {
		e := registry.Entry{ID: len(out) + 1}
		e.URL = pairs[i]
		e.Title = pairs[i+1]
		out = append(out, e)
	}
	return out
}

func TestComputeStatsScenario(t *testing.T) {
	stats := ComputeStats(entries(
		"http://a.com", "A",
		"http://a.com", "A",
		"http://b.com", "B",
	))

	if stats.TabCount != 3 {
		t.Errorf("TabCount = %d, want 3", stats.TabCount)
	}
	if stats.URLCount != 2 {
		t.Errorf("URLCount = %d, want 2", stats.URLCount)
	}
	if stats.Diff() != 1 {
		t.Errorf("Diff = %d, want 1", stats.Diff())
	}
	if want := []string{"2 : A"}; !reflect.DeepEqual(stats.Duplicates, want) {
		t.Errorf("Duplicates = %q, want %q", stats.Duplicates, want)
	}
}

func TestComputeStatsTitleFromLowestID(t *testing.T) {
	stats := ComputeStats([]registry.Entry{
		{ID: 4, TabRecord: rec("https://x.com", "first")},
		{ID: 7, TabRecord: rec("https://x.com", "second")},
	})
	if got := stats.URLs["https://x.com"].Title; got != "first" {
		t.Errorf("Title = %q, want first", got)
	}
}

func TestComputeStatsConservation(t *testing.T) {
	in := entries(
		"https://a.com/1", "a1",
		"https://a.com/1", "a1",
		"https://a.com/2", "a2",
		"", "loading",
		"not a url", "bad",
		"not a url", "bad",
		"https://b.com", "b",
	)
	stats := ComputeStats(in)

	nonEmpty := 0
	for _, e := range in {
		if e.URL != "" {
			nonEmpty++
		}
	}
	sum := 0
	for _, st := range stats.URLs {
		sum += st.Count
	}
	if sum != nonEmpty || stats.TabCount != nonEmpty {
		t.Errorf("sum = %d, TabCount = %d, want %d", sum, stats.TabCount, nonEmpty)
	}
	if stats.Diff() != 2 {
		t.Errorf("Diff = %d, want 2", stats.Diff())
	}
}

func TestComputeStatsDistinctURLsHaveNoDiff(t *testing.T) {
	stats := ComputeStats(entries("https://a.com", "a", "https://b.com", "b", "https://A.com", "A"))
	if stats.Diff() != 0 {
		t.Errorf("Diff = %d, want 0", stats.Diff())
	}
	if len(stats.Duplicates) != 0 {
		t.Errorf("Duplicates = %q, want none", stats.Duplicates)
	}
}

func TestComputeStatsMalformedURLCountedButNoDomain(t *testing.T) {
	stats := ComputeStats(entries("not a url", "x", "https://ok.com", "ok"))

	if st := stats.URLs["not a url"]; st == nil || st.Count != 1 {
		t.Fatalf("malformed url missing from URLs: %+v", st)
	}
	if len(stats.Domains) != 1 || stats.Domains[0].Domain != "ok.com" {
		t.Errorf("Domains = %+v, want only ok.com", stats.Domains)
	}
}

func TestComputeStatsDomainsCountDistinctURLs(t *testing.T) {
	stats := ComputeStats(entries(
		"https://a.com/1", "",
		"https://a.com/1", "",
		"https://a.com/1", "",
		"https://a.com/2", "",
		"https://b.com/", "",
	))
	want := []DomainStat{{"a.com", 2}, {"b.com", 1}}
	if !reflect.DeepEqual(stats.Domains, want) {
		t.Errorf("Domains = %+v, want %+v", stats.Domains, want)
	}
}

func TestDuplicateSummaryFallsBackToURL(t *testing.T) {
	long := "https://example.com/" + strings.Repeat("p", 80)
	stats := ComputeStats(entries(long, "", long, ""))
	want := "2 : " + long[:50]
	if len(stats.Duplicates) != 1 || stats.Duplicates[0] != want {
		t.Errorf("Duplicates = %q, want %q", stats.Duplicates, want)
	}
}

func TestDuplicateSummaryTruncatesRunes(t *testing.T) {
	title := strings.Repeat("ü", 60)
	stats := ComputeStats(entries("https://u.com", title, "https://u.com", title))
	want := "2 : " + strings.Repeat("ü", 50)
	if stats.Duplicates[0] != want {
		t.Errorf("summary = %q, want %q", stats.Duplicates[0], want)
	}
}

// Duplicate summaries are ordered by string, not by count: "9 : ..." comes
// before "10 : ...". This is kept for compatibility with the toolbar text
// users already know.
func TestDuplicatesStringOrderQuirk(t *testing.T) {
	var in []string
	for i := 0; i < 10; i++ {
		in = append(in, "https://ten.com", "Ten")
	}
	for i := 0; i < 9; i++ {
		in = append(in, "https://nine.com", "Nine")
	}
	in = append(in, "https://two.com", "Two", "https://two.com", "Two")

	stats := ComputeStats(entries(in...))
	want := []string{"9 : Nine", "2 : Two", "10 : Ten"}
	if !reflect.DeepEqual(stats.Duplicates, want) {
		t.Errorf("Duplicates = %q, want %q", stats.Duplicates, want)
	}
}

func TestTopDomains(t *testing.T) {
	domains := []DomainStat{
		{"small.com", 4},
		{"first.com", 5},
		{"big.com", 9},
		{"second.com", 5},
	}

	top := TopDomains(domains)
	want := []DomainStat{{"big.com", 9}, {"first.com", 5}, {"second.com", 5}}
	if !reflect.DeepEqual(top, want) {
		t.Errorf("TopDomains = %+v, want %+v", top, want)
	}
	for _, d := range top {
		if d.Count < MinTopDomainCount {
			t.Errorf("domain %s below threshold listed", d.Domain)
		}
	}
	if again := TopDomains(top); !reflect.DeepEqual(again, top) {
		t.Errorf("TopDomains not idempotent: %+v", again)
	}
	if domains[0].Domain != "small.com" {
		t.Error("TopDomains must not reorder its input")
	}

	if got := FormatTopDomains(domains); got != "9 : big.com\n5 : first.com\n5 : second.com" {
		t.Errorf("FormatTopDomains = %q", got)
	}
	if got := FormatTopDomains(domains[:1]); got != "" {
		t.Errorf("FormatTopDomains below threshold = %q, want empty", got)
	}
}

func TestTopDomainsFromStats(t *testing.T) {
	var in []string
	for i := 0; i < 6; i++ {
		in = append(in, fmt.Sprintf("https://docs.go.dev/p%d", i), "doc")
	}
	in = append(in, "https://other.org", "o")
	stats := ComputeStats(entries(in...))

	top := TopDomains(stats.Domains)
	if len(top) != 1 || top[0].Domain != "docs.go.dev" || top[0].Count != 6 {
		t.Errorf("TopDomains = %+v", top)
	}
	if !sort.SliceIsSorted(top, func(i, j int) bool { return top[i].Count > top[j].Count }) {
		t.Error("top domains not sorted")
	}
}
