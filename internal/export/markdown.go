package export

import (
	"fmt"
	"strings"
)

// Markdown formats the report as a markdown document.
func Markdown(r Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Tab duplicates: %s\n", r.Source)
	fmt.Fprintf(&b, "> Generated %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "%d tabs, %d distinct urls, %d duplicates\n", r.Stats.TabCount, r.Stats.URLCount, r.Stats.Diff())

	if len(r.Groups) > 0 {
		fmt.Fprintf(&b, "\n## Duplicate sites\n\n")
		for _, g := range r.Groups {
			title := g.Title
			if title == "" {
				title = g.URL
			}
			fmt.Fprintf(&b, "- [%s](%s) × %d\n", title, g.URL, len(g.TabIDs))
		}
	}

	if len(r.TopDomains) > 0 {
		fmt.Fprintf(&b, "\n## Top domains\n\n")
		for _, d := range r.TopDomains {
			fmt.Fprintf(&b, "- %s (%d)\n", d.Domain, d.Count)
		}
	}

	if len(r.WouldClose) > 0 {
		n := len(r.WouldClose)
		noun := "tabs"
		if n == 1 {
			noun = "tab"
		}
		fmt.Fprintf(&b, "\nClosing duplicates would close %d %s.\n", n, noun)
	}

	return b.String()
}
