package export

import (
	"encoding/json"
	"time"
)

type jsonReport struct {
	Source      string       `json:"source"`
	GeneratedAt time.Time    `json:"generated_at"`
	Tabs        int          `json:"tabs"`
	URLs        int          `json:"urls"`
	Duplicates  int          `json:"duplicates"`
	Groups      []jsonGroup  `json:"groups"`
	TopDomains  []jsonDomain `json:"top_domains"`
	Summaries   []string     `json:"summaries"`
	WouldClose  []int        `json:"would_close"`
}

type jsonGroup struct {
	URL    string `json:"url"`
	Title  string `json:"title,omitempty"`
	Count  int    `json:"count"`
	TabIDs []int  `json:"tab_ids"`
}

type jsonDomain struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// JSON formats the report as a JSON document.
func JSON(r Report) (string, error) {
	out := jsonReport{
		Source:      r.Source,
		GeneratedAt: r.GeneratedAt,
		Tabs:        r.Stats.TabCount,
		URLs:        r.Stats.URLCount,
		Duplicates:  r.Stats.Diff(),
		Groups:      make([]jsonGroup, 0, len(r.Groups)),
		TopDomains:  make([]jsonDomain, 0, len(r.TopDomains)),
		Summaries:   r.Stats.Duplicates,
		WouldClose:  r.WouldClose,
	}
	for _, g := range r.Groups {
		out.Groups = append(out.Groups, jsonGroup{URL: g.URL, Title: g.Title, Count: len(g.TabIDs), TabIDs: g.TabIDs})
	}
	for _, d := range r.TopDomains {
		out.TopDomains = append(out.TopDomains, jsonDomain{Domain: d.Domain, Count: d.Count})
	}
	if out.Summaries == nil {
		out.Summaries = []string{}
	}
	if out.WouldClose == nil {
		out.WouldClose = []int{}
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
