package registry

import (
	"sort"

	"github.com/lotas/tabputz/internal/types"
)

// Entry is a registry record together with its tab id.
type Entry struct {
	ID int
	types.TabRecord
}

// Registry maps live tab ids to their last known url and title.
// It is owned by the controller goroutine and is not safe for concurrent use.
type Registry struct {
	tabs map[int]types.TabRecord
}

func New() *Registry {
	return &Registry{tabs: make(map[int]types.TabRecord)}
}

// Put records or overwrites a tab. Tabs without a url are not tracked and
// Put reports false for them.
func (r *Registry) Put(id int, url, title string) bool {
	if url == "" {
		return false
	}
	r.tabs[id] = types.TabRecord{URL: url, Title: title}
	return true
}

func (r *Registry) Delete(id int) {
	delete(r.tabs, id)
}

// Reset drops every record and loads the given tabs.
func (r *Registry) Reset(tabs []types.Tab) {
	r.tabs = make(map[int]types.TabRecord, len(tabs))
	for _, t := range tabs {
		r.Put(t.ID, t.URL, t.Title)
	}
}

func (r *Registry) Get(id int) (types.TabRecord, bool) {
	rec, ok := r.tabs[id]
	return rec, ok
}

func (r *Registry) Len() int {
	return len(r.tabs)
}

// Entries returns a copy of the registry ordered by ascending tab id.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.tabs))
	for id, rec := range r.tabs {
		out = append(out, Entry{ID: id, TabRecord: rec})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns how many tracked tabs currently show url.
func (r *Registry) Count(url string) int {
	n := 0
	for _, rec := range r.tabs {
		if rec.URL == url {
			n++
		}
	}
	return n
}
