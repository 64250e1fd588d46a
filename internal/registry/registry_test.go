package registry

import (
	"testing"

	"github.com/lotas/tabputz/internal/types"
)

func TestPutSkipsEmptyURL(t *testing.T) {
	r := New()
	if r.Put(1, "", "New Tab") {
		t.Error("Put with empty url should report false")
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}
	if !r.Put(2, "https://a.com", "A") {
		t.Error("Put with url should report true")
	}
	if rec, ok := r.Get(2); !ok || rec.URL != "https://a.com" || rec.Title != "A" {
		t.Errorf("Get(2) = %+v, %v", rec, ok)
	}
}

func TestPutOverwrites(t *testing.T) {
	r := New()
	r.Put(1, "https://a.com", "A")
	r.Put(1, "https://b.com", "B")
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}
	if rec, _ := r.Get(1); rec.URL != "https://b.com" {
		t.Errorf("url = %q, want https://b.com", rec.URL)
	}
}

func TestResetReplacesContents(t *testing.T) {
	r := New()
	r.Put(9, "https://stale.com", "Stale")
	r.Reset([]types.Tab{
		{ID: 3, URL: "https://c.com", Title: "C"},
		{ID: 1, URL: "https://a.com", Title: "A"},
		{ID: 2, URL: "", Title: "Loading"},
	})

	if _, ok := r.Get(9); ok {
		t.Error("tab 9 should be gone after Reset")
	}
	entries := r.Entries()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].ID != 1 || entries[1].ID != 3 {
		t.Errorf("entries not ordered by id: %+v", entries)
	}
}

func TestDeleteAndCount(t *testing.T) {
	r := New()
	r.Put(1, "https://a.com", "A")
	r.Put(2, "https://a.com", "A")
	r.Put(3, "https://b.com", "B")
	if n := r.Count("https://a.com"); n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
	r.Delete(1)
	r.Delete(42) // unknown ids are ignored
	if n := r.Count("https://a.com"); n != 1 {
		t.Errorf("Count after delete = %d, want 1", n)
	}
}
