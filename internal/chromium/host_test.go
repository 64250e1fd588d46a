package chromium

import (
	"context"
	"errors"
	"testing"

	"github.com/chromedp/cdproto/target"
	"github.com/lotas/tabputz/internal/host"
	"github.com/lotas/tabputz/internal/types"
)

func TestIDMapStable(t *testing.T) {
	m := newIDMap()
	a := m.intID("AAA")
	b := m.intID("BBB")
	if a != 1 || b != 2 {
		t.Fatalf("ids = %d, %d, want 1, 2", a, b)
	}
	if again := m.intID("AAA"); again != a {
		t.Errorf("second lookup = %d, want %d", again, a)
	}
	if tid, ok := m.targetID(b); !ok || tid != "BBB" {
		t.Errorf("targetID(%d) = %q, %v", b, tid, ok)
	}

	m.forget("AAA")
	if _, ok := m.lookup("AAA"); ok {
		t.Error("AAA still mapped after forget")
	}
	if c := m.intID("AAA"); c != 3 {
		t.Errorf("re-seen target got id %d, want a fresh 3", c)
	}
}

func TestTranslate(t *testing.T) {
	h := New("")

	ev, ok := h.translate(&target.EventTargetCreated{TargetInfo: &target.Info{
		TargetID: "T1", Type: "page", URL: "https://a.com/", Title: "A",
	}})
	if !ok || ev != (types.TabUpdated{ID: 1, URL: "https://a.com/", Title: "A"}) {
		t.Errorf("created = %#v, %v", ev, ok)
	}

	ev, ok = h.translate(&target.EventTargetInfoChanged{TargetInfo: &target.Info{
		TargetID: "T1", Type: "page", URL: "https://b.com/", Title: "B",
	}})
	if !ok || ev != (types.TabUpdated{ID: 1, URL: "https://b.com/", Title: "B"}) {
		t.Errorf("changed = %#v, %v", ev, ok)
	}

	ev, ok = h.translate(&target.EventTargetDestroyed{TargetID: "T1"})
	if !ok || ev != (types.TabRemoved{ID: 1}) {
		t.Errorf("destroyed = %#v, %v", ev, ok)
	}

	ignored := []any{
		&target.EventTargetCreated{TargetInfo: &target.Info{TargetID: "W", Type: "service_worker"}},
		&target.EventTargetDestroyed{TargetID: "never-seen"},
		&target.EventAttachedToTarget{},
	}
	for _, in := range ignored {
		if ev, ok := h.translate(in); ok {
			t.Errorf("translate(%T) = %#v, want ignored", in, ev)
		}
	}
}

func TestPagesAndCurrentWindow(t *testing.T) {
	infos := []*target.Info{
		{TargetID: "P1", Type: "page"},
		{TargetID: "SW", Type: "service_worker"},
		{TargetID: "IF", Type: "iframe"},
		{TargetID: "P2", Type: "page"},
	}
	got := pages(infos)
	if len(got) != 2 || got[0].TargetID != "P1" || got[1].TargetID != "P2" {
		t.Errorf("pages = %v", got)
	}

	tabs := []types.Tab{{ID: 1, WindowID: 7}, {ID: 2, WindowID: 8}, {ID: 3, WindowID: 7}}
	cur := currentWindow(tabs)
	if len(cur) != 2 || cur[0].ID != 1 || cur[1].ID != 3 {
		t.Errorf("currentWindow = %+v", cur)
	}
	if currentWindow(nil) != nil {
		t.Error("currentWindow(nil) should be nil")
	}
}

func TestNotConnected(t *testing.T) {
	h := New("")
	ctx := context.Background()
	if _, err := h.Query(ctx, false); !errors.Is(err, host.ErrNotConnected) {
		t.Errorf("Query error = %v", err)
	}
	if err := h.Close(ctx, []int{1}); !errors.Is(err, host.ErrNotConnected) {
		t.Errorf("Close error = %v", err)
	}
	if err := h.Run(ctx, func(types.Event) {}); !errors.Is(err, host.ErrNotConnected) {
		t.Errorf("Run error = %v", err)
	}
}
