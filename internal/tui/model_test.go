package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lotas/tabputz/internal/settings"
	"github.com/lotas/tabputz/internal/types"
)

func key(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(events *[]types.Event, toggle ToggleFunc) Model {
	return NewModel("extension", types.Settings{SortTabs: true}, func(ev types.Event) {
		*events = append(*events, ev)
	}, toggle)
}

func TestKeysEmitEvents(t *testing.T) {
	var events []types.Event
	m := newTestModel(&events, nil)

	for _, k := range []string{"c", "enter", "r"} {
		next, cmd := m.Update(key(k))
		m = next.(Model)
		if cmd == nil {
			t.Fatalf("%s returned no command", k)
		}
		if msg := cmd(); msg != nil {
			t.Errorf("%s command returned %#v", k, msg)
		}
	}

	want := []types.Event{types.ActionClicked{}, types.ActionClicked{}, types.Startup{Reason: "manual refresh"}}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %#v, want %#v", i, events[i], want[i])
		}
	}
}

func TestQuit(t *testing.T) {
	var events []types.Event
	m := newTestModel(&events, nil)
	next, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
	if next.(Model).View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestToggleOption(t *testing.T) {
	var events []types.Event
	var toggled []string
	m := newTestModel(&events, func(k string) (bool, error) {
		toggled = append(toggled, k)
		return true, nil
	})

	_, cmd := m.Update(key("a"))
	if cmd == nil {
		t.Fatal("a returned no command")
	}
	next, _ := m.Update(cmd())
	m = next.(Model)

	if len(toggled) != 1 || toggled[0] != settings.KeyAutoClose {
		t.Errorf("toggled = %v", toggled)
	}
	if !m.options[settings.KeyAutoClose] {
		t.Error("autoClose not shown as enabled")
	}
	if !strings.Contains(m.View(), "[x] autoClose (a)") {
		t.Errorf("view missing toggled option:\n%s", m.View())
	}
}

func TestToggleFailureKeepsOption(t *testing.T) {
	var events []types.Event
	m := newTestModel(&events, func(string) (bool, error) {
		return false, errors.New("disk full")
	})

	_, cmd := m.Update(key("s"))
	next, _ := m.Update(cmd())
	m = next.(Model)

	if !m.options[settings.KeySortTabs] {
		t.Error("sortTabs changed despite the error")
	}
	if !strings.Contains(m.status, "disk full") {
		t.Errorf("status = %q", m.status)
	}
}

func TestPresentationMessages(t *testing.T) {
	var events []types.Event
	m := newTestModel(&events, nil)

	if !strings.Contains(m.View(), "no duplicates") {
		t.Errorf("initial view:\n%s", m.View())
	}

	for _, msg := range []tea.Msg{
		badgeMsg("3"),
		titleMsg("Tabs: 9 || Duplicates: 3\n"),
		iconMsg(types.IconNormal),
	} {
		next, _ := m.Update(msg)
		m = next.(Model)
	}

	if m.badge != "3" || m.icon != types.IconNormal {
		t.Errorf("badge=%q icon=%v", m.badge, m.icon)
	}
	view := m.View()
	if !strings.Contains(view, "Tabs: 9 || Duplicates: 3") {
		t.Errorf("view missing tooltip:\n%s", view)
	}
	if strings.Contains(view, "no duplicates") {
		t.Errorf("view still says no duplicates:\n%s", view)
	}
}
