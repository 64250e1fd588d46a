// Package tui is a terminal stand-in for the browser toolbar: it shows the
// badge and tooltip the controller renders and turns keys into the events a
// toolbar click or a settings page would produce.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lotas/tabputz/internal/settings"
	"github.com/lotas/tabputz/internal/types"
)

// Messages sent by Shell's host.UI methods.
type badgeMsg string
type titleMsg string
type iconMsg types.IconVariant

type toggledMsg struct {
	key   string
	value bool
	err   error
}

// ToggleFunc flips one option in the settings store and returns its new value.
type ToggleFunc func(key string) (bool, error)

// Model is the bubbletea model of the shell.
type Model struct {
	backend  string
	emit     func(types.Event)
	toggle   ToggleFunc
	options  map[string]bool
	badge    string
	tooltip  string
	icon     types.IconVariant
	status   string
	width    int
	height   int
	quitting bool
}

// NewModel builds the shell model. emit receives the events produced by keys.
func NewModel(backend string, initial types.Settings, emit func(types.Event), toggle ToggleFunc) Model {
	return Model{
		backend: backend,
		emit:    emit,
		toggle:  toggle,
		options: map[string]bool{
			settings.KeyAutoClose:         initial.AutoClose,
			settings.KeyCurrentWindowOnly: initial.CurrentWindowOnly,
			settings.KeySortTabs:          initial.SortTabs,
		},
		icon: types.IconDimmed,
	}
}

// optionKeys binds a key to each option, in settings.Keys order.
var optionKeys = map[string]string{
	"a": settings.KeyAutoClose,
	"w": settings.KeyCurrentWindowOnly,
	"s": settings.KeySortTabs,
}

func (m Model) Init() tea.Cmd {
	return nil
}

// emitEvent hands ev to the controller off the event loop, which may be
// waiting on a Send from that same controller.
func emitEvent(emit func(types.Event), ev types.Event) tea.Cmd {
	return func() tea.Msg {
		emit(ev)
		return nil
	}
}

func toggleOption(toggle ToggleFunc, key string) tea.Cmd {
	return func() tea.Msg {
		v, err := toggle(key)
		return toggledMsg{key: key, value: v, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case badgeMsg:
		m.badge = string(msg)
		return m, nil

	case titleMsg:
		m.tooltip = string(msg)
		return m, nil

	case iconMsg:
		m.icon = types.IconVariant(msg)
		return m, nil

	case toggledMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("could not change %s: %v", msg.key, msg.err)
			return m, nil
		}
		m.options[msg.key] = msg.value
		m.status = fmt.Sprintf("%s = %t", msg.key, msg.value)
		return m, nil

	case tea.KeyMsg:
		switch k := msg.String(); k {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "c", "enter":
			m.status = "closing duplicates"
			return m, emitEvent(m.emit, types.ActionClicked{})
		case "r":
			m.status = "refreshing"
			return m, emitEvent(m.emit, types.Startup{Reason: "manual refresh"})
		default:
			if key, ok := optionKeys[k]; ok && m.toggle != nil {
				return m, toggleOption(m.toggle, key)
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	topBarStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	badgeStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1).
		Foreground(lipgloss.Color("230")).Background(lipgloss.Color("160"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	bodyStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1)
	if m.icon == types.IconDimmed {
		bodyStyle = bodyStyle.BorderForeground(lipgloss.Color("240"))
	}
	if m.width > 4 {
		bodyStyle = bodyStyle.Width(m.width - 2)
	}

	badge := dimStyle.Render("no duplicates")
	if m.badge != "" {
		badge = badgeStyle.Render(m.badge)
	}
	topBar := topBarStyle.Render("tabputz · "+m.backend) + " " + badge

	tooltip := strings.TrimRight(m.tooltip, "\n")
	if tooltip == "" {
		tooltip = dimStyle.Render("waiting for tabs...")
	}
	body := bodyStyle.Render(tooltip)

	var opts []string
	for _, key := range settings.Keys {
		box := "[ ]"
		if m.options[key] {
			box = "[x]"
		}
		opts = append(opts, fmt.Sprintf("%s %s (%s)", box, key, shortcut(key)))
	}
	optLine := lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(opts, "   "))

	bottomBarStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1)
	bottom := "c close duplicates · r refresh · a/w/s toggle · q quit"
	if m.status != "" {
		bottom = m.status + "  ·  " + bottom
	}

	return lipgloss.JoinVertical(lipgloss.Left, topBar, body, optLine, bottomBarStyle.Render(bottom))
}

func shortcut(key string) string {
	for k, v := range optionKeys {
		if v == key {
			return k
		}
	}
	return "?"
}
