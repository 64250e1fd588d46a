package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lotas/tabputz/internal/types"
)

// Shell runs the model as a full-screen program and acts as the host UI.
type Shell struct {
	prog *tea.Program
}

// NewShell wraps the model in a bubbletea program.
func NewShell(m Model, opts ...tea.ProgramOption) *Shell {
	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}
	return &Shell{prog: tea.NewProgram(m, opts...)}
}

// Run blocks until the user quits or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.prog.Quit()
	}()
	_, err := s.prog.Run()
	return err
}

func (s *Shell) SetBadgeText(_ context.Context, text string) error {
	s.prog.Send(badgeMsg(text))
	return nil
}

func (s *Shell) SetTitle(_ context.Context, title string) error {
	s.prog.Send(titleMsg(title))
	return nil
}

func (s *Shell) SetIcon(_ context.Context, icon types.IconVariant) error {
	s.prog.Send(iconMsg(icon))
	return nil
}
