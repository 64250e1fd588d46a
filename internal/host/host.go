// Package host declares what the controller needs from the browser it runs
// against: a tab inventory, a toolbar to draw on and a stream of lifecycle
// events.
package host

import (
	"context"
	"errors"

	"github.com/lotas/tabputz/internal/types"
)

var (
	// ErrNotConnected is returned while no browser is attached.
	ErrNotConnected = errors.New("browser not connected")
	// ErrReadOnly is returned by backends that can list tabs but not close them.
	ErrReadOnly = errors.New("backend is read-only")
	// ErrCloseFailed is returned when the browser rejects a close request.
	ErrCloseFailed = errors.New("close failed")
)

// TabService lists and closes tabs.
type TabService interface {
	Query(ctx context.Context, currentWindowOnly bool) ([]types.Tab, error)
	Close(ctx context.Context, ids []int) error
}

// UI is the toolbar button: a badge, a tooltip and an icon.
type UI interface {
	SetBadgeText(ctx context.Context, text string) error
	SetTitle(ctx context.Context, title string) error
	SetIcon(ctx context.Context, icon types.IconVariant) error
}

// Source delivers host lifecycle events until ctx is done.
type Source interface {
	Run(ctx context.Context, emit func(types.Event)) error
}

// Push sends a full presentation to ui and joins the errors of the three calls.
func Push(ctx context.Context, ui UI, p types.Presentation) error {
	return errors.Join(
		ui.SetBadgeText(ctx, p.BadgeText),
		ui.SetTitle(ctx, p.Tooltip),
		ui.SetIcon(ctx, p.Icon),
	)
}
