package host

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/lotas/tabputz/internal/types"
)

// WriterUI prints every toolbar change to w. It is used when nothing else
// can show a badge, for example in one-shot commands.
type WriterUI struct {
	mu    sync.Mutex
	w     io.Writer
	last  types.Presentation
	ready bool
}

func NewWriterUI(w io.Writer) *WriterUI {
	return &WriterUI{w: w}
}

func (u *WriterUI) SetBadgeText(_ context.Context, text string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.ready && u.last.BadgeText == text {
		return nil
	}
	u.last.BadgeText = text
	u.ready = true
	if text == "" {
		text = "-"
	}
	_, err := fmt.Fprintf(u.w, "[badge] %s\n", text)
	return err
}

func (u *WriterUI) SetTitle(_ context.Context, title string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.last.Tooltip == title {
		return nil
	}
	u.last.Tooltip = title
	_, err := fmt.Fprintf(u.w, "%s\n", title)
	return err
}

func (u *WriterUI) SetIcon(_ context.Context, icon types.IconVariant) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.last.Icon = icon
	return nil
}
