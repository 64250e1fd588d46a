package firefox

import (
	"context"
	"fmt"
	"strings"

	"github.com/lotas/tabputz/internal/applog"
	"github.com/lotas/tabputz/internal/host"
	"github.com/lotas/tabputz/internal/types"
	"github.com/lotas/tabputz/internal/watch"
)

// Host serves tabs from a profile's session file. Firefox owns the file, so
// the backend cannot close tabs.
type Host struct {
	profile Profile
}

// NewHost returns a read-only tab service for the profile.
func NewHost(p Profile) *Host {
	return &Host{profile: p}
}

func (h *Host) Query(_ context.Context, currentWindowOnly bool) ([]types.Tab, error) {
	s, err := ReadSessionFile(h.profile.Path)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", h.profile.Name, err)
	}
	if currentWindowOnly && s.CurrentWindow != 0 {
		return s.Window(s.CurrentWindow), nil
	}
	return s.Tabs, nil
}

func (h *Host) Close(_ context.Context, ids []int) error {
	return fmt.Errorf("%w: firefox session file (%d tabs)", host.ErrReadOnly, len(ids))
}

// Run emits a resync whenever Firefox rewrites the session file.
func (h *Host) Run(ctx context.Context, emit func(types.Event)) error {
	applog.Info("firefox.watch", "profile", h.profile.Name)
	return watch.Dir(ctx, h.profile.BackupDir(), watch.DefaultQuiet, isSessionFile, func() {
		emit(types.Startup{Reason: "session file"})
	})
}

func isSessionFile(name string) bool {
	return strings.HasSuffix(name, ".jsonlz4")
}
