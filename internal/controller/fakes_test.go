package controller

import (
	"context"
	"sync"

	"github.com/lotas/tabputz/internal/types"
)

// fakeBrowser is an in-memory host: closing a tab removes it from the
// inventory.
type fakeBrowser struct {
	mu         sync.Mutex
	tabs       []types.Tab
	queryErr   error
	closeErr   error
	queries    int
	closed     [][]int
	lastWindow bool
}

func (b *fakeBrowser) Query(_ context.Context, currentWindowOnly bool) ([]types.Tab, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queries++
	b.lastWindow = currentWindowOnly
	if b.queryErr != nil {
		return nil, b.queryErr
	}
	out := make([]types.Tab, len(b.tabs))
	copy(out, b.tabs)
	return out, nil
}

func (b *fakeBrowser) Close(_ context.Context, ids []int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = append(b.closed, ids)
	if b.closeErr != nil {
		return b.closeErr
	}
	drop := make(map[int]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := b.tabs[:0]
	for _, t := range b.tabs {
		if !drop[t.ID] {
			kept = append(kept, t)
		}
	}
	b.tabs = kept
	return nil
}

type fakeUI struct {
	mu      sync.Mutex
	badge   string
	title   string
	icon    types.IconVariant
	updates int
}

func (u *fakeUI) SetBadgeText(_ context.Context, text string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.badge = text
	u.updates++
	return nil
}

func (u *fakeUI) SetTitle(_ context.Context, title string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.title = title
	return nil
}

func (u *fakeUI) SetIcon(_ context.Context, icon types.IconVariant) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.icon = icon
	return nil
}

func (u *fakeUI) Badge() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.badge
}

type fakeStore struct {
	values map[string]bool
	err    error
}

func (s *fakeStore) Get(_ context.Context, _ string, defaults map[string]bool) (map[string]bool, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[string]bool, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range s.values {
		out[k] = v
	}
	return out, nil
}
