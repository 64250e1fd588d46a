// Package chromium drives a Chromium-based browser over the DevTools
// protocol. Pages are tabs; CDP has no notion of pinned or active tabs so
// both are always false.
package chromium

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/lotas/tabputz/internal/applog"
	"github.com/lotas/tabputz/internal/host"
	"github.com/lotas/tabputz/internal/types"
)

// DefaultCDPURL is where Chromium listens with --remote-debugging-port=9222.
const DefaultCDPURL = "http://127.0.0.1:9222"

// Host is a tab service and event source backed by a remote browser.
type Host struct {
	cdpURL string
	ids    *idMap
	events chan types.Event

	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// New returns an unconnected host for the DevTools endpoint at cdpURL.
func New(cdpURL string) *Host {
	if cdpURL == "" {
		cdpURL = DefaultCDPURL
	}
	return &Host{
		cdpURL: cdpURL,
		ids:    newIDMap(),
		events: make(chan types.Event, 256),
	}
}

// Connect attaches to the browser. The first context on a remote allocator
// reuses an existing page, so connecting opens no tab and detaching closes
// none.
func (h *Host) Connect(ctx context.Context) error {
	_ = ctx
	applog.Info("cdp.connect", "url", h.cdpURL)

	allocCtx, allocCancel := chromedp.NewRemoteAllocator(context.Background(), h.cdpURL)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("connect to browser: %w", err)
	}

	h.mu.Lock()
	h.allocCancel = allocCancel
	h.browserCtx = browserCtx
	h.browserCancel = browserCancel
	h.mu.Unlock()
	return nil
}

// Disconnect detaches from the browser without closing any tab.
func (h *Host) Disconnect() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.browserCancel != nil {
		h.browserCancel()
		h.allocCancel()
		h.browserCtx = nil
	}
}

// browserExec returns a context that runs commands on the browser session.
func (h *Host) browserExec(ctx context.Context) (context.Context, error) {
	h.mu.Lock()
	bctx := h.browserCtx
	h.mu.Unlock()
	if bctx == nil {
		return nil, host.ErrNotConnected
	}
	c := chromedp.FromContext(bctx)
	if c == nil || c.Browser == nil {
		return nil, host.ErrNotConnected
	}
	return cdp.WithExecutor(ctx, c.Browser), nil
}

func (h *Host) Query(ctx context.Context, currentWindowOnly bool) ([]types.Tab, error) {
	h.mu.Lock()
	bctx := h.browserCtx
	h.mu.Unlock()
	if bctx == nil {
		return nil, host.ErrNotConnected
	}
	infos, err := chromedp.Targets(bctx)
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}
	exec, err := h.browserExec(ctx)
	if err != nil {
		return nil, err
	}

	var tabs []types.Tab
	for _, info := range pages(infos) {
		windowID, _, err := browser.GetWindowForTarget().WithTargetID(info.TargetID).Do(exec)
		if err != nil {
			applog.Error("cdp.window", err, "target", string(info.TargetID))
		}
		tab := h.tab(info)
		tab.WindowID = int(windowID)
		tabs = append(tabs, tab)
	}
	if currentWindowOnly {
		tabs = currentWindow(tabs)
	}
	return tabs, nil
}

func (h *Host) Close(ctx context.Context, ids []int) error {
	exec, err := h.browserExec(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, id := range ids {
		tid, ok := h.ids.targetID(id)
		if !ok {
			errs = append(errs, fmt.Errorf("tab %d: unknown target", id))
			continue
		}
		if err := target.CloseTarget(tid).Do(exec); err != nil {
			errs = append(errs, fmt.Errorf("tab %d: %w", id, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", host.ErrCloseFailed, err)
	}
	return nil
}

// Run turns target lifecycle events into tab events until ctx is done.
func (h *Host) Run(ctx context.Context, emit func(types.Event)) error {
	h.mu.Lock()
	bctx := h.browserCtx
	h.mu.Unlock()
	if bctx == nil {
		return host.ErrNotConnected
	}

	// Listener callbacks run on the CDP reader goroutine and must not block.
	chromedp.ListenBrowser(bctx, func(ev any) {
		out, ok := h.translate(ev)
		if !ok {
			return
		}
		select {
		case h.events <- out:
		default:
			applog.Info("cdp.drop", "event", types.EventName(out))
		}
	})

	exec, err := h.browserExec(ctx)
	if err != nil {
		return err
	}
	if err := target.SetDiscoverTargets(true).Do(exec); err != nil {
		return fmt.Errorf("discover targets: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-bctx.Done():
			return fmt.Errorf("browser connection closed: %w", bctx.Err())
		case ev := <-h.events:
			emit(ev)
		}
	}
}

func (h *Host) tab(info *target.Info) types.Tab {
	return types.Tab{
		ID:    h.ids.intID(info.TargetID),
		URL:   info.URL,
		Title: info.Title,
	}
}

// translate maps a CDP target event to a tab event.
func (h *Host) translate(ev any) (types.Event, bool) {
	switch e := ev.(type) {
	case *target.EventTargetCreated:
		return h.updated(e.TargetInfo)
	case *target.EventTargetInfoChanged:
		return h.updated(e.TargetInfo)
	case *target.EventTargetDestroyed:
		id, ok := h.ids.lookup(e.TargetID)
		if !ok {
			return nil, false
		}
		h.ids.forget(e.TargetID)
		return types.TabRemoved{ID: id}, true
	}
	return nil, false
}

func (h *Host) updated(info *target.Info) (types.Event, bool) {
	if info == nil || info.Type != "page" {
		return nil, false
	}
	t := h.tab(info)
	return types.TabUpdated{ID: t.ID, URL: t.URL, Title: t.Title}, true
}

// pages drops workers, iframes and extension backgrounds.
func pages(infos []*target.Info) []*target.Info {
	var out []*target.Info
	for _, info := range infos {
		if info.Type == "page" {
			out = append(out, info)
		}
	}
	return out
}

// currentWindow keeps the tabs in the window of the first tab. Targets are
// listed most recently focused first.
func currentWindow(tabs []types.Tab) []types.Tab {
	if len(tabs) == 0 {
		return nil
	}
	win := tabs[0].WindowID
	var out []types.Tab
	for _, t := range tabs {
		if t.WindowID == win {
			out = append(out, t)
		}
	}
	return out
}
