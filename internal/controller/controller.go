// Package controller routes host events to the tab registry, the duplicate
// resolver and the toolbar.
//
// A Controller handles one event at a time on the goroutine that calls Run.
// Host calls block that goroutine; events that arrive meanwhile wait in the
// queue and are handled afterwards against the current registry.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lotas/tabputz/internal/analyzer"
	"github.com/lotas/tabputz/internal/applog"
	"github.com/lotas/tabputz/internal/host"
	"github.com/lotas/tabputz/internal/presenter"
	"github.com/lotas/tabputz/internal/registry"
	"github.com/lotas/tabputz/internal/settings"
	"github.com/lotas/tabputz/internal/types"
)

const (
	defaultQueueSize = 256

	initErrorTitle  = "Error during initialization"
	closeErrorTitle = "Error during duplicate closing"
)

// Controller owns the tab registry and the loaded settings.
type Controller struct {
	tabs      host.TabService
	ui        host.UI
	store     settings.Getter
	namespace string

	registry *registry.Registry
	events   chan types.Event
	done     chan struct{}
	stopOnce sync.Once

	mu       sync.Mutex
	settings types.Settings
	last     types.Presentation
}

// Option configures a Controller.
type Option func(*Controller)

// WithNamespace sets the settings namespace the controller reacts to.
func WithNamespace(ns string) Option {
	return func(c *Controller) { c.namespace = ns }
}

// WithQueueSize sets how many events may wait while a handler runs.
func WithQueueSize(n int) Option {
	return func(c *Controller) { c.events = make(chan types.Event, n) }
}

func New(tabs host.TabService, ui host.UI, store settings.Getter, opts ...Option) *Controller {
	c := &Controller{
		tabs:      tabs,
		ui:        ui,
		store:     store,
		namespace: settings.DefaultNamespace,
		registry:  registry.New(),
		events:    make(chan types.Event, defaultQueueSize),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Emit queues ev for Run. It blocks while the queue is full and drops the
// event once Run has returned.
func (c *Controller) Emit(ev types.Event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// Run handles queued events until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	defer c.stopOnce.Do(func() { close(c.done) })
	applog.Info("controller.start", "namespace", c.namespace)
	for {
		select {
		case <-ctx.Done():
			applog.Info("controller.stop")
			return nil
		case ev := <-c.events:
			c.Handle(ctx, ev)
		}
	}
}

// Handle runs the handler for a single event to completion.
func (c *Controller) Handle(ctx context.Context, ev types.Event) {
	applog.Debug("controller.event", "type", types.EventName(ev))

	switch e := ev.(type) {
	case types.TabUpdated:
		if !c.registry.Put(e.ID, e.URL, e.Title) {
			return
		}
		c.Refresh(ctx)
		if c.Settings().AutoClose && c.registry.Count(e.URL) > 1 {
			applog.Info("autoclose.trigger", "tab", e.ID)
			c.CloseDuplicates(ctx)
		}
	case types.TabRemoved:
		c.registry.Delete(e.ID)
		c.Refresh(ctx)
	case types.TabReplaced:
		// The added id arrives with its own TabUpdated.
		c.registry.Delete(e.RemovedID)
		c.Refresh(ctx)
	case types.SettingsChanged:
		if e.Namespace != c.namespace {
			applog.Debug("settings.ignored", "namespace", e.Namespace)
			return
		}
		c.Init(ctx)
	case types.Startup:
		applog.Info("controller.startup", "reason", e.Reason)
		c.Init(ctx)
	case types.Installed:
		c.Init(ctx)
	case types.ActionClicked:
		c.CloseDuplicates(ctx)
	}
}

// Init reloads settings, rebuilds the registry from the host and refreshes
// the toolbar. When the host cannot be queried the registry is left as it
// was and the toolbar shows an error.
func (c *Controller) Init(ctx context.Context) error {
	s := c.loadSettings(ctx)

	tabs, err := c.tabs.Query(ctx, s.CurrentWindowOnly)
	if err != nil {
		applog.Error("controller.init", err)
		c.show(ctx, presenter.ErrorPresentation(initErrorTitle))
		return fmt.Errorf("query tabs: %w", err)
	}

	c.registry.Reset(tabs)
	applog.Info("controller.init", "tabs", len(tabs), "tracked", c.registry.Len())
	c.Refresh(ctx)
	return nil
}

// Refresh recomputes statistics from the registry and pushes them to the UI.
func (c *Controller) Refresh(ctx context.Context) types.Presentation {
	stats := analyzer.ComputeStats(c.registry.Entries())
	p := presenter.Render(stats)
	c.show(ctx, p)
	applog.Debug("badge.refresh", "tabs", stats.TabCount, "duplicates", stats.Diff())
	return p
}

// CloseDuplicates queries the host, closes every redundant tab and resyncs.
// It returns the ids it asked the host to close. A failed close is logged
// and reported but never retried; the resync shows what actually closed.
func (c *Controller) CloseDuplicates(ctx context.Context) ([]int, error) {
	s := c.loadSettings(ctx)

	tabs, err := c.tabs.Query(ctx, s.CurrentWindowOnly)
	if err != nil {
		applog.Error("resolve.query", err)
		c.show(ctx, presenter.ErrorPresentation(closeErrorTitle))
		return nil, fmt.Errorf("query tabs: %w", err)
	}

	ids := analyzer.ResolveDuplicates(tabs, s.SortTabs)

	var closeErr error
	if len(ids) > 0 {
		applog.Info("resolve.close", "tabs", len(ids), "sorted", s.SortTabs)
		if err := c.tabs.Close(ctx, ids); err != nil {
			applog.Error("resolve.close", err, "tabs", len(ids))
			closeErr = fmt.Errorf("close %d tabs: %w", len(ids), err)
		}
	} else {
		applog.Info("resolve.none", "tabs", len(tabs))
	}

	if err := c.Init(ctx); err != nil {
		return ids, errors.Join(closeErr, err)
	}
	return ids, closeErr
}

// Presentation returns what was last pushed to the UI.
func (c *Controller) Presentation() types.Presentation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Settings returns the most recently loaded settings.
func (c *Controller) Settings() types.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// Namespace is the settings namespace the controller reacts to.
func (c *Controller) Namespace() string {
	return c.namespace
}

func (c *Controller) loadSettings(ctx context.Context) types.Settings {
	s, err := settings.Load(ctx, c.store, c.namespace)
	if err != nil {
		applog.Error("settings.load", err)
	}
	c.mu.Lock()
	c.settings = s
	c.mu.Unlock()
	return s
}

func (c *Controller) show(ctx context.Context, p types.Presentation) {
	c.mu.Lock()
	c.last = p
	c.mu.Unlock()
	if err := host.Push(ctx, c.ui, p); err != nil {
		applog.Error("ui.push", err)
	}
}
