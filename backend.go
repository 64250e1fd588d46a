package main

import (
	"context"
	"fmt"

	"github.com/lotas/tabputz/internal/chromium"
	"github.com/lotas/tabputz/internal/config"
	"github.com/lotas/tabputz/internal/firefox"
	"github.com/lotas/tabputz/internal/host"
	"github.com/lotas/tabputz/internal/server"
)

// backend bundles what one browser integration provides.
type backend struct {
	name    string
	tabs    host.TabService
	sources []host.Source
	// srv is set for the extension backend, which also renders the toolbar.
	srv   *server.Server
	close func()
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	switch cfg.Backend {
	case config.BackendExtension:
		srv := server.New(cfg.Port)
		return &backend{
			name:    "extension",
			tabs:    srv,
			sources: []host.Source{srv},
			srv:     srv,
			close:   func() {},
		}, nil

	case config.BackendChromium:
		h := chromium.New(cfg.CDPURL)
		if err := h.Connect(ctx); err != nil {
			return nil, err
		}
		return &backend{
			name:    "chromium",
			tabs:    h,
			sources: []host.Source{h},
			close:   h.Disconnect,
		}, nil

	case config.BackendFirefox:
		profiles, err := firefox.DiscoverProfiles()
		if err != nil {
			return nil, fmt.Errorf("discover Firefox profiles: %w", err)
		}
		p, err := firefox.SelectProfile(profiles, cfg.Profile)
		if err != nil {
			return nil, err
		}
		h := firefox.NewHost(p)
		return &backend{
			name:    "firefox:" + p.Name,
			tabs:    h,
			sources: []host.Source{h},
			close:   func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}
