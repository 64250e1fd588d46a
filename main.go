package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/lotas/tabputz/internal/applog"
	"github.com/lotas/tabputz/internal/config"
	"github.com/lotas/tabputz/internal/controller"
	"github.com/lotas/tabputz/internal/export"
	"github.com/lotas/tabputz/internal/firefox"
	"github.com/lotas/tabputz/internal/host"
	"github.com/lotas/tabputz/internal/settings"
	"github.com/lotas/tabputz/internal/tui"
	"github.com/lotas/tabputz/internal/types"
)

func main() {
	args := os.Args[1:]
	cmd := "run"
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "run":
		err = runDaemon(args)
	case "report":
		err = runReport(args)
	case "close-dupes":
		err = runCloseDupes(args)
	case "settings":
		err = runSettings(args)
	case "profiles":
		err = runProfiles()
	case "help", "--help", "-h":
		printHelp()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", cmd)
		printHelp()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Print(`tabputz: duplicate tab housekeeping

Usage:
  tabputz [run]                                 Track tabs and keep the badge up to date (default)
    --backend <name>       extension, chromium or firefox (default: extension)
    --ui <name>            extension, tui or log (default: extension for the extension backend, tui otherwise)
    --port <n>             WebSocket port for the extension (default: 19191)
    --cdp <url>            DevTools endpoint for chromium (default: http://127.0.0.1:9222)
    --profile <name>       Firefox profile name (default: the default profile)
    --config <file>        YAML config file (default: ~/.config/tabputz/config.yaml)

  tabputz report                                Print a duplicate report
    --json                 Report as JSON instead of markdown
    --out <file>           Output file path (default: stdout)
    --sort                 Plan closes as if sortTabs were enabled
    plus --backend, --port, --cdp, --profile, --config

  tabputz close-dupes                           Close duplicate tabs once
    With the extension backend this asks the running daemon to do it.

  tabputz settings [list]                       Show options
  tabputz settings set <key> <true|false>       Change an option
  tabputz settings toggle <key>                 Flip an option
    keys: autoClose, currentWindowOnly, sortTabs

  tabputz profiles                              List Firefox profiles

Environment:
  TABPUTZ_BACKEND, TABPUTZ_UI, TABPUTZ_PORT, TABPUTZ_CDP_URL, TABPUTZ_PROFILE,
  TABPUTZ_DB_PATH, TABPUTZ_LOG_DIR, TABPUTZ_LOG_LEVEL, TABPUTZ_NAMESPACE
  A .env file in the working directory is read as well.
`)
}

type commonFlags struct {
	config  *string
	backend *string
	ui      *string
	port    *int
	cdp     *string
	profile *string
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	return &commonFlags{
		config:  fs.String("config", "", "YAML config file"),
		backend: fs.String("backend", "", "extension, chromium or firefox"),
		ui:      fs.String("ui", "", "extension, tui or log"),
		port:    fs.Int("port", config.DefaultPort, "WebSocket port for the extension"),
		cdp:     fs.String("cdp", "", "DevTools endpoint for chromium"),
		profile: fs.String("profile", "", "Firefox profile name"),
	}
}

// load resolves the configuration and applies the flags the user set.
func (f *commonFlags) load(fs *flag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(*f.config)
	if err != nil {
		return nil, err
	}
	uiSet := false
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "backend":
			cfg.Backend = *f.backend
		case "ui":
			cfg.UI = *f.ui
			uiSet = true
		case "port":
			cfg.Port = *f.port
		case "cdp":
			cfg.CDPURL = *f.cdp
		case "profile":
			cfg.Profile = *f.profile
		}
	})
	if !uiSet && *f.backend != "" {
		cfg.UI = ""
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*settings.Store, bool, error) {
	_, statErr := os.Stat(cfg.DBPath)
	fresh := errors.Is(statErr, os.ErrNotExist)
	store, err := settings.Open(cfg.DBPath, cfg.Namespace)
	if err != nil {
		return nil, false, fmt.Errorf("open settings: %w", err)
	}
	return store, fresh, nil
}

func runDaemon(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cf := addCommonFlags(fs)
	fs.Parse(args)

	cfg, err := cf.load(fs)
	if err != nil {
		return err
	}
	if err := applog.Init(cfg.LogDir, cfg.LogLevel); err != nil {
		return fmt.Errorf("init log: %w", err)
	}
	defer applog.Close()

	store, fresh, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.close()

	var ui host.UI
	var shell *tui.Shell
	var c *controller.Controller
	switch cfg.UI {
	case config.UIExtension:
		ui = b.srv
	case config.UILog:
		ui = host.NewWriterUI(os.Stdout)
	case config.UITUI:
		initial, err := settings.Load(ctx, store, cfg.Namespace)
		if err != nil {
			applog.Error("settings.load", err)
		}
		model := tui.NewModel(b.name, initial, func(ev types.Event) { c.Emit(ev) }, func(key string) (bool, error) {
			return store.Toggle(ctx, cfg.Namespace, key)
		})
		shell = tui.NewShell(model)
		ui = shell
	}

	c = controller.New(b.tabs, ui, store, controller.WithNamespace(cfg.Namespace))
	go func() {
		if err := c.Run(ctx); err != nil {
			applog.Error("controller.run", err)
		}
	}()

	for _, src := range append(b.sources, store) {
		go func(src host.Source) {
			if err := src.Run(ctx, c.Emit); err != nil {
				applog.Error("source.run", err, "source", fmt.Sprintf("%T", src))
			}
		}(src)
	}

	applog.Info("daemon.start", "backend", cfg.Backend, "ui", cfg.UI, "fresh", fresh)
	switch {
	case fresh:
		c.Emit(types.Installed{})
	case b.srv == nil:
		// The extension triggers its own resync when it connects.
		c.Emit(types.Startup{Reason: "daemon start"})
	}

	if shell != nil {
		err := shell.Run(ctx)
		stop()
		return err
	}
	if cfg.UI == config.UIExtension {
		fmt.Fprintf(os.Stderr, "Waiting for the extension on 127.0.0.1:%d (Ctrl+C to stop)\n", cfg.Port)
	}
	<-ctx.Done()
	return nil
}

func runReport(args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	cf := addCommonFlags(fs)
	jsonFlag := fs.Bool("json", false, "Report as JSON instead of markdown")
	outFile := fs.String("out", "", "Output file path (default: stdout)")
	sortFlag := fs.Bool("sort", false, "Plan closes as if sortTabs were enabled")
	fs.Parse(args)

	cfg, err := cf.load(fs)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.close()

	if b.srv != nil {
		if err := waitForExtension(ctx, b, cfg.Port); err != nil {
			return err
		}
	}

	tabs, err := b.tabs.Query(ctx, false)
	if err != nil {
		return fmt.Errorf("query tabs: %w", err)
	}
	report := export.Build(b.name, tabs, *sortFlag, time.Now())

	var output string
	if *jsonFlag {
		output, err = export.JSON(report)
		if err != nil {
			return fmt.Errorf("generate JSON: %w", err)
		}
	} else {
		output = export.Markdown(report)
	}

	if *outFile != "" {
		return os.WriteFile(*outFile, []byte(output), 0644)
	}
	fmt.Print(output)
	return nil
}

// waitForExtension serves the bridge until the extension connects.
func waitForExtension(ctx context.Context, b *backend, port int) error {
	go b.srv.ListenAndServe(ctx)
	fmt.Fprintf(os.Stderr, "Waiting for the extension on port %d...\n", port)

	timeout := time.After(10 * time.Second)
	for {
		select {
		case msg := <-b.srv.Messages():
			if msg.Type == "connected" {
				return nil
			}
		case <-timeout:
			return fmt.Errorf("timed out waiting for extension (10s)")
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func runCloseDupes(args []string) error {
	fs := flag.NewFlagSet("close-dupes", flag.ExitOnError)
	cf := addCommonFlags(fs)
	fs.Parse(args)

	cfg, err := cf.load(fs)
	if err != nil {
		return err
	}

	if cfg.Backend == config.BackendExtension {
		// The daemon owns the extension connection; ask it to act.
		url := "http://127.0.0.1:" + strconv.Itoa(cfg.Port) + "/action"
		resp, err := http.Post(url, "application/json", nil)
		if err != nil {
			return fmt.Errorf("is the daemon running? %w", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusAccepted {
			return fmt.Errorf("daemon answered %s", resp.Status)
		}
		fmt.Println("Requested duplicate closing from the running daemon.")
		return nil
	}

	store, _, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.close()

	c := controller.New(b.tabs, host.NewWriterUI(os.Stdout), store, controller.WithNamespace(cfg.Namespace))
	closed, err := c.CloseDuplicates(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Closed %d duplicate tabs.\n", len(closed))
	return nil
}

func runSettings(args []string) error {
	fs := flag.NewFlagSet("settings", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML config file")
	namespace := fs.String("namespace", "", "Settings namespace (default from config)")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	ns := cfg.Namespace
	if *namespace != "" {
		ns = *namespace
	}

	store, _, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	ctx := context.Background()

	rest := fs.Args()
	sub := "list"
	if len(rest) > 0 {
		sub, rest = rest[0], rest[1:]
	}

	switch sub {
	case "list":
		list, err := store.List(ctx, ns)
		if err != nil {
			return err
		}
		for _, s := range list {
			fmt.Printf("%-18s %t\n", s.Key, s.Value)
		}
		return nil
	case "set":
		if len(rest) != 2 {
			return fmt.Errorf("usage: tabputz settings set <key> <true|false>")
		}
		v, err := strconv.ParseBool(rest[1])
		if err != nil {
			return fmt.Errorf("value %q: %w", rest[1], err)
		}
		if err := store.Set(ctx, ns, rest[0], v); err != nil {
			return err
		}
		fmt.Printf("%s = %t\n", rest[0], v)
		return nil
	case "toggle":
		if len(rest) != 1 {
			return fmt.Errorf("usage: tabputz settings toggle <key>")
		}
		if !settings.IsKey(rest[0]) {
			return fmt.Errorf("unknown setting %q", rest[0])
		}
		v, err := store.Toggle(ctx, ns, rest[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s = %t\n", rest[0], v)
		return nil
	default:
		return fmt.Errorf("unknown settings command %q", sub)
	}
}

func runProfiles() error {
	profiles, err := firefox.DiscoverProfiles()
	if err != nil {
		return fmt.Errorf("discover Firefox profiles: %w", err)
	}
	if len(profiles) == 0 {
		return errors.New("no Firefox profiles found")
	}

	for _, p := range profiles {
		suffix := ""
		if p.IsDefault {
			suffix = " [default]"
		}
		fmt.Printf("%s (%s)%s\n", p.Name, filepath.Clean(p.Path), suffix)
	}
	return nil
}
