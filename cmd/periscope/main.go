package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/hoshimi/periscope/internal/alert"
	"github.com/hoshimi/periscope/internal/apiclient"
	"github.com/hoshimi/periscope/internal/config"
	"github.com/hoshimi/periscope/internal/conn"
	"github.com/hoshimi/periscope/internal/connectivity"
	"github.com/hoshimi/periscope/internal/notifstore"
	"github.com/hoshimi/periscope/internal/session"
	"github.com/hoshimi/periscope/internal/ui"
	"github.com/hoshimi/periscope/internal/viewstate"
)

// routeSaver is the address-bar analog: the current route is persisted so
// the next launch deep-links back to it.
type routeSaver struct {
	sess *session.Store
}

func (r routeSaver) Set(route string) {
	if err := r.sess.SetString(context.Background(), session.KeyLastRoute, route); err != nil {
		log.Printf("persist route: %v", err)
	}
}

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to config.yaml")
	serverURL := flag.String("server", "", "backend origin (overrides config)")
	route := flag.String("route", "", "initial route, e.g. /briefing or /onboarding?connected=1")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}

	sess, err := session.Open(ctx, cfg.StatePath)
	if err != nil {
		log.Printf("session storage degraded to memory: %v", err)
	}
	defer sess.Close() //nolint:errcheck

	client := apiclient.New(cfg.ServerURL, cfg.APIKey).WithUnaryTimeout(cfg.UnaryTimeout)

	machine := viewstate.NewMachine(sess, routeSaver{sess: sess})
	initialRoute := *route
	if initialRoute == "" {
		initialRoute = sess.GetString(ctx, session.KeyLastRoute, "/")
	}
	machine.Boot(ctx, initialRoute, client)

	store := notifstore.New(cfg.MaxNotifications)
	router := alert.NewRouter(nil, alert.Durations{
		Critical:  cfg.ToastCritical,
		Important: cfg.ToastImportant,
		FYI:       cfg.ToastFYI,
	})

	app := ui.NewApp(machine, store, router, client, sess)
	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	presenter := ui.NewPresenter(func(msg any) { program.Send(msg) })
	router.SetPresenter(presenter)
	defer router.ClearPresenter()

	endpoint, err := conn.EventURL(cfg.ServerURL)
	if err != nil {
		return fmt.Errorf("derive event endpoint: %w", err)
	}
	manager := conn.New(conn.Options{
		Endpoint:       endpoint,
		KeepaliveEvery: cfg.KeepaliveEvery,
		ReconnectBase:  cfg.ReconnectBase,
		ReconnectCap:   cfg.ReconnectCap,
	}, ui.NewBridge(store, router, func(msg any) { program.Send(msg) }))
	manager.Start()
	defer manager.Close()

	recovery := viewstate.NewRecovery(cfg.RecoverySettle, func() {
		program.Send(ui.RefreshRequestedMsg{})
	})
	defer recovery.Stop()

	probe, err := connectivity.DialProbe(cfg.ServerURL, cfg.ProbeTimeout)
	if err != nil {
		return fmt.Errorf("build connectivity probe: %w", err)
	}
	watcher := connectivity.NewWatcher(probe, cfg.ProbeInterval, func(online bool) {
		router.SetOffline(!online)
		recovery.SetOnline(online)
		program.Send(ui.OnlineChangedMsg{Online: online})
	})
	go watcher.Run(ctx)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
