// Package ui is the Bubble Tea shell. All mutation of view-facing state
// happens inside Update, one message at a time.
package ui

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hoshimi/periscope/internal/alert"
	"github.com/hoshimi/periscope/internal/api"
	"github.com/hoshimi/periscope/internal/apiclient"
	"github.com/hoshimi/periscope/internal/model"
	"github.com/hoshimi/periscope/internal/notifstore"
	"github.com/hoshimi/periscope/internal/session"
	"github.com/hoshimi/periscope/internal/viewstate"
)

// Prefs is the persisted user-preference surface. Satisfied by
// session.Store; nil disables persistence.
type Prefs interface {
	GetBool(ctx context.Context, key string, def bool) bool
	SetBool(ctx context.Context, key string, value bool) error
	GetString(ctx context.Context, key, def string) string
	SetString(ctx context.Context, key, value string) error
}

// screenOrder drives tab cycling and the sidebar listing.
var screenOrder = []model.Screen{
	model.ScreenHome,
	model.ScreenBriefing,
	model.ScreenChat,
	model.ScreenTimeline,
	model.ScreenContacts,
	model.ScreenKnowledge,
	model.ScreenSkills,
	model.ScreenSettings,
	model.ScreenTransparency,
}

type toastState struct {
	title   string
	message string
	seq     int
	active  bool
}

type App struct {
	machine *viewstate.Machine
	store   *notifstore.Store
	router  *alert.Router
	client  *apiclient.Client
	prefs   Prefs

	width  int
	height int

	connState model.ConnState
	online    bool

	toast    toastState
	toastSeq int

	dash     api.Dashboard
	selected int
	sidebar  bool
	theme    string

	spin      spinner.Model
	interview textinput.Model

	history []string
}

func NewApp(machine *viewstate.Machine, store *notifstore.Store, router *alert.Router, client *apiclient.Client, prefs Prefs) *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	ti := textinput.New()
	ti.Placeholder = "Tell me a little about what you work on"
	ti.CharLimit = 200
	a := &App{
		machine:   machine,
		store:     store,
		router:    router,
		client:    client,
		prefs:     prefs,
		connState: model.ConnConnecting,
		online:    true,
		sidebar:   true,
		theme:     "dark",
		spin:      sp,
		interview: ti,
	}
	if prefs != nil {
		a.sidebar = prefs.GetBool(context.Background(), session.KeySidebarExpanded, true)
		a.theme = prefs.GetString(context.Background(), session.KeyTheme, "dark")
	}
	return a
}

func (a *App) Init() tea.Cmd {
	if a.machine.Phase() == viewstate.PhaseShell {
		return a.refreshCmd()
	}
	return a.spin.Tick
}

func (a *App) refreshCmd() tea.Cmd {
	client := a.client
	return func() tea.Msg {
		dash, failures := client.RefreshDashboard(context.Background())
		return dashboardMsg{dash: dash, failures: failures}
	}
}

func (a *App) analyzeCmd() tea.Cmd {
	client := a.client
	return func() tea.Msg {
		env, err := client.Status(context.Background())
		if err != nil {
			return analysisDoneMsg{result: api.OnboardingResult{
				Summary: "We could not reach your account data yet; you can revisit this later.",
			}}
		}
		return analysisDoneMsg{result: api.OnboardingResult{
			ProfileName: env.ProfileName,
			Summary:     "Profile assembled from your connected account.",
		}}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case connStateMsg:
		a.connState = msg.state
		return a, nil

	case OnlineChangedMsg:
		a.online = msg.Online
		return a, nil

	case RefreshRequestedMsg:
		return a, a.refreshCmd()

	case notifAddedMsg:
		// Store already holds it; the message only forces a repaint.
		if a.selected >= a.store.Len() {
			a.selected = 0
		}
		return a, nil

	case toastMsg:
		a.toastSeq++
		a.toast = toastState{title: msg.title, message: msg.message, seq: a.toastSeq, active: true}
		seq := a.toastSeq
		return a, tea.Tick(msg.duration, func(time.Time) tea.Msg {
			return toastExpiredMsg{seq: seq}
		})

	case errorToastMsg:
		a.toastSeq++
		a.toast = toastState{title: string(msg.kind), message: alert.Guidance(msg.kind), seq: a.toastSeq, active: true}
		seq := a.toastSeq
		d := msg.duration
		if d <= 0 {
			d = 6 * time.Second
		}
		return a, tea.Tick(d, func(time.Time) tea.Msg {
			return toastExpiredMsg{seq: seq}
		})

	case toastExpiredMsg:
		if a.toast.active && a.toast.seq == msg.seq {
			a.toast.active = false
		}
		return a, nil

	case dashboardMsg:
		if msg.dash.Briefing != nil {
			a.dash.Briefing = msg.dash.Briefing
		}
		if msg.dash.Proposals != nil {
			a.dash.Proposals = msg.dash.Proposals
		}
		if msg.dash.Timeline != nil {
			a.dash.Timeline = msg.dash.Timeline
		}
		for source, err := range msg.failures {
			log.Printf("refresh %s: %v", source, err)
			var reqErr *apiclient.RequestError
			if errors.As(err, &reqErr) {
				a.router.PresentError(reqErr.Kind, reqErr.Message)
			} else {
				a.router.PresentError(model.ErrGeneric, err.Error())
			}
		}
		return a, nil

	case analysisDoneMsg:
		if err := a.machine.FinishAnalysis(msg.result); err != nil {
			return a, nil
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		if a.machine.Phase() == viewstate.PhaseOnboarding && a.machine.Step() == model.StepAnalyzing {
			return a, cmd
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		return a, tea.Quit
	}
	if a.machine.Phase() == viewstate.PhaseOnboarding {
		return a.handleOnboardingKey(msg)
	}
	return a.handleShellKey(msg)
}

func (a *App) handleOnboardingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.machine.Step() {
	case model.StepWelcome:
		if key.Matches(msg, keys.Advance) {
			_ = a.machine.AdvanceWelcome()
		}
	case model.StepConnect:
		if key.Matches(msg, keys.Advance) {
			if err := a.machine.LinkAccount(); err == nil {
				return a, tea.Batch(a.spin.Tick, a.analyzeCmd())
			}
		}
		if key.Matches(msg, keys.Skip) {
			if err := a.machine.SkipConnect(); err == nil {
				a.interview.Focus()
				return a, textinput.Blink
			}
		}
	case model.StepInterview:
		if key.Matches(msg, keys.Advance) {
			_ = a.machine.FinishInterview(api.OnboardingResult{
				Summary: a.interview.Value(),
			})
			return a, nil
		}
		var cmd tea.Cmd
		a.interview, cmd = a.interview.Update(msg)
		return a, cmd
	case model.StepReveal:
		if key.Matches(msg, keys.Advance) {
			if err := a.machine.CompleteReveal(context.Background()); err == nil {
				return a, a.refreshCmd()
			}
		}
	}
	return a, nil
}

func (a *App) handleShellKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Next):
		a.navigateTo(a.cycleScreen(1))
	case key.Matches(msg, keys.Prev):
		a.navigateTo(a.cycleScreen(-1))
	case key.Matches(msg, keys.Sidebar):
		a.sidebar = !a.sidebar
		if a.prefs != nil {
			_ = a.prefs.SetBool(context.Background(), session.KeySidebarExpanded, a.sidebar)
		}
	case key.Matches(msg, keys.Dismiss):
		notifs := a.store.Snapshot()
		if a.selected < len(notifs) {
			a.store.Dismiss(notifs[a.selected].ID)
			if a.selected > 0 {
				a.selected--
			}
		}
	case key.Matches(msg, keys.ClearAll):
		a.store.ClearAll()
		a.selected = 0
	case msg.String() == "j" || msg.String() == "down":
		if a.selected+1 < a.store.Len() {
			a.selected++
		}
	case msg.String() == "k" || msg.String() == "up":
		if a.selected > 0 {
			a.selected--
		}
	case msg.String() == "t" && a.machine.Screen() == model.ScreenSettings:
		if a.theme == "dark" {
			a.theme = "light"
		} else {
			a.theme = "dark"
		}
		if a.prefs != nil {
			_ = a.prefs.SetString(context.Background(), session.KeyTheme, a.theme)
		}
	case msg.String() == "backspace":
		if n := len(a.history); n > 0 {
			route := a.history[n-1]
			a.history = a.history[:n-1]
			a.machine.HandleLocation(route)
		}
	default:
		for i, s := range screenOrder {
			if msg.String() == digitFor(i) {
				a.navigateTo(s)
				break
			}
		}
	}
	return a, nil
}

func (a *App) navigateTo(s model.Screen) {
	prev := a.machine.Screen()
	if prev == s {
		return
	}
	a.history = append(a.history, viewstate.RouteForScreen(prev))
	a.machine.Navigate(s)
}

func (a *App) cycleScreen(dir int) model.Screen {
	current := a.machine.Screen()
	for i, s := range screenOrder {
		if s == current {
			next := (i + dir + len(screenOrder)) % len(screenOrder)
			return screenOrder[next]
		}
	}
	return model.ScreenHome
}

func digitFor(i int) string {
	return string(rune('1' + i))
}
