package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hoshimi/periscope/internal/model"
	"github.com/hoshimi/periscope/internal/viewstate"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusOK      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	statusWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	statusBad     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	toastStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(0, 1)
	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(lipgloss.Color("238")).
			PaddingRight(1)
	levelBadge = map[model.Level]lipgloss.Style{
		model.LevelCritical:  statusBad.Bold(true),
		model.LevelImportant: statusWarn,
		model.LevelFYI:       statusOK,
		model.LevelSilent:    dimStyle,
	}
)

func (a *App) View() string {
	if a.machine.Phase() == viewstate.PhaseOnboarding {
		return a.viewOnboarding()
	}
	return a.viewShell()
}

func (a *App) viewOnboarding() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("periscope") + "\n\n")
	switch a.machine.Step() {
	case model.StepWelcome:
		b.WriteString("Welcome. Periscope is your live window into your assistant.\n\n")
		b.WriteString(dimStyle.Render("enter: get started  ·  q: quit"))
	case model.StepConnect:
		if msg := a.machine.OAuthError(); msg != "" {
			b.WriteString(statusBad.Render("Account linking failed: "+msg) + "\n\n")
		}
		b.WriteString("Connect your account so the assistant can learn your context.\n\n")
		b.WriteString(dimStyle.Render("enter: connect account  ·  s: skip and answer a few questions"))
	case model.StepAnalyzing:
		b.WriteString(a.spin.View() + " Analyzing your connected account…\n")
	case model.StepInterview:
		b.WriteString("No account? No problem — a few words go a long way.\n\n")
		b.WriteString(a.interview.View() + "\n\n")
		b.WriteString(dimStyle.Render("enter: done"))
	case model.StepReveal:
		b.WriteString(titleStyle.Render("Here's what I put together") + "\n\n")
		if res := a.machine.Result(); res != nil {
			if res.ProfileName != "" {
				b.WriteString("Name: " + res.ProfileName + "\n")
			}
			b.WriteString(res.Summary + "\n")
		}
		b.WriteString("\n" + dimStyle.Render("enter: open periscope"))
	}
	return b.String()
}

func (a *App) viewShell() string {
	content := a.viewScreen()
	if a.sidebar {
		content = lipgloss.JoinHorizontal(lipgloss.Top, sidebarStyle.Render(a.viewSidebar()), " "+content)
	}
	out := a.viewStatusBar() + "\n" + content
	if a.toast.active {
		out = toastStyle.Render(a.toast.title+"\n"+a.toast.message) + "\n" + out
	}
	return out
}

func (a *App) viewStatusBar() string {
	var conn string
	switch a.connState {
	case model.ConnOpen:
		conn = statusOK.Render("● connected")
	case model.ConnReconnecting, model.ConnConnecting:
		conn = statusWarn.Render("◌ reconnecting")
	default:
		conn = statusBad.Render("○ disconnected")
	}
	net := ""
	if !a.online {
		net = "  " + statusBad.Render("offline")
	}
	screen := titleStyle.Render(string(a.machine.Screen()))
	return fmt.Sprintf("%s  %s%s  %s", screen, conn, net, dimStyle.Render(fmt.Sprintf("%d notifications", a.store.Len())))
}

func (a *App) viewSidebar() string {
	var b strings.Builder
	current := a.machine.Screen()
	for i, s := range screenOrder {
		line := fmt.Sprintf("%s %s", digitFor(i), s)
		if s == current {
			line = selectedStyle.Render(line)
		} else {
			line = dimStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (a *App) viewScreen() string {
	switch a.machine.Screen() {
	case model.ScreenHome:
		return a.viewHome()
	case model.ScreenBriefing:
		return a.viewRaw("Briefing", a.dash.Briefing)
	case model.ScreenTimeline:
		return a.viewRaw("Timeline", a.dash.Timeline)
	case model.ScreenSkills:
		return a.viewRaw("Proposals & skills", a.dash.Proposals)
	case model.ScreenSettings:
		return "Settings\n\n  theme: " + a.theme + "\n\n" + dimStyle.Render("t: toggle theme")
	default:
		return dimStyle.Render(fmt.Sprintf("(%s)", a.machine.Screen()))
	}
}

func (a *App) viewHome() string {
	var b strings.Builder
	b.WriteString("Notifications (newest first)\n")
	notifs := a.store.Snapshot()
	if len(notifs) == 0 {
		b.WriteString(dimStyle.Render("  all quiet") + "\n")
	}
	for i, n := range notifs {
		badge := levelBadge[n.Level].Render(string(n.Level))
		line := fmt.Sprintf("  [%s] %s — %s", badge, n.Title, n.Message)
		if i == a.selected {
			line = selectedStyle.Render(fmt.Sprintf("  [%s] %s — %s", n.Level, n.Title, n.Message))
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + dimStyle.Render("j/k: move  ·  d: dismiss  ·  D: clear  ·  1-9: screens  ·  b: sidebar"))
	return b.String()
}

func (a *App) viewRaw(title string, raw []byte) string {
	if len(raw) == 0 {
		return dimStyle.Render(title + ": nothing fetched yet")
	}
	return titleStyle.Render(title) + "\n" + string(raw)
}
