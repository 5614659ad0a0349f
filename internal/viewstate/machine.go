// Package viewstate is the single source of truth for which screen is
// active, reconciled with the deep-link route surface and the persisted
// session so a reload or back/forward step never strands the user in a
// half-onboarded shell.
package viewstate

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/hoshimi/periscope/internal/api"
	"github.com/hoshimi/periscope/internal/model"
	"github.com/hoshimi/periscope/internal/session"
)

type Phase string

const (
	PhaseBooting    Phase = "booting"
	PhaseOnboarding Phase = "onboarding"
	PhaseShell      Phase = "shell"
)

// Flags is the persisted-session surface the machine needs.
type Flags interface {
	GetBool(ctx context.Context, key string, def bool) bool
	SetBool(ctx context.Context, key string, value bool) error
}

// Location is the address-bar analog: whatever surface exposes the current
// route for deep links and back/forward.
type Location interface {
	Set(route string)
}

// StatusProbe is the boot-time account/profile check.
type StatusProbe interface {
	Status(ctx context.Context) (api.StatusEnvelope, error)
}

// allowedSteps is the explicit transition table for the onboarding flow.
// Two divergent paths (analyzing, interview) converge at reveal.
var allowedSteps = map[model.OnboardingStep][]model.OnboardingStep{
	model.StepWelcome:   {model.StepConnect},
	model.StepConnect:   {model.StepAnalyzing, model.StepInterview},
	model.StepAnalyzing: {model.StepReveal},
	model.StepInterview: {model.StepReveal},
	model.StepReveal:    nil,
}

type Machine struct {
	mu    sync.Mutex
	flags Flags
	loc   Location

	phase         Phase
	screen        model.Screen
	step          model.OnboardingStep
	complete      bool
	accountLinked bool
	result        *api.OnboardingResult
	oauthError    string
}

func NewMachine(flags Flags, loc Location) *Machine {
	return &Machine{
		flags:  flags,
		loc:    loc,
		phase:  PhaseBooting,
		screen: model.ScreenHome,
		step:   model.StepWelcome,
	}
}

// Boot resolves the initial state. The precedence is load-bearing: an OAuth
// callback marker outranks a stale persisted flag, the persisted flag
// outranks the backend probe, and an unreachable backend fails open into the
// shell instead of trapping the user in onboarding.
func (m *Machine) Boot(ctx context.Context, initialRoute string, probe StatusProbe) {
	marker := ParseOAuthMarker(initialRoute)
	m.mu.Lock()
	defer m.mu.Unlock()

	if marker.Present {
		m.phase = PhaseOnboarding
		m.screen = model.ScreenOnboarding
		if marker.Err != "" {
			m.step = model.StepConnect
			m.oauthError = marker.Err
			return
		}
		m.step = model.StepAnalyzing
		m.accountLinked = true
		return
	}

	if m.flags.GetBool(ctx, session.KeyOnboardingComplete, false) {
		m.complete = true
		m.enterShellLocked(initialRoute)
		return
	}

	if probe != nil {
		env, err := probe.Status(ctx)
		if err != nil {
			// Fail open: a dead backend must not block the shell.
			m.enterShellLocked(initialRoute)
			return
		}
		if env.AccountConnected || env.ProfileName != "" {
			if err := m.flags.SetBool(ctx, session.KeyOnboardingComplete, true); err != nil {
				log.Printf("viewstate: persist onboarding flag: %v", err)
			}
			m.complete = true
			m.enterShellLocked(initialRoute)
			return
		}
	}

	m.phase = PhaseOnboarding
	m.screen = model.ScreenOnboarding
	m.step = model.StepWelcome
}

func (m *Machine) enterShellLocked(initialRoute string) {
	m.phase = PhaseShell
	if s, ok := ScreenForRoute(initialRoute); ok && s != model.ScreenOnboarding {
		m.screen = s
	} else {
		m.screen = model.ScreenHome
	}
}

func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

func (m *Machine) Screen() model.Screen {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase == PhaseOnboarding {
		return model.ScreenOnboarding
	}
	return m.screen
}

func (m *Machine) Step() model.OnboardingStep {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step
}

func (m *Machine) OnboardingComplete() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.complete
}

func (m *Machine) AccountLinked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accountLinked
}

func (m *Machine) OAuthError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.oauthError
}

func (m *Machine) Result() *api.OnboardingResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result
}

// Navigate is user-initiated: it updates the active screen and writes the
// route exactly once. Navigating to the current screen is a no-op, which is
// what breaks the write-read echo cycle.
func (m *Machine) Navigate(s model.Screen) {
	m.mu.Lock()
	if m.phase != PhaseShell || s == m.screen || s == model.ScreenOnboarding {
		m.mu.Unlock()
		return
	}
	m.screen = s
	loc := m.loc
	route := RouteForScreen(s)
	m.mu.Unlock()
	if loc != nil {
		loc.Set(route)
	}
}

// HandleLocation is route-initiated (back/forward, deep link): it updates
// the active screen without re-issuing a route write. While onboarding is
// active the screen is pinned and route changes are ignored.
func (m *Machine) HandleLocation(route string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseShell {
		return
	}
	s, ok := ScreenForRoute(route)
	if !ok || s == model.ScreenOnboarding || s == m.screen {
		return
	}
	m.screen = s
}

func (m *Machine) advanceStepLocked(to model.OnboardingStep) error {
	if m.phase != PhaseOnboarding {
		return fmt.Errorf("onboarding step %s requested outside onboarding", to)
	}
	for _, next := range allowedSteps[m.step] {
		if next == to {
			m.step = to
			return nil
		}
	}
	return fmt.Errorf("onboarding transition %s -> %s not allowed", m.step, to)
}

func (m *Machine) AdvanceWelcome() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.advanceStepLocked(model.StepConnect)
}

// LinkAccount records a successful external-account linkage and moves to
// analysis. Only valid from the connect step, so an interview in progress
// can never coexist with a linked-account path.
func (m *Machine) LinkAccount() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.advanceStepLocked(model.StepAnalyzing); err != nil {
		return err
	}
	m.accountLinked = true
	return nil
}

// SkipConnect takes the interview path instead of linking an account.
func (m *Machine) SkipConnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.advanceStepLocked(model.StepInterview)
}

func (m *Machine) FinishAnalysis(res api.OnboardingResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step != model.StepAnalyzing {
		return fmt.Errorf("analysis result arrived in step %s", m.step)
	}
	if err := m.advanceStepLocked(model.StepReveal); err != nil {
		return err
	}
	m.result = &res
	return nil
}

func (m *Machine) FinishInterview(res api.OnboardingResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step != model.StepInterview {
		return fmt.Errorf("interview result arrived in step %s", m.step)
	}
	if err := m.advanceStepLocked(model.StepReveal); err != nil {
		return err
	}
	m.result = &res
	return nil
}

// CompleteReveal persists the completion flag durably before the transition
// to the shell, so a reload mid-transition cannot re-trigger onboarding. A
// degraded (in-memory) persist is logged, not fatal.
func (m *Machine) CompleteReveal(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseOnboarding || m.step != model.StepReveal {
		return fmt.Errorf("reveal exit requested from %s/%s", m.phase, m.step)
	}
	if err := m.flags.SetBool(ctx, session.KeyOnboardingComplete, true); err != nil {
		log.Printf("viewstate: persist onboarding flag: %v", err)
	}
	m.complete = true
	m.phase = PhaseShell
	m.screen = model.ScreenHome
	return nil
}
