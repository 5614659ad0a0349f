// Package alert maps notification severity to a presentation channel and
// classifies failed requests into actionable kinds.
package alert

import (
	"sync"
	"time"

	"github.com/hoshimi/periscope/internal/model"
)

type ChannelKind string

const (
	ChannelNone   ChannelKind = "none"
	ChannelToast  ChannelKind = "toast"
	ChannelNative ChannelKind = "native"
)

type Channel struct {
	Kind     ChannelKind
	Duration time.Duration
}

// Durations is the per-level toast display table, fed from configuration.
// Error presentations use the important duration.
type Durations struct {
	Critical  time.Duration
	Important time.Duration
	FYI       time.Duration
}

func DefaultDurations() Durations {
	return Durations{
		Critical:  8 * time.Second,
		Important: 6 * time.Second,
		FYI:       4 * time.Second,
	}
}

func (d Durations) withDefaults() Durations {
	def := DefaultDurations()
	if d.Critical <= 0 {
		d.Critical = def.Critical
	}
	if d.Important <= 0 {
		d.Important = def.Important
	}
	if d.FYI <= 0 {
		d.FYI = def.FYI
	}
	return d
}

// Route maps a severity to its presentation channel. Pure: same inputs always
// yield the same channel, independent of prior calls.
func Route(d Durations, level model.Level, nativeAllowed bool) Channel {
	switch level {
	case model.LevelCritical:
		if nativeAllowed {
			return Channel{Kind: ChannelNative}
		}
		return Channel{Kind: ChannelToast, Duration: d.Critical}
	case model.LevelImportant:
		return Channel{Kind: ChannelToast, Duration: d.Important}
	case model.LevelFYI:
		return Channel{Kind: ChannelToast, Duration: d.FYI}
	default:
		return Channel{Kind: ChannelNone}
	}
}

// Presenter is supplied by the shell layer that outlives individual screens.
type Presenter interface {
	ShowToast(title, message string, duration time.Duration)
	ShowError(kind model.ErrorKind, message string, duration time.Duration)
}

// Notifier delivers native OS alerts. Availability is decided once and cached.
type Notifier interface {
	Allowed() bool
	Send(title, message string) error
}

// Router owns the registered presenter slot and the offline suppression rule.
// It never stores errors; each classified failure is consumed once.
type Router struct {
	mu        sync.Mutex
	presenter Presenter
	native    Notifier
	offline   bool
	durations Durations
}

func NewRouter(native Notifier, durations Durations) *Router {
	if native == nil {
		native = NewDesktopNotifier()
	}
	return &Router{native: native, durations: durations.withDefaults()}
}

// SetPresenter registers the live presentation callback. Scoped to the shell's
// lifetime; ClearPresenter must be called on teardown.
func (r *Router) SetPresenter(p Presenter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presenter = p
}

func (r *Router) ClearPresenter() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presenter = nil
}

// SetOffline toggles suppression of per-request error presentations. A single
// offline indicator substitutes for a flood of failure toasts.
func (r *Router) SetOffline(offline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offline = offline
}

// Deliver presents a notification on the channel its level warrants.
// Silent notifications are store-only and never reach the presenter.
func (r *Router) Deliver(n model.Notification) {
	r.mu.Lock()
	presenter := r.presenter
	native := r.native
	durations := r.durations
	r.mu.Unlock()

	ch := Route(durations, n.Level, native != nil && native.Allowed())
	switch ch.Kind {
	case ChannelNative:
		if err := native.Send(n.Title, n.Message); err == nil {
			return
		}
		// Native delivery failed; fall back to the critical toast.
		ch = Channel{Kind: ChannelToast, Duration: durations.Critical}
		fallthrough
	case ChannelToast:
		if presenter != nil {
			presenter.ShowToast(n.Title, n.Message, ch.Duration)
		}
	}
}

// PresentError surfaces a classified request failure. Suppressed while
// offline: the offline state is already visible.
func (r *Router) PresentError(kind model.ErrorKind, message string) {
	r.mu.Lock()
	presenter := r.presenter
	offline := r.offline
	duration := r.durations.Important
	r.mu.Unlock()
	if offline || presenter == nil {
		return
	}
	presenter.ShowError(kind, message, duration)
}
