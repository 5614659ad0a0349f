// Package connectivity observes network reachability independently of the
// push channel, so offline detection works even while the channel itself is
// quietly backing off.
package connectivity

import (
	"context"
	"net"
	"net/url"
	"time"
)

type State struct {
	Online              bool
	ConsecutiveFailures int
}

// Next applies one probe result. A single success flips back online; going
// offline takes two consecutive failures so one dropped probe does not flap
// the whole UI.
func Next(state State, success bool) State {
	if success {
		state.Online = true
		state.ConsecutiveFailures = 0
		return state
	}
	state.ConsecutiveFailures++
	if state.ConsecutiveFailures >= 2 {
		state.Online = false
	}
	return state
}

// Probe reports whether the backend origin is reachable at the TCP level.
type Probe func(ctx context.Context) bool

// DialProbe builds a probe that dials the origin host with a short timeout.
func DialProbe(serverURL string, timeout time.Duration) (Probe, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, err
	}
	host := u.Host
	if u.Port() == "" {
		if u.Scheme == "https" {
			host = net.JoinHostPort(u.Hostname(), "443")
		} else {
			host = net.JoinHostPort(u.Hostname(), "80")
		}
	}
	var d net.Dialer
	return func(ctx context.Context) bool {
		dialCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		conn, err := d.DialContext(dialCtx, "tcp", host)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, nil
}

// Watcher polls the probe and reports online/offline transitions.
type Watcher struct {
	probe    Probe
	interval time.Duration
	onChange func(online bool)
	state    State
}

func NewWatcher(probe Probe, interval time.Duration, onChange func(online bool)) *Watcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Watcher{
		probe:    probe,
		interval: interval,
		onChange: onChange,
		state:    State{Online: true},
	}
}

// Run blocks until ctx is cancelled. Transitions are reported from this
// goroutine only.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			wasOnline := w.state.Online
			w.state = Next(w.state, w.probe(ctx))
			if w.state.Online != wasOnline && w.onChange != nil {
				w.onChange(w.state.Online)
			}
		}
	}
}
