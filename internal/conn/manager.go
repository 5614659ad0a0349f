// Package conn owns the single persistent push channel to the backend event
// endpoint. Channel loss is never surfaced as an error to the rest of the
// app; it is absorbed into reconnecting state and retried indefinitely.
package conn

import (
	"context"
	"encoding/json"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/hoshimi/periscope/internal/model"
)

const keepaliveProbe = `{"type":"ping"}`

// Sink receives decoded inbound events and state changes. Implementations
// must tolerate being called from the manager's read goroutine.
type Sink interface {
	HandleNotification(n model.Notification)
	StateChanged(state model.ConnState)
}

type Options struct {
	// Endpoint is the ws:// or wss:// URL of the event endpoint. EventURL
	// derives it from the HTTP origin.
	Endpoint       string
	KeepaliveEvery time.Duration
	ReconnectBase  time.Duration
	ReconnectCap   time.Duration
}

// EventURL derives the push endpoint from the backend HTTP origin.
func EventURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/events"
	return u.String(), nil
}

type Manager struct {
	opts   Options
	sink   Sink
	dialer *websocket.Dialer
	sleep  func(ctx context.Context, d time.Duration) error

	mu      sync.Mutex
	state   model.ConnState
	attempt int
	ws      *websocket.Conn

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	startOnce sync.Once
	closeOnce sync.Once
	started   bool
}

// New builds the manager. Exactly one per running application; Start is
// idempotent so UI re-renders cannot spawn a second channel.
func New(opts Options, sink Sink) *Manager {
	if opts.KeepaliveEvery <= 0 {
		opts.KeepaliveEvery = 25 * time.Second
	}
	if opts.ReconnectBase <= 0 {
		opts.ReconnectBase = 1 * time.Second
	}
	if opts.ReconnectCap <= 0 {
		opts.ReconnectCap = 30 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		opts:   opts,
		sink:   sink,
		dialer: websocket.DefaultDialer,
		sleep:  sleepWithContext,
		state:  model.ConnConnecting,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

func (m *Manager) Start() {
	m.startOnce.Do(func() {
		m.mu.Lock()
		m.started = true
		m.mu.Unlock()
		go m.run()
	})
}

// Close tears the manager down: the pending reconnect wait is cancelled, the
// channel is closed, and no reconnect attempt can resurrect it.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		m.cancel()
		m.mu.Lock()
		ws := m.ws
		m.mu.Unlock()
		if ws != nil {
			_ = ws.Close()
		}
	})
	m.mu.Lock()
	started := m.started
	m.mu.Unlock()
	if started {
		<-m.done
	}
}

func (m *Manager) State() model.ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) setState(s model.ConnState) {
	m.mu.Lock()
	changed := m.state != s
	m.state = s
	m.mu.Unlock()
	if changed && m.sink != nil {
		m.sink.StateChanged(s)
	}
}

// Delay computes the bounded exponential backoff for an attempt count:
// min(base * 2^attempt, cap).
func Delay(base, cap time.Duration, attempt int) time.Duration {
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= cap {
			return cap
		}
	}
	if d > cap {
		return cap
	}
	return d
}

func (m *Manager) run() {
	defer close(m.done)
	for {
		if m.ctx.Err() != nil {
			m.setState(model.ConnClosed)
			return
		}
		ws, _, err := m.dialer.DialContext(m.ctx, m.opts.Endpoint, nil)
		if err != nil {
			// Dial failure funnels into the same backoff path as an
			// unexpected close.
			if !m.backoffWait() {
				m.setState(model.ConnClosed)
				return
			}
			continue
		}
		m.mu.Lock()
		m.ws = ws
		m.mu.Unlock()
		m.setState(model.ConnOpen)

		m.serve(ws)

		m.mu.Lock()
		m.ws = nil
		m.mu.Unlock()
		if m.ctx.Err() != nil {
			m.setState(model.ConnClosed)
			return
		}
		m.setState(model.ConnReconnecting)
		if !m.backoffWait() {
			m.setState(model.ConnClosed)
			return
		}
	}
}

// backoffWait sleeps for the current attempt's delay and increments the
// counter. Returns false when the manager is being torn down.
func (m *Manager) backoffWait() bool {
	m.mu.Lock()
	delay := Delay(m.opts.ReconnectBase, m.opts.ReconnectCap, m.attempt)
	m.attempt++
	m.mu.Unlock()
	return m.sleep(m.ctx, delay) == nil
}

// serve pumps inbound frames until the channel drops. The keepalive goroutine
// is the only writer; it stops when serve returns.
func (m *Manager) serve(ws *websocket.Conn) {
	stop := make(chan struct{})
	defer close(stop)
	go m.keepalive(ws, stop)

	proven := false
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		if !proven {
			// The attempt counter resets only once the channel delivers a
			// frame. Resetting at dial time would pin a server that accepts
			// the handshake and instantly drops at the base delay forever.
			m.mu.Lock()
			m.attempt = 0
			m.mu.Unlock()
			proven = true
		}
		m.dispatch(data)
	}
}

func (m *Manager) keepalive(ws *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(m.opts.KeepaliveEvery)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := ws.WriteMessage(websocket.TextMessage, []byte(keepaliveProbe)); err != nil {
				// The read loop observes the broken channel and reconnects.
				return
			}
		}
	}
}

// dispatch decodes one inbound frame. Malformed frames are dropped, probe
// acknowledgments are consumed, unknown types are ignored.
func (m *Manager) dispatch(data []byte) {
	var frame model.PushFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		log.Printf("conn: dropping malformed frame: %v", err)
		return
	}
	switch frame.Type {
	case model.FramePong:
		return
	case model.FrameNotification:
		if m.sink != nil {
			m.sink.HandleNotification(frame.Notification(uuid.NewString(), time.Now()))
		}
	}
}

func sleepWithContext(ctx context.Context, wait time.Duration) error {
	if wait <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
