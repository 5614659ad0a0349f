package ui

import (
	"time"

	"github.com/hoshimi/periscope/internal/alert"
	"github.com/hoshimi/periscope/internal/api"
	"github.com/hoshimi/periscope/internal/model"
	"github.com/hoshimi/periscope/internal/notifstore"
)

// Messages delivered into the program loop. All state mutation happens in
// Update, one message at a time.
// OnlineChangedMsg reports a connectivity transition observed by the
// platform watcher, independently of the push channel.
type OnlineChangedMsg struct{ Online bool }

// RefreshRequestedMsg asks the shell to re-fetch the dashboard sources.
type RefreshRequestedMsg struct{}

type (
	notifAddedMsg struct{ n model.Notification }
	connStateMsg  struct{ state model.ConnState }

	toastMsg struct {
		title    string
		message  string
		duration time.Duration
	}
	toastExpiredMsg struct{ seq int }

	errorToastMsg struct {
		kind     model.ErrorKind
		message  string
		duration time.Duration
	}

	dashboardMsg struct {
		dash     api.Dashboard
		failures map[string]error
	}

	analysisDoneMsg struct{ result api.OnboardingResult }
)

// Bridge adapts the connection manager's sink interface to the program
// loop: the store is appended on the delivery goroutine, then the loop is
// poked so visible surfaces re-read their snapshots.
type Bridge struct {
	store  *notifstore.Store
	router *alert.Router
	send   func(msg any)
}

func NewBridge(store *notifstore.Store, router *alert.Router, send func(msg any)) *Bridge {
	return &Bridge{store: store, router: router, send: send}
}

func (b *Bridge) HandleNotification(n model.Notification) {
	b.store.Append(n)
	b.router.Deliver(n)
	if b.send != nil {
		b.send(notifAddedMsg{n: n})
	}
}

func (b *Bridge) StateChanged(state model.ConnState) {
	if b.send != nil {
		b.send(connStateMsg{state: state})
	}
}

// Presenter is the registered callback slot the alert router invokes. It
// lives for the shell's lifetime and forwards into the program loop.
type Presenter struct {
	send func(msg any)
}

func NewPresenter(send func(msg any)) *Presenter {
	return &Presenter{send: send}
}

func (p *Presenter) ShowToast(title, message string, duration time.Duration) {
	if p.send != nil {
		p.send(toastMsg{title: title, message: message, duration: duration})
	}
}

func (p *Presenter) ShowError(kind model.ErrorKind, message string, duration time.Duration) {
	if p.send != nil {
		p.send(errorToastMsg{kind: kind, message: message, duration: duration})
	}
}
