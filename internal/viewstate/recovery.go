package viewstate

import (
	"sync"
	"time"
)

// Recovery triggers one best-effort catch-up refresh per offline-to-online
// transition, after a short settle delay. Flapping back offline before the
// delay elapses cancels the pending refresh.
type Recovery struct {
	mu      sync.Mutex
	settle  time.Duration
	refresh func()
	online  bool
	timer   *time.Timer
}

func NewRecovery(settle time.Duration, refresh func()) *Recovery {
	return &Recovery{settle: settle, refresh: refresh, online: true}
}

func (r *Recovery) SetOnline(online bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if online == r.online {
		return
	}
	r.online = online
	if !online {
		if r.timer != nil {
			r.timer.Stop()
			r.timer = nil
		}
		return
	}
	r.timer = time.AfterFunc(r.settle, r.refresh)
}

func (r *Recovery) Online() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.online
}

func (r *Recovery) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}
