package viewstate

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestRecoveryTriggersExactlyOneRefresh(t *testing.T) {
	var refreshes atomic.Int32
	r := NewRecovery(20*time.Millisecond, func() { refreshes.Add(1) })
	defer r.Stop()

	r.SetOnline(false)
	r.SetOnline(true)
	r.SetOnline(true) // duplicate signal, no second refresh

	time.Sleep(100 * time.Millisecond)
	if got := refreshes.Load(); got != 1 {
		t.Fatalf("expected exactly one refresh, got %d", got)
	}
}

func TestRecoveryFlapCancelsPendingRefresh(t *testing.T) {
	var refreshes atomic.Int32
	r := NewRecovery(50*time.Millisecond, func() { refreshes.Add(1) })
	defer r.Stop()

	r.SetOnline(false)
	r.SetOnline(true)
	r.SetOnline(false) // back offline before the settle delay elapses

	time.Sleep(150 * time.Millisecond)
	if got := refreshes.Load(); got != 0 {
		t.Fatalf("flap must cancel the pending refresh, got %d", got)
	}
}

func TestRecoveryRefreshWaitsForSettleDelay(t *testing.T) {
	var refreshes atomic.Int32
	r := NewRecovery(60*time.Millisecond, func() { refreshes.Add(1) })
	defer r.Stop()

	r.SetOnline(false)
	r.SetOnline(true)
	if got := refreshes.Load(); got != 0 {
		t.Fatalf("refresh fired before the settle delay")
	}
	time.Sleep(150 * time.Millisecond)
	if got := refreshes.Load(); got != 1 {
		t.Fatalf("expected refresh after settle delay, got %d", got)
	}
}
