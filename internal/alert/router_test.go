package alert

import (
	"errors"
	"testing"
	"time"

	"github.com/hoshimi/periscope/internal/model"
)

func TestRouteMapping(t *testing.T) {
	cases := []struct {
		level         model.Level
		nativeAllowed bool
		wantKind      ChannelKind
		wantDuration  time.Duration
	}{
		{model.LevelCritical, true, ChannelNative, 0},
		{model.LevelCritical, false, ChannelToast, 8 * time.Second},
		{model.LevelImportant, true, ChannelToast, 6 * time.Second},
		{model.LevelImportant, false, ChannelToast, 6 * time.Second},
		{model.LevelFYI, false, ChannelToast, 4 * time.Second},
		{model.LevelSilent, true, ChannelNone, 0},
		{model.LevelSilent, false, ChannelNone, 0},
	}
	d := DefaultDurations()
	for _, tc := range cases {
		got := Route(d, tc.level, tc.nativeAllowed)
		if got.Kind != tc.wantKind {
			t.Fatalf("Route(%s, %v) kind = %s, want %s", tc.level, tc.nativeAllowed, got.Kind, tc.wantKind)
		}
		if got.Duration != tc.wantDuration {
			t.Fatalf("Route(%s, %v) duration = %s, want %s", tc.level, tc.nativeAllowed, got.Duration, tc.wantDuration)
		}
	}
}

func TestRouteIsPure(t *testing.T) {
	d := DefaultDurations()
	first := Route(d, model.LevelImportant, false)
	for i := 0; i < 10; i++ {
		Route(d, model.LevelCritical, true)
		Route(d, model.LevelSilent, false)
		if got := Route(d, model.LevelImportant, false); got != first {
			t.Fatalf("Route changed across calls: %+v vs %+v", got, first)
		}
	}
}

func TestRouteUsesConfiguredDurations(t *testing.T) {
	d := Durations{Critical: 1 * time.Second, Important: 2 * time.Second, FYI: 3 * time.Second}
	if got := Route(d, model.LevelCritical, false); got.Duration != 1*time.Second {
		t.Fatalf("critical duration = %s, want configured 1s", got.Duration)
	}
	if got := Route(d, model.LevelImportant, false); got.Duration != 2*time.Second {
		t.Fatalf("important duration = %s, want configured 2s", got.Duration)
	}
	if got := Route(d, model.LevelFYI, false); got.Duration != 3*time.Second {
		t.Fatalf("fyi duration = %s, want configured 3s", got.Duration)
	}
}

func TestDurationsZeroFieldsFallBackToDefaults(t *testing.T) {
	r := NewRouter(&fakeNotifier{}, Durations{Important: 2 * time.Second})
	if r.durations.Important != 2*time.Second {
		t.Fatalf("configured field lost: %+v", r.durations)
	}
	if r.durations.Critical != 8*time.Second || r.durations.FYI != 4*time.Second {
		t.Fatalf("zero fields must take defaults: %+v", r.durations)
	}
}

type fakePresenter struct {
	toasts    []string
	durations []time.Duration
	errors    []model.ErrorKind
}

func (p *fakePresenter) ShowToast(title, message string, d time.Duration) {
	p.toasts = append(p.toasts, title)
	p.durations = append(p.durations, d)
}

func (p *fakePresenter) ShowError(kind model.ErrorKind, message string, d time.Duration) {
	p.errors = append(p.errors, kind)
	p.durations = append(p.durations, d)
}

type fakeNotifier struct {
	allowed bool
	sent    int
	fail    bool
}

func (n *fakeNotifier) Allowed() bool { return n.allowed }
func (n *fakeNotifier) Send(title, message string) error {
	n.sent++
	if n.fail {
		return errors.New("send failed")
	}
	return nil
}

func TestDeliverSilentIsStoreOnly(t *testing.T) {
	p := &fakePresenter{}
	r := NewRouter(&fakeNotifier{allowed: true}, DefaultDurations())
	r.SetPresenter(p)
	r.Deliver(model.Notification{ID: "n1", Level: model.LevelSilent, Title: "quiet"})
	if len(p.toasts) != 0 {
		t.Fatalf("silent notification must not present a toast: %v", p.toasts)
	}
}

func TestDeliverCriticalPrefersNative(t *testing.T) {
	p := &fakePresenter{}
	n := &fakeNotifier{allowed: true}
	r := NewRouter(n, DefaultDurations())
	r.SetPresenter(p)
	r.Deliver(model.Notification{ID: "n1", Level: model.LevelCritical, Title: "boom"})
	if n.sent != 1 {
		t.Fatalf("expected one native alert, got %d", n.sent)
	}
	if len(p.toasts) != 0 {
		t.Fatalf("native delivery must not also toast: %v", p.toasts)
	}
}

func TestDeliverCriticalFallsBackToToast(t *testing.T) {
	p := &fakePresenter{}
	r := NewRouter(&fakeNotifier{allowed: true, fail: true}, Durations{Critical: 9 * time.Second})
	r.SetPresenter(p)
	r.Deliver(model.Notification{ID: "n1", Level: model.LevelCritical, Title: "boom"})
	if len(p.toasts) != 1 {
		t.Fatalf("expected toast fallback after native failure, got %v", p.toasts)
	}
	if p.durations[0] != 9*time.Second {
		t.Fatalf("fallback toast must use the configured critical duration, got %s", p.durations[0])
	}
}

func TestPresentErrorSuppressedOffline(t *testing.T) {
	p := &fakePresenter{}
	r := NewRouter(&fakeNotifier{}, DefaultDurations())
	r.SetPresenter(p)
	r.SetOffline(true)
	r.PresentError(model.ErrServerError, "boom")
	if len(p.errors) != 0 {
		t.Fatalf("offline error presentations must be suppressed: %v", p.errors)
	}
	r.SetOffline(false)
	r.PresentError(model.ErrServerError, "boom")
	if len(p.errors) != 1 {
		t.Fatalf("expected one error presentation online, got %v", p.errors)
	}
}

func TestClearPresenterStopsDelivery(t *testing.T) {
	p := &fakePresenter{}
	r := NewRouter(&fakeNotifier{}, DefaultDurations())
	r.SetPresenter(p)
	r.ClearPresenter()
	r.Deliver(model.Notification{ID: "n1", Level: model.LevelFYI, Title: "hi"})
	r.PresentError(model.ErrGeneric, "x")
	if len(p.toasts) != 0 || len(p.errors) != 0 {
		t.Fatalf("cleared presenter must not receive calls: %v %v", p.toasts, p.errors)
	}
}
