package viewstate

import (
	"testing"

	"github.com/hoshimi/periscope/internal/model"
)

func TestScreenForRoute(t *testing.T) {
	cases := []struct {
		route string
		want  model.Screen
		ok    bool
	}{
		{"/", model.ScreenHome, true},
		{"", model.ScreenHome, true},
		{"/briefing", model.ScreenBriefing, true},
		{"/chat", model.ScreenChat, true},
		{"/settings/", model.ScreenSettings, true},
		{"/skills?from=toast", model.ScreenSkills, true},
		{"/unknown", "", false},
	}
	for _, tc := range cases {
		got, ok := ScreenForRoute(tc.route)
		if ok != tc.ok {
			t.Fatalf("ScreenForRoute(%q) ok = %v, want %v", tc.route, ok, tc.ok)
		}
		if ok && got != tc.want {
			t.Fatalf("ScreenForRoute(%q) = %s, want %s", tc.route, got, tc.want)
		}
	}
}

func TestRouteScreenRoundTrip(t *testing.T) {
	for route, screen := range map[string]model.Screen{
		"/":         model.ScreenHome,
		"/timeline": model.ScreenTimeline,
		"/contacts": model.ScreenContacts,
	} {
		if got := RouteForScreen(screen); got != route {
			t.Fatalf("RouteForScreen(%s) = %q, want %q", screen, got, route)
		}
	}
}

func TestParseOAuthMarker(t *testing.T) {
	if m := ParseOAuthMarker("/onboarding?connected=1"); !m.Present || m.Err != "" {
		t.Fatalf("expected success marker, got %+v", m)
	}
	if m := ParseOAuthMarker("/onboarding?connected_error=token%20expired"); !m.Present || m.Err != "token expired" {
		t.Fatalf("expected error marker with message, got %+v", m)
	}
	if m := ParseOAuthMarker("/chat"); m.Present {
		t.Fatalf("no query must mean no marker, got %+v", m)
	}
	if m := ParseOAuthMarker("/chat?connected=0"); m.Present {
		t.Fatalf("connected=0 is not a marker, got %+v", m)
	}
}
