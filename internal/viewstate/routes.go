package viewstate

import (
	"net/url"
	"strings"

	"github.com/hoshimi/periscope/internal/model"
)

var routeToScreen = map[string]model.Screen{
	"/":             model.ScreenHome,
	"/briefing":     model.ScreenBriefing,
	"/chat":         model.ScreenChat,
	"/timeline":     model.ScreenTimeline,
	"/contacts":     model.ScreenContacts,
	"/knowledge":    model.ScreenKnowledge,
	"/skills":       model.ScreenSkills,
	"/settings":     model.ScreenSettings,
	"/transparency": model.ScreenTransparency,
	"/onboarding":   model.ScreenOnboarding,
}

var screenToRoute = func() map[model.Screen]string {
	out := make(map[model.Screen]string, len(routeToScreen))
	for route, screen := range routeToScreen {
		out[screen] = route
	}
	return out
}()

// ScreenForRoute resolves a route path, ignoring any query string.
func ScreenForRoute(route string) (model.Screen, bool) {
	path := route
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		path = "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	s, ok := routeToScreen[path]
	return s, ok
}

func RouteForScreen(s model.Screen) string {
	if route, ok := screenToRoute[s]; ok {
		return route
	}
	return "/"
}

// OAuthMarker is the return-from-account-linking signal carried in the
// startup route's query string.
type OAuthMarker struct {
	Present bool
	Err     string
}

func ParseOAuthMarker(route string) OAuthMarker {
	i := strings.IndexByte(route, '?')
	if i < 0 {
		return OAuthMarker{}
	}
	values, err := url.ParseQuery(route[i+1:])
	if err != nil {
		return OAuthMarker{}
	}
	if msg := values.Get("connected_error"); msg != "" {
		return OAuthMarker{Present: true, Err: msg}
	}
	if values.Get("connected") == "1" {
		return OAuthMarker{Present: true}
	}
	return OAuthMarker{}
}
