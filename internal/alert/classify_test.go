package alert

import (
	"testing"

	"github.com/hoshimi/periscope/internal/model"
)

func TestClassifyPrecedence(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   model.ErrorKind
	}{
		{"no network wins over body", 0, `{"error":"rate limit"}`, model.ErrBackendDown},
		{"account hint beats status", 503, `{"error":{"message":"Google account disconnected, please reconnect"}}`, model.ErrDisconnectedAccount},
		{"account hint flat envelope", 400, `{"error":"your account is not connected"}`, model.ErrDisconnectedAccount},
		{"credential hint", 401, `{"error":"no API key configured"}`, model.ErrMissingCredential},
		{"credential hint plain text", 403, "missing key for provider", model.ErrMissingCredential},
		{"rate limited regardless of body", 429, "whatever", model.ErrRateLimited},
		{"server error", 500, "", model.ErrServerError},
		{"unparseable body with 503 falls through", 503, `{"err`, model.ErrServerError},
		{"not found", 404, "", model.ErrNotFound},
		{"generic", 400, "bad request", model.ErrGeneric},
		{"account alone is not a hint", 400, "account updated", model.ErrGeneric},
	}
	for _, tc := range cases {
		if got := Classify(tc.status, []byte(tc.body)); got != tc.want {
			t.Fatalf("%s: Classify(%d, %q) = %s, want %s", tc.name, tc.status, tc.body, got, tc.want)
		}
	}
}

func TestClassifyNeverPanicsOnGarbage(t *testing.T) {
	bodies := [][]byte{nil, {}, []byte("{"), []byte(`{"error":{}}`), []byte("\x00\xff")}
	for _, b := range bodies {
		_ = Classify(500, b)
		_ = Classify(0, b)
		_ = Classify(418, b)
	}
}

func TestGuidanceCoversAllKinds(t *testing.T) {
	kinds := []model.ErrorKind{
		model.ErrBackendDown,
		model.ErrDisconnectedAccount,
		model.ErrMissingCredential,
		model.ErrRateLimited,
		model.ErrServerError,
		model.ErrNotFound,
		model.ErrGeneric,
	}
	for _, k := range kinds {
		if Guidance(k) == "" {
			t.Fatalf("no guidance for kind %s", k)
		}
	}
}
