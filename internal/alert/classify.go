package alert

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hoshimi/periscope/internal/model"
)

// Classify derives an error kind from a failed request. Unparseable bodies
// fall through to the status-code rules; this never panics.
func Classify(status int, body []byte) model.ErrorKind {
	if status == 0 {
		return model.ErrBackendDown
	}
	hint := strings.ToLower(extractMessage(body))
	switch {
	case mentionsUpstreamAccount(hint):
		return model.ErrDisconnectedAccount
	case mentionsMissingCredential(hint):
		return model.ErrMissingCredential
	case status == http.StatusTooManyRequests:
		return model.ErrRateLimited
	case status >= 500:
		return model.ErrServerError
	case status == http.StatusNotFound:
		return model.ErrNotFound
	default:
		return model.ErrGeneric
	}
}

func mentionsUpstreamAccount(hint string) bool {
	if !strings.Contains(hint, "account") {
		return false
	}
	return strings.Contains(hint, "disconnect") ||
		strings.Contains(hint, "not connected") ||
		strings.Contains(hint, "reconnect") ||
		strings.Contains(hint, "relink")
}

func mentionsMissingCredential(hint string) bool {
	return strings.Contains(hint, "api key") ||
		strings.Contains(hint, "credential") ||
		strings.Contains(hint, "missing key")
}

// extractMessage pulls a human-readable message out of a JSON error body,
// tolerating the common envelope shapes. Raw text passes through unchanged.
func extractMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed[0] != '{' {
		return trimmed
	}
	var nested struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &nested); err == nil {
		if nested.Error.Message != "" {
			return nested.Error.Message
		}
		if nested.Message != "" {
			return nested.Message
		}
		if nested.Error.Code != "" {
			return nested.Error.Code
		}
	}
	var flat struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &flat); err == nil && flat.Error != "" {
		return flat.Error
	}
	return trimmed
}

// Guidance returns per-kind recovery guidance shown instead of raw errors.
func Guidance(kind model.ErrorKind) string {
	switch kind {
	case model.ErrBackendDown:
		return "Cannot reach the backend. Check that the service is running."
	case model.ErrDisconnectedAccount:
		return "Your account integration is disconnected. Reconnect it in Settings."
	case model.ErrMissingCredential:
		return "No API key is configured. Add one in Settings."
	case model.ErrRateLimited:
		return "Too many requests. Wait a moment and try again."
	case model.ErrServerError:
		return "The backend hit an internal error. It usually recovers on its own."
	case model.ErrNotFound:
		return "That item no longer exists."
	default:
		return "Something went wrong. Try again."
	}
}
