package model

import (
	"strings"
	"time"
)

// Level is the declared severity of an inbound notification.
type Level string

const (
	LevelSilent    Level = "silent"
	LevelFYI       Level = "fyi"
	LevelImportant Level = "important"
	LevelCritical  Level = "critical"
)

// CanonicalLevel normalizes a wire-level string; unrecognized values map to fyi
// so a misbehaving backend degrades to a transient toast instead of silence.
func CanonicalLevel(raw string) Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(LevelSilent):
		return LevelSilent
	case string(LevelFYI):
		return LevelFYI
	case string(LevelImportant):
		return LevelImportant
	case string(LevelCritical):
		return LevelCritical
	default:
		return LevelFYI
	}
}

// Notification is immutable once created. Created only by the connection
// manager on receipt of a push frame with type "notification".
type Notification struct {
	ID        string `json:"id"`
	Level     Level  `json:"level"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// ConnState is the process-wide connection state, owned exclusively by the
// connection manager. All other components only read it.
type ConnState string

const (
	ConnConnecting   ConnState = "connecting"
	ConnOpen         ConnState = "open"
	ConnReconnecting ConnState = "reconnecting"
	ConnClosed       ConnState = "closed"
)

// PushFrame is the discriminated envelope carried on the push channel.
// Frames with unknown types are ignored, never treated as errors.
type PushFrame struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	Level     string `json:"level,omitempty"`
	Title     string `json:"title,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

const (
	FrameNotification = "notification"
	FramePong         = "pong"
)

// Notification builds the immutable store entry from a notification frame.
// Missing fields are filled so the store never holds partial entries.
func (f PushFrame) Notification(id string, now time.Time) Notification {
	if f.ID != "" {
		id = f.ID
	}
	ts := f.Timestamp
	if ts == "" {
		ts = now.UTC().Format(time.RFC3339)
	}
	return Notification{
		ID:        id,
		Level:     CanonicalLevel(f.Level),
		Title:     f.Title,
		Message:   f.Message,
		Timestamp: ts,
	}
}

// ErrorKind classifies a failed request for the presentation layer.
type ErrorKind string

const (
	ErrBackendDown         ErrorKind = "backend_down"
	ErrDisconnectedAccount ErrorKind = "disconnected_upstream_account"
	ErrMissingCredential   ErrorKind = "missing_credential"
	ErrRateLimited         ErrorKind = "rate_limited"
	ErrServerError         ErrorKind = "server_error"
	ErrNotFound            ErrorKind = "not_found"
	ErrGeneric             ErrorKind = "generic"
)

// Screen is a named shell surface, one per address-bar route.
type Screen string

const (
	ScreenHome         Screen = "home"
	ScreenBriefing     Screen = "briefing"
	ScreenChat         Screen = "chat"
	ScreenTimeline     Screen = "timeline"
	ScreenContacts     Screen = "contacts"
	ScreenKnowledge    Screen = "knowledge"
	ScreenSkills       Screen = "skills"
	ScreenSettings     Screen = "settings"
	ScreenTransparency Screen = "transparency"
	ScreenOnboarding   Screen = "onboarding"
)

// OnboardingStep is the sub-state within the onboarding flow.
type OnboardingStep string

const (
	StepWelcome   OnboardingStep = "welcome"
	StepConnect   OnboardingStep = "connect"
	StepAnalyzing OnboardingStep = "analyzing"
	StepInterview OnboardingStep = "interview"
	StepReveal    OnboardingStep = "reveal"
)
