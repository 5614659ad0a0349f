// Package api holds the wire types shared with the backend.
package api

import "encoding/json"

// StatusEnvelope is the boot-time account/profile probe response.
type StatusEnvelope struct {
	AccountConnected bool   `json:"account_connected"`
	ProfileName      string `json:"profile_name"`
}

// ErrorResponse is the backend's error envelope.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Dashboard aggregates the primary data sources fetched on connectivity
// recovery. Each field is independently optional; a failed source leaves its
// field nil without corrupting the others.
type Dashboard struct {
	Briefing  json.RawMessage `json:"briefing,omitempty"`
	Proposals json.RawMessage `json:"proposals,omitempty"`
	Timeline  json.RawMessage `json:"timeline,omitempty"`
}

// OnboardingResult is the payload produced by the analyzing or interview step
// and consumed by the reveal step.
type OnboardingResult struct {
	ProfileName string          `json:"profile_name"`
	Summary     string          `json:"summary"`
	Traits      json.RawMessage `json:"traits,omitempty"`
}
