// Package platform models the host platform's side of an extension
// session: the asynchronous events it delivers (command invocations,
// token refreshes, settings changes, session invalidation) and the
// connect handshake that opens a session.
package platform

import (
	"encoding/json"
	"fmt"
)

// Kind discriminates host-platform event variants on the wire.
type Kind string

const (
	KindCommandInvoked     Kind = "command"
	KindTokenRefreshed     Kind = "token_refresh"
	KindSettingsChanged    Kind = "settings_change"
	KindSessionInvalidated Kind = "session_invalidated"
)

// Event is one decoded host-platform notification. Each variant carries
// only the payload relevant to its kind; consumers dispatch with a type
// switch rather than comparing kind strings.
type Event interface {
	Kind() Kind
}

// CommandInvoked reports that the user triggered an extension command,
// for example from the sidebar menu.
type CommandInvoked struct {
	// Command is the command identifier from the manifest.
	Command string

	// Payload is the command's argument document, passed through
	// undecoded.
	Payload json.RawMessage
}

// Kind implements Event.
func (CommandInvoked) Kind() Kind { return KindCommandInvoked }

// TokenRefreshed delivers a replacement bearer credential. An empty
// Token means the platform revoked the credential without issuing a new
// one. The value must never be logged.
type TokenRefreshed struct {
	Token string
}

// Kind implements Event.
func (TokenRefreshed) Kind() Kind { return KindTokenRefreshed }

// SettingsChanged reports that the user's extension settings changed.
type SettingsChanged struct {
	// Settings is the new settings document, passed through undecoded.
	Settings json.RawMessage
}

// Kind implements Event.
func (SettingsChanged) Kind() Kind { return KindSettingsChanged }

// SessionInvalidated reports that the platform ended the session. Any
// held credential is void from this point.
type SessionInvalidated struct {
	Reason string
}

// Kind implements Event.
func (SessionInvalidated) Kind() Kind { return KindSessionInvalidated }

// UnknownKindError reports an event envelope whose kind this version
// does not understand. Such events are dropped, not failed: the host
// platform adds kinds over time.
type UnknownKindError struct {
	Kind string
}

// Error implements the error interface.
func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown event kind %q", e.Kind)
}

// envelope is the wire framing shared by all event kinds.
type envelope struct {
	Kind     string          `json:"kind"`
	Command  string          `json:"command,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	Token    string          `json:"token,omitempty"`
	Settings json.RawMessage `json:"settings,omitempty"`
	Reason   string          `json:"reason,omitempty"`
}

// ParseEvent decodes one host-platform event document into its variant.
func ParseEvent(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed event document: %w", err)
	}
	if env.Kind == "" {
		return nil, fmt.Errorf("event document has no kind")
	}

	switch Kind(env.Kind) {
	case KindCommandInvoked:
		if env.Command == "" {
			return nil, fmt.Errorf("command event has no command")
		}
		return CommandInvoked{Command: env.Command, Payload: env.Payload}, nil
	case KindTokenRefreshed:
		return TokenRefreshed{Token: env.Token}, nil
	case KindSettingsChanged:
		return SettingsChanged{Settings: env.Settings}, nil
	case KindSessionInvalidated:
		return SessionInvalidated{Reason: env.Reason}, nil
	default:
		return nil, &UnknownKindError{Kind: env.Kind}
	}
}
