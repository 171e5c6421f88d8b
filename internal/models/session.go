// internal/models/session.go
package models

import "time"

// ConversationStep is the position of a session in the chat flow.
type ConversationStep string

const (
	StepGreeting    ConversationStep = "greeting"
	StepConsent     ConversationStep = "consent"
	StepQuestioning ConversationStep = "questioning"
	StepComplete    ConversationStep = "complete"
)

// Valid reports whether s is one of the known steps.
func (s ConversationStep) Valid() bool {
	switch s {
	case StepGreeting, StepConsent, StepQuestioning, StepComplete:
		return true
	}
	return false
}

// SessionData is the per-conversation state carried between turns.
type SessionData struct {
	SessionID    string           `json:"session_id"`
	Step         ConversationStep `json:"step"`
	Profile      UserProfile      `json:"user_profile"`
	AskedFields  []string         `json:"questions_asked"`
	ConsentGiven bool             `json:"consent_given"`
	Intent       *string          `json:"intent,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// NewSession returns a session waiting for a greeting.
func NewSession(id string, now time.Time) *SessionData {
	return &SessionData{
		SessionID:   id,
		Step:        StepGreeting,
		AskedFields: []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// HasAsked reports whether field was already put to the user.
func (s *SessionData) HasAsked(field string) bool {
	for _, f := range s.AskedFields {
		if f == field {
			return true
		}
	}
	return false
}

// MarkAsked records field once.
func (s *SessionData) MarkAsked(field string) {
	if s.HasAsked(field) {
		return
	}
	s.AskedFields = append(s.AskedFields, field)
}

// IsComplete reports whether the session reached its terminal step.
func (s *SessionData) IsComplete() bool {
	return s.Step == StepComplete
}
