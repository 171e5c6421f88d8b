// internal/models/event.go
package models

import "time"

// EventTypeProfileCompleted is published when a conversation reaches
// the complete step.
const EventTypeProfileCompleted = "chat.profile.completed"

// CompletionEvent announces a finished profile collection.
type CompletionEvent struct {
	EventID         string           `json:"event_id"`
	EventType       string           `json:"event_type"`
	SessionID       string           `json:"session_id"`
	Profile         UserProfile      `json:"user_profile"`
	Intent          *string          `json:"intent,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	CompletedAt     time.Time        `json:"completed_at"`
}
