// internal/workers/chatbot/process-chat-turn/models.go
package processchatturn

import "govsupport-chatbot/internal/engine/conversation"

type Input struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// Output is flattened into process variables so gateways can branch on
// responseType and profileComplete.
type Output struct {
	ChatResponse    conversation.TurnResult `json:"chatResponse"`
	ResponseType    string                  `json:"responseType"`
	ProfileComplete bool                    `json:"profileComplete"`
	CompletionScore float64                 `json:"completionScore"`
	NextField       string                  `json:"nextField,omitempty"`
}
