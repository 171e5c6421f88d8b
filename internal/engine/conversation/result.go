// internal/engine/conversation/result.go
package conversation

import (
	"encoding/json"

	"govsupport-chatbot/internal/models"
)

// Response types on the wire.
const (
	TypeConsent  = "consent"
	TypeQuestion = "question"
	TypeResponse = "response"
	TypeComplete = "complete"
)

// Fixed replies.
const (
	MessageConsentRequest = "안녕하세요! 정부 지원사업 매칭 서비스입니다. 개인정보 처리에 동의하시겠습니까?"
	MessageComplete       = "감사합니다! 수집된 정보로 맞춤 지원사업을 찾아드리겠습니다."
	MessageAlreadyDone    = "정보 수집이 완료되었습니다. 추천 결과를 확인해 주세요."
	MessageAcknowledge    = "말씀 감사합니다. 서비스를 이용하시려면 개인정보 처리에 동의해 주세요."
)

// TurnResult is the reply to one chat message.
type TurnResult struct {
	Message         string                  `json:"message"`
	Type            string                  `json:"type"`
	Options         []string                `json:"options"`
	Field           string                  `json:"field,omitempty"`
	SessionID       string                  `json:"session_id"`
	Profile         models.UserProfile      `json:"user_profile"`
	QuestionsAsked  []string                `json:"questions_asked"`
	CompletionScore float64                 `json:"completion_score"`
	Recommendations []models.Recommendation `json:"recommendations,omitempty"`
}

// ToMap returns the wire map with the profile also under
// "profile", which older clients read.
func (r TurnResult) ToMap() map[string]interface{} {
	options := r.Options
	if options == nil {
		options = []string{}
	}
	asked := r.QuestionsAsked
	if asked == nil {
		asked = []string{}
	}
	out := map[string]interface{}{
		"message":          r.Message,
		"type":             r.Type,
		"options":          options,
		"session_id":       r.SessionID,
		"user_profile":     r.Profile.ToMap(),
		"profile":          r.Profile.ToMap(),
		"questions_asked":  asked,
		"completion_score": r.CompletionScore,
	}
	if r.Field != "" {
		out["field"] = r.Field
	}
	if len(r.Recommendations) > 0 {
		out["recommendations"] = r.Recommendations
	}
	return out
}

// MarshalJSON writes the ToMap form.
func (r TurnResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}
