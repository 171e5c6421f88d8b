// internal/workers/chatbot/generate-question/models.go
package generatequestion

type Input struct {
	UserProfile    map[string]interface{} `json:"userProfile"`
	QuestionsAsked []string               `json:"questionsAsked"`
	ConsentGiven   bool                   `json:"consentGiven"`
	PolicyText     string                 `json:"policyText,omitempty"`
}

type Output struct {
	Question        string   `json:"question"`
	Field           string   `json:"field,omitempty"`
	Options         []string `json:"options"`
	Sensitivity     float64  `json:"sensitivity"`
	RequiresConsent bool     `json:"requiresConsent"`
	QuestionsAsked  []string `json:"questionsAsked"`
	Complete        bool     `json:"questionsComplete"`
}
