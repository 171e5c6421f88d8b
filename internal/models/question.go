// internal/models/question.go
package models

// QuestionMetadata describes one entry of the question bank.
type QuestionMetadata struct {
	Field           string   `json:"field"`
	Question        string   `json:"question"`
	Options         []string `json:"options"`
	Sensitivity     float64  `json:"sensitivity"`
	RequiresConsent bool     `json:"requires_consent"`
}

// HasOptions reports whether the question offers fixed choices.
func (q QuestionMetadata) HasOptions() bool {
	return len(q.Options) > 0
}

// Copy returns the question with its own options slice.
func (q QuestionMetadata) Copy() QuestionMetadata {
	c := q
	if q.Options != nil {
		c.Options = append([]string(nil), q.Options...)
	}
	return c
}
