// internal/models/policy.go
package models

// AgeCondition is an age bound extracted from policy text.
type AgeCondition struct {
	Max  *int   `json:"max,omitempty"`
	Min  *int   `json:"min,omitempty"`
	Unit string `json:"unit"`
}

// PolicyConditions are the eligibility constraints read from a policy.
// They are derived per request and never stored.
type PolicyConditions struct {
	Age        *AgeCondition `json:"age,omitempty"`
	Region     *string       `json:"region,omitempty"`
	Employment *string       `json:"employment,omitempty"`
	Target     *string       `json:"target,omitempty"`
}

func (c PolicyConditions) IsEmpty() bool {
	return c.Age == nil && c.Region == nil && c.Employment == nil && c.Target == nil
}

// Policy is a support program as stored in the catalogue.
type Policy struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Provider    string   `json:"provider"`
	Eligibility string   `json:"eligibility"`
	Regions     []string `json:"regions,omitempty"`
	Category    string   `json:"category,omitempty"`
	UpdatedAt   string   `json:"updatedAt,omitempty"`
}

// Text is what the condition extractor reads.
func (p Policy) Text() string {
	if p.Eligibility != "" {
		return p.Eligibility
	}
	return p.Description
}

// Recommendation is a policy suggested at the end of a conversation.
type Recommendation struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Provider    string  `json:"provider"`
	MatchScore  float64 `json:"match_score"`
}
