// internal/workers/policy/calculate-eligibility/models.go
package calculateeligibility

import "govsupport-chatbot/internal/models"

// Input carries the profile inline or names a stored one by userId.
type Input struct {
	UserID      string                 `json:"userId,omitempty"`
	UserProfile map[string]interface{} `json:"userProfile,omitempty"`
	PolicyText  string                 `json:"policyText,omitempty"`
	PolicyID    string                 `json:"policyId,omitempty"`
}

type Output struct {
	PolicyID   string                   `json:"policyId,omitempty"`
	MatchScore float64                  `json:"matchScore"`
	Eligible   bool                     `json:"eligible"`
	Reasons    []string                 `json:"reasons"`
	Conditions *models.PolicyConditions `json:"conditions,omitempty"`
	Cached     bool                     `json:"cached"`
}
