// internal/workers/policy/extract-policy-conditions/models.go
package extractpolicyconditions

import "govsupport-chatbot/internal/models"

// Input names the policy by text or by catalogue id. Text wins.
type Input struct {
	PolicyText string `json:"policyText,omitempty"`
	PolicyID   string `json:"policyId,omitempty"`
}

type Output struct {
	PolicyID      string                  `json:"policyId,omitempty"`
	Conditions    models.PolicyConditions `json:"conditions"`
	HasConditions bool                    `json:"hasConditions"`
}
