// internal/workers/policy/search-policies/models.go
package searchpolicies

import (
	"govsupport-chatbot/internal/models"
	"govsupport-chatbot/internal/search"
)

// Input either searches by query or, with userProfile set, ranks
// policies for that profile.
type Input struct {
	Query       string                 `json:"query,omitempty"`
	Region      string                 `json:"region,omitempty"`
	Category    string                 `json:"category,omitempty"`
	Size        int                    `json:"size,omitempty"`
	UserProfile map[string]interface{} `json:"userProfile,omitempty"`
	Limit       int                    `json:"limit,omitempty"`
}

type Output struct {
	Policies        []search.Hit            `json:"policies"`
	Total           int                     `json:"total"`
	Recommendations []models.Recommendation `json:"recommendations"`
	Cached          bool                    `json:"cached"`
}
