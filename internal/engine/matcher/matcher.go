// Package matcher scores an applicant profile against a support policy.
package matcher

import (
	"math"

	"govsupport-chatbot/internal/engine/conditions"
	"govsupport-chatbot/internal/models"
)

const (
	youthAgeLimit    = 39
	youthWeight      = 0.4
	regionWeight     = 0.3
	baseWeight       = 0.3
	preferredRegion  = "서울"
	EligibleCutoff   = 0.7
	ReasonAge        = "연령 조건 충족"
	ReasonRegion     = "지역 조건 충족"
	ReasonNotMatched = "조건 미충족"
)

// Result is the outcome of one eligibility check.
type Result struct {
	Score      float64                  `json:"match_score"`
	Eligible   bool                     `json:"eligible"`
	Reasons    []string                 `json:"reasons"`
	Conditions *models.PolicyConditions `json:"conditions,omitempty"`
}

// Score applies the additive scoring rules. The reasons are fixed
// strings chosen by the eligibility outcome. Missing profile fields
// add nothing.
func Score(profile models.UserProfile, policy models.PolicyConditions) Result {
	score := baseWeight
	if profile.Age != nil && *profile.Age <= youthAgeLimit {
		score += youthWeight
	}
	if profile.Region != nil && *profile.Region == preferredRegion {
		score += regionWeight
	}
	score = math.Round(score*100) / 100

	res := Result{Score: score, Eligible: score >= EligibleCutoff}
	if res.Eligible {
		res.Reasons = []string{ReasonAge, ReasonRegion}
	} else {
		res.Reasons = []string{ReasonNotMatched}
	}
	return res
}

// ScoreText extracts the policy conditions first and attaches them to
// the result.
func ScoreText(profile models.UserProfile, policyText string) Result {
	c := conditions.Extract(policyText)
	res := Score(profile, c)
	res.Conditions = &c
	return res
}
