// Package conditions turns policy eligibility text into structured
// constraints.
package conditions

import (
	"regexp"
	"strconv"
	"strings"

	"govsupport-chatbot/internal/models"
)

// AgeUnit is the unit attached to extracted age bounds.
const AgeUnit = "세"

var maxAgeRE = regexp.MustCompile(`만\s?(\d{1,2})세\s?이하`)

// PolicyRegions is narrower than the applicant region list. Policies
// outside these regions carry no region condition.
var PolicyRegions = []string{"서울", "경기", "부산"}

// Extract reads age ceiling, region and target group from policy text.
// It never fails; an empty result means nothing was recognised.
func Extract(policyText string) models.PolicyConditions {
	var c models.PolicyConditions

	if m := maxAgeRE.FindStringSubmatch(policyText); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			c.Age = &models.AgeCondition{Max: models.IntPtr(n), Unit: AgeUnit}
		}
	}

	for _, region := range PolicyRegions {
		if strings.Contains(policyText, region) {
			c.Region = models.StringPtr(region)
			break
		}
	}

	switch {
	case strings.Contains(policyText, "예비창업자") || strings.Contains(policyText, "창업"):
		c.Employment = models.StringPtr("예비창업자")
	case strings.Contains(policyText, "청년"):
		c.Target = models.StringPtr("청년")
	}

	return c
}
