// internal/engine/extractor/rules.go
package extractor

import (
	"regexp"

	"govsupport-chatbot/internal/models"
)

// Rule maps a pattern in the message to a value for one profile field.
// Rules for the same field are tried in order and the first hit wins.
type Rule struct {
	Name    string
	Field   string
	Gate    string
	Pattern *regexp.Regexp
	Value   interface{}
}

func literal(words ...string) *regexp.Regexp {
	expr := ""
	for i, w := range words {
		if i > 0 {
			expr += "|"
		}
		expr += regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(expr)
}

// Regions recognised in applicant messages, in match priority.
var Regions = []string{"서울", "경기", "인천", "부산", "대구", "광주", "대전", "울산", "세종"}

const businessRegistrationGate = "사업자등록"

var numericAgeRE = regexp.MustCompile(`(\d+)살`)

func regionRules() []Rule {
	rules := make([]Rule, 0, len(Regions))
	for _, r := range Regions {
		rules = append(rules, Rule{
			Name:    "region:" + r,
			Field:   models.FieldRegion,
			Pattern: literal(r),
			Value:   r,
		})
	}
	return rules
}

// Only one age group is taken per message, lowest decade first.
func ageGroupRules() []Rule {
	return []Rule{
		{Name: "age_group:20대", Field: models.FieldAgeGroup, Pattern: literal("20대", "이십대"), Value: "20대"},
		{Name: "age_group:30대", Field: models.FieldAgeGroup, Pattern: literal("30대", "삼십대"), Value: "30대"},
		{Name: "age_group:40대", Field: models.FieldAgeGroup, Pattern: literal("40대", "사십대"), Value: "40대"},
	}
}

// negativeBeforeAffirmative: "안되어있" contains "되어있", so the
// negative rule has to be tried first.
func businessStatusRules() []Rule {
	return []Rule{
		{
			Name:    "business_status:negative",
			Field:   models.FieldBusinessStatus,
			Gate:    businessRegistrationGate,
			Pattern: literal("안되어있", "없어요", "없습니다"),
			Value:   "아니오",
		},
		{
			Name:    "business_status:affirmative",
			Field:   models.FieldBusinessStatus,
			Gate:    businessRegistrationGate,
			Pattern: literal("되어있", "있어요", "있습니다"),
			Value:   "예",
		},
	}
}

func supportPurposeRules() []Rule {
	return []Rule{
		{Name: "support_purpose:창업지원", Field: models.FieldSupportPurpose, Pattern: literal("창업", "스타트업"), Value: "창업지원"},
		{Name: "support_purpose:취업지원", Field: models.FieldSupportPurpose, Pattern: literal("취업", "일자리", "구직"), Value: "취업지원"},
		{Name: "support_purpose:주거지원", Field: models.FieldSupportPurpose, Pattern: literal("주택", "주거", "임대", "전세"), Value: "주거지원"},
		{Name: "support_purpose:교육지원", Field: models.FieldSupportPurpose, Pattern: literal("교육", "학습", "연수"), Value: "교육지원"},
	}
}

// DefaultRules is the production rule set in evaluation order.
func DefaultRules() []Rule {
	var rules []Rule
	rules = append(rules, regionRules()...)
	rules = append(rules, ageGroupRules()...)
	rules = append(rules, businessStatusRules()...)
	rules = append(rules, supportPurposeRules()...)
	return rules
}
