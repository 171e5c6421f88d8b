// internal/engine/questions/selector.go
package questions

import "govsupport-chatbot/internal/models"

// Simple prompt texts used when the caller only wants a nudge for the
// next missing basic attribute.
const (
	PromptRegion   = "거주 중인 시·도를 알려주실 수 있나요?"
	PromptAge      = "연령대를 알려주시면 맞춤 지원사업을 찾을 수 있어요."
	PromptAllKnown = "필요한 정보를 모두 수집했습니다!"
)

// Prompts of the policy detail question ladder.
const (
	PolicyPromptRegion       = "거주 중인 시·도를 알려주실 수 있나요?"
	PolicyPromptAge          = "연령대를 알려주시면 맞춤 지원사업을 찾을 수 있어요. 몇 년생이신가요?"
	PolicyPromptEmployment   = "현재 어떤 형태로 일하고 계신가요? (직장인, 예비창업자 등)"
	PolicyPromptBusinessType = "사업 분야나 업종을 알려주시면 더 정확한 매칭이 가능해요."
)

// Selector picks the next question from a fixed bank. It does not look
// at consent; callers gate sensitive questions themselves.
type Selector struct {
	bank []models.QuestionMetadata
}

func NewSelector(bank []models.QuestionMetadata) *Selector {
	return &Selector{bank: copyBank(bank)}
}

// NewDefaultSelector uses the canonical bank.
func NewDefaultSelector() *Selector {
	return NewSelector(defaultBank)
}

// Next returns the first bank entry whose field is neither set in the
// profile nor already asked, or nil when every field is covered.
func (s *Selector) Next(profile models.UserProfile, asked []string) *models.QuestionMetadata {
	skip := make(map[string]struct{}, len(asked))
	for _, f := range asked {
		skip[f] = struct{}{}
	}

	for _, q := range s.bank {
		if profile.Has(q.Field) {
			continue
		}
		if _, ok := skip[q.Field]; ok {
			continue
		}
		next := q.Copy()
		return &next
	}
	return nil
}

// Bank returns a copy of the selector's bank.
func (s *Selector) Bank() []models.QuestionMetadata {
	return copyBank(s.bank)
}

// Lookup finds the bank entry for field.
func (s *Selector) Lookup(field string) (models.QuestionMetadata, bool) {
	for _, q := range s.bank {
		if q.Field == field {
			return q.Copy(), true
		}
	}
	return models.QuestionMetadata{}, false
}

// SimplePrompt asks for region, then age, then reports completion.
func SimplePrompt(profile models.UserProfile) string {
	switch {
	case !profile.Has(models.FieldRegion):
		return PromptRegion
	case !profile.Has(models.FieldAge):
		return PromptAge
	default:
		return PromptAllKnown
	}
}

// PolicyPrompt walks region, age and employment, then keeps asking for
// the business type. It never reports completion.
func PolicyPrompt(profile models.UserProfile) string {
	switch {
	case !profile.Has(models.FieldRegion):
		return PolicyPromptRegion
	case !profile.Has(models.FieldAge):
		return PolicyPromptAge
	case !profile.Has(models.FieldEmployment):
		return PolicyPromptEmployment
	default:
		return PolicyPromptBusinessType
	}
}
