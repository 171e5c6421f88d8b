// internal/engine/questions/bank.go
package questions

import "govsupport-chatbot/internal/models"

// The bank order is the product's question priority.
var defaultBank = []models.QuestionMetadata{
	{
		Field:       models.FieldRegion,
		Question:    "거주 중인 시·도를 알려주세요",
		Options:     []string{"서울", "경기", "인천", "부산", "대구", "기타"},
		Sensitivity: 0.3,
	},
	{
		Field:       models.FieldAgeGroup,
		Question:    "연령대를 알려주세요",
		Options:     []string{"20대", "30대", "40대", "50대", "60대 이상"},
		Sensitivity: 0.4,
	},
	{
		Field:       models.FieldBusinessStatus,
		Question:    "사업자등록이 되어 있나요?",
		Options:     []string{"예", "아니오", "준비중"},
		Sensitivity: 0.2,
	},
	{
		Field:           models.FieldIncomeLevel,
		Question:        "소득 수준을 알려주세요",
		Options:         []string{"기초생활수급자", "차상위계층", "일반"},
		Sensitivity:     0.8,
		RequiresConsent: true,
	},
	{
		Field:           models.FieldTaxStatus,
		Question:        "세금 체납 여부 등 납세 상태를 알려주세요",
		Options:         []string{},
		Sensitivity:     0.9,
		RequiresConsent: true,
	},
}

// DefaultBank returns a copy of the canonical question bank.
func DefaultBank() []models.QuestionMetadata {
	return copyBank(defaultBank)
}

func copyBank(bank []models.QuestionMetadata) []models.QuestionMetadata {
	out := make([]models.QuestionMetadata, len(bank))
	for i, q := range bank {
		out[i] = q.Copy()
	}
	return out
}
