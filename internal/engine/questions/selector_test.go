// internal/engine/questions/selector_test.go
package questions

import (
	"testing"

	"govsupport-chatbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Bank
// ==========================

func TestDefaultBank_Order(t *testing.T) {
	var fields []string
	for _, q := range DefaultBank() {
		fields = append(fields, q.Field)
		assert.True(t, models.IsKnownField(q.Field), q.Field)
		assert.GreaterOrEqual(t, q.Sensitivity, 0.0)
		assert.LessOrEqual(t, q.Sensitivity, 1.0)
	}

	assert.Equal(t, []string{"region", "age_group", "business_status", "income_level", "tax_status"}, fields)
}

func TestDefaultBank_ConsentFlags(t *testing.T) {
	s := NewDefaultSelector()

	income, ok := s.Lookup(models.FieldIncomeLevel)
	require.True(t, ok)
	assert.True(t, income.RequiresConsent)

	tax, ok := s.Lookup(models.FieldTaxStatus)
	require.True(t, ok)
	assert.True(t, tax.RequiresConsent)
	assert.Equal(t, 0.9, tax.Sensitivity)
	assert.False(t, tax.HasOptions())

	region, ok := s.Lookup(models.FieldRegion)
	require.True(t, ok)
	assert.False(t, region.RequiresConsent)

	_, ok = s.Lookup("unknown")
	assert.False(t, ok)
}

func TestDefaultBank_IsACopy(t *testing.T) {
	bank := DefaultBank()
	bank[0].Options[0] = "changed"

	assert.Equal(t, "서울", DefaultBank()[0].Options[0])
}

// ==========================
// Next
// ==========================

func TestSelector_Next(t *testing.T) {
	s := NewDefaultSelector()

	tests := []struct {
		name     string
		profile  models.UserProfile
		asked    []string
		expected string
	}{
		{
			name:     "empty state starts with region",
			expected: models.FieldRegion,
		},
		{
			name:     "known region moves to age group",
			profile:  models.UserProfile{Region: models.StringPtr("서울")},
			expected: models.FieldAgeGroup,
		},
		{
			name:     "asked but unanswered field is skipped",
			asked:    []string{models.FieldRegion},
			expected: models.FieldAgeGroup,
		},
		{
			name: "consent fields are returned by the selector",
			profile: models.UserProfile{
				Region:         models.StringPtr("서울"),
				AgeGroup:       models.StringPtr("30대"),
				BusinessStatus: models.StringPtr("예"),
			},
			expected: models.FieldIncomeLevel,
		},
		{
			name:     "extra keys do not count as bank fields",
			profile:  models.UserProfile{Extra: map[string]interface{}{"nickname": "kim"}},
			expected: models.FieldRegion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := s.Next(tt.profile, tt.asked)
			require.NotNil(t, q)
			assert.Equal(t, tt.expected, q.Field)
		})
	}
}

func TestSelector_NextExhausted(t *testing.T) {
	s := NewDefaultSelector()
	asked := []string{"region", "age_group", "business_status", "income_level", "tax_status"}

	assert.Nil(t, s.Next(models.UserProfile{}, asked))
}

func TestSelector_NeverReturnsCoveredField(t *testing.T) {
	s := NewDefaultSelector()
	profile := models.UserProfile{AgeGroup: models.StringPtr("20대"), TaxStatus: models.StringPtr("정상")}
	asked := []string{models.FieldBusinessStatus}

	var seen []string
	for q := s.Next(profile, asked); q != nil; q = s.Next(profile, asked) {
		assert.False(t, profile.Has(q.Field))
		assert.NotContains(t, asked, q.Field)
		seen = append(seen, q.Field)
		asked = append(asked, q.Field)
	}

	assert.Equal(t, []string{"region", "income_level"}, seen)
}

func TestSelector_CustomBank(t *testing.T) {
	s := NewSelector([]models.QuestionMetadata{
		{Field: models.FieldSupportPurpose, Question: "어떤 지원을 원하시나요?"},
	})

	q := s.Next(models.UserProfile{}, nil)
	require.NotNil(t, q)
	assert.Equal(t, models.FieldSupportPurpose, q.Field)
	assert.Len(t, s.Bank(), 1)
}

// ==========================
// Simple prompt
// ==========================

func TestSimplePrompt(t *testing.T) {
	assert.Equal(t, PromptRegion, SimplePrompt(models.UserProfile{}))
	assert.Equal(t, PromptAge, SimplePrompt(models.UserProfile{Region: models.StringPtr("서울")}))
	// age_group alone does not satisfy the age prompt
	assert.Equal(t, PromptAge, SimplePrompt(models.UserProfile{
		Region:   models.StringPtr("서울"),
		AgeGroup: models.StringPtr("30대"),
	}))
	assert.Equal(t, PromptAllKnown, SimplePrompt(models.UserProfile{
		Region: models.StringPtr("서울"),
		Age:    models.IntPtr(27),
	}))
}

func TestPolicyPrompt(t *testing.T) {
	tests := []struct {
		name    string
		profile models.UserProfile
		want    string
	}{
		{"empty profile", models.UserProfile{}, PolicyPromptRegion},
		{"region only", models.UserProfile{Region: models.StringPtr("부산")}, PolicyPromptAge},
		{"age group is not an age", models.UserProfile{
			Region:   models.StringPtr("부산"),
			AgeGroup: models.StringPtr("20대"),
		}, PolicyPromptAge},
		{"region and age", models.UserProfile{
			Region: models.StringPtr("부산"),
			Age:    models.IntPtr(31),
		}, PolicyPromptEmployment},
		{"all three known", models.UserProfile{
			Region:     models.StringPtr("부산"),
			Age:        models.IntPtr(31),
			Employment: models.StringPtr("예비창업자"),
		}, PolicyPromptBusinessType},
		{"business type already known", models.UserProfile{
			Region:       models.StringPtr("부산"),
			Age:          models.IntPtr(31),
			Employment:   models.StringPtr("직장인"),
			BusinessType: models.StringPtr("제조업"),
		}, PolicyPromptBusinessType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PolicyPrompt(tt.profile))
		})
	}
}
