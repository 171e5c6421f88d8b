// internal/workers/chatbot/generate-question/handler_test.go
package generatequestion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govsupport-chatbot/internal/common/errors"
	"govsupport-chatbot/internal/common/logger"
	"govsupport-chatbot/internal/common/validation"
	"govsupport-chatbot/internal/engine/questions"
	"govsupport-chatbot/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout: time.Second,
	}
}

func createTestHandler(t *testing.T) *Handler {
	v, err := validation.NewValidator()
	require.NoError(t, err)
	return NewHandler(createTestConfig(), nil, v, logger.NewTestLogger(t))
}

// ==========================
// Execute Tests
// ==========================

func TestExecute_BankOrder(t *testing.T) {
	h := createTestHandler(t)

	tests := []struct {
		name      string
		profile   map[string]interface{}
		asked     []string
		wantField string
	}{
		{"empty profile", nil, nil, models.FieldRegion},
		{"region known", map[string]interface{}{"region": "서울"}, nil, models.FieldAgeGroup},
		{"region asked", nil, []string{"region"}, models.FieldAgeGroup},
		{"basics known", map[string]interface{}{"region": "서울", "age_group": "30대"}, nil, models.FieldBusinessStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := h.Execute(context.Background(), &Input{UserProfile: tt.profile, QuestionsAsked: tt.asked})
			require.NoError(t, err)
			assert.Equal(t, tt.wantField, out.Field)
			assert.NotEmpty(t, out.Question)
			assert.NotEmpty(t, out.Options)
			assert.False(t, out.Complete)
			assert.Equal(t, tt.wantField, out.QuestionsAsked[len(out.QuestionsAsked)-1])
		})
	}
}

func TestExecute_ConsentGating(t *testing.T) {
	h := createTestHandler(t)
	profile := map[string]interface{}{"region": "부산", "age_group": "20대", "business_status": "예"}

	out, err := h.Execute(context.Background(), &Input{UserProfile: profile})
	require.NoError(t, err)
	assert.True(t, out.Complete)
	assert.Empty(t, out.Field)
	assert.Equal(t, []string{models.FieldIncomeLevel, models.FieldTaxStatus}, out.QuestionsAsked)

	out, err = h.Execute(context.Background(), &Input{UserProfile: profile, ConsentGiven: true})
	require.NoError(t, err)
	assert.Equal(t, models.FieldIncomeLevel, out.Field)
	assert.True(t, out.RequiresConsent)
	assert.Equal(t, 0.8, out.Sensitivity)
}

func TestExecute_FreeTextQuestionHasEmptyOptions(t *testing.T) {
	h := createTestHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		UserProfile:    map[string]interface{}{"region": "서울"},
		QuestionsAsked: []string{"age_group", "business_status", "income_level"},
		ConsentGiven:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.FieldTaxStatus, out.Field)
	assert.NotNil(t, out.Options)
	assert.Empty(t, out.Options)
}

func TestExecute_SimplePromptMode(t *testing.T) {
	h := createTestHandler(t)

	tests := []struct {
		name     string
		profile  map[string]interface{}
		want     string
		complete bool
	}{
		{"nothing known", map[string]interface{}{}, questions.PromptRegion, false},
		{"region known", map[string]interface{}{"region": "서울"}, questions.PromptAge, false},
		{"region and age", map[string]interface{}{"region": "서울", "age": 29}, questions.PromptAllKnown, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := h.Execute(context.Background(), &Input{UserProfile: tt.profile, PolicyText: "만 39세 이하 청년"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Question)
			assert.Equal(t, tt.complete, out.Complete)
			assert.Empty(t, out.Field)
		})
	}
}

func TestExecute_InvalidProfile(t *testing.T) {
	h := createTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{UserProfile: map[string]interface{}{"age": 400}})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeProfileValidationFailed))
}

func TestExecute_WithoutValidator(t *testing.T) {
	h := NewHandler(createTestConfig(), questions.NewDefaultSelector(), nil, logger.NewNoOpLogger())

	out, err := h.Execute(context.Background(), &Input{UserProfile: map[string]interface{}{"age": 400}})
	require.NoError(t, err)
	assert.Equal(t, models.FieldRegion, out.Field)
}
