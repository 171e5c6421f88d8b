// internal/engine/matcher/matcher_test.go
package matcher

import (
	"encoding/json"
	"testing"

	"govsupport-chatbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPolicy = "지원대상: 만 39세 이하 서울 거주 청년"

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		profile  models.UserProfile
		score    float64
		eligible bool
		reasons  []string
	}{
		{
			name:     "young applicant in seoul",
			profile:  models.UserProfile{Age: models.IntPtr(29), Region: models.StringPtr("서울")},
			score:    1.0,
			eligible: true,
			reasons:  []string{ReasonAge, ReasonRegion},
		},
		{
			name:     "age boundary counts",
			profile:  models.UserProfile{Age: models.IntPtr(39)},
			score:    0.7,
			eligible: true,
			reasons:  []string{ReasonAge, ReasonRegion},
		},
		{
			name:     "seoul only",
			profile:  models.UserProfile{Age: models.IntPtr(40), Region: models.StringPtr("서울")},
			score:    0.6,
			eligible: false,
			reasons:  []string{ReasonNotMatched},
		},
		{
			name:     "other region",
			profile:  models.UserProfile{Region: models.StringPtr("부산")},
			score:    0.3,
			eligible: false,
			reasons:  []string{ReasonNotMatched},
		},
		{
			name:     "empty profile gets base score",
			profile:  models.UserProfile{},
			score:    0.3,
			eligible: false,
			reasons:  []string{ReasonNotMatched},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ScoreText(tt.profile, testPolicy)
			assert.Equal(t, tt.score, res.Score)
			assert.Equal(t, tt.eligible, res.Eligible)
			assert.Equal(t, tt.reasons, res.Reasons)
		})
	}
}

func TestScore_Monotonic(t *testing.T) {
	both := Score(models.UserProfile{Age: models.IntPtr(25), Region: models.StringPtr("서울")}, models.PolicyConditions{})
	neither := Score(models.UserProfile{Age: models.IntPtr(55), Region: models.StringPtr("대구")}, models.PolicyConditions{})

	assert.GreaterOrEqual(t, both.Score, neither.Score)
	assert.Equal(t, 1.0, both.Score)
	assert.True(t, both.Eligible)
}

func TestScoreText_AttachesConditions(t *testing.T) {
	res := ScoreText(models.UserProfile{}, testPolicy)

	require.NotNil(t, res.Conditions)
	assert.Equal(t, 39, *res.Conditions.Age.Max)
	assert.Equal(t, "서울", *res.Conditions.Region)
}

func TestResult_JSON(t *testing.T) {
	res := Score(models.UserProfile{Age: models.IntPtr(30), Region: models.StringPtr("서울")}, models.PolicyConditions{})

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"match_score":1,"eligible":true,"reasons":["연령 조건 충족","지역 조건 충족"]}`, string(data))
}
