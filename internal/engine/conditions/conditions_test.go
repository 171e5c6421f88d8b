// internal/engine/conditions/conditions_test.go
package conditions

import (
	"encoding/json"
	"testing"

	"govsupport-chatbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "age region and target",
			text:     "지원대상: 만 39세 이하 서울 거주 청년",
			expected: `{"age":{"max":39,"unit":"세"},"region":"서울","target":"청년"}`,
		},
		{
			name:     "age without space",
			text:     "만34세이하 누구나",
			expected: `{"age":{"max":34,"unit":"세"}}`,
		},
		{
			name:     "founding wins over youth",
			text:     "청년 예비창업자 대상 사업화 자금",
			expected: `{"employment":"예비창업자"}`,
		},
		{
			name:     "plain founding keyword",
			text:     "경기 소재 창업 3년 이내 기업",
			expected: `{"region":"경기","employment":"예비창업자"}`,
		},
		{
			name:     "region priority order",
			text:     "부산 및 서울 지역",
			expected: `{"region":"서울"}`,
		},
		{
			name:     "regions outside the policy list are ignored",
			text:     "인천 대구 광주 거주자",
			expected: `{}`,
		},
		{
			name:     "minimum age phrasing is not recognised",
			text:     "만 19세 이상",
			expected: `{}`,
		},
		{
			name:     "empty text",
			text:     "",
			expected: `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text)
			data, err := json.Marshal(got)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))
		})
	}
}

func TestExtract_Fields(t *testing.T) {
	c := Extract("지원대상: 만 39세 이하 서울 거주 청년")

	require.NotNil(t, c.Age)
	assert.Equal(t, 39, *c.Age.Max)
	assert.Nil(t, c.Age.Min)
	assert.Equal(t, AgeUnit, c.Age.Unit)
	assert.Equal(t, "서울", *c.Region)
	assert.Equal(t, "청년", *c.Target)
	assert.Nil(t, c.Employment)
	assert.False(t, c.IsEmpty())
	assert.True(t, Extract("해당 없음").IsEmpty())
}

func TestExtract_DoesNotShareState(t *testing.T) {
	a := Extract("만 29세 이하")
	b := Extract("만 29세 이하")
	*a.Age.Max = 1

	assert.Equal(t, 29, *b.Age.Max)
	assert.IsType(t, models.PolicyConditions{}, b)
}
