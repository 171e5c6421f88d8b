// internal/engine/conversation/recommender.go
package conversation

import (
	"context"

	"govsupport-chatbot/internal/models"
)

// Recommender suggests programs for a completed profile.
type Recommender interface {
	Recommend(ctx context.Context, profile models.UserProfile, limit int) ([]models.Recommendation, error)
}

// EventPublisher announces completed conversations.
type EventPublisher interface {
	PublishCompletion(ctx context.Context, event models.CompletionEvent) error
}

// StaticRecommender returns the built-in youth start-up program. It
// backs the CLI and deployments without a search index.
type StaticRecommender struct{}

func (StaticRecommender) Recommend(_ context.Context, profile models.UserProfile, limit int) ([]models.Recommendation, error) {
	rec := models.Recommendation{
		ID:          "policy_001",
		Title:       "청년창업지원사업",
		Description: "만 39세 이하 청년의 창업을 지원하는 사업",
		Provider:    "중소벤처기업부",
		MatchScore:  0.85,
	}
	if profile.SupportPurpose != nil && *profile.SupportPurpose == "창업지원" {
		rec.MatchScore = 0.95
	}
	if limit == 0 {
		return nil, nil
	}
	return []models.Recommendation{rec}, nil
}
