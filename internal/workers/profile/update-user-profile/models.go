// internal/workers/profile/update-user-profile/models.go
package updateuserprofile

import (
	"time"

	"govsupport-chatbot/internal/models"
)

type Input struct {
	UserID      string                 `json:"userId"`
	UserProfile map[string]interface{} `json:"userProfile"`
}

type Output struct {
	UserID          string             `json:"userId"`
	UserProfile     models.UserProfile `json:"userProfile"`
	CompletionScore float64            `json:"completionScore"`
	UpdatedAt       time.Time          `json:"profileUpdatedAt"`
}
