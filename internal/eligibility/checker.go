// Package eligibility scores a profile against a policy, resolving the
// policy text from the catalogue and caching results in Redis.
package eligibility

import (
	"context"
	"encoding/json"
	"strconv"

	"govsupport-chatbot/internal/cache"
	"govsupport-chatbot/internal/common/errors"
	"govsupport-chatbot/internal/common/logger"
	"govsupport-chatbot/internal/common/metrics"
	"govsupport-chatbot/internal/engine/matcher"
	"govsupport-chatbot/internal/models"
)

// PolicySource looks up catalogue entries by id.
type PolicySource interface {
	GetByID(ctx context.Context, id string) (*models.Policy, error)
}

// Request names the policy either by text or by catalogue id. Text
// wins when both are set.
type Request struct {
	Profile    models.UserProfile
	PolicyText string
	PolicyID   string
}

// Outcome is a matcher result plus the policy it was computed for.
type Outcome struct {
	matcher.Result
	PolicyID string `json:"policyId,omitempty"`
	Cached   bool   `json:"cached"`
}

type Checker struct {
	policies PolicySource
	cache    *cache.Cache
	logger   logger.Logger
}

// NewChecker builds a checker. policies and c may be nil.
func NewChecker(policies PolicySource, c *cache.Cache, log logger.Logger) *Checker {
	return &Checker{policies: policies, cache: c, logger: log}
}

func (c *Checker) Check(ctx context.Context, req Request) (*Outcome, error) {
	// with neither text nor id the policy imposes no conditions
	text := req.PolicyText
	if text == "" && req.PolicyID != "" {
		if c.policies == nil {
			return nil, errors.NewInvalidRequestError("policy lookup by id is not available")
		}
		policy, err := c.policies.GetByID(ctx, req.PolicyID)
		if err != nil {
			return nil, err
		}
		text = policy.Text()
	}

	profileJSON, err := json.Marshal(req.Profile)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	key := cache.Key(string(profileJSON), text)

	var cached Outcome
	if c.cache.Get(ctx, key, &cached) {
		cached.Cached = true
		cached.PolicyID = req.PolicyID
		return &cached, nil
	}

	out := &Outcome{Result: matcher.ScoreText(req.Profile, text), PolicyID: req.PolicyID}
	metrics.EligibilityChecks.WithLabelValues(strconv.FormatBool(out.Eligible)).Inc()

	if err := c.cache.Set(ctx, key, out); err != nil {
		c.logger.Warn("eligibility cache write failed", map[string]interface{}{"error": err})
	}
	return out, nil
}
