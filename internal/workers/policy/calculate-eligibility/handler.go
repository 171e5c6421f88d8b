// internal/workers/policy/calculate-eligibility/handler.go
package calculateeligibility

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"govsupport-chatbot/internal/common/camunda"
	"govsupport-chatbot/internal/common/errors"
	"govsupport-chatbot/internal/common/logger"
	"govsupport-chatbot/internal/eligibility"
	"govsupport-chatbot/internal/models"
	"govsupport-chatbot/internal/repository"
)

const (
	TaskType = "calculate-eligibility"
)

// ProfileSource loads stored profiles.
type ProfileSource interface {
	Get(ctx context.Context, userID string) (*repository.StoredProfile, error)
}

type Handler struct {
	config    *Config
	checker   *eligibility.Checker
	profiles  ProfileSource
	responder *camunda.Responder
	logger    logger.Logger
}

// NewHandler builds the handler. profiles may be nil when every job
// carries its profile inline.
func NewHandler(config *Config, checker *eligibility.Checker, profiles ProfileSource, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		checker:   checker,
		profiles:  profiles,
		responder: camunda.NewResponder(TaskType, log),
		logger:    log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.responder.Fail(client, job, errors.NewInvalidRequestError("parse input: "+err.Error()), start)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.responder.Fail(client, job, err, start)
		return
	}

	h.responder.Complete(client, job, output, start)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	profile, err := h.resolveProfile(ctx, input)
	if err != nil {
		return nil, err
	}

	out, err := h.checker.Check(ctx, eligibility.Request{
		Profile:    profile,
		PolicyText: input.PolicyText,
		PolicyID:   input.PolicyID,
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("eligibility calculated", map[string]interface{}{
		"userId":   input.UserID,
		"policyId": input.PolicyID,
		"score":    out.Score,
		"eligible": out.Eligible,
		"cached":   out.Cached,
	})

	return &Output{
		PolicyID:   out.PolicyID,
		MatchScore: out.Score,
		Eligible:   out.Eligible,
		Reasons:    out.Reasons,
		Conditions: out.Conditions,
		Cached:     out.Cached,
	}, nil
}

func (h *Handler) resolveProfile(ctx context.Context, input *Input) (models.UserProfile, error) {
	if input.UserProfile != nil || input.UserID == "" {
		return models.ProfileFromMap(input.UserProfile), nil
	}
	if h.profiles == nil {
		return models.UserProfile{}, errors.NewInvalidRequestError("userProfile is required")
	}

	stored, err := h.profiles.Get(ctx, input.UserID)
	if err != nil {
		return models.UserProfile{}, err
	}
	return stored.Profile, nil
}

// Execute is exported for tests and direct callers.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
