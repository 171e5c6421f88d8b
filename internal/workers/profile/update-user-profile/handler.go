// internal/workers/profile/update-user-profile/handler.go
package updateuserprofile

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"govsupport-chatbot/internal/common/camunda"
	"govsupport-chatbot/internal/common/errors"
	"govsupport-chatbot/internal/common/logger"
	"govsupport-chatbot/internal/common/validation"
	"govsupport-chatbot/internal/models"
	"govsupport-chatbot/internal/repository"
)

const (
	TaskType = "update-user-profile"
)

// ProfileStore persists merged profiles.
type ProfileStore interface {
	Upsert(ctx context.Context, userID string, update models.UserProfile) (*repository.StoredProfile, error)
}

type Handler struct {
	config    *Config
	profiles  ProfileStore
	validator *validation.Validator
	responder *camunda.Responder
	logger    logger.Logger
}

func NewHandler(config *Config, profiles ProfileStore, validator *validation.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		profiles:  profiles,
		validator: validator,
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
	if strings.TrimSpace(input.UserID) == "" {
		return nil, errors.NewInvalidRequestError("userId is required")
	}
	if input.UserProfile == nil {
		return nil, errors.NewInvalidRequestError("userProfile is required")
	}

	res, err := h.validator.Validate(validation.SchemaUserProfile, input.UserProfile)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if !res.Valid {
		h.logger.Warn("profile rejected", map[string]interface{}{
			"userId": input.UserID,
			"errors": res.GetErrorMessages(),
		})
		return nil, errors.NewProfileValidationFailedError(res.Summary())
	}

	stored, err := h.profiles.Upsert(ctx, input.UserID, models.ProfileFromMap(input.UserProfile))
	if err != nil {
		return nil, err
	}

	score := stored.Profile.CompletionScore()
	h.logger.Info("profile updated", map[string]interface{}{
		"userId":          input.UserID,
		"fields":          stored.Profile.FieldNames(),
		"completionScore": score,
	})

	return &Output{
		UserID:          stored.UserID,
		UserProfile:     stored.Profile,
		CompletionScore: score,
		UpdatedAt:       stored.UpdatedAt,
	}, nil
}

// Execute is exported for tests and direct callers.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
