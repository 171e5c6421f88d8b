// internal/workers/chatbot/generate-question/handler.go
package generatequestion

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"govsupport-chatbot/internal/common/camunda"
	"govsupport-chatbot/internal/common/errors"
	"govsupport-chatbot/internal/common/logger"
	"govsupport-chatbot/internal/common/validation"
	"govsupport-chatbot/internal/engine/questions"
	"govsupport-chatbot/internal/models"
)

const (
	TaskType = "generate-question"
)

type Handler struct {
	config    *Config
	selector  *questions.Selector
	validator *validation.Validator
	responder *camunda.Responder
	logger    logger.Logger
}

// NewHandler builds the handler. validator may be nil to skip schema checks.
func NewHandler(config *Config, selector *questions.Selector, validator *validation.Validator, log logger.Logger) *Handler {
	if selector == nil {
		selector = questions.NewDefaultSelector()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		selector:  selector,
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

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.UserProfile == nil {
		input.UserProfile = map[string]interface{}{}
	}
	if h.validator != nil {
		res, err := h.validator.Validate(validation.SchemaUserProfile, input.UserProfile)
		if err != nil {
			return nil, errors.NewInternalError(err)
		}
		if !res.Valid {
			return nil, errors.NewProfileValidationFailedError(res.Summary())
		}
	}

	profile := models.ProfileFromMap(input.UserProfile)
	asked := append([]string{}, input.QuestionsAsked...)

	// policy detail pages only need the short region/age prompt
	if input.PolicyText != "" {
		prompt := questions.SimplePrompt(profile)
		return &Output{
			Question:       prompt,
			Options:        []string{},
			QuestionsAsked: asked,
			Complete:       prompt == questions.PromptAllKnown,
		}, nil
	}

	for {
		next := h.selector.Next(profile, asked)
		if next == nil {
			h.logger.Debug("question bank exhausted", map[string]interface{}{
				"asked": len(asked),
			})
			return &Output{Options: []string{}, QuestionsAsked: asked, Complete: true}, nil
		}

		asked = append(asked, next.Field)
		if next.RequiresConsent && !input.ConsentGiven {
			continue
		}

		options := next.Options
		if options == nil {
			options = []string{}
		}
		return &Output{
			Question:        next.Question,
			Field:           next.Field,
			Options:         options,
			Sensitivity:     next.Sensitivity,
			RequiresConsent: next.RequiresConsent,
			QuestionsAsked:  asked,
		}, nil
	}
}

// Execute is exported for tests and direct callers.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
