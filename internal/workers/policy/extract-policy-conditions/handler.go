// internal/workers/policy/extract-policy-conditions/handler.go
package extractpolicyconditions

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"govsupport-chatbot/internal/common/camunda"
	"govsupport-chatbot/internal/common/errors"
	"govsupport-chatbot/internal/common/logger"
	"govsupport-chatbot/internal/engine/conditions"
	"govsupport-chatbot/internal/models"
)

const (
	TaskType = "extract-policy-conditions"
)

// PolicySource looks up catalogue entries by id.
type PolicySource interface {
	GetByID(ctx context.Context, id string) (*models.Policy, error)
}

type Handler struct {
	config    *Config
	policies  PolicySource
	responder *camunda.Responder
	logger    logger.Logger
}

func NewHandler(config *Config, policies PolicySource, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		policies:  policies,
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
	text := input.PolicyText
	if text == "" {
		if input.PolicyID == "" {
			return nil, errors.NewInvalidRequestError("policyText or policyId is required")
		}
		if h.policies == nil {
			return nil, errors.NewInvalidRequestError("policy lookup by id is not available")
		}
		policy, err := h.policies.GetByID(ctx, input.PolicyID)
		if err != nil {
			return nil, err
		}
		text = policy.Text()
	}

	c := conditions.Extract(text)
	h.logger.Info("policy conditions extracted", map[string]interface{}{
		"policyId":      input.PolicyID,
		"hasAge":        c.Age != nil,
		"hasRegion":     c.Region != nil,
		"hasTarget":     c.Target != nil,
		"hasEmployment": c.Employment != nil,
	})

	return &Output{
		PolicyID:      input.PolicyID,
		Conditions:    c,
		HasConditions: !c.IsEmpty(),
	}, nil
}

// Execute is exported for tests and direct callers.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
