// internal/workers/policy/search-policies/handler.go
package searchpolicies

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"govsupport-chatbot/internal/common/camunda"
	"govsupport-chatbot/internal/common/errors"
	"govsupport-chatbot/internal/common/logger"
	"govsupport-chatbot/internal/models"
	"govsupport-chatbot/internal/search"
)

const (
	TaskType = "search-policies"
)

// Searcher is the part of the policy index the worker uses.
type Searcher interface {
	Search(ctx context.Context, q search.Query) (*search.Result, error)
	Recommend(ctx context.Context, profile models.UserProfile, limit int) ([]models.Recommendation, error)
}

type Handler struct {
	config    *Config
	searcher  Searcher
	responder *camunda.Responder
	logger    logger.Logger
}

func NewHandler(config *Config, searcher Searcher, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		searcher:  searcher,
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
	if input.UserProfile != nil {
		return h.recommend(ctx, input)
	}

	res, err := h.searcher.Search(ctx, search.Query{
		Text:     input.Query,
		Region:   input.Region,
		Category: input.Category,
		Size:     input.Size,
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("policy search completed", map[string]interface{}{
		"query":  input.Query,
		"total":  res.Total,
		"cached": res.Cached,
	})

	return &Output{
		Policies:        res.Policies,
		Total:           res.Total,
		Recommendations: []models.Recommendation{},
		Cached:          res.Cached,
	}, nil
}

func (h *Handler) recommend(ctx context.Context, input *Input) (*Output, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = h.config.DefaultRecommendLen
	}

	recs, err := h.searcher.Recommend(ctx, models.ProfileFromMap(input.UserProfile), limit)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []models.Recommendation{}
	}

	h.logger.Info("policies recommended", map[string]interface{}{
		"limit": limit,
		"count": len(recs),
	})

	return &Output{
		Policies:        []search.Hit{},
		Total:           len(recs),
		Recommendations: recs,
	}, nil
}

// Execute is exported for tests and direct callers.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
