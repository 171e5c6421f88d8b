// internal/workers/chatbot/process-chat-turn/handler.go
package processchatturn

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
	"govsupport-chatbot/internal/common/observability"
	"govsupport-chatbot/internal/engine/conversation"
)

const (
	TaskType = "process-chat-turn"
)

// ChatEngine runs one conversation turn.
type ChatEngine interface {
	HandleTurn(ctx context.Context, sessionID, message string) (*conversation.TurnResult, error)
}

type Handler struct {
	config    *Config
	engine    ChatEngine
	obs       *observability.Observability
	responder *camunda.Responder
	logger    logger.Logger
}

func NewHandler(config *Config, engine ChatEngine, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		engine:    engine,
		obs:       obs,
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
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), status(err))
	if err != nil {
		h.responder.Fail(client, job, err, start)
		return
	}

	h.responder.Complete(client, job, output, start)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.SessionID) == "" {
		return nil, errors.NewInvalidRequestError("sessionId is required")
	}

	res, err := h.engine.HandleTurn(ctx, input.SessionID, input.Message)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("chat turn processed", map[string]interface{}{
		"sessionId": input.SessionID,
		"type":      res.Type,
		"field":     res.Field,
	})

	return &Output{
		ChatResponse:    *res,
		ResponseType:    res.Type,
		ProfileComplete: res.Type == conversation.TypeComplete || res.Message == conversation.MessageAlreadyDone,
		CompletionScore: res.CompletionScore,
		NextField:       res.Field,
	}, nil
}

// Execute is exported for tests and direct callers.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func status(err error) string {
	if err != nil {
		return "failed"
	}
	return "completed"
}
