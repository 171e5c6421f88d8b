// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"govsupport-chatbot/internal/common/config"
	"govsupport-chatbot/internal/common/errors"
	"govsupport-chatbot/internal/common/logger"
	"govsupport-chatbot/internal/common/metrics"
)

// Start opens a job worker for taskType. It returns nil when the
// worker is disabled.
func Start(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler worker.JobHandler, log logger.Logger) worker.JobWorker {
	if !wcfg.Enabled {
		log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return nil
	}

	w := client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeoutMs":     wcfg.Timeout,
	})
	return w
}

// Responder completes or fails jobs for one task type and records the
// job metrics.
type Responder struct {
	taskType string
	errors   *errors.ErrorHandler
	logger   logger.Logger
}

func NewResponder(taskType string, log logger.Logger) *Responder {
	return &Responder{
		taskType: taskType,
		errors:   errors.NewErrorHandler(log),
		logger:   log,
	}
}

// Complete sends output as the job's result variables.
func (r *Responder) Complete(client worker.JobClient, job entities.Job, output interface{}, start time.Time) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		r.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		r.Fail(client, job, errors.NewInternalError(err), start)
		return
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		r.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
	}
	metrics.ObserveJob(r.taskType, start, "")

	r.logger.Info("job completed", map[string]interface{}{
		"jobKey":     job.Key,
		"durationMs": time.Since(start).Milliseconds(),
	})
}

// Fail hands err to the error handler, which retries transient codes
// and throws a BPMN error for the rest.
func (r *Responder) Fail(client worker.JobClient, job entities.Job, err error, start time.Time) {
	stdErr := errors.Normalize(err)
	r.errors.HandleJobError(context.Background(), client, job, stdErr)
	metrics.ObserveJob(r.taskType, start, string(stdErr.Code))
}
