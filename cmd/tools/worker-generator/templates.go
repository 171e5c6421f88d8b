package main

var templates = map[string]string{
	"config.go":       configTemplate,
	"models.go":       modelsTemplate,
	"handler.go":      handlerTemplate,
	"handler_test.go": testTemplate,
}

const configTemplate = `// {{ .Dir }}/config.go
package {{ .PackageName }}

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: {{ .Timeout }},
	}
}
`

const modelsTemplate = `// {{ .Dir }}/models.go
package {{ .PackageName }}

type Input struct {
{{- range .Input }}
	{{ .Name }} {{ .Type }} {{ .Tag }}
{{- end }}
}

type Output struct {
{{- range .Output }}
	{{ .Name }} {{ .Type }} {{ .Tag }}
{{- end }}
}
`

const handlerTemplate = `// {{ .Dir }}/handler.go
package {{ .PackageName }}

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"govsupport-chatbot/internal/common/camunda"
	"govsupport-chatbot/internal/common/errors"
	"govsupport-chatbot/internal/common/logger"
)

const (
	TaskType = "{{ .TaskType }}"
)

{{ if .Description }}// Handler serves {{ .TaskType }}: {{ .Description }}
{{ end -}}
{{ if .ErrorCodes }}// Error codes: {{ range $i, $c := .ErrorCodes }}{{ if $i }}, {{ end }}{{ $c }}{{ end }}.
{{ end -}}
type Handler struct {
	config    *Config
	responder *camunda.Responder
	logger    logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
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
	return nil, errors.NewInternalError(fmt.Errorf("%s: not implemented", TaskType))
}

// Execute is exported for tests and direct callers.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
`

const testTemplate = `// {{ .Dir }}/handler_test.go
package {{ .PackageName }}

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"govsupport-chatbot/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}

// ==========================
// Execute Tests
// ==========================

func TestExecute_NotImplemented(t *testing.T) {
	h := NewHandler(createTestConfig(), logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{})

	assert.Error(t, err)
	assert.Nil(t, out)
}
`
