// Package conversation drives a chat session through greeting, consent,
// questioning and completion.
package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"govsupport-chatbot/internal/common/errors"
	"govsupport-chatbot/internal/common/logger"
	"govsupport-chatbot/internal/common/metrics"
	"govsupport-chatbot/internal/common/observability"
	"govsupport-chatbot/internal/engine/extractor"
	"govsupport-chatbot/internal/engine/questions"
	"govsupport-chatbot/internal/models"
)

// SessionStore loads and saves per-session state. Load returns a fresh
// greeting session for an unknown id.
type SessionStore interface {
	Load(ctx context.Context, id string) (*models.SessionData, error)
	Save(ctx context.Context, id string, data *models.SessionData) error
}

var greetings = []string{"안녕하세요", "안녕", "hello", "hi"}

const consentKeyword = "동의"

// Orchestrator runs one conversation turn at a time. It holds no
// per-session state itself; concurrent turns for the same session are
// last-writer-wins at the store.
type Orchestrator struct {
	store          SessionStore
	extractor      *extractor.Extractor
	selector       *questions.Selector
	recommender    Recommender
	recommendLimit int
	publisher      EventPublisher
	log            logger.Logger
	obs            *observability.Observability
	now            func() time.Time
	newID          func() string
}

func NewOrchestrator(store SessionStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:          store,
		extractor:      extractor.New(extractor.Options{}),
		selector:       questions.NewDefaultSelector(),
		recommendLimit: 3,
		log:            logger.NewNoOpLogger(),
		now:            time.Now,
		newID:          uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// HandleTurn processes message for sessionID and persists the new state.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID, message string) (*TurnResult, error) {
	start := o.now()
	if sessionID == "" {
		return nil, errors.NewInvalidRequestError("session_id is required")
	}

	ctx, span := o.obs.StartSpan(ctx, "conversation.turn", attribute.String("session.id", sessionID))
	defer span.End()

	data, err := o.store.Load(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		return nil, storeError("load", err)
	}

	before := data.Step
	result := o.turn(ctx, data, strings.TrimSpace(message))

	data.UpdatedAt = o.now().UTC()
	if err := o.store.Save(ctx, sessionID, data); err != nil {
		span.RecordError(err)
		return nil, storeError("save", err)
	}

	if before != models.StepComplete && data.Step == models.StepComplete {
		o.publishCompletion(ctx, data, result.Recommendations)
	}

	metrics.ChatTurns.WithLabelValues(result.Type).Inc()
	metrics.ChatTurnDuration.WithLabelValues(result.Type).Observe(o.now().Sub(start).Seconds())
	o.obs.RecordTurn(ctx, result.Type)
	span.SetAttributes(attribute.String("chat.step", string(data.Step)), attribute.String("chat.type", result.Type))

	o.log.Info("Chat turn processed", map[string]interface{}{
		"sessionId":       sessionID,
		"fromStep":        string(before),
		"toStep":          string(data.Step),
		"type":            result.Type,
		"field":           result.Field,
		"completionScore": result.CompletionScore,
	})
	return result, nil
}

func storeError(op string, err error) error {
	if _, ok := errors.As(err); ok {
		return err
	}
	return errors.NewSessionStoreUnavailableError(op, err)
}

func (o *Orchestrator) turn(ctx context.Context, data *models.SessionData, message string) *TurnResult {
	switch {
	case data.Step == models.StepComplete:
		return o.reply(data, MessageAlreadyDone, TypeResponse)

	case !data.ConsentGiven && isGreeting(message):
		data.Step = models.StepConsent
		return o.reply(data, MessageConsentRequest, TypeConsent)

	case !data.ConsentGiven && strings.Contains(strings.ToLower(message), consentKeyword):
		data.ConsentGiven = true
		data.Step = models.StepQuestioning
		return o.advance(ctx, data)

	case !data.ConsentGiven:
		return o.reply(data, MessageAcknowledge, TypeResponse)
	}

	o.absorb(data, message)
	return o.advance(ctx, data)
}

// absorb merges whatever the message reveals into the profile.
func (o *Orchestrator) absorb(data *models.SessionData, message string) {
	update := o.extractor.Extract(message, data.Profile)
	if update.IsEmpty() {
		return
	}

	fields := update.FieldNames()
	for _, f := range fields {
		metrics.ExtractedFields.WithLabelValues(f).Inc()
	}
	data.Profile = data.Profile.Merge(update)
	if update.SupportPurpose != nil {
		intent := *update.SupportPurpose
		data.Intent = &intent
	}

	o.log.Debug("Profile updated", map[string]interface{}{
		"sessionId": data.SessionID,
		"fields":    fields,
	})
}

// advance emits the next question or completes the session. The field
// of an emitted question is recorded immediately so the user's reply
// counts as its answer.
func (o *Orchestrator) advance(ctx context.Context, data *models.SessionData) *TurnResult {
	for {
		q := o.selector.Next(data.Profile, data.AskedFields)
		if q == nil {
			return o.complete(ctx, data)
		}
		if q.RequiresConsent && !data.ConsentGiven {
			data.MarkAsked(q.Field)
			continue
		}

		data.Step = models.StepQuestioning
		data.MarkAsked(q.Field)

		res := o.reply(data, q.Question, TypeQuestion)
		res.Field = q.Field
		res.Options = append([]string{}, q.Options...)
		return res
	}
}

func (o *Orchestrator) complete(ctx context.Context, data *models.SessionData) *TurnResult {
	data.Step = models.StepComplete
	res := o.reply(data, MessageComplete, TypeComplete)

	if o.recommender == nil {
		return res
	}
	recs, err := o.recommender.Recommend(ctx, data.Profile, o.recommendLimit)
	if err != nil {
		o.log.Warn("Recommendation lookup failed", map[string]interface{}{
			"sessionId": data.SessionID,
			"error":     err,
		})
		return res
	}
	res.Recommendations = recs
	return res
}

func (o *Orchestrator) publishCompletion(ctx context.Context, data *models.SessionData, recs []models.Recommendation) {
	if o.publisher == nil {
		return
	}
	event := models.CompletionEvent{
		EventID:         o.newID(),
		EventType:       models.EventTypeProfileCompleted,
		SessionID:       data.SessionID,
		Profile:         data.Profile.Clone(),
		Intent:          data.Intent,
		Recommendations: recs,
		CompletedAt:     o.now().UTC(),
	}
	if err := o.publisher.PublishCompletion(ctx, event); err != nil {
		o.log.Warn("Completion event not published", map[string]interface{}{
			"sessionId": data.SessionID,
			"eventId":   event.EventID,
			"error":     err,
		})
	}
}

func (o *Orchestrator) reply(data *models.SessionData, message, typ string) *TurnResult {
	return &TurnResult{
		Message:         message,
		Type:            typ,
		SessionID:       data.SessionID,
		Profile:         data.Profile.Clone(),
		QuestionsAsked:  append([]string{}, data.AskedFields...),
		CompletionScore: data.Profile.CompletionScore(),
	}
}

func isGreeting(message string) bool {
	if message == "" {
		return true
	}
	for _, g := range greetings {
		if strings.EqualFold(message, g) {
			return true
		}
	}
	return false
}
