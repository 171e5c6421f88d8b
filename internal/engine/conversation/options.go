// internal/engine/conversation/options.go
package conversation

import (
	"time"

	"govsupport-chatbot/internal/common/logger"
	"govsupport-chatbot/internal/common/observability"
	"govsupport-chatbot/internal/engine/extractor"
	"govsupport-chatbot/internal/engine/questions"
)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

func WithExtractor(e *extractor.Extractor) Option {
	return func(o *Orchestrator) { o.extractor = e }
}

func WithSelector(s *questions.Selector) Option {
	return func(o *Orchestrator) { o.selector = s }
}

// WithRecommender attaches recommendations to the complete reply.
// limit caps the number returned.
func WithRecommender(r Recommender, limit int) Option {
	return func(o *Orchestrator) {
		o.recommender = r
		o.recommendLimit = limit
	}
}

func WithEventPublisher(p EventPublisher) Option {
	return func(o *Orchestrator) { o.publisher = p }
}

func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

func WithObservability(obs *observability.Observability) Option {
	return func(o *Orchestrator) { o.obs = obs }
}

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithIDGenerator overrides the event id source.
func WithIDGenerator(gen func() string) Option {
	return func(o *Orchestrator) { o.newID = gen }
}
