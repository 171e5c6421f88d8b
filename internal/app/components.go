// internal/app/components.go
package app

import (
	"context"
	"fmt"

	"govsupport-chatbot/internal/cache"
	"govsupport-chatbot/internal/common/aws"
	"govsupport-chatbot/internal/common/config"
	"govsupport-chatbot/internal/common/logger"
	"govsupport-chatbot/internal/common/observability"
	"govsupport-chatbot/internal/common/validation"
	"govsupport-chatbot/internal/eligibility"
	"govsupport-chatbot/internal/engine/conversation"
	"govsupport-chatbot/internal/engine/extractor"
	"govsupport-chatbot/internal/engine/questions"
	"govsupport-chatbot/internal/repository"
	"govsupport-chatbot/internal/search"
	"govsupport-chatbot/internal/session"
)

// Components are the engine pieces built on top of Connections.
type Components struct {
	Validator    *validation.Validator
	Profiles     *repository.ProfileRepository
	Policies     *repository.PolicyRepository
	Searcher     *search.PolicySearcher
	Checker      *eligibility.Checker
	Selector     *questions.Selector
	Sessions     *session.RedisStore
	Orchestrator *conversation.Orchestrator
}

// Build assembles the components. publisher may be nil, in which case
// completion events are only logged.
func Build(cfg *config.Config, conns *Connections, publisher conversation.EventPublisher, obs *observability.Observability, log logger.Logger) (*Components, error) {
	v, err := validation.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("init validator: %w", err)
	}

	rdb := conns.Redis.Client
	c := &Components{
		Validator: v,
		Profiles:  repository.NewProfileRepository(conns.Postgres.DB),
		Policies:  repository.NewPolicyRepository(conns.Postgres.DB),
		Selector:  questions.NewDefaultSelector(),
		Sessions:  session.NewRedisStore(rdb, cfg.Chat.SessionKeyPrefix, config.GetSeconds(cfg.Chat.SessionTTL)),
	}

	c.Searcher = search.NewPolicySearcher(
		conns.Elasticsearch.Client,
		cfg.Search,
		cache.New(rdb, "search", "search:", config.GetSeconds(cfg.Search.CacheTTL)),
		log,
	)
	c.Checker = eligibility.NewChecker(
		c.Policies,
		cache.New(rdb, "match", "match:", config.GetSeconds(cfg.Matching.CacheTTL)),
		log,
	)

	opts := []conversation.Option{
		conversation.WithExtractor(extractor.New(extractor.Options{NumericAge: cfg.Chat.NumericAge})),
		conversation.WithSelector(c.Selector),
		conversation.WithRecommender(c.Searcher, cfg.Chat.Recommendations),
		conversation.WithLogger(log),
		conversation.WithObservability(obs),
	}
	if publisher != nil {
		opts = append(opts, conversation.WithEventPublisher(publisher))
	}
	c.Orchestrator = conversation.NewOrchestrator(c.Sessions, opts...)

	return c, nil
}

// CompletionPublisher returns the SNS publisher when enabled in cfg and
// nil otherwise.
func CompletionPublisher(ctx context.Context, cfg *config.Config, log logger.Logger) (conversation.EventPublisher, error) {
	if !cfg.AWS.SNS.Enabled {
		return nil, nil
	}
	client, err := aws.NewSNSClient(ctx, cfg.AWS.Region)
	if err != nil {
		return nil, fmt.Errorf("init sns client: %w", err)
	}
	return aws.NewSNSPublisher(client, cfg.AWS.SNS.CompletionTopicARN, log), nil
}
