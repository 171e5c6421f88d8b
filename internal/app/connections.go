// Package app wires configuration, connections and engine components
// for the chat API and the worker manager.
package app

import (
	"context"
	"fmt"
	"time"

	"govsupport-chatbot/internal/common/config"
	"govsupport-chatbot/internal/common/database"
	"govsupport-chatbot/internal/common/logger"
)

// Connections are the backing stores shared by every binary.
type Connections struct {
	Postgres      *database.PostgresClient
	Redis         *database.RedisClient
	Elasticsearch *database.ElasticsearchClient
}

// RetryWithBackoff runs operation until it succeeds, doubling the delay
// after each failure.
func RetryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err,
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("%s cancelled: %w", operationName, ctx.Err())
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// Connect opens and pings PostgreSQL, Elasticsearch and Redis.
func Connect(ctx context.Context, cfg *config.Config, log logger.Logger) (*Connections, error) {
	conns := &Connections{}

	err := RetryWithBackoff(ctx, func() error {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		if err := pg.Ping(ctx); err != nil {
			_ = pg.Close()
			return err
		}
		conns.Postgres = pg
		return nil
	}, 15, 2*time.Second, log, "PostgreSQL connection")
	if err != nil {
		return nil, err
	}
	log.Info("PostgreSQL connected successfully", nil)

	err = RetryWithBackoff(ctx, func() error {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		if err := es.Ping(ctx); err != nil {
			return err
		}
		conns.Elasticsearch = es
		return nil
	}, 15, 2*time.Second, log, "Elasticsearch connection")
	if err != nil {
		conns.Close()
		return nil, err
	}
	log.Info("Elasticsearch connected successfully", nil)

	err = RetryWithBackoff(ctx, func() error {
		rdb, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		if err := rdb.Ping(ctx); err != nil {
			_ = rdb.Close()
			return err
		}
		conns.Redis = rdb
		return nil
	}, 10, 2*time.Second, log, "Redis connection")
	if err != nil {
		conns.Close()
		return nil, err
	}
	log.Info("Redis connected successfully", nil)

	return conns, nil
}

// Prepare creates the relational schema and the policy index.
func (c *Connections) Prepare(ctx context.Context, cfg *config.Config) error {
	if err := c.Postgres.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}
	if err := c.Elasticsearch.EnsureIndex(ctx, cfg.Search.Index); err != nil {
		return fmt.Errorf("ensure index %s: %w", cfg.Search.Index, err)
	}
	return nil
}

// Close releases whatever was opened.
func (c *Connections) Close() {
	if c.Postgres != nil {
		_ = c.Postgres.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}

// Checks returns one readiness check per connection.
func (c *Connections) Checks() map[string]func(ctx context.Context) error {
	checks := make(map[string]func(ctx context.Context) error)
	if c.Postgres != nil {
		checks["postgres"] = c.Postgres.Ping
	}
	if c.Redis != nil {
		checks["redis"] = c.Redis.Ping
	}
	if c.Elasticsearch != nil {
		checks["elasticsearch"] = c.Elasticsearch.Ping
	}
	return checks
}
