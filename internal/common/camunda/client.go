// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"govsupport-chatbot/internal/common/config"
	"govsupport-chatbot/internal/common/logger"
)

// RetryConfig defines retry behaviour while connecting to the broker.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryConfig = RetryConfig{
	MaxRetries: 5,
	BaseDelay:  2 * time.Second,
	MaxDelay:   30 * time.Second,
}

// Connect opens a plaintext gateway connection and waits until the
// topology request succeeds, backing off between attempts.
func Connect(ctx context.Context, cfg config.CamundaConfig, retry RetryConfig, log logger.Logger) (zbc.Client, error) {
	var lastErr error
	for attempt := 0; attempt <= retry.MaxRetries; attempt++ {
		client, err := dial(ctx, cfg)
		if err == nil {
			return client, nil
		}
		lastErr = err

		if !IsRetryable(err) || attempt == retry.MaxRetries {
			break
		}

		delay := Backoff(retry, attempt)
		log.Warn("zeebe connection failed, retrying", map[string]interface{}{
			"attempt": attempt + 1,
			"delayMs": delay.Milliseconds(),
			"error":   err,
		})
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("connect to zeebe cancelled: %w", ctx.Err())
		}
	}
	return nil, fmt.Errorf("connect to zeebe at %s: %w", cfg.BrokerAddress, lastErr)
}

func dial(ctx context.Context, cfg config.CamundaConfig) (zbc.Client, error) {
	client, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: true,
	})
	if err != nil {
		return nil, err
	}

	if err := HealthCheck(ctx, client, config.GetDuration(cfg.RequestTimeout)); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// Backoff doubles BaseDelay per attempt up to MaxDelay.
func Backoff(retry RetryConfig, attempt int) time.Duration {
	delay := retry.BaseDelay * time.Duration(1<<attempt)
	if delay > retry.MaxDelay || delay <= 0 {
		delay = retry.MaxDelay
	}
	return delay
}

// IsRetryable reports whether err looks like a transient gateway error.
func IsRetryable(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"unreachable",
		"broken pipe",
	} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

// HealthCheck sends a topology request.
func HealthCheck(ctx context.Context, client zbc.Client, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if _, err := client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}
