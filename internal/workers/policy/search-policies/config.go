// internal/workers/policy/search-policies/config.go
package searchpolicies

import "time"

type Config struct {
	Timeout             time.Duration
	DefaultRecommendLen int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:             10 * time.Second,
		DefaultRecommendLen: 3,
	}
}
