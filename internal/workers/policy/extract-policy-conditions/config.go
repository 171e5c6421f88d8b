// internal/workers/policy/extract-policy-conditions/config.go
package extractpolicyconditions

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
