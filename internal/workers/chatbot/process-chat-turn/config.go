// internal/workers/chatbot/process-chat-turn/config.go
package processchatturn

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
