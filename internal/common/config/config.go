// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Server   ServerConfig            `mapstructure:"server"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Database DatabaseConfig          `mapstructure:"database"`
	Chat     ChatConfig              `mapstructure:"chat"`
	Search   SearchConfig            `mapstructure:"search"`
	Matching MatchingConfig          `mapstructure:"matching"`
	AWS      AWSConfig               `mapstructure:"aws"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	Logging  LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig drives the chat HTTP API.
type ServerConfig struct {
	Port            int                        `mapstructure:"port"`
	ReadTimeout     int                        `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int                        `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int                        `mapstructure:"shutdown_timeout"` // milliseconds
	RateLimits      map[string]RateLimitConfig `mapstructure:"rate_limits"`
}

// RateLimitConfig is a token bucket: Rate tokens per second, Burst capacity.
type RateLimitConfig struct {
	Rate  float64 `mapstructure:"rate"`
	Burst int     `mapstructure:"burst"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"`
}

// GetAddresses merges the single URL form into the address list.
func (e ElasticsearchConfig) GetAddresses() []string {
	if len(e.Addresses) > 0 {
		return e.Addresses
	}
	if e.URL != "" {
		return []string{e.URL}
	}
	return nil
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// ChatConfig controls conversation session handling.
type ChatConfig struct {
	SessionTTL       int    `mapstructure:"session_ttl"` // seconds
	SessionKeyPrefix string `mapstructure:"session_key_prefix"`
	NumericAge       bool   `mapstructure:"numeric_age"`
	Recommendations  int    `mapstructure:"recommendations"`
}

// SearchConfig controls the policy index.
type SearchConfig struct {
	Index      string `mapstructure:"index"`
	MaxResults int    `mapstructure:"max_results"`
	CacheTTL   int    `mapstructure:"cache_ttl"` // seconds
	Timeout    int    `mapstructure:"timeout"`   // milliseconds
}

// MatchingConfig controls eligibility scoring.
type MatchingConfig struct {
	CacheTTL int `mapstructure:"cache_ttl"` // seconds
}

// AWSConfig holds the completion event topic.
type AWSConfig struct {
	Region string `mapstructure:"region"`
	SNS    struct {
		Enabled            bool   `mapstructure:"enabled"`
		CompletionTopicARN string `mapstructure:"completion_topic_arn"`
	} `mapstructure:"sns"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
