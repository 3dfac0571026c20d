package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Agent    AgentConfig    `mapstructure:"agent"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

type AgentConfig struct {
	// Mode selects the orchestration strategy: "pipeline" resolves the
	// intent once and dispatches a single query, "tools" runs the bounded
	// tool-calling loop.
	Mode          string `mapstructure:"mode"`
	MemoryWindow  int    `mapstructure:"memory_window"`
	MaxIterations int    `mapstructure:"max_iterations"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// NormalizeDatabaseURL accepts a JDBC-style connection URL and strips its
// JDBC prefix so lib/pq can consume it.
func NormalizeDatabaseURL(dbURL string) string {
	if strings.HasPrefix(dbURL, "jdbc:postgresql://") {
		return strings.Replace(dbURL, "jdbc:postgresql://", "postgresql://", 1)
	}
	return dbURL
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("redis.url", "redis://localhost:6379")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 1000)
	v.SetDefault("openai.temperature", 0.3)
	v.SetDefault("agent.mode", "pipeline")
	v.SetDefault("agent.memory_window", 10)
	v.SetDefault("agent.max_iterations", 5)
	v.SetDefault("log.level", "info")

	// Enable environment variable support
	v.AutomaticEnv()

	// Read the config file when present; environment variables alone are
	// enough to run.
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Environment variables take precedence over the file.
	if host := v.GetString("HOST"); host != "" {
		config.Server.Host = host
	}
	if port := v.GetInt("PORT"); port != 0 {
		config.Server.Port = port
	}
	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
	if redisURL := v.GetString("REDIS_URL"); redisURL != "" {
		config.Redis.URL = redisURL
	}
	if apiKey := v.GetString("OPENAI_API_KEY"); apiKey != "" {
		config.OpenAI.APIKey = apiKey
	}
	if level := v.GetString("LOG_LEVEL"); level != "" {
		config.Log.Level = strings.ToLower(level)
	}

	config.Database.URL = NormalizeDatabaseURL(config.Database.URL)

	return &config, nil
}
