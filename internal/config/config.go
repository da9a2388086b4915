// /internal/config/config.go
package config

import (
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
}

type Config struct {
	DiscordToken string `env:"DISCORD_BOT_TOKEN"`
	StoragePath  string `env:"STORAGE_PATH" envDefault:"datastore.json"`

	LLMProvider string `env:"LLM_PROVIDER" envDefault:"glm"`

	GLMAPIKey  string `env:"GLM_API_KEY"`
	GLMBaseURL string `env:"GLM_BASE_URL"`
	GLMModel   string `env:"GLM_MODEL"`

	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OpenAIModel   string `env:"OPENAI_MODEL"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL"`

	// PriorityGuildID biases roaming toward one guild when set.
	PriorityGuildID string `env:"PRIORITY_GUILD_ID"`

	// BlockedChannelIDs are never sent to, ever.
	BlockedChannelIDs []string `env:"BLOCKED_CHANNEL_IDS" envSeparator:","`

	DefaultLanguage string `env:"DEFAULT_LANGUAGE" envDefault:"english"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("config parse error: %v", err)
	}
	if cfg.DiscordToken == "" {
		log.Fatal("DISCORD_BOT_TOKEN is not set")
	}
	return cfg
}

// IsBlockedChannel reports whether channelID is on the deny list.
func (c *Config) IsBlockedChannel(channelID string) bool {
	for _, id := range c.BlockedChannelIDs {
		if id == channelID {
			return true
		}
	}
	return false
}
