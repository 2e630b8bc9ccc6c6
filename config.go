package studify

import (
	"github.com/spf13/viper"
)

// Config is the application configuration, loaded from config.yaml with
// STUDIFY_-prefixed environment overrides.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Session  SessionConfig  `mapstructure:"session"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // "debug" or "release"
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"` // sqlite file path
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"` // empty = api.openai.com
	Model   string `mapstructure:"model"`
}

type SessionConfig struct {
	Secret string `mapstructure:"secret"`
}

type LogConfig struct {
	File           string `mapstructure:"file"`
	CompletionLogs bool   `mapstructure:"completion_logs"` // per-run LLM interaction logs under log/
}

// LoadConfig reads config.yaml from path and applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("STUDIFY")
	viper.AutomaticEnv()

	viper.BindEnv("server.port", "STUDIFY_PORT")
	viper.BindEnv("server.mode", "STUDIFY_MODE")
	viper.BindEnv("database.path", "STUDIFY_DB_PATH")
	viper.BindEnv("openai.api_key", "OPENAI_API_KEY")
	viper.BindEnv("openai.base_url", "OPENAI_BASE_URL")
	viper.BindEnv("openai.model", "OPENAI_MODEL")
	viper.BindEnv("session.secret", "STUDIFY_SESSION_SECRET")

	viper.SetDefault("server.port", "8180")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.path", "./studify.db")
	viper.SetDefault("openai.model", "gpt-4o")
	viper.SetDefault("session.secret", "studify-dev-secret")
	viper.SetDefault("log.file", "logs/studify.log")

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional; env vars and defaults cover a dev setup.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
