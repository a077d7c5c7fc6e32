package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`

	JWTSecret   string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string `mapstructure:"jwt_audience" yaml:"jwt_audience"`

	// StatsInterval is the cadence of the community stats broadcast.
	StatsInterval time.Duration `mapstructure:"stats_interval" yaml:"stats_interval"`

	// Assistant settings. The API key is expected to come from the
	// environment (VIBELINK_GEMINI_API_KEY) rather than the config file.
	GeminiAPIKey     string        `mapstructure:"gemini_api_key" yaml:"gemini_api_key"`
	GeminiModel      string        `mapstructure:"gemini_model" yaml:"gemini_model"`
	AssistantTimeout time.Duration `mapstructure:"assistant_timeout" yaml:"assistant_timeout"`

	// AssistantPerMinute caps assistant calls per connection per minute.
	// Zero disables the cap.
	AssistantPerMinute int `mapstructure:"assistant_per_minute" yaml:"assistant_per_minute"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:               ":5000",
		ReadHeaderTimeout:  5 * time.Second,
		ShutdownTimeout:    5 * time.Second,
		DatabasePath:       "vibelink.db",
		LogLevel:           "info",
		JWTIssuer:          "vibelink",
		JWTAudience:        "vibelink-clients",
		StatsInterval:      10 * time.Second,
		GeminiModel:        "gemini-1.5-flash-latest",
		AssistantTimeout:   15 * time.Second,
		AssistantPerMinute: 6,
	}
}
