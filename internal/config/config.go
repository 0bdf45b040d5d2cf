package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides (FSORT_CLASSIFIER_PROVIDER, ...).
const EnvPrefix = "FSORT"

// Config represents the complete fsort configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Classifier ClassifierConfig `json:"classifier" mapstructure:"classifier"`
	Resolution ResolutionConfig `json:"resolution" mapstructure:"resolution"`
	Prompt     PromptConfig     `json:"prompt" mapstructure:"prompt"`
	Storage    StorageConfig    `json:"storage" mapstructure:"storage"`
	Logging    LoggingConfig    `json:"logging" mapstructure:"logging"`
	Watch      WatchConfig      `json:"watch" mapstructure:"watch"`
}

// ClassifierConfig selects and configures the language-model backend
type ClassifierConfig struct {
	Provider          string `json:"provider" mapstructure:"provider"` // openai, anthropic, ollama, custom
	Model             string `json:"model" mapstructure:"model"`
	BaseURL           string `json:"baseUrl" mapstructure:"baseUrl"`
	APIKey            string `json:"apiKey,omitempty" mapstructure:"apiKey"`
	MaxTokens         int    `json:"maxTokens" mapstructure:"maxTokens"`
	RequestsPerMinute int    `json:"requestsPerMinute" mapstructure:"requestsPerMinute"`
}

// ResolutionConfig contains retry and timeout policy for classifier calls
type ResolutionConfig struct {
	MaxAttempts          int  `json:"maxAttempts" mapstructure:"maxAttempts"`
	BaseDelayMs          int  `json:"baseDelayMs" mapstructure:"baseDelayMs"`
	MaxDelayMs           int  `json:"maxDelayMs" mapstructure:"maxDelayMs"`
	LocalTimeoutSeconds  int  `json:"localTimeoutSeconds" mapstructure:"localTimeoutSeconds"`
	RemoteTimeoutSeconds int  `json:"remoteTimeoutSeconds" mapstructure:"remoteTimeoutSeconds"`
	EnforceWhitelist     bool `json:"enforceWhitelist" mapstructure:"enforceWhitelist"`
}

// PromptConfig contains prompt context settings
type PromptConfig struct {
	Language         string `json:"language" mapstructure:"language"`
	ConsistencyHints bool   `json:"consistencyHints" mapstructure:"consistencyHints"`
	MaxHints         int    `json:"maxHints" mapstructure:"maxHints"`
	Whitelist        string `json:"whitelist" mapstructure:"whitelist"`
	PromptLogging    bool   `json:"promptLogging" mapstructure:"promptLogging"`
}

// StorageConfig selects the taxonomy store backend
type StorageConfig struct {
	Backend string `json:"backend" mapstructure:"backend"` // sqlite, memory
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `json:"level" mapstructure:"level"`
	File       bool   `json:"file" mapstructure:"file"`
	MaxSize    string `json:"maxSize" mapstructure:"maxSize"` // e.g. "10MB"; empty disables rotation
	MaxBackups int    `json:"maxBackups" mapstructure:"maxBackups"`
}

// WatchConfig contains filesystem watch settings
type WatchConfig struct {
	DebounceMs int `json:"debounceMs" mapstructure:"debounceMs"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Classifier: ClassifierConfig{
			Provider:          "ollama",
			Model:             "llama3.2",
			MaxTokens:         64,
			RequestsPerMinute: 60,
		},
		Resolution: ResolutionConfig{
			MaxAttempts:          3,
			BaseDelayMs:          2000,
			MaxDelayMs:           30000,
			LocalTimeoutSeconds:  60,
			RemoteTimeoutSeconds: 10,
		},
		Prompt: PromptConfig{
			Language:         "en",
			ConsistencyHints: true,
			MaxHints:         5,
		},
		Storage: StorageConfig{
			Backend: "sqlite",
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       true,
			MaxSize:    "10MB",
			MaxBackups: 3,
		},
		Watch: WatchConfig{
			DebounceMs: 500,
		},
	}
}

// LoadConfig loads configuration from <dataDir>/config.json, applying
// FSORT_* environment overrides on top of the file and defaults.
func LoadConfig(dataDir string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(dataDir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// camelCase keys read better with an underscore in the env name
	_ = v.BindEnv("classifier.apiKey", "FSORT_CLASSIFIER_API_KEY")
	_ = v.BindEnv("classifier.baseUrl", "FSORT_CLASSIFIER_BASE_URL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)

	v.SetDefault("classifier.provider", d.Classifier.Provider)
	v.SetDefault("classifier.model", d.Classifier.Model)
	v.SetDefault("classifier.baseUrl", d.Classifier.BaseURL)
	v.SetDefault("classifier.apiKey", d.Classifier.APIKey)
	v.SetDefault("classifier.maxTokens", d.Classifier.MaxTokens)
	v.SetDefault("classifier.requestsPerMinute", d.Classifier.RequestsPerMinute)

	v.SetDefault("resolution.maxAttempts", d.Resolution.MaxAttempts)
	v.SetDefault("resolution.baseDelayMs", d.Resolution.BaseDelayMs)
	v.SetDefault("resolution.maxDelayMs", d.Resolution.MaxDelayMs)
	v.SetDefault("resolution.localTimeoutSeconds", d.Resolution.LocalTimeoutSeconds)
	v.SetDefault("resolution.remoteTimeoutSeconds", d.Resolution.RemoteTimeoutSeconds)
	v.SetDefault("resolution.enforceWhitelist", d.Resolution.EnforceWhitelist)

	v.SetDefault("prompt.language", d.Prompt.Language)
	v.SetDefault("prompt.consistencyHints", d.Prompt.ConsistencyHints)
	v.SetDefault("prompt.maxHints", d.Prompt.MaxHints)
	v.SetDefault("prompt.whitelist", d.Prompt.Whitelist)
	v.SetDefault("prompt.promptLogging", d.Prompt.PromptLogging)

	v.SetDefault("storage.backend", d.Storage.Backend)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.maxSize", d.Logging.MaxSize)
	v.SetDefault("logging.maxBackups", d.Logging.MaxBackups)

	v.SetDefault("watch.debounceMs", d.Watch.DebounceMs)
}

// Save writes the configuration to <dataDir>/config.json
func (c *Config) Save(dataDir string) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dataDir, "config.json"), data, 0600)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Classifier.Provider {
	case "openai", "anthropic", "ollama", "custom":
	default:
		return &ConfigError{Field: "classifier.provider", Message: "unknown provider " + c.Classifier.Provider}
	}
	if c.Classifier.Provider == "custom" && c.Classifier.BaseURL == "" {
		return &ConfigError{Field: "classifier.baseUrl", Message: "required for custom provider"}
	}
	if c.Resolution.MaxAttempts < 1 {
		return &ConfigError{Field: "resolution.maxAttempts", Message: "must be at least 1"}
	}
	if c.Resolution.BaseDelayMs < 0 || c.Resolution.MaxDelayMs < c.Resolution.BaseDelayMs {
		return &ConfigError{Field: "resolution.maxDelayMs", Message: "must be >= baseDelayMs >= 0"}
	}
	if c.Resolution.LocalTimeoutSeconds <= 0 || c.Resolution.RemoteTimeoutSeconds <= 0 {
		return &ConfigError{Field: "resolution", Message: "timeouts must be positive"}
	}
	if c.Prompt.MaxHints < 0 {
		return &ConfigError{Field: "prompt.maxHints", Message: "must not be negative"}
	}
	switch c.Storage.Backend {
	case "sqlite", "memory":
	default:
		return &ConfigError{Field: "storage.backend", Message: "unknown backend " + c.Storage.Backend}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
