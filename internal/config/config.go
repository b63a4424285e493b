// Package config provides configuration management for the chart advisor.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	AI          AIConfig     `mapstructure:"ai"`
	Image       ImageConfig  `mapstructure:"image"`
	Voice       VoiceConfig  `mapstructure:"voice"`
	UI          UIConfig     `mapstructure:"ui"`
	Access      AccessConfig `mapstructure:"access"`
	Credentials Credentials  `mapstructure:"-"` // Loaded separately

	// Dir is the directory the config was loaded from. The database and
	// audio output live alongside the config files.
	Dir string `mapstructure:"-"`
}

// AIConfig holds inference-related configuration.
type AIConfig struct {
	ChartModel    string        `mapstructure:"chart_model"`
	ChatModel     string        `mapstructure:"chat_model"`
	SpeechModel   string        `mapstructure:"speech_model"`
	Endpoint      string        `mapstructure:"endpoint"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	RetryFactor   float64       `mapstructure:"retry_factor"`
}

// ImageConfig holds chart image preprocessing configuration.
type ImageConfig struct {
	MaxEdge     int `mapstructure:"max_edge"`     // longest edge after downscale, pixels
	JPEGQuality int `mapstructure:"jpeg_quality"` // 1-100
	MaxSizeKB   int `mapstructure:"max_size_kb"`  // reject inputs larger than this
}

// VoiceConfig holds voice session configuration.
type VoiceConfig struct {
	Dialect        string        `mapstructure:"dialect"`
	FinalSilence   time.Duration `mapstructure:"final_silence"`
	InterimSilence time.Duration `mapstructure:"interim_silence"`
	SampleRate     int           `mapstructure:"sample_rate"`
	MaxTurns       int           `mapstructure:"max_turns"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
	TimeFormat   string `mapstructure:"time_format"`
	Theme        string `mapstructure:"theme"`
	BlurRadius   int    `mapstructure:"blur_radius"`
}

// AccessConfig holds entry-gate configuration.
type AccessConfig struct {
	Passcode string `mapstructure:"passcode"`
}

// Credentials holds API credentials.
type Credentials struct {
	Gemini GeminiCredentials `mapstructure:"gemini"`
}

// GeminiCredentials holds Gemini API credentials.
type GeminiCredentials struct {
	APIKey string `mapstructure:"api_key"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/chart-advisor"
	}
	return filepath.Join(home, ".config", "chart-advisor")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{Dir: configDir}

	// Load main config
	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	// Load credentials
	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir, name string, target interface{}) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, create template
			return createTemplateConfig(configDir, name)
		}
		return err
	}

	return v.Unmarshal(target)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ai.chart_model", "gemini-2.5-flash")
	v.SetDefault("ai.chat_model", "gemini-2.5-flash")
	v.SetDefault("ai.speech_model", "gemini-2.5-flash-preview-tts")
	v.SetDefault("ai.endpoint", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("ai.timeout", "60s")
	v.SetDefault("ai.retry_attempts", 3)
	v.SetDefault("ai.retry_delay", "500ms")
	v.SetDefault("ai.retry_factor", 2.0)

	v.SetDefault("image.max_edge", 800)
	v.SetDefault("image.jpeg_quality", 80)
	v.SetDefault("image.max_size_kb", 1024)

	v.SetDefault("voice.dialect", "sudanese")
	v.SetDefault("voice.final_silence", "1500ms")
	v.SetDefault("voice.interim_silence", "2500ms")
	v.SetDefault("voice.sample_rate", 24000)
	v.SetDefault("voice.max_turns", 0)

	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.date_format", "02-Jan-2006")
	v.SetDefault("ui.time_format", "15:04:05")
	v.SetDefault("ui.theme", "midnight")
	v.SetDefault("ui.blur_radius", 12)

	v.SetDefault("access.passcode", "124568")
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateCredentials(configDir)
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	// Gemini credentials
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Credentials.Gemini.APIKey = v
	}

	// Passcode
	if v := os.Getenv("ADVISOR_PASSCODE"); v != "" {
		cfg.Access.Passcode = v
	}

	// Endpoint (useful for proxies and tests)
	if v := os.Getenv("GEMINI_ENDPOINT"); v != "" {
		cfg.AI.Endpoint = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Image.MaxEdge <= 0 {
		return fmt.Errorf("image max_edge must be positive")
	}
	if c.Image.JPEGQuality < 1 || c.Image.JPEGQuality > 100 {
		return fmt.Errorf("image jpeg_quality must be between 1 and 100")
	}
	if c.AI.RetryAttempts < 1 {
		return fmt.Errorf("ai retry_attempts must be at least 1")
	}
	if c.AI.RetryFactor < 1.0 {
		return fmt.Errorf("ai retry_factor must be at least 1.0")
	}
	if c.Voice.FinalSilence <= 0 || c.Voice.InterimSilence <= 0 {
		return fmt.Errorf("voice silence windows must be positive")
	}
	if c.Voice.FinalSilence > c.Voice.InterimSilence {
		return fmt.Errorf("voice final_silence must not exceed interim_silence")
	}
	if !validDialect(c.Voice.Dialect) {
		return fmt.Errorf("invalid voice dialect: %s", c.Voice.Dialect)
	}
	if c.UI.BlurRadius < 0 || c.UI.BlurRadius > 40 {
		return fmt.Errorf("ui blur_radius must be between 0 and 40")
	}
	if c.Access.Passcode == "" {
		return fmt.Errorf("access passcode must not be empty")
	}
	return nil
}

func validDialect(d string) bool {
	switch d {
	case "sudanese", "saudi", "syrian", "algerian", "tunisian":
		return true
	}
	return false
}

// BaseDir returns the directory application state lives in.
func (c *Config) BaseDir() string {
	if c.Dir != "" {
		return c.Dir
	}
	return DefaultConfigDir()
}

// HasAPIKey returns true if a Gemini API key is configured.
func (c *Config) HasAPIKey() bool {
	return c.Credentials.Gemini.APIKey != ""
}
