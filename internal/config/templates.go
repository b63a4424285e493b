package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Chart Advisor Configuration

[ai]
# Model used for chart image analysis
chart_model = "gemini-2.5-flash"
# Model used for voice conversations
chat_model = "gemini-2.5-flash"
# Model used for speech synthesis
speech_model = "gemini-2.5-flash-preview-tts"
# API endpoint base URL
endpoint = "https://generativelanguage.googleapis.com/v1beta"
# Request timeout
timeout = "60s"
# Retry attempts for transient failures
retry_attempts = 3
# Initial retry delay
retry_delay = "500ms"
# Retry backoff factor
retry_factor = 2.0

[image]
# Longest edge after downscaling, in pixels
max_edge = 800
# JPEG re-encode quality (1-100)
jpeg_quality = 80
# Reject input images larger than this, in KB
max_size_kb = 1024

[voice]
# Dialect persona: sudanese, saudi, syrian, algerian, tunisian
dialect = "sudanese"
# Silence after a final transcript before dispatch
final_silence = "1500ms"
# Silence after an interim transcript before dispatch
interim_silence = "2500ms"
# Playback sample rate in Hz
sample_rate = 24000
# Maximum conversation turns per session (0 = unlimited)
max_turns = 0

[ui]
# Enable colored output
color_enabled = true
# Date format
date_format = "02-Jan-2006"
# Time format
time_format = "15:04:05"
# Gradient theme: midnight, emerald, ember, ocean
theme = "midnight"
# Backdrop blur radius (0-40)
blur_radius = 12

[access]
# Entry passcode
passcode = "124568"
`

const credentialsTemplate = `# Chart Advisor Credentials
# WARNING: Keep this file secure! Do not commit to version control.

[gemini]
api_key = ""
`

func createTemplateConfig(configDir, name string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name+".toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return fmt.Errorf("config file not found, created template at %s", path)
}

func createTemplateCredentials(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "credentials.toml")
	// Use restricted permissions for credentials file
	if err := os.WriteFile(path, []byte(credentialsTemplate), 0600); err != nil {
		return fmt.Errorf("writing credentials template: %w", err)
	}

	return fmt.Errorf("credentials file not found, created template at %s", path)
}
