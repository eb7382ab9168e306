package config

import (
	"fmt"
	"slices"
	"time"
)

const (
	EnvGeminiAPIKey       = "HAND2VOICE_GEMINI_API_KEY"
	EnvGeminiAPIKeyLegacy = "GEMINI_API_KEY"
	EnvGeminiEndpoint     = "HAND2VOICE_GEMINI_ENDPOINT"

	EnvVisionModel           = "HAND2VOICE_VISION_MODEL"
	EnvVisionTimeout         = "HAND2VOICE_VISION_TIMEOUT"
	EnvVisionHazardRetries   = "HAND2VOICE_VISION_HAZARD_RETRIES"
	EnvVisionMaxActionWords  = "HAND2VOICE_VISION_MAX_ACTION_WORDS"
	EnvVisionArchiveCaptures = "HAND2VOICE_VISION_ARCHIVE_CAPTURES"

	EnvSpeechProvider = "HAND2VOICE_SPEECH_PROVIDER"
	EnvSpeechModel    = "HAND2VOICE_SPEECH_MODEL"
	EnvSpeechLanguage = "HAND2VOICE_SPEECH_LANGUAGE"
	EnvSpeechBaseURL  = "HAND2VOICE_SPEECH_BASE_URL"
	EnvSpeechToken    = "HAND2VOICE_SPEECH_TOKEN"
	EnvSpeechTimeout  = "HAND2VOICE_SPEECH_TIMEOUT"

	SpeechProviderGemini  = "gemini"
	SpeechProviderWhisper = "whisper"

	// PlaceholderAPIKey is the value shipped in sample env files.
	PlaceholderAPIKey = "your_api_key_here"
)

// GeminiConfig holds credentials for the Google Generative Language API.
type GeminiConfig struct {
	APIKey   string `toml:"api_key"`
	Endpoint string `toml:"endpoint"`
}

func (c *GeminiConfig) Finalize() error {
	envString(&c.APIKey, EnvGeminiAPIKeyLegacy)
	envString(&c.APIKey, EnvGeminiAPIKey)
	envString(&c.Endpoint, EnvGeminiEndpoint)
	return nil
}

func (c *GeminiConfig) Merge(overlay *GeminiConfig) {
	mergeString(&c.APIKey, overlay.APIKey)
	mergeString(&c.Endpoint, overlay.Endpoint)
}

// HasKey reports whether a usable, non-placeholder API key is configured.
func (c *GeminiConfig) HasKey() bool {
	return c.APIKey != "" && c.APIKey != PlaceholderAPIKey
}

// VisionConfig controls image analysis. HazardRetries is a pointer so an
// explicit zero disables re-queries.
type VisionConfig struct {
	Model           string `toml:"model"`
	Timeout         string `toml:"timeout"`
	HazardRetries   *int   `toml:"hazard_retries"`
	MaxActionWords  int    `toml:"max_action_words"`
	ArchiveCaptures bool   `toml:"archive_captures"`
}

// TimeoutDuration returns the per-call model timeout; zero means none.
func (c *VisionConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Retries returns the number of hazard re-queries after a malformed report.
func (c *VisionConfig) Retries() int {
	if c.HazardRetries == nil {
		return 0
	}
	return *c.HazardRetries
}

func (c *VisionConfig) Finalize() error {
	if c.Model == "" {
		c.Model = "gemini-2.5-flash"
	}
	if c.HazardRetries == nil {
		retries := 1
		c.HazardRetries = &retries
	}
	if c.MaxActionWords == 0 {
		c.MaxActionWords = 5
	}

	envString(&c.Model, EnvVisionModel)
	envString(&c.Timeout, EnvVisionTimeout)
	retries := *c.HazardRetries
	envInt(&retries, EnvVisionHazardRetries)
	c.HazardRetries = &retries
	envInt(&c.MaxActionWords, EnvVisionMaxActionWords)
	envBool(&c.ArchiveCaptures, EnvVisionArchiveCaptures)

	if c.Timeout != "" {
		if d, err := time.ParseDuration(c.Timeout); err != nil || d < 0 {
			return fmt.Errorf("invalid timeout %q", c.Timeout)
		}
	}
	if *c.HazardRetries < 0 {
		return fmt.Errorf("hazard_retries must not be negative")
	}
	if c.MaxActionWords < 1 {
		return fmt.Errorf("max_action_words must be positive")
	}
	return nil
}

func (c *VisionConfig) Merge(overlay *VisionConfig) {
	mergeString(&c.Model, overlay.Model)
	mergeString(&c.Timeout, overlay.Timeout)
	if overlay.HazardRetries != nil {
		retries := *overlay.HazardRetries
		c.HazardRetries = &retries
	}
	mergeInt(&c.MaxActionWords, overlay.MaxActionWords)
	if overlay.ArchiveCaptures {
		c.ArchiveCaptures = true
	}
}

// SpeechConfig selects and parameterizes the transcription provider.
type SpeechConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	Language string `toml:"language"`
	BaseURL  string `toml:"base_url"`
	Token    string `toml:"token"`
	Timeout  string `toml:"timeout"`
}

func (c *SpeechConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

func (c *SpeechConfig) Finalize() error {
	envString(&c.Provider, EnvSpeechProvider)
	envString(&c.Model, EnvSpeechModel)
	envString(&c.Language, EnvSpeechLanguage)
	envString(&c.BaseURL, EnvSpeechBaseURL)
	envString(&c.Token, EnvSpeechToken)
	envString(&c.Timeout, EnvSpeechTimeout)

	if c.Provider == "" {
		c.Provider = SpeechProviderGemini
	}
	if c.Language == "" {
		c.Language = "en"
	}
	if c.Model == "" {
		switch c.Provider {
		case SpeechProviderWhisper:
			c.Model = "whisper-1"
		default:
			c.Model = "gemini-2.5-flash"
		}
	}
	if c.BaseURL == "" && c.Provider == SpeechProviderWhisper {
		c.BaseURL = "http://localhost:9000"
	}

	if !slices.Contains([]string{SpeechProviderGemini, SpeechProviderWhisper}, c.Provider) {
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.Timeout != "" {
		if d, err := time.ParseDuration(c.Timeout); err != nil || d < 0 {
			return fmt.Errorf("invalid timeout %q", c.Timeout)
		}
	}
	return nil
}

func (c *SpeechConfig) Merge(overlay *SpeechConfig) {
	mergeString(&c.Provider, overlay.Provider)
	mergeString(&c.Model, overlay.Model)
	mergeString(&c.Language, overlay.Language)
	mergeString(&c.BaseURL, overlay.BaseURL)
	mergeString(&c.Token, overlay.Token)
	mergeString(&c.Timeout, overlay.Timeout)
}
