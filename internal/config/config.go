/*
Package config reads the service settings from the environment. A .env file in
the working directory is loaded first, so local development does not need to
export anything.
*/
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/viper"
)

// LLM providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

var ErrConfiguration = errors.New("configuration error")

var defaults = map[string]any{
	"port":          8080,
	"llm_provider":  ProviderOpenAI,
	"openai_model":  "gpt-4o",
	"gemini_model":  "gemini-2.5-flash",
	"model_path":    "rf_model.json",
	"scaler_path":   "scaler.json",
	"llm_timeout":   30 * time.Second,
	"llm_retries":   1,
	"llm_backoff":   time.Second,
	"log_level":     "info",
	"log_pretty":    false,
	"cors_origins":  "https://*,http://*",
	"shutdown_wait": 5 * time.Second,
}

// Config is the full service configuration.
type Config struct {
	Port         int `validate:"gt=0,lte=65535"`
	CORSOrigins  []string
	ShutdownWait time.Duration `validate:"gt=0"`

	LLM   LLMConfig
	Model ModelConfig
	Log   LogConfig
}

// LLMConfig selects and tunes the advice provider.
type LLMConfig struct {
	Provider      string `validate:"oneof=openai gemini"`
	OpenAIKey     string `validate:"required_if=Provider openai"`
	OpenAIModel   string `validate:"required"`
	OpenAIBaseURL string `validate:"omitempty,url"`
	GeminiKey     string `validate:"required_if=Provider gemini"`
	GeminiModel   string `validate:"required"`
	GeminiBaseURL string `validate:"omitempty,url"`

	Timeout time.Duration `validate:"gt=0"`
	Retries int           `validate:"gte=0,lte=3"`
	Backoff time.Duration `validate:"gte=0"`
}

// ModelConfig locates the classifier artifacts.
type ModelConfig struct {
	ModelPath  string `validate:"required"`
	ScalerPath string `validate:"required"`
}

// LogConfig controls the global logger.
type LogConfig struct {
	Level  string `validate:"oneof=trace debug info warn error"`
	Pretty bool
}

// Load reads the environment over the defaults and validates the result.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	cfg := &Config{
		Port:         v.GetInt("port"),
		CORSOrigins:  splitList(v.GetString("cors_origins")),
		ShutdownWait: v.GetDuration("shutdown_wait"),
		LLM: LLMConfig{
			Provider:      strings.ToLower(strings.TrimSpace(v.GetString("llm_provider"))),
			OpenAIKey:     v.GetString("openai_api_key"),
			OpenAIModel:   v.GetString("openai_model"),
			OpenAIBaseURL: v.GetString("openai_base_url"),
			GeminiKey:     v.GetString("gemini_api_key"),
			GeminiModel:   v.GetString("gemini_model"),
			GeminiBaseURL: v.GetString("gemini_base_url"),
			Timeout:       v.GetDuration("llm_timeout"),
			Retries:       v.GetInt("llm_retries"),
			Backoff:       v.GetDuration("llm_backoff"),
		},
		Model: ModelConfig{
			ModelPath:  v.GetString("model_path"),
			ScalerPath: v.GetString("scaler_path"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log_level")),
			Pretty: v.GetBool("log_pretty"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
