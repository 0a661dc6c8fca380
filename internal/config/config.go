package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every setting the service needs.
type Config struct {
	Server   ServerConfig
	AI       AIConfig
	Engine   EngineConfig
	Callback CallbackConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	engine, err := loadEngineConfig()
	if err != nil {
		return nil, err
	}

	cb, err := loadCallbackConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Engine: engine, Callback: cb}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr   string
	APIKey string // master key accepted in x-api-key
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	addr := port
	if !strings.Contains(port, ":") {
		if strings.Contains(port, " ") {
			return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
		}
		addr = ":" + port
	}

	return ServerConfig{
		Addr:   addr,
		APIKey: getEnvOrDefault("HONEYPOT_API_KEY", "sentinel-master-key"),
	}, nil
}

// AIConfig describes the upstream chat model.
type AIConfig struct {
	APIKey    string
	AccessKey string
	SecretKey string
	Model     string
	BaseURL   string
	Region    string
	MaxTokens *int

	// DetectorTemperature stays at zero for deterministic classification;
	// PersonaTemperature is higher so replies do not loop.
	DetectorTemperature float32
	PersonaTemperature  float32
}

// Enabled reports whether the required credentials were provided.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds a model instance with the given sampling temperature.
// The detector and the persona generator use separate instances so the
// detector can sample deterministically.
func (c AIConfig) NewChatModel(ctx context.Context, temperature float32) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: set ARK_API_KEY + ARK_MODEL or AK/SK")
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: &temperature,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}
	if maxTokens == nil {
		// Bounded output: the detector returns one JSON object, the persona a
		// few sentences.
		defaultTokens := 1024
		maxTokens = &defaultTokens
	}

	detectorTemp, err := parseFloat32Env("AI_DETECTOR_TEMPERATURE", 0)
	if err != nil {
		return AIConfig{}, err
	}

	personaTemp, err := parseFloat32Env("AI_PERSONA_TEMPERATURE", 0.9)
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:              strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:           strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:           strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:               strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:             getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:              getEnvOrDefault("ARK_REGION", "cn-beijing"),
		MaxTokens:           maxTokens,
		DetectorTemperature: detectorTemp,
		PersonaTemperature:  personaTemp,
	}, nil
}

// EngineConfig holds the conversation engine constants.
type EngineConfig struct {
	// Outbound LLM rate limit: at most RateLimitCapacity calls per window,
	// across all sessions.
	RateLimitCapacity int
	RateLimitWindow   time.Duration

	// Simulated typing latency for reply emission.
	TypingDelayPerChar time.Duration
	TypingDelayMax     time.Duration

	// Assumed scammer operating cost, USD per second of wasted time.
	CostPerSecondUSD float64

	// Auto-callback trigger: scam confirmed plus either this many indicators
	// or this many messages.
	CallbackMinIndicators int
	CallbackMinMessages   int
}

func loadEngineConfig() (EngineConfig, error) {
	capacity, err := parseIntEnv("ENGINE_RATE_LIMIT_CAPACITY", 30)
	if err != nil {
		return EngineConfig{}, err
	}

	windowSec, err := parseIntEnv("ENGINE_RATE_LIMIT_WINDOW_SEC", 60)
	if err != nil {
		return EngineConfig{}, err
	}

	perCharMs, err := parseIntEnv("ENGINE_TYPING_DELAY_PER_CHAR_MS", 30)
	if err != nil {
		return EngineConfig{}, err
	}

	maxDelayMs, err := parseIntEnv("ENGINE_TYPING_DELAY_MAX_MS", 3000)
	if err != nil {
		return EngineConfig{}, err
	}

	cost, err := parseFloat64Env("ENGINE_SCAMMER_COST_PER_SEC_USD", 0.01)
	if err != nil {
		return EngineConfig{}, err
	}

	minIndicators, err := parseIntEnv("ENGINE_CALLBACK_MIN_INDICATORS", 3)
	if err != nil {
		return EngineConfig{}, err
	}

	minMessages, err := parseIntEnv("ENGINE_CALLBACK_MIN_MESSAGES", 5)
	if err != nil {
		return EngineConfig{}, err
	}

	return EngineConfig{
		RateLimitCapacity:     capacity,
		RateLimitWindow:       time.Duration(windowSec) * time.Second,
		TypingDelayPerChar:    time.Duration(perCharMs) * time.Millisecond,
		TypingDelayMax:        time.Duration(maxDelayMs) * time.Millisecond,
		CostPerSecondUSD:      cost,
		CallbackMinIndicators: minIndicators,
		CallbackMinMessages:   minMessages,
	}, nil
}

// CallbackConfig describes the external final-result collaborator.
type CallbackConfig struct {
	URL     string
	Timeout time.Duration
	Enabled bool
}

func loadCallbackConfig() (CallbackConfig, error) {
	timeoutSec, err := parseIntEnv("CALLBACK_TIMEOUT_SEC", 10)
	if err != nil {
		return CallbackConfig{}, err
	}

	url := strings.TrimSpace(os.Getenv("CALLBACK_URL"))
	return CallbackConfig{
		URL:     url,
		Timeout: time.Duration(timeoutSec) * time.Second,
		Enabled: url != "",
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseFloat64Env(key string, defaultValue float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseFloat32Env(key string, defaultValue float32) (float32, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return float32(val), nil
}
