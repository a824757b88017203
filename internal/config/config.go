package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppName       = "VoicePay"
	defaultAppEnv        = "development"
	defaultPort          = "8000"
	defaultLogLevel      = "info"
	defaultDatabasePath  = "voicepay.db"
	defaultShutdownDelay = 10 * time.Second
	defaultGeminiModel   = "gemini-1.5-flash"
	defaultWhisperModel  = "whisper-large-v3-turbo"
	defaultFrontendURL   = "http://localhost:5173"

	defaultVoiceEN = "21m00Tcm4TlvDq8ikWAM"
	defaultVoiceHI = "pNInz6obpgDQGcFmaJgB"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabasePath   string
	RedisURL       string
	FrontendURL    string
	ShutdownPeriod time.Duration

	// GeminiAPIKey enables LLM intent classification. Empty means the voice
	// endpoint reports a classification error instead of failing startup.
	GeminiAPIKey string
	GeminiModel  string

	// GroqAPIKey enables Whisper transcription.
	GroqAPIKey   string
	WhisperModel string

	// ElevenLabsAPIKey enables remote TTS. Empty silently degrades speech
	// output to the local fallback synthesizer.
	ElevenLabsAPIKey string
	VoiceIDs         map[string]string
}

// Load reads configuration values from the environment and populates a Config
// instance. A .env file in the working directory or its parents is honoured
// when present.
func Load() (Config, error) {
	for _, envFile := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	cfg := Config{
		AppName:        getEnv("APP_NAME", defaultAppName),
		AppEnv:         getEnv("APP_ENV", defaultAppEnv),
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabasePath:   getEnv("DATABASE_PATH", defaultDatabasePath),
		RedisURL:       os.Getenv("REDIS_URL"),
		FrontendURL:    getEnv("FRONTEND_URL", defaultFrontendURL),
		ShutdownPeriod: defaultShutdownDelay,

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", defaultGeminiModel),

		GroqAPIKey:   os.Getenv("GROQ_API_KEY"),
		WhisperModel: getEnv("WHISPER_MODEL", defaultWhisperModel),

		ElevenLabsAPIKey: os.Getenv("ELEVENLABS_API_KEY"),
		VoiceIDs: map[string]string{
			"en": getEnv("ELEVENLABS_VOICE_EN", defaultVoiceEN),
			"hi": getEnv("ELEVENLABS_VOICE_HI", defaultVoiceHI),
		},
	}

	if v := os.Getenv("SHUTDOWN_TIMEOUT_SECONDS"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT_SECONDS: %w", err)
		}
		cfg.ShutdownPeriod = time.Duration(seconds) * time.Second
	} else if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.ShutdownPeriod = d
	}

	if cfg.DatabasePath == "" {
		return Config{}, fmt.Errorf("DATABASE_PATH must be set")
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
