package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultSpeakerWAV is used when neither --speaker nor TTS_SPEAKER_WAV is set.
const DefaultSpeakerWAV = "reference_speaker.wav"

type Config struct {
	TTS      TTSConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Database DatabaseConfig
	Worker   WorkerConfig
	LogLevel string `env:"LOG_LEVEL" envDefault:"warn"`
}

type TTSConfig struct {
	Backend    string `env:"TTS_BACKEND" envDefault:"server"` // "server", "local" or "openai"
	ServerURL  string `env:"TTS_SERVER_URL" envDefault:"http://127.0.0.1:5002/api/tts"`
	SpeakerWAV string `env:"TTS_SPEAKER_WAV" envDefault:"reference_speaker.wav"`
	Language   string `env:"TTS_LANGUAGE" envDefault:"en"`
	Device     string `env:"TTS_DEVICE"` // empty: autodetect
	Model      string `env:"TTS_MODEL" envDefault:"tts_models/multilingual/multi-dataset/xtts_v2"`
	LocalBin   string `env:"TTS_LOCAL_BIN" envDefault:"tts"`
	Venv       string `env:"TTS_VENV" envDefault:"tts_venv"`

	OpenAIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"TTS_OPENAI_BASE_URL"`
	OpenAIModel   string `env:"TTS_OPENAI_MODEL" envDefault:"tts-1"`
	OpenAIVoice   string `env:"TTS_OPENAI_VOICE" envDefault:"alloy"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type CacheConfig struct {
	Enabled bool          `env:"TTS_CACHE_ENABLED" envDefault:"false"`
	TTL     time.Duration `env:"TTS_CACHE_TTL" envDefault:"24h"`
}

type DatabaseConfig struct {
	URL            string `env:"DATABASE_URL"`
	MaxConns       int    `env:"DB_MAX_CONNS" envDefault:"4"`
	MinConns       int    `env:"DB_MIN_CONNS" envDefault:"0"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"migrations"`
}

type WorkerConfig struct {
	Concurrency   int    `env:"TTS_WORKER_CONCURRENCY" envDefault:"1"`
	WebhookURL    string `env:"TTS_WEBHOOK_URL"`
	WebhookSecret string `env:"TTS_WEBHOOK_SECRET"`
}

// Load reads a .env file from the working directory, if present, and then
// the process environment. Variables already set are never overridden by .env.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.TTS.Backend = strings.ToLower(strings.TrimSpace(cfg.TTS.Backend))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.TTS.Backend {
	case "server", "local", "openai":
	default:
		return fmt.Errorf("invalid TTS_BACKEND %q (want server, local or openai)", c.TTS.Backend)
	}
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("invalid TTS_WORKER_CONCURRENCY: %d", c.Worker.Concurrency)
	}
	return nil
}

// CacheEnabled reports whether the Redis audio cache should be used.
func (c *Config) CacheEnabled() bool {
	return c.Cache.Enabled && c.Redis.Addr != ""
}

// HistoryEnabled reports whether runs should be recorded in Postgres.
func (c *Config) HistoryEnabled() bool {
	return c.Database.URL != ""
}
