// Environment-based configuration for the Map Action classification backend.
//
// A .env file is loaded by main before Load runs, so every value here can be
// provided either through the process environment or through .env.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Mode        string
	ListenAddr  string
	ImageServer ImageServerConfig
	GenAI       GenAIConfig
	EarthObs    EarthObsConfig
	Redis       RedisConfig
	Storage     StorageConfig
	Postgres    PostgresConfig
	Chat        ChatConfig
}

type ImageServerConfig struct {
	BaseURL string
}

type GenAIConfig struct {
	APIKey      string
	TextModel   string
	VisionModel string
}

type EarthObsConfig struct {
	BaseURL       string
	BufferMeters  int
	MaxCloudCover int
}

type RedisConfig struct {
	URL       string
	TaskQueue string
	ResultTTL time.Duration
}

type StorageConfig struct {
	Bucket       string
	Region       string
	Endpoint     string
	AccessKeyID  string
	SecretKey    string
	UsePathStyle bool
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

type ChatConfig struct {
	AllowedOrigins []string
	ImpactTTL      time.Duration
}

func Load() Config {
	return Config{
		Mode:       getenv("MODE", "all"),
		ListenAddr: getenv("LISTEN_ADDR", ":8001"),
		ImageServer: ImageServerConfig{
			BaseURL: getenv("IMAGE_SERVER_URL", "http://139.144.63.238/uploads/uploads"),
		},
		GenAI: GenAIConfig{
			APIKey:      os.Getenv("AI_API_KEY"),
			TextModel:   getenv("AI_TEXT_MODEL", "gemini-2.0-flash"),
			VisionModel: getenv("AI_VISION_MODEL", "gemini-2.0-flash"),
		},
		EarthObs: EarthObsConfig{
			BaseURL:       getenv("EARTHOBS_URL", "http://localhost:8085"),
			BufferMeters:  getenvInt("EARTHOBS_BUFFER_METERS", 500),
			MaxCloudCover: getenvInt("EARTHOBS_MAX_CLOUD_COVER", 20),
		},
		Redis: RedisConfig{
			URL:       getenv("REDIS_URL", "redis://localhost:6379/0"),
			TaskQueue: getenv("TASK_QUEUE_NAME", "mapaction:tasks"),
			ResultTTL: getenvDuration("TASK_RESULT_TTL", 10*time.Minute),
		},
		Storage: StorageConfig{
			Bucket:       os.Getenv("S3_BUCKET_NAME"),
			Region:       getenv("AWS_REGION", "us-east-1"),
			Endpoint:     os.Getenv("S3_ENDPOINT"),
			AccessKeyID:  os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretKey:    os.Getenv("AWS_SECRET_ACCESS_KEY"),
			UsePathStyle: getenvBool("S3_USE_PATH_STYLE", false),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("POSTGRES_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
		Chat: ChatConfig{
			AllowedOrigins: getenvList("CHAT_ALLOWED_ORIGINS", []string{
				"http://localhost:3000",
				"http://127.0.0.1",
				"https://app.map-action.com",
				"http://app.map-action.com",
			}),
			ImpactTTL: getenvDuration("IMPACT_CACHE_TTL", time.Hour),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func getenvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
