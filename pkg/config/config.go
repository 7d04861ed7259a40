package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	JWTSecret string
	JWTExpiry time.Duration

	DatabaseDSN string

	// Scheduler settings. SchedulerLeader gates the monitor loop so that
	// exactly one instance in a deployment runs it.
	SchedulerLeader      bool
	SchedulerTick        time.Duration
	SchedulerBatchSize   int
	MonitorJitterMinutes int
	MonitorItemCap       int

	SerpAPIKey    string
	GeminiAPIKey  string
	OllamaBaseURL string
	OllamaModel   string

	GoogleProjectID     string
	FeedTopic           string
	GoogleCredentials   string
	FirebaseCredentials string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtExpiry := 24 * time.Hour
	if exp := os.Getenv("JWT_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			jwtExpiry = parsed
		}
	}

	tick := 1 * time.Minute
	if t := os.Getenv("SCHEDULER_TICK"); t != "" {
		if parsed, err := time.ParseDuration(t); err == nil {
			tick = parsed
		}
	}

	return &Config{
		Port:      getEnv("PORT", "8080"),
		JWTSecret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTExpiry: jwtExpiry,

		DatabaseDSN: getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=agentgraph port=5432 sslmode=disable"),

		SchedulerLeader:      getEnvBool("SCHEDULER_LEADER", true),
		SchedulerTick:        tick,
		SchedulerBatchSize:   getEnvInt("SCHEDULER_BATCH_SIZE", 5),
		MonitorJitterMinutes: getEnvInt("MONITOR_JITTER_MINUTES", 10),
		MonitorItemCap:       getEnvInt("MONITOR_ITEM_CAP", 5),

		SerpAPIKey:    getEnv("SERPAPI_KEY", ""),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:   getEnv("OLLAMA_MODEL", "llama3.2"),

		GoogleProjectID:     getEnv("GOOGLE_PROJECT_ID", ""),
		FeedTopic:           getEnv("FEED_TOPIC", "feed-events"),
		GoogleCredentials:   getEnv("GOOGLE_CREDENTIALS", ""),
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
