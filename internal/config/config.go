package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

type Config struct {
	Mode Mode

	Port string

	GCPProjectID string
	GCPLocation  string
	ModelName    string

	StorageBackend string // "memory", "redis" or "firestore"
	UseMockLLM     bool   // true = use mock even on GCP

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Orchestration knobs.
	MaxRetries        int
	MemoryMaxMessages int
	RunTimeout        time.Duration
	LLMTimeout        time.Duration
	CapabilityTimeout time.Duration

	// Optional YAML file overriding the built-in prompt templates.
	PromptsPath string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "TRUE"
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// Load reads all env vars and builds the config.
func Load() *Config {
	modeStr := getEnv("QUAYSIDE_MODE", "local")
	var mode Mode
	switch modeStr {
	case "gcp":
		mode = ModeGCP
	default:
		mode = ModeLocal
	}

	cfg := &Config{
		Mode: mode,

		Port: getEnv("QUAYSIDE_PORT", "8080"),

		GCPProjectID: getEnv("QUAYSIDE_GCP_PROJECT", ""),
		GCPLocation:  getEnv("QUAYSIDE_GCP_LOCATION", "us-central1"),
		ModelName:    getEnv("QUAYSIDE_MODEL_NAME", "gemini-2.5-flash"),

		StorageBackend: getEnv("QUAYSIDE_STORAGE_BACKEND", "memory"),
		UseMockLLM:     getBoolEnv("QUAYSIDE_USE_MOCK_LLM", mode == ModeLocal),

		RedisAddr:     getEnv("QUAYSIDE_REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("QUAYSIDE_REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("QUAYSIDE_REDIS_DB", 0),

		MaxRetries:        getIntEnv("QUAYSIDE_MAX_RETRIES", 3),
		MemoryMaxMessages: getIntEnv("QUAYSIDE_MEMORY_MAX_MESSAGES", 20),
		RunTimeout:        getDurationEnv("QUAYSIDE_RUN_TIMEOUT", 120*time.Second),
		LLMTimeout:        getDurationEnv("QUAYSIDE_LLM_TIMEOUT", 30*time.Second),
		CapabilityTimeout: getDurationEnv("QUAYSIDE_CAPABILITY_TIMEOUT", 30*time.Second),

		PromptsPath: getEnv("QUAYSIDE_PROMPTS_PATH", ""),
	}

	// Minimal validation in GCP mode.
	if cfg.Mode == ModeGCP && cfg.GCPProjectID == "" {
		log.Fatal("QUAYSIDE_GCP_PROJECT must be set in gcp mode")
	}

	return cfg
}
