package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	GeminiAPIKey  string
	VaultPassword string
	SessionSecret string
	HTTPPort      string
	DataDir       string
	DefaultPrompt string
	CooldownMS    int
	LogLevel      string
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		VaultPassword: getEnv("VAULT_PASSWORD", ""),
		SessionSecret: getEnv("SESSION_SECRET", ""),
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		DataDir:       getEnv("DATA_DIR", "data"),
		DefaultPrompt: getEnv("DEFAULT_PROMPT", "Generate a realistic, high-quality food photo. Use soft natural light. No text."),
		CooldownMS:    getEnvAsInt("COOLDOWN_MS", 5000),
		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
	}

	if AppConfig.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable is required")
	}

	if AppConfig.SessionSecret == "" {
		log.Fatal("SESSION_SECRET environment variable is required")
	}

	// A missing VAULT_PASSWORD is not fatal: the login handler reports it
	// per-request as a server misconfiguration instead.
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
