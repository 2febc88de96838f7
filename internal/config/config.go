package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          int
	LogLevel      string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	HistoricoPath string
	DatabaseURL   string
	NatsURL       string
	NatsToken     string
}

func Load() Config {
	// Local development keeps secrets in a .env file; absence is fine.
	_ = godotenv.Load()

	return Config{
		Port:          envInt("SIFGPT_PORT", 8080),
		LogLevel:      envStr("LOG_LEVEL", "info"),
		OpenAIAPIKey:  envStr("OPENAI_API_KEY", ""),
		OpenAIModel:   envStr("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: envStr("OPENAI_BASE_URL", ""),
		HistoricoPath: envStr("HISTORICO_PATH", "data/historico.xlsx"),
		DatabaseURL:   envStr("DATABASE_URL", ""),
		NatsURL:       envStr("NATS_URL", ""),
		NatsToken:     envStr("NATS_TOKEN", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
