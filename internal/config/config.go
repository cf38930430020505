package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string

	RedisURL   string
	SessionTTL time.Duration

	QuestionBankPath string
	ModelPath        string

	// Battery parameters.
	VocabQuestionCount  int
	DigitSequenceLength int
	MinTimeMinutes      float64
	MaxTimeMinutes      float64

	Events EventConfig
}

func LoadConfig() (*Config, error) {
	// A missing .env file is fine; environment variables still apply.
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		RedisURL:   getEnv("REDIS_URL", "redis://localhost:6379"),
		SessionTTL: getEnvDuration("SESSION_TTL", 2*time.Hour),

		QuestionBankPath: getEnv("QUESTION_BANK_PATH", "questions_vocab.json"),
		ModelPath:        getEnv("MODEL_PATH", "model.json"),

		VocabQuestionCount:  getEnvInt("VOCAB_QUESTION_COUNT", 5),
		DigitSequenceLength: getEnvInt("DIGIT_SEQUENCE_LENGTH", 6),
		MinTimeMinutes:      getEnvFloat("MIN_TIME_MINUTES", 3),
		MaxTimeMinutes:      getEnvFloat("MAX_TIME_MINUTES", 30),

		Events: EventConfig{
			Enabled:        getEnv("EVENTS_ENABLED", "false") == "true",
			Publisher:      getEnv("EVENTS_PUBLISHER", "kafka"),
			KafkaBrokers:   getEnv("KAFKA_BROKERS", "localhost:9092"),
			ScreeningTopic: getEnv("SCREENING_TOPIC", "screening-events"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// SessionTimeLimit is the hard cap after which section submissions lock.
func (c *Config) SessionTimeLimit() time.Duration {
	return time.Duration(c.MaxTimeMinutes * float64(time.Minute))
}
