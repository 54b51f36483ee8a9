package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken      string
	BotUsername   string
	DBUser        string
	DBPassword    string
	DBName        string
	DBHost        string
	DBPort        string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	AdminIDs      []int64
	MinWithdraw   int64
	Level1Reward  int64
	Level2Reward  int64
	LogLevel      string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		BotToken:      getEnv("TELEGRAM_BOT_TOKEN", ""),
		BotUsername:   getEnv("BOT_USERNAME", ""),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBName:        getEnv("DB_NAME", "refer_earn_bot"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		AdminIDs:      parseIDList(getEnv("ADMIN_IDS", "")),
		MinWithdraw:   getEnvInt64("MIN_WITHDRAW", 30),
		Level1Reward:  getEnvInt64("LEVEL1_REWARD", 10),
		Level2Reward:  getEnvInt64("LEVEL2_REWARD", 5),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		log.Printf("Invalid integer for %s: %q, using default %d", key, value, fallback)
		return fallback
	}
	return n
}

func parseIDList(value string) []int64 {
	var ids []int64
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Printf("Skipping invalid admin id %q", part)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
