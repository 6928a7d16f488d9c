package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost             string
	DBPort             string
	DBUser             string
	DBPassword         string
	DBName             string
	ServerPort         string
	AccessTokenSecret  string
	RefreshTokenSecret string
	FrontendURL        string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	return &Config{
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             getEnv("DB_USER", "taskboard_user"),
		DBPassword:         getEnv("DB_PASSWORD", "taskboard_pass"),
		DBName:             getEnv("DB_NAME", "taskboard_db"),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		AccessTokenSecret:  getEnv("ACCESS_TOKEN_SECRET", "supersecretkey"),
		RefreshTokenSecret: getEnv("REFRESH_TOKEN_SECRET", "supersecretrefreshkey"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:5173"),
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
