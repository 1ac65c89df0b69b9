package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	JWTSecret   string
	MongoURI    string
	DBName      string
	SkipAuth    bool
	Environment string
	AppId       string

	// Backup engine settings
	BackupWorkdir   string // Physical directory holding the git working copy
	GitHost         string // Remote host the backup repository lives on
	GitTimeoutSecs  int    // Upper bound for pull/push network calls
	CommitName      string // Committer identity used for backup commits
	CommitEmail     string
	DefaultInterval int // Hours between scheduled backups when auto-enabled
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", "secret"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:      getEnv("DB_NAME", "go-cms"),
		SkipAuth:    getEnv("SKIP_AUTH", "false") == "true",
		Environment: getEnv("ENVIRONMENT", "development"),
		AppId:       getEnv("APP_ID", "go-cms"),

		BackupWorkdir:   getEnv("BACKUP_WORKDIR", "./backup-workdir"),
		GitHost:         getEnv("GIT_HOST", "github.com"),
		GitTimeoutSecs:  getEnvInt("GIT_TIMEOUT_SECONDS", 120),
		CommitName:      getEnv("BACKUP_COMMIT_NAME", "go-cms backup"),
		CommitEmail:     getEnv("BACKUP_COMMIT_EMAIL", "backup@go-cms.local"),
		DefaultInterval: getEnvInt("BACKUP_INTERVAL_HOURS", 12),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
