package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds every runtime setting. It is built once in main and passed
// explicitly to the components that need it; nothing else reads the
// environment.
type Config struct {
	Port string
	Env  string

	MongoURI string
	DBName   string

	AccessTokenSecret  string
	AccessTokenTTL     time.Duration
	RefreshTokenSecret string
	RefreshTokenTTL    time.Duration

	CORSOrigin string

	FirebaseCredentialsPath string
	StorageBucket           string
}

// Load reads configuration from the environment, applying defaults suitable
// for local development.
func Load() *Config {
	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		MongoURI:                getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:                  getEnv("DB_NAME", "openboard"),
		AccessTokenSecret:       getEnv("ACCESS_TOKEN_SECRET", "access-token-secret"),
		AccessTokenTTL:          getDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenSecret:      getEnv("REFRESH_TOKEN_SECRET", "refresh-token-secret"),
		RefreshTokenTTL:         getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		CORSOrigin:              getEnv("CORS_ORIGIN", "http://localhost:8080"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		StorageBucket:           getEnv("STORAGE_BUCKET", ""),
	}
}

// IsProduction reports whether the server runs in production mode. Error
// responses include stack traces only when this is false.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// Plain numbers are read as seconds.
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
