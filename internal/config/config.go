package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For the sync interval

	"github.com/joho/godotenv" // For loading .env files
)

// Backend names accepted in STORE_BACKEND.
const (
	BackendLocal = "local" // JSON files under DataDir
	BackendMySQL = "mysql" // Remote table store via GORM
)

// Config holds the application configuration
type Config struct {
	AppPort          string        // Application port
	StoreBackend     string        // Record store backend: local or mysql
	DataDir          string        // Directory for the local backend and the client session file
	DBUser           string        // Database user
	DBPassword       string        // Database password
	DBHost           string        // Database host
	DBPort           string        // Database port
	DBName           string        // Database name
	JWTSecret        string        // JWT secret key
	RedisAddr        string        // Redis server address (empty disables response caching)
	RedisPass        string        // Redis password
	RedisDB          int           // Redis database number
	MasterAdminPhone string        // Phone always treated as admin (bootstrap override)
	SyncInterval     time.Duration // Polling synchronizer interval
	ContactLink      string        // Support contact link shown on the Gifts screen
	AvatarBase       string        // Base URL for default avatars
	IsProd           bool          // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	syncSeconds, _ := strconv.Atoi(os.Getenv("SYNC_INTERVAL_SECONDS"))
	if syncSeconds <= 0 {
		syncSeconds = 3 // The interval only has to be a positive constant
	}
	return &Config{
		AppPort:          getEnv("APP_PORT", "8080"),
		StoreBackend:     getEnv("STORE_BACKEND", BackendLocal),
		DataDir:          getEnv("DATA_DIR", "data"),
		DBUser:           os.Getenv("DB_USER"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		DBHost:           os.Getenv("DB_HOST"),
		DBPort:           os.Getenv("DB_PORT"),
		DBName:           os.Getenv("DB_NAME"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPass:        os.Getenv("REDIS_PASS"),
		RedisDB:          redisDB,
		MasterAdminPhone: getEnv("MASTER_ADMIN_PHONE", "0000"),
		SyncInterval:     time.Duration(syncSeconds) * time.Second,
		ContactLink:      getEnv("CONTACT_LINK", "http://m.me/MinhTuCSKHConCunng/"),
		AvatarBase:       getEnv("AVATAR_BASE", "https://api.dicebear.com/7.x/avataaars/svg?seed="),
		IsProd:           os.Getenv("IS_PROD") == "true",
	}
}

// getEnv returns the value of the variable or a default when unset
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
