package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DocumentBackendFirestore = "firestore"
	DocumentBackendMemory    = "memory"

	StorageBackendFirebase = "firebase"
	StorageBackendMinIO    = "minio"
	StorageBackendLocal    = "local"
)

type Config struct {
	ServerPort    string
	Environment   string
	PublicBaseURL string

	FirebaseProject            string
	FirebaseAPIKey             string
	FirebaseServiceAccountJSON string
	FirebaseServiceAccountPath string

	DocumentBackend string
	StorageBackend  string
	StorageBucket   string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOUseSSL    bool
	MinIOPublicURL string

	LocalStorageDir string

	MaxUploadSize   int64
	FetchTimeout    time.Duration
	CleanupInterval time.Duration
	CleanupAttempts int

	UploadRatePerMinute int
	UploadRateBurst     int
}

func Load() (*Config, error) {
	godotenv.Load()

	port := getEnv("SERVER_PORT", "8080")

	config := &Config{
		ServerPort:    port,
		Environment:   getEnv("ENVIRONMENT", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:"+port),

		FirebaseProject:            getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseAPIKey:             getEnv("FIREBASE_API_KEY", ""),
		FirebaseServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		FirebaseServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),

		DocumentBackend: getEnv("DOCUMENT_BACKEND", DocumentBackendFirestore),
		StorageBackend:  getEnv("STORAGE_BACKEND", StorageBackendFirebase),
		StorageBucket:   getEnv("STORAGE_BUCKET", ""),

		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
		MinIOPublicURL: getEnv("MINIO_PUBLIC_URL", ""),

		LocalStorageDir: getEnv("LOCAL_STORAGE_DIR", "./data"),

		MaxUploadSize:   getEnvAsInt64("MAX_UPLOAD_SIZE_MB", 100) * 1024 * 1024,
		FetchTimeout:    time.Duration(getEnvAsInt64("FETCH_TIMEOUT_SECONDS", 60)) * time.Second,
		CleanupInterval: time.Duration(getEnvAsInt64("CLEANUP_INTERVAL_MINUTES", 10)) * time.Minute,
		CleanupAttempts: int(getEnvAsInt64("CLEANUP_MAX_ATTEMPTS", 5)),

		UploadRatePerMinute: int(getEnvAsInt64("UPLOAD_RATE_PER_MINUTE", 30)),
		UploadRateBurst:     int(getEnvAsInt64("UPLOAD_RATE_BURST", 10)),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects backend combinations that cannot start.
func (c *Config) Validate() error {
	// identity always goes through Firebase Auth, or its emulator when
	// FIREBASE_AUTH_EMULATOR_HOST is set
	if c.FirebaseProject == "" {
		return fmt.Errorf("FIREBASE_PROJECT_ID is required")
	}

	switch c.DocumentBackend {
	case DocumentBackendFirestore, DocumentBackendMemory:
	default:
		return fmt.Errorf("unknown DOCUMENT_BACKEND %q", c.DocumentBackend)
	}

	switch c.StorageBackend {
	case StorageBackendFirebase, StorageBackendMinIO:
		if c.StorageBucket == "" {
			return fmt.Errorf("STORAGE_BUCKET is required for the %s storage backend", c.StorageBackend)
		}
	case StorageBackendLocal:
		if c.LocalStorageDir == "" {
			return fmt.Errorf("LOCAL_STORAGE_DIR is required for the local storage backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE_MB must be positive")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}
