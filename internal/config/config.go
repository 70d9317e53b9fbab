package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values
type Config struct {
	// Server configuration
	Port               int           `json:"port"`
	Environment        string        `json:"environment"`
	CORSAllowedOrigins []string      `json:"cors_allowed_origins"`
	ShutdownTimeout    time.Duration `json:"shutdown_timeout"`

	// Storage backend: "mongo" or "memory"
	StorageBackend string `json:"storage_backend"`

	// MongoDB configuration
	MongoURI      string `json:"mongo_uri"`
	MongoDatabase string `json:"mongo_database"`

	// Redis configuration
	RedisURI          string        `json:"redis_uri"`
	RedisClusterAddrs []string      `json:"redis_cluster_addrs"`
	RedisPassword     string        `json:"redis_password"`
	RedisDB           int           `json:"redis_db"`
	RedisPoolSize     int           `json:"redis_pool_size"`
	RedisMinIdleConns int           `json:"redis_min_idle_conns"`
	VisitorCacheTTL   time.Duration `json:"visitor_cache_ttl"`

	// Collection names
	VisitorCollection  string `json:"mongo_visitor_collection"`
	OtpCollection      string `json:"mongo_otp_collection"`
	ConsentCollection  string `json:"mongo_consent_collection"`
	CounterCollection  string `json:"mongo_counter_collection"`
	AuditLogCollection string `json:"mongo_audit_log_collection"`

	IndexMaintenanceInterval time.Duration `json:"index_maintenance_interval"`

	// One-time code configuration
	OtpStore       string        `json:"otp_store"`
	OtpTTL         time.Duration `json:"otp_ttl"`
	OtpMaxAttempts int           `json:"otp_max_attempts"`

	// Consent configuration
	PolicyVersion      string `json:"policy_version"`
	ParkName           string `json:"park_name"`
	LogoPath           string `json:"logo_path"`
	DefaultPhoneRegion string `json:"default_phone_region"`

	// Signature blob storage
	BlobBackend   string `json:"blob_backend"`
	GridFSBucket  string `json:"gridfs_bucket"`
	PublicBaseURL string `json:"public_base_url"`
	CloudinaryURL string `json:"-"`

	// Outbound email
	NotificationsEnabled bool   `json:"notifications_enabled"`
	SMTPHost             string `json:"smtp_host"`
	SMTPPort             int    `json:"smtp_port"`
	SMTPUsername         string `json:"smtp_username"`
	SMTPPassword         string `json:"-"`
	MailFrom             string `json:"mail_from"`
	MailFromName         string `json:"mail_from_name"`

	// Rendering and delivery run after commit with their own deadline
	PostCommitTimeout time.Duration `json:"post_commit_timeout"`

	// Consent events
	KafkaBroker   string `json:"kafka_broker"`
	KafkaTopic    string `json:"kafka_topic"`
	KafkaUsername string `json:"kafka_username"`
	KafkaPassword string `json:"-"`

	// Tracing
	TracingEnabled     bool    `json:"tracing_enabled"`
	TracingEndpoint    string  `json:"tracing_endpoint"`
	TracingServiceName string  `json:"tracing_service_name"`
	TracingSampleRatio float64 `json:"tracing_sample_ratio"`

	// Admin capability check
	AdminJWTSecret string `json:"-"`
	AdminRole      string `json:"admin_role"`

	// Audit logging
	AuditLogsEnabled bool `json:"audit_logs_enabled"`
	AuditWorkerCount int  `json:"audit_worker_count"`
	AuditBufferSize  int  `json:"audit_buffer_size"`
}

var (
	AppConfig *Config
)

// LoadConfig loads configuration from environment variables
func LoadConfig() error {
	// Outside production a local .env file may fill in unset variables
	if os.Getenv("ENVIRONMENT") != "production" {
		_ = godotenv.Load()
	}

	port, err := strconv.Atoi(getEnvOrDefault("PORT", "8080"))
	if err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnvOrDefault("REDIS_DB", "0"))
	if err != nil {
		return fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	visitorCacheTTL, err := time.ParseDuration(getEnvOrDefault("VISITOR_CACHE_TTL", "10m"))
	if err != nil {
		return fmt.Errorf("invalid VISITOR_CACHE_TTL: %w", err)
	}

	otpTTL, err := time.ParseDuration(getEnvOrDefault("OTP_TTL", "10m"))
	if err != nil {
		return fmt.Errorf("invalid OTP_TTL: %w", err)
	}
	if otpTTL <= 0 {
		return fmt.Errorf("invalid OTP_TTL: must be positive")
	}

	otpMaxAttempts, err := strconv.Atoi(getEnvOrDefault("OTP_MAX_ATTEMPTS", "0"))
	if err != nil || otpMaxAttempts < 0 {
		return fmt.Errorf("invalid OTP_MAX_ATTEMPTS: %s", os.Getenv("OTP_MAX_ATTEMPTS"))
	}

	indexMaintenanceInterval, err := time.ParseDuration(getEnvOrDefault("INDEX_MAINTENANCE_INTERVAL", "1h"))
	if err != nil {
		return fmt.Errorf("invalid INDEX_MAINTENANCE_INTERVAL: %w", err)
	}

	smtpPort, err := strconv.Atoi(getEnvOrDefault("SMTP_PORT", "587"))
	if err != nil {
		return fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	notificationsEnabled, err := strconv.ParseBool(getEnvOrDefault("NOTIFICATIONS_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("invalid NOTIFICATIONS_ENABLED: %w", err)
	}

	storageBackend := getEnvOrDefault("STORAGE_BACKEND", "mongo")
	if storageBackend != "mongo" && storageBackend != "memory" {
		return fmt.Errorf("invalid STORAGE_BACKEND: %s", storageBackend)
	}

	otpStore := getEnvOrDefault("OTP_STORE", "mongo")
	if otpStore != "mongo" && otpStore != "redis" {
		return fmt.Errorf("invalid OTP_STORE: %s", otpStore)
	}

	blobBackend := getEnvOrDefault("BLOB_BACKEND", "gridfs")
	switch blobBackend {
	case "gridfs", "cloudinary", "memory":
	default:
		return fmt.Errorf("invalid BLOB_BACKEND: %s", blobBackend)
	}

	cloudinaryURL := os.Getenv("CLOUDINARY_URL")
	if blobBackend == "cloudinary" && cloudinaryURL == "" {
		return fmt.Errorf("CLOUDINARY_URL is required when BLOB_BACKEND is cloudinary")
	}

	tracingSampleRatio, err := strconv.ParseFloat(getEnvOrDefault("TRACING_SAMPLE_RATIO", "1"), 64)
	if err != nil || tracingSampleRatio < 0 || tracingSampleRatio > 1 {
		return fmt.Errorf("invalid TRACING_SAMPLE_RATIO: %s", os.Getenv("TRACING_SAMPLE_RATIO"))
	}

	smtpHost := os.Getenv("SMTP_HOST")
	mailFrom := os.Getenv("MAIL_FROM")
	if notificationsEnabled {
		if smtpHost == "" {
			return fmt.Errorf("SMTP_HOST is required when NOTIFICATIONS_ENABLED is true")
		}
		if mailFrom == "" {
			return fmt.Errorf("MAIL_FROM is required when NOTIFICATIONS_ENABLED is true")
		}
	}

	AppConfig = &Config{
		// Server configuration
		Port:               port,
		Environment:        getEnvOrDefault("ENVIRONMENT", "development"),
		CORSAllowedOrigins: parseCommaSeparatedList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		ShutdownTimeout:    getEnvAsDurationOrDefault("SHUTDOWN_TIMEOUT", 15*time.Second),

		StorageBackend: storageBackend,

		// MongoDB configuration
		MongoURI:      getEnvOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnvOrDefault("MONGODB_DATABASE", "jumping_park"),

		// Redis configuration
		RedisURI:          getEnvOrDefault("REDIS_URI", "localhost:6379"),
		RedisClusterAddrs: parseCommaSeparatedList(getEnvOrDefault("REDIS_CLUSTER_ADDRS", "")),
		RedisPassword:     getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:           redisDB,
		RedisPoolSize:     getEnvAsIntOrDefault("REDIS_POOL_SIZE", 20),
		RedisMinIdleConns: getEnvAsIntOrDefault("REDIS_MIN_IDLE_CONNS", 5),
		VisitorCacheTTL:   visitorCacheTTL,

		// Collection names
		VisitorCollection:  getEnvOrDefault("MONGODB_VISITOR_COLLECTION", "visitors"),
		OtpCollection:      getEnvOrDefault("MONGODB_OTP_COLLECTION", "otps"),
		ConsentCollection:  getEnvOrDefault("MONGODB_CONSENT_COLLECTION", "consents"),
		CounterCollection:  getEnvOrDefault("MONGODB_COUNTER_COLLECTION", "counters"),
		AuditLogCollection: getEnvOrDefault("MONGODB_AUDIT_LOG_COLLECTION", "audit_logs"),

		IndexMaintenanceInterval: indexMaintenanceInterval,

		// One-time code configuration
		OtpStore:       otpStore,
		OtpTTL:         otpTTL,
		OtpMaxAttempts: otpMaxAttempts,

		// Consent configuration
		PolicyVersion:      getEnvOrDefault("POLICY_VERSION", "v1"),
		ParkName:           getEnvOrDefault("PARK_NAME", "Jumping Park"),
		LogoPath:           getEnvOrDefault("LOGO_PATH", ""),
		DefaultPhoneRegion: getEnvOrDefault("DEFAULT_PHONE_REGION", "CO"),

		// Signature blob storage
		BlobBackend:   blobBackend,
		GridFSBucket:  getEnvOrDefault("GRIDFS_BUCKET", "signatures"),
		PublicBaseURL: strings.TrimRight(getEnvOrDefault("PUBLIC_BASE_URL", fmt.Sprintf("http://localhost:%d", port)), "/"),
		CloudinaryURL: cloudinaryURL,

		// Outbound email
		NotificationsEnabled: notificationsEnabled,
		SMTPHost:             smtpHost,
		SMTPPort:             smtpPort,
		SMTPUsername:         getEnvOrDefault("SMTP_USERNAME", ""),
		SMTPPassword:         getEnvOrDefault("SMTP_PASSWORD", ""),
		MailFrom:             mailFrom,
		MailFromName:         getEnvOrDefault("MAIL_FROM_NAME", "Jumping Park"),

		PostCommitTimeout: getEnvAsDurationOrDefault("POST_COMMIT_TIMEOUT", 30*time.Second),

		// Consent events
		KafkaBroker:   getEnvOrDefault("KAFKA_BROKER", ""),
		KafkaTopic:    getEnvOrDefault("KAFKA_TOPIC", "kiosk.consents"),
		KafkaUsername: getEnvOrDefault("KAFKA_USERNAME", ""),
		KafkaPassword: getEnvOrDefault("KAFKA_PASSWORD", ""),

		// Tracing
		TracingEnabled:     getEnvAsBoolOrDefault("TRACING_ENABLED", false),
		TracingEndpoint:    getEnvOrDefault("TRACING_ENDPOINT", "localhost:4317"),
		TracingServiceName: getEnvOrDefault("TRACING_SERVICE_NAME", "jumping-park-kiosk"),
		TracingSampleRatio: tracingSampleRatio,

		// Admin capability check
		AdminJWTSecret: getEnvOrDefault("ADMIN_JWT_SECRET", ""),
		AdminRole:      getEnvOrDefault("ADMIN_ROLE", "kiosk-admin"),

		// Audit logging
		AuditLogsEnabled: getEnvAsBoolOrDefault("AUDIT_LOGS_ENABLED", true),
		AuditWorkerCount: getEnvAsIntOrDefault("AUDIT_WORKER_COUNT", 2),
		AuditBufferSize:  getEnvAsIntOrDefault("AUDIT_BUFFER_SIZE", 256),
	}

	return nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns an int environment variable or default if unset or invalid
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// getEnvAsDurationOrDefault returns a duration environment variable or default if unset or invalid
func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// getEnvAsBoolOrDefault returns a bool environment variable or default if unset or invalid
func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// parseCommaSeparatedList splits a comma separated value, dropping empty items
func parseCommaSeparatedList(value string) []string {
	result := []string{}
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
