package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server         ServerConfig         `mapstructure:"server"         validate:"required"`
	Database       DatabaseConfig       `mapstructure:"database"       validate:"required"`
	Auth           AuthConfig           `mapstructure:"auth"           validate:"required"`
	Recommendation RecommendationConfig `mapstructure:"recommendation" validate:"required"`
	Enrollment     EnrollmentConfig     `mapstructure:"enrollment"     validate:"required"`
	Audit          AuditConfig          `mapstructure:"audit"          validate:"required"`
	CORS           CORSConfig           `mapstructure:"cors"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// ShutdownTimeoutSeconds bounds graceful shutdown of the HTTP server and audit workers.
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url"            validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gte=1"`
	// AdminUsername and AdminPasswordHash identify the head of department.
	// Admin login is disabled while the hash is empty.
	AdminUsername     string `mapstructure:"admin_username"      validate:"required"`
	AdminPasswordHash string `mapstructure:"admin_password_hash" validate:"omitempty,startswith=$2"`
}

// RecommendationConfig tunes the recommendation ranker.
type RecommendationConfig struct {
	KNeighbors int `mapstructure:"k_neighbors" validate:"gte=1"`
	TopN       int `mapstructure:"top_n"       validate:"gte=1"`
	// Workers bounds the goroutines used to compute similarity rows.
	Workers int `mapstructure:"workers" validate:"gte=1"`
}

// EnrollmentConfig contains settings of the enrollment transaction.
type EnrollmentConfig struct {
	DefaultSeats int `mapstructure:"default_seats" validate:"gte=1"`
	// MaxRetries bounds retries of transactions aborted by serialization failures or deadlocks.
	MaxRetries         int `mapstructure:"max_retries"           validate:"gte=0"`
	RateLimitPerMinute int `mapstructure:"rate_limit_per_minute" validate:"gte=1"`
}

// AuditConfig sizes the asynchronous usage log recorder.
type AuditConfig struct {
	QueueSize   int `mapstructure:"queue_size"   validate:"gte=1"`
	WorkerCount int `mapstructure:"worker_count" validate:"gte=1"`
}

// CORSConfig lists origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}
