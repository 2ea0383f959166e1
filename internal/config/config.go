// Package config defines all configuration structures for the fangmatch
// service.  No I/O or parsing logic lives here, only plain data types and
// validation.
package config

import (
	"fmt"
	"time"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters for the formula
// catalog.  The database is optional: with Enabled false the service runs
// against the built-in seed formulas only.
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// DSN renders the pgx connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// RedisConfig holds Redis connection parameters for the identification
// cache.  Optional; with Enabled false identification calls are uncached.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds parameters for the formula-changed event stream.
// Optional; with Enabled false catalog changes are local to one instance.
type KafkaConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Brokers         []string      `mapstructure:"brokers"`
	GroupID         string        `mapstructure:"group_id"`
	ProducerRetries int           `mapstructure:"producer_retries"`
	BatchTimeout    time.Duration `mapstructure:"batch_timeout"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level       string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format      string `mapstructure:"format"` // "json" | "text"
	Output      string `mapstructure:"output"`
	Development bool   `mapstructure:"development"`
}

// MatchingConfig exposes the engine thresholds.  The defaults mirror the
// values the matching engine was tuned with; they are configurable because
// their derivation is empirical, not because better values are known.
type MatchingConfig struct {
	RecallWeight         float64 `mapstructure:"recall_weight"`
	PrecisionWeight      float64 `mapstructure:"precision_weight"`
	RatioThreshold       float64 `mapstructure:"ratio_threshold"`
	NoiseInputSize       int     `mapstructure:"noise_input_size"`
	NoiseMaxOverlap      int     `mapstructure:"noise_max_overlap"`
	CombinedMinExplained int     `mapstructure:"combined_min_explained"`
	MaxResults           int     `mapstructure:"max_results"`
}

// IntelligenceConfig holds the endpoints of the external identification and
// clinical-analysis services.  Empty base URLs disable the respective call.
type IntelligenceConfig struct {
	IdentifyBaseURL string        `mapstructure:"identify_base_url"`
	AnalysisBaseURL string        `mapstructure:"analysis_base_url"`
	APIKey          string        `mapstructure:"api_key"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryBackoff    time.Duration `mapstructure:"retry_backoff"`
	EnableAnalysis  bool          `mapstructure:"enable_analysis"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Config is the root configuration structure for the whole service.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Kafka        KafkaConfig        `mapstructure:"kafka"`
	Log          LogConfig          `mapstructure:"log"`
	Matching     MatchingConfig     `mapstructure:"matching"`
	Intelligence IntelligenceConfig `mapstructure:"intelligence"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
}

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("config: database.host is required when database.enabled is true")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
		}
		if c.Database.User == "" {
			return fmt.Errorf("config: database.user is required when database.enabled is true")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("config: database.db_name is required when database.enabled is true")
		}
		if c.Database.MaxConns < 1 {
			return fmt.Errorf("config: database.max_conns must be >= 1, got %d", c.Database.MaxConns)
		}
	}

	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required when redis.enabled is true")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
		}
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.GroupID == "" {
			return fmt.Errorf("config: kafka.group_id is required when kafka.enabled is true")
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|text", c.Log.Format)
	}

	if c.Matching.RecallWeight < 0 || c.Matching.PrecisionWeight < 0 {
		return fmt.Errorf("config: matching weights must be non-negative")
	}
	if c.Matching.RecallWeight+c.Matching.PrecisionWeight == 0 {
		return fmt.Errorf("config: matching.recall_weight and matching.precision_weight must not both be zero")
	}
	if c.Matching.RatioThreshold <= 0 || c.Matching.RatioThreshold > 1 {
		return fmt.Errorf("config: matching.ratio_threshold %v is out of range (0, 1]", c.Matching.RatioThreshold)
	}
	if c.Matching.NoiseInputSize < 1 {
		return fmt.Errorf("config: matching.noise_input_size must be >= 1, got %d", c.Matching.NoiseInputSize)
	}
	if c.Matching.MaxResults < 1 {
		return fmt.Errorf("config: matching.max_results must be >= 1, got %d", c.Matching.MaxResults)
	}

	if c.Intelligence.Timeout <= 0 {
		return fmt.Errorf("config: intelligence.timeout must be positive, got %v", c.Intelligence.Timeout)
	}

	return nil
}
