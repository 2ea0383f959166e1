package config

import (
	"time"

	"github.com/herbwise/fangmatch/internal/domain/formula"
)

// Default value constants.
const (
	DefaultServerPort = 8080
	DefaultServerMode = "release"

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "fangmatch"
	DefaultDBMaxConns = 25

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "fangmatch:"

	DefaultKafkaBroker  = "localhost:9092"
	DefaultKafkaGroupID = "fangmatch"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMaxResults = 10

	DefaultMetricsPath = "/metrics"
)

// NewDefault returns a Config with every field at its default, the same
// configuration an empty config file would produce.
func NewDefault() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-value field in cfg with the service
// default.  Fields already set by the caller are left unchanged so that
// explicit configuration always wins.  It must run after unmarshalling and
// before Validate so defaulted fields are never seen as missing.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = time.Hour
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30 * time.Minute
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = time.Hour
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}

	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.ProducerRetries == 0 {
		cfg.Kafka.ProducerRetries = 3
	}
	if cfg.Kafka.BatchTimeout == 0 {
		cfg.Kafka.BatchTimeout = 100 * time.Millisecond
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.Matching.RecallWeight == 0 && cfg.Matching.PrecisionWeight == 0 {
		cfg.Matching.RecallWeight = formula.DefaultRecallWeight
		cfg.Matching.PrecisionWeight = formula.DefaultPrecisionWeight
	}
	if cfg.Matching.RatioThreshold == 0 {
		cfg.Matching.RatioThreshold = formula.DefaultRatioThreshold
	}
	if cfg.Matching.NoiseInputSize == 0 {
		cfg.Matching.NoiseInputSize = formula.DefaultNoiseInputSize
	}
	if cfg.Matching.NoiseMaxOverlap == 0 {
		cfg.Matching.NoiseMaxOverlap = formula.DefaultNoiseMaxOverlap
	}
	if cfg.Matching.CombinedMinExplained == 0 {
		cfg.Matching.CombinedMinExplained = formula.DefaultCombinedMinExplained
	}
	if cfg.Matching.MaxResults == 0 {
		cfg.Matching.MaxResults = DefaultMaxResults
	}

	if cfg.Intelligence.Timeout == 0 {
		cfg.Intelligence.Timeout = 30 * time.Second
	}
	if cfg.Intelligence.MaxRetries == 0 {
		cfg.Intelligence.MaxRetries = 2
	}
	if cfg.Intelligence.RetryBackoff == 0 {
		cfg.Intelligence.RetryBackoff = 500 * time.Millisecond
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
}

// MatcherOptions converts the matching section into engine options.
func (c MatchingConfig) MatcherOptions() formula.MatcherOptions {
	return formula.MatcherOptions{
		RecallWeight:         c.RecallWeight,
		PrecisionWeight:      c.PrecisionWeight,
		RatioThreshold:       c.RatioThreshold,
		NoiseInputSize:       c.NoiseInputSize,
		NoiseMaxOverlap:      c.NoiseMaxOverlap,
		CombinedMinExplained: c.CombinedMinExplained,
	}
}
