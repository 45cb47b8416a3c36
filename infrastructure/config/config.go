// Package config loads service configuration from defaults, an optional
// YAML or TOML file named by CASEGRAPH_CONFIG, and environment variables,
// in that order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	domainconfig "casegraph/domain/config"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the environment variable that points at a config file
const ConfigFileEnv = "CASEGRAPH_CONFIG"

// Config holds all application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server" toml:"server"`
	Store         StoreConfig         `yaml:"store" toml:"store"`
	Cache         CacheConfig         `yaml:"cache" toml:"cache"`
	Events        EventsConfig        `yaml:"events" toml:"events"`
	Breaker       BreakerConfig       `yaml:"breaker" toml:"breaker"`
	Auth          AuthConfig          `yaml:"auth" toml:"auth"`
	Observability ObservabilityConfig `yaml:"observability" toml:"observability"`
	Domain        DomainConfig        `yaml:"domain" toml:"domain"`

	LogLevel string `yaml:"log_level" toml:"log_level" validate:"oneof=debug info warn error"`
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Address         string        `yaml:"address" toml:"address" validate:"required"`
	Environment     string        `yaml:"environment" toml:"environment" validate:"oneof=development test staging production"`
	CORSOrigins     []string      `yaml:"cors_origins" toml:"cors_origins"`
	ReadTimeout     time.Duration `yaml:"read_timeout" toml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" toml:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout" validate:"gt=0"`
	IsLambda        bool          `yaml:"is_lambda" toml:"is_lambda"`
}

// StoreConfig selects and configures the graph store
type StoreConfig struct {
	Driver       string        `yaml:"driver" toml:"driver" validate:"oneof=neo4j memory"`
	URI          string        `yaml:"uri" toml:"uri"`
	Username     string        `yaml:"username" toml:"username"`
	Password     string        `yaml:"password" toml:"password"`
	Database     string        `yaml:"database" toml:"database"`
	FixturePath  string        `yaml:"fixture_path" toml:"fixture_path"`
	WatchFixture bool          `yaml:"watch_fixture" toml:"watch_fixture"`
	QueryTimeout time.Duration `yaml:"query_timeout" toml:"query_timeout" validate:"gt=0"`
}

// CacheConfig configures the raw record cache
type CacheConfig struct {
	Driver   string        `yaml:"driver" toml:"driver" validate:"oneof=none memory redis"`
	RedisURL string        `yaml:"redis_url" toml:"redis_url"`
	TTL      time.Duration `yaml:"ttl" toml:"ttl" validate:"gt=0"`
}

// EventsConfig configures audit event publishing
type EventsConfig struct {
	Driver            string        `yaml:"driver" toml:"driver" validate:"oneof=noop nats eventbridge"`
	NATSURL           string        `yaml:"nats_url" toml:"nats_url"`
	NATSSubjectPrefix string        `yaml:"nats_subject_prefix" toml:"nats_subject_prefix"`
	EventBusName      string        `yaml:"event_bus_name" toml:"event_bus_name"`
	AWSRegion         string        `yaml:"aws_region" toml:"aws_region"`
	PublishTimeout    time.Duration `yaml:"publish_timeout" toml:"publish_timeout" validate:"gt=0"`
}

// BreakerConfig configures the store circuit breaker
type BreakerConfig struct {
	Enabled          bool          `yaml:"enabled" toml:"enabled"`
	MaxRequests      uint32        `yaml:"max_requests" toml:"max_requests" validate:"gte=1"`
	Interval         time.Duration `yaml:"interval" toml:"interval" validate:"gte=0"`
	Timeout          time.Duration `yaml:"timeout" toml:"timeout" validate:"gt=0"`
	MinRequests      uint32        `yaml:"min_requests" toml:"min_requests" validate:"gte=1"`
	FailureThreshold float64       `yaml:"failure_threshold" toml:"failure_threshold" validate:"gt=0,lte=1"`
}

// AuthConfig configures JWT authentication and rate limiting
type AuthConfig struct {
	Enabled            bool   `yaml:"enabled" toml:"enabled"`
	JWTSecret          string `yaml:"jwt_secret" toml:"jwt_secret"`
	JWTIssuer          string `yaml:"jwt_issuer" toml:"jwt_issuer"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute" toml:"rate_limit_per_minute" validate:"gte=0"`
	RateLimitDriver    string `yaml:"rate_limit_driver" toml:"rate_limit_driver" validate:"oneof=memory redis"`
}

// ObservabilityConfig configures metrics and tracing
type ObservabilityConfig struct {
	EnableMetrics bool    `yaml:"enable_metrics" toml:"enable_metrics"`
	EnableTracing bool    `yaml:"enable_tracing" toml:"enable_tracing"`
	OTLPEndpoint  string  `yaml:"otlp_endpoint" toml:"otlp_endpoint"`
	OTLPInsecure  bool    `yaml:"otlp_insecure" toml:"otlp_insecure"`
	ServiceName   string  `yaml:"service_name" toml:"service_name" validate:"required"`
	SampleRate    float64 `yaml:"sample_rate" toml:"sample_rate" validate:"gte=0,lte=1"`
}

// DomainConfig carries the tunable related-transaction rules
type DomainConfig struct {
	SimilarityWindow        time.Duration `yaml:"similarity_window" toml:"similarity_window" validate:"gt=0"`
	SimilarityAbsTolerance  float64       `yaml:"similarity_abs_tolerance" toml:"similarity_abs_tolerance" validate:"gte=0"`
	SimilarityPctTolerance  float64       `yaml:"similarity_pct_tolerance" toml:"similarity_pct_tolerance" validate:"gte=0"`
	MaxRelatedTransactions  int           `yaml:"max_related_transactions" toml:"max_related_transactions" validate:"gt=0"`
	MaxEmployeeTransactions int           `yaml:"max_employee_transactions" toml:"max_employee_transactions" validate:"gt=0"`
}

// Defaults returns the configuration used for local development
func Defaults() *Config {
	d := domainconfig.DefaultDomainConfig()
	return &Config{
		Server: ServerConfig{
			Address:         ":8080",
			Environment:     "development",
			CORSOrigins:     []string{"http://localhost:3000"},
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Driver:       "memory",
			URI:          "neo4j://localhost:7687",
			Username:     "neo4j",
			Database:     "neo4j",
			FixturePath:  "fixtures/demo.yaml",
			QueryTimeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			Driver: "none",
			TTL:    time.Minute,
		},
		Events: EventsConfig{
			Driver:            "noop",
			NATSSubjectPrefix: "casegraph.events",
			EventBusName:      "casegraph-events",
			AWSRegion:         "ap-northeast-2",
			PublishTimeout:    2 * time.Second,
		},
		Breaker: BreakerConfig{
			Enabled:          true,
			MaxRequests:      3,
			Interval:         60 * time.Second,
			Timeout:          30 * time.Second,
			MinRequests:      5,
			FailureThreshold: 0.6,
		},
		Auth: AuthConfig{
			JWTIssuer:          "casegraph",
			RateLimitPerMinute: 120,
			RateLimitDriver:    "memory",
		},
		Observability: ObservabilityConfig{
			EnableMetrics: true,
			OTLPEndpoint:  "localhost:4317",
			OTLPInsecure:  true,
			ServiceName:   "casegraph",
			SampleRate:    0.05,
		},
		Domain: DomainConfig{
			SimilarityWindow:        d.SimilarityWindow,
			SimilarityAbsTolerance:  d.SimilarityAbsTolerance,
			SimilarityPctTolerance:  d.SimilarityPctTolerance,
			MaxRelatedTransactions:  d.MaxRelatedTransactions,
			MaxEmployeeTransactions: d.MaxEmployeeTransactions,
		},
		LogLevel: "info",
	}
}

// LoadConfig loads configuration from the optional config file and the environment
func LoadConfig() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// loadFile decodes a YAML or TOML file over the current values
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse YAML config %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), c); err != nil {
			return fmt.Errorf("failed to parse TOML config %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config file type %q", filepath.Ext(path))
	}
	return nil
}

// applyEnv overrides fields whose environment variable is set
func (c *Config) applyEnv() {
	c.Server.Address = getEnv("SERVER_ADDRESS", c.Server.Address)
	c.Server.Environment = getEnv("ENVIRONMENT", c.Server.Environment)
	c.Server.CORSOrigins = getEnvList("CORS_ORIGINS", c.Server.CORSOrigins)
	c.Server.ReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.ShutdownTimeout = getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	c.Server.IsLambda = getEnvBool("IS_LAMBDA", c.Server.IsLambda || os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "")

	c.Store.Driver = getEnv("STORE_DRIVER", c.Store.Driver)
	c.Store.URI = getEnv("NEO4J_URI", c.Store.URI)
	c.Store.Username = getEnv("NEO4J_USERNAME", c.Store.Username)
	c.Store.Password = getEnv("NEO4J_PASSWORD", c.Store.Password)
	c.Store.Database = getEnv("NEO4J_DATABASE", c.Store.Database)
	c.Store.FixturePath = getEnv("FIXTURE_PATH", c.Store.FixturePath)
	c.Store.WatchFixture = getEnvBool("WATCH_FIXTURE", c.Store.WatchFixture)
	c.Store.QueryTimeout = getEnvDuration("QUERY_TIMEOUT", c.Store.QueryTimeout)

	c.Cache.Driver = getEnv("CACHE_DRIVER", c.Cache.Driver)
	c.Cache.RedisURL = getEnv("REDIS_URL", c.Cache.RedisURL)
	c.Cache.TTL = getEnvDuration("CACHE_TTL", c.Cache.TTL)

	c.Events.Driver = getEnv("EVENTS_DRIVER", c.Events.Driver)
	c.Events.NATSURL = getEnv("NATS_URL", c.Events.NATSURL)
	c.Events.NATSSubjectPrefix = getEnv("NATS_SUBJECT_PREFIX", c.Events.NATSSubjectPrefix)
	c.Events.EventBusName = getEnv("EVENT_BUS_NAME", c.Events.EventBusName)
	c.Events.AWSRegion = getEnv("AWS_REGION", c.Events.AWSRegion)
	c.Events.PublishTimeout = getEnvDuration("EVENT_PUBLISH_TIMEOUT", c.Events.PublishTimeout)

	c.Breaker.Enabled = getEnvBool("BREAKER_ENABLED", c.Breaker.Enabled)
	c.Breaker.MaxRequests = uint32(getEnvInt("BREAKER_MAX_REQUESTS", int(c.Breaker.MaxRequests)))
	c.Breaker.Timeout = getEnvDuration("BREAKER_TIMEOUT", c.Breaker.Timeout)
	c.Breaker.MinRequests = uint32(getEnvInt("BREAKER_MIN_REQUESTS", int(c.Breaker.MinRequests)))
	c.Breaker.FailureThreshold = getEnvFloat("BREAKER_FAILURE_THRESHOLD", c.Breaker.FailureThreshold)

	c.Auth.Enabled = getEnvBool("AUTH_ENABLED", c.Auth.Enabled)
	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.JWTIssuer = getEnv("JWT_ISSUER", c.Auth.JWTIssuer)
	c.Auth.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", c.Auth.RateLimitPerMinute)
	c.Auth.RateLimitDriver = getEnv("RATE_LIMIT_DRIVER", c.Auth.RateLimitDriver)

	c.Observability.EnableMetrics = getEnvBool("ENABLE_METRICS", c.Observability.EnableMetrics)
	c.Observability.EnableTracing = getEnvBool("ENABLE_TRACING", c.Observability.EnableTracing)
	c.Observability.OTLPEndpoint = getEnv("OTLP_ENDPOINT", c.Observability.OTLPEndpoint)
	c.Observability.OTLPInsecure = getEnvBool("OTLP_INSECURE", c.Observability.OTLPInsecure)
	c.Observability.ServiceName = getEnv("SERVICE_NAME", c.Observability.ServiceName)
	c.Observability.SampleRate = getEnvFloat("TRACE_SAMPLE_RATE", c.Observability.SampleRate)

	c.Domain.SimilarityWindow = getEnvDuration("SIMILARITY_WINDOW", c.Domain.SimilarityWindow)
	c.Domain.SimilarityAbsTolerance = getEnvFloat("SIMILARITY_ABS_TOLERANCE", c.Domain.SimilarityAbsTolerance)
	c.Domain.SimilarityPctTolerance = getEnvFloat("SIMILARITY_PCT_TOLERANCE", c.Domain.SimilarityPctTolerance)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

var validate = validator.New()

// Validate checks struct constraints and the rules that span fields
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.IsProduction() && c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_ENABLED is set")
	}
	if c.Store.Driver == "neo4j" && c.Store.URI == "" {
		return fmt.Errorf("NEO4J_URI is required for the neo4j store")
	}
	if c.Store.Driver == "memory" && c.Store.FixturePath == "" {
		return fmt.Errorf("FIXTURE_PATH is required for the memory store")
	}
	if (c.Cache.Driver == "redis" || c.Auth.RateLimitDriver == "redis") && c.Cache.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required when redis is used")
	}
	if c.Events.Driver == "nats" && c.Events.NATSURL == "" {
		return fmt.Errorf("NATS_URL is required for nats events")
	}
	if c.Events.Driver == "eventbridge" && c.Events.EventBusName == "" {
		return fmt.Errorf("EVENT_BUS_NAME is required for eventbridge events")
	}

	return c.DomainRules().Validate()
}

// DomainRules converts the domain section into the domain's own config type
func (c *Config) DomainRules() *domainconfig.DomainConfig {
	d := domainconfig.DefaultDomainConfig()
	d.SimilarityWindow = c.Domain.SimilarityWindow
	d.SimilarityAbsTolerance = c.Domain.SimilarityAbsTolerance
	d.SimilarityPctTolerance = c.Domain.SimilarityPctTolerance
	d.MaxRelatedTransactions = c.Domain.MaxRelatedTransactions
	d.MaxEmployeeTransactions = c.Domain.MaxEmployeeTransactions
	return d
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated variable
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
