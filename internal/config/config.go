package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
// API Key Precedence Order:
// 1. Vault (if configured) - Highest priority
// 2. Config File values
// 3. Environment Variables (CAREERNAV_AI_PRIMARY_APIKEY, etc.)
// 4. Default values - Lowest priority
type Config struct {
	AI            AIConfig            `mapstructure:"ai"`
	Roadmap       RoadmapConfig       `mapstructure:"roadmap"`
	Server        ServerConfig        `mapstructure:"server"`
	Store         StoreConfig         `mapstructure:"store"`
	Scheduler     SchedulerConfig     `mapstructure:"scheduler"`
	App           AppConfig           `mapstructure:"app"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AIConfig holds model provider, pipeline and per-task configuration
type AIConfig struct {
	Primary   ProviderConfig `mapstructure:"primary"`
	Secondary ProviderConfig `mapstructure:"secondary"`

	WorkerPool WorkerPoolConfig `mapstructure:"workerPool"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`

	// Global sampling defaults, used when a task leaves a value unset
	Temperature      float32 `mapstructure:"temperature"`
	MaxTokens        int32   `mapstructure:"maxTokens"`
	UseSystemPrompts bool    `mapstructure:"useSystemPrompts"`

	Tasks   TasksConfig   `mapstructure:"tasks"`
	Prompts PromptsConfig `mapstructure:"prompts"`
}

// ProviderConfig configures one model backend
type ProviderConfig struct {
	Provider       string               `mapstructure:"provider"` // gemini, googleai, vertex
	Model          string               `mapstructure:"model"`
	APIKey         string               `mapstructure:"apiKey"`
	Project        string               `mapstructure:"project"`  // vertex only
	Location       string               `mapstructure:"location"` // vertex only
	Timeout        time.Duration        `mapstructure:"timeout"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// WorkerPoolConfig bounds concurrent calls to the blocking secondary provider
type WorkerPoolConfig struct {
	Size int `mapstructure:"size"`
}

// PipelineConfig tunes the completion ladder
type PipelineConfig struct {
	Retries    int           `mapstructure:"retries"`    // extra attempts per provider tier on retryable errors
	MaxBackoff time.Duration `mapstructure:"maxBackoff"` // cap for the jittered backoff between attempts
}

// TaskAIConfig holds sampling settings for a single generation task
type TaskAIConfig struct {
	Temperature      *float32 `mapstructure:"temperature"`
	MaxTokens        *int32   `mapstructure:"maxTokens"`
	UseSystemPrompts *bool    `mapstructure:"useSystemPrompts"`
}

// TasksConfig holds per-task sampling settings
type TasksConfig struct {
	Resume     TaskAIConfig `mapstructure:"resume"`
	SkillGap   TaskAIConfig `mapstructure:"skillGap"`
	Roadmap    TaskAIConfig `mapstructure:"roadmap"`
	Interview  TaskAIConfig `mapstructure:"interview"`
	Evaluation TaskAIConfig `mapstructure:"evaluation"`
	Chat       TaskAIConfig `mapstructure:"chat"`
}

// PromptConfig overrides the prompts of one task, inline or from files
type PromptConfig struct {
	System     string `mapstructure:"system"`
	User       string `mapstructure:"user"`
	SystemFile string `mapstructure:"systemFile"`
	UserFile   string `mapstructure:"userFile"`
}

// PromptsConfig holds prompt overrides for every task
type PromptsConfig struct {
	Watch         bool          `mapstructure:"watch"` // reload prompt files when they change
	DebounceDelay time.Duration `mapstructure:"debounceDelay"`

	Resume     PromptConfig `mapstructure:"resume"`
	SkillGap   PromptConfig `mapstructure:"skillGap"`
	Roadmap    PromptConfig `mapstructure:"roadmap"`
	Interview  PromptConfig `mapstructure:"interview"`
	Evaluation PromptConfig `mapstructure:"evaluation"`
	Chat       PromptConfig `mapstructure:"chat"`
}

// RoadmapConfig bounds roadmap generation
type RoadmapConfig struct {
	DefaultWeeks int `mapstructure:"defaultWeeks"`
	MaxWeeks     int `mapstructure:"maxWeeks"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`

	TLS TLSConfig `mapstructure:"tls"`

	// API Authentication
	APIKeys []string `mapstructure:"apiKeys"`

	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// TLSConfig holds server TLS configuration
type TLSConfig struct {
	Mode       string `mapstructure:"mode"` // disabled or server
	CertFile   string `mapstructure:"certFile"`
	KeyFile    string `mapstructure:"keyFile"`
	MinVersion string `mapstructure:"minVersion"` // "1.2" or "1.3"
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`        // Enable/disable rate limiting
	RequestsPerMin int           `mapstructure:"requestsPerMin"` // Requests allowed per minute
	BurstCapacity  int           `mapstructure:"burstCapacity"`  // Burst capacity for token bucket
	ByIP           bool          `mapstructure:"byIP"`           // Enable per-IP rate limiting
	ByAPIKey       bool          `mapstructure:"byAPIKey"`       // Enable per-API-key rate limiting
	Window         time.Duration `mapstructure:"window"`         // Rate limiting window duration
}

// StoreConfig selects and configures persistence
type StoreConfig struct {
	Driver   string         `mapstructure:"driver"` // memory or postgres
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig configures the pgx connection pool
type PostgresConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"maxConns"`
}

// RedisConfig configures the chat history cache. Empty URL disables it.
type RedisConfig struct {
	URL      string        `mapstructure:"url"`
	TTL      time.Duration `mapstructure:"ttl"`
	MaxTurns int           `mapstructure:"maxTurns"`
}

// SchedulerConfig configures periodic maintenance jobs
type SchedulerConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	StatsSchedule   string        `mapstructure:"statsSchedule"`
	CleanupSchedule string        `mapstructure:"cleanupSchedule"`
	SessionTTL      time.Duration `mapstructure:"sessionTTL"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool                `mapstructure:"enabled"`
	ServiceName     string              `mapstructure:"serviceName"`
	ServiceVersion  string              `mapstructure:"serviceVersion"`
	ServiceInstance string              `mapstructure:"serviceInstance"`
	ConsoleOutput   bool                `mapstructure:"consoleOutput"`
	SampleRate      float64             `mapstructure:"sampleRate"`
	Tracing         TracingConfig       `mapstructure:"tracing"`
	Metrics         MetricsConfig       `mapstructure:"metrics"`
	CustomMetrics   CustomMetricsConfig `mapstructure:"customMetrics"`
	Console         ConsoleConfig       `mapstructure:"console"`
	Prometheus      PrometheusConfig    `mapstructure:"prometheus"`
	OTLP            OTLPConfig          `mapstructure:"otlp"`
	HealthCheck     HealthCheckConfig   `mapstructure:"healthCheck"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console output configuration
type ConsoleConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// CustomMetricsConfig holds fine-grained custom metrics configuration
type CustomMetricsConfig struct {
	AIOperations    AIOperationsMetricsConfig   `mapstructure:"aiOperations"`
	BusinessMetrics BusinessMetricsConfig       `mapstructure:"businessMetrics"`
	Infrastructure  InfrastructureMetricsConfig `mapstructure:"infrastructure"`
}

// AIOperationsMetricsConfig holds AI operation metrics configuration
type AIOperationsMetricsConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	TrackDuration   bool `mapstructure:"trackDuration"`
	TrackTokenUsage bool `mapstructure:"trackTokenUsage"`
	TrackTiers      bool `mapstructure:"trackTiers"`
}

// BusinessMetricsConfig holds business metrics configuration
type BusinessMetricsConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	TrackSuccessRates bool `mapstructure:"trackSuccessRates"`
	TrackContentSizes bool `mapstructure:"trackContentSizes"`
}

// InfrastructureMetricsConfig holds infrastructure metrics configuration
type InfrastructureMetricsConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	TrackRateLimits bool `mapstructure:"trackRateLimits"`
	TrackPoolUsage  bool `mapstructure:"trackPoolUsage"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// HealthCheckConfig holds health check configuration
type HealthCheckConfig struct {
	Timeout             time.Duration `mapstructure:"timeout"`
	AIModelCheckTimeout time.Duration `mapstructure:"aiModelCheckTimeout"`
}

const envPrefix = "CAREERNAV"

// LoadConfig loads configuration from environment variables and a config file
func LoadConfig() (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	v := viper.New()

	setDefaults(v)
	log.Println("[CONFIG] Applied default configuration values")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	log.Printf("[CONFIG] Configured environment variable handling with prefix '%s'", envPrefix)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/careernav/")
	v.AddConfigPath("$HOME/.careernav")
	v.AddConfigPath(".")
	log.Println("[CONFIG] Configured config file search paths: /etc/careernav/, $HOME/.careernav, .")

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Successfully loaded config file: %s", configFileUsed)
	}

	cfg, err := unmarshalConfig(v)
	if err != nil {
		return nil, err
	}

	cfg.logConfigurationSources(configFileUsed)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return cfg, nil
}

// unmarshalConfig decodes a prepared viper instance and applies fallbacks
func unmarshalConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	log.Println("[CONFIG] Successfully unmarshaled configuration")

	cfg.applyFallbacks()
	log.Println("[CONFIG] Applied configuration fallbacks and environment variable overrides")
	return &cfg, nil
}

// Default returns the configuration produced by defaults alone.
// Commands and tests use it when no config file is wanted.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("default configuration does not decode: %v", err))
	}
	cfg.applyFallbacks()
	return &cfg
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.validateProvider("primary", c.AI.Primary); err != nil {
		return err
	}
	if err := c.validateProvider("secondary", c.AI.Secondary); err != nil {
		return err
	}

	if c.AI.WorkerPool.Size < 1 {
		return fmt.Errorf("ai.workerPool.size must be at least 1, got %d", c.AI.WorkerPool.Size)
	}
	if c.AI.Pipeline.Retries < 0 {
		return fmt.Errorf("ai.pipeline.retries cannot be negative")
	}

	for _, task := range AllTasks {
		tc := c.GetTaskConfig(task)
		if *tc.Temperature < 0 || *tc.Temperature > 2 {
			return fmt.Errorf("temperature for task %s must be within 0..2, got %v", task, *tc.Temperature)
		}
		if *tc.MaxTokens <= 0 {
			return fmt.Errorf("maxTokens for task %s must be positive", task)
		}
	}

	if c.Roadmap.MaxWeeks < 1 {
		return fmt.Errorf("roadmap.maxWeeks must be at least 1")
	}
	if c.Roadmap.DefaultWeeks < 1 || c.Roadmap.DefaultWeeks > c.Roadmap.MaxWeeks {
		return fmt.Errorf("roadmap.defaultWeeks must be within 1..%d, got %d", c.Roadmap.MaxWeeks, c.Roadmap.DefaultWeeks)
	}

	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	switch c.Store.Driver {
	case "memory":
	case "postgres":
		if c.Store.Postgres.DSN == "" {
			return fmt.Errorf("store.postgres.dsn is required when store.driver is postgres")
		}
	default:
		return fmt.Errorf("invalid store driver: %s (must be 'memory' or 'postgres')", c.Store.Driver)
	}

	validFormats := make(map[string]bool)
	for _, format := range c.App.SupportedFormats {
		validFormats[format] = true
	}
	if !validFormats[c.App.DefaultFormat] {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	if err := c.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("TLS configuration error: %w", err)
	}

	return nil
}

func (c *Config) validateProvider(tier string, p ProviderConfig) error {
	if p.Timeout <= 0 {
		return fmt.Errorf("ai.%s.timeout must be positive", tier)
	}
	switch p.Provider {
	case "gemini", "googleai":
	case "vertex":
		if p.Project == "" {
			return fmt.Errorf("ai.%s.project is required for the vertex provider", tier)
		}
	default:
		return fmt.Errorf("unsupported AI provider for %s tier: %s", tier, p.Provider)
	}
	if p.CircuitBreaker.Enabled && (p.CircuitBreaker.FailureThreshold <= 0 || p.CircuitBreaker.FailureThreshold > 1) {
		return fmt.Errorf("ai.%s.circuitBreaker.failureThreshold must be within (0, 1]", tier)
	}
	return nil
}
