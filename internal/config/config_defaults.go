package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Primary provider: structured JSON capable, called inline
	v.SetDefault("ai.primary.provider", "gemini")
	v.SetDefault("ai.primary.model", "gemini-2.0-flash")
	v.SetDefault("ai.primary.apiKey", "")
	v.SetDefault("ai.primary.timeout", 30*time.Second)

	// Secondary provider: blocking client, reached through the worker pool
	v.SetDefault("ai.secondary.provider", "googleai")
	v.SetDefault("ai.secondary.model", "gemini-1.5-flash")
	v.SetDefault("ai.secondary.apiKey", "")
	v.SetDefault("ai.secondary.project", "")
	v.SetDefault("ai.secondary.location", "us-central1")
	v.SetDefault("ai.secondary.timeout", 45*time.Second)

	for _, tier := range []string{"primary", "secondary"} {
		prefix := "ai." + tier + ".circuitBreaker."
		v.SetDefault(prefix+"enabled", true)
		v.SetDefault(prefix+"maxRequests", 3)
		v.SetDefault(prefix+"interval", 60*time.Second)
		v.SetDefault(prefix+"timeout", 60*time.Second)
		v.SetDefault(prefix+"minRequests", 3)
		v.SetDefault(prefix+"failureThreshold", 0.6)
	}

	v.SetDefault("ai.workerPool.size", 3)
	v.SetDefault("ai.pipeline.retries", 0)
	v.SetDefault("ai.pipeline.maxBackoff", 30*time.Second)

	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.maxTokens", 2048)
	v.SetDefault("ai.useSystemPrompts", true)

	// Per-task sampling
	v.SetDefault("ai.tasks.resume.temperature", 0.1) // extraction must be literal
	v.SetDefault("ai.tasks.resume.maxTokens", 2048)
	v.SetDefault("ai.tasks.skillGap.temperature", 0.3)
	v.SetDefault("ai.tasks.skillGap.maxTokens", 2048)
	v.SetDefault("ai.tasks.roadmap.temperature", 0.4)
	v.SetDefault("ai.tasks.roadmap.maxTokens", 8192) // one entry per week adds up
	v.SetDefault("ai.tasks.interview.temperature", 0.7)
	v.SetDefault("ai.tasks.interview.maxTokens", 2048)
	v.SetDefault("ai.tasks.evaluation.temperature", 0.3)
	v.SetDefault("ai.tasks.evaluation.maxTokens", 1024)
	v.SetDefault("ai.tasks.chat.temperature", 0.7)
	v.SetDefault("ai.tasks.chat.maxTokens", 200) // a few sentences

	v.SetDefault("ai.prompts.watch", false)
	v.SetDefault("ai.prompts.debounceDelay", time.Second)

	v.SetDefault("roadmap.defaultWeeks", 12)
	v.SetDefault("roadmap.maxWeeks", 52)

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 120*time.Second) // covers both provider tiers
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.tls.mode", "disabled")
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("server.tls.minVersion", "1.2")
	v.SetDefault("server.apiKeys", []string{})
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", time.Minute)

	// Store Configuration
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.postgres.dsn", "")
	v.SetDefault("store.postgres.maxConns", 10)
	v.SetDefault("store.redis.url", "")
	v.SetDefault("store.redis.ttl", 7*24*time.Hour)
	v.SetDefault("store.redis.maxTurns", 50)

	// Scheduler Configuration
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.statsSchedule", "@every 5m")
	v.SetDefault("scheduler.cleanupSchedule", "@every 1h")
	v.SetDefault("scheduler.sessionTTL", 24*time.Hour)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 1024*1024) // 1MB

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.primaryKey", "")
	v.SetDefault("vault.secrets.secondaryKey", "")
	v.SetDefault("vault.watch.enabled", false)
	v.SetDefault("vault.watch.pollInterval", 5*time.Minute)

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "careernav")
	v.SetDefault("observability.serviceVersion", "")
	v.SetDefault("observability.serviceInstance", "")
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)
	v.SetDefault("observability.customMetrics.aiOperations.enabled", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackDuration", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackTokenUsage", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackTiers", true)
	v.SetDefault("observability.customMetrics.businessMetrics.enabled", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackSuccessRates", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackContentSizes", true)
	v.SetDefault("observability.customMetrics.infrastructure.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackPoolUsage", true)
	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
	v.SetDefault("observability.healthCheck.timeout", 15*time.Second)
	v.SetDefault("observability.healthCheck.aiModelCheckTimeout", 10*time.Second)
}
