package config

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// applyFallbacks applies environment variable fallbacks
func (c *Config) applyFallbacks() {
	c.applyServerAPIKeyFallbacks()
	c.applyProviderKeyFallbacks()
	c.applyTLSDefaults()
	c.applyObservabilityDefaults()
}

// applyServerAPIKeyFallbacks parses a comma-separated key list from the environment
func (c *Config) applyServerAPIKeyFallbacks() {
	if len(c.Server.APIKeys) == 0 {
		if apiKeysEnv := os.Getenv(envPrefix + "_SERVER_APIKEYS"); apiKeysEnv != "" {
			c.Server.APIKeys = splitAndTrim(apiKeysEnv)
		}
	}
}

// applyProviderKeyFallbacks lets both tiers share GEMINI_API_KEY when no key is configured
func (c *Config) applyProviderKeyFallbacks() {
	shared := os.Getenv("GEMINI_API_KEY")
	if shared == "" {
		return
	}
	if c.AI.Primary.APIKey == "" {
		c.AI.Primary.APIKey = shared
	}
	if c.AI.Secondary.APIKey == "" && c.AI.Secondary.Provider == "googleai" {
		c.AI.Secondary.APIKey = shared
	}
}

// applyTLSDefaults applies default TLS configuration values
func (c *Config) applyTLSDefaults() {
	if c.Server.TLS.MinVersion == "" && c.Server.TLS.Mode != "disabled" {
		c.Server.TLS.MinVersion = "1.2"
	}
}

// applyObservabilityDefaults applies default observability configuration values
func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}
	if c.App.LogLevel == "debug" && !c.Observability.ConsoleOutput {
		c.Observability.ConsoleOutput = true
	}
}

// generateServiceInstanceID generates a unique service instance ID
func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")

	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	envVars := []string{
		envPrefix + "_AI_PRIMARY_APIKEY",
		envPrefix + "_AI_PRIMARY_MODEL",
		envPrefix + "_AI_SECONDARY_PROVIDER",
		envPrefix + "_AI_SECONDARY_APIKEY",
		envPrefix + "_AI_WORKERPOOL_SIZE",
		envPrefix + "_SERVER_PORT",
		envPrefix + "_SERVER_HOST",
		envPrefix + "_STORE_DRIVER",
		envPrefix + "_APP_LOGLEVEL",
		envPrefix + "_VAULT_ENABLED",
		"GEMINI_API_KEY",
	}

	log.Println("[CONFIG] Environment variables:")
	hasEnvVars := false
	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			if strings.Contains(strings.ToLower(envVar), "key") {
				log.Printf("[CONFIG]   %s=***MASKED***", envVar)
			} else {
				log.Printf("[CONFIG]   %s=%s", envVar, value)
			}
			hasEnvVars = true
		}
	}
	if !hasEnvVars {
		log.Println("[CONFIG]   None set")
	}

	log.Println("[CONFIG] === Key Configuration Values ===")
	for _, tier := range []struct {
		name string
		cfg  ProviderConfig
	}{{"Primary", c.AI.Primary}, {"Secondary", c.AI.Secondary}} {
		keyState := "***NOT SET***"
		if tier.cfg.APIKey != "" {
			keyState = "***CONFIGURED***"
		}
		log.Printf("[CONFIG] %s AI: provider=%s model=%s timeout=%s key=%s",
			tier.name, tier.cfg.Provider, tier.cfg.Model, tier.cfg.Timeout, keyState)
	}
	log.Printf("[CONFIG] Worker Pool Size: %d", c.AI.WorkerPool.Size)
	log.Printf("[CONFIG] Roadmap Weeks: default=%d max=%d", c.Roadmap.DefaultWeeks, c.Roadmap.MaxWeeks)
	log.Printf("[CONFIG] Server: %s:%s (TLS %s)", c.Server.Host, c.Server.Port, c.Server.TLS.Mode)
	log.Printf("[CONFIG] Store Driver: %s (redis cache: %t)", c.Store.Driver, c.Store.Redis.URL != "")
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] Vault Enabled: %t", c.Vault.Enabled)
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)
	log.Println("[CONFIG] =====================================")
}
