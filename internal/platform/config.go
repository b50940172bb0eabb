package platform

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// FlagsConfig holds all boolean or string flags for the app.
type FlagsConfig struct {
	// Headless disables the HTTP server when true.
	Headless bool
}

// AppConfig contains the configuration for the app.
type AppConfig struct {
	Flags      *FlagsConfig
	NatsCfg    *EmbeddedServerConfig
	HTTPSrvCfg *HTTPServerConfig
}

// LoadAppConfig loads application configuration from environment variables
// (typically seeded by godotenv in main) and returns an AppConfig.
func LoadAppConfig() *AppConfig {
	return &AppConfig{
		Flags:      defaultFlagsCfg(),
		NatsCfg:    defaultNatsCfg(),
		HTTPSrvCfg: defaultHTTPServerCfg(),
	}
}

// defaultFlagsCfg returns the default FlagsConfig (from env).
func defaultFlagsCfg() *FlagsConfig {
	return &FlagsConfig{
		Headless: envBool("HEADLESS", false),
	}
}

// defaultHTTPServerCfg returns sane defaults for the HTTP server.
func defaultHTTPServerCfg() *HTTPServerConfig {
	return &HTTPServerConfig{
		Port:         envInt("PORT", 8080),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		EnableTLS:    envBool("ENABLE_TLS", false),
		CertFile:     envStr("TLS_CERT_FILE", "./local_certs/localhost.pem"),
		KeyFile:      envStr("TLS_KEY_FILE", "./local_certs/localhost-key.pem"),
		CookieKey:    envStr("COOKIE_KEY", "very-secret-key-change-me"),
	}
}

// defaultNatsCfg returns the default EmbeddedServerConfig.
func defaultNatsCfg() *EmbeddedServerConfig {
	return &EmbeddedServerConfig{
		InProcess:     envBool("NATS_IN_PROCESS", true),
		EnableLogging: envBool("NATS_LOGGING", true),
		JetStream:     true,
		StoreDir:      envStr("STORE_DIR", "./store/js"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}
