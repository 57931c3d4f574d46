package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseURL    string
	HTTPListenAddr string
	MetricsAddr    string
	LogLevel       string
	ServiceName    string

	// LDAP directory server connection.
	LDAPServerURI   string
	LDAPAdminDN     string
	LDAPAdminSecret string

	// systemd unit names for the managed services.
	PostfixUnit string
	DovecotUnit string
	SlapdUnit   string

	// Postfix configuration directory holding the virtual domain map.
	PostfixConfigDir string

	// Timeouts for external tool invocations.
	ToolTimeout  time.Duration
	QueueTimeout time.Duration
	LongTimeout  time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		HTTPListenAddr:   getEnv("HTTP_LISTEN_ADDR", ":8090"),
		MetricsAddr:      getEnv("METRICS_ADDR", ":9190"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		ServiceName:      getEnv("SERVICE_NAME", "mailpanel-api"),
		LDAPServerURI:    getEnv("LDAP_SERVER_URI", "ldap://127.0.0.1:389"),
		LDAPAdminDN:      getEnv("LDAP_ADMIN_DN", "cn=admin,dc=example,dc=tld"),
		LDAPAdminSecret:  getEnv("LDAP_ADMIN_SECRET", ""),
		PostfixUnit:      getEnv("POSTFIX_UNIT", "postfix"),
		DovecotUnit:      getEnv("DOVECOT_UNIT", "dovecot"),
		SlapdUnit:        getEnv("SLAPD_UNIT", "slapd"),
		PostfixConfigDir: getEnv("POSTFIX_CONFIG_DIR", "/etc/postfix"),
		ToolTimeout:      getEnvSeconds("TOOL_TIMEOUT_SECONDS", 30),
		QueueTimeout:     getEnvSeconds("QUEUE_TIMEOUT_SECONDS", 60),
		LongTimeout:      getEnvSeconds("LONG_TIMEOUT_SECONDS", 300),
	}

	return cfg, nil
}

// Validate checks that the fields required by the API server are set.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.LDAPAdminSecret == "" {
		return fmt.Errorf("LDAP_ADMIN_SECRET is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvSeconds(key string, fallback int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Duration(fallback) * time.Second
}
