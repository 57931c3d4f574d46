package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Clear any env vars that might interfere with defaults.
	os.Unsetenv("DATABASE_URL")
	os.Unsetenv("HTTP_LISTEN_ADDR")
	os.Unsetenv("METRICS_ADDR")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("LDAP_SERVER_URI")
	os.Unsetenv("POSTFIX_UNIT")
	os.Unsetenv("POSTFIX_CONFIG_DIR")
	os.Unsetenv("TOOL_TIMEOUT_SECONDS")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, ":8090", cfg.HTTPListenAddr)
	assert.Equal(t, ":9190", cfg.MetricsAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "ldap://127.0.0.1:389", cfg.LDAPServerURI)
	assert.Equal(t, "postfix", cfg.PostfixUnit)
	assert.Equal(t, "dovecot", cfg.DovecotUnit)
	assert.Equal(t, "slapd", cfg.SlapdUnit)
	assert.Equal(t, "/etc/postfix", cfg.PostfixConfigDir)
	assert.Equal(t, 30*time.Second, cfg.ToolTimeout)
	assert.Equal(t, 60*time.Second, cfg.QueueTimeout)
	assert.Equal(t, 300*time.Second, cfg.LongTimeout)
}

func TestLoad_AllEnvVars(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/mailpanel")
	t.Setenv("HTTP_LISTEN_ADDR", ":7071")
	t.Setenv("LDAP_SERVER_URI", "ldaps://directory.example.com:636")
	t.Setenv("LDAP_ADMIN_DN", "cn=admin,dc=example,dc=com")
	t.Setenv("LDAP_ADMIN_SECRET", "secret")
	t.Setenv("POSTFIX_UNIT", "postfix@main")
	t.Setenv("POSTFIX_CONFIG_DIR", "/usr/local/etc/postfix")
	t.Setenv("TOOL_TIMEOUT_SECONDS", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost:5432/mailpanel", cfg.DatabaseURL)
	assert.Equal(t, ":7071", cfg.HTTPListenAddr)
	assert.Equal(t, "ldaps://directory.example.com:636", cfg.LDAPServerURI)
	assert.Equal(t, "cn=admin,dc=example,dc=com", cfg.LDAPAdminDN)
	assert.Equal(t, "postfix@main", cfg.PostfixUnit)
	assert.Equal(t, "/usr/local/etc/postfix", cfg.PostfixConfigDir)
	assert.Equal(t, 10*time.Second, cfg.ToolTimeout)
}

func TestLoad_InvalidTimeoutFallsBack(t *testing.T) {
	t.Setenv("TOOL_TIMEOUT_SECONDS", "notanumber")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.ToolTimeout)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.Validate())

	cfg.DatabaseURL = "postgres://localhost/mailpanel"
	assert.Error(t, cfg.Validate())

	cfg.LDAPAdminSecret = "secret"
	assert.NoError(t, cfg.Validate())
}
